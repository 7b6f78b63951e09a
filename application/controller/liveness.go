package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	apperrors "livegate.io/application/appErrors"
	"livegate.io/application/controller/dto"
	"livegate.io/application/interfaces"
	"livegate.io/application/services/verification"
	"livegate.io/application/utils"
	"livegate.io/infrastructure/liveness"
	"livegate.io/infrastructure/logger"
	server_response "livegate.io/infrastructure/serverResponse"
	"livegate.io/infrastructure/validator"
	"livegate.io/infrastructure/websocket"
)

// socketEmitter delivers engine events to one connected client as JSON
// socket events.
type socketEmitter struct {
	socket *websocket.Socket
}

type completedPayload struct {
	liveness.CompletionResult
	AckTimeoutSeconds int `json:"ackTimeoutSeconds"`
}

type failedPayload struct {
	Code     liveness.FailureCode `json:"code"`
	Message  string               `json:"message"`
	CanRetry bool                 `json:"canRetry"`
}

type errorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Transient bool   `json:"transient"`
}

func (e *socketEmitter) write(name string, payload any) {
	if err := e.socket.WriteEvent(context.Background(), name, payload); err != nil {
		logger.Warning("failed to deliver socket event", logger.LoggerOptions{
			Key:  "event",
			Data: name,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
}

func (e *socketEmitter) State(snapshot liveness.StateSnapshot) {
	e.write("state", snapshot)
}

func (e *socketEmitter) Completed(result liveness.CompletionResult, ackTimeout time.Duration) {
	e.write("completed", completedPayload{
		CompletionResult:  result,
		AckTimeoutSeconds: int(ackTimeout / time.Second),
	})
}

func (e *socketEmitter) Failed(code liveness.FailureCode, message string, canRetry bool) {
	e.write("failed", failedPayload{Code: code, Message: message, CanRetry: canRetry})
}

func (e *socketEmitter) Error(code string, message string, transient bool) {
	e.write("error", errorPayload{Code: code, Message: message, Transient: transient})
}

// LivenessSocket runs the read loop for one verification connection. One
// session at most is bound to the connection; its frame buffers are
// released when the loop ends.
func LivenessSocket(socket *websocket.Socket) {
	ctx := context.Background()
	emitter := &socketEmitter{socket: socket}
	engine := verification.LivenessEngine

	var session *liveness.Session
	defer func() {
		if session != nil {
			engine.CloseSession(session, "connection closed")
		}
		socket.Close()
	}()

	for {
		event, err := socket.ReadEvent(ctx)
		if err != nil {
			logger.Info("liveness socket closed", logger.LoggerOptions{
				Key:  "error",
				Data: err.Error(),
			})
			return
		}

		if event.Name == "start" {
			if session != nil {
				emitter.Error(liveness.ErrCodeProtocol, "session already started on this connection", false)
				continue
			}
			var body dto.StartSessionDTO
			if len(event.Data) > 0 {
				if err := json.Unmarshal(event.Data, &body); err != nil {
					emitter.Error(liveness.ErrCodeProtocol, "malformed start payload", false)
					continue
				}
			}
			if errs := validator.ValidatorInstance.ValidateStruct(body); errs != nil {
				emitter.Error(liveness.ErrCodeProtocol, (*errs)[0].Error(), false)
				continue
			}
			session = engine.NewSession(emitter, body.ToStartOptions())
			continue
		}

		if session == nil {
			emitter.Error(liveness.ErrCodeProtocol, "no active session, send start first", false)
			continue
		}

		switch event.Name {
		case "frame":
			var body dto.FramePayloadDTO
			if err := json.Unmarshal(event.Data, &body); err != nil {
				emitter.Error(liveness.ErrCodeProtocol, "malformed frame payload", false)
				continue
			}
			if errs := validator.ValidatorInstance.ValidateStruct(body); errs != nil {
				emitter.Error(liveness.ErrCodeProtocol, (*errs)[0].Error(), false)
				continue
			}
			frame, err := utils.DecodeBase64Image(body.Image)
			if err != nil {
				emitter.Error(liveness.ErrCodeProtocol, err.Error(), false)
				continue
			}
			// frames must not block the read loop; the engine drops any
			// frame that arrives while one is still processing
			go engine.HandleFrame(ctx, session, frame)
		case "countdown:done":
			engine.HandleCountdownDone(session)
		case "challenge:ready":
			engine.HandleChallengeReady(session)
		case "retry":
			engine.HandleRetry(session)
		case "completed:ack":
			engine.HandleCompletedAck(session)
		default:
			emitter.Error(liveness.ErrCodeProtocol, "unknown event "+event.Name, false)
		}
	}
}

// FetchSessionResult serves the cached summary of a finished session.
func FetchSessionResult(ctx *interfaces.ApplicationContext[any]) {
	sessionID, ok := ctx.GetContextData("sessionID").(string)
	if !ok || sessionID == "" {
		apperrors.ErrorProcessingPayload(ctx.Ctx)
		return
	}
	cached := verification.FetchResult(sessionID)
	if cached == nil {
		apperrors.NotFoundError(ctx.Ctx, "session result not found or expired")
		return
	}
	var summary map[string]any
	if err := json.Unmarshal([]byte(*cached), &summary); err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "session result retrieved", summary, nil, nil)
}
