package liveness

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"time"

	"livegate.io/infrastructure/inference/types"
	"livegate.io/infrastructure/logger"
)

// resultSummary is the cached record of a finished session, served by the
// session introspection endpoint.
type resultSummary struct {
	SessionID      string    `json:"sessionId"`
	Verified       bool      `json:"verified"`
	Confidence     float64   `json:"confidence"`
	AntispoofScore float64   `json:"antispoofScore"`
	LivenessScore  float64   `json:"livenessScore"`
	Challenges     []string  `json:"challenges"`
	RetryCount     int       `json:"retryCount"`
	CompletedAt    time.Time `json:"completedAt"`
}

// finalize applies the anti-spoof and liveness verdicts from the final
// challenge frame and settles the session. The phase moves to completed
// before any persistence, so the outcome survives a store failure and a
// client disconnect alike.
func (e *Engine) finalize(session *Session, observation *types.FaceObservation, now time.Time) {
	if observation.AntispoofScore < e.Config.AntispoofThreshold {
		e.failSecurity(session, FailureAntispoof, "we could not confirm a live camera feed, please try again in good lighting", observation)
		return
	}
	if observation.LivenessScore < e.Config.LivenessThreshold {
		e.failSecurity(session, FailureLiveness, "we could not confirm liveness, please try again", observation)
		return
	}

	session.Phase = PhaseCompleted
	completed := now
	session.completedAt = &completed
	confidence := math.Min(observation.AntispoofScore, observation.LivenessScore)

	draftUpdated := e.persistResult(session, observation)
	e.cacheResult(session, observation, confidence, completed)

	logger.Info("liveness session completed", logger.LoggerOptions{
		Key: "sessionId", Data: session.ID,
	}, logger.LoggerOptions{
		Key: "confidence", Data: confidence,
	}, logger.LoggerOptions{
		Key: "draftUpdated", Data: draftUpdated,
	})

	session.emitter.Completed(CompletionResult{
		Verified:        true,
		SessionID:       session.ID,
		SelfieImage:     base64.StdEncoding.EncodeToString(e.bestSelfie(session)),
		Confidence:      confidence,
		AntispoofPassed: true,
		LivenessPassed:  true,
		DraftUpdated:    draftUpdated,
	}, session.timeouts.CompletionAck)
}

// persistResult writes the verdict to the bound draft. This runs at most
// once per session and is never retried; a failed write leaves the draft
// untouched and is reported to the client through draftUpdated.
func (e *Engine) persistResult(session *Session, observation *types.FaceObservation) bool {
	if session.draftID == nil || session.userID == nil || e.Drafts == nil {
		return false
	}
	err := e.Drafts.UpdateDraft(*session.draftID, DraftUpdate{
		UserID:         *session.userID,
		AntispoofScore: observation.AntispoofScore,
		LiveScore:      observation.LivenessScore,
		LivenessPassed: true,
	})
	if err != nil {
		logger.Error("draft result write failed", logger.LoggerOptions{
			Key: "error", Data: err,
		}, logger.LoggerOptions{
			Key: "sessionId", Data: session.ID,
		}, logger.LoggerOptions{
			Key: "draftId", Data: *session.draftID,
		})
		return false
	}
	return true
}

func (e *Engine) cacheResult(session *Session, observation *types.FaceObservation, confidence float64, completedAt time.Time) {
	if e.Cache == nil {
		return
	}
	challenges := make([]string, 0, len(session.Challenges))
	for _, challenge := range session.Challenges {
		challenges = append(challenges, string(challenge))
	}
	payload, err := json.Marshal(resultSummary{
		SessionID:      session.ID,
		Verified:       true,
		Confidence:     confidence,
		AntispoofScore: observation.AntispoofScore,
		LivenessScore:  observation.LivenessScore,
		Challenges:     challenges,
		RetryCount:     session.RetryCount,
		CompletedAt:    completedAt,
	})
	if err != nil {
		return
	}
	e.Cache.StoreResult(session.ID, payload, e.Config.ResultCacheTTL)
}

// bestSelfie returns the challenge frame captured with the highest detector
// confidence, falling back to the baseline frame.
func (e *Engine) bestSelfie(session *Session) []byte {
	var best []byte
	bestScore := -1.0
	for challenge, frame := range session.challengeFrames {
		if score := session.challengeFrameScores[challenge]; score > bestScore {
			bestScore = score
			best = frame
		}
	}
	if best == nil {
		best = session.baselineFrame
	}
	return best
}

func (e *Engine) failSecurity(session *Session, code FailureCode, message string, observation *types.FaceObservation) {
	if e.Fraud != nil {
		e.Fraud.ReportSecurityFailure(session.ID, code, observation.AntispoofScore, observation.LivenessScore)
	}
	e.fail(session, code, message)
}
