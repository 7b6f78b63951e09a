package liveness

import (
	"context"
	"time"

	"livegate.io/application/constants"
	"livegate.io/application/utils"
	"livegate.io/infrastructure/inference/types"
	"livegate.io/infrastructure/logger"
)

// Engine runs liveness verification sessions. It holds every process-wide
// dependency; per-connection state lives on the Session.
type Engine struct {
	Detector types.FaceInferenceEngine
	Drafts   DraftStore
	Limiter  *InferenceLimiter
	Cache    ResultCache
	Fraud    FraudReporter
	Config   Config
}

func NewEngine(detector types.FaceInferenceEngine, drafts DraftStore, config Config) *Engine {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Engine{
		Detector: detector,
		Drafts:   drafts,
		Limiter:  NewInferenceLimiter(config.InferenceConcurrency),
		Config:   config,
	}
}

// NewSession creates a session in the detecting phase and emits the initial
// state event. A draft reference is only bound when the draft exists and
// belongs to the supplied user.
func (e *Engine) NewSession(emitter EventEmitter, opts StartOptions) *Session {
	session := &Session{
		ID:                   utils.GenerateUULDString(),
		Phase:                PhaseDetecting,
		Challenges:           generateChallenges(opts.ChallengeCount, opts.ExcludeChallenges, opts.RequireHeadTurn),
		faceStability:        NewStabilityAccumulator(e.Config.FaceStabilityFrames),
		challengeStability:   NewStabilityAccumulator(e.Config.ChallengePassFrames),
		challengeFrames:      map[ChallengeType][]byte{},
		challengeFrameScores: map[ChallengeType]float64{},
		startedAt:            e.Config.Now(),
		timeouts:             e.Config.Timeouts.withOverrides(opts.Timeouts),
		emitter:              emitter,
	}
	e.bindDraft(session, opts.DraftID, opts.UserID)

	logger.Info("liveness session started", logger.LoggerOptions{
		Key: "sessionId", Data: session.ID,
	}, logger.LoggerOptions{
		Key: "challenges", Data: session.Challenges,
	})
	e.emitState(session, session.startedAt)
	return session
}

func (e *Engine) bindDraft(session *Session, draftID *string, userID *string) {
	if draftID == nil || userID == nil || e.Drafts == nil {
		return
	}
	draft, err := e.Drafts.GetDraftByID(*draftID)
	if err != nil {
		logger.Error("draft lookup failed", logger.LoggerOptions{
			Key: "error", Data: err,
		}, logger.LoggerOptions{
			Key: "draftId", Data: *draftID,
		})
		return
	}
	if draft == nil || draft.UserID != *userID {
		logger.Warning("draft does not match user, session will not persist a result", logger.LoggerOptions{
			Key: "draftId", Data: *draftID,
		}, logger.LoggerOptions{
			Key: "userId", Data: *userID,
		})
		return
	}
	session.draftID = draftID
	session.userID = userID
}

// HandleFrame admits, analyses and applies one video frame. Frames arriving
// while a previous frame is still being processed are dropped, not queued.
func (e *Engine) HandleFrame(ctx context.Context, session *Session, frame []byte) {
	if session == nil || len(frame) == 0 {
		return
	}
	if !session.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer session.inFlight.Store(false)

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.Terminal() {
		return
	}
	now := e.Config.Now()
	if e.enforceTimeouts(session, now) {
		return
	}
	if session.lastFrameAt != nil && now.Sub(*session.lastFrameAt) < e.Config.MinFrameInterval {
		return
	}
	arrived := now
	session.lastFrameAt = &arrived

	result, err := e.Limiter.Detect(ctx, e.Detector, frame)
	if err != nil {
		e.recordInferenceError(session, err)
		return
	}
	session.inferenceErrors = 0

	observation := result.PrimaryFace()
	session.lastFrame = frame
	session.lastObservation = observation
	session.face.Present = observation != nil
	if observation != nil {
		session.face.Box = observation.Box
	}

	switch session.Phase {
	case PhaseDetecting:
		e.handleDetecting(session, now)
	case PhaseCountdown:
		e.handleCountdown(session, frame, observation, now)
	case PhaseBaseline:
		e.handleBaseline(session, frame, observation, now)
	case PhaseChallenging:
		e.handleChallenging(session, frame, observation, now)
	}
}

func (e *Engine) recordInferenceError(session *Session, err error) {
	session.inferenceErrors++
	logger.Error("frame analysis failed", logger.LoggerOptions{
		Key: "error", Data: err,
	}, logger.LoggerOptions{
		Key: "sessionId", Data: session.ID,
	}, logger.LoggerOptions{
		Key: "consecutiveErrors", Data: session.inferenceErrors,
	})
	if session.inferenceErrors >= e.Config.MaxInferenceErrors {
		session.inferenceErrors = 0
		session.emitter.Error(ErrCodeInference, "face analysis is temporarily unavailable, hold still and keep your face in view", true)
	}
}

// enforceTimeouts checks the wall-clock budgets against the frame arrival
// time. Returns true when the session was failed.
func (e *Engine) enforceTimeouts(session *Session, now time.Time) bool {
	if now.Sub(session.startedAt) > session.timeouts.Session {
		e.fail(session, FailureSessionTimeout, "verification took too long, please try again")
		return true
	}
	if session.Phase == PhaseChallenging && !session.awaitingChallengeAck &&
		session.challengeStartedAt != nil && now.Sub(*session.challengeStartedAt) > session.timeouts.Challenge {
		e.fail(session, FailureChallengeTimeout, "you ran out of time on a challenge, please try again")
		return true
	}
	return false
}

func (e *Engine) handleDetecting(session *Session, now time.Time) {
	if e.faceStabilised(session) {
		session.Phase = PhaseCountdown
		requested := now
		session.countdownRequestedAt = &requested
		session.countdownAcked = false
	}
	e.emitState(session, now)
}

func (e *Engine) faceStabilised(session *Session) bool {
	if !session.face.Present {
		session.faceStability.Observe(false)
		return false
	}
	if session.faceStability.Observe(true) {
		session.faceStability.Reset()
		return true
	}
	return false
}

func (e *Engine) handleCountdown(session *Session, frame []byte, observation *types.FaceObservation, now time.Time) {
	if observation == nil {
		e.revertToDetecting(session, now)
		return
	}
	elapsed := now.Sub(*session.countdownRequestedAt)
	if session.countdownAcked || elapsed >= session.timeouts.CountdownFallback {
		session.Phase = PhaseBaseline
		e.handleBaseline(session, frame, observation, now)
		return
	}
	e.emitState(session, now)
}

// handleBaseline captures the neutral reference frame and prompts the
// current challenge. On re-entry after a face loss the existing baseline is
// kept and the interrupted challenge restarts from zero progress.
func (e *Engine) handleBaseline(session *Session, frame []byte, observation *types.FaceObservation, now time.Time) {
	if observation == nil {
		e.revertToDetecting(session, now)
		return
	}
	if session.baselineFrame == nil {
		session.baselineFrame = frame
		session.baselineHappy = observation.EmotionScore("happy")
	}
	e.promptChallenge(session, now)
}

// promptChallenge announces the challenge at CurrentIndex and waits for the
// client's ready acknowledgement before the challenge clock starts.
func (e *Engine) promptChallenge(session *Session, now time.Time) {
	session.Phase = PhaseChallenging
	session.awaitingChallengeAck = true
	requested := now
	session.challengeRequestedAt = &requested
	session.challengeStartedAt = nil
	session.challengeStability.Reset()
	session.turnCentered = false
	session.turnStartYaw = 0
	session.blinkClosed = false
	session.lastEvaluation = ChallengeEvaluation{}
	e.emitState(session, now)
}

func (e *Engine) beginChallenge(session *Session, now time.Time) {
	session.awaitingChallengeAck = false
	started := now
	session.challengeStartedAt = &started
}

func (e *Engine) handleChallenging(session *Session, frame []byte, observation *types.FaceObservation, now time.Time) {
	if observation == nil {
		e.revertToDetecting(session, now)
		return
	}
	if session.awaitingChallengeAck {
		if now.Sub(*session.challengeRequestedAt) < session.timeouts.ChallengeReadyFallback {
			e.emitState(session, now)
			return
		}
		e.beginChallenge(session, now)
	}

	evaluation := evaluateChallenge(&e.Config, session, observation)
	session.lastEvaluation = evaluation

	if evaluation.Passed && session.challengeStability.Observe(true) {
		e.advanceChallenge(session, frame, observation, now)
		return
	}
	if !evaluation.Passed {
		session.challengeStability.Observe(false)
	}
	e.emitState(session, now)
}

func (e *Engine) advanceChallenge(session *Session, frame []byte, observation *types.FaceObservation, now time.Time) {
	session.challengeStability.Reset()
	challenge := session.currentChallenge()
	session.challengeFrames[challenge] = frame
	session.challengeFrameScores[challenge] = observation.Confidence
	session.CurrentIndex++

	logger.Info("challenge passed", logger.LoggerOptions{
		Key: "sessionId", Data: session.ID,
	}, logger.LoggerOptions{
		Key: "challenge", Data: challenge,
	}, logger.LoggerOptions{
		Key: "completed", Data: session.CurrentIndex,
	}, logger.LoggerOptions{
		Key: "total", Data: len(session.Challenges),
	})

	if session.CurrentIndex >= len(session.Challenges) {
		session.Phase = PhaseVerifying
		e.emitState(session, now)
		e.finalize(session, observation, now)
		return
	}
	e.promptChallenge(session, now)
}

// revertToDetecting handles loss of face in any pre-verify phase. Progress
// through already-passed challenges is kept.
func (e *Engine) revertToDetecting(session *Session, now time.Time) {
	session.Phase = PhaseDetecting
	session.countdownRequestedAt = nil
	session.countdownAcked = false
	session.awaitingChallengeAck = false
	session.challengeStartedAt = nil
	session.faceStability.Reset()
	session.challengeStability.Reset()
	e.emitState(session, now)
}

// HandleCountdownDone processes the client's countdown acknowledgement.
// Outside the countdown phase it is ignored.
func (e *Engine) HandleCountdownDone(session *Session) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.Phase != PhaseCountdown {
		return
	}
	session.countdownAcked = true
	now := e.Config.Now()
	if session.lastObservation == nil {
		e.revertToDetecting(session, now)
		return
	}
	session.Phase = PhaseBaseline
	e.handleBaseline(session, session.lastFrame, session.lastObservation, now)
}

// HandleChallengeReady starts the challenge clock. Duplicate or out-of-phase
// acknowledgements are ignored.
func (e *Engine) HandleChallengeReady(session *Session) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.Phase != PhaseChallenging || !session.awaitingChallengeAck {
		return
	}
	e.beginChallenge(session, e.Config.Now())
}

// HandleRetry reinitialises the session for another attempt. A completed
// session never restarts; past the retry budget the session fails
// terminally without touching any attempt state.
func (e *Engine) HandleRetry(session *Session) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.Phase == PhaseCompleted {
		session.emitter.Error(ErrCodeProtocol, "session already completed", false)
		return
	}
	if session.RetryCount >= e.Config.MaxRetries {
		session.Phase = PhaseFailed
		session.emitter.Failed(FailureRetriesExhausted, "no attempts left, please contact support", false)
		logger.Warning("liveness retry budget exhausted", logger.LoggerOptions{
			Key: "sessionId", Data: session.ID,
		})
		return
	}
	session.RetryCount++

	now := e.Config.Now()
	session.Phase = PhaseDetecting
	session.CurrentIndex = 0
	session.face = FaceState{}
	session.faceStability.Reset()
	session.challengeStability.Reset()
	session.baselineFrame = nil
	session.baselineHappy = 0
	for key := range session.challengeFrames {
		delete(session.challengeFrames, key)
	}
	for key := range session.challengeFrameScores {
		delete(session.challengeFrameScores, key)
	}
	session.turnCentered = false
	session.turnStartYaw = 0
	session.blinkClosed = false
	session.startedAt = now
	session.lastFrameAt = nil
	session.countdownRequestedAt = nil
	session.challengeRequestedAt = nil
	session.challengeStartedAt = nil
	session.completedAt = nil
	session.countdownAcked = false
	session.awaitingChallengeAck = false
	session.completionAcked = false
	session.inferenceErrors = 0
	session.lastFrame = nil
	session.lastObservation = nil
	session.lastEvaluation = ChallengeEvaluation{}

	logger.Info("liveness session retried", logger.LoggerOptions{
		Key: "sessionId", Data: session.ID,
	}, logger.LoggerOptions{
		Key: "retryCount", Data: session.RetryCount,
	})
	e.emitState(session, now)
}

// HandleCompletedAck records the client's receipt of the completion event.
// A missing acknowledgement is logged, never acted on.
func (e *Engine) HandleCompletedAck(session *Session) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.Phase != PhaseCompleted || session.completionAcked {
		return
	}
	session.completionAcked = true
	if session.completedAt != nil {
		latency := e.Config.Now().Sub(*session.completedAt)
		if latency > session.timeouts.CompletionAck {
			logger.Warning("completion acknowledged late", logger.LoggerOptions{
				Key: "sessionId", Data: session.ID,
			}, logger.LoggerOptions{
				Key: "latencyMs", Data: latency.Milliseconds(),
			})
		}
	}
}

// CloseSession releases frame buffers when the connection goes away. The
// session outcome, if any, has already been persisted.
func (e *Engine) CloseSession(session *Session, reason string) {
	if session == nil {
		return
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	session.releaseBuffers()
	logger.Info("liveness session closed", logger.LoggerOptions{
		Key: "sessionId", Data: session.ID,
	}, logger.LoggerOptions{
		Key: "phase", Data: session.Phase,
	}, logger.LoggerOptions{
		Key: "reason", Data: reason,
	})
}

func (e *Engine) fail(session *Session, code FailureCode, message string) {
	if session.Terminal() {
		return
	}
	session.Phase = PhaseFailed
	canRetry := session.RetryCount < e.Config.MaxRetries
	logger.Warning("liveness session failed", logger.LoggerOptions{
		Key: "sessionId", Data: session.ID,
	}, logger.LoggerOptions{
		Key: "code", Data: code,
	}, logger.LoggerOptions{
		Key: "canRetry", Data: canRetry,
	})
	session.emitter.Failed(code, message, canRetry)
}

func (e *Engine) emitState(session *Session, now time.Time) {
	snapshot := StateSnapshot{
		SessionID:   session.ID,
		Phase:       session.Phase,
		FacePresent: session.face.Present,
		Timeouts:    session.timeouts.Snapshot(),
	}
	if session.Phase == PhaseCountdown && session.countdownRequestedAt != nil {
		remaining := e.Config.CountdownSeconds - int(now.Sub(*session.countdownRequestedAt)/time.Second)
		if remaining < 0 {
			remaining = 0
		}
		snapshot.Countdown = &remaining
	}
	if session.Phase == PhaseChallenging && session.CurrentIndex < len(session.Challenges) {
		challenge := session.currentChallenge()
		descriptor := &ChallengeDescriptor{
			Type:     challenge,
			Index:    session.CurrentIndex,
			Total:    len(session.Challenges),
			Progress: session.lastEvaluation.Progress,
			Hint:     session.lastEvaluation.Hint,
		}
		if instruction, ok := constants.CHALLENGE_INSTRUCTIONS[string(challenge)]; ok {
			descriptor.Title = instruction.Title
			descriptor.Instruction = instruction.Instruction
			descriptor.Icon = instruction.Icon
			descriptor.TimeoutSeconds = instruction.TimeoutSeconds
		}
		snapshot.Challenge = descriptor
	}
	session.emitter.State(snapshot)
}
