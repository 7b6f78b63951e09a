package liveness

import (
	"time"

	"livegate.io/application/constants"
)

type TimeoutConfig struct {
	Session                time.Duration
	Challenge              time.Duration
	CountdownFallback      time.Duration
	ChallengeReadyFallback time.Duration
	CompletionAck          time.Duration
}

// TimeoutSnapshot is the wire form of the timeout settings, echoed back on
// every state event so clients can render accurate countdowns.
type TimeoutSnapshot struct {
	SessionSeconds       int `json:"sessionSeconds"`
	ChallengeSeconds     int `json:"challengeSeconds"`
	CountdownFallbackMs  int `json:"countdownFallbackMs"`
	ChallengeReadyMs     int `json:"challengeReadyMs"`
	CompletionAckSeconds int `json:"completionAckSeconds"`
}

func (t TimeoutConfig) Snapshot() TimeoutSnapshot {
	return TimeoutSnapshot{
		SessionSeconds:       int(t.Session / time.Second),
		ChallengeSeconds:     int(t.Challenge / time.Second),
		CountdownFallbackMs:  int(t.CountdownFallback / time.Millisecond),
		ChallengeReadyMs:     int(t.ChallengeReadyFallback / time.Millisecond),
		CompletionAckSeconds: int(t.CompletionAck / time.Second),
	}
}

// TimeoutOverrides carries the optional per-session timeout values a client
// may request at session start. Values are in seconds and validated at the
// transport boundary.
type TimeoutOverrides struct {
	SessionSeconds   *int `json:"sessionTimeoutSeconds" validate:"omitempty,min=30,max=600"`
	ChallengeSeconds *int `json:"challengeTimeoutSeconds" validate:"omitempty,min=5,max=60"`
}

func (t TimeoutConfig) withOverrides(overrides *TimeoutOverrides) TimeoutConfig {
	if overrides == nil {
		return t
	}
	if overrides.SessionSeconds != nil {
		t.Session = time.Duration(*overrides.SessionSeconds) * time.Second
	}
	if overrides.ChallengeSeconds != nil {
		t.Challenge = time.Duration(*overrides.ChallengeSeconds) * time.Second
	}
	return t
}

type Config struct {
	FaceStabilityFrames int
	ChallengePassFrames int

	MinFrameInterval     time.Duration
	InferenceConcurrency int64
	MaxInferenceErrors   int

	SmileScoreThreshold float64
	SmileDeltaThreshold float64
	SmileHighThreshold  float64

	TurnAbsoluteThreshold float64
	TurnSignificantDelta  float64
	TurnCenterThreshold   float64

	BlinkClosedEAR float64
	BlinkOpenEAR   float64

	AntispoofThreshold float64
	LivenessThreshold  float64

	CountdownSeconds int
	MaxRetries       int

	ResultCacheTTL time.Duration

	Timeouts TimeoutConfig

	// Now is the clock used for every timing decision. Tests inject a
	// fake; production uses time.Now.
	Now func() time.Time
}

func DefaultConfig() Config {
	return Config{
		FaceStabilityFrames:   constants.FACE_STABILITY_FRAMES,
		ChallengePassFrames:   constants.CHALLENGE_PASS_FRAMES,
		MinFrameInterval:      constants.MIN_FRAME_INTERVAL,
		InferenceConcurrency:  constants.INFERENCE_CONCURRENCY,
		MaxInferenceErrors:    constants.MAX_INFERENCE_ERRORS,
		SmileScoreThreshold:   constants.SMILE_SCORE_THRESHOLD,
		SmileDeltaThreshold:   constants.SMILE_DELTA_THRESHOLD,
		SmileHighThreshold:    constants.SMILE_HIGH_THRESHOLD,
		TurnAbsoluteThreshold: constants.TURN_ABSOLUTE_THRESHOLD,
		TurnSignificantDelta:  constants.TURN_SIGNIFICANT_DELTA,
		TurnCenterThreshold:   constants.TURN_CENTER_THRESHOLD,
		BlinkClosedEAR:        constants.BLINK_CLOSED_EAR,
		BlinkOpenEAR:          constants.BLINK_OPEN_EAR,
		AntispoofThreshold:    constants.ANTISPOOF_THRESHOLD,
		LivenessThreshold:     constants.LIVENESS_THRESHOLD,
		CountdownSeconds:      constants.COUNTDOWN_SECONDS,
		MaxRetries:            constants.MAX_SESSION_RETRIES,
		ResultCacheTTL:        constants.RESULT_CACHE_TTL,
		Timeouts: TimeoutConfig{
			Session:                constants.SESSION_TIMEOUT,
			Challenge:              constants.CHALLENGE_TIMEOUT,
			CountdownFallback:      constants.COUNTDOWN_FALLBACK,
			ChallengeReadyFallback: constants.CHALLENGE_READY_FALLBACK,
			CompletionAck:          constants.COMPLETION_ACK_TIMEOUT,
		},
		Now: time.Now,
	}
}
