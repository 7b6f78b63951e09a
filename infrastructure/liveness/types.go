package liveness

import (
	"sync"
	"sync/atomic"
	"time"

	"livegate.io/entities"
	"livegate.io/infrastructure/inference/types"
)

type Phase string

const (
	PhaseDetecting   Phase = "detecting"
	PhaseCountdown   Phase = "countdown"
	PhaseBaseline    Phase = "baseline"
	PhaseChallenging Phase = "challenging"
	PhaseVerifying   Phase = "verifying"
	PhaseCompleted   Phase = "completed"
	PhaseFailed      Phase = "failed"
)

type ChallengeType string

const (
	ChallengeSmile     ChallengeType = "smile"
	ChallengeBlink     ChallengeType = "blink"
	ChallengeTurnLeft  ChallengeType = "turn_left"
	ChallengeTurnRight ChallengeType = "turn_right"
)

// FailureCode is the stable machine-readable reason a session failed.
// Clients use it to decide between "try again" and "contact support".
type FailureCode string

const (
	FailureSessionTimeout   FailureCode = "session_timeout"
	FailureChallengeTimeout FailureCode = "challenge_timeout"
	FailureAntispoof        FailureCode = "antispoof_failed"
	FailureLiveness         FailureCode = "liveness_failed"
	FailureRetriesExhausted FailureCode = "retries_exhausted"
)

const (
	ErrCodeProtocol  = "protocol_violation"
	ErrCodeInference = "inference_error"
)

type ChallengeDescriptor struct {
	Type           ChallengeType `json:"challengeType"`
	Index          int           `json:"index"`
	Total          int           `json:"total"`
	Title          string        `json:"title"`
	Instruction    string        `json:"instruction"`
	Icon           string        `json:"icon"`
	TimeoutSeconds int           `json:"timeoutSeconds"`
	Progress       int           `json:"progress"`
	Hint           string        `json:"hint"`
}

type StateSnapshot struct {
	SessionID   string               `json:"sessionId"`
	Phase       Phase                `json:"phase"`
	FacePresent bool                 `json:"facePresent"`
	Countdown   *int                 `json:"countdown,omitempty"`
	Challenge   *ChallengeDescriptor `json:"challenge,omitempty"`
	Timeouts    TimeoutSnapshot      `json:"timeouts"`
}

type CompletionResult struct {
	Verified        bool    `json:"verified"`
	SessionID       string  `json:"sessionId"`
	SelfieImage     string  `json:"selfieImage"`
	Confidence      float64 `json:"confidence"`
	AntispoofPassed bool    `json:"antispoofPassed"`
	LivenessPassed  bool    `json:"livenessPassed"`
	DraftUpdated    bool    `json:"draftUpdated"`
}

// EventEmitter delivers outbound session events to the connected client.
// The engine never decides how events are encoded or transported.
type EventEmitter interface {
	State(snapshot StateSnapshot)
	Completed(result CompletionResult, ackTimeout time.Duration)
	Failed(code FailureCode, message string, canRetry bool)
	Error(code string, message string, transient bool)
}

type DraftUpdate struct {
	UserID         string
	AntispoofScore float64
	LiveScore      float64
	LivenessPassed bool
}

// DraftStore is the external identity-draft store. The engine performs at
// most one UpdateDraft call per completed session.
type DraftStore interface {
	GetDraftByID(id string) (*entities.VerificationDraft, error)
	UpdateDraft(id string, update DraftUpdate) error
}

// FraudReporter receives security-relevant failures. Repeated anti-spoof
// failures across sessions are an operator fraud signal.
type FraudReporter interface {
	ReportSecurityFailure(sessionID string, code FailureCode, antispoofScore float64, livenessScore float64)
}

// ResultCache stores a short-lived summary of completed sessions for
// introspection. Failures to cache are non-fatal.
type ResultCache interface {
	StoreResult(sessionID string, payload []byte, ttl time.Duration) bool
}

type StartOptions struct {
	ChallengeCount    int
	RequireHeadTurn   bool
	ExcludeChallenges []ChallengeType
	Timeouts          *TimeoutOverrides
	DraftID           *string
	UserID            *string
}

type FaceState struct {
	Present bool
	Box     types.BoundingBox
}

// Session is one liveness verification attempt bound to a single
// connection. All mutation happens on the owning connection's handler
// chain; mu serialises frame handlers against side-channel events and
// inFlight drops frames that arrive while the previous one is still being
// processed.
type Session struct {
	ID         string
	Phase      Phase
	Challenges []ChallengeType

	CurrentIndex int
	RetryCount   int

	face FaceState

	faceStability      StabilityAccumulator
	challengeStability StabilityAccumulator

	baselineFrame []byte
	baselineHappy float64

	challengeFrames      map[ChallengeType][]byte
	challengeFrameScores map[ChallengeType]float64

	turnStartYaw float64
	turnCentered bool
	blinkClosed  bool

	startedAt            time.Time
	lastFrameAt          *time.Time
	countdownRequestedAt *time.Time
	challengeRequestedAt *time.Time
	challengeStartedAt   *time.Time
	completedAt          *time.Time

	countdownAcked       bool
	awaitingChallengeAck bool
	completionAcked      bool
	inferenceErrors      int

	lastFrame       []byte
	lastObservation *types.FaceObservation
	lastEvaluation  ChallengeEvaluation

	draftID *string
	userID  *string

	timeouts TimeoutConfig
	emitter  EventEmitter

	mu       sync.Mutex
	inFlight atomic.Bool
}

func (s *Session) Terminal() bool {
	return s.Phase == PhaseCompleted || s.Phase == PhaseFailed
}

func (s *Session) currentChallenge() ChallengeType {
	return s.Challenges[s.CurrentIndex]
}

// releaseBuffers drops every retained frame so a disconnected session does
// not pin image data in memory.
func (s *Session) releaseBuffers() {
	s.baselineFrame = nil
	s.lastFrame = nil
	s.lastObservation = nil
	for key := range s.challengeFrames {
		delete(s.challengeFrames, key)
	}
}
