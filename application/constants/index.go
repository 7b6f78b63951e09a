package constants

import "time"

// liveness challenge policy defaults
//
// these are empirically tuned starting points, not invariants. every one of
// them can be overridden per deployment through env or per session through
// the start payload where noted.

var FACE_STABILITY_FRAMES int = 3     // consecutive frames with a face before countdown starts
var CHALLENGE_PASS_FRAMES int = 2     // consecutive passing frames before a challenge is confirmed
var MIN_FRAME_INTERVAL = 200 * time.Millisecond
var INFERENCE_CONCURRENCY int64 = 4   // process-wide cap on concurrent detector calls
var MAX_INFERENCE_ERRORS int = 3      // consecutive detector errors before a transient error event

var SMILE_SCORE_THRESHOLD float64 = 0.5
var SMILE_DELTA_THRESHOLD float64 = 0.3
var SMILE_HIGH_THRESHOLD float64 = 0.8

var TURN_ABSOLUTE_THRESHOLD float64 = 15.0 // degrees of yaw from the centered anchor
var TURN_SIGNIFICANT_DELTA float64 = 10.0
var TURN_CENTER_THRESHOLD float64 = 8.0

var BLINK_CLOSED_EAR float64 = 0.21
var BLINK_OPEN_EAR float64 = 0.25

var ANTISPOOF_THRESHOLD float64 = 0.3
var LIVENESS_THRESHOLD float64 = 0.5

var SESSION_TIMEOUT = 120 * time.Second
var CHALLENGE_TIMEOUT = 15 * time.Second
var COUNTDOWN_FALLBACK = 3 * time.Second
var CHALLENGE_READY_FALLBACK = 2 * time.Second
var COMPLETION_ACK_TIMEOUT = 5 * time.Second
var COUNTDOWN_SECONDS int = 3

var MAX_SESSION_RETRIES int = 3

var RESULT_CACHE_TTL = 10 * time.Minute

// ChallengeInstruction is the client-facing description of a challenge,
// echoed verbatim in state snapshots.
type ChallengeInstruction struct {
	Title          string
	Instruction    string
	Icon           string
	TimeoutSeconds int
}

var CHALLENGE_INSTRUCTIONS = map[string]ChallengeInstruction{
	"smile": {
		Title:          "Smile",
		Instruction:    "Please smile!",
		Icon:           "smile",
		TimeoutSeconds: 10,
	},
	"blink": {
		Title:          "Blink",
		Instruction:    "Please blink your eyes",
		Icon:           "eye",
		TimeoutSeconds: 8,
	},
	"turn_left": {
		Title:          "Turn Left",
		Instruction:    "Turn your head to the left",
		Icon:           "arrow-left",
		TimeoutSeconds: 8,
	},
	"turn_right": {
		Title:          "Turn Right",
		Instruction:    "Turn your head to the right",
		Icon:           "arrow-right",
		TimeoutSeconds: 8,
	},
}
