package liveness

import (
	"math"

	"livegate.io/infrastructure/inference/types"
)

// ChallengeEvaluation is the per-frame outcome of a challenge check.
// Progress and Hint are advisory feedback for the client; only Passed
// feeds the pass/fail decision.
type ChallengeEvaluation struct {
	Passed   bool
	Progress int
	Hint     string
}

func evaluateChallenge(cfg *Config, session *Session, observation *types.FaceObservation) ChallengeEvaluation {
	switch session.currentChallenge() {
	case ChallengeSmile:
		return evaluateSmile(cfg, session, observation)
	case ChallengeTurnLeft:
		return evaluateTurn(cfg, session, observation, true)
	case ChallengeTurnRight:
		return evaluateTurn(cfg, session, observation, false)
	case ChallengeBlink:
		return evaluateBlink(cfg, session, observation)
	}
	return ChallengeEvaluation{}
}

// evaluateSmile passes on a clear smile relative to the neutral baseline
// captured before the first challenge, or outright on a very strong happy
// score regardless of baseline.
func evaluateSmile(cfg *Config, session *Session, observation *types.FaceObservation) ChallengeEvaluation {
	happy := observation.EmotionScore("happy")
	delta := happy - session.baselineHappy

	passed := (happy >= cfg.SmileScoreThreshold && delta >= cfg.SmileDeltaThreshold) ||
		happy >= cfg.SmileHighThreshold

	evaluation := ChallengeEvaluation{
		Passed:   passed,
		Progress: clipProgress(happy / cfg.SmileHighThreshold * 100),
	}
	if passed {
		evaluation.Progress = 100
		return evaluation
	}
	if happy < cfg.SmileScoreThreshold {
		evaluation.Hint = "smile a little wider"
	} else {
		evaluation.Hint = "hold that smile"
	}
	return evaluation
}

// evaluateTurn requires the head to pass through centre before any turn is
// measured. The centred yaw anchors the signed delta, so a subject already
// holding the target pose when the challenge starts does not pass.
func evaluateTurn(cfg *Config, session *Session, observation *types.FaceObservation, left bool) ChallengeEvaluation {
	side := "right"
	if left {
		side = "left"
	}

	if !session.turnCentered {
		if math.Abs(observation.Yaw) <= cfg.TurnCenterThreshold {
			session.turnCentered = true
			session.turnStartYaw = observation.Yaw
			return ChallengeEvaluation{Hint: "now turn your head to the " + side}
		}
		return ChallengeEvaluation{Hint: "look straight at the camera first"}
	}

	delta := observation.Yaw - session.turnStartYaw
	correctDirection := (left && delta < 0) || (!left && delta > 0)
	magnitude := math.Abs(delta)

	passed := correctDirection &&
		(math.Abs(observation.Yaw) >= cfg.TurnAbsoluteThreshold || magnitude >= cfg.TurnSignificantDelta)

	evaluation := ChallengeEvaluation{
		Passed:   passed,
		Progress: clipProgress(magnitude / cfg.TurnAbsoluteThreshold * 100),
	}
	if passed {
		evaluation.Progress = 100
		return evaluation
	}
	if !correctDirection && magnitude > cfg.TurnCenterThreshold/2 {
		evaluation.Hint = "wrong way, turn to your " + side
		evaluation.Progress = 0
		return evaluation
	}
	evaluation.Hint = "keep turning to the " + side
	return evaluation
}

// evaluateBlink passes once the eyes have closed below the blink threshold
// and reopened above the open threshold within the same challenge. The open
// threshold sits above the closed threshold so jitter around a single value
// cannot register a blink.
func evaluateBlink(cfg *Config, session *Session, observation *types.FaceObservation) ChallengeEvaluation {
	ear := observation.EyeAspectRatio

	if !session.blinkClosed {
		if ear > 0 && ear < cfg.BlinkClosedEAR {
			session.blinkClosed = true
			return ChallengeEvaluation{Progress: 50, Hint: "now open your eyes"}
		}
		return ChallengeEvaluation{Hint: "blink naturally"}
	}
	if ear > cfg.BlinkOpenEAR {
		return ChallengeEvaluation{Passed: true, Progress: 100}
	}
	return ChallengeEvaluation{Progress: 50, Hint: "now open your eyes"}
}

func clipProgress(value float64) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return int(value)
}
