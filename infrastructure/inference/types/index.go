package types

import "context"

// FaceInferenceEngine is the narrow interface through which the liveness
// engine consumes the external face inference service. Implementations are
// expected to be safe for concurrent use; the caller bounds concurrency.
type FaceInferenceEngine interface {
	Detect(ctx context.Context, frame []byte) (*DetectionResult, error)
}

type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type FaceObservation struct {
	Box        BoundingBox `json:"box"`
	Confidence float64     `json:"confidence"`

	// EmotionScores maps emotion names (happy, neutral, sad, ...) to 0..1.
	EmotionScores map[string]float64 `json:"emotion_scores"`

	AntispoofScore float64 `json:"antispoof_score"`
	LivenessScore  float64 `json:"liveness_score"`

	// Yaw is the head rotation in degrees. Negative values mean the subject
	// turned to their left, positive to their right, zero facing the camera.
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`

	// EyeAspectRatio is the averaged EAR of both eyes. Values below ~0.21
	// indicate closed eyes.
	EyeAspectRatio float64 `json:"eye_aspect_ratio"`
}

type DetectionResult struct {
	Faces            []FaceObservation `json:"faces"`
	ProcessingTimeMs int               `json:"processing_time_ms"`
	Error            *string           `json:"error"`
}

// PrimaryFace returns the largest detected face or nil when none was found.
func (result *DetectionResult) PrimaryFace() *FaceObservation {
	if result == nil || len(result.Faces) == 0 {
		return nil
	}
	primary := &result.Faces[0]
	for i := range result.Faces[1:] {
		candidate := &result.Faces[i+1]
		if candidate.Box.Width*candidate.Box.Height > primary.Box.Width*primary.Box.Height {
			primary = candidate
		}
	}
	return primary
}

func (observation *FaceObservation) EmotionScore(emotion string) float64 {
	if observation.EmotionScores == nil {
		return 0
	}
	return observation.EmotionScores[emotion]
}
