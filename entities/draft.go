package entities

import (
	"time"

	"livegate.io/application/utils"
)

// VerificationDraft is the persistent record of an in-progress identity
// verification. The liveness engine attaches its verdict to the draft the
// user presented at session start, after validating ownership.
type VerificationDraft struct {
	UserID         string   `bson:"userID" json:"userID"`
	Status         string   `bson:"status" json:"status"`
	AntispoofScore *float64 `bson:"antispoofScore" json:"antispoofScore"`
	LiveScore      *float64 `bson:"liveScore" json:"liveScore"`
	LivenessPassed *bool    `bson:"livenessPassed" json:"livenessPassed"`

	ID         string     `bson:"_id" json:"id"`
	VerifiedAt *time.Time `bson:"verifiedAt" json:"verifiedAt"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (model VerificationDraft) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
		if model.ID == "" {
			model.ID = utils.GenerateUULDString()
		}
	}
	if model.Status == "" {
		model.Status = "pending"
	}
	model.UpdatedAt = now
	return &model
}
