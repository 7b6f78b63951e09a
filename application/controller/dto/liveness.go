package dto

import (
	"livegate.io/infrastructure/liveness"
)

// StartSessionDTO is the payload of the start event that opens a
// verification session on an established socket.
type StartSessionDTO struct {
	ChallengeCount    int                        `json:"challengeCount" validate:"omitempty,min=2,max=4"`
	RequireHeadTurn   bool                       `json:"requireHeadTurn"`
	ExcludeChallenges []string                   `json:"excludeChallenges" validate:"omitempty,max=2,dive,challenge_type"`
	DraftID           *string                    `json:"draftId" validate:"omitempty,required_with=UserID,min=1,max=64"`
	UserID            *string                    `json:"userId" validate:"omitempty,required_with=DraftID,min=1,max=64"`
	Timeouts          *liveness.TimeoutOverrides `json:"timeouts" validate:"omitempty"`
}

func (payload *StartSessionDTO) ToStartOptions() liveness.StartOptions {
	exclude := make([]liveness.ChallengeType, 0, len(payload.ExcludeChallenges))
	for _, challenge := range payload.ExcludeChallenges {
		exclude = append(exclude, liveness.ChallengeType(challenge))
	}
	count := payload.ChallengeCount
	if count == 0 {
		count = 2
	}
	return liveness.StartOptions{
		ChallengeCount:    count,
		RequireHeadTurn:   payload.RequireHeadTurn,
		ExcludeChallenges: exclude,
		Timeouts:          payload.Timeouts,
		DraftID:           payload.DraftID,
		UserID:            payload.UserID,
	}
}

// FramePayloadDTO carries one camera frame as a base64 string, with or
// without a data URL prefix.
type FramePayloadDTO struct {
	Image string `json:"image" validate:"required,base64image"`
}
