package dto

import (
	"testing"

	"livegate.io/application/utils"
	"livegate.io/infrastructure/liveness"
	"livegate.io/infrastructure/validator"
)

func TestValidateStartSessionDTO(t *testing.T) {
	tests := []struct {
		name    string
		payload StartSessionDTO
		wantErr bool
	}{
		{
			name:    "empty payload uses defaults",
			payload: StartSessionDTO{},
			wantErr: false,
		},
		{
			name:    "challenge count in range",
			payload: StartSessionDTO{ChallengeCount: 3},
			wantErr: false,
		},
		{
			name:    "challenge count too low",
			payload: StartSessionDTO{ChallengeCount: 1},
			wantErr: true,
		},
		{
			name:    "challenge count too high",
			payload: StartSessionDTO{ChallengeCount: 5},
			wantErr: true,
		},
		{
			name:    "known challenge exclusions",
			payload: StartSessionDTO{ExcludeChallenges: []string{"smile", "blink"}},
			wantErr: false,
		},
		{
			name:    "unknown challenge exclusion",
			payload: StartSessionDTO{ExcludeChallenges: []string{"wink"}},
			wantErr: true,
		},
		{
			name:    "too many exclusions",
			payload: StartSessionDTO{ExcludeChallenges: []string{"smile", "blink", "turn_left"}},
			wantErr: true,
		},
		{
			name: "draft without user",
			payload: StartSessionDTO{
				DraftID: utils.GetStringPointer("draft-1"),
			},
			wantErr: true,
		},
		{
			name: "draft with user",
			payload: StartSessionDTO{
				DraftID: utils.GetStringPointer("draft-1"),
				UserID:  utils.GetStringPointer("user-1"),
			},
			wantErr: false,
		},
		{
			name: "session timeout override out of range",
			payload: StartSessionDTO{
				Timeouts: &liveness.TimeoutOverrides{
					SessionSeconds: utils.GetIntPointer(10),
				},
			},
			wantErr: true,
		},
		{
			name: "timeout overrides in range",
			payload: StartSessionDTO{
				Timeouts: &liveness.TimeoutOverrides{
					SessionSeconds:   utils.GetIntPointer(90),
					ChallengeSeconds: utils.GetIntPointer(20),
				},
			},
			wantErr: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			errs := validator.ValidatorInstance.ValidateStruct(test.payload)
			if test.wantErr && errs == nil {
				t.Errorf("expected validation errors, got none")
			}
			if !test.wantErr && errs != nil {
				t.Errorf("unexpected validation errors: %v", *errs)
			}
		})
	}
}

func TestStartSessionDTOToStartOptions(t *testing.T) {
	payload := StartSessionDTO{
		ChallengeCount:    3,
		RequireHeadTurn:   true,
		ExcludeChallenges: []string{"blink"},
	}
	opts := payload.ToStartOptions()
	if opts.ChallengeCount != 3 {
		t.Errorf("expected challenge count 3, got %d", opts.ChallengeCount)
	}
	if !opts.RequireHeadTurn {
		t.Error("expected head turn requirement to carry over")
	}
	if len(opts.ExcludeChallenges) != 1 || opts.ExcludeChallenges[0] != liveness.ChallengeBlink {
		t.Errorf("unexpected exclusions: %v", opts.ExcludeChallenges)
	}

	defaulted := StartSessionDTO{}
	if defaulted.ToStartOptions().ChallengeCount != 2 {
		t.Error("expected zero challenge count to default to 2")
	}
}

func TestValidateFramePayloadDTO(t *testing.T) {
	tests := []struct {
		name    string
		payload FramePayloadDTO
		wantErr bool
	}{
		{"missing image", FramePayloadDTO{}, true},
		{"plain base64", FramePayloadDTO{Image: "aGVsbG8gd29ybGQ="}, false},
		{"data url", FramePayloadDTO{Image: "data:image/jpeg;base64,aGVsbG8gd29ybGQ="}, false},
		{"not base64", FramePayloadDTO{Image: "!!not-base64!!"}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			errs := validator.ValidatorInstance.ValidateStruct(test.payload)
			if test.wantErr && errs == nil {
				t.Errorf("expected validation errors, got none")
			}
			if !test.wantErr && errs != nil {
				t.Errorf("unexpected validation errors: %v", *errs)
			}
		})
	}
}
