package validator

import (
	"encoding/base64"
	"strings"

	"github.com/go-playground/validator/v10"
)

var challengeTypes = map[string]bool{
	"smile":      true,
	"blink":      true,
	"turn_left":  true,
	"turn_right": true,
}

func validateChallengeType(fl validator.FieldLevel) bool {
	return challengeTypes[fl.Field().String()]
}

func validateBase64Image(fl validator.FieldLevel) bool {
	payload := fl.Field().String()
	if payload == "" {
		return false
	}
	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) != 2 {
			return false
		}
		payload = parts[1]
	}
	_, err := base64.StdEncoding.DecodeString(payload)
	return err == nil
}
