package utils

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

func GenerateUULDString() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.DefaultEntropy()).String()
}

func GetStringPointer(text string) *string {
	return &text
}

func GetBooleanPointer(data bool) *bool {
	return &data
}

func GetFloat64Pointer(data float64) *float64 {
	return &data
}

func GetIntPointer(data int) *int {
	return &data
}

// DecodeBase64Image decodes a base64 encoded image, with or without a
// data URL prefix (data:image/jpeg;base64,...).
func DecodeBase64Image(image string) ([]byte, error) {
	if strings.HasPrefix(image, "data:") {
		parts := strings.Split(image, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid data URL format")
		}
		image = parts[1]
	}
	payload, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	return payload, nil
}

func HasItemString(arr *[]string, target string) bool {
	for _, v := range *arr {
		if v == target {
			return true
		}
	}
	return false
}
