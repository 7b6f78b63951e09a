package inference

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"livegate.io/infrastructure/inference/types"
	"livegate.io/infrastructure/logger"
	"livegate.io/infrastructure/network"
)

// DeepSightClient talks to the deepsight face analysis service over HTTP.
// One Detect call analyses a single frame and returns every face found in
// it along with emotion, pose and anti-spoofing metrics. Frames are
// processed transiently by the service and never stored.
type DeepSightClient struct {
	Network *network.NetworkController
}

type detectRequest struct {
	Image string `json:"image"`
}

func (d *DeepSightClient) Detect(ctx context.Context, frame []byte) (*types.DetectionResult, error) {
	requestBody := detectRequest{
		Image: base64.StdEncoding.EncodeToString(frame),
	}

	response, statusCode, err := d.Network.Post("/detect", &map[string]string{}, requestBody)
	if err != nil {
		logger.Error("error performing face detection", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}

	if statusCode == nil || *statusCode != 200 {
		logger.Error("face detection failed with status code", logger.LoggerOptions{
			Key:  "status_code",
			Data: statusCode,
		})
		return nil, fmt.Errorf("face detection failed")
	}

	var result types.DetectionResult
	if err := json.Unmarshal(*response, &result); err != nil {
		logger.Error("error unmarshaling face detection response", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	if result.Error != nil {
		return nil, fmt.Errorf("face detection failed: %s", *result.Error)
	}

	return &result, nil
}
