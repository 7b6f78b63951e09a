package inference

import (
	"os"

	"livegate.io/infrastructure/inference/types"
	"livegate.io/infrastructure/network"
)

var InferenceEngine types.FaceInferenceEngine

func InitialiseInferenceEngine() {
	InferenceEngine = &DeepSightClient{
		Network: &network.NetworkController{
			BaseUrl: os.Getenv("DEEPSIGHT_BASE_URL"),
		},
	}
}
