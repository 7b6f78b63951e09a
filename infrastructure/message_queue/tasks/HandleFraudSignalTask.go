package queue_tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"livegate.io/infrastructure/database/repository/cache"
	"livegate.io/infrastructure/logger"
	mq_types "livegate.io/infrastructure/message_queue/types"
)

var HandleFraudSignalTaskName mq_types.Queues = "record_fraud_signal"

// FraudSignalPayload describes one security-relevant verification failure.
// Operators query these records when reviewing suspicious accounts.
type FraudSignalPayload struct {
	SessionID      string    `json:"sessionId"`
	Code           string    `json:"code"`
	AntispoofScore float64   `json:"antispoofScore"`
	LivenessScore  float64   `json:"livenessScore"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func HandleFraudSignalTask(ctx context.Context, t *asynq.Task) error {
	var payload FraudSignalPayload
	err := json.Unmarshal(t.Payload(), &payload)
	if err != nil {
		logger.Error("an error occured while unmarshalling fraud signal payload", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	logger.Warning("security failure recorded", logger.LoggerOptions{
		Key:  "sessionId",
		Data: payload.SessionID,
	}, logger.LoggerOptions{
		Key:  "code",
		Data: payload.Code,
	}, logger.LoggerOptions{
		Key:  "antispoofScore",
		Data: payload.AntispoofScore,
	})

	record, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	cache.Cache.CreateEntry(fmt.Sprintf("fraud-signal-%s", payload.SessionID), record, time.Hour*24)
	return nil
}
