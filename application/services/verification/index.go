package verification

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"livegate.io/application/repository"
	"livegate.io/entities"
	"livegate.io/infrastructure/database/repository/cache"
	"livegate.io/infrastructure/inference"
	"livegate.io/infrastructure/liveness"
	"livegate.io/infrastructure/logger"
	messagequeue "livegate.io/infrastructure/message_queue"
	queue_tasks "livegate.io/infrastructure/message_queue/tasks"
	mq_types "livegate.io/infrastructure/message_queue/types"
)

// LivenessEngine is the process-wide verification engine. Initialise must
// run after the database and inference connections are up.
var LivenessEngine *liveness.Engine

func Initialise() {
	engine := liveness.NewEngine(inference.InferenceEngine, draftStore{}, liveness.DefaultConfig())
	engine.Cache = resultCache{}
	engine.Fraud = fraudReporter{}
	LivenessEngine = engine
	logger.Info("verification service initialised")
}

// FetchResult returns the cached summary of a finished session, if it has
// not expired.
func FetchResult(sessionID string) *string {
	return cache.Cache.FindOne(fmt.Sprintf("liveness-result-%s", sessionID))
}

type draftStore struct{}

func (draftStore) GetDraftByID(id string) (*entities.VerificationDraft, error) {
	return repository.DraftRepo().FindOneByID(id)
}

func (draftStore) UpdateDraft(id string, update liveness.DraftUpdate) error {
	modified, err := repository.DraftRepo().UpdatePartialByID(id, map[string]any{
		"antispoofScore": update.AntispoofScore,
		"liveScore":      update.LiveScore,
		"livenessPassed": update.LivenessPassed,
		"status":         "verified",
		"verifiedAt":     time.Now(),
	})
	if err != nil {
		return err
	}
	if modified == 0 {
		return errors.New("draft not found")
	}
	return nil
}

type resultCache struct{}

func (resultCache) StoreResult(sessionID string, payload []byte, ttl time.Duration) bool {
	return cache.Cache.CreateEntry(fmt.Sprintf("liveness-result-%s", sessionID), payload, ttl)
}

type fraudReporter struct{}

func (fraudReporter) ReportSecurityFailure(sessionID string, code liveness.FailureCode, antispoofScore float64, livenessScore float64) {
	payload, err := json.Marshal(queue_tasks.FraudSignalPayload{
		SessionID:      sessionID,
		Code:           string(code),
		AntispoofScore: antispoofScore,
		LivenessScore:  livenessScore,
		OccurredAt:     time.Now(),
	})
	if err != nil {
		return
	}
	messagequeue.TaskQueue.Enqueue(mq_types.QueueTask{
		Name:     queue_tasks.HandleFraudSignalTaskName,
		Payload:  payload,
		Priority: mq_types.High,
		TimeOut:  30,
		MaxRetry: 3,
	})
}
