package liveness

import (
	"context"

	"golang.org/x/sync/semaphore"

	"livegate.io/infrastructure/inference/types"
)

// InferenceLimiter caps concurrent detector calls across every session in
// the process. Callers queue on the semaphore in arrival order.
type InferenceLimiter struct {
	sem *semaphore.Weighted
}

func NewInferenceLimiter(capacity int64) *InferenceLimiter {
	if capacity < 1 {
		capacity = 1
	}
	return &InferenceLimiter{sem: semaphore.NewWeighted(capacity)}
}

func (limiter *InferenceLimiter) Detect(ctx context.Context, engine types.FaceInferenceEngine, frame []byte) (*types.DetectionResult, error) {
	if err := limiter.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer limiter.sem.Release(1)
	return engine.Detect(ctx, frame)
}
