package liveness

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livegate.io/infrastructure/inference/types"
)

// With capacity one, a second detector call must wait for the first to
// finish even when both come from different sessions.
func TestInferenceLimiterSerialisesAtCapacityOne(t *testing.T) {
	limiter := NewInferenceLimiter(1)

	firstEntered := make(chan struct{})
	release := make(chan struct{})

	var mu sync.Mutex
	var order []string

	detector := detectorFunc(func(ctx context.Context, frame []byte) (*types.DetectionResult, error) {
		mu.Lock()
		order = append(order, string(frame)+":start")
		mu.Unlock()
		if string(frame) == "first" {
			close(firstEntered)
			<-release
		}
		mu.Lock()
		order = append(order, string(frame)+":end")
		mu.Unlock()
		return &types.DetectionResult{}, nil
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := limiter.Detect(context.Background(), detector, []byte("first"))
		assert.NoError(t, err)
	}()
	<-firstEntered
	go func() {
		defer wg.Done()
		_, err := limiter.Detect(context.Background(), detector, []byte("second"))
		assert.NoError(t, err)
	}()

	// give the second caller time to park on the semaphore
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	assert.NotContains(t, order, "second:start")
	mu.Unlock()

	close(release)
	wg.Wait()

	require.Equal(t, []string{"first:start", "first:end", "second:start", "second:end"}, order)
}

func TestInferenceLimiterAcquireHonoursContext(t *testing.T) {
	limiter := NewInferenceLimiter(1)

	release := make(chan struct{})
	entered := make(chan struct{})
	detector := detectorFunc(func(ctx context.Context, frame []byte) (*types.DetectionResult, error) {
		close(entered)
		<-release
		return &types.DetectionResult{}, nil
	})

	go limiter.Detect(context.Background(), detector, []byte("holder"))
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := limiter.Detect(ctx, detector, []byte("waiter"))
	assert.Error(t, err)

	close(release)
}

// A frame arriving while the previous frame for the same session is still
// in the detector is dropped rather than queued.
func TestHandleFrameDropsWhileInFlight(t *testing.T) {
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})

	h := newHarness(t, nil, StartOptions{ChallengeCount: 2})
	h.engine.Detector = detectorFunc(func(ctx context.Context, frame []byte) (*types.DetectionResult, error) {
		calls.Add(1)
		close(entered)
		<-release
		return &types.DetectionResult{}, nil
	})

	done := make(chan struct{})
	go func() {
		h.clock.Advance(250 * time.Millisecond)
		h.engine.HandleFrame(context.Background(), h.session, []byte("slow"))
		close(done)
	}()
	<-entered

	// second frame while the first is still processing
	h.engine.HandleFrame(context.Background(), h.session, []byte("dropped"))
	assert.Equal(t, int32(1), calls.Load())

	close(release)
	<-done
}

// Frames faster than the minimum inter-frame interval are dropped before
// they reach the detector.
func TestHandleFrameEnforcesMinimumInterval(t *testing.T) {
	calls := 0
	h := newHarness(t, nil, StartOptions{ChallengeCount: 2})
	h.engine.Detector = detectorFunc(func(ctx context.Context, frame []byte) (*types.DetectionResult, error) {
		calls++
		face := steadyFace(0.1, 0, 0.3)
		return &types.DetectionResult{Faces: []types.FaceObservation{face}}, nil
	})

	h.clock.Advance(250 * time.Millisecond)
	h.engine.HandleFrame(context.Background(), h.session, []byte("frame"))
	require.Equal(t, 1, calls)

	// 50ms later: under the 200ms floor, dropped
	h.clock.Advance(50 * time.Millisecond)
	h.engine.HandleFrame(context.Background(), h.session, []byte("frame"))
	assert.Equal(t, 1, calls)

	h.clock.Advance(200 * time.Millisecond)
	h.engine.HandleFrame(context.Background(), h.session, []byte("frame"))
	assert.Equal(t, 2, calls)
}
