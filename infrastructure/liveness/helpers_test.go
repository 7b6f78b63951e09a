package liveness

import (
	"context"
	"sync"
	"testing"
	"time"

	"livegate.io/entities"
	"livegate.io/infrastructure/inference/types"
)

type detectorFunc func(ctx context.Context, frame []byte) (*types.DetectionResult, error)

func (f detectorFunc) Detect(ctx context.Context, frame []byte) (*types.DetectionResult, error) {
	return f(ctx, frame)
}

type failedEvent struct {
	Code     FailureCode
	Message  string
	CanRetry bool
}

type errorEvent struct {
	Code      string
	Message   string
	Transient bool
}

type recordEmitter struct {
	mu        sync.Mutex
	states    []StateSnapshot
	completed []CompletionResult
	failed    []failedEvent
	errors    []errorEvent
}

func (r *recordEmitter) State(snapshot StateSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, snapshot)
}

func (r *recordEmitter) Completed(result CompletionResult, ackTimeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, result)
}

func (r *recordEmitter) Failed(code FailureCode, message string, canRetry bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, failedEvent{Code: code, Message: message, CanRetry: canRetry})
}

func (r *recordEmitter) Error(code string, message string, transient bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, errorEvent{Code: code, Message: message, Transient: transient})
}

func (r *recordEmitter) lastState(t *testing.T) StateSnapshot {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		t.Fatal("no state events emitted")
	}
	return r.states[len(r.states)-1]
}

type draftStoreMock struct {
	draft       *entities.VerificationDraft
	getErr      error
	updateErr   error
	getCalls    int
	updateCalls int
	lastUpdate  DraftUpdate
}

func (m *draftStoreMock) GetDraftByID(id string) (*entities.VerificationDraft, error) {
	m.getCalls++
	return m.draft, m.getErr
}

func (m *draftStoreMock) UpdateDraft(id string, update DraftUpdate) error {
	m.updateCalls++
	m.lastUpdate = update
	return m.updateErr
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func steadyFace(happy float64, yaw float64, ear float64) types.FaceObservation {
	return types.FaceObservation{
		Box:            types.BoundingBox{X: 10, Y: 10, Width: 200, Height: 200},
		Confidence:     0.99,
		EmotionScores:  map[string]float64{"happy": happy, "neutral": 1 - happy},
		AntispoofScore: 0.9,
		LivenessScore:  0.9,
		Yaw:            yaw,
		EyeAspectRatio: ear,
	}
}

// harness wires an engine to a scripted detector and a fake clock. Each
// frame call advances the clock past the minimum frame interval so admission
// never interferes with the behaviour under test.
type harness struct {
	engine  *Engine
	session *Session
	emitter *recordEmitter
	store   *draftStoreMock
	clock   *fakeClock

	mu   sync.Mutex
	next *types.DetectionResult
	err  error
}

func newHarness(t *testing.T, mutate func(cfg *Config), opts StartOptions) *harness {
	t.Helper()
	return newHarnessWithStore(t, mutate, &draftStoreMock{}, opts)
}

func newHarnessWithStore(t *testing.T, mutate func(cfg *Config), store *draftStoreMock, opts StartOptions) *harness {
	t.Helper()
	h := &harness{
		emitter: &recordEmitter{},
		store:   store,
		clock:   newFakeClock(),
	}
	cfg := DefaultConfig()
	cfg.Now = h.clock.Now
	if mutate != nil {
		mutate(&cfg)
	}
	detector := detectorFunc(func(ctx context.Context, frame []byte) (*types.DetectionResult, error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.next, h.err
	})
	h.engine = NewEngine(detector, h.store, cfg)
	h.session = h.engine.NewSession(h.emitter, opts)
	return h
}

func (h *harness) setResult(result *types.DetectionResult, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next = result
	h.err = err
}

// frame feeds one frame carrying the given observations. A nil observation
// list means no face was found.
func (h *harness) frame(observations ...types.FaceObservation) {
	h.clock.Advance(250 * time.Millisecond)
	h.setResult(&types.DetectionResult{Faces: observations, ProcessingTimeMs: 40}, nil)
	h.engine.HandleFrame(context.Background(), h.session, []byte("frame"))
}

// frameError feeds one frame for which the detector fails.
func (h *harness) frameError(err error) {
	h.clock.Advance(250 * time.Millisecond)
	h.setResult(nil, err)
	h.engine.HandleFrame(context.Background(), h.session, []byte("frame"))
}

// toChallenging drives the session from detecting into the first challenge
// with its clock running, using the supplied challenge order and baseline
// observation.
func (h *harness) toChallenging(t *testing.T, challenges []ChallengeType, baseline types.FaceObservation) {
	t.Helper()
	h.session.Challenges = challenges
	for i := 0; i < h.engine.Config.FaceStabilityFrames; i++ {
		h.frame(baseline)
	}
	if h.session.Phase != PhaseCountdown {
		t.Fatalf("expected countdown after stable face, got %s", h.session.Phase)
	}
	h.engine.HandleCountdownDone(h.session)
	if h.session.Phase != PhaseChallenging {
		t.Fatalf("expected challenging after countdown ack, got %s", h.session.Phase)
	}
	h.engine.HandleChallengeReady(h.session)
}
