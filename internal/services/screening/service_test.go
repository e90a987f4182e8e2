package screening

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	apperrors "swipe-screening/internal/common/errors"
	"swipe-screening/internal/common/logger"
	"swipe-screening/internal/models"
	"swipe-screening/internal/screening/gesture"
	"swipe-screening/internal/screening/queue"
	"swipe-screening/internal/store/memory"
	"swipe-screening/internal/store/seed"
)

// ==========================
// Test Helpers
// ==========================

var (
	sarah  = Owner{UserID: "user-hr-1", HRID: "hr-1"}
	marcus = Owner{UserID: "user-hr-2", HRID: "hr-2"}
)

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	events []models.DecisionEvent
	err    error
}

func (r *recordingNotifier) ApplicationDecided(_ context.Context, ev models.DecisionEvent) error {
	r.events = append(r.events, ev)
	return r.err
}

// flakyRepo fails selected operations of the seeded memory repository.
type flakyRepo struct {
	*memory.Repository
	failWrites     bool
	failCandidates bool
}

func (f *flakyRepo) SetApplicationStatus(ctx context.Context, id string, status models.ApplicationStatus, at time.Time) (*models.Application, error) {
	if f.failWrites {
		return nil, errors.New("connection reset by peer")
	}
	return f.Repository.SetApplicationStatus(ctx, id, status, at)
}

func (f *flakyRepo) CandidatesForJob(ctx context.Context, jobID string) ([]models.CandidateProfile, error) {
	if f.failCandidates {
		return nil, errors.New("query timeout")
	}
	return f.Repository.CandidatesForJob(ctx, jobID)
}

type fixture struct {
	svc      *Service
	repo     *flakyRepo
	notifier *recordingNotifier
	clock    *testClock
}

func newFixture(t *testing.T, cfg Config, opts ...Option) *fixture {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)}
	mem := memory.New(memory.WithClock(clock.Now))
	_, err := seed.LoadInto(mem, "../../../configs/seed.yaml", bcrypt.MinCost, clock.Now())
	require.NoError(t, err)

	repo := &flakyRepo{Repository: mem}
	notifier := &recordingNotifier{}
	seq := 0
	opts = append([]Option{
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("sess-%d", seq)
		}),
	}, opts...)
	return &fixture{
		svc:      NewService(repo, notifier, cfg, createTestLogger(t), opts...),
		repo:     repo,
		notifier: notifier,
		clock:    clock,
	}
}

func defaultConfig() Config {
	return Config{Threshold: 100, StackDepth: 2, IdleTTL: 30 * time.Minute}
}

func (f *fixture) status(t *testing.T, appID string) models.ApplicationStatus {
	t.Helper()
	app, err := f.repo.Application(context.Background(), appID)
	require.NoError(t, err)
	return app.Status
}

func swipe(t *testing.T, f *fixture, sessionID string, dx float64) *Outcome {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Input(ctx, sarah, sessionID, gesture.Event{Type: gesture.EventPointerDown, X: 200, Y: 300})
	require.NoError(t, err)
	_, err = f.svc.Input(ctx, sarah, sessionID, gesture.Event{Type: gesture.EventPointerMove, X: 200 + dx, Y: 310})
	require.NoError(t, err)
	out, err := f.svc.Input(ctx, sarah, sessionID, gesture.Event{Type: gesture.EventPointerUp, X: 200 + dx, Y: 310})
	require.NoError(t, err)
	return out
}

func candidateIDs(cs []models.CandidateProfile) []string {
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	return ids
}

// ==========================
// Open
// ==========================

func TestOpen(t *testing.T) {
	f := newFixture(t, defaultConfig())

	snap, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)

	assert.Equal(t, "sess-1", snap.SessionID)
	assert.Equal(t, "Senior Backend Engineer", snap.Job.Title)
	assert.Equal(t, queue.PhaseActive, snap.Phase)
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 3, snap.Remaining)
	require.NotNil(t, snap.Current)
	assert.Equal(t, "candidate-1", snap.Current.ID)
	assert.Equal(t, []string{"candidate-1", "candidate-3"}, candidateIDs(snap.Stack))
	assert.Equal(t, 1, f.svc.Len())
}

func TestOpen_Failures(t *testing.T) {
	f := newFixture(t, defaultConfig())
	ctx := context.Background()

	_, err := f.svc.Open(ctx, sarah, "job-404")
	assert.Equal(t, apperrors.ErrCodeJobNotFound, apperrors.As(err).Code)

	_, err = f.svc.Open(ctx, sarah, "job-3")
	assert.Equal(t, apperrors.ErrCodeForbidden, apperrors.As(err).Code)

	f.repo.failCandidates = true
	_, err = f.svc.Open(ctx, sarah, "job-1")
	assert.Equal(t, apperrors.ErrCodeCandidatesUnavailable, apperrors.As(err).Code)

	assert.Equal(t, 0, f.svc.Len(), "failed opens must not leave sessions behind")
}

func TestOpen_SessionLimit(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxSessions = 1
	f := newFixture(t, cfg)

	_, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)
	_, err = f.svc.Open(context.Background(), sarah, "job-2")
	assert.Equal(t, apperrors.ErrCodeSessionLimitReached, apperrors.As(err).Code)
}

// ==========================
// Input
// ==========================

func TestInput_SwipeRightShortlists(t *testing.T) {
	f := newFixture(t, defaultConfig())
	snap, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)

	out := swipe(t, f, snap.SessionID, 150)

	assert.Equal(t, gesture.DecisionAccept, out.Decision)
	require.NotNil(t, out.Result)
	assert.Equal(t, queue.OutcomeApplied, out.Result.Outcome)
	assert.Equal(t, "candidate-1", out.Result.Candidate.ID)
	assert.Equal(t, models.ApplicationStatusShortlisted, f.status(t, "app-1"))

	assert.Equal(t, "candidate-3", out.Session.Current.ID)
	assert.Equal(t, queue.Counters{Shortlisted: 1}, out.Session.Counters)
	assert.Equal(t, 0.0, out.Session.Card.DX, "card returns to rest")

	require.Len(t, f.notifier.events, 1)
	ev := f.notifier.events[0]
	assert.Equal(t, "app-1", ev.ApplicationID)
	assert.Equal(t, "alex.chen@mail.io", ev.CandidateMail)
	assert.Equal(t, "user-hr-1", ev.DecidedBy)
	assert.Equal(t, snap.SessionID, ev.SessionID)
}

func TestInput_ShortDragCancels(t *testing.T) {
	f := newFixture(t, defaultConfig())
	snap, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)

	out := swipe(t, f, snap.SessionID, -100)

	assert.Equal(t, gesture.DecisionCancel, out.Decision)
	assert.Nil(t, out.Result)
	assert.Equal(t, 0, out.Session.Processed)
	assert.Equal(t, models.ApplicationStatusApplied, f.status(t, "app-1"))
	assert.Empty(t, f.notifier.events)
}

func TestInput_DragStateVisible(t *testing.T) {
	f := newFixture(t, defaultConfig())
	snap, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.svc.Input(ctx, sarah, snap.SessionID, gesture.Event{Type: gesture.EventTouchStart, X: 10, Y: 10})
	require.NoError(t, err)
	out, err := f.svc.Input(ctx, sarah, snap.SessionID, gesture.Event{Type: gesture.EventTouchMove, X: -50, Y: 10})
	require.NoError(t, err)

	assert.True(t, out.Session.Card.Dragging)
	assert.Equal(t, gesture.HintReject, out.Session.Card.Hint)

	state, err := f.svc.State(ctx, sarah, snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, -60.0, state.Card.DX)
}

func TestInput_KeysAndButtons(t *testing.T) {
	f := newFixture(t, defaultConfig())
	snap, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)
	ctx := context.Background()

	out, err := f.svc.Input(ctx, sarah, snap.SessionID, gesture.Event{Type: gesture.EventKey, Key: gesture.KeyArrowLeft})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, out.Result.Status)

	out, err = f.svc.Input(ctx, sarah, snap.SessionID, gesture.Event{Type: gesture.EventButtonAccept})
	require.NoError(t, err)
	assert.Equal(t, "candidate-3", out.Result.Candidate.ID)

	out, err = f.svc.Input(ctx, sarah, snap.SessionID, gesture.Event{Type: gesture.EventKey, Key: "Enter"})
	require.NoError(t, err)
	assert.Nil(t, out.Result)

	out, err = f.svc.Input(ctx, sarah, snap.SessionID, gesture.Event{Type: gesture.EventButtonReject})
	require.NoError(t, err)
	assert.Equal(t, queue.PhaseComplete, out.Session.Phase)
	assert.Nil(t, out.Session.Current)
	assert.Equal(t, queue.Counters{Shortlisted: 1, Rejected: 2}, out.Session.Counters)

	out, err = f.svc.Input(ctx, sarah, snap.SessionID, gesture.Event{Type: gesture.EventButtonAccept})
	require.NoError(t, err)
	assert.Nil(t, out.Result, "nothing left to decide")

	assert.Equal(t, models.ApplicationStatusRejected, f.status(t, "app-1"))
	assert.Equal(t, models.ApplicationStatusShortlisted, f.status(t, "app-2"))
	assert.Equal(t, models.ApplicationStatusRejected, f.status(t, "app-3"))
}

func TestInput_UnknownEventType(t *testing.T) {
	f := newFixture(t, defaultConfig())
	snap, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)

	_, err = f.svc.Input(context.Background(), sarah, snap.SessionID, gesture.Event{Type: "wheel"})
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.As(err).Code)
}

// ==========================
// Decide
// ==========================

func TestDecide_OutOfOrder(t *testing.T) {
	f := newFixture(t, defaultConfig())
	snap, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)
	ctx := context.Background()

	out, err := f.svc.Decide(ctx, sarah, snap.SessionID, "candidate-3", gesture.DecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, "candidate-1", out.Session.Current.ID, "current stays at the lowest unprocessed index")
	assert.Equal(t, []string{"candidate-1", "candidate-4"}, candidateIDs(out.Session.Stack))

	out, err = f.svc.Decide(ctx, sarah, snap.SessionID, "candidate-1", gesture.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, "candidate-4", out.Session.Current.ID)

	out, err = f.svc.Decide(ctx, sarah, snap.SessionID, "candidate-3", gesture.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, queue.OutcomeDuplicate, out.Result.Outcome)
	assert.Equal(t, models.ApplicationStatusShortlisted, out.Result.Status)
	assert.Equal(t, models.ApplicationStatusShortlisted, f.status(t, "app-2"))
	assert.Equal(t, queue.Counters{Shortlisted: 1, Rejected: 1}, out.Session.Counters)
	assert.Len(t, f.notifier.events, 2)
}

func TestDecide_Errors(t *testing.T) {
	f := newFixture(t, defaultConfig())
	snap, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.svc.Decide(ctx, sarah, snap.SessionID, "candidate-2", gesture.DecisionAccept)
	assert.Equal(t, apperrors.ErrCodeCandidateNotInSession, apperrors.As(err).Code)

	_, err = f.svc.Decide(ctx, sarah, snap.SessionID, "candidate-1", gesture.DecisionCancel)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.As(err).Code)

	_, err = f.svc.Decide(ctx, sarah, "sess-404", "candidate-1", gesture.DecisionAccept)
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, apperrors.As(err).Code)
}

func TestDecide_WriteFailureLeavesQueueUnchanged(t *testing.T) {
	f := newFixture(t, defaultConfig())
	snap, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)

	f.repo.failWrites = true
	_, err = f.svc.Decide(context.Background(), sarah, snap.SessionID, "candidate-1", gesture.DecisionAccept)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDatabaseWriteFailed, apperrors.As(err).Code)

	state, err := f.svc.State(context.Background(), sarah, snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Processed)
	assert.Equal(t, "candidate-1", state.Current.ID)
	assert.Empty(t, f.notifier.events)

	f.repo.failWrites = false
	_, err = f.svc.Decide(context.Background(), sarah, snap.SessionID, "candidate-1", gesture.DecisionAccept)
	assert.NoError(t, err, "retry succeeds")
}

func TestDecide_NotificationFailureKeepsDecision(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.notifier.err = errors.New("sns throttled")
	snap, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)

	out, err := f.svc.Decide(context.Background(), sarah, snap.SessionID, "candidate-4", gesture.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, queue.OutcomeApplied, out.Result.Outcome)
	assert.Equal(t, models.ApplicationStatusRejected, f.status(t, "app-3"))
}

func TestDecide_Traced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	f := newFixture(t, defaultConfig(), WithTracer(tp.Tracer("test")))

	snap, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)
	_, err = f.svc.Decide(context.Background(), sarah, snap.SessionID, "candidate-1", gesture.DecisionAccept)
	require.NoError(t, err)

	names := []string{}
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"screening.open", "screening.decide"}, names)
}

// ==========================
// Session management
// ==========================

func TestReset(t *testing.T) {
	f := newFixture(t, defaultConfig())
	snap, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)
	swipe(t, f, snap.SessionID, 180)

	reset, err := f.svc.Reset(context.Background(), sarah, snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, reset.Processed)
	assert.Equal(t, queue.Counters{}, reset.Counters)
	assert.Equal(t, "candidate-1", reset.Current.ID)
	assert.Equal(t, models.ApplicationStatusShortlisted, f.status(t, "app-1"), "records keep written statuses")
}

func TestSessionsAreOwnerScoped(t *testing.T) {
	f := newFixture(t, defaultConfig())
	snap, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)

	_, err = f.svc.State(context.Background(), marcus, snap.SessionID)
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, apperrors.As(err).Code)

	err = f.svc.Close(context.Background(), marcus, snap.SessionID)
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, apperrors.As(err).Code)

	require.NoError(t, f.svc.Close(context.Background(), sarah, snap.SessionID))
	_, err = f.svc.State(context.Background(), sarah, snap.SessionID)
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, apperrors.As(err).Code)
}

func TestIdleSessionsEvictedOnOpen(t *testing.T) {
	f := newFixture(t, defaultConfig())
	ctx := context.Background()

	first, err := f.svc.Open(ctx, sarah, "job-1")
	require.NoError(t, err)
	second, err := f.svc.Open(ctx, sarah, "job-2")
	require.NoError(t, err)

	f.clock.Advance(20 * time.Minute)
	_, err = f.svc.State(ctx, sarah, second.SessionID)
	require.NoError(t, err)

	f.clock.Advance(15 * time.Minute)
	_, err = f.svc.Open(ctx, marcus, "job-3")
	require.NoError(t, err)

	assert.Equal(t, 2, f.svc.Len())
	_, err = f.svc.State(ctx, sarah, first.SessionID)
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, apperrors.As(err).Code)
	_, err = f.svc.State(ctx, sarah, second.SessionID)
	assert.NoError(t, err)
}

func TestEmptyJobIsComplete(t *testing.T) {
	f := newFixture(t, defaultConfig())
	require.NoError(t, f.repo.PutJob(models.Job{ID: "job-empty", HRID: "hr-1", Title: "Intern", Status: models.JobStatusActive}))

	snap, err := f.svc.Open(context.Background(), sarah, "job-empty")
	require.NoError(t, err)
	assert.Equal(t, queue.PhaseComplete, snap.Phase)
	assert.Equal(t, 0, snap.Total)
	assert.Empty(t, snap.Stack)
}

func TestConcurrentDecisionsOnOneSession(t *testing.T) {
	f := newFixture(t, defaultConfig())
	snap, err := f.svc.Open(context.Background(), sarah, "job-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.Input(context.Background(), sarah, snap.SessionID, gesture.Event{Type: gesture.EventButtonAccept})
		}()
	}
	wg.Wait()

	state, err := f.svc.State(context.Background(), sarah, snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Processed)
	assert.Equal(t, queue.Counters{Shortlisted: 3}, state.Counters)
	assert.Len(t, f.notifier.events, 3)
}
