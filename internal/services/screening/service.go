// internal/services/screening/service.go

// Package screening runs swipe screening sessions: one HR manager working through the
// applicants of one job, one card at a time.
package screening

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"swipe-screening/internal/common/config"
	apperrors "swipe-screening/internal/common/errors"
	"swipe-screening/internal/common/logger"
	"swipe-screening/internal/common/metrics"
	"swipe-screening/internal/models"
	"swipe-screening/internal/notify"
	"swipe-screening/internal/screening/gesture"
	"swipe-screening/internal/screening/queue"
	"swipe-screening/internal/store"
)

// Config tunes sessions.
type Config struct {
	Threshold   float64
	StackDepth  int
	IdleTTL     time.Duration
	MaxSessions int
}

func ConfigFrom(cfg config.ScreeningConfig) Config {
	return Config{
		Threshold:   cfg.SwipeThreshold,
		StackDepth:  cfg.StackDepth,
		IdleTTL:     cfg.SessionIdleTTL,
		MaxSessions: cfg.MaxSessions,
	}
}

// Owner identifies the HR manager a session belongs to.
type Owner struct {
	UserID string
	HRID   string
}

// OwnerOf returns the owner view of an HR account.
func OwnerOf(hr models.HRAccount) Owner {
	return Owner{UserID: hr.User.ID, HRID: hr.Profile.ID}
}

// Snapshot is what a client needs to render a session.
type Snapshot struct {
	SessionID string                    `json:"sessionId"`
	Job       models.Job                `json:"job"`
	Phase     queue.Phase               `json:"phase"`
	Current   *models.CandidateProfile  `json:"current,omitempty"`
	Stack     []models.CandidateProfile `json:"stack"`
	Remaining int                       `json:"remaining"`
	Processed int                       `json:"processed"`
	Total     int                       `json:"total"`
	Counters  queue.Counters            `json:"counters"`
	Card      gesture.State             `json:"card"`
}

// Outcome reports the effect of one input or explicit decision.
type Outcome struct {
	Decision gesture.Decision `json:"decision,omitempty"`
	Result   *queue.Result    `json:"result,omitempty"`
	Session  Snapshot         `json:"session"`
}

type session struct {
	mu      sync.Mutex
	id      string
	owner   Owner
	queue   *queue.Queue
	gesture *gesture.Interpreter

	// guarded by Service.mu
	lastActive time.Time
}

type Service struct {
	repo     queue.Collaborator
	notifier notify.Notifier
	cfg      Config
	tracer   trace.Tracer
	log      logger.Logger
	now      func() time.Time
	newID    func() string

	mu       sync.Mutex
	sessions map[string]*session
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func NewService(repo queue.Collaborator, notifier notify.Notifier, cfg Config, log logger.Logger, opts ...Option) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if cfg.StackDepth <= 0 {
		cfg.StackDepth = 3
	}
	s := &Service{
		repo:     repo,
		notifier: notifier,
		cfg:      cfg,
		tracer:   tracenoop.NewTracerProvider().Tracer("screening"),
		log:      log.Named("screening"),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ==========================
// Session lifecycle
// ==========================

// Open starts a session over the applicants of jobID. The job must belong to owner.
// No session is created when the job or its candidates cannot be resolved.
func (s *Service) Open(ctx context.Context, owner Owner, jobID string) (*Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "screening.open", trace.WithAttributes(attribute.String("jobId", jobID)))
	defer span.End()

	q, err := queue.New(ctx, jobID, s.repo, queue.WithClock(s.now))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, queue.ErrJobNotFound) {
			return nil, apperrors.NewJobNotFoundError(jobID)
		}
		return nil, apperrors.NewCandidatesUnavailableError(jobID, err)
	}
	if q.Job().HRID != owner.HRID {
		return nil, apperrors.NewForbiddenError("job belongs to another company profile")
	}

	sess := &session{
		id:      s.newID(),
		owner:   owner,
		queue:   q,
		gesture: gesture.New(s.cfg.Threshold),
	}

	s.mu.Lock()
	now := s.now()
	s.evictIdleLocked(now)
	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		return nil, apperrors.NewSessionLimitReachedError(s.cfg.MaxSessions)
	}
	sess.lastActive = now
	s.sessions[sess.id] = sess
	metrics.ScreeningSessionsActive.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	s.log.Info("Screening session opened", map[string]interface{}{
		"sessionId":  sess.id,
		"jobId":      jobID,
		"hrId":       owner.HRID,
		"candidates": q.Total(),
	})

	sess.mu.Lock()
	defer sess.mu.Unlock()
	snap := s.snapshot(sess)
	return &snap, nil
}

// State returns the current view of a session.
func (s *Service) State(_ context.Context, owner Owner, sessionID string) (*Snapshot, error) {
	sess, err := s.lookup(owner, sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	snap := s.snapshot(sess)
	return &snap, nil
}

// Reset clears the session's decisions and card state. Application records keep the
// statuses already written.
func (s *Service) Reset(_ context.Context, owner Owner, sessionID string) (*Snapshot, error) {
	sess, err := s.lookup(owner, sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.queue.Reset()
	sess.gesture.Reset()
	snap := s.snapshot(sess)
	return &snap, nil
}

// Close removes the session.
func (s *Service) Close(_ context.Context, owner Owner, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.owner.HRID != owner.HRID {
		return apperrors.NewSessionNotFoundError(sessionID)
	}
	delete(s.sessions, sessionID)
	metrics.ScreeningSessionsClosed.WithLabelValues("closed").Inc()
	metrics.ScreeningSessionsActive.Set(float64(len(s.sessions)))
	return nil
}

// EvictIdle drops sessions idle for longer than the configured TTL.
func (s *Service) EvictIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictIdleLocked(s.now())
}

// Len reports the number of open sessions.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) evictIdleLocked(now time.Time) int {
	if s.cfg.IdleTTL <= 0 {
		return 0
	}
	n := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastActive) > s.cfg.IdleTTL {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		metrics.ScreeningSessionsClosed.WithLabelValues("idle").Add(float64(n))
		metrics.ScreeningSessionsActive.Set(float64(len(s.sessions)))
		s.log.Debug("Evicted idle screening sessions", map[string]interface{}{"count": n})
	}
	return n
}

// lookup finds the owner's session and records activity on it. Sessions of other
// owners are reported as missing.
func (s *Service) lookup(owner Owner, sessionID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.owner.HRID != owner.HRID {
		return nil, apperrors.NewSessionNotFoundError(sessionID)
	}
	sess.lastActive = s.now()
	return sess, nil
}

// ==========================
// Decisions
// ==========================

// Input feeds one raw UI event to the session's card. A completed swipe, key press or
// button press decides the current candidate.
func (s *Service) Input(ctx context.Context, owner Owner, sessionID string, ev gesture.Event) (*Outcome, error) {
	if !ev.Type.Valid() {
		return nil, apperrors.NewValidationFailedError("unknown event type: " + string(ev.Type))
	}
	sess, err := s.lookup(owner, sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	decision := sess.gesture.Feed(ev)
	out := &Outcome{Decision: decision}

	switch {
	case decision == gesture.DecisionCancel:
		metrics.GestureCancels.Inc()
	case decision.IsTerminal():
		current, ok := sess.queue.Current()
		if ok {
			res, err := s.decide(ctx, sess, current.ID, decision)
			if err != nil {
				return nil, err
			}
			out.Result = &res
		}
	}

	out.Session = s.snapshot(sess)
	return out, nil
}

// Decide applies an explicit accept or reject to a candidate of the session, in any
// order. Deciding an already processed candidate changes nothing.
func (s *Service) Decide(ctx context.Context, owner Owner, sessionID, candidateID string, decision gesture.Decision) (*Outcome, error) {
	if !decision.IsTerminal() {
		return nil, apperrors.NewValidationFailedError("decision must be accept or reject")
	}
	sess, err := s.lookup(owner, sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	res, err := s.decide(ctx, sess, candidateID, decision)
	if err != nil {
		return nil, err
	}
	if res.Outcome == queue.OutcomeUnknown {
		return nil, apperrors.NewCandidateNotInSessionError(candidateID)
	}
	return &Outcome{Decision: decision, Result: &res, Session: s.snapshot(sess)}, nil
}

// decide runs under sess.mu.
func (s *Service) decide(ctx context.Context, sess *session, candidateID string, decision gesture.Decision) (queue.Result, error) {
	ctx, span := s.tracer.Start(ctx, "screening.decide", trace.WithAttributes(
		attribute.String("sessionId", sess.id),
		attribute.String("candidateId", candidateID),
		attribute.String("decision", string(decision)),
	))
	defer span.End()

	res, err := sess.queue.Decide(ctx, candidateID, decision)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		metrics.ScreeningDecisionFailures.Inc()
		s.log.Error("Failed to record screening decision", map[string]interface{}{
			"sessionId":   sess.id,
			"candidateId": candidateID,
			"error":       err,
		})
		if errors.Is(err, store.ErrNotFound) {
			return queue.Result{}, apperrors.NewApplicationNotFoundError(candidateID)
		}
		if errors.Is(err, store.ErrInvalidStatus) {
			return queue.Result{}, apperrors.NewInvalidStatusError(err)
		}
		return queue.Result{}, apperrors.NewDatabaseWriteFailedError("set application status", err)
	}

	metrics.ScreeningDecisions.WithLabelValues(string(res.Outcome), string(res.Status)).Inc()
	if res.Outcome == queue.OutcomeApplied && res.Application != nil {
		s.publish(ctx, sess, res)
	}
	return res, nil
}

// publish notifies synchronously; failures are logged and never undo the decision.
func (s *Service) publish(ctx context.Context, sess *session, res queue.Result) {
	job := sess.queue.Job()
	ev := models.DecisionEvent{
		SessionID:     sess.id,
		JobID:         job.ID,
		JobTitle:      job.Title,
		ApplicationID: res.Application.ID,
		CandidateID:   res.Candidate.ID,
		CandidateName: res.Candidate.FullName,
		CandidateMail: res.Candidate.Email,
		Status:        res.Status,
		DecidedBy:     sess.owner.UserID,
		DecidedAt:     s.now().UTC(),
	}
	if err := s.notifier.ApplicationDecided(ctx, ev); err != nil {
		s.log.Warn("Decision recorded but notification failed", map[string]interface{}{
			"sessionId":     sess.id,
			"applicationId": ev.ApplicationID,
			"error":         err,
		})
	}
}

// snapshot runs under sess.mu.
func (s *Service) snapshot(sess *session) Snapshot {
	q := sess.queue
	snap := Snapshot{
		SessionID: sess.id,
		Job:       q.Job(),
		Phase:     q.Phase(),
		Stack:     q.Upcoming(s.cfg.StackDepth),
		Remaining: q.RemainingCount(),
		Processed: q.ProcessedCount(),
		Total:     q.Total(),
		Counters:  q.Counters(),
		Card:      sess.gesture.State(),
	}
	if current, ok := q.Current(); ok {
		snap.Current = current
	}
	return snap
}
