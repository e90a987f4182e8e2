// internal/screening/queue/queue.go
package queue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"swipe-screening/internal/models"
	"swipe-screening/internal/screening/gesture"
	"swipe-screening/internal/store"
)

var (
	ErrJobNotFound        = errors.New("job not found")
	ErrCandidatesNotFound = errors.New("candidates for job could not be resolved")
)

// Source resolves the data a queue is built from.
type Source interface {
	Job(ctx context.Context, id string) (*models.Job, error)
	ApplicationsByJob(ctx context.Context, jobID string) ([]models.Application, error)
	CandidatesForJob(ctx context.Context, jobID string) ([]models.CandidateProfile, error)
}

// StatusWriter records decisions on application records.
type StatusWriter interface {
	SetApplicationStatus(ctx context.Context, applicationID string, status models.ApplicationStatus, at time.Time) (*models.Application, error)
}

// Collaborator is the full data dependency of a queue.
type Collaborator interface {
	Source
	StatusWriter
}

// Phase is the session state machine: active until every candidate is processed.
type Phase string

const (
	PhaseActive   Phase = "active"
	PhaseComplete Phase = "complete"
)

type Counters struct {
	Shortlisted int `json:"shortlisted"`
	Rejected    int `json:"rejected"`
}

// Outcome tells the caller what Decide did.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeUnknown   Outcome = "unknown"
	OutcomeIgnored   Outcome = "ignored"
)

type Result struct {
	Outcome     Outcome                  `json:"outcome"`
	Status      models.ApplicationStatus `json:"status,omitempty"`
	Candidate   *models.CandidateProfile `json:"candidate,omitempty"`
	Application *models.Application      `json:"application,omitempty"`
}

type Option func(*Queue)

// WithClock overrides the time source used to stamp decisions.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// Queue is the ordered worklist of one job-screening session.
type Queue struct {
	job        models.Job
	candidates []models.CandidateProfile
	index      map[string]int
	apps       map[string]string
	processed  map[int]models.ApplicationStatus
	counters   Counters
	writer     StatusWriter
	now        func() time.Time
}

// New resolves jobID through src and returns a queue over its candidates. It never
// returns a queue when the job or its candidates cannot be resolved.
func New(ctx context.Context, jobID string, src Collaborator, opts ...Option) (*Queue, error) {
	job, err := src.Job(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return nil, fmt.Errorf("resolve job %s: %w", jobID, err)
	}
	if job == nil {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	apps, err := src.ApplicationsByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: applications: %v", ErrCandidatesNotFound, err)
	}
	candidates, err := src.CandidatesForJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCandidatesNotFound, err)
	}

	q := &Queue{
		job:        *job,
		candidates: append([]models.CandidateProfile(nil), candidates...),
		index:      make(map[string]int, len(candidates)),
		apps:       make(map[string]string, len(apps)),
		processed:  make(map[int]models.ApplicationStatus),
		writer:     src,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	for i, c := range q.candidates {
		q.index[c.ID] = i
	}
	for _, app := range apps {
		q.apps[app.CandidateID] = app.ID
	}
	return q, nil
}

func (q *Queue) Job() models.Job {
	return q.job
}

// Current returns the unprocessed candidate with the lowest original index.
func (q *Queue) Current() (*models.CandidateProfile, bool) {
	for i := range q.candidates {
		if _, done := q.processed[i]; !done {
			c := q.candidates[i]
			return &c, true
		}
	}
	return nil, false
}

// Upcoming returns at most n unprocessed candidates in original order; n <= 0 means all.
func (q *Queue) Upcoming(n int) []models.CandidateProfile {
	out := make([]models.CandidateProfile, 0, q.RemainingCount())
	for i, c := range q.candidates {
		if _, done := q.processed[i]; done {
			continue
		}
		out = append(out, c)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// Remaining returns every unprocessed candidate in original order.
func (q *Queue) Remaining() []models.CandidateProfile {
	return q.Upcoming(0)
}

func (q *Queue) RemainingCount() int {
	return len(q.candidates) - len(q.processed)
}

func (q *Queue) ProcessedCount() int {
	return len(q.processed)
}

// ProcessedIndices returns the processed positions in ascending order.
func (q *Queue) ProcessedIndices() []int {
	out := make([]int, 0, len(q.processed))
	for i := range q.processed {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (q *Queue) Total() int {
	return len(q.candidates)
}

func (q *Queue) IsComplete() bool {
	return q.RemainingCount() == 0
}

func (q *Queue) Phase() Phase {
	if q.IsComplete() {
		return PhaseComplete
	}
	return PhaseActive
}

func (q *Queue) Counters() Counters {
	return q.counters
}

// Decide applies an accept or reject to candidateID. The application status is written
// first; only a successful write marks the candidate processed and bumps a counter.
// Repeated decisions for the same candidate are no-ops.
func (q *Queue) Decide(ctx context.Context, candidateID string, decision gesture.Decision) (Result, error) {
	status, ok := statusFor(decision)
	if !ok {
		return Result{Outcome: OutcomeIgnored}, nil
	}
	idx, known := q.index[candidateID]
	if !known {
		return Result{Outcome: OutcomeUnknown}, nil
	}
	candidate := q.candidates[idx]
	if prev, done := q.processed[idx]; done {
		return Result{Outcome: OutcomeDuplicate, Status: prev, Candidate: &candidate}, nil
	}

	var updated *models.Application
	if appID, found := q.apps[candidateID]; found {
		app, err := q.writer.SetApplicationStatus(ctx, appID, status, q.now())
		if err != nil {
			return Result{}, fmt.Errorf("set status of application %s: %w", appID, err)
		}
		updated = app
	}

	q.processed[idx] = status
	if status == models.ApplicationStatusShortlisted {
		q.counters.Shortlisted++
	} else {
		q.counters.Rejected++
	}
	return Result{Outcome: OutcomeApplied, Status: status, Candidate: &candidate, Application: updated}, nil
}

// DecideCurrent applies decision to the candidate returned by Current.
func (q *Queue) DecideCurrent(ctx context.Context, decision gesture.Decision) (Result, error) {
	current, ok := q.Current()
	if !ok {
		return Result{Outcome: OutcomeIgnored}, nil
	}
	return q.Decide(ctx, current.ID, decision)
}

// Reset forgets every decision made in this session. Application records keep the
// statuses already written.
func (q *Queue) Reset() {
	q.processed = make(map[int]models.ApplicationStatus)
	q.counters = Counters{}
}

func statusFor(d gesture.Decision) (models.ApplicationStatus, bool) {
	switch d {
	case gesture.DecisionAccept:
		return models.ApplicationStatusShortlisted, true
	case gesture.DecisionReject:
		return models.ApplicationStatusRejected, true
	}
	return "", false
}
