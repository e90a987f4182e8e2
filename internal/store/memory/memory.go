// internal/store/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"swipe-screening/internal/models"
	"swipe-screening/internal/store"
)

type pair struct {
	jobID       string
	candidateID string
}

// Repository keeps every record in process memory. A single instance is created at
// start-up and shared by handle; all access goes through its RWMutex.
type Repository struct {
	mu sync.RWMutex

	users   map[string]models.User
	byEmail map[string]string

	candidates      map[string]models.CandidateProfile
	candidateOrder  []string
	candidateByUser map[string]string

	hrProfiles map[string]models.HRProfile
	hrByUser   map[string]string

	jobs     map[string]models.Job
	jobOrder []string

	apps     map[string]models.Application
	appOrder []string
	appPairs map[pair]string

	conversations map[string]models.ChatConversation
	convOrder     []string
	messages      map[string][]models.ChatMessage

	now   func() time.Time
	newID func(prefix string) string
}

type Option func(*Repository)

func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func WithIDGenerator(gen func(prefix string) string) Option {
	return func(r *Repository) { r.newID = gen }
}

func New(opts ...Option) *Repository {
	r := &Repository{
		users:           make(map[string]models.User),
		byEmail:         make(map[string]string),
		candidates:      make(map[string]models.CandidateProfile),
		candidateByUser: make(map[string]string),
		hrProfiles:      make(map[string]models.HRProfile),
		hrByUser:        make(map[string]string),
		jobs:            make(map[string]models.Job),
		apps:            make(map[string]models.Application),
		appPairs:        make(map[pair]string),
		conversations:   make(map[string]models.ChatConversation),
		messages:        make(map[string][]models.ChatMessage),
		now:             time.Now,
		newID: func(prefix string) string {
			return prefix + "-" + uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ store.Repository = (*Repository)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ==========================
// Accounts
// ==========================

func (r *Repository) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, store.ErrNotFound
	}
	u := r.users[id]
	return &u, nil
}

func (r *Repository) CreateCandidate(_ context.Context, in store.NewCandidate) (models.CandidateAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	user := models.User{
		ID:           r.newID("user"),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: in.PasswordHash,
		Name:         in.Name,
		Role:         models.RoleCandidate,
		CreatedAt:    now,
	}
	profile := models.CandidateProfile{
		ID:        r.newID("candidate"),
		UserID:    user.ID,
		FullName:  in.Name,
		Email:     user.Email,
		Skills:    []string{},
		Education: []models.EducationEntry{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.putUserLocked(user); err != nil {
		return models.CandidateAccount{}, err
	}
	r.putCandidateLocked(profile)
	return models.CandidateAccount{User: user, Profile: cloneProfile(profile)}, nil
}

func (r *Repository) CreateHR(_ context.Context, in store.NewHR) (models.HRAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	user := models.User{
		ID:           r.newID("user"),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: in.PasswordHash,
		Name:         in.Name,
		Role:         models.RoleHR,
		CreatedAt:    now,
	}
	profile := models.HRProfile{
		ID:          r.newID("hr"),
		UserID:      user.ID,
		CompanyName: in.CompanyName,
		CompanySize: in.CompanySize,
		Department:  in.Department,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.putUserLocked(user); err != nil {
		return models.HRAccount{}, err
	}
	r.hrProfiles[profile.ID] = profile
	r.hrByUser[user.ID] = profile.ID
	return models.HRAccount{User: user, Profile: profile}, nil
}

func (r *Repository) LoadAccount(_ context.Context, userID string) (models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	switch user.Role {
	case models.RoleCandidate:
		pid, ok := r.candidateByUser[userID]
		if !ok {
			return nil, fmt.Errorf("candidate profile for user %s: %w", userID, store.ErrNotFound)
		}
		return models.CandidateAccount{User: user, Profile: cloneProfile(r.candidates[pid])}, nil
	case models.RoleHR:
		pid, ok := r.hrByUser[userID]
		if !ok {
			return nil, fmt.Errorf("hr profile for user %s: %w", userID, store.ErrNotFound)
		}
		return models.HRAccount{User: user, Profile: r.hrProfiles[pid]}, nil
	}
	return nil, fmt.Errorf("user %s has unknown role %q", userID, user.Role)
}

// ==========================
// Profiles
// ==========================

func (r *Repository) CandidateProfile(_ context.Context, candidateID string) (*models.CandidateProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.candidates[candidateID]
	if !ok {
		return nil, store.ErrNotFound
	}
	p = cloneProfile(p)
	return &p, nil
}

func (r *Repository) UpdateCandidateProfile(_ context.Context, candidateID string, patch models.ProfilePatch, at time.Time) (*models.CandidateProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.candidates[candidateID]
	if !ok {
		return nil, store.ErrNotFound
	}
	p = cloneProfile(p)
	patch.Apply(&p)
	p.UpdatedAt = at.UTC()
	r.candidates[candidateID] = p

	out := cloneProfile(p)
	return &out, nil
}

// ==========================
// Jobs
// ==========================

func (r *Repository) Job(_ context.Context, id string) (*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	j = cloneJob(j)
	return &j, nil
}

func (r *Repository) JobsByHR(_ context.Context, hrID string) ([]models.Job, error) {
	return r.filterJobs(func(j models.Job) bool { return j.HRID == hrID }), nil
}

func (r *Repository) ActiveJobs(_ context.Context) ([]models.Job, error) {
	return r.filterJobs(func(j models.Job) bool { return j.Status == models.JobStatusActive }), nil
}

func (r *Repository) filterJobs(keep func(models.Job) bool) []models.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Job, 0)
	for _, id := range r.jobOrder {
		if j := r.jobs[id]; keep(j) {
			out = append(out, cloneJob(j))
		}
	}
	return out
}

// ==========================
// Applications
// ==========================

func (r *Repository) Application(_ context.Context, id string) (*models.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.apps[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (r *Repository) ApplicationsByJob(_ context.Context, jobID string) ([]models.Application, error) {
	return r.filterApps(func(a models.Application) bool { return a.JobID == jobID }), nil
}

func (r *Repository) ApplicationsByCandidate(_ context.Context, candidateID string) ([]models.Application, error) {
	return r.filterApps(func(a models.Application) bool { return a.CandidateID == candidateID }), nil
}

func (r *Repository) filterApps(keep func(models.Application) bool) []models.Application {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Application, 0)
	for _, id := range r.appOrder {
		if a := r.apps[id]; keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (r *Repository) CreateApplication(_ context.Context, jobID, candidateID string, at time.Time) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
	}
	if _, ok := r.candidates[candidateID]; !ok {
		return nil, fmt.Errorf("candidate %s: %w", candidateID, store.ErrNotFound)
	}
	if _, dup := r.appPairs[pair{jobID, candidateID}]; dup {
		return nil, fmt.Errorf("application for job %s by %s: %w", jobID, candidateID, store.ErrDuplicate)
	}

	app := models.Application{
		ID:          r.newID("app"),
		JobID:       jobID,
		CandidateID: candidateID,
		Status:      models.ApplicationStatusApplied,
		AppliedAt:   at.UTC(),
	}
	r.putApplicationLocked(app)
	job.ApplicantCount++
	r.jobs[jobID] = job
	return &app, nil
}

func (r *Repository) SetApplicationStatus(_ context.Context, applicationID string, status models.ApplicationStatus, at time.Time) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[applicationID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := store.CheckTransition(app.Status, status); err != nil {
		return nil, err
	}
	app.Transition(status, at)
	r.apps[applicationID] = app
	return &app, nil
}

// CandidatesForJob returns the profiles that applied to jobID in profile insertion order.
func (r *Repository) CandidatesForJob(_ context.Context, jobID string) ([]models.CandidateProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.jobs[jobID]; !ok {
		return nil, fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
	}
	out := make([]models.CandidateProfile, 0)
	for _, id := range r.candidateOrder {
		if _, applied := r.appPairs[pair{jobID, id}]; applied {
			out = append(out, cloneProfile(r.candidates[id]))
		}
	}
	return out, nil
}

// ==========================
// Conversations
// ==========================

func (r *Repository) Conversations(_ context.Context, profileID string, role models.Role) ([]models.ChatConversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ChatConversation, 0)
	for _, id := range r.convOrder {
		c := r.conversations[id]
		if (role == models.RoleHR && c.HRID == profileID) || (role == models.RoleCandidate && c.CandidateID == profileID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *Repository) Conversation(_ context.Context, id string) (*models.ChatConversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conversations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (r *Repository) Messages(_ context.Context, conversationID string) ([]models.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.conversations[conversationID]; !ok {
		return nil, store.ErrNotFound
	}
	return append([]models.ChatMessage{}, r.messages[conversationID]...), nil
}

func (r *Repository) Ping(context.Context) error {
	return nil
}
