// internal/store/postgres/postgres.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"swipe-screening/internal/models"
	"swipe-screening/internal/store"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// Repository implements store.Repository over PostgreSQL.
type Repository struct {
	db    *sql.DB
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

func New(db *sql.DB, opts ...Option) *Repository {
	r := &Repository{
		db:  db,
		now: time.Now,
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

type scanner interface {
	Scan(dest ...interface{}) error
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s", store.ErrDuplicate, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: %s", store.ErrNotFound, pqErr.Constraint)
		}
	}
	return err
}

func (r *Repository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ==========================
// Accounts
// ==========================

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.CreatedAt); err != nil {
		return nil, translate(err)
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, queryUserByEmail, strings.TrimSpace(email)))
}

func (r *Repository) CreateCandidate(ctx context.Context, in store.NewCandidate) (models.CandidateAccount, error) {
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

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertUser,
			user.ID, user.Email, user.PasswordHash, user.Name, string(user.Role), user.CreatedAt,
		); err != nil {
			return translate(err)
		}
		_, err := tx.ExecContext(ctx, insertCandidate,
			profile.ID, profile.UserID, profile.FullName, profile.Email,
			pq.Array(profile.Skills), []byte("[]"), profile.CreatedAt, profile.UpdatedAt,
		)
		return translate(err)
	})
	if err != nil {
		return models.CandidateAccount{}, err
	}
	return models.CandidateAccount{User: user, Profile: profile}, nil
}

func (r *Repository) CreateHR(ctx context.Context, in store.NewHR) (models.HRAccount, error) {
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

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertUser,
			user.ID, user.Email, user.PasswordHash, user.Name, string(user.Role), user.CreatedAt,
		); err != nil {
			return translate(err)
		}
		_, err := tx.ExecContext(ctx, insertHR,
			profile.ID, profile.UserID, profile.CompanyName, profile.CompanySize,
			profile.Department, profile.CreatedAt, profile.UpdatedAt,
		)
		return translate(err)
	})
	if err != nil {
		return models.HRAccount{}, err
	}
	return models.HRAccount{User: user, Profile: profile}, nil
}

func (r *Repository) LoadAccount(ctx context.Context, userID string) (models.Account, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, queryUserByID, userID))
	if err != nil {
		return nil, err
	}
	switch user.Role {
	case models.RoleCandidate:
		p, err := scanCandidate(r.db.QueryRowContext(ctx, queryCandidateByUser, userID))
		if err != nil {
			return nil, fmt.Errorf("candidate profile for user %s: %w", userID, err)
		}
		return models.CandidateAccount{User: *user, Profile: *p}, nil
	case models.RoleHR:
		var p models.HRProfile
		err := r.db.QueryRowContext(ctx, queryHRByUser, userID).Scan(
			&p.ID, &p.UserID, &p.CompanyName, &p.CompanySize, &p.Department, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("hr profile for user %s: %w", userID, translate(err))
		}
		return models.HRAccount{User: *user, Profile: p}, nil
	}
	return nil, fmt.Errorf("user %s has unknown role %q", userID, user.Role)
}

// ==========================
// Profiles
// ==========================

func scanCandidate(row scanner) (*models.CandidateProfile, error) {
	var p models.CandidateProfile
	var education, resume, cv []byte
	err := row.Scan(
		&p.ID, &p.UserID, &p.FullName, &p.Email, &p.Phone, &p.Location, &p.YearsOfExperience,
		pq.Array(&p.Skills), &education, &resume, &cv,
		&p.Portfolio, &p.LinkedIn, &p.GitHub, &p.PersonalWebsite, &p.Bio,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	p.Education = []models.EducationEntry{}
	if len(education) > 0 {
		if err := json.Unmarshal(education, &p.Education); err != nil {
			return nil, fmt.Errorf("decode education of %s: %w", p.ID, err)
		}
	}
	if p.Resume, err = decodeFileRef(resume); err != nil {
		return nil, fmt.Errorf("decode resume of %s: %w", p.ID, err)
	}
	if p.CV, err = decodeFileRef(cv); err != nil {
		return nil, fmt.Errorf("decode cv of %s: %w", p.ID, err)
	}
	return &p, nil
}

func decodeFileRef(raw []byte) (*models.FileRef, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var ref models.FileRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

func scanCandidates(rows *sql.Rows) ([]models.CandidateProfile, error) {
	defer rows.Close()
	out := make([]models.CandidateProfile, 0)
	for rows.Next() {
		p, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repository) CandidateProfile(ctx context.Context, candidateID string) (*models.CandidateProfile, error) {
	return scanCandidate(r.db.QueryRowContext(ctx, queryCandidateByID, candidateID))
}

func (r *Repository) UpdateCandidateProfile(ctx context.Context, candidateID string, patch models.ProfilePatch, at time.Time) (*models.CandidateProfile, error) {
	var updated *models.CandidateProfile
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		p, err := scanCandidate(tx.QueryRowContext(ctx, queryCandidateForWrite, candidateID))
		if err != nil {
			return err
		}
		patch.Apply(p)
		p.UpdatedAt = at.UTC()

		education, err := json.Marshal(p.Education)
		if err != nil {
			return fmt.Errorf("encode education: %w", err)
		}
		if _, err := tx.ExecContext(ctx, updateCandidate,
			p.ID, p.FullName, p.Phone, p.Location, p.YearsOfExperience,
			pq.Array(p.Skills), education, p.Portfolio, p.LinkedIn,
			p.GitHub, p.PersonalWebsite, p.Bio, p.UpdatedAt,
		); err != nil {
			return translate(err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ==========================
// Jobs
// ==========================

func scanJob(row scanner) (*models.Job, error) {
	var j models.Job
	var status string
	var minEducation sql.NullString
	var salaryMin, salaryMax sql.NullInt64
	err := row.Scan(
		&j.ID, &j.HRID, &j.Title, &j.Description, &j.Department, &j.Location,
		pq.Array(&j.RequiredSkills), &j.MinExperience, &minEducation,
		&salaryMin, &salaryMax, &status, &j.CreatedAt, &j.ClosedAt, &j.ApplicantCount,
	)
	if err != nil {
		return nil, translate(err)
	}
	j.Status = models.JobStatus(status)
	j.MinEducation = minEducation.String
	if salaryMin.Valid && salaryMax.Valid {
		j.Salary = &models.SalaryRange{Min: int(salaryMin.Int64), Max: int(salaryMax.Int64)}
	}
	if j.RequiredSkills == nil {
		j.RequiredSkills = []string{}
	}
	return &j, nil
}

func (r *Repository) queryJobs(ctx context.Context, query string, args ...interface{}) ([]models.Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (r *Repository) Job(ctx context.Context, id string) (*models.Job, error) {
	return scanJob(r.db.QueryRowContext(ctx, queryJobByID, id))
}

func (r *Repository) JobsByHR(ctx context.Context, hrID string) ([]models.Job, error) {
	return r.queryJobs(ctx, queryJobsByHR, hrID)
}

func (r *Repository) ActiveJobs(ctx context.Context) ([]models.Job, error) {
	return r.queryJobs(ctx, queryActiveJob)
}

// ==========================
// Applications
// ==========================

func scanApplication(row scanner) (*models.Application, error) {
	var a models.Application
	var status string
	if err := row.Scan(&a.ID, &a.JobID, &a.CandidateID, &status, &a.AppliedAt, &a.ShortlistedAt, &a.RejectedAt); err != nil {
		return nil, translate(err)
	}
	a.Status = models.ApplicationStatus(status)
	return &a, nil
}

func (r *Repository) queryApplications(ctx context.Context, query string, arg string) ([]models.Application, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *Repository) Application(ctx context.Context, id string) (*models.Application, error) {
	return scanApplication(r.db.QueryRowContext(ctx, queryApplicationByID, id))
}

func (r *Repository) ApplicationsByJob(ctx context.Context, jobID string) ([]models.Application, error) {
	return r.queryApplications(ctx, queryApplicationsByJob, jobID)
}

func (r *Repository) ApplicationsByCandidate(ctx context.Context, candidateID string) ([]models.Application, error) {
	return r.queryApplications(ctx, queryApplicationsByCand, candidateID)
}

func (r *Repository) CreateApplication(ctx context.Context, jobID, candidateID string, at time.Time) (*models.Application, error) {
	app := models.Application{
		ID:          r.newID("app"),
		JobID:       jobID,
		CandidateID: candidateID,
		Status:      models.ApplicationStatusApplied,
		AppliedAt:   at.UTC(),
	}
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, queryJobExists, jobID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, insertApplication,
			app.ID, app.JobID, app.CandidateID, string(app.Status), app.AppliedAt,
		); err != nil {
			return translate(err)
		}
		_, err := tx.ExecContext(ctx, bumpApplicants, jobID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *Repository) SetApplicationStatus(ctx context.Context, applicationID string, status models.ApplicationStatus, at time.Time) (*models.Application, error) {
	var updated *models.Application
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		app, err := scanApplication(tx.QueryRowContext(ctx, queryApplicationForWrite, applicationID))
		if err != nil {
			return err
		}
		if err := store.CheckTransition(app.Status, status); err != nil {
			return err
		}
		if !app.Transition(status, at) {
			updated = app
			return nil
		}
		if _, err := tx.ExecContext(ctx, updateApplicationStatus,
			app.ID, string(app.Status), app.ShortlistedAt, app.RejectedAt,
		); err != nil {
			return err
		}
		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CandidatesForJob returns applicants of jobID in profile insertion order.
func (r *Repository) CandidatesForJob(ctx context.Context, jobID string) ([]models.CandidateProfile, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, queryJobExists, jobID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
	}
	rows, err := r.db.QueryContext(ctx, queryCandidatesForJob, jobID)
	if err != nil {
		return nil, err
	}
	return scanCandidates(rows)
}

// ==========================
// Conversations
// ==========================

func scanConversation(row scanner) (*models.ChatConversation, error) {
	var c models.ChatConversation
	var last sql.NullString
	if err := row.Scan(&c.ID, &c.HRID, &c.CandidateID, &c.JobID, &c.ApplicationID, &c.CreatedAt, &c.UpdatedAt, &last); err != nil {
		return nil, translate(err)
	}
	c.LastMessage = last.String
	return &c, nil
}

func (r *Repository) Conversations(ctx context.Context, profileID string, role models.Role) ([]models.ChatConversation, error) {
	query := queryConversationsForCandidate
	if role == models.RoleHR {
		query = queryConversationsForHR
	}
	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ChatConversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Repository) Conversation(ctx context.Context, id string) (*models.ChatConversation, error) {
	return scanConversation(r.db.QueryRowContext(ctx, queryConversationByID, id))
}

func (r *Repository) Messages(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	if _, err := r.Conversation(ctx, conversationID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, queryMessages, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ChatMessage, 0)
	for rows.Next() {
		var m models.ChatMessage
		var role string
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &role, &m.Message, &m.Timestamp, &m.Read); err != nil {
			return nil, err
		}
		m.SenderRole = models.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}
