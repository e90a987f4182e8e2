// internal/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"swipe-screening/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("already exists")
	ErrInvalidStatus = errors.New("invalid application status")
)

// NewCandidate is the input for creating a candidate account with an empty profile.
type NewCandidate struct {
	Email        string
	PasswordHash string
	Name         string
}

// NewHR is the input for creating an HR account.
type NewHR struct {
	Email        string
	PasswordHash string
	Name         string
	CompanyName  string
	CompanySize  string
	Department   string
}

// Repository is the data contract shared by the memory and postgres backends.
// Email lookups are case-insensitive. Jobs and conversations reference HR profile
// ids; applications and conversations reference candidate profile ids.
type Repository interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateCandidate(ctx context.Context, in NewCandidate) (models.CandidateAccount, error)
	CreateHR(ctx context.Context, in NewHR) (models.HRAccount, error)
	LoadAccount(ctx context.Context, userID string) (models.Account, error)

	CandidateProfile(ctx context.Context, candidateID string) (*models.CandidateProfile, error)
	UpdateCandidateProfile(ctx context.Context, candidateID string, patch models.ProfilePatch, at time.Time) (*models.CandidateProfile, error)

	Job(ctx context.Context, id string) (*models.Job, error)
	JobsByHR(ctx context.Context, hrID string) ([]models.Job, error)
	ActiveJobs(ctx context.Context) ([]models.Job, error)

	Application(ctx context.Context, id string) (*models.Application, error)
	ApplicationsByJob(ctx context.Context, jobID string) ([]models.Application, error)
	ApplicationsByCandidate(ctx context.Context, candidateID string) ([]models.Application, error)
	CreateApplication(ctx context.Context, jobID, candidateID string, at time.Time) (*models.Application, error)
	SetApplicationStatus(ctx context.Context, applicationID string, status models.ApplicationStatus, at time.Time) (*models.Application, error)
	CandidatesForJob(ctx context.Context, jobID string) ([]models.CandidateProfile, error)

	Conversations(ctx context.Context, profileID string, role models.Role) ([]models.ChatConversation, error)
	Conversation(ctx context.Context, id string) (*models.ChatConversation, error)
	Messages(ctx context.Context, conversationID string) ([]models.ChatMessage, error)

	Ping(ctx context.Context) error
}

// CheckTransition rejects unknown statuses and moves back to applied. Decided
// applications may flip between shortlisted and rejected.
func CheckTransition(from, to models.ApplicationStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if to == models.ApplicationStatusApplied && from != models.ApplicationStatusApplied {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, from, to)
	}
	return nil
}
