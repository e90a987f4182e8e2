// internal/models/application.go
package models

import "time"

// ApplicationStatus is the screening state of one application.
type ApplicationStatus string

const (
	ApplicationStatusApplied     ApplicationStatus = "applied"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusApplied, ApplicationStatusShortlisted, ApplicationStatusRejected:
		return true
	}
	return false
}

// Application links one candidate to one job. There is at most one per pair.
type Application struct {
	ID            string            `json:"id" db:"id"`
	JobID         string            `json:"jobId" db:"job_id"`
	CandidateID   string            `json:"candidateId" db:"candidate_id"`
	Status        ApplicationStatus `json:"status" db:"status"`
	AppliedAt     time.Time         `json:"appliedAt" db:"applied_at"`
	ShortlistedAt *time.Time        `json:"shortlistedAt,omitempty" db:"shortlisted_at"`
	RejectedAt    *time.Time        `json:"rejectedAt,omitempty" db:"rejected_at"`
}

// Transition moves the application to status and stamps the matching timestamp.
// It returns false when the application already has that status.
func (a *Application) Transition(status ApplicationStatus, at time.Time) bool {
	if a.Status == status {
		return false
	}
	a.Status = status
	stamp := at.UTC()
	switch status {
	case ApplicationStatusShortlisted:
		a.ShortlistedAt = &stamp
	case ApplicationStatusRejected:
		a.RejectedAt = &stamp
	}
	return true
}
