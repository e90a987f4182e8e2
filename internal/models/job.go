// internal/models/job.go
package models

import "time"

type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
	JobStatusDraft  JobStatus = "draft"
)

type SalaryRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

type Job struct {
	ID             string       `json:"id" db:"id"`
	HRID           string       `json:"hrId" db:"hr_id"`
	Title          string       `json:"title" db:"title"`
	Description    string       `json:"description" db:"description"`
	Department     string       `json:"department" db:"department"`
	Location       string       `json:"location" db:"location"`
	RequiredSkills []string     `json:"requiredSkills" db:"required_skills"`
	MinExperience  int          `json:"minExperience" db:"min_experience"`
	MinEducation   string       `json:"minEducation,omitempty" db:"min_education"`
	Salary         *SalaryRange `json:"salaryRange,omitempty" db:"salary"`
	Status         JobStatus    `json:"status" db:"status"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	ClosedAt       *time.Time   `json:"closedAt,omitempty" db:"closed_at"`
	ApplicantCount int          `json:"applicantCount" db:"applicant_count"`
}

// JobStats summarises the applications of one job.
type JobStats struct {
	Shortlisted int `json:"shortlisted"`
	Rejected    int `json:"rejected"`
	Pending     int `json:"pending"`
	Total       int `json:"total"`
}

// Add counts one application.
func (s *JobStats) Add(status ApplicationStatus) {
	s.Total++
	switch status {
	case ApplicationStatusShortlisted:
		s.Shortlisted++
	case ApplicationStatusRejected:
		s.Rejected++
	case ApplicationStatusApplied:
		s.Pending++
	}
}
