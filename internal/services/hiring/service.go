// internal/services/hiring/service.go

// Package hiring covers the HR dashboard and the candidate side of applying to jobs.
package hiring

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "swipe-screening/internal/common/errors"
	"swipe-screening/internal/common/logger"
	"swipe-screening/internal/common/validation"
	"swipe-screening/internal/models"
	"swipe-screening/internal/store"
)

// JobSummary is one row of the HR dashboard.
type JobSummary struct {
	Job   models.Job      `json:"job"`
	Stats models.JobStats `json:"stats"`
}

// Dashboard is the HR overview across all of their jobs.
type Dashboard struct {
	Jobs       []JobSummary    `json:"jobs"`
	Totals     models.JobStats `json:"totals"`
	ActiveJobs int             `json:"activeJobs"`
}

// ApplicationView pairs an application with the job it was made for.
type ApplicationView struct {
	Application models.Application `json:"application"`
	Job         *models.Job        `json:"job,omitempty"`
}

type Service struct {
	repo store.Repository
	now  func() time.Time
	log  logger.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo store.Repository, log logger.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, log: log.Named("hiring")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard returns per-job application stats for the HR manager's jobs and their sum.
func (s *Service) Dashboard(ctx context.Context, hr models.HRAccount) (*Dashboard, error) {
	jobs, err := s.repo.JobsByHR(ctx, hr.Profile.ID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("jobs by hr", err)
	}

	out := &Dashboard{Jobs: make([]JobSummary, 0, len(jobs))}
	for _, job := range jobs {
		apps, err := s.repo.ApplicationsByJob(ctx, job.ID)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("applications by job", err)
		}
		var stats models.JobStats
		for _, app := range apps {
			stats.Add(app.Status)
			out.Totals.Add(app.Status)
		}
		if job.Status == models.JobStatusActive {
			out.ActiveJobs++
		}
		out.Jobs = append(out.Jobs, JobSummary{Job: job, Stats: stats})
	}
	return out, nil
}

// ListJobs returns the caller's own jobs for HR and the open jobs for candidates.
func (s *Service) ListJobs(ctx context.Context, account models.Account) ([]models.Job, error) {
	var (
		jobs []models.Job
		err  error
	)
	switch a := account.(type) {
	case models.HRAccount:
		jobs, err = s.repo.JobsByHR(ctx, a.Profile.ID)
	case models.CandidateAccount:
		jobs, err = s.repo.ActiveJobs(ctx)
	default:
		return nil, apperrors.NewForbiddenError("unknown account type")
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list jobs", err)
	}
	return jobs, nil
}

// Apply creates an application for an active job. A second application to the same
// job is a conflict.
func (s *Service) Apply(ctx context.Context, candidate models.CandidateAccount, jobID string) (*models.Application, error) {
	job, err := s.repo.Job(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewJobNotFoundError(jobID)
		}
		return nil, apperrors.NewQueryExecutionFailedError("get job", err)
	}
	if job.Status != models.JobStatusActive {
		return nil, apperrors.NewJobClosedError(jobID)
	}

	app, err := s.repo.CreateApplication(ctx, jobID, candidate.Profile.ID, s.now())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, apperrors.NewDuplicateApplicationError(jobID)
		case errors.Is(err, store.ErrNotFound):
			return nil, apperrors.NewJobNotFoundError(jobID)
		}
		return nil, apperrors.NewDatabaseWriteFailedError("create application", err)
	}

	s.log.Info("Application created", map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         jobID,
		"candidateId":   candidate.Profile.ID,
	})
	return app, nil
}

// MyApplications lists the candidate's applications with their jobs in stored order.
// Applications whose job has disappeared are returned without it.
func (s *Service) MyApplications(ctx context.Context, candidate models.CandidateAccount) ([]ApplicationView, error) {
	apps, err := s.repo.ApplicationsByCandidate(ctx, candidate.Profile.ID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("applications by candidate", err)
	}

	jobs := make(map[string]*models.Job)
	views := make([]ApplicationView, 0, len(apps))
	for _, app := range apps {
		job, seen := jobs[app.JobID]
		if !seen {
			job, err = s.repo.Job(ctx, app.JobID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.NewQueryExecutionFailedError("get job", err)
			}
			jobs[app.JobID] = job
		}
		views = append(views, ApplicationView{Application: app, Job: job})
	}
	return views, nil
}

// UpdateProfile applies patch to the candidate's profile.
func (s *Service) UpdateProfile(ctx context.Context, candidate models.CandidateAccount, patch models.ProfilePatch) (*models.CandidateProfile, error) {
	if vr := validation.ValidateStruct(patch); !vr.Valid {
		stdErr := apperrors.NewValidationFailedError(strings.Join(vr.GetErrorMessages(), "; "))
		stdErr.Metadata = vr.Details()
		return nil, stdErr
	}

	profile, err := s.repo.UpdateCandidateProfile(ctx, candidate.Profile.ID, patch, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewProfileNotFoundError(candidate.Profile.ID)
		}
		return nil, apperrors.NewDatabaseWriteFailedError("update profile", err)
	}
	return profile, nil
}
