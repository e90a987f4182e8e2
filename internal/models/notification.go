// internal/models/notification.go
package models

import "time"

// DecisionEvent is published whenever a screening decision changes an application.
type DecisionEvent struct {
	SessionID     string            `json:"sessionId"`
	JobID         string            `json:"jobId"`
	JobTitle      string            `json:"jobTitle"`
	ApplicationID string            `json:"applicationId"`
	CandidateID   string            `json:"candidateId"`
	CandidateName string            `json:"candidateName"`
	CandidateMail string            `json:"candidateEmail"`
	Status        ApplicationStatus `json:"status"`
	DecidedBy     string            `json:"decidedBy"`
	DecidedAt     time.Time         `json:"decidedAt"`
}
