// internal/models/session.go
package models

import "time"

// Session is an authenticated bearer token.
type Session struct {
	Token        string    `json:"token"`
	UserID       string    `json:"userId"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// IsExpired checks if session has expired
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// UpdateActivity updates the last activity timestamp
func (s *Session) UpdateActivity(now time.Time) {
	s.LastActivity = now
}
