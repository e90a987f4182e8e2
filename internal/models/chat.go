// internal/models/chat.go
package models

import "time"

type ChatConversation struct {
	ID            string    `json:"id" db:"id"`
	HRID          string    `json:"hrId" db:"hr_id"`
	CandidateID   string    `json:"candidateId" db:"candidate_id"`
	JobID         string    `json:"jobId" db:"job_id"`
	ApplicationID string    `json:"applicationId" db:"application_id"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
	LastMessage   string    `json:"lastMessage,omitempty" db:"last_message"`
}

type ChatMessage struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversationId" db:"conversation_id"`
	SenderID       string    `json:"senderId" db:"sender_id"`
	SenderRole     Role      `json:"senderRole" db:"sender_role"`
	Message        string    `json:"message" db:"message"`
	Timestamp      time.Time `json:"timestamp" db:"timestamp"`
	Read           bool      `json:"read" db:"read"`
}
