// internal/services/chat/service.go

// Package chat exposes HR/candidate conversations. Sending is accepted but not stored.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "swipe-screening/internal/common/errors"
	"swipe-screening/internal/common/logger"
	"swipe-screening/internal/common/validation"
	"swipe-screening/internal/models"
	"swipe-screening/internal/store"
)

// Reader is the part of the repository chat needs.
type Reader interface {
	Conversations(ctx context.Context, profileID string, role models.Role) ([]models.ChatConversation, error)
	Conversation(ctx context.Context, id string) (*models.ChatConversation, error)
	Messages(ctx context.Context, conversationID string) ([]models.ChatMessage, error)
}

// Draft is an outgoing message.
type Draft struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type Service struct {
	repo  Reader
	log   logger.Logger
	now   func() time.Time
	newID func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

func NewService(repo Reader, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		log:   log.Named("chat"),
		now:   time.Now,
		newID: func() string { return "msg-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Conversations lists the conversations the account takes part in.
func (s *Service) Conversations(ctx context.Context, account models.Account) ([]models.ChatConversation, error) {
	profileID, err := profileOf(account)
	if err != nil {
		return nil, err
	}
	convs, err := s.repo.Conversations(ctx, profileID, account.Role())
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list conversations", err)
	}
	return convs, nil
}

// Messages returns the messages of a conversation in send order. Conversations the
// account is not part of are reported as missing.
func (s *Service) Messages(ctx context.Context, account models.Account, conversationID string) ([]models.ChatMessage, error) {
	if _, err := s.participant(ctx, account, conversationID); err != nil {
		return nil, err
	}
	msgs, err := s.repo.Messages(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewConversationNotFoundError(conversationID)
		}
		return nil, apperrors.NewQueryExecutionFailedError("list messages", err)
	}
	return msgs, nil
}

// Send validates and logs a message and returns it as it would have been stored.
// Nothing is persisted.
func (s *Service) Send(ctx context.Context, account models.Account, conversationID string, draft Draft) (*models.ChatMessage, error) {
	draft.Message = strings.TrimSpace(draft.Message)
	if vr := validation.ValidateStruct(draft); !vr.Valid {
		stdErr := apperrors.NewValidationFailedError(strings.Join(vr.GetErrorMessages(), "; "))
		stdErr.Metadata = vr.Details()
		return nil, stdErr
	}
	if _, err := s.participant(ctx, account, conversationID); err != nil {
		return nil, err
	}

	user := account.Identity()
	msg := &models.ChatMessage{
		ID:             s.newID(),
		ConversationID: conversationID,
		SenderID:       user.ID,
		SenderRole:     account.Role(),
		Message:        draft.Message,
		Timestamp:      s.now().UTC(),
	}
	s.log.Info("Chat message accepted", map[string]interface{}{
		"conversationId": conversationID,
		"senderId":       user.ID,
		"length":         len(msg.Message),
	})
	return msg, nil
}

func (s *Service) participant(ctx context.Context, account models.Account, conversationID string) (*models.ChatConversation, error) {
	profileID, err := profileOf(account)
	if err != nil {
		return nil, err
	}
	conv, err := s.repo.Conversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewConversationNotFoundError(conversationID)
		}
		return nil, apperrors.NewQueryExecutionFailedError("get conversation", err)
	}

	var member bool
	switch account.Role() {
	case models.RoleHR:
		member = conv.HRID == profileID
	case models.RoleCandidate:
		member = conv.CandidateID == profileID
	}
	if !member {
		return nil, apperrors.NewConversationNotFoundError(conversationID)
	}
	return conv, nil
}

func profileOf(account models.Account) (string, error) {
	switch a := account.(type) {
	case models.HRAccount:
		return a.Profile.ID, nil
	case models.CandidateAccount:
		return a.Profile.ID, nil
	}
	return "", apperrors.NewForbiddenError("unknown account type")
}
