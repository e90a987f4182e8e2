// internal/auth/service.go

// Package auth handles registration, login and bearer sessions.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "swipe-screening/internal/common/errors"
	"swipe-screening/internal/common/logger"
	"swipe-screening/internal/common/metrics"
	"swipe-screening/internal/common/validation"
	"swipe-screening/internal/models"
	"swipe-screening/internal/store"
)

// CandidateRegistration is the sign-up form for job seekers.
type CandidateRegistration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"fullName" validate:"required,max=120"`
}

// HRRegistration is the sign-up form for HR managers.
type HRRegistration struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	Name        string `json:"name" validate:"required,max=120"`
	CompanyName string `json:"companyName" validate:"required,max=200"`
	CompanySize string `json:"companySize" validate:"omitempty,max=50"`
	Department  string `json:"department" validate:"omitempty,max=100"`
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Result is returned by login and registration.
type Result struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Account   models.Account `json:"account"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	Session models.Session
	Account models.Account
}

type Service struct {
	repo       store.Repository
	limiter    Limiter
	sessions   *sessionStore
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
	newToken   func() string
	log        logger.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithTokenGenerator(gen func() string) Option {
	return func(s *Service) { s.newToken = gen }
}

func WithLimiter(l Limiter) Option {
	return func(s *Service) {
		if l != nil {
			s.limiter = l
		}
	}
}

func NewService(repo store.Repository, tokenTTL time.Duration, bcryptCost int, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		limiter:    NoLimit{},
		sessions:   newSessionStore(),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		now:        time.Now,
		newToken:   func() string { return uuid.NewString() },
		log:        log.Named("auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks credentials and opens a session. Unknown email and wrong password
// produce the same error.
func (s *Service) Login(ctx context.Context, in Credentials) (*Result, error) {
	in.Email = normalizeEmail(in.Email)
	if vr := validation.ValidateStruct(in); !vr.Valid {
		return nil, invalid(vr)
	}
	email := in.Email

	allowed, retryAfter, _ := s.limiter.Allow(ctx, email)
	if !allowed {
		metrics.LoginAttempts.WithLabelValues("rate_limited").Inc()
		s.log.Warn("Login rate limited", map[string]interface{}{"email": email})
		return nil, apperrors.NewRateLimitedError(retryAfter)
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.LoginAttempts.WithLabelValues("invalid").Inc()
			return nil, apperrors.NewInvalidCredentialsError()
		}
		return nil, apperrors.NewQueryExecutionFailedError("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		return nil, apperrors.NewInvalidCredentialsError()
	}

	account, err := s.repo.LoadAccount(ctx, user.ID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("load account", err)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return s.open(account), nil
}

// RegisterCandidate creates a candidate with an empty profile and logs them in.
func (s *Service) RegisterCandidate(ctx context.Context, in CandidateRegistration) (*Result, error) {
	in.Email = normalizeEmail(in.Email)
	if vr := validation.ValidateStruct(in); !vr.Valid {
		return nil, invalid(vr)
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.CreateCandidate(ctx, store.NewCandidate{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.FullName),
	})
	if err != nil {
		return nil, s.createError(in.Email, err)
	}

	s.log.Info("Candidate registered", map[string]interface{}{"userId": account.User.ID})
	return s.open(account), nil
}

// RegisterHR creates an HR manager with a company profile and logs them in.
func (s *Service) RegisterHR(ctx context.Context, in HRRegistration) (*Result, error) {
	in.Email = normalizeEmail(in.Email)
	if vr := validation.ValidateStruct(in); !vr.Valid {
		return nil, invalid(vr)
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.CreateHR(ctx, store.NewHR{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		CompanyName:  strings.TrimSpace(in.CompanyName),
		CompanySize:  in.CompanySize,
		Department:   in.Department,
	})
	if err != nil {
		return nil, s.createError(in.Email, err)
	}

	s.log.Info("HR manager registered", map[string]interface{}{"userId": account.User.ID})
	return s.open(account), nil
}

// Logout ends the session. Unknown tokens are ignored.
func (s *Service) Logout(_ context.Context, token string) {
	if s.sessions.remove(token) {
		s.log.Debug("Session closed", nil)
	}
}

// Authenticate resolves a bearer token to its caller and refreshes the account
// from the repository so profile edits are visible.
func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, apperrors.NewUnauthorizedError("missing bearer token")
	}
	sess, ok := s.sessions.touch(token, s.now())
	if !ok {
		return nil, apperrors.NewUnauthorizedError("unknown or expired token")
	}

	account, err := s.repo.LoadAccount(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sessions.remove(token)
			return nil, apperrors.NewUnauthorizedError("account no longer exists")
		}
		return nil, apperrors.NewQueryExecutionFailedError("load account", err)
	}
	return &Principal{Session: sess, Account: account}, nil
}

// SweepExpired removes expired sessions.
func (s *Service) SweepExpired() int {
	return s.sessions.sweep(s.now())
}

func (s *Service) open(account models.Account) *Result {
	now := s.now()
	user := account.Identity()
	sess := &models.Session{
		Token:        s.newToken(),
		UserID:       user.ID,
		Role:         account.Role(),
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.tokenTTL),
		LastActivity: now,
	}
	s.sessions.put(sess)
	return &Result{Token: sess.Token, ExpiresAt: sess.ExpiresAt, Account: account}
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return string(b), nil
}

func (s *Service) createError(email string, err error) error {
	if errors.Is(err, store.ErrDuplicate) {
		return apperrors.NewEmailTakenError(normalizeEmail(email))
	}
	return apperrors.NewDatabaseWriteFailedError("create account", err)
}

func invalid(vr *validation.ValidationResult) error {
	stdErr := apperrors.NewValidationFailedError(strings.Join(vr.GetErrorMessages(), "; "))
	stdErr.Metadata = vr.Details()
	return stdErr
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
