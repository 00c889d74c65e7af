// Package service holds the business rules behind each endpoint.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"inkwell/internal/featureflags"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(userID uint) (string, error)
}

// TokenRevoker invalidates a token id until its expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

type AuthService struct {
	users    repository.UserRepository
	tokens   TokenIssuer
	revoker  TokenRevoker
	flags    *featureflags.Manager
	hashCost int

	dummyOnce sync.Once
	dummyHash []byte
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithHashCost overrides bcrypt.DefaultCost.
func WithHashCost(cost int) AuthOption {
	return func(s *AuthService) { s.hashCost = cost }
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

func NewAuthService(
	users repository.UserRepository,
	tokens TokenIssuer,
	revoker TokenRevoker,
	flags *featureflags.Manager,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		users:    users,
		tokens:   tokens,
		revoker:  revoker,
		flags:    flags,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the user and returns a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)

	if username == "" || email == "" || in.Password == "" {
		return "", models.NewValidationError("Username, email and password are required")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePasswordLength(in.Password); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	if s.flags.EnabledFor(featureflags.StrictSignup, email) {
		if err := validation.ValidateUsername(username); err != nil {
			return "", models.NewValidationError(err.Error())
		}
		if err := validation.ValidatePassword(in.Password); err != nil {
			return "", models.NewValidationError(err.Error())
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	user := &models.User{Username: username, Email: email, Password: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		observability.CredentialChecks.WithLabelValues("register", "rejected").Inc()
		return "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	observability.CredentialChecks.WithLabelValues("register", "ok").Inc()
	return token, nil
}

// Login returns a token when email and password match. Unknown email and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return "", models.NewValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		// Spend the same bcrypt work as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(in.Password))
		observability.CredentialChecks.WithLabelValues("login", "rejected").Inc()
		return "", models.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		observability.CredentialChecks.WithLabelValues("login", "rejected").Inc()
		return "", models.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	observability.CredentialChecks.WithLabelValues("login", "ok").Inc()
	return token, nil
}

// Logout revokes the token identified by jti until expiresAt.
func (s *AuthService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return models.NewUnauthenticatedError("Token has no id")
	}
	if s.revoker == nil {
		return models.NewInternalError(errors.New("token revocation is not configured"))
	}
	if err := s.revoker.Revoke(ctx, jti, expiresAt); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("inkwell-login-timing"), s.hashCost)
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
