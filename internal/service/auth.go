package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/listenupapp/recipe-server/internal/auth"
	"github.com/listenupapp/recipe-server/internal/domain"
	domainerrors "github.com/listenupapp/recipe-server/internal/errors"
	"github.com/listenupapp/recipe-server/internal/normalize"
	"github.com/listenupapp/recipe-server/internal/store"
	"github.com/listenupapp/recipe-server/internal/validation"
)

// AuthService manages accounts and bearer tokens. The HTTP API only verifies
// tokens; accounts and tokens are created through the operator CLI.
type AuthService struct {
	store     store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(st store.Store, tokens *auth.TokenService, v *validation.Validator, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthService{
		store:     st,
		tokens:    tokens,
		validator: v,
		logger:    logger,
	}
}

// CreateUserRequest contains the data for a new account.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"max=255"`
}

// TokenResponse is an issued bearer token.
type TokenResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// CreateUser validates req, hashes the password and stores an active user.
func (s *AuthService) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = normalize.Text(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domainerrors.InvalidField("password", err.Error())
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.InvalidField("email", "a user with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login checks credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_, _ = auth.HashPassword(password)
			return nil, domainerrors.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.CanAuthenticate() || !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, domainerrors.Unauthorized("invalid email or password")
	}
	return s.issue(user)
}

// IssueToken issues a token for an existing active user without checking a
// password. Operator use only.
func (s *AuthService) IssueToken(ctx context.Context, email string) (*TokenResponse, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("user %s not found", email)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.CanAuthenticate() {
		return nil, domainerrors.Unauthorized("user is inactive")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*TokenResponse, error) {
	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("token issued", "user_id", user.ID, "expires_at", expires)
	return &TokenResponse{
		User:      user,
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expires,
	}, nil
}

// Authenticate verifies a bearer token and loads its user. Any failure,
// including a deleted or inactive account, is reported as unauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, *auth.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug("token rejected", "error", err)
		return nil, nil, domainerrors.Unauthorized("invalid or expired token")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Unauthorized("invalid or expired token")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	if !user.CanAuthenticate() {
		return nil, nil, domainerrors.Unauthorized("invalid or expired token")
	}
	return user, claims, nil
}

// ListUsers returns every account, oldest first.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
