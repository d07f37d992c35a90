package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/recipe-server/internal/auth"
	domainerrors "github.com/listenupapp/recipe-server/internal/errors"
)

func TestAuthService_CreateUser(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	u := env.createUser(t, " cook@example.com ")
	assert.NotZero(t, u.ID)
	assert.Equal(t, "cook@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "correct horse battery", u.PasswordHash)

	_, err := env.auth.CreateUser(ctx, CreateUserRequest{Email: "COOK@example.com", Password: "another password"})
	details := fieldErrors(t, err)
	assert.Contains(t, details, "email")
}

func TestAuthService_CreateUser_Validation(t *testing.T) {
	env := setupServiceTest(t)

	_, err := env.auth.CreateUser(context.Background(), CreateUserRequest{Email: "not-an-email", Password: "short"})
	details := fieldErrors(t, err)
	assert.Equal(t, []string{"must be a valid email address"}, details["email"])
	assert.Equal(t, []string{"must be at least 8 characters"}, details["password"])
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	u := env.createUser(t, "cook@example.com")

	resp, err := env.auth.Login(ctx, "cook@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.Token)

	got, claims, err := env.auth.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestAuthService_Login_Rejects(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	env.createUser(t, "cook@example.com")

	_, err := env.auth.Login(ctx, "cook@example.com", "wrong password")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = env.auth.Login(ctx, "nobody@example.com", "correct horse battery")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthService_IssueToken(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	u := env.createUser(t, "cook@example.com")

	resp, err := env.auth.IssueToken(ctx, "cook@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.ID)

	_, err = env.auth.IssueToken(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	_, _, err := env.auth.Authenticate(ctx, "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	// A valid token for a user id that does not exist.
	ghost := env.createUser(t, "ghost@example.com")
	ghost.ID += 100
	token, _, err := env.tokens.Issue(ghost)
	require.NoError(t, err)
	_, _, err = env.auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	// A token signed with a different key.
	other, err := auth.NewTokenService(make([]byte, auth.KeySize), env.tokens.Duration())
	require.NoError(t, err)
	foreign, _, err := other.Issue(ghost)
	require.NoError(t, err)
	_, _, err = env.auth.Authenticate(ctx, foreign)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
