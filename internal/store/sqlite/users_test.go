package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/listenupapp/recipe-server/internal/domain"
	"github.com/listenupapp/recipe-server/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, s, "cook@example.com")
	if u.ID == 0 {
		t.Fatal("expected ID to be set")
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "cook@example.com" || !got.IsActive {
		t.Errorf("unexpected user: %+v", got)
	}

	byEmail, err := s.GetUserByEmail(ctx, "COOK@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("email lookup returned id %d, want %d", byEmail.ID, u.ID)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "cook@example.com")

	err := s.CreateUser(context.Background(), &domain.User{Email: "Cook@example.com", PasswordHash: "y"})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), 999)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "a@example.com")
	createTestUser(t, s, "b@example.com")

	users, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].Email != "a@example.com" {
		t.Errorf("unexpected users: %+v", users)
	}
}
