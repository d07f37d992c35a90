package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/listenupapp/recipe-server/internal/domain"
	domainerrors "github.com/listenupapp/recipe-server/internal/errors"
	"github.com/listenupapp/recipe-server/internal/normalize"
	"github.com/listenupapp/recipe-server/internal/store"
	"github.com/listenupapp/recipe-server/internal/validation"
)

// AttributeService manages one kind of per-user attribute: tags or
// ingredients. Creation happens only through recipe writes.
type AttributeService struct {
	kind      domain.AttributeKind
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAttributeService creates a service for kind.
func NewAttributeService(kind domain.AttributeKind, st store.Store, v *validation.Validator, logger *slog.Logger) *AttributeService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AttributeService{
		kind:      kind,
		store:     st,
		validator: v,
		logger:    logger.With("kind", string(kind)),
	}
}

// Kind returns the attribute kind this service manages.
func (s *AttributeService) Kind() domain.AttributeKind {
	return s.kind
}

// RenameRequest is the writable shape of a tag or ingredient.
type RenameRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// List returns the user's attributes ordered by name descending.
func (s *AttributeService) List(ctx context.Context, userID int64, assignedOnly bool) ([]*domain.Attribute, error) {
	attrs, err := s.store.ListAttributes(ctx, userID, s.kind, store.AttributeFilter{AssignedOnly: assignedOnly})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind.Plural(), err)
	}
	return attrs, nil
}

// Rename changes an attribute's name. Taking a name the user already has
// for another attribute of the same kind is a validation error on name.
func (s *AttributeService) Rename(ctx context.Context, userID, id int64, req RenameRequest) (*domain.Attribute, error) {
	req.Name = normalize.Name(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	a, err := s.store.RenameAttribute(ctx, userID, s.kind, id, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.InvalidField("name", fmt.Sprintf("%s with this name already exists", s.kind))
		}
		return nil, storeError(err, string(s.kind), "rename "+string(s.kind))
	}

	s.logger.Info("attribute renamed", "id", id, "user_id", userID, "name", a.Name)
	return a, nil
}

// Delete removes an attribute and detaches it from every recipe.
func (s *AttributeService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteAttribute(ctx, userID, s.kind, id); err != nil {
		return storeError(err, string(s.kind), "delete "+string(s.kind))
	}
	s.logger.Info("attribute deleted", "id", id, "user_id", userID)
	return nil
}
