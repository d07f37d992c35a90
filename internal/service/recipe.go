// Package service holds the recipe server's business logic: input
// validation, owner scoping and the coordination of store, media and
// metrics for each operation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/listenupapp/recipe-server/internal/domain"
	domainerrors "github.com/listenupapp/recipe-server/internal/errors"
	"github.com/listenupapp/recipe-server/internal/media/images"
	"github.com/listenupapp/recipe-server/internal/metrics"
	"github.com/listenupapp/recipe-server/internal/normalize"
	"github.com/listenupapp/recipe-server/internal/store"
	"github.com/listenupapp/recipe-server/internal/validation"
)

// RecipeService orchestrates recipe operations for a single owner at a time.
type RecipeService struct {
	store     store.Store
	images    *images.Processor
	metrics   *metrics.Metrics
	validator *validation.Validator
	logger    *slog.Logger
}

// NewRecipeService creates a new recipe service. images may be nil when
// uploads are not served.
func NewRecipeService(
	st store.Store,
	processor *images.Processor,
	m *metrics.Metrics,
	v *validation.Validator,
	logger *slog.Logger,
) *RecipeService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RecipeService{
		store:     st,
		images:    processor,
		metrics:   m,
		validator: v,
		logger:    logger,
	}
}

// NestedAttribute is the write shape of a tag or ingredient inside a recipe.
type NestedAttribute struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CreateRecipeRequest contains the writable fields of a new recipe.
type CreateRecipeRequest struct {
	Title       string            `json:"title" validate:"required,max=255"`
	TimeMinutes int               `json:"time_minutes" validate:"gte=0"`
	Price       float64           `json:"price" validate:"gte=0,lte=999.99,decimal2"`
	Link        string            `json:"link" validate:"max=255"`
	Description string            `json:"description"`
	Tags        []NestedAttribute `json:"tags" validate:"dive"`
	Ingredients []NestedAttribute `json:"ingredients" validate:"dive"`
}

// UpdateRecipeRequest contains a partial update. Nil scalars are left
// unchanged. A nil Tags or Ingredients keeps the current associations; a
// non-nil slice, even an empty one, replaces them.
type UpdateRecipeRequest struct {
	Title       *string           `json:"title" validate:"omitnil,min=1,max=255"`
	TimeMinutes *int              `json:"time_minutes" validate:"omitnil,gte=0"`
	Price       *float64          `json:"price" validate:"omitnil,gte=0,lte=999.99,decimal2"`
	Link        *string           `json:"link" validate:"omitnil,max=255"`
	Description *string           `json:"description"`
	Tags        []NestedAttribute `json:"tags" validate:"dive"`
	Ingredients []NestedAttribute `json:"ingredients" validate:"dive"`
}

// CreateRecipe validates req and stores a recipe owned by userID, creating
// any tags and ingredients the user does not have yet.
func (s *RecipeService) CreateRecipe(ctx context.Context, userID int64, req CreateRecipeRequest) (*domain.Recipe, error) {
	req.Title = normalize.Text(req.Title)
	req.Link = normalize.Text(req.Link)
	req.Tags = normalizeNested(req.Tags)
	req.Ingredients = normalizeNested(req.Ingredients)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	r := &domain.Recipe{
		UserID:      userID,
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		PriceCents:  domain.PriceToCents(req.Price),
		Link:        req.Link,
		Description: req.Description,
	}

	stats, err := s.store.CreateRecipe(ctx, r, nestedNames(req.Tags), nestedNames(req.Ingredients))
	if err != nil {
		return nil, storeError(err, "user", "create recipe")
	}

	s.recordWrite("create", stats)
	s.logger.Info("recipe created",
		"recipe_id", r.ID,
		"user_id", userID,
		"tags", len(r.Tags),
		"ingredients", len(r.Ingredients),
		"attributes_created", stats.Total(),
	)
	return r, nil
}

// GetRecipe returns one of the user's recipes.
func (s *RecipeService) GetRecipe(ctx context.Context, userID, id int64) (*domain.Recipe, error) {
	r, err := s.store.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, storeError(err, "recipe", "get recipe")
	}
	return r, nil
}

// ListRecipes returns the user's recipes, newest first, narrowed by filter.
func (s *RecipeService) ListRecipes(ctx context.Context, userID int64, filter store.RecipeFilter) ([]*domain.Recipe, error) {
	recipes, err := s.store.ListRecipes(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// UpdateRecipe applies req to one of the user's recipes. With full set the
// title, time and price are required, matching a PUT.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, id int64, req UpdateRecipeRequest, full bool) (*domain.Recipe, error) {
	if req.Title != nil {
		t := normalize.Text(*req.Title)
		req.Title = &t
	}
	if req.Link != nil {
		l := normalize.Text(*req.Link)
		req.Link = &l
	}
	req.Tags = normalizeNested(req.Tags)
	req.Ingredients = normalizeNested(req.Ingredients)

	if full {
		missing := domainerrors.FieldErrors{}
		if req.Title == nil {
			missing.Add("title", "is required")
		}
		if req.TimeMinutes == nil {
			missing.Add("time_minutes", "is required")
		}
		if req.Price == nil {
			missing.Add("price", "is required")
		}
		if len(missing) > 0 {
			return nil, domainerrors.ValidationWithDetails("validation failed", missing)
		}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	patch := domain.RecipePatch{
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Link:        req.Link,
		Description: req.Description,
		Tags:        nestedNames(req.Tags),
		Ingredients: nestedNames(req.Ingredients),
	}
	if req.Price != nil {
		cents := domain.PriceToCents(*req.Price)
		patch.PriceCents = &cents
	}

	r, stats, err := s.store.UpdateRecipe(ctx, userID, id, patch)
	if err != nil {
		return nil, storeError(err, "recipe", "update recipe")
	}

	s.recordWrite("update", stats)
	s.logger.Info("recipe updated", "recipe_id", id, "user_id", userID, "full", full)
	return r, nil
}

// DeleteRecipe removes one of the user's recipes and its image file. Tags
// and ingredients are kept.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, id int64) error {
	r, err := s.store.GetRecipe(ctx, userID, id)
	if err != nil {
		return storeError(err, "recipe", "get recipe")
	}
	if err := s.store.DeleteRecipe(ctx, userID, id); err != nil {
		return storeError(err, "recipe", "delete recipe")
	}

	s.removeImage(r.Image)
	s.recordWrite("delete", nil)
	s.logger.Info("recipe deleted", "recipe_id", id, "user_id", userID)
	return nil
}

// UploadImage validates data as an image, stores it and points the recipe
// at it. The previous image file, if any, is removed.
func (s *RecipeService) UploadImage(ctx context.Context, userID, id int64, data []byte) (*domain.Recipe, error) {
	if s.images == nil {
		return nil, domainerrors.Internal("image uploads are not configured")
	}
	if _, err := s.store.GetRecipe(ctx, userID, id); err != nil {
		return nil, storeError(err, "recipe", "get recipe")
	}
	if len(data) == 0 {
		s.imageUpload("rejected")
		return nil, domainerrors.InvalidField("image", "no file was submitted")
	}

	stored, err := s.images.Process(ctx, data)
	if err != nil {
		if errors.Is(err, images.ErrNotImage) {
			s.imageUpload("rejected")
			return nil, domainerrors.InvalidField("image", images.ErrNotImage.Error())
		}
		s.imageUpload("failed")
		return nil, fmt.Errorf("store image: %w", err)
	}

	previous, err := s.store.SetRecipeImage(ctx, userID, id, stored.Name, stored.BlurHash)
	if err != nil {
		s.removeImage(stored.Name)
		s.imageUpload("failed")
		return nil, storeError(err, "recipe", "set recipe image")
	}
	if previous != stored.Name {
		s.removeImage(previous)
	}

	s.imageUpload("stored")
	s.recordWrite("image", nil)
	s.logger.Info("recipe image uploaded",
		"recipe_id", id,
		"user_id", userID,
		"image", stored.Name,
		"format", stored.Format,
		"width", stored.Width,
		"height", stored.Height,
	)

	return s.GetRecipe(ctx, userID, id)
}

func (s *RecipeService) removeImage(name string) {
	if name == "" || s.images == nil {
		return
	}
	if err := s.images.Storage().Delete(name); err != nil {
		s.logger.Warn("failed to remove recipe image", "image", name, "error", err)
	}
}

func (s *RecipeService) recordWrite(op string, stats store.ReconcileStats) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecipeWrite(op)
	for kind, n := range stats {
		s.metrics.AttributesCreated(kind, n)
	}
}

func (s *RecipeService) imageUpload(result string) {
	if s.metrics != nil {
		s.metrics.ImageUpload(result)
	}
}

// normalizeNested returns a copy with normalized names, preserving nil.
func normalizeNested(in []NestedAttribute) []NestedAttribute {
	if in == nil {
		return nil
	}
	out := make([]NestedAttribute, len(in))
	for i, a := range in {
		out[i] = NestedAttribute{Name: normalize.Name(a.Name)}
	}
	return out
}

// nestedNames flattens nested attributes to names, preserving nil so an
// absent list stays distinguishable from an empty one.
func nestedNames(in []NestedAttribute) []string {
	if in == nil {
		return nil
	}
	names := make([]string, len(in))
	for i, a := range in {
		names[i] = a.Name
	}
	return names
}
