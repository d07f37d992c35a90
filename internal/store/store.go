// Package store defines the persistence interface for the recipe server.
//
// Every recipe and attribute method takes the owning user's id; records
// owned by anyone else behave exactly as if they did not exist.
package store

import (
	"context"

	"github.com/listenupapp/recipe-server/internal/domain"
)

// Store defines all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// Recipes
	//
	// CreateRecipe inserts r, reconciles the named tags and ingredients for
	// r.UserID and fills r.ID, timestamps and associations.
	CreateRecipe(ctx context.Context, r *domain.Recipe, tags, ingredients []string) (ReconcileStats, error)
	GetRecipe(ctx context.Context, userID, id int64) (*domain.Recipe, error)
	ListRecipes(ctx context.Context, userID int64, filter RecipeFilter) ([]*domain.Recipe, error)
	UpdateRecipe(ctx context.Context, userID, id int64, patch domain.RecipePatch) (*domain.Recipe, ReconcileStats, error)
	DeleteRecipe(ctx context.Context, userID, id int64) error
	// SetRecipeImage stores the new image reference and returns the previous one.
	SetRecipeImage(ctx context.Context, userID, id int64, image, blurHash string) (previous string, err error)

	// Tags and ingredients
	GetOrCreateAttribute(ctx context.Context, userID int64, kind domain.AttributeKind, name string) (*domain.Attribute, bool, error)
	GetAttribute(ctx context.Context, userID int64, kind domain.AttributeKind, id int64) (*domain.Attribute, error)
	ListAttributes(ctx context.Context, userID int64, kind domain.AttributeKind, filter AttributeFilter) ([]*domain.Attribute, error)
	RenameAttribute(ctx context.Context, userID int64, kind domain.AttributeKind, id int64, name string) (*domain.Attribute, error)
	DeleteAttribute(ctx context.Context, userID int64, kind domain.AttributeKind, id int64) error
}

// RecipeFilter narrows ListRecipes. A recipe matches a non-empty id list if
// it carries any of the ids; both lists must match when both are set.
type RecipeFilter struct {
	TagIDs        []int64
	IngredientIDs []int64
}

// AttributeFilter narrows ListAttributes.
type AttributeFilter struct {
	// AssignedOnly keeps attributes used by at least one recipe.
	AssignedOnly bool
}

// ReconcileStats counts attributes newly created by a recipe write, per kind.
type ReconcileStats map[domain.AttributeKind]int

// Add records n created attributes of kind.
func (s ReconcileStats) Add(kind domain.AttributeKind, n int) {
	s[kind] += n
}

// Total returns the number of attributes created across kinds.
func (s ReconcileStats) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}
