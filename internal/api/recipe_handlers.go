package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/recipe-server/internal/domain"
	domainerrors "github.com/listenupapp/recipe-server/internal/errors"
	"github.com/listenupapp/recipe-server/internal/service"
	"github.com/listenupapp/recipe-server/internal/store"
)

func (s *Server) registerRecipeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipes",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/recipes",
		Summary:     "List recipes",
		Description: "Returns the current user's recipes, newest first. The tags and ingredients filters take comma-separated ids; a recipe matches a filter when it has any of the ids, and must match every filter given.",
		Tags:        []string{"Recipes"},
		Security:    bearerSecurity,
	}, s.handleListRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createRecipe",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/recipes",
		Summary:       "Create recipe",
		Description:   "Creates a recipe. Nested tags and ingredients are matched by name and created when missing.",
		Tags:          []string{"Recipes"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/recipes/{id}",
		Summary:     "Get recipe",
		Description: "Returns a recipe with its description and image",
		Tags:        []string{"Recipes"},
		Security:    bearerSecurity,
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceRecipe",
		Method:      http.MethodPut,
		Path:        apiPrefix + "/recipes/{id}",
		Summary:     "Update recipe",
		Description: "Full update: title, time_minutes and price are required. Omitted tags or ingredients are left as they are; an empty list clears them.",
		Tags:        []string{"Recipes"},
		Security:    bearerSecurity,
	}, s.handleReplaceRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRecipe",
		Method:      http.MethodPatch,
		Path:        apiPrefix + "/recipes/{id}",
		Summary:     "Partially update recipe",
		Description: "Only the fields present are changed. An empty tags or ingredients list clears the associations.",
		Tags:        []string{"Recipes"},
		Security:    bearerSecurity,
	}, s.handleUpdateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteRecipe",
		Method:        http.MethodDelete,
		Path:          apiPrefix + "/recipes/{id}",
		Summary:       "Delete recipe",
		Description:   "Deletes a recipe and its image. Tags and ingredients are kept.",
		Tags:          []string{"Recipes"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteRecipe)
}

// === DTOs ===

// RecipeSummary is the list representation of a recipe.
type RecipeSummary struct {
	ID          int64               `json:"id" readOnly:"true" doc:"Recipe ID"`
	Title       string              `json:"title" doc:"Title"`
	TimeMinutes int                 `json:"time_minutes" doc:"Preparation time in minutes"`
	Price       Money               `json:"price" doc:"Price with two decimal places"`
	Link        string              `json:"link" doc:"Source link"`
	Tags        []AttributeResponse `json:"tags" doc:"Tags"`
	Ingredients []AttributeResponse `json:"ingredients" doc:"Ingredients"`
}

// RecipeDetail adds the fields only shown for a single recipe.
type RecipeDetail struct {
	RecipeSummary
	Description   string  `json:"description" doc:"Free-form description"`
	Image         *string `json:"image" doc:"Image URL path, null when no image was uploaded"`
	ImageBlurHash *string `json:"image_blurhash" doc:"BlurHash placeholder for the image"`
}

// ListRecipesInput contains the list filters.
type ListRecipesInput struct {
	Tags        string `query:"tags" doc:"Comma-separated tag IDs" example:"1,2"`
	Ingredients string `query:"ingredients" doc:"Comma-separated ingredient IDs" example:"3"`
}

// ListRecipesOutput wraps the recipe list for Huma.
type ListRecipesOutput struct {
	Body []RecipeSummary
}

// CreateRecipeBody is the request body for creating a recipe. Unknown
// properties, including id and user, are accepted and ignored.
type CreateRecipeBody struct {
	_           struct{}               `json:"-" additionalProperties:"true"`
	Title       string                 `json:"title" minLength:"1" maxLength:"255" doc:"Title"`
	TimeMinutes int                    `json:"time_minutes" minimum:"0" doc:"Preparation time in minutes"`
	Price       float64                `json:"price" minimum:"0" maximum:"999.99" doc:"Price, at most two decimal places"`
	Link        string                 `json:"link,omitempty" maxLength:"255" doc:"Source link"`
	Description string                 `json:"description,omitempty" doc:"Free-form description"`
	Tags        []NestedAttributeInput `json:"tags,omitempty" doc:"Tags by name"`
	Ingredients []NestedAttributeInput `json:"ingredients,omitempty" doc:"Ingredients by name"`
}

// CreateRecipeInput wraps the create request for Huma.
type CreateRecipeInput struct {
	Body CreateRecipeBody
}

// RecipeIDInput identifies a recipe.
type RecipeIDInput struct {
	ID int64 `path:"id" doc:"Recipe ID"`
}

// ReplaceRecipeBody is the request body for a full update.
type ReplaceRecipeBody struct {
	_           struct{}            `json:"-" additionalProperties:"true"`
	Title       string              `json:"title" minLength:"1" maxLength:"255" doc:"Title"`
	TimeMinutes int                 `json:"time_minutes" minimum:"0" doc:"Preparation time in minutes"`
	Price       float64             `json:"price" minimum:"0" maximum:"999.99" doc:"Price, at most two decimal places"`
	Link        *string             `json:"link,omitempty" maxLength:"255" doc:"Source link"`
	Description *string             `json:"description,omitempty" doc:"Free-form description"`
	Tags        NestedAttributeList `json:"tags,omitempty" doc:"Replaces the tags when present"`
	Ingredients NestedAttributeList `json:"ingredients,omitempty" doc:"Replaces the ingredients when present"`
}

// ReplaceRecipeInput wraps the full update request for Huma.
type ReplaceRecipeInput struct {
	ID   int64 `path:"id" doc:"Recipe ID"`
	Body ReplaceRecipeBody
}

// UpdateRecipeBody is the request body for a partial update.
type UpdateRecipeBody struct {
	_           struct{}            `json:"-" additionalProperties:"true"`
	Title       *string             `json:"title,omitempty" minLength:"1" maxLength:"255" doc:"Title"`
	TimeMinutes *int                `json:"time_minutes,omitempty" minimum:"0" doc:"Preparation time in minutes"`
	Price       *float64            `json:"price,omitempty" minimum:"0" maximum:"999.99" doc:"Price, at most two decimal places"`
	Link        *string             `json:"link,omitempty" maxLength:"255" doc:"Source link"`
	Description *string             `json:"description,omitempty" doc:"Free-form description"`
	Tags        NestedAttributeList `json:"tags,omitempty" doc:"Replaces the tags when present"`
	Ingredients NestedAttributeList `json:"ingredients,omitempty" doc:"Replaces the ingredients when present"`
}

// UpdateRecipeInput wraps the partial update request for Huma.
type UpdateRecipeInput struct {
	ID   int64            `path:"id" doc:"Recipe ID"`
	Body UpdateRecipeBody `required:"false"`
}

// RecipeOutput wraps a recipe detail for Huma.
type RecipeOutput struct {
	Body RecipeDetail
}

// === Handlers ===

func (s *Server) handleListRecipes(ctx context.Context, input *ListRecipesInput) (*ListRecipesOutput, error) {
	userID, err := RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	var filter store.RecipeFilter
	if filter.TagIDs, err = parseIDList("tags", input.Tags); err != nil {
		return nil, err
	}
	if filter.IngredientIDs, err = parseIDList("ingredients", input.Ingredients); err != nil {
		return nil, err
	}

	recipes, err := s.services.Recipe.ListRecipes(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]RecipeSummary, len(recipes))
	for i, r := range recipes {
		resp[i] = recipeSummary(r)
	}
	return &ListRecipesOutput{Body: resp}, nil
}

func (s *Server) handleCreateRecipe(ctx context.Context, input *CreateRecipeInput) (*RecipeOutput, error) {
	userID, err := RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	b := input.Body
	r, err := s.services.Recipe.CreateRecipe(ctx, userID, service.CreateRecipeRequest{
		Title:       b.Title,
		TimeMinutes: b.TimeMinutes,
		Price:       b.Price,
		Link:        b.Link,
		Description: b.Description,
		Tags:        nestedRequest(b.Tags),
		Ingredients: nestedRequest(b.Ingredients),
	})
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: recipeDetail(r)}, nil
}

func (s *Server) handleGetRecipe(ctx context.Context, input *RecipeIDInput) (*RecipeOutput, error) {
	userID, err := RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.services.Recipe.GetRecipe(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: recipeDetail(r)}, nil
}

func (s *Server) handleReplaceRecipe(ctx context.Context, input *ReplaceRecipeInput) (*RecipeOutput, error) {
	userID, err := RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	b := input.Body
	if err := rejectNullLists(b.Tags, b.Ingredients); err != nil {
		return nil, err
	}
	r, err := s.services.Recipe.UpdateRecipe(ctx, userID, input.ID, service.UpdateRecipeRequest{
		Title:       &b.Title,
		TimeMinutes: &b.TimeMinutes,
		Price:       &b.Price,
		Link:        b.Link,
		Description: b.Description,
		Tags:        nestedPatch(b.Tags),
		Ingredients: nestedPatch(b.Ingredients),
	}, true)
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: recipeDetail(r)}, nil
}

func (s *Server) handleUpdateRecipe(ctx context.Context, input *UpdateRecipeInput) (*RecipeOutput, error) {
	userID, err := RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	b := input.Body
	if err := rejectNullLists(b.Tags, b.Ingredients); err != nil {
		return nil, err
	}
	r, err := s.services.Recipe.UpdateRecipe(ctx, userID, input.ID, service.UpdateRecipeRequest{
		Title:       b.Title,
		TimeMinutes: b.TimeMinutes,
		Price:       b.Price,
		Link:        b.Link,
		Description: b.Description,
		Tags:        nestedPatch(b.Tags),
		Ingredients: nestedPatch(b.Ingredients),
	}, false)
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: recipeDetail(r)}, nil
}

func (s *Server) handleDeleteRecipe(ctx context.Context, input *RecipeIDInput) (*struct{}, error) {
	userID, err := RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Recipe.DeleteRecipe(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

// === Helpers ===

func recipeSummary(r *domain.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       MoneyFromCents(r.PriceCents),
		Link:        r.Link,
		Tags:        attributeResponses(r.Tags),
		Ingredients: attributeResponses(r.Ingredients),
	}
}

func recipeDetail(r *domain.Recipe) RecipeDetail {
	d := RecipeDetail{
		RecipeSummary: recipeSummary(r),
		Description:   r.Description,
	}
	if r.Image != "" {
		url := imageURL(r.Image)
		d.Image = &url
	}
	if r.ImageBlurHash != "" {
		hash := r.ImageBlurHash
		d.ImageBlurHash = &hash
	}
	return d
}

func imageURL(name string) string {
	return mediaPrefix + name
}

// nestedRequest converts create input, where absent and empty mean the same.
func nestedRequest(in []NestedAttributeInput) []service.NestedAttribute {
	out := make([]service.NestedAttribute, len(in))
	for i, a := range in {
		out[i] = service.NestedAttribute{Name: a.Name}
	}
	return out
}

// nestedPatch keeps the difference between an absent list (nil) and an
// empty one.
func nestedPatch(in NestedAttributeList) []service.NestedAttribute {
	if !in.Set || in.Null {
		return nil
	}
	return nestedRequest(in.Items)
}

// rejectNullLists reports an explicit null tags or ingredients list. Omit
// the key to keep the associations, or send [] to clear them.
func rejectNullLists(tags, ingredients NestedAttributeList) error {
	details := domainerrors.FieldErrors{}
	if tags.Null {
		details.Add("tags", "may not be null")
	}
	if ingredients.Null {
		details.Add("ingredients", "may not be null")
	}
	if len(details) == 0 {
		return nil
	}
	return domainerrors.ValidationWithDetails("validation failed", details)
}

// parseIDList parses a comma-separated id filter. Empty items are skipped
// and duplicates collapse.
func parseIDList(param, raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	seen := make(map[int64]struct{})
	var ids []int64
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, domainerrors.InvalidField(param, fmt.Sprintf("%q is not a valid id", part))
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
