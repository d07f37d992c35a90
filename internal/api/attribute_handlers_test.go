package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/recipe-server/internal/errors"
)

func TestListTags_OrderedByNameDescending(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authz, _ := ts.createUser(t, "cook@example.com")
	ts.createRecipe(t, authz, sampleRecipe("Salad", "Banana", "Cherry", "Apple"))

	resp := ts.api.Get("/api/v1/tags", authz)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, []string{"Cherry", "Banana", "Apple"}, attrNames(decodeBody[[]AttributeResponse](t, resp.Body.Bytes())))
}

func TestListAttributes_AssignedOnlyAccepted(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authz, _ := ts.createUser(t, "cook@example.com")
	ts.createRecipe(t, authz, sampleRecipe("Salad", "Green"))

	for _, path := range []string{"/api/v1/tags", "/api/v1/ingredients"} {
		for _, query := range []string{"", "?assigned_only=0", "?assigned_only=1"} {
			t.Run(path+query, func(t *testing.T) {
				resp := ts.api.Get(path+query, authz)
				assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			})
		}
	}
}

func TestListIngredients_AssignedOnly(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authz, _ := ts.createUser(t, "cook@example.com")

	kept := sampleRecipe("Kept")
	kept["ingredients"] = []map[string]any{{"name": "Salt"}}
	ts.createRecipe(t, authz, kept)

	dropped := sampleRecipe("Dropped")
	dropped["ingredients"] = []map[string]any{{"name": "Pepper"}, {"name": "Salt"}}
	r := ts.createRecipe(t, authz, dropped)
	require.Equal(t, http.StatusNoContent, ts.api.Delete(fmt.Sprintf("/api/v1/recipes/%d", r.ID), authz).Code)

	all := decodeBody[[]AttributeResponse](t, ts.api.Get("/api/v1/ingredients", authz).Body.Bytes())
	assert.Equal(t, []string{"Salt", "Pepper"}, attrNames(all))

	assigned := decodeBody[[]AttributeResponse](t, ts.api.Get("/api/v1/ingredients?assigned_only=1", authz).Body.Bytes())
	assert.Equal(t, []string{"Salt"}, attrNames(assigned))

	unfiltered := decodeBody[[]AttributeResponse](t, ts.api.Get("/api/v1/ingredients?assigned_only=0", authz).Body.Bytes())
	assert.Len(t, unfiltered, 2)

	resp := ts.api.Get("/api/v1/ingredients?assigned_only=yes", authz)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	body := decodeBody[struct {
		Details domainerrors.FieldErrors `json:"details"`
	}](t, resp.Body.Bytes())
	assert.Contains(t, body.Details, "assigned_only")
}

func TestRenameTag(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authz, _ := ts.createUser(t, "cook@example.com")
	r := ts.createRecipe(t, authz, sampleRecipe("Curry", "Spicy", "Dinner"))
	spicy := r.Tags[0]

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			name := "Hot " + method
			resp := ts.api.Do(method, fmt.Sprintf("/api/v1/tags/%d", spicy.ID), authz, map[string]any{"name": name})
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

			got := decodeBody[AttributeResponse](t, resp.Body.Bytes())
			assert.Equal(t, spicy.ID, got.ID)
			assert.Equal(t, name, got.Name)

			recipe := decodeBody[RecipeDetail](t, ts.api.Get(fmt.Sprintf("/api/v1/recipes/%d", r.ID), authz).Body.Bytes())
			assert.Equal(t, []string{name, "Dinner"}, attrNames(recipe.Tags))
		})
	}
}

func TestRenameTag_Conflict(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authz, _ := ts.createUser(t, "cook@example.com")
	r := ts.createRecipe(t, authz, sampleRecipe("Curry", "Spicy", "Dinner"))

	resp := ts.api.Patch(fmt.Sprintf("/api/v1/tags/%d", r.Tags[0].ID), authz, map[string]any{"name": "Dinner"})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	body := decodeBody[struct {
		Code    string                   `json:"code"`
		Details domainerrors.FieldErrors `json:"details"`
	}](t, resp.Body.Bytes())
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Details, "name")

	resp = ts.api.Patch(fmt.Sprintf("/api/v1/tags/%d", r.Tags[0].ID), authz, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDeleteIngredient(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authz, _ := ts.createUser(t, "cook@example.com")

	body := sampleRecipe("Bread")
	body["ingredients"] = []map[string]any{{"name": "Flour"}, {"name": "Yeast"}}
	r := ts.createRecipe(t, authz, body)

	resp := ts.api.Delete(fmt.Sprintf("/api/v1/ingredients/%d", r.Ingredients[1].ID), authz)
	require.Equal(t, http.StatusNoContent, resp.Code)

	recipe := decodeBody[RecipeDetail](t, ts.api.Get(fmt.Sprintf("/api/v1/recipes/%d", r.ID), authz).Body.Bytes())
	assert.Equal(t, []string{"Flour"}, attrNames(recipe.Ingredients))

	assert.Equal(t, http.StatusNotFound, ts.api.Delete(fmt.Sprintf("/api/v1/ingredients/%d", r.Ingredients[1].ID), authz).Code)
}

func TestAttributes_CrossUserIsolation(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ownerAuthz, _ := ts.createUser(t, "owner@example.com")
	otherAuthz, _ := ts.createUser(t, "other@example.com")

	r := ts.createRecipe(t, ownerAuthz, sampleRecipe("Curry", "Spicy"))
	path := fmt.Sprintf("/api/v1/tags/%d", r.Tags[0].ID)

	assert.Equal(t, http.StatusNotFound, ts.api.Patch(path, otherAuthz, map[string]any{"name": "Mine"}).Code)
	assert.Equal(t, http.StatusNotFound, ts.api.Delete(path, otherAuthz).Code)

	// The same name for another user is a separate tag.
	other := ts.createRecipe(t, otherAuthz, sampleRecipe("Other curry", "Spicy"))
	assert.NotEqual(t, r.Tags[0].ID, other.Tags[0].ID)

	tags := decodeBody[[]AttributeResponse](t, ts.api.Get("/api/v1/tags", ownerAuthz).Body.Bytes())
	require.Len(t, tags, 1)
	assert.Equal(t, r.Tags[0].ID, tags[0].ID)
}
