package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/recipe-server/internal/errors"
	"github.com/listenupapp/recipe-server/internal/validation"
)

type nestedName struct {
	Name string `json:"name" validate:"required,max=5"`
}

type testRequest struct {
	Title   string       `json:"title" validate:"required,max=10"`
	Minutes int          `json:"time_minutes" validate:"gte=0"`
	Price   float64      `json:"price" validate:"gte=0,lte=999.99"`
	Link    string       `json:"link,omitempty" validate:"omitempty,max=20"`
	Tags    []nestedName `json:"tags" validate:"dive"`
	Secret  string       `json:"-"`
}

func fieldErrors(t *testing.T, err error) domainerrors.FieldErrors {
	t.Helper()
	require.Error(t, err)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, http.StatusBadRequest, derr.HTTPStatus())

	details, ok := derr.Details.(domainerrors.FieldErrors)
	require.True(t, ok, "details should be FieldErrors, got %T", derr.Details)
	return details
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{Title: "Soup", Minutes: 5, Price: 4.5, Tags: []nestedName{{Name: "Thai"}}})
	assert.NoError(t, err)
}

func TestValidator_FieldMessages(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name    string
		req     testRequest
		field   string
		message string
	}{
		{"missing title", testRequest{}, "title", "is required"},
		{"long title", testRequest{Title: "abcdefghijk"}, "title", "must not exceed 10 characters"},
		{"negative minutes", testRequest{Title: "a", Minutes: -1}, "time_minutes", "must be greater than or equal to 0"},
		{"price too high", testRequest{Title: "a", Price: 1000}, "price", "must be less than or equal to 999.99"},
		{"long link", testRequest{Title: "a", Link: "https://example.com/long"}, "link", "must not exceed 20 characters"},
		{"nested name", testRequest{Title: "a", Tags: []nestedName{{Name: "ok"}, {Name: ""}}}, "tags[1].name", "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := fieldErrors(t, v.Validate(tt.req))
			assert.Contains(t, details[tt.field], tt.message, "details: %v", details)
		})
	}
}

func TestValidator_Decimal2(t *testing.T) {
	type priced struct {
		Price float64 `json:"price" validate:"decimal2"`
	}
	v := validation.New()

	for _, ok := range []float64{0, 5, 5.5, 12.34, 999.99} {
		assert.NoError(t, v.Validate(priced{Price: ok}), "price %v", ok)
	}

	details := fieldErrors(t, v.Validate(priced{Price: 1.005}))
	assert.Equal(t, []string{"must have no more than 2 decimal places"}, details["price"])
}
