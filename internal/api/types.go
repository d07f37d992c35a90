package api

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/recipe-server/internal/domain"
)

// Money is a price rendered as a JSON number with exactly two decimals.
type Money float64

// MarshalJSON outputs the amount with two decimal places, e.g. 5.00.
func (m Money) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(m), 'f', 2, 64), nil
}

// MoneyFromCents converts a stored cent amount.
func MoneyFromCents(c int64) Money {
	return Money(domain.CentsToPrice(c))
}

// AttributeResponse is a tag or ingredient in API responses.
type AttributeResponse struct {
	ID   int64  `json:"id" readOnly:"true" doc:"Identifier"`
	Name string `json:"name" doc:"Name, unique per user"`
}

// NestedAttributeInput is a tag or ingredient written inside a recipe.
type NestedAttributeInput struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Name string   `json:"name" minLength:"1" maxLength:"255" doc:"Name; created for the user if it does not exist"`
}

// NestedAttributeList is a tags or ingredients list in an update body. It
// records whether the key was sent and whether it was an explicit null,
// which a plain slice pointer cannot tell apart from an absent key.
type NestedAttributeList struct {
	Items []NestedAttributeInput
	Set   bool
	Null  bool
}

// UnmarshalJSON is only called when the key is present.
func (l *NestedAttributeList) UnmarshalJSON(data []byte) error {
	l.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		l.Null = true
		l.Items = nil
		return nil
	}
	l.Null = false
	return json.Unmarshal(data, &l.Items)
}

// Schema documents the list as a plain array of nested attributes.
func (l NestedAttributeList) Schema(r huma.Registry) *huma.Schema {
	return r.Schema(reflect.TypeFor[[]NestedAttributeInput](), true, "")
}

func attributeResponses(attrs []domain.Attribute) []AttributeResponse {
	out := make([]AttributeResponse, len(attrs))
	for i, a := range attrs {
		out[i] = AttributeResponse{ID: a.ID, Name: a.Name}
	}
	return out
}
