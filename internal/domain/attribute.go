package domain

import (
	"fmt"
	"time"
)

// AttributeKind distinguishes the two per-user labels a recipe can carry.
type AttributeKind string

const (
	KindTag        AttributeKind = "tag"
	KindIngredient AttributeKind = "ingredient"
)

// AttributeKinds lists every kind in a stable order.
var AttributeKinds = []AttributeKind{KindTag, KindIngredient}

// Valid reports whether k is a known kind.
func (k AttributeKind) Valid() bool {
	return k == KindTag || k == KindIngredient
}

// Plural returns the collection name, e.g. "tags".
func (k AttributeKind) Plural() string {
	return string(k) + "s"
}

// ParseAttributeKind converts a kind name to an AttributeKind.
func ParseAttributeKind(s string) (AttributeKind, error) {
	k := AttributeKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown attribute kind %q", s)
	}
	return k, nil
}

// MaxAttributeNameLength bounds tag and ingredient names.
const MaxAttributeNameLength = 255

// Attribute is a tag or an ingredient. Names are unique per (user, kind).
type Attribute struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"-"`
	Kind      AttributeKind `json:"-"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// AttributeNames returns the names of attrs in order.
func AttributeNames(attrs []Attribute) []string {
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name
	}
	return names
}
