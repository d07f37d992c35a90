package domain

import (
	"math"
	"time"
)

// Field limits.
const (
	MaxTitleLength = 255
	MaxLinkLength  = 255
	MaxPriceCents  = 99999
)

// Recipe is a user-owned recipe. Price is held in cents to keep two-decimal
// amounts exact.
type Recipe struct {
	ID            int64       `json:"id"`
	UserID        int64       `json:"-"`
	Title         string      `json:"title"`
	TimeMinutes   int         `json:"time_minutes"`
	PriceCents    int64       `json:"price_cents"`
	Link          string      `json:"link"`
	Description   string      `json:"description"`
	Image         string      `json:"image,omitempty"`
	ImageBlurHash string      `json:"image_blurhash,omitempty"`
	Tags          []Attribute `json:"tags"`
	Ingredients   []Attribute `json:"ingredients"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Price returns the price as a decimal amount.
func (r *Recipe) Price() float64 {
	return CentsToPrice(r.PriceCents)
}

// Attributes returns the recipe's tags or ingredients.
func (r *Recipe) Attributes(kind AttributeKind) []Attribute {
	if kind == KindIngredient {
		return r.Ingredients
	}
	return r.Tags
}

// SetAttributes replaces the tags or ingredients held on the struct.
func (r *Recipe) SetAttributes(kind AttributeKind, attrs []Attribute) {
	if kind == KindIngredient {
		r.Ingredients = attrs
		return
	}
	r.Tags = attrs
}

// PriceToCents converts a decimal amount to cents, rounding half away from zero.
func PriceToCents(p float64) int64 {
	return int64(math.Round(p * 100))
}

// CentsToPrice converts cents back to a decimal amount.
func CentsToPrice(c int64) float64 {
	return float64(c) / 100
}

// RecipePatch carries a partial update. Nil fields are left unchanged.
//
// Tags and Ingredients follow the same rule: nil leaves the associations
// alone, while a non-nil slice (even empty) replaces them.
type RecipePatch struct {
	Title       *string
	TimeMinutes *int
	PriceCents  *int64
	Link        *string
	Description *string
	Tags        []string
	Ingredients []string
}

// Names returns the attribute names for kind.
func (p *RecipePatch) Names(kind AttributeKind) []string {
	if kind == KindIngredient {
		return p.Ingredients
	}
	return p.Tags
}

// Apply copies the non-nil scalar fields onto r.
func (p *RecipePatch) Apply(r *Recipe) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.TimeMinutes != nil {
		r.TimeMinutes = *p.TimeMinutes
	}
	if p.PriceCents != nil {
		r.PriceCents = *p.PriceCents
	}
	if p.Link != nil {
		r.Link = *p.Link
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
}
