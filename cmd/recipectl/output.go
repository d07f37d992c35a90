package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/listenupapp/recipe-server/internal/domain"
	"github.com/listenupapp/recipe-server/internal/service"
)

// Format is a command output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// SupportedFormats lists the accepted --format values.
func SupportedFormats() string {
	return strings.Join([]string{string(FormatJSON), string(FormatYAML)}, ", ")
}

// IsUnknown reports whether f is not a supported format.
func (f Format) IsUnknown() bool {
	return f != FormatJSON && f != FormatYAML
}

// writeOutput encodes v to w in the given format.
func writeOutput(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format: %q", f)
	}
}

type userView struct {
	ID        int64     `json:"id" yaml:"id"`
	Email     string    `json:"email" yaml:"email"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	IsActive  bool      `json:"is_active" yaml:"is_active"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

func newUserView(u *domain.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, IsActive: u.IsActive, CreatedAt: u.CreatedAt}
}

type tokenView struct {
	User      userView  `json:"user" yaml:"user"`
	Token     string    `json:"token" yaml:"token"`
	TokenType string    `json:"token_type" yaml:"token_type"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
}

func newTokenView(t *service.TokenResponse) tokenView {
	return tokenView{User: newUserView(t.User), Token: t.Token, TokenType: t.TokenType, ExpiresAt: t.ExpiresAt}
}

type seedView struct {
	User        userView `json:"user" yaml:"user"`
	Token       string   `json:"token" yaml:"token"`
	Recipes     []string `json:"recipes" yaml:"recipes"`
	Tags        int      `json:"tags" yaml:"tags"`
	Ingredients int      `json:"ingredients" yaml:"ingredients"`
}
