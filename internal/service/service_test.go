package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/recipe-server/internal/auth"
	"github.com/listenupapp/recipe-server/internal/domain"
	domainerrors "github.com/listenupapp/recipe-server/internal/errors"
	"github.com/listenupapp/recipe-server/internal/media/images"
	"github.com/listenupapp/recipe-server/internal/metrics"
	"github.com/listenupapp/recipe-server/internal/store/sqlite"
	"github.com/listenupapp/recipe-server/internal/validation"
)

type testEnv struct {
	store       *sqlite.Store
	storage     *images.Storage
	metrics     *metrics.Metrics
	tokens      *auth.TokenService
	auth        *AuthService
	recipes     *RecipeService
	tags        *AttributeService
	ingredients *AttributeService
}

func setupServiceTest(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	storage, err := images.NewStorage(filepath.Join(dir, "media"), "recipes")
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{7}, auth.KeySize), time.Hour)
	require.NoError(t, err)

	v := validation.New()
	m := metrics.New()

	return &testEnv{
		store:       st,
		storage:     storage,
		metrics:     m,
		tokens:      tokens,
		auth:        NewAuthService(st, tokens, v, logger),
		recipes:     NewRecipeService(st, images.NewProcessor(storage, "recipe", logger), m, v, logger),
		tags:        NewAttributeService(domain.KindTag, st, v, logger),
		ingredients: NewAttributeService(domain.KindIngredient, st, v, logger),
	}
}

func (e *testEnv) createUser(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := e.auth.CreateUser(context.Background(), CreateUserRequest{
		Email:    email,
		Password: "correct horse battery",
		Name:     "Cook",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) createRecipe(t *testing.T, userID int64, title string, tags ...string) *domain.Recipe {
	t.Helper()
	req := CreateRecipeRequest{Title: title, TimeMinutes: 10, Price: 5}
	for _, name := range tags {
		req.Tags = append(req.Tags, NestedAttribute{Name: name})
	}
	r, err := e.recipes.CreateRecipe(context.Background(), userID, req)
	require.NoError(t, err)
	return r
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := range 16 {
		for y := range 16 {
			img.Set(x, y, color.RGBA{uint8(x * 16), uint8(y * 16), 128, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fieldErrors asserts err is a validation error and returns its details.
func fieldErrors(t *testing.T, err error) domainerrors.FieldErrors {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	details, ok := derr.Details.(domainerrors.FieldErrors)
	require.True(t, ok, "details: %T", derr.Details)
	return details
}

func ptr[T any](v T) *T { return &v }
