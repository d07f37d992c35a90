package di

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/recipe-server/internal/config"
	"github.com/listenupapp/recipe-server/internal/di/providers"
	"github.com/listenupapp/recipe-server/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Logger.Level = "error"
	cfg.Data.BasePath = dir
	cfg.Data.DatabasePath = filepath.Join(dir, "recipes.db")
	return cfg
}

func TestBootstrap_BuildsServer(t *testing.T) {
	cfg := testConfig(t)
	injector := NewContainer(cfg)

	srv, err := Bootstrap(injector)
	require.NoError(t, err)
	assert.Equal(t, ":8080", srv.Addr)

	// The key is persisted on first use.
	assert.FileExists(t, cfg.KeyPath())
	assert.Len(t, cfg.Auth.TokenKey, 32)

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	_ = injector.Shutdown()
}

func TestContainer_ServicesWithoutHTTP(t *testing.T) {
	injector := NewContainer(testConfig(t))
	t.Cleanup(func() { _ = injector.Shutdown() })

	authSvc := do.MustInvoke[*service.AuthService](injector)
	attrs := do.MustInvoke[*providers.AttributeServices](injector)
	assert.NotNil(t, authSvc)
	assert.Equal(t, "tag", string(attrs.Tags.Kind()))
	assert.Equal(t, "ingredient", string(attrs.Ingredients.Kind()))
}
