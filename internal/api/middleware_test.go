package api

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/recipe-server/internal/metrics"
	"github.com/listenupapp/recipe-server/internal/ratelimit"
)

func TestRequestLogger_LogsRouteAndUser(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if info, ok := req.Context().Value(requestInfoKey).(*requestInfo); ok {
				info.userID = 42
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/api/v1/recipes/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/recipes/7", nil))

	out := buf.String()
	assert.Contains(t, out, `"route":"/api/v1/recipes/{id}"`)
	assert.Contains(t, out, `"path":"/api/v1/recipes/7"`)
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"user_id":42`)
	assert.Contains(t, out, `"level":"WARN"`)
}

func TestRequestLogger_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Get("/ping", func(http.ResponseWriter, *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Contains(t, buf.String(), `"status":200`)
	assert.NotContains(t, buf.String(), "user_id")
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	t.Cleanup(limiter.Stop)
	m := metrics.New()

	handler := rateLimitMiddleware(limiter, m, slog.New(slog.DiscardHandler))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:1000").Code)

	w := send("10.0.0.1:2000")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// Limits are per client IP.
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:1000").Code)
}

func TestClientIP(t *testing.T) {
	tests := map[string]string{
		"192.0.2.1:1234":   "192.0.2.1",
		"[2001:db8::1]:80": "2001:db8::1",
		"192.0.2.9":        "192.0.2.9",
	}
	for addr, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		assert.Equal(t, want, clientIP(req), "addr %q", addr)
	}
}

func TestUserFromContext(t *testing.T) {
	_, ok := userIDFrom(context.Background())
	assert.False(t, ok)

	_, err := RequireUserID(context.Background())
	assert.Error(t, err)
}
