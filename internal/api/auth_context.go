package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/recipe-server/internal/domain"
	"github.com/listenupapp/recipe-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const userKey ctxKey = "user"

// withUser stores the authenticated user in ctx.
func withUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// userFrom returns the authenticated user, if any.
func userFrom(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey).(*domain.User)
	return u, ok && u != nil
}

func userIDFrom(ctx context.Context) (int64, bool) {
	u, ok := userFrom(ctx)
	if !ok {
		return 0, false
	}
	return u.ID, true
}

// RequireUserID returns the authenticated user's id or a 401.
func RequireUserID(ctx context.Context) (int64, error) {
	id, ok := userIDFrom(ctx)
	if !ok {
		return 0, huma.Error401Unauthorized("authentication credentials were not provided or are invalid")
	}
	return id, nil
}

// bearerToken extracts the token from an "Authorization: Bearer ..." header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authMiddleware verifies bearer tokens and stores the user in context.
// Requests without a valid token continue anonymously; handlers that need
// a user call RequireUserID.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok || auth == nil {
				next.ServeHTTP(w, r)
				return
			}

			user, _, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok {
				info.userID = user.ID
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}
