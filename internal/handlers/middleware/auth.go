package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/nkiryanov/medify/internal/handlers/render"
	"github.com/nkiryanov/medify/internal/handlers/userctx"
	"github.com/nkiryanov/medify/internal/models"
)

type authenticator interface {
	// Verify raw access token. Any error means the caller is not authenticated
	Authenticate(token string) (models.Principal, error)
}

// Extract token from 'Authorization: Bearer <token>' header.
// Scheme is case insensitive. Empty string if header is missing or malformed
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

// Reject request with 401 unless it carries valid not revoked access token.
// Principal of the token is put to request context
func AuthMiddleware(a authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			p, err := a.Authenticate(token)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Reject request with 403 unless principal has one of the roles.
// Must be used after AuthMiddleware: request without principal gets 401
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := userctx.FromContext(r.Context())
			switch {
			case !ok:
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			case !slices.Contains(roles, p.Role):
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
