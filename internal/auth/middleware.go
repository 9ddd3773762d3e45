package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// ErrorWriter renders an error response. The transport supplies it so this
// package stays free of response formatting.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware returns an HTTP middleware that resolves the bearer token and
// stores the AuthContext on the request context. Requests that fail to resolve
// are answered through writeError and never reach next.
func (r *Resolver) Middleware(writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ac, err := r.Resolve(req.Context(), extractBearerToken(req))
			if err != nil {
				writeError(w, req, err)
				return
			}

			ctx := WithAuthContext(req.Context(), ac)

			// Enrich the request logger with the resolved subject
			l := zerolog.Ctx(ctx).With().
				Str("subject_id", ac.SubjectID.String()).
				Str("subject_kind", string(ac.Kind)).
				Logger()
			ctx = l.WithContext(ctx)

			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}
