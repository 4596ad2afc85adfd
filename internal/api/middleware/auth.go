package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/roadcast/roadcast/internal/api/models"
	"github.com/roadcast/roadcast/internal/auth"
)

type subjectKey struct{}

// TokenAuthorizer verifies a bearer token and checks it carries scope.
// *auth.JWTService implements it.
type TokenAuthorizer interface {
	Authorize(tokenString, scope string) (*auth.Claims, error)
}

// RequireScope creates middleware that admits only requests bearing a valid
// token with the given scope. Missing or invalid tokens get 401, valid
// tokens without the scope get 403.
func RequireScope(authorizer TokenAuthorizer, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, detail := bearerToken(r)
			if detail != "" {
				writeAuthProblem(w, r, models.NewUnauthorized, detail)
				return
			}

			claims, err := authorizer.Authorize(tokenString, scope)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrInsufficientScope):
					writeAuthProblem(w, r, models.NewForbidden, "token lacks the "+scope+" scope")
				case errors.Is(err, auth.ErrTokenExpired):
					writeAuthProblem(w, r, models.NewUnauthorized, "access token has expired")
				default:
					writeAuthProblem(w, r, models.NewUnauthorized, "invalid access token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from the Authorization header. A non-empty
// detail describes why no token could be read.
func bearerToken(r *http.Request) (token, detail string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "missing authorization header"
	}

	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "invalid authorization header format"
	}

	token = strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", "missing bearer token"
	}
	return token, ""
}

// writeAuthProblem writes the problem directly; importing the response
// package here would create a cycle.
func writeAuthProblem(w http.ResponseWriter, r *http.Request, build func(traceID, detail string) *models.Problem, detail string) {
	problem := build(GetRequestID(r.Context()), detail)
	problem.Instance = r.URL.Path
	if problem.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="roadcast-admin"`)
	}
	problem.Write(w)
}

// GetSubject retrieves the authenticated token subject from the context.
// Returns an empty string if the request was not authenticated.
func GetSubject(ctx context.Context) string {
	if sub, ok := ctx.Value(subjectKey{}).(string); ok {
		return sub
	}
	return ""
}
