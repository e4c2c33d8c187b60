// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/carterperez-dev/templates/movie-catalog/internal/core"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const identityKey contextKey = "identity"

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID    int64
	Username  string
	Email     string
	Role      string
	SessionID int64
}

// IdentityResolver turns a bearer token into an Identity. Implementations
// return an error wrapping core.ErrTokenInvalid for any token that must be
// rejected.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*Identity, error)
}

func Authenticator(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				core.JSONError(w, core.UnauthorizedError("Not authenticated"))
				return
			}

			identity, err := resolver.ResolveIdentity(r.Context(), token)
			if err != nil {
				handleAuthError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil {
				core.JSONError(w, core.UnauthorizedError(""))
				return
			}

			if _, ok := roleSet[identity.Role]; !ok {
				core.JSONError(w, core.ForbiddenError("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(RoleAdmin)(next)
}

// ExtractToken returns the credential from an "Authorization: Bearer" header.
// The scheme is matched case-insensitively.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrStoreUnavailable) {
		core.InternalServerError(w, err)
		return
	}

	if !errors.Is(err, core.ErrTokenInvalid) {
		slog.ErrorContext(r.Context(), "resolve identity", "error", err)
		core.InternalServerError(w, err)
		return
	}

	w.Header().Set("WWW-Authenticate", "Bearer")
	core.JSONError(w, core.TokenInvalidError())
}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func GetIdentity(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(identityKey).(*Identity); ok {
		return identity
	}
	return nil
}

// GetUserID returns 0 for anonymous requests.
func GetUserID(ctx context.Context) int64 {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.UserID
	}
	return 0
}

func GetSessionID(ctx context.Context) int64 {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.SessionID
	}
	return 0
}

func GetUserRole(ctx context.Context) string {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.Role
	}
	return ""
}

func IsAdmin(ctx context.Context) bool {
	return GetUserRole(ctx) == RoleAdmin
}
