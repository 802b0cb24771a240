package middleware

import (
	"context"
	"net/http"

	"pet-reunite/internal/ports/auth"
)

// RoleResolver devuelve el rol guardado para un usuario ("" si no tiene perfil).
type RoleResolver interface {
	RoleOf(ctx context.Context, userID string) (string, error)
}

// ProfileRole eleva a admin a los usuarios marcados como admin en su perfil.
// Nunca baja el rol que trae el token.
func ProfileRole(resolver RoleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := GetClaims(r.Context())
			if !ok || resolver == nil || c.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			if role, err := resolver.RoleOf(r.Context(), c.UserID); err == nil && role == auth.RoleAdmin {
				c.Role = auth.RoleAdmin
				r = r.WithContext(WithClaims(r.Context(), c))
			}
			next.ServeHTTP(w, r)
		})
	}
}
