package middleware

import (
	"net/http"
	"slices"

	"shoe-store/internal/domain"

	"go.uber.org/zap"
)

// RequireAdmin restricts a route group to shop administrators
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole(logger, domain.RoleAdmin)
}

// RequireRole lets a request through when the authenticated caller has one of
// roles. It must run after AuthMiddleware.
func RequireRole(logger *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok || !slices.Contains(roles, role) {
				userID, _ := GetUserID(r.Context())
				logger.Warn("Forbidden role for route",
					zap.String("role", role),
					zap.String("user_id", userID.String()),
					zap.String("path", r.URL.Path),
					zap.Strings("allowed_roles", roles),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
