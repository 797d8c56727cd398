package middleware

import (
	"net/http"
	"slices"

	"github.com/gorilla/mux"

	"artwaves-catalog/models"
	"artwaves-catalog/utils"
)

// HasPermission checks if a role has a specific permission
func HasPermission(role string, requiredPermission models.Permission) bool {
	return slices.Contains(models.RolePermissions[role], requiredPermission)
}

// RequirePermission middleware checks if the user has the required permission.
// It must run after AuthMiddleware.
func RequirePermission(requiredPermission models.Permission) mux.MiddlewareFunc {
	errorHandler := utils.NewErrorHandler()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || claims.Role == "" {
				errorHandler.HandleUnauthorized(w, "Invalid token claims")
				return
			}

			if !HasPermission(claims.Role, requiredPermission) {
				errorHandler.HandleForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
