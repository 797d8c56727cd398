package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"artwaves-catalog/utils"
)

type ctxKey string

const ctxKeyClaims ctxKey = "claims"

// ClaimsFromContext returns the claims stored by AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(ctxKeyClaims).(*utils.Claims)
	return claims, ok
}

// AuthMiddleware verifies the JWT token in the Authorization header
func AuthMiddleware(secret string) mux.MiddlewareFunc {
	errorHandler := utils.NewErrorHandler()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				errorHandler.HandleUnauthorized(w, "Authorization header is required")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				errorHandler.HandleUnauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := utils.ParseJWT(secret, token)
			if err != nil {
				errorHandler.HandleUnauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
