package middleware

import (
	"context"
	"net/http"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/pkg/utils"
)

// userFromClaims rebuilds the session user without a round trip to the
// identity provider
func userFromClaims(c *utils.Claims) *domain.User {
	return &domain.User{
		ID:            c.UserID,
		Email:         c.Email,
		DisplayName:   c.Name,
		Role:          c.Role,
		ProviderToken: c.ProviderToken,
	}
}

// AuthMiddleware requires a valid session token in the Authorization
// header or the accessToken cookie
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := utils.TokenFromRequest(r)
		if tokenString == "" {
			utils.WriteError(w, http.StatusUnauthorized, "Sessão não encontrada")
			return
		}

		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, "Sessão inválida ou expirada")
			return
		}

		ctx := context.WithValue(r.Context(), domain.UserContextKey, userFromClaims(claims))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
