package middleware

import (
	"net/http"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/pkg/logger"
	"mutitpay-storefront/pkg/utils"
)

// AdminMiddleware ensures the authenticated user has the admin role.
// MUST be used AFTER AuthMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
		if !ok || user == nil {
			utils.WriteError(w, http.StatusUnauthorized, "Sessão não encontrada")
			return
		}

		if !user.IsAdmin() {
			logger.WithContext(r.Context()).Warn().Str("uid", user.ID).Str("path", r.URL.Path).Msg("Admin route denied")
			utils.WriteError(w, http.StatusForbidden, "Acesso restrito a administradores")
			return
		}

		next.ServeHTTP(w, r)
	})
}
