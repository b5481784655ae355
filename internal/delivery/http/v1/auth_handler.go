package v1

import (
	"errors"
	"net/http"
	"time"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/usecase"
	"mutitpay-storefront/pkg/logger"
	"mutitpay-storefront/pkg/utils"
)

// RefreshCookie holds the provider refresh token
const RefreshCookie = "refresh_token"

// refreshCookieTTL matches the provider refresh token lifetime we rely on
const refreshCookieTTL = 30 * 24 * time.Hour

const msgResetSent = "Email de recuperação enviado. Verifique a sua caixa de entrada."

type AuthHandler struct {
	authUC       *usecase.AuthUsecase
	secureCookie bool
}

func NewAuthHandler(authUC *usecase.AuthUsecase, secureCookie bool) *AuthHandler {
	return &AuthHandler{authUC: authUC, secureCookie: secureCookie}
}

// writeSession sets both cookies and returns the session body
func (h *AuthHandler) writeSession(w http.ResponseWriter, sess *domain.AuthSession) {
	http.SetCookie(w, &http.Cookie{
		Name:     utils.AccessTokenCookie,
		Value:    sess.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sess.ExpiresIn),
	})
	if sess.RefreshToken != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     RefreshCookie,
			Value:    sess.RefreshToken,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteStrictMode,
			MaxAge:   int(refreshCookieTTL.Seconds()),
		})
	}
	utils.WriteJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) clearCookies(w http.ResponseWriter) {
	for _, name := range []string{utils.AccessTokenCookie, RefreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookie,
		})
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	sess, err := h.authUC.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		var authErr *usecase.AuthError
		if errors.As(err, &authErr) && !errors.Is(err, domain.ErrBackendUnavailable) {
			utils.WriteError(w, http.StatusUnauthorized, authErr.Message)
			return
		}
		writeUsecaseError(w, r, err)
		return
	}
	h.writeSession(w, sess)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName     string `json:"display_name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	sess, err := h.authUC.SignUp(r.Context(), req.DisplayName, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	h.writeSession(w, sess)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if err := h.authUC.ResetPassword(r.Context(), req.Email); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": msgResetSent})
}

// GoogleLogin accepts the popup authorization code or an ID token credential
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code       string `json:"code"`
		Credential string `json:"credential"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	sess, err := h.authUC.GoogleSignIn(r.Context(), req.Code, req.Credential)
	if err != nil {
		var authErr *usecase.AuthError
		if errors.As(err, &authErr) && !errors.Is(err, domain.ErrBackendUnavailable) {
			utils.WriteError(w, http.StatusUnauthorized, authErr.Message)
			return
		}
		writeUsecaseError(w, r, err)
		return
	}
	h.writeSession(w, sess)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(RefreshCookie)
	if err != nil || cookie.Value == "" {
		utils.WriteError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	sess, err := h.authUC.Refresh(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			logger.WithContext(r.Context()).Info().Err(err).Msg("Refresh token rejected")
			h.clearCookies(w)
		}
		writeUsecaseError(w, r, err)
		return
	}
	h.writeSession(w, sess)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the user carried by the session token
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}
