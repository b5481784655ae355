package v1

import (
	"errors"
	"net/http"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/usecase"
	"mutitpay-storefront/pkg/logger"
	"mutitpay-storefront/pkg/utils"
)

const (
	msgInvalidBody    = "Pedido inválido"
	msgInvalidID      = "ID inválido"
	msgNotFound       = "Não encontrado"
	msgUnauthorized   = "Sessão inválida. Entre novamente."
	msgBackendFailure = "Serviço temporariamente indisponível. Tente novamente."
	msgInternal       = "Erro interno"
)

// writeUsecaseError maps a usecase failure onto a status and a JSON body
func writeUsecaseError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := domain.IsValidation(err); ok {
		if len(ve.Fields) > 0 {
			utils.WriteFieldErrors(w, ve.Message, ve.Fields)
			return
		}
		utils.WriteError(w, http.StatusBadRequest, ve.Message)
		return
	}

	if rej, ok := usecase.IsCouponError(err); ok {
		status := http.StatusUnprocessableEntity
		if rej.Err != nil {
			status = http.StatusBadGateway
		}
		utils.WriteError(w, status, rej.Message)
		return
	}

	var authErr *usecase.AuthError
	if errors.As(err, &authErr) {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrBackendUnavailable) {
			status = http.StatusBadGateway
		}
		utils.WriteError(w, status, authErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrCouponAlreadyApplied):
		utils.WriteError(w, http.StatusConflict, domain.MsgCouponAlreadyHeld)
	case errors.Is(err, domain.ErrCartEmpty):
		utils.WriteError(w, http.StatusBadRequest, domain.MsgEmptyCart)
	case errors.Is(err, domain.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, domain.ErrSessionExpired), errors.Is(err, domain.ErrUnauthorized):
		utils.WriteError(w, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, domain.ErrBackendUnavailable):
		logger.WithContext(r.Context()).Warn().Err(err).Msg("Commerce API unavailable")
		utils.WriteError(w, http.StatusBadGateway, msgBackendFailure)
	default:
		var um interface{ UserMessage() string }
		if errors.As(err, &um) && um.UserMessage() != "" {
			utils.WriteError(w, http.StatusBadRequest, um.UserMessage())
			return
		}
		logger.WithContext(r.Context()).Error().Err(err).Msg("Request failed")
		utils.WriteError(w, http.StatusInternalServerError, msgInternal)
	}
}

// userFromContext returns the user set by AuthMiddleware
func userFromContext(r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	return user, ok && user != nil
}

func pathID(r *http.Request, name string) (int64, bool) {
	id := int64(utils.ParseInt(r.PathValue(name), 0))
	return id, id > 0
}
