package v1

import (
	"net/http"

	"mutitpay-storefront/internal/usecase"
	"mutitpay-storefront/pkg/utils"
)

type AdminStatsHandler struct {
	adminUC *usecase.AdminUsecase
}

func NewAdminStatsHandler(uc *usecase.AdminUsecase) *AdminStatsHandler {
	return &AdminStatsHandler{adminUC: uc}
}

// GetOrderStats reports estimated=true when the numbers were summed from today's orders
func (h *AdminStatsHandler) GetOrderStats(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	stats, err := h.adminUC.OrderStats(r.Context(), token)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

func (h *AdminStatsHandler) GetProductStats(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	stats, err := h.adminUC.ProductStats(r.Context(), token)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

func (h *AdminStatsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	d, err := h.adminUC.Dashboard(r.Context(), token)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, d)
}
