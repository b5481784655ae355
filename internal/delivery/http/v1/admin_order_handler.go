package v1

import (
	"net/http"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/usecase"
	"mutitpay-storefront/pkg/utils"
)

type AdminOrderHandler struct {
	adminUC *usecase.AdminUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{adminUC: uc}
}

// ListOrders accepts status, date_from and date_to (YYYY-MM-DD) on top of paging
func (h *AdminOrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := domain.OrderFilter{
		ListParams: listParams(r),
		Status:     q.Get("status"),
		DateFrom:   q.Get("date_from"),
		DateTo:     q.Get("date_to"),
	}
	page, err := h.adminUC.Orders(r.Context(), token, filter)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}

func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if err := h.adminUC.UpdateOrderStatus(r.Context(), token, id, req.Status); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"id": id, "status": req.Status})
}

func (h *AdminOrderHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	page, err := h.adminUC.Customers(r.Context(), token, listParams(r))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}
