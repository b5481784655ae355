package v1

import (
	"net/http"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/usecase"
	"mutitpay-storefront/pkg/utils"
)

type CheckoutHandler struct {
	checkoutUC *usecase.CheckoutUsecase
}

func NewCheckoutHandler(checkoutUC *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{checkoutUC: checkoutUC}
}

// Checkout answers with the payment intent and where to send the browser
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string `json:"method"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	c, err := r.Cookie(CartCookie)
	if err != nil || c.Value == "" {
		utils.WriteError(w, http.StatusBadRequest, domain.MsgEmptyCart)
		return
	}

	res, err := h.checkoutUC.Checkout(r.Context(), c.Value, req.Method)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}
