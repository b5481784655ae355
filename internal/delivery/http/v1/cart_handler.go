package v1

import (
	"net/http"
	"time"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/usecase"
	"mutitpay-storefront/pkg/utils"

	"github.com/google/uuid"
)

// CartCookie names the anonymous cart session
const CartCookie = "cart_id"

type CartHandler struct {
	cartUC       *usecase.CartUsecase
	cookieTTL    time.Duration
	secureCookie bool
}

func NewCartHandler(cartUC *usecase.CartUsecase, cookieTTL time.Duration, secureCookie bool) *CartHandler {
	return &CartHandler{cartUC: cartUC, cookieTTL: cookieTTL, secureCookie: secureCookie}
}

// cartID returns the session cart id, issuing a new one when the cookie is
// missing or not a UUID
func (h *CartHandler) cartID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CartCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     CartCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cookieTTL.Seconds()),
	})
	return id
}

func writeCart(w http.ResponseWriter, cart *domain.Cart) {
	utils.WriteJSON(w, http.StatusOK, cart.View())
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartUC.Get(r.Context(), h.cartID(w, r))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeCart(w, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var item domain.CartItem
	if err := utils.DecodeJSON(r, &item); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	cart, err := h.cartUC.AddItem(r.Context(), h.cartID(w, r), item)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeCart(w, cart)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	var req struct {
		ColorID  *int64 `json:"color_id"`
		Quantity int    `json:"quantity"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	cart, err := h.cartUC.UpdateQuantity(r.Context(), h.cartID(w, r), id, req.ColorID, req.Quantity)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeCart(w, cart)
}

// RemoveItem takes the line color from ?color_id=
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	var colorID *int64
	if v := utils.ParseInt(r.URL.Query().Get("color_id"), 0); v > 0 {
		c := int64(v)
		colorID = &c
	}
	cart, err := h.cartUC.RemoveItem(r.Context(), h.cartID(w, r), id, colorID)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeCart(w, cart)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartUC.Clear(r.Context(), h.cartID(w, r))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeCart(w, cart)
}

func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	cart, err := h.cartUC.ApplyCoupon(r.Context(), h.cartID(w, r), req.Code)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeCart(w, cart)
}

func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartUC.RemoveCoupon(r.Context(), h.cartID(w, r))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeCart(w, cart)
}
