package v1

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartBody struct {
	ID     string            `json:"id"`
	Items  []domain.CartItem `json:"items"`
	Coupon *struct {
		Code     string  `json:"code"`
		Discount float64 `json:"discount"`
	} `json:"coupon"`
	Totals domain.Totals `json:"totals"`
}

// readCart decodes into a zero value so omitted fields read as empty
func readCart(t *testing.T, rec *httptest.ResponseRecorder) cartBody {
	t.Helper()
	var body cartBody
	decodeBody(t, rec, &body)
	return body
}

func TestCartHandler_IssuesCookie(t *testing.T) {
	h := NewCartHandler(newCartUsecase(&fakeCoupons{}), 24*time.Hour, true)

	rec := httptest.NewRecorder()
	h.GetCart(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	c := cookieNamed(rec, CartCookie)
	require.NotNil(t, c)
	_, err := uuid.Parse(c.Value)
	assert.NoError(t, err)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 86400, c.MaxAge)

	body := readCart(t, rec)
	assert.Equal(t, c.Value, body.ID)
	assert.Empty(t, body.Items)

	// an invalid cookie is replaced
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartCookie, Value: "not-a-uuid"})
	rec = httptest.NewRecorder()
	h.GetCart(rec, req)
	c2 := cookieNamed(rec, CartCookie)
	require.NotNil(t, c2)
	assert.NotEqual(t, "not-a-uuid", c2.Value)
}

func TestCartHandler_Flow(t *testing.T) {
	h := NewCartHandler(newCartUsecase(&fakeCoupons{}), time.Hour, false)
	cartID := uuid.New().String()
	send := func(req *http.Request, fn http.HandlerFunc) *httptest.ResponseRecorder {
		req.AddCookie(&http.Cookie{Name: CartCookie, Value: cartID})
		rec := httptest.NewRecorder()
		fn(rec, req)
		return rec
	}

	stock := 3
	rec := send(jsonRequest(t, http.MethodPost, "/api/v1/cart/items", domain.CartItem{ID: 7, Name: "Vestido", Price: 1200, Quantity: 2, MaxQuantity: &stock}), h.AddItem)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, cookieNamed(rec, CartCookie), "valid cookie is kept")

	// merges into the same line and clamps at stock
	rec = send(jsonRequest(t, http.MethodPost, "/api/v1/cart/items", domain.CartItem{ID: 7, Name: "Vestido", Price: 1200, Quantity: 5}), h.AddItem)
	body := readCart(t, rec)
	require.Len(t, body.Items, 1)
	assert.Equal(t, 3, body.Items[0].Quantity)
	assert.Equal(t, 3600.0, body.Totals.Subtotal)
	assert.Equal(t, "3", body.Totals.Badge)

	req := jsonRequest(t, http.MethodPut, "/api/v1/cart/items/7", map[string]int{"quantity": 1})
	req.SetPathValue("id", "7")
	rec = send(req, h.UpdateItem)
	body = readCart(t, rec)
	assert.Equal(t, 1, body.Items[0].Quantity)

	rec = send(jsonRequest(t, http.MethodPost, "/api/v1/cart/coupon", map[string]string{"code": " mutitpay10 "}), h.ApplyCoupon)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = readCart(t, rec)
	require.NotNil(t, body.Coupon)
	assert.Equal(t, "MUTITPAY10", body.Coupon.Code)
	assert.Equal(t, 1100.0, body.Totals.Total)

	rec = send(jsonRequest(t, http.MethodPost, "/api/v1/cart/coupon", map[string]string{"code": "OUTRO"}), h.ApplyCoupon)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = send(httptest.NewRequest(http.MethodDelete, "/api/v1/cart/coupon", nil), h.RemoveCoupon)
	body = readCart(t, rec)
	assert.Nil(t, body.Coupon)

	rec = send(jsonRequest(t, http.MethodPost, "/api/v1/cart/coupon", map[string]string{"code": "VELHO"}), h.ApplyCoupon)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/99", nil)
	req.SetPathValue("id", "99")
	rec = send(req, h.RemoveItem)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/7", nil)
	req.SetPathValue("id", "7")
	rec = send(req, h.RemoveItem)
	body = readCart(t, rec)
	assert.Empty(t, body.Items)
}

func TestCartHandler_BadInput(t *testing.T) {
	h := NewCartHandler(newCartUsecase(&fakeCoupons{}), time.Hour, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
	rec := httptest.NewRecorder()
	h.AddItem(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.AddItem(rec, jsonRequest(t, http.MethodPost, "/api/v1/cart/items", domain.CartItem{Name: "sem id"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = jsonRequest(t, http.MethodPut, "/api/v1/cart/items/x", map[string]int{"quantity": 1})
	req.SetPathValue("id", "x")
	rec = httptest.NewRecorder()
	h.UpdateItem(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_CouponServiceDown(t *testing.T) {
	h := NewCartHandler(newCartUsecase(&fakeCoupons{err: errors.New("dial tcp: refused")}), time.Hour, false)
	rec := httptest.NewRecorder()
	h.ApplyCoupon(rec, jsonRequest(t, http.MethodPost, "/api/v1/cart/coupon", map[string]string{"code": "MUTITPAY10"}))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCheckoutHandler(t *testing.T) {
	carts := newCartUsecase(&fakeCoupons{})
	h := NewCheckoutHandler(usecase.NewCheckoutUsecase(carts))
	cartID := uuid.New().String()

	checkout := func(method string, withCookie bool) *httptest.ResponseRecorder {
		req := jsonRequest(t, http.MethodPost, "/api/v1/checkout", map[string]string{"method": method})
		if withCookie {
			req.AddCookie(&http.Cookie{Name: CartCookie, Value: cartID})
		}
		rec := httptest.NewRecorder()
		h.Checkout(rec, req)
		return rec
	}

	rec := checkout("mpesa", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = checkout("mpesa", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errBody struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &errBody)
	assert.Equal(t, domain.MsgEmptyCart, errBody.Error)

	_, err := carts.AddItem(t.Context(), cartID, domain.CartItem{ID: 7, Price: 500, Quantity: 2})
	require.NoError(t, err)

	rec = checkout("paypal", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = checkout("M-Pesa", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = checkout(" MPESA ", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res usecase.CheckoutResult
	decodeBody(t, rec, &res)
	assert.Equal(t, "mpesa", res.Intent.Method)
	assert.Equal(t, 1000.0, res.Intent.Amount)
	assert.Equal(t, domain.Currency, res.Intent.Currency)
	assert.Equal(t, domain.CheckoutRedirect, res.Redirect)
	require.Len(t, res.Intent.Items, 1)
	assert.Equal(t, 2, res.Intent.Items[0].Quantity)
}
