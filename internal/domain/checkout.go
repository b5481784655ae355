package domain

// CheckoutLine is the item reference handed to the checkout page
type CheckoutLine struct {
	ID       int64  `json:"id"`
	Quantity int    `json:"quantity"`
	ColorID  *int64 `json:"color_id"`
}

// CheckoutIntent is everything the checkout page needs to start a payment
type CheckoutIntent struct {
	Method         string         `json:"method"`
	Items          []CheckoutLine `json:"items"`
	Amount         float64        `json:"amount"`
	ShippingAmount float64        `json:"shipping_amount"`
	Currency       string         `json:"currency"`
	CouponCode     string         `json:"coupon_code,omitempty"`
	DiscountAmount float64        `json:"discount_amount"`
}

// CheckoutRedirect is where the browser goes with the intent
const CheckoutRedirect = "/checkout"

const MsgInvalidPaymentMethod = "Método de pagamento inválido."
const MsgEmptyCart = "O carrinho está vazio."
