package domain

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"
)

var ErrCartEmpty = errors.New("cart is empty")

// CartItem is one line of the cart. A line is identified by (ID, ColorID).
type CartItem struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Image         string   `json:"image"`
	Category      string   `json:"category"`
	Slug          string   `json:"slug"`
	Quantity      int      `json:"quantity"`
	MaxQuantity   *int     `json:"max_quantity,omitempty"`
	ColorID       *int64   `json:"color_id,omitempty"`
	ColorName     string   `json:"color_name,omitempty"`
}

// Matches reports whether the line holds product id in color colorID
func (i CartItem) Matches(id int64, colorID *int64) bool {
	if i.ID != id {
		return false
	}
	if i.ColorID == nil || colorID == nil {
		return i.ColorID == nil && colorID == nil
	}
	return *i.ColorID == *colorID
}

// ClampQuantity keeps q within [1, MaxQuantity]
func (i CartItem) ClampQuantity(q int) int {
	if q < 1 {
		q = 1
	}
	if i.MaxQuantity != nil && *i.MaxQuantity > 0 && q > *i.MaxQuantity {
		q = *i.MaxQuantity
	}
	return q
}

// CanIncrease is false once the line reached its stock cap
func (i CartItem) CanIncrease() bool {
	return i.MaxQuantity == nil || i.Quantity < *i.MaxQuantity
}

func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// AppliedCoupon is the single coupon a cart may hold
type AppliedCoupon struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
}

type Cart struct {
	ID        string         `json:"id"`
	Items     []CartItem     `json:"items"`
	Coupon    *AppliedCoupon `json:"coupon,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func NewCart(id string) *Cart {
	return &Cart{ID: id, Items: []CartItem{}}
}

// ShippingCost is flat until a shipping calculator exists
const ShippingCost = 0.0

// Totals is derived on every read and never stored
type Totals struct {
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	Shipping      float64 `json:"shipping"`
	Total         float64 `json:"total"`
	TotalQuantity int     `json:"total_quantity"`
	ItemCount     int     `json:"item_count"`
	Badge         string  `json:"badge,omitempty"`
}

func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.LineTotal()
	}
	return sum
}

func (c *Cart) TotalQuantity() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Totals() Totals {
	subtotal := c.Subtotal()
	discount := 0.0
	if c.Coupon != nil {
		discount = c.Coupon.Discount
	}
	qty := c.TotalQuantity()
	return Totals{
		Subtotal:      subtotal,
		Discount:      discount,
		Shipping:      ShippingCost,
		Total:         math.Max(0, subtotal-discount+ShippingCost),
		TotalQuantity: qty,
		ItemCount:     len(c.Items),
		Badge:         BadgeLabel(qty),
	}
}

// BadgeLabel is the header cart counter: empty at zero, "99+" above 99
func BadgeLabel(quantity int) string {
	switch {
	case quantity <= 0:
		return ""
	case quantity > 99:
		return "99+"
	default:
		return strconv.Itoa(quantity)
	}
}

// FindItem returns the index of the (id, colorID) line or -1
func (c *Cart) FindItem(id int64, colorID *int64) int {
	for idx, it := range c.Items {
		if it.Matches(id, colorID) {
			return idx
		}
	}
	return -1
}

// CartView is a cart with its derived totals
type CartView struct {
	*Cart
	Totals Totals `json:"totals"`
}

func (c *Cart) View() CartView {
	return CartView{Cart: c, Totals: c.Totals()}
}

// CartStore persists carts by cart session id. A missing cart is (nil, nil).
type CartStore interface {
	Get(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, id string) error
}

// Clone returns a deep copy so stored carts never alias caller state
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = make([]CartItem, len(c.Items))
	for i, it := range c.Items {
		if it.OriginalPrice != nil {
			v := *it.OriginalPrice
			it.OriginalPrice = &v
		}
		if it.MaxQuantity != nil {
			v := *it.MaxQuantity
			it.MaxQuantity = &v
		}
		if it.ColorID != nil {
			v := *it.ColorID
			it.ColorID = &v
		}
		out.Items[i] = it
	}
	if c.Coupon != nil {
		cp := *c.Coupon
		out.Coupon = &cp
	}
	return &out
}
