package domain

import "time"

type OrderItem struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"product"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	ColorName   string  `json:"color_name,omitempty"`
}

// Order is the admin view of a placed order
type Order struct {
	ID             int64       `json:"id"`
	OrderNumber    string      `json:"order_number"`
	CustomerName   string      `json:"customer_name"`
	CustomerEmail  string      `json:"customer_email"`
	Status         string      `json:"status"`
	PaymentStatus  string      `json:"payment_status"`
	PaymentMethod  string      `json:"payment_method"`
	TotalAmount    float64     `json:"total_amount"`
	ShippingCost   float64     `json:"shipping_cost"`
	DiscountAmount float64     `json:"discount_amount"`
	Items          []OrderItem `json:"items"`
	CreatedAt      time.Time   `json:"created_at"`
}

// GrandTotal is what the customer paid, shipping included
func (o Order) GrandTotal() float64 {
	return o.TotalAmount + o.ShippingCost
}

type OrderFilter struct {
	ListParams
	Status   string
	DateFrom string
	DateTo   string
}

// OrderStats is the dashboard header
type OrderStats struct {
	TodayOrders  int     `json:"today_orders"`
	TodayRevenue float64 `json:"today_revenue"`
	TotalOrders  int     `json:"total_orders,omitempty"`
	Pending      int     `json:"pending_orders,omitempty"`
	// Estimated is set when the numbers were summed from the order listing
	Estimated bool `json:"estimated"`
}

// Dashboard aggregates the admin landing page counters
type Dashboard struct {
	Orders    OrderStats   `json:"orders"`
	Products  ProductStats `json:"products"`
	Customers int64        `json:"customers"`
}
