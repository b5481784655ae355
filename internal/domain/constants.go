package domain

// Roles
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Order Statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment Methods
const (
	PaymentMethodMpesa = "mpesa"
	PaymentMethodEmola = "emola"
)

// Currency of every storefront price
const Currency = "MZN"

var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var PaymentMethods = []string{
	PaymentMethodMpesa,
	PaymentMethodEmola,
}

func IsOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func IsPaymentMethod(s string) bool {
	for _, v := range PaymentMethods {
		if v == s {
			return true
		}
	}
	return false
}
