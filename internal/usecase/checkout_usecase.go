package usecase

import (
	"context"
	"fmt"
	"strings"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/pkg/logger"
)

// CheckoutResult is the handoff to the checkout page
type CheckoutResult struct {
	Intent   domain.CheckoutIntent `json:"intent"`
	Redirect string                `json:"redirect"`
}

type CheckoutUsecase struct {
	carts *CartUsecase
}

func NewCheckoutUsecase(carts *CartUsecase) *CheckoutUsecase {
	return &CheckoutUsecase{carts: carts}
}

// Checkout builds the payment intent for a cart. An applied coupon is
// checked again against the current subtotal: its discount is refreshed,
// or it is dropped from the cart and the refusal is returned.
func (u *CheckoutUsecase) Checkout(ctx context.Context, cartID, method string) (*CheckoutResult, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	if !domain.IsPaymentMethod(method) {
		return nil, domain.NewValidationError(domain.MsgInvalidPaymentMethod)
	}
	cart, err := u.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrCartEmpty
	}

	if cart.Coupon != nil {
		discount, err := u.carts.validateCoupon(ctx, cart.Coupon.Code, cart.Subtotal())
		if rej, ok := IsCouponError(err); ok && rej.Err == nil {
			logger.WithContext(ctx).Info().Str("cart_id", cartID).Str("code", rej.Code).Msg("Coupon no longer valid at checkout")
			cart.Coupon = nil
			if _, saveErr := u.carts.save(ctx, cart); saveErr != nil {
				return nil, saveErr
			}
			return nil, rej
		}
		if err != nil {
			return nil, err
		}
		if discount != cart.Coupon.Discount {
			cart.Coupon.Discount = discount
			if _, err := u.carts.save(ctx, cart); err != nil {
				return nil, fmt.Errorf("failed to refresh coupon: %w", err)
			}
		}
	}

	totals := cart.Totals()
	intent := domain.CheckoutIntent{
		Method:         method,
		Items:          make([]domain.CheckoutLine, 0, len(cart.Items)),
		Amount:         totals.Total,
		ShippingAmount: totals.Shipping,
		Currency:       domain.Currency,
		DiscountAmount: totals.Discount,
	}
	if cart.Coupon != nil {
		intent.CouponCode = cart.Coupon.Code
	}
	for _, it := range cart.Items {
		intent.Items = append(intent.Items, domain.CheckoutLine{ID: it.ID, Quantity: it.Quantity, ColorID: it.ColorID})
	}
	return &CheckoutResult{Intent: intent, Redirect: domain.CheckoutRedirect}, nil
}
