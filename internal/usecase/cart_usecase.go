package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/pkg/logger"
)

const msgInvalidProduct = "Produto inválido."

type CartUsecase struct {
	store       domain.CartStore
	coupons     domain.CouponValidator
	maxQuantity int
	now         func() time.Time
}

func NewCartUsecase(store domain.CartStore, coupons domain.CouponValidator, maxQuantity int) *CartUsecase {
	return &CartUsecase{
		store:       store,
		coupons:     coupons,
		maxQuantity: maxQuantity,
		now:         time.Now,
	}
}

// Get returns the cart for a session. A cart that was never saved reads as empty.
func (u *CartUsecase) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := u.store.Get(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		cart = domain.NewCart(cartID)
	}
	return cart, nil
}

func (u *CartUsecase) save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	cart.UpdatedAt = u.now().UTC()
	if err := u.store.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return cart, nil
}

// clamp applies the line's stock cap and the global quantity ceiling
func (u *CartUsecase) clamp(item domain.CartItem, q int) int {
	q = item.ClampQuantity(q)
	if u.maxQuantity > 0 && q > u.maxQuantity {
		q = u.maxQuantity
	}
	return q
}

// AddItem puts item in the cart, merging with an existing line of the same
// product and color
func (u *CartUsecase) AddItem(ctx context.Context, cartID string, item domain.CartItem) (*domain.Cart, error) {
	if item.ID <= 0 {
		return nil, domain.NewValidationError(msgInvalidProduct)
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	cart, err := u.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindItem(item.ID, item.ColorID); idx >= 0 {
		line := &cart.Items[idx]
		// newer stock info wins
		if item.MaxQuantity != nil {
			line.MaxQuantity = item.MaxQuantity
		}
		line.Quantity = u.clamp(*line, line.Quantity+item.Quantity)
	} else {
		item.Quantity = u.clamp(item, item.Quantity)
		cart.Items = append(cart.Items, item)
	}
	return u.save(ctx, cart)
}

// UpdateQuantity sets the quantity of one line, clamped into [1, max]
func (u *CartUsecase) UpdateQuantity(ctx context.Context, cartID string, productID int64, colorID *int64, quantity int) (*domain.Cart, error) {
	cart, err := u.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	idx := cart.FindItem(productID, colorID)
	if idx < 0 {
		return nil, fmt.Errorf("cart item %d: %w", productID, domain.ErrNotFound)
	}
	cart.Items[idx].Quantity = u.clamp(cart.Items[idx], quantity)
	return u.save(ctx, cart)
}

func (u *CartUsecase) RemoveItem(ctx context.Context, cartID string, productID int64, colorID *int64) (*domain.Cart, error) {
	cart, err := u.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	idx := cart.FindItem(productID, colorID)
	if idx < 0 {
		return nil, fmt.Errorf("cart item %d: %w", productID, domain.ErrNotFound)
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	return u.save(ctx, cart)
}

// Clear empties the cart and drops its coupon
func (u *CartUsecase) Clear(ctx context.Context, cartID string) (*domain.Cart, error) {
	if err := u.store.Delete(ctx, cartID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}
	return domain.NewCart(cartID), nil
}

// ApplyCoupon validates code against the current subtotal and stores the
// discount. A cart holds at most one coupon.
func (u *CartUsecase) ApplyCoupon(ctx context.Context, cartID, code string) (*domain.Cart, error) {
	code = domain.NormalizeCouponCode(code)
	if code == "" {
		return nil, domain.NewValidationError(domain.MsgCouponCodeRequired)
	}
	cart, err := u.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.Coupon != nil {
		return nil, domain.ErrCouponAlreadyApplied
	}

	discount, err := u.validateCoupon(ctx, code, cart.Subtotal())
	if err != nil {
		return nil, err
	}
	cart.Coupon = &domain.AppliedCoupon{Code: code, Discount: discount}
	logger.WithContext(ctx).Info().Str("cart_id", cartID).Str("code", code).Float64("discount", discount).Msg("Coupon applied")
	return u.save(ctx, cart)
}

// validateCoupon returns the granted discount or a *CouponRejectedError
func (u *CartUsecase) validateCoupon(ctx context.Context, code string, subtotal float64) (float64, error) {
	v, err := u.coupons.ValidateCoupon(ctx, code, subtotal)
	if err != nil {
		logger.WithContext(ctx).Error().Err(err).Str("code", code).Msg("Coupon validation failed")
		return 0, domain.NewCouponUnavailable(code, err)
	}
	if v == nil || !v.Valid {
		return 0, domain.NewCouponRejected(code, v)
	}
	return v.DiscountAmount, nil
}

func (u *CartUsecase) RemoveCoupon(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := u.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.Coupon == nil {
		return cart, nil
	}
	cart.Coupon = nil
	return u.save(ctx, cart)
}

// IsCouponError reports whether err is a coupon refusal of either kind
func IsCouponError(err error) (*domain.CouponRejectedError, bool) {
	var rej *domain.CouponRejectedError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

