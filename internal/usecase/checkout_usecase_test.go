package usecase

import (
	"context"
	"testing"

	"mutitpay-storefront/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, coupons *fakeCoupons) (*CheckoutUsecase, *CartUsecase) {
		carts, _ := newCartUsecase(coupons)
		_, err := carts.AddItem(ctx, "c1", domain.CartItem{ID: 1, Price: 300, Quantity: 2, ColorID: idPtr(4)})
		require.NoError(t, err)
		_, err = carts.AddItem(ctx, "c1", domain.CartItem{ID: 2, Price: 150})
		require.NoError(t, err)
		return NewCheckoutUsecase(carts), carts
	}

	t.Run("builds intent", func(t *testing.T) {
		uc, _ := setup(t, &fakeCoupons{})

		res, err := uc.Checkout(ctx, "c1", " MPESA ")
		require.NoError(t, err)

		want := domain.CheckoutIntent{
			Method: "mpesa",
			Items: []domain.CheckoutLine{
				{ID: 1, Quantity: 2, ColorID: idPtr(4)},
				{ID: 2, Quantity: 1},
			},
			Amount:   750,
			Currency: "MZN",
		}
		if diff := cmp.Diff(want, res.Intent); diff != "" {
			t.Errorf("intent mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, "/checkout", res.Redirect)
	})

	t.Run("unknown method", func(t *testing.T) {
		uc, _ := setup(t, &fakeCoupons{})

		_, err := uc.Checkout(ctx, "c1", "card")
		ve, ok := domain.IsValidation(err)
		require.True(t, ok)
		assert.Equal(t, domain.MsgInvalidPaymentMethod, ve.Message)
	})

	t.Run("empty cart", func(t *testing.T) {
		carts, _ := newCartUsecase(nil)
		_, err := NewCheckoutUsecase(carts).Checkout(ctx, "nobody", "emola")
		assert.ErrorIs(t, err, domain.ErrCartEmpty)
	})

	t.Run("coupon discount is refreshed", func(t *testing.T) {
		coupons := &fakeCoupons{discounts: map[string]float64{"PROMO": 50}}
		uc, carts := setup(t, coupons)
		_, err := carts.ApplyCoupon(ctx, "c1", "PROMO")
		require.NoError(t, err)
		coupons.discounts["PROMO"] = 75

		res, err := uc.Checkout(ctx, "c1", "emola")
		require.NoError(t, err)
		assert.Equal(t, "PROMO", res.Intent.CouponCode)
		assert.InDelta(t, 75, res.Intent.DiscountAmount, 1e-9)
		assert.InDelta(t, 675, res.Intent.Amount, 1e-9)

		cart, err := carts.Get(ctx, "c1")
		require.NoError(t, err)
		assert.InDelta(t, 75, cart.Coupon.Discount, 1e-9)
	})

	t.Run("expired coupon is dropped", func(t *testing.T) {
		coupons := &fakeCoupons{discounts: map[string]float64{"PROMO": 50}}
		uc, carts := setup(t, coupons)
		_, err := carts.ApplyCoupon(ctx, "c1", "PROMO")
		require.NoError(t, err)
		delete(coupons.discounts, "PROMO")

		_, err = uc.Checkout(ctx, "c1", "mpesa")
		rej, ok := IsCouponError(err)
		require.True(t, ok)
		assert.Equal(t, domain.MsgCouponInvalid, rej.Message)

		cart, err := carts.Get(ctx, "c1")
		require.NoError(t, err)
		assert.Nil(t, cart.Coupon)
	})

	t.Run("validation outage keeps coupon", func(t *testing.T) {
		coupons := &fakeCoupons{discounts: map[string]float64{"PROMO": 50}}
		uc, carts := setup(t, coupons)
		_, err := carts.ApplyCoupon(ctx, "c1", "PROMO")
		require.NoError(t, err)
		coupons.err = domain.ErrBackendUnavailable

		_, err = uc.Checkout(ctx, "c1", "mpesa")
		assert.ErrorIs(t, err, domain.ErrBackendUnavailable)

		cart, err := carts.Get(ctx, "c1")
		require.NoError(t, err)
		assert.NotNil(t, cart.Coupon)
	})
}
