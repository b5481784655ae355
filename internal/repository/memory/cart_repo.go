package memory

import (
	"context"
	"time"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/pkg/cache"
)

const cartKeyPrefix = "cart:"

// CartRepository keeps carts in the process cache. Carts are lost on restart.
type CartRepository struct {
	cache cache.CacheService
	ttl   time.Duration
}

func NewCartRepository(c cache.CacheService, ttl time.Duration) *CartRepository {
	return &CartRepository{cache: c, ttl: ttl}
}

func (r *CartRepository) Get(ctx context.Context, id string) (*domain.Cart, error) {
	val, found := r.cache.Get(cartKeyPrefix + id)
	if !found {
		return nil, nil
	}
	cart, ok := val.(*domain.Cart)
	if !ok {
		return nil, nil
	}
	return cart.Clone(), nil
}

func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	r.cache.Set(cartKeyPrefix+cart.ID, cart.Clone(), r.ttl)
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, id string) error {
	r.cache.Delete(cartKeyPrefix + id)
	return nil
}
