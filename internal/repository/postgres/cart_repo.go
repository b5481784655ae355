package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mutitpay-storefront/internal/domain"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const schema = `
CREATE TABLE IF NOT EXISTS storefront_carts (
	id         TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS storefront_carts_updated_at_idx ON storefront_carts (updated_at);
`

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CartRepository stores carts as JSONB rows. Rows older than ttl read as missing.
type CartRepository struct {
	db  DBTX
	ttl time.Duration
}

func NewCartRepository(db DBTX, ttl time.Duration) *CartRepository {
	return &CartRepository{db: db, ttl: ttl}
}

// EnsureSchema creates the carts table when absent
func (r *CartRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create cart schema: %w", err)
	}
	return nil
}

func (r *CartRepository) Get(ctx context.Context, id string) (*domain.Cart, error) {
	var payload []byte
	var updatedAt time.Time
	err := r.db.QueryRow(ctx,
		`SELECT payload, updated_at FROM storefront_carts WHERE id = $1`, id,
	).Scan(&payload, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart %s: %w", id, err)
	}
	if r.ttl > 0 && time.Since(updatedAt) > r.ttl {
		return nil, nil
	}

	var cart domain.Cart
	if err := json.Unmarshal(payload, &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart %s: %w", id, err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

// Save upserts the cart. Last write wins.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart %s: %w", cart.ID, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO storefront_carts (id, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		cart.ID, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to store cart %s: %w", cart.ID, err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM storefront_carts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", id, err)
	}
	return nil
}

// PurgeExpired removes carts untouched for longer than the TTL
func (r *CartRepository) PurgeExpired(ctx context.Context) (int64, error) {
	if r.ttl <= 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx,
		`DELETE FROM storefront_carts WHERE updated_at < $1`, time.Now().Add(-r.ttl),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge carts: %w", err)
	}
	return tag.RowsAffected(), nil
}
