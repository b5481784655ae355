package usecase

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mutitpay-storefront/config"
	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/infrastructure/cache"
	pkgcache "mutitpay-storefront/pkg/cache"
)

// newTestCache has no janitor goroutine, so goleak stays quiet
func newTestCache() pkgcache.CacheService {
	return cache.NewMemoryCache(time.Minute, 0)
}

func testConfig() *config.Config {
	return &config.Config{
		SearchDebounce:         10 * time.Millisecond,
		SearchMinQueryLen:      2,
		SearchResultLimit:      8,
		SearchSuggestLimit:     5,
		SearchTimeout:          time.Second,
		SearchSeeMoreRatio:     0.6,
		SearchSeeMoreMinHit:    3,
		CacheCategoryTTL:       time.Minute,
		CacheProductTTL:        time.Minute,
		CacheRecommendationTTL: time.Minute,
		CacheStatsTTL:          time.Minute,
		MaxCartQuantity:        1000,
		SessionExpiry:          time.Hour,
	}
}

// fakeCatalog answers the public catalog calls from canned data
type fakeCatalog struct {
	mu sync.Mutex

	categories    []domain.Category
	subcategories []domain.Subcategory
	bestsellers   []domain.ProductSummary
	onSale        []domain.ProductSummary
	featured      []domain.ProductSummary
	products      map[string][]domain.ProductSummary
	searchErr     error
	recsErr       error

	// gates blocks the search for a query until the channel is closed
	gates   map[string]chan struct{}
	started chan string

	searches     []string
	searchCalls  atomic.Int32
	bestCalls    atomic.Int32
	categoryHits atomic.Int32
	detailCalls  atomic.Int32
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[string][]domain.ProductSummary{},
		gates:    map[string]chan struct{}{},
	}
}

func (f *fakeCatalog) SearchProducts(ctx context.Context, query string, limit int) ([]domain.ProductSummary, error) {
	f.searchCalls.Add(1)
	f.mu.Lock()
	f.searches = append(f.searches, query)
	gate := f.gates[query]
	started := f.started
	f.mu.Unlock()

	if started != nil {
		started <- query
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[strings.ToLower(query)], nil
}

func (f *fakeCatalog) Bestsellers(ctx context.Context, limit int) ([]domain.ProductSummary, error) {
	f.bestCalls.Add(1)
	if f.recsErr != nil {
		return nil, f.recsErr
	}
	return f.bestsellers, nil
}

func (f *fakeCatalog) OnSale(ctx context.Context, limit int) ([]domain.ProductSummary, error) {
	if f.recsErr != nil {
		return nil, f.recsErr
	}
	return f.onSale, nil
}

func (f *fakeCatalog) Featured(ctx context.Context, limit int) ([]domain.ProductSummary, error) {
	return f.featured, nil
}

func (f *fakeCatalog) Categories(ctx context.Context) ([]domain.Category, error) {
	f.categoryHits.Add(1)
	return f.categories, nil
}

func (f *fakeCatalog) Subcategories(ctx context.Context) ([]domain.Subcategory, error) {
	return f.subcategories, nil
}

func (f *fakeCatalog) ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.Page[domain.ProductSummary], error) {
	items := f.products[strings.ToLower(filter.Query)]
	return domain.Page[domain.ProductSummary]{Items: items, Pagination: domain.NewPagination(filter.Page, 20, int64(len(items)))}, nil
}

func (f *fakeCatalog) ProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	f.detailCalls.Add(1)
	if slug == "missing" {
		return nil, domain.ErrNotFound
	}
	return &domain.Product{ProductSummary: domain.ProductSummary{ID: 1, Slug: slug, Name: "Vestido"}}, nil
}

func (f *fakeCatalog) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	f.detailCalls.Add(1)
	return &domain.Product{ProductSummary: domain.ProductSummary{ID: id}}, nil
}

func (f *fakeCatalog) Colors(ctx context.Context) ([]domain.Color, error) {
	return []domain.Color{{ID: 1, Name: "Preto"}}, nil
}

func (f *fakeCatalog) Sizes(ctx context.Context) ([]domain.Size, error) {
	return []domain.Size{{ID: 1, Name: "M"}}, nil
}

func product(id, categoryID int64, name string) domain.ProductSummary {
	return domain.ProductSummary{ID: id, Name: name, Slug: strings.ToLower(name), CategoryID: categoryID, Price: 100}
}

// memStore is a CartStore backed by a map
type memStore struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
	err   error
}

func newMemStore() *memStore {
	return &memStore{carts: map[string]*domain.Cart{}}
}

func (s *memStore) Get(ctx context.Context, id string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.carts[id].Clone(), nil
}

func (s *memStore) Save(ctx context.Context, c *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.carts[c.ID] = c.Clone()
	return nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
	return nil
}

// fakeCoupons grants a fixed discount per code
type fakeCoupons struct {
	discounts map[string]float64
	messages  map[string]string
	err       error
	calls     []float64
}

func (f *fakeCoupons) ValidateCoupon(ctx context.Context, code string, cartTotal float64) (*domain.CouponValidation, error) {
	f.calls = append(f.calls, cartTotal)
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.discounts[code]; ok {
		return &domain.CouponValidation{Valid: true, DiscountAmount: d}, nil
	}
	return &domain.CouponValidation{Valid: false, ErrorMessage: f.messages[code]}, nil
}
