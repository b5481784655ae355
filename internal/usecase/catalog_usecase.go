package usecase

import (
	"context"
	"fmt"
	"strings"

	"mutitpay-storefront/config"
	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/pkg/cache"
)

// Cache keys shared by the catalog and search usecases. Everything under
// catalogPrefix is dropped when an admin edits the catalog.
const (
	catalogPrefix    = "catalog:"
	keyCategories    = catalogPrefix + "categories"
	keySubcategories = catalogPrefix + "subcategories"
	keyColors        = catalogPrefix + "colors"
	keySizes         = catalogPrefix + "sizes"
)

func keyHighlight(kind string, limit int) string {
	return fmt.Sprintf("%s%s:%d", catalogPrefix, kind, limit)
}

func keyProductSlug(slug string) string {
	return catalogPrefix + "product:slug:" + slug
}

func keyProductID(id int64) string {
	return fmt.Sprintf("%sproduct:id:%d", catalogPrefix, id)
}

// CatalogAPI is the public half of the commerce API
type CatalogAPI interface {
	ListProducts(ctx context.Context, f domain.ProductFilter) (domain.Page[domain.ProductSummary], error)
	ProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ProductByID(ctx context.Context, id int64) (*domain.Product, error)
	Featured(ctx context.Context, limit int) ([]domain.ProductSummary, error)
	Bestsellers(ctx context.Context, limit int) ([]domain.ProductSummary, error)
	OnSale(ctx context.Context, limit int) ([]domain.ProductSummary, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Subcategories(ctx context.Context) ([]domain.Subcategory, error)
	Colors(ctx context.Context) ([]domain.Color, error)
	Sizes(ctx context.Context) ([]domain.Size, error)
}

// Highlight lists served on the home page
const (
	HighlightFeatured   = "featured"
	HighlightBestseller = "bestsellers"
	HighlightOnSale     = "on_sale"
)

type CatalogUsecase struct {
	api   CatalogAPI
	cache cache.CacheService
	cfg   *config.Config
}

func NewCatalogUsecase(api CatalogAPI, c cache.CacheService, cfg *config.Config) *CatalogUsecase {
	return &CatalogUsecase{api: api, cache: c, cfg: cfg}
}

// ListProducts is never cached, filters make the key space unbounded
func (u *CatalogUsecase) ListProducts(ctx context.Context, f domain.ProductFilter) (domain.Page[domain.ProductSummary], error) {
	f.Query = strings.TrimSpace(f.Query)
	if f.Page < 1 {
		f.Page = 1
	}
	return u.api.ListProducts(ctx, f)
}

func (u *CatalogUsecase) ProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.ErrNotFound
	}
	return cache.Remember(u.cache, keyProductSlug(slug), u.cfg.CacheProductTTL, func() (*domain.Product, error) {
		return u.api.ProductBySlug(ctx, slug)
	})
}

func (u *CatalogUsecase) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.ErrNotFound
	}
	return cache.Remember(u.cache, keyProductID(id), u.cfg.CacheProductTTL, func() (*domain.Product, error) {
		return u.api.ProductByID(ctx, id)
	})
}

// Highlights returns one of the home page lists
func (u *CatalogUsecase) Highlights(ctx context.Context, kind string, limit int) ([]domain.ProductSummary, error) {
	if limit < 1 {
		limit = 8
	}
	var load func(context.Context, int) ([]domain.ProductSummary, error)
	switch kind {
	case HighlightFeatured:
		load = u.api.Featured
	case HighlightBestseller:
		load = u.api.Bestsellers
	case HighlightOnSale:
		load = u.api.OnSale
	default:
		return nil, domain.NewValidationError("Lista desconhecida: " + kind)
	}
	return cache.Remember(u.cache, keyHighlight(kind, limit), u.cfg.CacheRecommendationTTL, func() ([]domain.ProductSummary, error) {
		return load(ctx, limit)
	})
}

// Categories returns the active categories in display order
func (u *CatalogUsecase) Categories(ctx context.Context) ([]domain.Category, error) {
	all, err := cache.Remember(u.cache, keyCategories, u.cfg.CacheCategoryTTL, func() ([]domain.Category, error) {
		return u.api.Categories(ctx)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(all))
	for _, c := range all {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

// Subcategories optionally narrowed to one parent category
func (u *CatalogUsecase) Subcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	all, err := cache.Remember(u.cache, keySubcategories, u.cfg.CacheCategoryTTL, func() ([]domain.Subcategory, error) {
		return u.api.Subcategories(ctx)
	})
	if err != nil {
		return nil, err
	}
	if categoryID == 0 {
		return all, nil
	}
	out := make([]domain.Subcategory, 0)
	for _, s := range all {
		if s.Category == categoryID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (u *CatalogUsecase) Colors(ctx context.Context) ([]domain.Color, error) {
	return cache.Remember(u.cache, keyColors, u.cfg.CacheCategoryTTL, func() ([]domain.Color, error) {
		return u.api.Colors(ctx)
	})
}

func (u *CatalogUsecase) Sizes(ctx context.Context) ([]domain.Size, error) {
	return cache.Remember(u.cache, keySizes, u.cfg.CacheCategoryTTL, func() ([]domain.Size, error) {
		return u.api.Sizes(ctx)
	})
}

// Invalidate drops every cached catalog entry
func (u *CatalogUsecase) Invalidate() {
	u.cache.DeletePrefix(catalogPrefix)
}
