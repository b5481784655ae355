package usecase

import (
	"context"
	"testing"

	"mutitpay-storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_ProductBySlugIsCached(t *testing.T) {
	f := newFakeCatalog()
	uc := NewCatalogUsecase(f, newTestCache(), testConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := uc.ProductBySlug(ctx, "vestido-azul")
		require.NoError(t, err)
		assert.Equal(t, "vestido-azul", p.Slug)
	}
	assert.Equal(t, int32(1), f.detailCalls.Load())

	uc.Invalidate()
	_, err := uc.ProductBySlug(ctx, "vestido-azul")
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.detailCalls.Load())
}

func TestCatalog_ProductNotFound(t *testing.T) {
	f := newFakeCatalog()
	uc := NewCatalogUsecase(f, newTestCache(), testConfig())
	ctx := context.Background()

	_, err := uc.ProductBySlug(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.ProductByID(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.detailCalls.Load())

	_, err = uc.ProductBySlug(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalog_Highlights(t *testing.T) {
	f := newFakeCatalog()
	f.bestsellers = []domain.ProductSummary{product(1, 1, "Vestido")}
	f.featured = []domain.ProductSummary{product(2, 1, "Blusa"), product(3, 1, "Saia")}
	uc := NewCatalogUsecase(f, newTestCache(), testConfig())
	ctx := context.Background()

	got, err := uc.Highlights(ctx, HighlightFeatured, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = uc.Highlights(ctx, HighlightBestseller, 4)
	require.NoError(t, err)
	_, err = uc.Highlights(ctx, HighlightBestseller, 4)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.bestCalls.Load())

	_, err = uc.Highlights(ctx, "trending", 4)
	_, ok := domain.IsValidation(err)
	assert.True(t, ok)
}

func TestCatalog_CategoriesAndSubcategories(t *testing.T) {
	uc := NewCatalogUsecase(seededCatalog(), newTestCache(), testConfig())
	ctx := context.Background()

	cats, err := uc.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2, "inactive categories are hidden")

	subs, err := uc.Subcategories(ctx, 2)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Sandálias", subs[0].Name)

	all, err := uc.Subcategories(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := uc.Subcategories(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCatalog_ListProductsTrimsQuery(t *testing.T) {
	f := newFakeCatalog()
	f.products["saia"] = []domain.ProductSummary{product(1, 1, "Saia")}
	uc := NewCatalogUsecase(f, newTestCache(), testConfig())

	page, err := uc.ListProducts(context.Background(), domain.ProductFilter{Query: "  saia "})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Pagination.Page)
}
