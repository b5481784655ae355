package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mutitpay-storefront/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "https://media.mutitpay.com", 2*time.Second)
}

func TestSearchProducts_DecodesBothCategoryShapes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/", r.URL.Path)
		assert.Equal(t, "capulana", r.URL.Query().Get("search"))
		w.Write([]byte(`{"count": 2, "results": [
			{"id": 1, "name": "Capulana", "slug": "capulana", "price": "850.00", "category": 3, "main_image_url": "/media/a.jpg"},
			{"id": 2, "name": "Capulana Seda", "slug": "capulana-seda", "price": 1200, "original_price": "1500.00", "category": {"id": 4, "name": "Tecidos"}, "main_image": "https://cdn.x/b.jpg", "subcategory_name": "Seda"}
		]}`))
	})

	got, err := c.SearchProducts(context.Background(), "capulana", 8)
	require.NoError(t, err)

	old := 1500.0
	want := []domain.ProductSummary{
		{ID: 1, Name: "Capulana", Slug: "capulana", Price: 850, CategoryID: 3, ThumbnailURL: "https://media.mutitpay.com/media/a.jpg"},
		{ID: 2, Name: "Capulana Seda", Slug: "capulana-seda", Price: 1200, OldPrice: &old, CategoryID: 4, CategoryName: "Tecidos", SubcategoryName: "Seda", ThumbnailURL: "https://cdn.x/b.jpg"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("products mismatch (-want +got):\n%s", diff)
	}
}

func TestBestsellers_BareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/bestsellers/", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"id": 9, "name": "Bolsa", "slug": "bolsa", "price": 10, "is_bestseller": true}]`))
	})

	got, err := c.Bestsellers(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsBestseller)
}

func TestErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "Not found."}`))
		})
		_, err := c.ProductBySlug(context.Background(), "nada")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.True(t, IsAPIStatus(err, http.StatusNotFound))
		assert.Contains(t, err.Error(), "Not found.")
	})

	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := c.Categories(context.Background())
		assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	})

	t.Run("transport failure", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", "", time.Second)
		_, err := c.Categories(context.Background())
		assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	})

	t.Run("field errors", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"slug": ["product with this slug already exists."]}`))
		})
		_, err := c.CreateProduct(context.Background(), "tok", domain.ProductInput{Name: "x"})
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "slug: product with this slug already exists.", apiErr.Message)
	})
}

func TestValidateCoupon(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/cart/coupons/validate/", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), `"BEMVINDO"`) {
			assert.Contains(t, string(body), `"cart_total":2000`)
			w.Write([]byte(`{"valid": true, "discount_amount": "200.00"}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"valid": false, "error_message": "Cupom expirado"}`))
	})

	ok, err := c.ValidateCoupon(context.Background(), "BEMVINDO", 2000)
	require.NoError(t, err)
	assert.True(t, ok.Valid)
	assert.Equal(t, 200.0, ok.DiscountAmount)

	bad, err := c.ValidateCoupon(context.Background(), "VELHO", 2000)
	require.NoError(t, err)
	assert.False(t, bad.Valid)
	assert.Equal(t, "Cupom expirado", bad.ErrorMessage)
}

func TestAdminCallsForwardToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer id-token", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/cart/admin/orders/stats/":
			w.Write([]byte(`{"stats": {"today_orders": 4, "today_revenue": "5400.50"}}`))
		case "/api/customers/admin/":
			w.Write([]byte(`{"count": 37, "results": []}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	stats, err := c.OrderStats(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TodayOrders)
	assert.Equal(t, 5400.5, stats.TodayRevenue)

	n, err := c.CustomerCount(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, int64(37), n)
}

func TestCustomerCount_BareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1}, {"id": 2}, {"id": 3}]`))
	})
	n, err := c.CustomerCount(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestOrders_OrdersEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "1000", q.Get("page_size"))
		assert.Equal(t, "2026-10-14", q.Get("date_from"))
		w.Write([]byte(`{"orders": [
			{"id": 1, "total_amount": "100.00", "shipping_cost": "20.00"},
			{"id": 2, "total_amount": 50, "shipping_cost": 0}
		]}`))
	})

	page, err := c.Orders(context.Background(), "t", domain.OrderFilter{
		ListParams: domain.ListParams{Page: 1, PageSize: 1000},
		DateFrom:   "2026-10-14",
		DateTo:     "2026-10-14",
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 120.0, page.Items[0].GrandTotal())
	assert.Equal(t, int64(2), page.Pagination.TotalItems)
}

func TestUploadImage_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "12", r.FormValue("product"))
		assert.Equal(t, "Imagem principal", r.FormValue("alt_text"))
		assert.Equal(t, "true", r.FormValue("is_main"))
		assert.Equal(t, "1", r.FormValue("order"))
		file, hdr, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		assert.Equal(t, "a.webp", hdr.Filename)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 99, "product": 12, "image": "/media/products/a.webp", "is_main": true, "order": 1}`))
	})

	img, err := c.UploadImage(context.Background(), "t", domain.ImageUpload{
		ProductID: 12, AltText: "Imagem principal", IsMain: true, Order: 1,
		Data: []byte("RIFF"), ContentType: "image/webp", Filename: "a.webp",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99), img.ID)
	assert.Equal(t, "https://media.mutitpay.com/media/products/a.webp", img.URL)
}

func TestUploadImage_ByURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "https://cdn.mutitpay.com/products/x.webp", r.FormValue("image_url"))
		_, _, err := r.FormFile("image")
		assert.Error(t, err)
		w.Write([]byte(`{"id": 5, "image_url": "https://cdn.mutitpay.com/products/x.webp"}`))
	})

	img, err := c.UploadImage(context.Background(), "t", domain.ImageUpload{ProductID: 1, URL: "https://cdn.mutitpay.com/products/x.webp"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.mutitpay.com/products/x.webp", img.URL)
	assert.Equal(t, int64(1), img.Product)
}
