package v1

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mutitpay-storefront/config"
	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/infrastructure/cache"
	"mutitpay-storefront/internal/infrastructure/identity"
	"mutitpay-storefront/internal/repository/memory"
	"mutitpay-storefront/internal/usecase"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		SearchDebounce:         5 * time.Millisecond,
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
		MaxUploadSizeMB:        1,
		SessionExpiry:          time.Hour,
	}
}

// fakeSearcher serves every search from one canned product list
type fakeSearcher struct {
	products []domain.ProductSummary
}

func (f *fakeSearcher) SearchProducts(ctx context.Context, query string, limit int) ([]domain.ProductSummary, error) {
	return f.products, nil
}

func (f *fakeSearcher) Bestsellers(ctx context.Context, limit int) ([]domain.ProductSummary, error) {
	return f.products, nil
}

func (f *fakeSearcher) OnSale(ctx context.Context, limit int) ([]domain.ProductSummary, error) {
	return nil, nil
}

func (f *fakeSearcher) Categories(ctx context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: 3, Name: "Vestidos", IsActive: true}}, nil
}

func (f *fakeSearcher) Subcategories(ctx context.Context) ([]domain.Subcategory, error) {
	return nil, nil
}

func newSearchUsecase() *usecase.SearchUsecase {
	return usecase.NewSearchUsecase(&fakeSearcher{products: []domain.ProductSummary{
		{ID: 1, Name: "Vestido Floral", Slug: "vestido-floral", Price: 1500, CategoryID: 3},
	}}, cache.NewMemoryCache(time.Minute, 0), testConfig())
}

// fakeCoupons grants 100 off for MUTITPAY10 and refuses the rest
type fakeCoupons struct {
	err error
}

func (f *fakeCoupons) ValidateCoupon(ctx context.Context, code string, cartTotal float64) (*domain.CouponValidation, error) {
	if f.err != nil {
		return nil, f.err
	}
	if code == "MUTITPAY10" {
		return &domain.CouponValidation{Valid: true, DiscountAmount: 100}, nil
	}
	return &domain.CouponValidation{Valid: false, ErrorMessage: "Cupão expirado"}, nil
}

func newCartUsecase(coupons domain.CouponValidator) *usecase.CartUsecase {
	store := memory.NewCartRepository(cache.NewMemoryCache(time.Hour, 0), time.Hour)
	return usecase.NewCartUsecase(store, coupons, 1000)
}

// fakeIdentity accepts one password and one refresh token
type fakeIdentity struct {
	refreshErr error
}

func (f *fakeIdentity) account() *identity.Account {
	return &identity.Account{
		UID:          "uid-1",
		Email:        "ana@mutitpay.com",
		DisplayName:  "Ana",
		IDToken:      "id-token",
		RefreshToken: "refresh-1",
		ExpiresIn:    time.Hour,
	}
}

func (f *fakeIdentity) SignInWithPassword(ctx context.Context, email, password string) (*identity.Account, error) {
	if password != "segredo123" {
		return nil, &identity.ProviderError{Code: domain.AuthWrongPassword}
	}
	return f.account(), nil
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password, displayName string) (*identity.Account, error) {
	acc := f.account()
	acc.Email = email
	acc.DisplayName = displayName
	return acc, nil
}

func (f *fakeIdentity) SendPasswordReset(ctx context.Context, email string) error {
	return nil
}

func (f *fakeIdentity) SignInWithGoogle(ctx context.Context, googleIDToken string) (*identity.Account, error) {
	return f.account(), nil
}

func (f *fakeIdentity) Refresh(ctx context.Context, refreshToken string) (*identity.Account, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	acc := f.account()
	acc.RefreshToken = "refresh-2"
	return acc, nil
}

func (f *fakeIdentity) Lookup(ctx context.Context, idToken string) (*identity.Account, error) {
	return f.account(), nil
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func withUser(r *http.Request, u *domain.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), domain.UserContextKey, u))
}
