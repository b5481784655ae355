package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"mutitpay-storefront/internal/domain"

	"github.com/goccy/go-json"
)

func (c *Client) listProducts(ctx context.Context, path string, q url.Values, token string) ([]domain.ProductSummary, int64, error) {
	data, err := c.getList(ctx, request{path: path, query: q, token: token})
	if err != nil {
		return nil, 0, err
	}
	list, total, err := decodeList[productDTO](data)
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return c.toSummaries(list), total, nil
}

// ListProducts is the public catalog listing
func (c *Client) ListProducts(ctx context.Context, f domain.ProductFilter) (domain.Page[domain.ProductSummary], error) {
	q := url.Values{}
	if f.Query != "" {
		q.Set("search", f.Query)
	}
	if f.Category > 0 {
		q.Set("category", strconv.FormatInt(f.Category, 10))
	}
	if f.Subcategory > 0 {
		q.Set("subcategory", strconv.FormatInt(f.Subcategory, 10))
	}
	setBool(q, "is_featured", f.Featured)
	setBool(q, "is_bestseller", f.Bestseller)
	setBool(q, "is_on_sale", f.OnSale)
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}

	items, total, err := c.listProducts(ctx, "/api/products/", q, "")
	if err != nil {
		return domain.Page[domain.ProductSummary]{}, err
	}
	return domain.Page[domain.ProductSummary]{Items: items, Pagination: domain.NewPagination(f.Page, f.PageSize, total)}, nil
}

// SearchProducts runs the remote product search. Ranking is the API's.
func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]domain.ProductSummary, error) {
	q := url.Values{"search": {query}}
	if limit > 0 {
		q.Set("page_size", strconv.Itoa(limit))
	}
	items, _, err := c.listProducts(ctx, "/api/products/", q, "")
	return items, err
}

func (c *Client) Bestsellers(ctx context.Context, limit int) ([]domain.ProductSummary, error) {
	return c.highlighted(ctx, "/api/products/bestsellers/", limit)
}

func (c *Client) OnSale(ctx context.Context, limit int) ([]domain.ProductSummary, error) {
	return c.highlighted(ctx, "/api/products/on-sale/", limit)
}

func (c *Client) Featured(ctx context.Context, limit int) ([]domain.ProductSummary, error) {
	return c.highlighted(ctx, "/api/products/featured/", limit)
}

func (c *Client) highlighted(ctx context.Context, path string, limit int) ([]domain.ProductSummary, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	items, _, err := c.listProducts(ctx, path, q, "")
	return items, err
}

func (c *Client) ProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return c.product(ctx, "/api/products/"+url.PathEscape(slug)+"/", "")
}

func (c *Client) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	return c.product(ctx, fmt.Sprintf("/api/products/id/%d/", id), "")
}

func (c *Client) product(ctx context.Context, path, token string) (*domain.Product, error) {
	var dto productDTO
	if err := c.do(ctx, request{method: http.MethodGet, path: path, token: token}, &dto); err != nil {
		return nil, err
	}
	return c.toProduct(dto), nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	list, err := c.categoryList(ctx, "/api/products/categories/")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(list))
	for _, d := range list {
		out = append(out, c.toCategory(d))
	}
	return out, nil
}

func (c *Client) Subcategories(ctx context.Context) ([]domain.Subcategory, error) {
	list, err := c.categoryList(ctx, "/api/products/subcategories/")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Subcategory, 0, len(list))
	for _, d := range list {
		out = append(out, toSubcategory(d))
	}
	return out, nil
}

func (c *Client) categoryList(ctx context.Context, path string) ([]categoryDTO, error) {
	data, err := c.getList(ctx, request{path: path})
	if err != nil {
		return nil, err
	}
	list, _, err := decodeList[categoryDTO](data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return list, nil
}

func (c *Client) Colors(ctx context.Context) ([]domain.Color, error) {
	return fetchList[domain.Color](ctx, c, "/api/products/colors/")
}

func (c *Client) Sizes(ctx context.Context) ([]domain.Size, error) {
	return fetchList[domain.Size](ctx, c, "/api/products/sizes/")
}

func fetchList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	data, err := c.getList(ctx, request{path: path})
	if err != nil {
		return nil, err
	}
	list, _, err := decodeList[T](data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

// ValidateCoupon asks the API whether code applies to a cart worth cartTotal
func (c *Client) ValidateCoupon(ctx context.Context, code string, cartTotal float64) (*domain.CouponValidation, error) {
	var out struct {
		Valid          bool      `json:"valid"`
		DiscountAmount flexFloat `json:"discount_amount"`
		ErrorMessage   string    `json:"error_message"`
	}
	body := map[string]any{"code": code, "cart_total": cartTotal}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/cart/coupons/validate/", body: body}, &out); err != nil {
		// a 400 still carries the verdict
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest && apiErr.Body != "" {
			if jerr := json.Unmarshal([]byte(apiErr.Body), &out); jerr == nil && (out.ErrorMessage != "" || !out.Valid) {
				return &domain.CouponValidation{Valid: false, ErrorMessage: out.ErrorMessage}, nil
			}
		}
		return nil, err
	}
	return &domain.CouponValidation{
		Valid:          out.Valid,
		DiscountAmount: float64(out.DiscountAmount),
		ErrorMessage:   out.ErrorMessage,
	}, nil
}

func setBool(q url.Values, key string, v *bool) {
	if v != nil {
		q.Set(key, strconv.FormatBool(*v))
	}
}
