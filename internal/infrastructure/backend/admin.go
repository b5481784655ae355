package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"mutitpay-storefront/internal/domain"
)

func listQuery(p domain.ListParams) url.Values {
	p = p.Normalized()
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("page_size", strconv.Itoa(p.PageSize))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

// AdminProducts lists every product, inactive ones included
func (c *Client) AdminProducts(ctx context.Context, token string, p domain.ListParams) (domain.Page[domain.ProductSummary], error) {
	p = p.Normalized()
	items, total, err := c.listProducts(ctx, "/api/products/admin/products/", listQuery(p), token)
	if err != nil {
		return domain.Page[domain.ProductSummary]{}, err
	}
	return domain.Page[domain.ProductSummary]{Items: items, Pagination: domain.NewPagination(p.Page, p.PageSize, total)}, nil
}

func (c *Client) AdminProduct(ctx context.Context, token string, id int64) (*domain.Product, error) {
	return c.product(ctx, fmt.Sprintf("/api/products/admin/products/%d/", id), token)
}

func (c *Client) CreateProduct(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error) {
	var dto productDTO
	err := c.do(ctx, request{method: http.MethodPost, path: "/api/products/admin/products/", body: in, token: token}, &dto)
	if err != nil {
		return nil, err
	}
	return c.toProduct(dto), nil
}

func (c *Client) UpdateProduct(ctx context.Context, token string, id int64, in domain.ProductInput) (*domain.Product, error) {
	var dto productDTO
	path := fmt.Sprintf("/api/products/admin/products/%d/", id)
	if err := c.do(ctx, request{method: http.MethodPut, path: path, body: in, token: token}, &dto); err != nil {
		return nil, err
	}
	return c.toProduct(dto), nil
}

func (c *Client) DeleteProduct(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/api/products/admin/products/%d/", id)
	return c.do(ctx, request{method: http.MethodDelete, path: path, token: token}, nil)
}

func (c *Client) ProductStats(ctx context.Context, token string) (*domain.ProductStats, error) {
	var out domain.ProductStats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/products/admin/stats/", token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCategory(ctx context.Context, token string, in domain.CategoryInput) (*domain.Category, error) {
	var dto categoryDTO
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/products/admin/categories/", body: in, token: token}, &dto); err != nil {
		return nil, err
	}
	cat := c.toCategory(dto)
	return &cat, nil
}

func (c *Client) UpdateCategory(ctx context.Context, token string, id int64, in domain.CategoryInput) (*domain.Category, error) {
	var dto categoryDTO
	path := fmt.Sprintf("/api/products/admin/categories/%d/", id)
	if err := c.do(ctx, request{method: http.MethodPut, path: path, body: in, token: token}, &dto); err != nil {
		return nil, err
	}
	cat := c.toCategory(dto)
	return &cat, nil
}

func (c *Client) DeleteCategory(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/api/products/admin/categories/%d/", id)
	return c.do(ctx, request{method: http.MethodDelete, path: path, token: token}, nil)
}

func (c *Client) CreateSubcategory(ctx context.Context, token string, in domain.CategoryInput) (*domain.Subcategory, error) {
	var dto categoryDTO
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/products/admin/subcategories/", body: in, token: token}, &dto); err != nil {
		return nil, err
	}
	sub := toSubcategory(dto)
	return &sub, nil
}

func (c *Client) UpdateSubcategory(ctx context.Context, token string, id int64, in domain.CategoryInput) (*domain.Subcategory, error) {
	var dto categoryDTO
	path := fmt.Sprintf("/api/products/admin/subcategories/%d/", id)
	if err := c.do(ctx, request{method: http.MethodPut, path: path, body: in, token: token}, &dto); err != nil {
		return nil, err
	}
	sub := toSubcategory(dto)
	return &sub, nil
}

func (c *Client) DeleteSubcategory(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/api/products/admin/subcategories/%d/", id)
	return c.do(ctx, request{method: http.MethodDelete, path: path, token: token}, nil)
}

// UploadImage posts one product image as multipart. When up.URL is set the
// API receives image_url instead of a file part.
func (c *Client) UploadImage(ctx context.Context, token string, up domain.ImageUpload) (*domain.ProductImage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"product", strconv.FormatInt(up.ProductID, 10)},
		{"alt_text", up.AltText},
		{"is_main", strconv.FormatBool(up.IsMain)},
		{"order", strconv.Itoa(up.Order)},
	}
	if up.URL != "" {
		fields = append(fields, [2]string{"image_url", up.URL})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	if up.URL == "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, up.Filename))
		h.Set("Content-Type", up.ContentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(up.Data); err != nil {
			return nil, fmt.Errorf("write image part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var dto imageDTO
	req := request{
		method:      http.MethodPost,
		path:        "/api/products/images/",
		raw:         &buf,
		contentType: mw.FormDataContentType(),
		token:       token,
	}
	if err := c.do(ctx, req, &dto); err != nil {
		return nil, err
	}
	img := c.toImage(dto, up.ProductID)
	return &img, nil
}

func (c *Client) ProductImages(ctx context.Context, token string, productID int64) ([]domain.ProductImage, error) {
	path := fmt.Sprintf("/api/products/%d/images/", productID)
	data, err := c.getList(ctx, request{path: path, token: token})
	if err != nil {
		return nil, err
	}
	list, _, err := decodeList[imageDTO](data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	out := make([]domain.ProductImage, 0, len(list))
	for _, d := range list {
		out = append(out, c.toImage(d, productID))
	}
	return out, nil
}

func (c *Client) DeleteImage(ctx context.Context, token string, imageID int64) error {
	path := fmt.Sprintf("/api/products/images/%d/", imageID)
	return c.do(ctx, request{method: http.MethodDelete, path: path, token: token}, nil)
}
