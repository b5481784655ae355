package usecase

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"mutitpay-storefront/config"
	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/pkg/cache"
	"mutitpay-storefront/pkg/logger"
	"mutitpay-storefront/pkg/utils"

	"golang.org/x/sync/errgroup"
)

const (
	keyOrderStats   = "admin:stats:orders"
	keyProductStats = "admin:stats:products"

	// statsFallbackPageSize is how many of today's orders are summed when
	// the stats endpoint is down
	statsFallbackPageSize = 1000

	msgCategoryNameRequired = "Nome da categoria é obrigatório"
	msgParentRequired       = "Categoria é obrigatória"
	msgInvalidOrderStatus   = "Estado de pedido inválido"
	msgImageRequired        = "Selecione uma imagem"
)

// AdminAPI is the authenticated half of the commerce API. Every call takes
// the admin's provider ID token.
type AdminAPI interface {
	AdminProducts(ctx context.Context, token string, p domain.ListParams) (domain.Page[domain.ProductSummary], error)
	AdminProduct(ctx context.Context, token string, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, token string, id int64, in domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, token string, id int64) error
	ProductStats(ctx context.Context, token string) (*domain.ProductStats, error)

	CreateCategory(ctx context.Context, token string, in domain.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, token string, id int64, in domain.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, token string, id int64) error
	CreateSubcategory(ctx context.Context, token string, in domain.CategoryInput) (*domain.Subcategory, error)
	UpdateSubcategory(ctx context.Context, token string, id int64, in domain.CategoryInput) (*domain.Subcategory, error)
	DeleteSubcategory(ctx context.Context, token string, id int64) error

	UploadImage(ctx context.Context, token string, up domain.ImageUpload) (*domain.ProductImage, error)
	ProductImages(ctx context.Context, token string, productID int64) ([]domain.ProductImage, error)
	DeleteImage(ctx context.Context, token string, imageID int64) error

	OrderStats(ctx context.Context, token string) (*domain.OrderStats, error)
	Orders(ctx context.Context, token string, f domain.OrderFilter) (domain.Page[domain.Order], error)
	UpdateOrderStatus(ctx context.Context, token string, id int64, status string) error
	Customers(ctx context.Context, token string, p domain.ListParams) (domain.Page[domain.Customer], error)
	CustomerCount(ctx context.Context, token string) (int64, error)
}

// MediaStore keeps processed product images outside the commerce API
type MediaStore interface {
	UploadBuffer(ctx context.Context, data []byte, contentType string) (string, error)
	Owns(fileURL string) bool
	DeleteFile(ctx context.Context, fileURL string) error
}

type AdminUsecase struct {
	api   AdminAPI
	media MediaStore
	cache cache.CacheService
	cfg   *config.Config
	now   func() time.Time
}

// NewAdminUsecase wires the admin console. media is nil when images are
// uploaded straight to the commerce API.
func NewAdminUsecase(api AdminAPI, media MediaStore, c cache.CacheService, cfg *config.Config) *AdminUsecase {
	return &AdminUsecase{api: api, media: media, cache: c, cfg: cfg, now: time.Now}
}

func (u *AdminUsecase) invalidateCatalog() {
	u.cache.DeletePrefix(catalogPrefix)
	u.cache.Delete(keyProductStats)
}

// --- Products ---

func (u *AdminUsecase) ListProducts(ctx context.Context, token string, p domain.ListParams) (domain.Page[domain.ProductSummary], error) {
	return u.api.AdminProducts(ctx, token, p.Normalized())
}

func (u *AdminUsecase) GetProduct(ctx context.Context, token string, id int64) (*domain.Product, error) {
	return u.api.AdminProduct(ctx, token, id)
}

// prepareProduct validates the payload and fills the derived fields
func prepareProduct(in *domain.ProductInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	in.ApplyDefaults()
	if strings.TrimSpace(in.Slug) == "" {
		in.Slug = utils.GenerateSlug(in.Name)
	}
	return nil
}

func (u *AdminUsecase) CreateProduct(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error) {
	if err := prepareProduct(&in); err != nil {
		return nil, err
	}
	p, err := u.api.CreateProduct(ctx, token, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	u.invalidateCatalog()
	logger.WithContext(ctx).Info().Int64("product_id", p.ID).Str("slug", p.Slug).Msg("Product created")
	return p, nil
}

func (u *AdminUsecase) UpdateProduct(ctx context.Context, token string, id int64, in domain.ProductInput) (*domain.Product, error) {
	if err := prepareProduct(&in); err != nil {
		return nil, err
	}
	p, err := u.api.UpdateProduct(ctx, token, id, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	u.invalidateCatalog()
	return p, nil
}

func (u *AdminUsecase) DeleteProduct(ctx context.Context, token string, id int64) error {
	if err := u.api.DeleteProduct(ctx, token, id); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	u.invalidateCatalog()
	logger.WithContext(ctx).Info().Int64("product_id", id).Msg("Product deleted")
	return nil
}

func (u *AdminUsecase) ProductStats(ctx context.Context, token string) (*domain.ProductStats, error) {
	return cache.Remember(u.cache, keyProductStats, u.cfg.CacheStatsTTL, func() (*domain.ProductStats, error) {
		return u.api.ProductStats(ctx, token)
	})
}

// --- Categories ---

func prepareCategory(in *domain.CategoryInput, needsParent bool) error {
	in.Name = strings.TrimSpace(in.Name)
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = msgCategoryNameRequired
	}
	if needsParent && in.Parent <= 0 {
		fields["category"] = msgParentRequired
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Message: msgCategoryNameRequired, Fields: fields}
	}
	if !needsParent {
		in.Parent = 0
	}
	if strings.TrimSpace(in.Slug) == "" {
		in.Slug = utils.GenerateSlug(in.Name)
	}
	return nil
}

func (u *AdminUsecase) CreateCategory(ctx context.Context, token string, in domain.CategoryInput) (*domain.Category, error) {
	if err := prepareCategory(&in, false); err != nil {
		return nil, err
	}
	c, err := u.api.CreateCategory(ctx, token, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	u.invalidateCatalog()
	return c, nil
}

func (u *AdminUsecase) UpdateCategory(ctx context.Context, token string, id int64, in domain.CategoryInput) (*domain.Category, error) {
	if err := prepareCategory(&in, false); err != nil {
		return nil, err
	}
	c, err := u.api.UpdateCategory(ctx, token, id, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	u.invalidateCatalog()
	return c, nil
}

func (u *AdminUsecase) DeleteCategory(ctx context.Context, token string, id int64) error {
	if err := u.api.DeleteCategory(ctx, token, id); err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	u.invalidateCatalog()
	return nil
}

func (u *AdminUsecase) CreateSubcategory(ctx context.Context, token string, in domain.CategoryInput) (*domain.Subcategory, error) {
	if err := prepareCategory(&in, true); err != nil {
		return nil, err
	}
	s, err := u.api.CreateSubcategory(ctx, token, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create subcategory: %w", err)
	}
	u.invalidateCatalog()
	return s, nil
}

func (u *AdminUsecase) UpdateSubcategory(ctx context.Context, token string, id int64, in domain.CategoryInput) (*domain.Subcategory, error) {
	if err := prepareCategory(&in, true); err != nil {
		return nil, err
	}
	s, err := u.api.UpdateSubcategory(ctx, token, id, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update subcategory %d: %w", id, err)
	}
	u.invalidateCatalog()
	return s, nil
}

func (u *AdminUsecase) DeleteSubcategory(ctx context.Context, token string, id int64) error {
	if err := u.api.DeleteSubcategory(ctx, token, id); err != nil {
		return fmt.Errorf("failed to delete subcategory %d: %w", id, err)
	}
	u.invalidateCatalog()
	return nil
}

// --- Images ---

// UploadImage resizes and re-encodes the image, then hands it to the API,
// through the media store when one is configured
func (u *AdminUsecase) UploadImage(ctx context.Context, token string, up domain.ImageUpload) (*domain.ProductImage, error) {
	if len(up.Data) == 0 {
		return nil, domain.NewValidationError(msgImageRequired)
	}
	data, contentType, err := utils.ProcessImage(bytes.NewReader(up.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}
	up.AltText = domain.ImageAltText(up.IsMain, up.AltText)
	up.ContentType = contentType
	up.Filename = strings.TrimSuffix(filepath.Base(up.Filename), filepath.Ext(up.Filename)) + utils.ExtensionFor(contentType)

	if u.media == nil {
		up.Data = data
		img, err := u.api.UploadImage(ctx, token, up)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		u.invalidateCatalog()
		return img, nil
	}

	fileURL, err := u.media.UploadBuffer(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	up.URL = fileURL
	up.Data = nil
	img, err := u.api.UploadImage(ctx, token, up)
	if err != nil {
		// the API never learned about the object
		if delErr := u.media.DeleteFile(context.WithoutCancel(ctx), fileURL); delErr != nil {
			logger.WithContext(ctx).Warn().Err(delErr).Str("url", fileURL).Msg("Failed to remove orphaned image")
		}
		return nil, fmt.Errorf("failed to register image: %w", err)
	}
	u.invalidateCatalog()
	return img, nil
}

func (u *AdminUsecase) ProductImages(ctx context.Context, token string, productID int64) ([]domain.ProductImage, error) {
	return u.api.ProductImages(ctx, token, productID)
}

// DeleteImage removes the image record and, when it lives in the media
// store, the stored object
func (u *AdminUsecase) DeleteImage(ctx context.Context, token string, productID, imageID int64) error {
	var stored string
	if u.media != nil {
		imgs, err := u.api.ProductImages(ctx, token, productID)
		if err != nil {
			return fmt.Errorf("failed to list images: %w", err)
		}
		for _, img := range imgs {
			if img.ID == imageID && u.media.Owns(img.URL) {
				stored = img.URL
			}
		}
	}
	if err := u.api.DeleteImage(ctx, token, imageID); err != nil {
		return fmt.Errorf("failed to delete image %d: %w", imageID, err)
	}
	if stored != "" {
		if err := u.media.DeleteFile(ctx, stored); err != nil {
			logger.WithContext(ctx).Warn().Err(err).Str("url", stored).Msg("Failed to delete stored image")
		}
	}
	u.invalidateCatalog()
	return nil
}

// --- Orders & customers ---

func (u *AdminUsecase) Orders(ctx context.Context, token string, f domain.OrderFilter) (domain.Page[domain.Order], error) {
	f.ListParams = f.ListParams.Normalized()
	f.Status = strings.TrimSpace(f.Status)
	if f.Status != "" && !domain.IsOrderStatus(f.Status) {
		return domain.Page[domain.Order]{}, domain.NewValidationError(msgInvalidOrderStatus)
	}
	return u.api.Orders(ctx, token, f)
}

func (u *AdminUsecase) UpdateOrderStatus(ctx context.Context, token string, id int64, status string) error {
	status = strings.TrimSpace(status)
	if !domain.IsOrderStatus(status) {
		return domain.NewValidationError(msgInvalidOrderStatus)
	}
	if err := u.api.UpdateOrderStatus(ctx, token, id, status); err != nil {
		return fmt.Errorf("failed to update order %d: %w", id, err)
	}
	u.cache.Delete(keyOrderStats)
	logger.WithContext(ctx).Info().Int64("order_id", id).Str("status", status).Msg("Order status updated")
	return nil
}

// OrderStats prefers the aggregated endpoint and falls back to summing
// today's orders
func (u *AdminUsecase) OrderStats(ctx context.Context, token string) (*domain.OrderStats, error) {
	return cache.Remember(u.cache, keyOrderStats, u.cfg.CacheStatsTTL, func() (*domain.OrderStats, error) {
		stats, err := u.api.OrderStats(ctx, token)
		if err == nil {
			return stats, nil
		}
		logger.WithContext(ctx).Warn().Err(err).Msg("Order stats endpoint failed, summing today's orders")
		return u.estimateOrderStats(ctx, token)
	})
}

func (u *AdminUsecase) estimateOrderStats(ctx context.Context, token string) (*domain.OrderStats, error) {
	today := u.now().Format("2006-01-02")
	page, err := u.api.Orders(ctx, token, domain.OrderFilter{
		ListParams: domain.ListParams{Page: 1, PageSize: statsFallbackPageSize},
		DateFrom:   today,
		DateTo:     today,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list today's orders: %w", err)
	}
	stats := &domain.OrderStats{TodayOrders: len(page.Items), Estimated: true}
	for _, o := range page.Items {
		stats.TodayRevenue += o.GrandTotal()
		if o.Status == domain.OrderStatusPending {
			stats.Pending++
		}
	}
	return stats, nil
}

func (u *AdminUsecase) Customers(ctx context.Context, token string, p domain.ListParams) (domain.Page[domain.Customer], error) {
	return u.api.Customers(ctx, token, p.Normalized())
}

// Dashboard loads the three landing page counters side by side
func (u *AdminUsecase) Dashboard(ctx context.Context, token string) (*domain.Dashboard, error) {
	var d domain.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := u.OrderStats(gctx, token)
		if err != nil {
			return err
		}
		d.Orders = *s
		return nil
	})
	g.Go(func() error {
		s, err := u.ProductStats(gctx, token)
		if err != nil {
			return err
		}
		d.Products = *s
		return nil
	})
	g.Go(func() error {
		n, err := u.api.CustomerCount(gctx, token)
		if err != nil {
			return err
		}
		d.Customers = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}
	return &d, nil
}
