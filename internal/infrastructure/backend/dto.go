package backend

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"mutitpay-storefront/internal/domain"

	"github.com/goccy/go-json"
)

// flexFloat decodes numbers the API sometimes sends as decimal strings
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

func (f *flexFloat) ptr() *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

// refID decodes a foreign key sent either as a bare id or as a nested object
type refID struct {
	ID   int64
	Name string
}

func (r *refID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*r = refID{}
		return nil
	}
	switch b[0] {
	case '{':
		var obj struct {
			ID   flexFloat `json:"id"`
			Name string    `json:"name"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*r = refID{ID: int64(obj.ID), Name: obj.Name}
	default:
		var id flexFloat
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*r = refID{ID: int64(id)}
	}
	return nil
}

type imageDTO struct {
	ID       int64  `json:"id"`
	Product  refID  `json:"product"`
	Image    string `json:"image"`
	ImageURL string `json:"image_url"`
	AltText  string `json:"alt_text"`
	IsMain   bool   `json:"is_main"`
	Order    int    `json:"order"`
}

type productDTO struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Slug             string            `json:"slug"`
	Price            flexFloat         `json:"price"`
	OriginalPrice    *flexFloat        `json:"original_price"`
	Category         refID             `json:"category"`
	CategoryName     string            `json:"category_name"`
	Subcategory      refID             `json:"subcategory"`
	SubcategoryName  string            `json:"subcategory_name"`
	MainImageURL     string            `json:"main_image_url"`
	MainImage        string            `json:"main_image"`
	StockQuantity    int               `json:"stock_quantity"`
	MinStockLevel    int               `json:"min_stock_level"`
	Status           string            `json:"status"`
	IsFeatured       bool              `json:"is_featured"`
	IsBestseller     bool              `json:"is_bestseller"`
	IsOnSale         bool              `json:"is_on_sale"`
	Description      string            `json:"description"`
	ShortDescription string            `json:"short_description"`
	Brand            string            `json:"brand"`
	Weight           *flexFloat        `json:"weight"`
	Length           *flexFloat        `json:"length"`
	Width            *flexFloat        `json:"width"`
	Height           *flexFloat        `json:"height"`
	MetaTitle        string            `json:"meta_title"`
	MetaDescription  string            `json:"meta_description"`
	MetaKeywords     string            `json:"meta_keywords"`
	Specifications   map[string]string `json:"specifications"`
	Images           []imageDTO        `json:"images"`
	Colors           []domain.Color    `json:"colors"`
	Sizes            []domain.Size     `json:"sizes"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (c *Client) toSummary(d productDTO) domain.ProductSummary {
	thumb := d.MainImageURL
	if thumb == "" {
		thumb = d.MainImage
	}
	categoryName := d.CategoryName
	if categoryName == "" {
		categoryName = d.Category.Name
	}
	subcategoryName := d.SubcategoryName
	if subcategoryName == "" {
		subcategoryName = d.Subcategory.Name
	}
	var old *float64
	if d.OriginalPrice != nil && *d.OriginalPrice > 0 {
		old = d.OriginalPrice.ptr()
	}
	return domain.ProductSummary{
		ID:              d.ID,
		Name:            d.Name,
		Slug:            d.Slug,
		Price:           float64(d.Price),
		OldPrice:        old,
		CategoryID:      d.Category.ID,
		CategoryName:    categoryName,
		SubcategoryID:   d.Subcategory.ID,
		SubcategoryName: subcategoryName,
		ThumbnailURL:    c.mediaURL(thumb),
		StockQuantity:   d.StockQuantity,
		Status:          d.Status,
		IsFeatured:      d.IsFeatured,
		IsBestseller:    d.IsBestseller,
		IsOnSale:        d.IsOnSale,
	}
}

func (c *Client) toProduct(d productDTO) *domain.Product {
	p := &domain.Product{
		ProductSummary:   c.toSummary(d),
		Description:      d.Description,
		ShortDescription: d.ShortDescription,
		Brand:            d.Brand,
		MinStockLevel:    d.MinStockLevel,
		Weight:           d.Weight.ptr(),
		Length:           d.Length.ptr(),
		Width:            d.Width.ptr(),
		Height:           d.Height.ptr(),
		MetaTitle:        d.MetaTitle,
		MetaDescription:  d.MetaDescription,
		MetaKeywords:     d.MetaKeywords,
		Specifications:   d.Specifications,
		Images:           make([]domain.ProductImage, 0, len(d.Images)),
		Colors:           d.Colors,
		Sizes:            d.Sizes,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	for _, img := range d.Images {
		p.Images = append(p.Images, c.toImage(img, d.ID))
	}
	if p.Colors == nil {
		p.Colors = []domain.Color{}
	}
	if p.Sizes == nil {
		p.Sizes = []domain.Size{}
	}
	return p
}

func (c *Client) toImage(d imageDTO, productID int64) domain.ProductImage {
	src := d.Image
	if src == "" {
		src = d.ImageURL
	}
	if d.Product.ID != 0 {
		productID = d.Product.ID
	}
	return domain.ProductImage{
		ID:      d.ID,
		Product: productID,
		URL:     c.mediaURL(src),
		AltText: d.AltText,
		IsMain:  d.IsMain,
		Order:   d.Order,
	}
}

func (c *Client) toSummaries(list []productDTO) []domain.ProductSummary {
	out := make([]domain.ProductSummary, 0, len(list))
	for _, d := range list {
		out = append(out, c.toSummary(d))
	}
	return out
}

type categoryDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
	IsActive    *bool  `json:"is_active"`
	Order       int    `json:"order"`
	Category    refID  `json:"category"`
}

func (c *Client) toCategory(d categoryDTO) domain.Category {
	return domain.Category{
		ID:          d.ID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Image:       c.mediaURL(d.Image),
		IsActive:    d.IsActive == nil || *d.IsActive,
		Order:       d.Order,
	}
}

func toSubcategory(d categoryDTO) domain.Subcategory {
	return domain.Subcategory{
		ID:       d.ID,
		Name:     d.Name,
		Slug:     d.Slug,
		Category: d.Category.ID,
		IsActive: d.IsActive == nil || *d.IsActive,
	}
}

type orderItemDTO struct {
	ID          int64     `json:"id"`
	Product     refID     `json:"product"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Price       flexFloat `json:"price"`
	ColorName   string    `json:"color_name"`
}

type orderDTO struct {
	ID             int64          `json:"id"`
	OrderNumber    string         `json:"order_number"`
	CustomerName   string         `json:"customer_name"`
	CustomerEmail  string         `json:"customer_email"`
	Status         string         `json:"status"`
	PaymentStatus  string         `json:"payment_status"`
	PaymentMethod  string         `json:"payment_method"`
	TotalAmount    flexFloat      `json:"total_amount"`
	ShippingCost   flexFloat      `json:"shipping_cost"`
	DiscountAmount flexFloat      `json:"discount_amount"`
	Items          []orderItemDTO `json:"items"`
	CreatedAt      time.Time      `json:"created_at"`
}

func toOrder(d orderDTO) domain.Order {
	o := domain.Order{
		ID:             d.ID,
		OrderNumber:    d.OrderNumber,
		CustomerName:   d.CustomerName,
		CustomerEmail:  d.CustomerEmail,
		Status:         d.Status,
		PaymentStatus:  d.PaymentStatus,
		PaymentMethod:  d.PaymentMethod,
		TotalAmount:    float64(d.TotalAmount),
		ShippingCost:   float64(d.ShippingCost),
		DiscountAmount: float64(d.DiscountAmount),
		Items:          make([]domain.OrderItem, 0, len(d.Items)),
		CreatedAt:      d.CreatedAt,
	}
	for _, it := range d.Items {
		name := it.ProductName
		if name == "" {
			name = it.Product.Name
		}
		o.Items = append(o.Items, domain.OrderItem{
			ID:          it.ID,
			ProductID:   it.Product.ID,
			ProductName: name,
			Quantity:    it.Quantity,
			Price:       float64(it.Price),
			ColorName:   it.ColorName,
		})
	}
	return o
}

type customerDTO struct {
	ID          int64     `json:"id"`
	UID         string    `json:"firebase_uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	IsAdmin     bool      `json:"is_admin"`
	TotalOrders int       `json:"total_orders"`
	TotalSpent  flexFloat `json:"total_spent"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCustomer(d customerDTO) domain.Customer {
	name := d.DisplayName
	if name == "" {
		name = strings.TrimSpace(d.FirstName + " " + d.LastName)
	}
	return domain.Customer{
		ID:          d.ID,
		UID:         d.UID,
		Email:       d.Email,
		DisplayName: name,
		Phone:       d.Phone,
		IsAdmin:     d.IsAdmin,
		TotalOrders: d.TotalOrders,
		TotalSpent:  float64(d.TotalSpent),
		CreatedAt:   d.CreatedAt,
	}
}
