package domain

import "time"

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	IsActive    bool   `json:"is_active"`
	Order       int    `json:"order"`
}

type Subcategory struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Category int64  `json:"category"`
	IsActive bool   `json:"is_active"`
}

// CategoryInput is the admin payload for categories and subcategories.
// Parent is set only for subcategories.
type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	Order       int    `json:"order"`
	Parent      int64  `json:"category,omitempty"`
}

// ProductSummary is the listing shape used by search, carousels and the admin table
type ProductSummary struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	Price           float64  `json:"price"`
	OldPrice        *float64 `json:"old_price,omitempty"`
	CategoryID      int64    `json:"category_id"`
	CategoryName    string   `json:"category_name,omitempty"`
	SubcategoryID   int64    `json:"subcategory_id,omitempty"`
	SubcategoryName string   `json:"subcategory_name,omitempty"`
	ThumbnailURL    string   `json:"thumbnail_url"`
	StockQuantity   int      `json:"stock_quantity"`
	Status          string   `json:"status,omitempty"`
	IsFeatured      bool     `json:"is_featured"`
	IsBestseller    bool     `json:"is_bestseller"`
	IsOnSale        bool     `json:"is_on_sale"`
}

// URL is the storefront detail page of the product
func (p ProductSummary) URL() string {
	return "/produto/" + p.Slug
}

type ProductImage struct {
	ID      int64  `json:"id"`
	Product int64  `json:"product"`
	URL     string `json:"image"`
	AltText string `json:"alt_text"`
	IsMain  bool   `json:"is_main"`
	Order   int    `json:"order"`
}

type Color struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	HexCode string `json:"hex_code"`
}

type Size struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
}

// Product is the full detail record
type Product struct {
	ProductSummary
	Description      string            `json:"description"`
	ShortDescription string            `json:"short_description"`
	Brand            string            `json:"brand,omitempty"`
	MinStockLevel    int               `json:"min_stock_level"`
	Weight           *float64          `json:"weight,omitempty"`
	Length           *float64          `json:"length,omitempty"`
	Width            *float64          `json:"width,omitempty"`
	Height           *float64          `json:"height,omitempty"`
	MetaTitle        string            `json:"meta_title,omitempty"`
	MetaDescription  string            `json:"meta_description,omitempty"`
	MetaKeywords     string            `json:"meta_keywords,omitempty"`
	Specifications   map[string]string `json:"specifications,omitempty"`
	Images           []ProductImage    `json:"images"`
	Colors           []Color           `json:"colors"`
	Sizes            []Size            `json:"sizes"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ProductFilter is the public listing query
type ProductFilter struct {
	Query       string
	Category    int64
	Subcategory int64
	Featured    *bool
	Bestseller  *bool
	OnSale      *bool
	Page        int
	PageSize    int
}

type ProductStats struct {
	TotalProducts    int `json:"total_products"`
	ActiveProducts   int `json:"active_products"`
	LowStockProducts int `json:"low_stock_products"`
	OutOfStock       int `json:"out_of_stock_products"`
	FeaturedProducts int `json:"featured_products"`
}
