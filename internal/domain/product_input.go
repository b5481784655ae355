package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"

	defaultMinStockLevel = 5
)

const msgFixHighlighted = "Por favor, corrija os erros destacados antes de continuar"

// ProductInput is the admin create/update payload sent to the commerce API
type ProductInput struct {
	Name             string            `json:"name"`
	Slug             string            `json:"slug,omitempty"`
	Description      string            `json:"description"`
	ShortDescription string            `json:"short_description"`
	Category         int64             `json:"category"`
	Subcategory      int64             `json:"subcategory"`
	Brand            string            `json:"brand"`
	Price            float64           `json:"price"`
	OriginalPrice    *float64          `json:"original_price,omitempty"`
	StockQuantity    int               `json:"stock_quantity"`
	MinStockLevel    int               `json:"min_stock_level"`
	Status           string            `json:"status"`
	IsFeatured       bool              `json:"is_featured"`
	IsBestseller     bool              `json:"is_bestseller"`
	IsOnSale         bool              `json:"is_on_sale"`
	Weight           *float64          `json:"weight,omitempty"`
	Length           *float64          `json:"length,omitempty"`
	Width            *float64          `json:"width,omitempty"`
	Height           *float64          `json:"height,omitempty"`
	MetaTitle        string            `json:"meta_title"`
	MetaDescription  string            `json:"meta_description"`
	MetaKeywords     string            `json:"meta_keywords,omitempty"`
	Specifications   map[string]string `json:"specifications"`
	Colors           []int64           `json:"colors"`
	Sizes            []int64           `json:"sizes"`
}

// Validate checks every field and reports all failures at once
func (p *ProductInput) Validate() error {
	fields := map[string]string{}

	name := strings.TrimSpace(p.Name)
	switch {
	case name == "":
		fields["name"] = "Nome do produto é obrigatório"
	case utf8.RuneCountInString(p.Name) > 200:
		fields["name"] = "Nome deve ter no máximo 200 caracteres"
	}
	if strings.TrimSpace(p.Description) == "" {
		fields["description"] = "Descrição do produto é obrigatória"
	}
	if utf8.RuneCountInString(p.ShortDescription) > 300 {
		fields["short_description"] = "Descrição curta deve ter no máximo 300 caracteres"
	}
	if p.Category <= 0 {
		fields["category"] = "Categoria é obrigatória"
	}
	if p.Subcategory <= 0 {
		fields["subcategory"] = "Subcategoria é obrigatória"
	}
	if utf8.RuneCountInString(p.Brand) > 100 {
		fields["brand"] = "Marca deve ter no máximo 100 caracteres"
	}
	if p.Price <= 0 {
		fields["price"] = "Preço deve ser maior que zero"
	}
	if utf8.RuneCountInString(p.MetaTitle) > 60 {
		fields["meta_title"] = "Meta título deve ter no máximo 60 caracteres"
	}
	if utf8.RuneCountInString(p.MetaDescription) > 160 {
		fields["meta_description"] = "Meta descrição deve ter no máximo 160 caracteres"
	}
	if p.Status != "" && p.Status != ProductStatusActive && p.Status != ProductStatusInactive {
		fields["status"] = "Estado inválido"
	}

	if len(fields) > 0 {
		return &ValidationError{Message: msgFixHighlighted, Fields: fields}
	}
	return nil
}

// ApplyDefaults trims text fields and fills the derived ones. Run it after Validate.
func (p *ProductInput) ApplyDefaults() {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.ShortDescription = strings.TrimSpace(p.ShortDescription)
	p.Brand = strings.TrimSpace(p.Brand)

	if p.ShortDescription == "" {
		p.ShortDescription = truncateRunes(p.Description, 300)
	}
	if p.MetaTitle == "" {
		p.MetaTitle = p.Name
	}
	if p.MetaDescription == "" {
		p.MetaDescription = p.Description
	}
	if p.MinStockLevel <= 0 {
		p.MinStockLevel = defaultMinStockLevel
	}
	if p.StockQuantity < 0 {
		p.StockQuantity = 0
	}
	if p.Status == "" {
		p.Status = ProductStatusActive
	}
	if p.Specifications == nil {
		p.Specifications = map[string]string{}
	}
	if p.Colors == nil {
		p.Colors = []int64{}
	}
	if p.Sizes == nil {
		p.Sizes = []int64{}
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ImageUpload describes one product image bound for the commerce API
type ImageUpload struct {
	ProductID   int64
	AltText     string
	IsMain      bool
	Order       int
	Data        []byte
	ContentType string
	Filename    string
	// URL replaces Data when the image already lives in the media store
	URL string
}

// ImageAltText returns the default caption for the main image or a thumbnail
func ImageAltText(isMain bool, given string) string {
	if strings.TrimSpace(given) != "" {
		return given
	}
	if isMain {
		return "Imagem principal"
	}
	return "Miniatura"
}

// ImageOrder numbers the main image 1 and thumbnails from 2 by index
func ImageOrder(isMain bool, thumbnailIndex int) int {
	if isMain {
		return 1
	}
	return thumbnailIndex + 2
}
