package domain

import (
	"context"
	"strconv"
)

type SearchMode string

const (
	SearchModeRecommendations SearchMode = "recommendations"
	SearchModeResults         SearchMode = "results"
)

// Panel labels shown by the header search box
const (
	LabelBestsellers = "Mais vendidos"
	LabelOnSale      = "Em promoção"
	LabelNoResults   = "Sem resultados."
	LabelSearching   = "Pesquisando..."
	LabelTypeMore    = "Digite pelo menos 2 letras para pesquisar."
	MsgSearchFailed  = "Erro na pesquisa"
)

// CategoryLink is a clickable shortcut into the filtered listing
type CategoryLink struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Text string `json:"text,omitempty"`
}

func CategoryURL(categoryID int64) string {
	return "/products?category=" + strconv.FormatInt(categoryID, 10)
}

func SubcategoryURL(categoryID, subcategoryID int64) string {
	return CategoryURL(categoryID) + "&subcategory=" + strconv.FormatInt(subcategoryID, 10)
}

// SearchHit is a product row in the panel
type SearchHit struct {
	ProductSummary
	URL string `json:"url"`
}

func NewSearchHit(p ProductSummary) SearchHit {
	return SearchHit{ProductSummary: p, URL: p.URL()}
}

// SearchPanel is the full state of the dropdown for one query
type SearchPanel struct {
	Open          bool           `json:"open"`
	Query         string         `json:"query"`
	Mode          SearchMode     `json:"mode"`
	Loading       bool           `json:"loading"`
	Error         string         `json:"error,omitempty"`
	Hint          string         `json:"hint,omitempty"`
	Bestsellers   []SearchHit    `json:"bestsellers,omitempty"`
	OnSale        []SearchHit    `json:"on_sale,omitempty"`
	Categories    []CategoryLink `json:"categories,omitempty"`
	Subcategories []CategoryLink `json:"subcategories,omitempty"`
	Products      []SearchHit    `json:"products,omitempty"`
	SeeMore       *CategoryLink  `json:"see_more,omitempty"`
	Empty         bool           `json:"empty"`
}

// ProductSearcher is the slice of the commerce API the search box needs
type ProductSearcher interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]ProductSummary, error)
	Bestsellers(ctx context.Context, limit int) ([]ProductSummary, error)
	OnSale(ctx context.Context, limit int) ([]ProductSummary, error)
	Categories(ctx context.Context) ([]Category, error)
	Subcategories(ctx context.Context) ([]Subcategory, error)
}
