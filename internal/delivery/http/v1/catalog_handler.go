package v1

import (
	"net/http"
	"strconv"
	"strings"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/usecase"
	"mutitpay-storefront/pkg/utils"
)

type CatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{catalogUC: uc}
}

func boolParam(v string) *bool {
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := domain.ProductFilter{
		Query:       query.Get("q"),
		Category:    int64(utils.ParseInt(query.Get("category"), 0)),
		Subcategory: int64(utils.ParseInt(query.Get("subcategory"), 0)),
		Featured:    boolParam(query.Get("featured")),
		Bestseller:  boolParam(query.Get("bestseller")),
		OnSale:      boolParam(query.Get("on_sale")),
		Page:        utils.ParseInt(query.Get("page"), 1),
		PageSize:    utils.ParseInt(query.Get("page_size"), 20),
	}

	page, err := h.catalogUC.ListProducts(r.Context(), filter)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalogUC.ProductBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	product, err := h.catalogUC.ProductByID(r.Context(), id)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

// Highlights serves /products/highlights/{kind} where kind is featured,
// bestsellers or on_sale
func (h *CatalogHandler) Highlights(w http.ResponseWriter, r *http.Request) {
	kind := strings.ReplaceAll(r.PathValue("kind"), "-", "_")
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 8)

	products, err := h.catalogUC.Highlights(r.Context(), kind, limit)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	if products == nil {
		products = []domain.ProductSummary{}
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalogUC.Categories(r.Context())
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cats)
}

// GetSubcategories optionally filters by ?category=
func (h *CatalogHandler) GetSubcategories(w http.ResponseWriter, r *http.Request) {
	categoryID := int64(utils.ParseInt(r.URL.Query().Get("category"), 0))
	subs, err := h.catalogUC.Subcategories(r.Context(), categoryID)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, subs)
}

func (h *CatalogHandler) GetColors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.catalogUC.Colors(r.Context())
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, colors)
}

func (h *CatalogHandler) GetSizes(w http.ResponseWriter, r *http.Request) {
	sizes, err := h.catalogUC.Sizes(r.Context())
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, sizes)
}
