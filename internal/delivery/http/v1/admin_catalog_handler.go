package v1

import (
	"net/http"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/usecase"
	"mutitpay-storefront/pkg/utils"
)

type AdminCatalogHandler struct {
	adminUC *usecase.AdminUsecase
}

func NewAdminCatalogHandler(uc *usecase.AdminUsecase) *AdminCatalogHandler {
	return &AdminCatalogHandler{adminUC: uc}
}

// providerToken is the admin's identity token forwarded to the commerce API
func providerToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := userFromContext(r)
	if !ok || user.ProviderToken == "" {
		utils.WriteError(w, http.StatusUnauthorized, msgUnauthorized)
		return "", false
	}
	return user.ProviderToken, true
}

func listParams(r *http.Request) domain.ListParams {
	q := r.URL.Query()
	return domain.ListParams{
		Page:     utils.ParseInt(q.Get("page"), 1),
		PageSize: utils.ParseInt(q.Get("page_size"), 20),
		Search:   q.Get("search"),
	}
}

// --- Products ---

func (h *AdminCatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	page, err := h.adminUC.ListProducts(r.Context(), token, listParams(r))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}

func (h *AdminCatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	product, err := h.adminUC.GetProduct(r.Context(), token, id)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

func (h *AdminCatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	var in domain.ProductInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	product, err := h.adminUC.CreateProduct(r.Context(), token, in)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, product)
}

func (h *AdminCatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	var in domain.ProductInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	product, err := h.adminUC.UpdateProduct(r.Context(), token, id, in)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

func (h *AdminCatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	if err := h.adminUC.DeleteProduct(r.Context(), token, id); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Categories ---

func (h *AdminCatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	var in domain.CategoryInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	cat, err := h.adminUC.CreateCategory(r.Context(), token, in)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, cat)
}

func (h *AdminCatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	var in domain.CategoryInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	cat, err := h.adminUC.UpdateCategory(r.Context(), token, id, in)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cat)
}

func (h *AdminCatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	if err := h.adminUC.DeleteCategory(r.Context(), token, id); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminCatalogHandler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	var in domain.CategoryInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	sub, err := h.adminUC.CreateSubcategory(r.Context(), token, in)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, sub)
}

func (h *AdminCatalogHandler) UpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	var in domain.CategoryInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	sub, err := h.adminUC.UpdateSubcategory(r.Context(), token, id, in)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, sub)
}

func (h *AdminCatalogHandler) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	if err := h.adminUC.DeleteSubcategory(r.Context(), token, id); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Images ---

func (h *AdminCatalogHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	imgs, err := h.adminUC.ProductImages(r.Context(), token, id)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	if imgs == nil {
		imgs = []domain.ProductImage{}
	}
	utils.WriteJSON(w, http.StatusOK, imgs)
}

// DeleteImage serves /products/{id}/images/{imageID}
func (h *AdminCatalogHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	token, ok := providerToken(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	imageID, ok := pathID(r, "imageID")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	if err := h.adminUC.DeleteImage(r.Context(), token, productID, imageID); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
