package v1

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/usecase"
	"mutitpay-storefront/pkg/logger"
	"mutitpay-storefront/pkg/utils"
)

var (
	allowedMimeTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	}
	allowedExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".gif":  true,
	}
)

// UploadHandler takes product images from the admin form
type UploadHandler struct {
	adminUC       *usecase.AdminUsecase
	maxUploadSize int64
}

func NewUploadHandler(uc *usecase.AdminUsecase, maxUploadSizeMB int64) *UploadHandler {
	return &UploadHandler{
		adminUC:       uc,
		maxUploadSize: maxUploadSizeMB << 20, // Convert MB to bytes
	}
}

// UploadImage reads the multipart fields product, image, alt_text, is_main and order
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())
	token, ok := providerToken(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		log.Warn().Err(err).Msg("Upload: ParseMultipartForm failed")
		utils.WriteError(w, http.StatusBadRequest, "Ficheiro demasiado grande ou formato inválido")
		return
	}

	productID := int64(utils.ParseInt(r.FormValue("product"), 0))
	if productID <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "Produto inválido")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		log.Warn().Err(err).Msg("Upload: FormFile failed")
		utils.WriteError(w, http.StatusBadRequest, "Selecione uma imagem")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedMimeTypes[contentType] {
		log.Warn().Str("content_type", contentType).Msg("Upload: invalid MIME type")
		utils.WriteError(w, http.StatusBadRequest, "Tipo de ficheiro inválido. Permitidos: JPEG, PNG, WebP, GIF")
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		log.Warn().Str("ext", ext).Msg("Upload: invalid extension")
		utils.WriteError(w, http.StatusBadRequest, "Extensão de ficheiro inválida")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Ficheiro inválido")
		return
	}

	isMain, _ := strconv.ParseBool(r.FormValue("is_main"))
	order := utils.ParseInt(r.FormValue("order"), 0)
	if order <= 0 {
		order = domain.ImageOrder(isMain, 0)
	}

	img, err := h.adminUC.UploadImage(r.Context(), token, domain.ImageUpload{
		ProductID: productID,
		AltText:   r.FormValue("alt_text"),
		IsMain:    isMain,
		Order:     order,
		Data:      data,
		Filename:  header.Filename,
	})
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	log.Info().Int64("product_id", productID).Int64("image_id", img.ID).Msg("Product image uploaded")
	utils.WriteJSON(w, http.StatusCreated, img)
}
