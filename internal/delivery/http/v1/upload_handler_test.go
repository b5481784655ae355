package v1

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/infrastructure/cache"
	"mutitpay-storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeImageAPI only answers image uploads; any other AdminAPI call panics
type fakeImageAPI struct {
	usecase.AdminAPI
	token string
	got   domain.ImageUpload
}

func (f *fakeImageAPI) UploadImage(ctx context.Context, token string, up domain.ImageUpload) (*domain.ProductImage, error) {
	f.token = token
	f.got = up
	return &domain.ProductImage{ID: 9, Product: up.ProductID, AltText: up.AltText, IsMain: up.IsMain, Order: up.Order}, nil
}

func pngFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type uploadForm struct {
	fields      map[string]string
	filename    string
	contentType string
	data        []byte
}

func uploadRequest(t *testing.T, f uploadForm) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range f.fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if f.filename != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return withUser(req, &domain.User{ID: "admin", Role: domain.RoleAdmin, ProviderToken: "id-token"})
}

func newUploadHandler(api usecase.AdminAPI) *UploadHandler {
	uc := usecase.NewAdminUsecase(api, nil, cache.NewMemoryCache(time.Minute, 0), testConfig())
	return NewUploadHandler(uc, 1)
}

func TestUploadHandler_UploadImage(t *testing.T) {
	api := &fakeImageAPI{}
	h := newUploadHandler(api)

	rec := httptest.NewRecorder()
	h.UploadImage(rec, uploadRequest(t, uploadForm{
		fields:      map[string]string{"product": "12", "is_main": "true"},
		filename:    "Vestido.PNG",
		contentType: "image/png",
		data:        pngFixture(t),
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, "id-token", api.token)
	assert.Equal(t, int64(12), api.got.ProductID)
	assert.True(t, api.got.IsMain)
	assert.NotEmpty(t, api.got.Data)
	assert.NotEmpty(t, api.got.ContentType)
	assert.NotEqual(t, "Vestido.PNG", api.got.Filename)

	var img domain.ProductImage
	decodeBody(t, rec, &img)
	assert.Equal(t, int64(9), img.ID)
}

func TestUploadHandler_Rejects(t *testing.T) {
	h := newUploadHandler(&fakeImageAPI{})
	pngData := pngFixture(t)

	tests := []struct {
		name string
		form uploadForm
		msg  string
	}{
		{"no product", uploadForm{filename: "a.png", contentType: "image/png", data: pngData}, "Produto inválido"},
		{"no file", uploadForm{fields: map[string]string{"product": "1"}}, "Selecione uma imagem"},
		{"bad mime", uploadForm{fields: map[string]string{"product": "1"}, filename: "a.png", contentType: "application/pdf", data: pngData}, "Tipo de ficheiro inválido. Permitidos: JPEG, PNG, WebP, GIF"},
		{"bad extension", uploadForm{fields: map[string]string{"product": "1"}, filename: "a.exe", contentType: "image/png", data: pngData}, "Extensão de ficheiro inválida"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.UploadImage(rec, uploadRequest(t, tt.form))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body struct {
				Error string `json:"error"`
			}
			decodeBody(t, rec, &body)
			assert.Equal(t, tt.msg, body.Error)
		})
	}
}

func TestUploadHandler_RequiresProviderToken(t *testing.T) {
	h := newUploadHandler(&fakeImageAPI{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/images", nil)
	rec := httptest.NewRecorder()
	h.UploadImage(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadHandler_TooLarge(t *testing.T) {
	h := newUploadHandler(&fakeImageAPI{})
	rec := httptest.NewRecorder()
	h.UploadImage(rec, uploadRequest(t, uploadForm{
		fields:      map[string]string{"product": "1"},
		filename:    "big.png",
		contentType: "image/png",
		data:        bytes.Repeat([]byte{0}, 3<<20),
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
