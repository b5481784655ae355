package v1

import (
	"net/http"

	"mutitpay-storefront/internal/usecase"
	"mutitpay-storefront/pkg/utils"
)

// SearchHandler serves the header search box for clients that poll
// instead of holding a live connection
type SearchHandler struct {
	searchUC *usecase.SearchUsecase
}

func NewSearchHandler(searchUC *usecase.SearchUsecase) *SearchHandler {
	return &SearchHandler{searchUC: searchUC}
}

// Suggest returns the dropdown panel for ?q=
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	panel := h.searchUC.Suggest(r.Context(), r.URL.Query().Get("q"))
	panel.Open = true
	utils.WriteJSON(w, http.StatusOK, panel)
}

// Recommendations returns the panel shown on focus before anything is typed
func (h *SearchHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	best, sale := h.searchUC.Recommendations(r.Context())
	panel := h.searchUC.RecommendationPanel("", best, sale)
	panel.Open = true
	utils.WriteJSON(w, http.StatusOK, panel)
}

// Submit resolves the listing URL for the typed query. A blank query does nothing.
func (h *SearchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"q"`
	}
	if r.Method == http.MethodPost {
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.WriteError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
	} else {
		req.Query = r.URL.Query().Get("q")
	}

	url, ok := usecase.SubmitURL(req.Query)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}

