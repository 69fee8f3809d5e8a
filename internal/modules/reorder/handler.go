package reorder

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom/inventory-api/internal/httpx"
)

// Handler exposes the reorder suggestion endpoint.
type Handler struct {
	service Service
	now     func() time.Time
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/reorder-suggestions", h.suggest)
}

type suggestRequest struct {
	ProductID int64 `json:"productId"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "")
		return
	}
	if req.ProductID <= 0 {
		h.fail(w, http.StatusBadRequest, "productId is required", "")
		return
	}

	res, err := h.service.Suggest(r.Context(), req.ProductID)
	if err != nil {
		status, hint := classify(err)
		h.fail(w, status, err.Error(), hint)
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}

func classify(err error) (int, string) {
	var up *UpstreamError
	switch {
	case errors.Is(err, ErrProductNotFound):
		return http.StatusNotFound, ""
	case errors.Is(err, ErrNotConfigured):
		return http.StatusInternalServerError, "Set GEMINI_API_KEY in the environment"
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout, "The model endpoint did not answer in time; retry later"
	case errors.As(err, &up):
		return http.StatusBadGateway, "Check API key configuration and network connectivity"
	default:
		return http.StatusInternalServerError, ""
	}
}

func (h *Handler) fail(w http.ResponseWriter, status int, msg, hint string) {
	httpx.Respond(w, status, Failure{
		Success:         false,
		Error:           msg,
		Timestamp:       h.now().UTC(),
		Troubleshooting: hint,
	})
}
