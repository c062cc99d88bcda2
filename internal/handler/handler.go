// Package handler maps HTTP requests onto the domain services and domain
// errors onto HTTP status codes.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/blog"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/catalog"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/order"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/review"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/user"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/upload"
)

// Handler bundles the domain services behind the HTTP surface.
type Handler struct {
	catalog  *catalog.Service
	orders   *order.Service
	reviews  *review.Service
	users    *user.Service
	blog     blog.Repository
	uploader upload.Uploader
}

// New constructs a Handler with the required domain dependencies.
func New(
	catalogSvc *catalog.Service,
	orderSvc *order.Service,
	reviewSvc *review.Service,
	userSvc *user.Service,
	blogRepo blog.Repository,
	uploader upload.Uploader,
) *Handler {
	return &Handler{
		catalog:  catalogSvc,
		orders:   orderSvc,
		reviews:  reviewSvc,
		users:    userSvc,
		blog:     blogRepo,
		uploader: uploader,
	}
}

// errorBody is the uniform JSON error response.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Code: code, Message: msg})
}

// writeServerError logs the unexpected error and responds with a generic 500
// so internals never leak to clients.
func writeServerError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
