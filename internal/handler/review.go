package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/catalog"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/review"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/user"
)

type reviewResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type aggregateResponse struct {
	AverageRating float64 `json:"averageRating"`
	RatingCount   int     `json:"ratingCount"`
}

func toReviewResponse(r *review.Review) reviewResponse {
	return reviewResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toAggregateResponse(a review.Aggregate) aggregateResponse {
	return aggregateResponse{
		AverageRating: a.AverageRating.InexactFloat64(),
		RatingCount:   a.RatingCount,
	}
}

// ListReviews handles GET /api/products/{id}/reviews.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	out := make([]reviewResponse, len(reviews))
	for i := range reviews {
		out[i] = toReviewResponse(&reviews[i])
	}
	writeJSON(w, http.StatusOK, out)
}

type upsertReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// UpsertReview handles PUT /api/products/{id}/reviews. A repeat review by the
// same user replaces the previous one.
func (h *Handler) UpsertReview(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req upsertReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	productID := chi.URLParam(r, "id")
	if _, err := h.catalog.Get(r.Context(), productID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeServerError(w, r, err)
		return
	}

	who := review.Identity{UserID: id.ID, Admin: id.Role == user.RoleAdmin}
	rev, agg, err := h.reviews.Upsert(r.Context(), productID, who, req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, review.ErrInvalidRating) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Review  reviewResponse    `json:"review"`
		Product aggregateResponse `json:"product"`
	}{toReviewResponse(rev), toAggregateResponse(agg)})
}

// DeleteReview handles DELETE /api/products/{id}/reviews. By default it
// removes the caller's own review; admins may target another user's review
// via the userId query parameter.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	ownerID := r.URL.Query().Get("userId")
	if ownerID == "" {
		ownerID = id.ID
	}

	who := review.Identity{UserID: id.ID, Admin: id.Role == user.RoleAdmin}
	agg, err := h.reviews.Delete(r.Context(), chi.URLParam(r, "id"), who, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrForbidden):
			writeError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, review.ErrNotFound):
			writeError(w, http.StatusNotFound, "review not found")
		default:
			writeServerError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toAggregateResponse(agg))
}
