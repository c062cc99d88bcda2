package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/blog"
)

type postResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Body       string    `json:"body"`
	CoverImage string    `json:"coverImage,omitempty"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toPostResponse(p *blog.Post) postResponse {
	return postResponse{
		ID:         p.ID,
		Title:      p.Title,
		Slug:       p.Slug,
		Body:       p.Body,
		CoverImage: p.CoverImage,
		Published:  p.Published,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// ListPosts handles GET /api/blog. Unauthenticated callers see published
// posts only; the admin listing lives under /api/blog/all.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	h.listPosts(w, r, false)
}

// ListAllPosts handles GET /api/blog/all (admin), including drafts.
func (h *Handler) ListAllPosts(w http.ResponseWriter, r *http.Request) {
	h.listPosts(w, r, true)
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request, includeDrafts bool) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	var (
		posts []blog.Post
		err   error
	)
	if includeDrafts {
		posts, err = h.blog.ListAll(r.Context(), page, limit)
	} else {
		posts, err = h.blog.ListPublished(r.Context(), page, limit)
	}
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	out := make([]postResponse, len(posts))
	for i := range posts {
		out[i] = toPostResponse(&posts[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPost handles GET /api/blog/{slug}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.blog.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(p))
}

type postRequest struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Body       string `json:"body"`
	CoverImage string `json:"coverImage"`
	Published  bool   `json:"published"`
}

// CreatePost handles POST /api/blog (admin). The slug is derived from the
// title when not supplied.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, blog.ErrTitleRequired.Error())
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = blog.Slugify(req.Title)
	}
	now := time.Now()
	p := &blog.Post{
		ID:         uuid.New().String(),
		Title:      req.Title,
		Slug:       slug,
		Body:       req.Body,
		CoverImage: req.CoverImage,
		Published:  req.Published,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.blog.Create(r.Context(), p); err != nil {
		if errors.Is(err, blog.ErrSlugTaken) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPostResponse(p))
}

// UpdatePost handles PUT /api/blog/{id} (admin).
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, blog.ErrTitleRequired.Error())
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = blog.Slugify(req.Title)
	}
	p := &blog.Post{
		ID:         chi.URLParam(r, "id"),
		Title:      req.Title,
		Slug:       slug,
		Body:       req.Body,
		CoverImage: req.CoverImage,
		Published:  req.Published,
		UpdatedAt:  time.Now(),
	}

	if err := h.blog.Update(r.Context(), p); err != nil {
		switch {
		case errors.Is(err, blog.ErrNotFound):
			writeError(w, http.StatusNotFound, "post not found")
		case errors.Is(err, blog.ErrSlugTaken):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeServerError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(p))
}

// DeletePost handles DELETE /api/blog/{id} (admin).
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.blog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeServerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
