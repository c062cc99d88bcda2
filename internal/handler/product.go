package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/catalog"
)

// productResponse is the decorated product as exposed over HTTP. Pricing and
// rating fields are computed at query time, never stored values.
type productResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description,omitempty"`
	Category           string     `json:"category,omitempty"`
	Price              float64    `json:"price"`
	FinalPrice         float64    `json:"finalPrice"`
	DiscountActive     bool       `json:"isDiscountActive"`
	DiscountPercentage float64    `json:"discountPercentage"`
	DiscountExpiry     *time.Time `json:"discountExpiry,omitempty"`
	Stock              int        `json:"stock"`
	StockStatus        string     `json:"stockStatus"`
	ImageURL           string     `json:"imageUrl,omitempty"`
	AverageRating      float64    `json:"averageRating"`
	RatingCount        int        `json:"ratingCount"`
	TotalSold          int64      `json:"totalSold,omitempty"`
}

func toProductResponse(d catalog.Decorated) productResponse {
	return productResponse{
		ID:                 d.ID,
		Name:               d.Name,
		Description:        d.Description,
		Category:           d.Category,
		Price:              d.Product.Price.InexactFloat64(),
		FinalPrice:         d.Quote.FinalPrice.InexactFloat64(),
		DiscountActive:     d.Quote.DiscountActive,
		DiscountPercentage: d.Quote.DiscountPercent.InexactFloat64(),
		DiscountExpiry:     d.Quote.DiscountExpiry,
		Stock:              d.Stock,
		StockStatus:        string(d.StockStatus),
		ImageURL:           d.ImageURL,
		AverageRating:      d.AverageRating.InexactFloat64(),
		RatingCount:        d.RatingCount,
	}
}

func toProductResponses(list []catalog.Decorated) []productResponse {
	out := make([]productResponse, len(list))
	for i, d := range list {
		out[i] = toProductResponse(d)
	}
	return out
}

// ListProducts handles GET /api/products with search, category, and
// pagination query parameters.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f := catalog.ListFilter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Page:     queryInt(r, "page", 1),
		Limit:    queryInt(r, "limit", 0),
	}

	products, err := h.catalog.List(r.Context(), f)
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

// GetProduct handles GET /api/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	d, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*d))
}

// FeaturedProducts handles GET /api/products/featured.
func (h *Handler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Featured(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

// NewArrivals handles GET /api/products/new-arrivals.
func (h *Handler) NewArrivals(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.NewArrivals(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

// BestSellers handles GET /api/products/best-sellers.
func (h *Handler) BestSellers(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.catalog.BestSellers(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	out := make([]productResponse, len(ranked))
	for i, rs := range ranked {
		out[i] = toProductResponse(rs.Decorated)
		out[i].TotalSold = rs.TotalSold
	}
	writeJSON(w, http.StatusOK, out)
}

// productRequest is the admin write payload for a product.
type productRequest struct {
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Price              string     `json:"price"`
	Category           string     `json:"category"`
	DiscountPercentage string     `json:"discountPercentage"`
	DiscountStart      *time.Time `json:"discountStart"`
	DiscountEnd        *time.Time `json:"discountEnd"`
	Stock              int        `json:"stock"`
	LowStockThreshold  int        `json:"lowStockThreshold"`
	Featured           bool       `json:"featured"`
	ImageURL           string     `json:"imageUrl"`
}

func (req *productRequest) toProduct(id string) (*catalog.Product, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, errors.New("invalid price")
	}
	pct := decimal.Zero
	if req.DiscountPercentage != "" {
		pct, err = decimal.NewFromString(req.DiscountPercentage)
		if err != nil {
			return nil, errors.New("invalid discount percentage")
		}
	}
	threshold := req.LowStockThreshold
	if threshold == 0 {
		threshold = 5
	}

	return &catalog.Product{
		ID:                 id,
		Name:               req.Name,
		Description:        req.Description,
		Price:              price,
		Category:           req.Category,
		DiscountPercentage: pct,
		DiscountStart:      req.DiscountStart,
		DiscountEnd:        req.DiscountEnd,
		Stock:              req.Stock,
		LowStockThreshold:  threshold,
		Featured:           req.Featured,
		ImageURL:           req.ImageURL,
	}, nil
}

// CreateProduct handles POST /api/products (admin).
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, "")
}

// UpdateProduct handles PUT /api/products/{id} (admin).
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) saveProduct(w http.ResponseWriter, r *http.Request, id string) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := req.toProduct(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.catalog.Save(r.Context(), p); err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		case isValidationError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeServerError(w, r, err)
		}
		return
	}

	d, err := h.catalog.Get(r.Context(), p.ID)
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, toProductResponse(*d))
}

// DeleteProduct handles DELETE /api/products/{id} (admin).
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeServerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isValidationError(err error) bool {
	for _, v := range []error{
		catalog.ErrNameRequired,
		catalog.ErrNegativePrice,
		catalog.ErrInvalidDiscount,
		catalog.ErrPartialWindow,
		catalog.ErrWindowInverted,
		catalog.ErrNegativeStock,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
