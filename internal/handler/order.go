package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/order"
)

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	Customer struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	} `json:"customer"`
	Items []orderItemRequest `json:"items"`
}

type orderItemResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

type orderResponse struct {
	ID          string              `json:"id"`
	OrderNumber string              `json:"orderNumber"`
	Customer    order.Customer      `json:"customer"`
	Items       []orderItemResponse `json:"items"`
	TotalAmount string              `json:"totalAmount"`
	Status      string              `json:"status"`
	Notes       string              `json:"notes,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Category:  it.Category,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
		}
	}
	return orderResponse{
		ID:          o.ID,
		OrderNumber: o.Number,
		Customer:    o.Customer,
		Items:       items,
		TotalAmount: o.TotalAmount.StringFixed(2),
		Status:      string(o.Status),
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// CreateOrder handles POST /api/orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	items := make([]order.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	o, err := h.orders.Create(r.Context(), order.CreateRequest{
		Customer: order.Customer{
			Name:    req.Customer.Name,
			Email:   req.Customer.Email,
			Phone:   req.Customer.Phone,
			Address: req.Customer.Address,
		},
		Items: items,
	})
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// writeOrderError maps order placement errors onto HTTP status codes.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound   *order.ProductNotFoundError
		invalidQty *order.InvalidQuantityError
	)
	switch {
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrMissingName),
		errors.Is(err, order.ErrMissingEmail):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &invalidQty):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeServerError(w, r, err)
	}
}

// GetOrder handles GET /api/orders/{id} (admin).
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// ListOrders handles GET /api/orders (admin) with status filter and pagination.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context(), order.ListFilter{
		Status: order.Status(r.URL.Query().Get("status")),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 0),
	})
	if err != nil {
		if errors.Is(err, order.ErrInvalidStatus) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeServerError(w, r, err)
		return
	}

	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// UpdateOrderStatus handles PATCH /api/orders/{id}/status (admin).
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), order.Status(req.Status), req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, order.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		default:
			writeServerError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
