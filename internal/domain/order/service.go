package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/catalog"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/mail"
)

// maxNumberAttempts bounds the retry loop when sequence-derived numbers
// collide; after exhaustion a timestamp-derived fallback number is used.
const maxNumberAttempts = 3

// Validation errors for order placement.
var (
	ErrEmptyItems   = errors.New("items required")
	ErrMissingName  = errors.New("customer name is required")
	ErrMissingEmail = errors.New("customer email is required")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// ItemRequest is one requested line item.
type ItemRequest struct {
	ProductID string
	Quantity  int
}

// CreateRequest holds the input for placing an order.
type CreateRequest struct {
	Customer Customer
	Items    []ItemRequest
}

// Service encapsulates order placement and lifecycle business logic.
type Service struct {
	products catalog.Repository
	orders   Repository
	seq      Sequence
	sender   mail.Sender
	lg       *zap.Logger
	now      func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(
	products catalog.Repository,
	orders Repository,
	seq Sequence,
	sender mail.Sender,
	lg *zap.Logger,
) *Service {
	return &Service{
		products: products,
		orders:   orders,
		seq:      seq,
		sender:   sender,
		lg:       lg,
		now:      time.Now,
	}
}

// Create validates the request, snapshots line items from the catalog at the
// current instant (using each product's effective discounted price), assigns
// a unique order number, and persists the order. A confirmation email is
// sent best-effort: delivery failure is logged and never fails the order.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if req.Customer.Name == "" {
		return nil, ErrMissingName
	}
	if req.Customer.Email == "" {
		return nil, ErrMissingEmail
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	byID := make(map[string]catalog.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	// Snapshot line items: name, category, and the effective unit price at
	// this instant are copied into the order and never re-derived.
	now := s.now()
	items := make([]Item, len(req.Items))
	total := decimal.Zero
	for i, item := range req.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		unit := p.QuoteAt(now).FinalPrice
		items[i] = Item{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Quantity:  item.Quantity,
			UnitPrice: unit,
		}
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	o := &Order{
		ID:          uuid.New().String(),
		Customer:    req.Customer,
		Items:       items,
		TotalAmount: total.Round(2),
		Status:      StatusPending,
		CreatedAt:   now,
	}

	if err := s.persistWithNumber(ctx, o); err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, o)
	return o, nil
}

// persistWithNumber assigns an order number and inserts the order, retrying
// with a fresh sequence value when the storage layer rejects a duplicate
// number. After maxNumberAttempts collisions it falls back to a
// timestamp-derived number.
func (s *Service) persistWithNumber(ctx context.Context, o *Order) error {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		seq, err := s.seq.Next(ctx, SequenceName)
		if err != nil {
			return fmt.Errorf("next order sequence: %w", err)
		}
		o.Number = FormatNumber(o.CreatedAt, seq)

		err = s.orders.Create(ctx, o)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateNumber) {
			return fmt.Errorf("create order: %w", err)
		}
		s.lg.Warn("order number collision, retrying",
			zap.String("order_number", o.Number),
			zap.Int("attempt", attempt+1),
		)
	}

	o.Number = FallbackNumber(s.now())
	if err := s.orders.Create(ctx, o); err != nil {
		return fmt.Errorf("create order with fallback number: %w", err)
	}
	return nil
}

// sendConfirmation delivers the order confirmation email. Failures are
// logged and swallowed.
func (s *Service) sendConfirmation(ctx context.Context, o *Order) {
	msg := mail.Message{
		To:      []string{o.Customer.Email},
		Subject: fmt.Sprintf("Order %s confirmed", o.Number),
		Text: fmt.Sprintf("Hi %s,\n\nWe received your order %s for a total of %s.\n",
			o.Customer.Name, o.Number, o.TotalAmount.StringFixed(2)),
		HTML: fmt.Sprintf("<p>Hi %s,</p><p>We received your order <b>%s</b> for a total of <b>%s</b>.</p>",
			o.Customer.Name, o.Number, o.TotalAmount.StringFixed(2)),
	}

	msgID, err := s.sender.Send(ctx, msg)
	if err != nil {
		s.lg.Warn("order confirmation email failed",
			zap.String("order_number", o.Number),
			zap.Error(err),
		)
		return
	}
	s.lg.Info("order confirmation email sent",
		zap.String("order_number", o.Number),
		zap.String("message_id", msgID),
	)
}

// Get returns a single order by ID.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns a page of orders for the admin view.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Order, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, ErrInvalidStatus
	}
	return s.orders.List(ctx, f)
}

// UpdateStatus sets an order's status and notes. Any known status is
// reachable from any other; there is no enforced transition graph.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status, notes string) (*Order, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.orders.UpdateStatus(ctx, id, status, notes)
}
