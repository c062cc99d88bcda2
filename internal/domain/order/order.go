package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the administrative state of an order. Transitions are
// deliberately permissive: admins may move an order from any status to any
// other as a manual override.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusDispatched Status = "dispatched"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing,
		StatusDispatched, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateNumber is returned by the repository when an insert
	// violates the order number uniqueness constraint.
	ErrDuplicateNumber = errors.New("duplicate order number")
	// ErrInvalidStatus is returned when an unknown status value is supplied.
	ErrInvalidStatus = errors.New("invalid order status")
)

// Customer is the contact snapshot embedded in an order at creation time.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Item is a line-item snapshot: name, unit price, and category are copied
// from the catalog at order time and never re-derived from the live product.
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Order is a customer order. Number is assigned exactly once at creation and
// immutable thereafter; Items and Customer are historical snapshots.
type Order struct {
	ID          string
	Number      string
	Customer    Customer
	Items       []Item
	TotalAmount decimal.Decimal
	Status      Status
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListFilter pages and filters order listings for the admin view.
type ListFilter struct {
	Status Status
	Page   int
	Limit  int
}

// Repository defines persistence operations for orders. Create must return
// ErrDuplicateNumber when the order number collides with an existing order.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, error)
	Count(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, id string, status Status, notes string) (*Order, error)
}
