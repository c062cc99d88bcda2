package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// StockStatus describes product availability relative to its low stock threshold.
type StockStatus string

const (
	StockIn  StockStatus = "in_stock"
	StockLow StockStatus = "low_stock"
	StockOut StockStatus = "out_of_stock"
)

// Product represents a catalog item. Discount bounds are stored as absolute
// instants; both must be set for a discount window to exist. AverageRating
// and RatingCount are derived from the reviews collection and are only
// written by the rating aggregator.
type Product struct {
	ID                 string
	Name               string
	Description        string
	Price              decimal.Decimal
	Category           string
	DiscountPercentage decimal.Decimal
	DiscountStart      *time.Time
	DiscountEnd        *time.Time
	Stock              int
	LowStockThreshold  int
	Featured           bool
	ImageURL           string
	AverageRating      decimal.Decimal
	RatingCount        int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// StockStatus classifies the product's current stock level.
func (p *Product) StockStatus() StockStatus {
	switch {
	case p.Stock <= 0:
		return StockOut
	case p.Stock <= p.LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

// Decorated is a Product augmented with the pricing quote and stock status
// computed at query time.
type Decorated struct {
	Product
	Quote       Quote
	StockStatus StockStatus
}

// BestSeller ranks a product by its total quantity sold across all order
// line-item snapshots.
type BestSeller struct {
	Product
	TotalSold int64
}

// ListFilter narrows and pages product listings. Search matches name and
// description case-insensitively; Category is an exact match.
type ListFilter struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Featured(ctx context.Context, limit int) ([]Product, error)
	NewArrivals(ctx context.Context, limit int) ([]Product, error)
	BestSellers(ctx context.Context, limit int) ([]BestSeller, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
