package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

const (
	defaultPageLimit  = 12
	maxPageLimit      = 100
	highlightMaxItems = 8
)

// Service is the catalog query layer. Every product it returns is decorated
// with the pricing quote, stock status, and current rating aggregates.
type Service struct {
	products Repository
	now      func() time.Time
}

// NewService creates a catalog Service backed by the given repository.
func NewService(products Repository) *Service {
	return &Service{products: products, now: time.Now}
}

// List returns a page of decorated products matching the filter. Page and
// limit are normalized: page defaults to 1, limit to the default page size,
// capped at the maximum.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Decorated, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}

	products, err := s.products.List(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return s.decorateAll(products), nil
}

// Get returns a single decorated product by ID.
func (s *Service) Get(ctx context.Context, id string) (*Decorated, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := s.decorate(*p)
	return &d, nil
}

// Featured returns decorated products flagged for merchandising.
func (s *Service) Featured(ctx context.Context) ([]Decorated, error) {
	products, err := s.products.Featured(ctx, highlightMaxItems)
	if err != nil {
		return nil, errors.Wrap(err, "featured products")
	}
	return s.decorateAll(products), nil
}

// NewArrivals returns the most recently created products, decorated.
func (s *Service) NewArrivals(ctx context.Context) ([]Decorated, error) {
	products, err := s.products.NewArrivals(ctx, highlightMaxItems)
	if err != nil {
		return nil, errors.Wrap(err, "new arrivals")
	}
	return s.decorateAll(products), nil
}

// RankedSeller pairs a decorated product with its historical sales rank input.
type RankedSeller struct {
	Decorated
	TotalSold int64
}

// BestSellers ranks products by total quantity sold across order line-item
// snapshots. The ranking reflects historical orders, not live stock or the
// current discount state, though each returned product is still decorated
// with its present-day quote.
func (s *Service) BestSellers(ctx context.Context) ([]RankedSeller, error) {
	sellers, err := s.products.BestSellers(ctx, highlightMaxItems)
	if err != nil {
		return nil, errors.Wrap(err, "best sellers")
	}

	now := s.now()
	ranked := make([]RankedSeller, len(sellers))
	for i, bs := range sellers {
		ranked[i] = RankedSeller{
			Decorated: Decorated{
				Product:     bs.Product,
				Quote:       bs.QuoteAt(now),
				StockStatus: bs.StockStatus(),
			},
			TotalSold: bs.TotalSold,
		}
	}
	return ranked, nil
}

// Save validates and persists a product. A nil ID means create.
func (s *Service) Save(ctx context.Context, p *Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if p.ID == "" {
		return s.products.Create(ctx, p)
	}
	return s.products.Update(ctx, p)
}

// Delete removes a product from the catalog. Reviews and orders referencing
// it are intentionally left in place as historical records.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

func (s *Service) decorate(p Product) Decorated {
	now := s.now()
	return Decorated{
		Product:     p,
		Quote:       p.QuoteAt(now),
		StockStatus: p.StockStatus(),
	}
}

func (s *Service) decorateAll(products []Product) []Decorated {
	now := s.now()
	decorated := make([]Decorated, len(products))
	for i, p := range products {
		decorated[i] = Decorated{
			Product:     p,
			Quote:       p.QuoteAt(now),
			StockStatus: p.StockStatus(),
		}
	}
	return decorated
}

// Validation errors for catalog writes.
var (
	ErrNameRequired    = errors.New("product name is required")
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrInvalidDiscount = errors.New("discount percentage must be between 0 and 100")
	ErrPartialWindow   = errors.New("discount start and end must both be set or both be empty")
	ErrWindowInverted  = errors.New("discount start must not be after discount end")
	ErrNegativeStock   = errors.New("stock must not be negative")
)

// validateProduct enforces write-time invariants: the percentage is clamped
// to [0,100] here rather than at read time, and the discount window is
// both-or-neither.
func validateProduct(p *Product) error {
	if p.Name == "" {
		return ErrNameRequired
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.DiscountPercentage.IsNegative() || p.DiscountPercentage.GreaterThan(hundred) {
		return ErrInvalidDiscount
	}
	if (p.DiscountStart == nil) != (p.DiscountEnd == nil) {
		return ErrPartialWindow
	}
	if p.DiscountStart != nil && p.DiscountStart.After(*p.DiscountEnd) {
		return ErrWindowInverted
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}
