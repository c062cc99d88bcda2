package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no review exists for the given key.
	ErrNotFound = errors.New("review not found")
	// ErrInvalidRating is returned when a rating falls outside [1,5].
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrForbidden is returned when a user attempts to delete another
	// user's review without the admin role.
	ErrForbidden = errors.New("not allowed to modify this review")
)

// Review is a single user's rating of a product. At most one review exists
// per (product, user) pair; writes go through upsert semantics.
type Review struct {
	ID        string
	ProductID string
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Aggregate is the derived (averageRating, ratingCount) pair for a product.
type Aggregate struct {
	AverageRating decimal.Decimal
	RatingCount   int
}

// Repository defines persistence operations for reviews. Upsert must update
// the existing row when one exists for the same (product, user) pair.
// Recompute must derive the product's aggregate from the full review set and
// store it on the product in a single atomic statement, so that concurrent
// recomputes cannot lose updates.
type Repository interface {
	Upsert(ctx context.Context, r *Review) error
	GetByProductAndUser(ctx context.Context, productID, userID string) (*Review, error)
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
	Delete(ctx context.Context, id string) error
	Recompute(ctx context.Context, productID string) (Aggregate, error)
}
