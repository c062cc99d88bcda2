package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Identity is the minimal authenticated caller info the service needs for
// ownership checks.
type Identity struct {
	UserID string
	Admin  bool
}

// Service owns review mutations and keeps product rating aggregates
// consistent with the reviews collection: every create, update, and delete
// recomputes the affected product's aggregate within the same logical
// operation, so a read immediately afterwards observes updated values.
type Service struct {
	reviews Repository
	now     func() time.Time
}

// NewService creates a review Service backed by the given repository.
func NewService(reviews Repository) *Service {
	return &Service{reviews: reviews, now: time.Now}
}

// Upsert creates the caller's review for a product, or updates it when one
// already exists; the rating count never grows for a repeat review by the
// same user. Returns the review and the product's recomputed aggregate.
func (s *Service) Upsert(ctx context.Context, productID string, who Identity, rating int, comment string) (*Review, Aggregate, error) {
	if rating < 1 || rating > 5 {
		return nil, Aggregate{}, ErrInvalidRating
	}

	r := &Review{
		ID:        uuid.New().String(),
		ProductID: productID,
		UserID:    who.UserID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}
	if err := s.reviews.Upsert(ctx, r); err != nil {
		return nil, Aggregate{}, fmt.Errorf("upsert review: %w", err)
	}

	agg, err := s.reviews.Recompute(ctx, productID)
	if err != nil {
		return nil, Aggregate{}, fmt.Errorf("recompute rating aggregate: %w", err)
	}
	return r, agg, nil
}

// Delete removes a review. Only the review's owner or an admin may delete
// it. The product aggregate is recomputed as part of the same operation;
// deleting the last review resets it to zero.
func (s *Service) Delete(ctx context.Context, productID string, who Identity, ownerID string) (Aggregate, error) {
	if who.UserID != ownerID && !who.Admin {
		return Aggregate{}, ErrForbidden
	}

	r, err := s.reviews.GetByProductAndUser(ctx, productID, ownerID)
	if err != nil {
		return Aggregate{}, err
	}
	if err := s.reviews.Delete(ctx, r.ID); err != nil {
		return Aggregate{}, fmt.Errorf("delete review: %w", err)
	}

	agg, err := s.reviews.Recompute(ctx, productID)
	if err != nil {
		return Aggregate{}, fmt.Errorf("recompute rating aggregate: %w", err)
	}
	return agg, nil
}

// List returns all reviews for a product.
func (s *Service) List(ctx context.Context, productID string) ([]Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}
