package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/review"
)

const reviewColumns = `id, product_id, user_id, rating, comment, created_at, updated_at`

const (
	// upsertReviewSQL enforces the one-review-per-(product,user) invariant at
	// the storage layer: a second write by the same user updates in place.
	upsertReviewSQL = `INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (product_id, user_id) DO UPDATE
			SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = EXCLUDED.updated_at
		RETURNING ` + reviewColumns

	getReviewByPairSQL = `SELECT ` + reviewColumns + ` FROM reviews
		WHERE product_id = $1 AND user_id = $2`

	listReviewsSQL = `SELECT ` + reviewColumns + ` FROM reviews
		WHERE product_id = $1 ORDER BY created_at DESC`

	deleteReviewSQL = `DELETE FROM reviews WHERE id = $1`

	// recomputeAggregateSQL writes the aggregate derived from the full review
	// set in a single statement. Concurrent review mutations each run it, and
	// whichever UPDATE commits last carries a complete recomputation, so no
	// increment is ever lost.
	recomputeAggregateSQL = `UPDATE products SET
			average_rating = COALESCE((SELECT ROUND(AVG(rating), 2) FROM reviews WHERE product_id = $1), 0),
			rating_count   = COALESCE((SELECT COUNT(*) FROM reviews WHERE product_id = $1), 0)
		WHERE id = $1
		RETURNING average_rating, rating_count`
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Upsert creates or updates the user's review of a product. On update, the
// stored row's identity and creation time are preserved and written back to r.
func (r *ReviewRepository) Upsert(ctx context.Context, rv *review.Review) error {
	rows, err := r.pool.Query(ctx, upsertReviewSQL,
		rv.ID, rv.ProductID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting review for product %q: %w", rv.ProductID, err)
	}

	stored, err := pgx.CollectExactlyOneRow(rows, scanReview)
	if err != nil {
		return fmt.Errorf("upserting review for product %q: %w", rv.ProductID, err)
	}
	*rv = stored
	return nil
}

// GetByProductAndUser returns the review for a (product, user) pair.
func (r *ReviewRepository) GetByProductAndUser(ctx context.Context, productID, userID string) (*review.Review, error) {
	rows, err := r.pool.Query(ctx, getReviewByPairSQL, productID, userID)
	if err != nil {
		return nil, fmt.Errorf("getting review: %w", err)
	}

	rv, err := pgx.CollectExactlyOneRow(rows, scanReview)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, review.ErrNotFound
		}
		return nil, fmt.Errorf("getting review: %w", err)
	}
	return &rv, nil
}

// ListByProduct returns all reviews for a product, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]review.Review, error) {
	rows, err := r.pool.Query(ctx, listReviewsSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for product %q: %w", productID, err)
	}
	return pgx.CollectRows(rows, scanReview)
}

// Delete removes a review by ID.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteReviewSQL, id)
	if err != nil {
		return fmt.Errorf("deleting review %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrNotFound
	}
	return nil
}

// Recompute derives the product's rating aggregate from its full review set
// and stores it on the product row atomically.
func (r *ReviewRepository) Recompute(ctx context.Context, productID string) (review.Aggregate, error) {
	var agg review.Aggregate
	err := r.pool.QueryRow(ctx, recomputeAggregateSQL, productID).
		Scan(&agg.AverageRating, &agg.RatingCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Product deleted out from under the review; nothing to store.
			return review.Aggregate{}, nil
		}
		return review.Aggregate{}, fmt.Errorf("recomputing aggregate for product %q: %w", productID, err)
	}
	return agg, nil
}

func scanReview(row pgx.CollectableRow) (review.Review, error) {
	var rv review.Review
	err := row.Scan(
		&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment,
		&rv.CreatedAt, &rv.UpdatedAt,
	)
	return rv, err
}
