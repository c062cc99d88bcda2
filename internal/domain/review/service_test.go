package review

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockReviewRepo keeps reviews in memory keyed by (product, user) and
// recomputes aggregates from the full set, mirroring the storage contract.
type mockReviewRepo struct {
	reviews map[string]*Review // key: productID + "/" + userID
	err     error
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{reviews: make(map[string]*Review)}
}

func key(productID, userID string) string { return productID + "/" + userID }

func (m *mockReviewRepo) Upsert(_ context.Context, r *Review) error {
	if m.err != nil {
		return m.err
	}
	k := key(r.ProductID, r.UserID)
	if existing, ok := m.reviews[k]; ok {
		existing.Rating = r.Rating
		existing.Comment = r.Comment
		existing.UpdatedAt = r.UpdatedAt
		*r = *existing
		return nil
	}
	cp := *r
	m.reviews[k] = &cp
	return nil
}

func (m *mockReviewRepo) GetByProductAndUser(_ context.Context, productID, userID string) (*Review, error) {
	if r, ok := m.reviews[key(productID, userID)]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

func (m *mockReviewRepo) ListByProduct(_ context.Context, productID string) ([]Review, error) {
	var out []Review
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockReviewRepo) Delete(_ context.Context, id string) error {
	for k, r := range m.reviews {
		if r.ID == id {
			delete(m.reviews, k)
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockReviewRepo) Recompute(_ context.Context, productID string) (Aggregate, error) {
	sum, n := 0, 0
	for _, r := range m.reviews {
		if r.ProductID == productID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return Aggregate{AverageRating: decimal.Zero}, nil
	}
	avg := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(n))).Round(2)
	return Aggregate{AverageRating: avg, RatingCount: n}, nil
}

func TestUpsert_RatingBounds(t *testing.T) {
	svc := NewService(newMockReviewRepo())

	for _, rating := range []int{0, -1, 6} {
		_, _, err := svc.Upsert(context.Background(), "p1", Identity{UserID: "u1"}, rating, "")
		require.ErrorIs(t, err, ErrInvalidRating)
	}
}

func TestUpsert_AggregateIsMeanOfRatings(t *testing.T) {
	repo := newMockReviewRepo()
	svc := NewService(repo)
	ctx := context.Background()

	ratings := []int{5, 3, 4}
	var agg Aggregate
	for i, r := range ratings {
		user := Identity{UserID: "u" + string(rune('1'+i))}
		var err error
		_, agg, err = svc.Upsert(ctx, "p1", user, r, "nice")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, agg.RatingCount)
	assert.True(t, decimal.NewFromInt(4).Equal(agg.AverageRating),
		"expected mean 4, got %s", agg.AverageRating)
}

func TestUpsert_SecondReviewBySameUserUpdatesInPlace(t *testing.T) {
	repo := newMockReviewRepo()
	svc := NewService(repo)
	ctx := context.Background()
	who := Identity{UserID: "u1"}

	_, first, err := svc.Upsert(ctx, "p1", who, 2, "meh")
	require.NoError(t, err)
	assert.Equal(t, 1, first.RatingCount)

	_, second, err := svc.Upsert(ctx, "p1", who, 5, "grew on me")
	require.NoError(t, err)

	// Count did not grow; the aggregate reflects the updated rating.
	assert.Equal(t, 1, second.RatingCount)
	assert.True(t, decimal.NewFromInt(5).Equal(second.AverageRating))

	got, err := repo.GetByProductAndUser(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, "grew on me", got.Comment)
}

func TestDelete_OwnershipAndAdmin(t *testing.T) {
	repo := newMockReviewRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, _, err := svc.Upsert(ctx, "p1", Identity{UserID: "u1"}, 4, "")
	require.NoError(t, err)

	// A different non-admin user may not delete it.
	_, err = svc.Delete(ctx, "p1", Identity{UserID: "u2"}, "u1")
	require.ErrorIs(t, err, ErrForbidden)

	// An admin may.
	agg, err := svc.Delete(ctx, "p1", Identity{UserID: "admin", Admin: true}, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, agg.RatingCount)
}

func TestDelete_LastReviewResetsAggregate(t *testing.T) {
	repo := newMockReviewRepo()
	svc := NewService(repo)
	ctx := context.Background()

	users := []string{"u1", "u2"}
	for i, u := range users {
		_, _, err := svc.Upsert(ctx, "p1", Identity{UserID: u}, i+3, "")
		require.NoError(t, err)
	}

	agg, err := svc.Delete(ctx, "p1", Identity{UserID: "u1"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, agg.RatingCount)
	assert.True(t, decimal.NewFromInt(4).Equal(agg.AverageRating))

	agg, err = svc.Delete(ctx, "p1", Identity{UserID: "u2"}, "u2")
	require.NoError(t, err)
	assert.Equal(t, 0, agg.RatingCount)
	assert.True(t, decimal.Zero.Equal(agg.AverageRating))
}

func TestDelete_MissingReview(t *testing.T) {
	svc := NewService(newMockReviewRepo())

	_, err := svc.Delete(context.Background(), "p1", Identity{UserID: "u1"}, "u1")
	require.ErrorIs(t, err, ErrNotFound)
}
