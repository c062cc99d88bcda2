package order

import (
	"context"
	"fmt"
	"time"
)

// numberPrefix and the date/sequence layout produce numbers matching
// ORD-\d{8}-\d{6}, e.g. ORD-20250615-000042.
const (
	numberPrefix = "ORD"
	dateLayout   = "20060102"
)

// Sequence hands out monotonically increasing values for a named counter.
// Implementations should be atomic (a database-level increment) so two
// concurrent callers never observe the same value.
type Sequence interface {
	Next(ctx context.Context, name string) (int64, error)
}

// SequenceName is the counter used for order numbering.
const SequenceName = "orders"

// FormatNumber renders an order number from a calendar date and sequence
// value. The date uses the server-local calendar day. The sequence wraps at
// one million so the six-digit field never widens; the duplicate-number
// retry absorbs any collision after a wrap.
func FormatNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%06d", numberPrefix, at.Format(dateLayout), seq%1_000_000)
}

// FallbackNumber derives an order number from the creation timestamp. It is
// used when sequence-based assignment keeps colliding, trading monotonicity
// for guaranteed progress.
func FallbackNumber(at time.Time) string {
	return fmt.Sprintf("%s-%s-%06d", numberPrefix, at.Format(dateLayout), at.UnixNano()%1_000_000)
}

// CountSequence derives sequence values from the current order count. It is
// retained for compatibility with stores that lack an atomic counter: two
// concurrent callers may read the same count and produce colliding numbers,
// so callers must retry on ErrDuplicateNumber.
type CountSequence struct {
	Orders interface {
		Count(ctx context.Context) (int64, error)
	}
}

// Next returns count-of-orders + 1.
func (c *CountSequence) Next(ctx context.Context, _ string) (int64, error) {
	n, err := c.Orders.Count(ctx)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}
