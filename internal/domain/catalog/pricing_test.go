package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceAt(t *testing.T) {
	t0 := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	t0end := t0.Add(time.Hour)

	tests := []struct {
		name        string
		price       string
		pct         string
		start       *time.Time
		end         *time.Time
		now         time.Time
		wantFinal   string
		wantActive  bool
		wantPct     string
		wantExpiry  *time.Time
	}{
		{
			name:       "inside window applies discount",
			price:      "1000",
			pct:        "20",
			start:      &t0,
			end:        &t0end,
			now:        t0.Add(30 * time.Minute),
			wantFinal:  "800",
			wantActive: true,
			wantPct:    "20",
			wantExpiry: &t0end,
		},
		{
			name:      "after window returns base price",
			price:     "1000",
			pct:       "20",
			start:     &t0,
			end:       &t0end,
			now:       t0.Add(2 * time.Hour),
			wantFinal: "1000",
			wantPct:   "0",
		},
		{
			name:      "before window returns base price",
			price:     "1000",
			pct:       "20",
			start:     &t0,
			end:       &t0end,
			now:       t0.Add(-time.Second),
			wantFinal: "1000",
			wantPct:   "0",
		},
		{
			name:       "start boundary is inclusive",
			price:      "100",
			pct:        "10",
			start:      &t0,
			end:        &t0end,
			now:        t0,
			wantFinal:  "90",
			wantActive: true,
			wantPct:    "10",
			wantExpiry: &t0end,
		},
		{
			name:       "end boundary is inclusive",
			price:      "100",
			pct:        "10",
			start:      &t0,
			end:        &t0end,
			now:        t0end,
			wantFinal:  "90",
			wantActive: true,
			wantPct:    "10",
			wantExpiry: &t0end,
		},
		{
			name:       "start equal to end is active at that exact instant",
			price:      "50",
			pct:        "50",
			start:      &t0,
			end:        &t0,
			now:        t0,
			wantFinal:  "25",
			wantActive: true,
			wantPct:    "50",
			wantExpiry: &t0,
		},
		{
			name:      "zero percentage is inactive even inside window",
			price:     "100",
			pct:       "0",
			start:     &t0,
			end:       &t0end,
			now:       t0.Add(time.Minute),
			wantFinal: "100",
			wantPct:   "0",
		},
		{
			name:      "missing end bound is inactive",
			price:     "100",
			pct:       "20",
			start:     &t0,
			end:       nil,
			now:       t0.Add(time.Minute),
			wantFinal: "100",
			wantPct:   "0",
		},
		{
			name:      "missing start bound is inactive",
			price:     "100",
			pct:       "20",
			start:     nil,
			end:       &t0end,
			now:       t0.Add(time.Minute),
			wantFinal: "100",
			wantPct:   "0",
		},
		{
			name:      "no window at all is inactive",
			price:     "100",
			pct:       "20",
			now:       t0,
			wantFinal: "100",
			wantPct:   "0",
		},
		{
			name:       "full discount floors at zero",
			price:      "100",
			pct:        "100",
			start:      &t0,
			end:        &t0end,
			now:        t0.Add(time.Minute),
			wantFinal:  "0",
			wantActive: true,
			wantPct:    "100",
			wantExpiry: &t0end,
		},
		{
			name:       "fractional result rounds to two decimal places",
			price:      "19.99",
			pct:        "15",
			start:      &t0,
			end:        &t0end,
			now:        t0.Add(time.Minute),
			wantFinal:  "16.99",
			wantActive: true,
			wantPct:    "15",
			wantExpiry: &t0end,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := decimal.RequireFromString(tt.price)
			pct := decimal.RequireFromString(tt.pct)

			q := PriceAt(price, pct, tt.start, tt.end, tt.now)

			assert.Equal(t, tt.wantActive, q.DiscountActive)
			assert.True(t, decimal.RequireFromString(tt.wantFinal).Equal(q.FinalPrice),
				"expected final price %s, got %s", tt.wantFinal, q.FinalPrice)
			assert.True(t, decimal.RequireFromString(tt.wantPct).Equal(q.DiscountPercent),
				"expected displayed percent %s, got %s", tt.wantPct, q.DiscountPercent)

			if tt.wantExpiry == nil {
				assert.Nil(t, q.DiscountExpiry)
			} else {
				require.NotNil(t, q.DiscountExpiry)
				assert.True(t, tt.wantExpiry.Equal(*q.DiscountExpiry))
			}

			// Invariant: final price never exceeds base price, with equality
			// exactly when the discount is inactive (for positive percentages).
			assert.True(t, q.FinalPrice.LessThanOrEqual(price))
			if !q.DiscountActive {
				assert.True(t, q.FinalPrice.Equal(price))
			}
		})
	}
}

func TestPriceAt_TimezoneInvariant(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	start := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	// The same instant expressed in a non-UTC zone must yield the same quote.
	nowLocal := start.Add(30 * time.Minute).In(loc)

	q := PriceAt(decimal.NewFromInt(200), decimal.NewFromInt(25), &start, &end, nowLocal)

	require.True(t, q.DiscountActive)
	assert.True(t, decimal.NewFromInt(150).Equal(q.FinalPrice))
}

func TestProduct_StockStatus(t *testing.T) {
	tests := []struct {
		name      string
		stock     int
		threshold int
		want      StockStatus
	}{
		{"above threshold", 10, 5, StockIn},
		{"at threshold", 5, 5, StockLow},
		{"below threshold", 3, 5, StockLow},
		{"zero stock", 0, 5, StockOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Stock: tt.stock, LowStockThreshold: tt.threshold}
			assert.Equal(t, tt.want, p.StockStatus())
		})
	}
}
