package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock repository ---

type mockProductRepo struct {
	products   []Product
	sellers    []BestSeller
	lastFilter ListFilter
	saved      *Product
	err        error
}

func (m *mockProductRepo) List(_ context.Context, f ListFilter) ([]Product, error) {
	m.lastFilter = f
	return m.products, m.err
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]Product, error) {
	return m.products, m.err
}

func (m *mockProductRepo) Featured(_ context.Context, _ int) ([]Product, error) {
	return m.products, m.err
}

func (m *mockProductRepo) NewArrivals(_ context.Context, _ int) ([]Product, error) {
	return m.products, m.err
}

func (m *mockProductRepo) BestSellers(_ context.Context, _ int) ([]BestSeller, error) {
	return m.sellers, m.err
}

func (m *mockProductRepo) Create(_ context.Context, p *Product) error {
	m.saved = p
	return m.err
}

func (m *mockProductRepo) Update(_ context.Context, p *Product) error {
	m.saved = p
	return m.err
}

func (m *mockProductRepo) Delete(_ context.Context, _ string) error {
	return m.err
}

// --- Tests ---

func TestService_ListDecoratesProducts(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)

	repo := &mockProductRepo{products: []Product{
		{
			ID:                 "p1",
			Name:               "Gift Box",
			Price:              decimal.NewFromInt(1000),
			DiscountPercentage: decimal.NewFromInt(20),
			DiscountStart:      &start,
			DiscountEnd:        &end,
			Stock:              3,
			LowStockThreshold:  5,
		},
		{
			ID:    "p2",
			Name:  "Mug",
			Price: decimal.NewFromInt(250),
			Stock: 40,
		},
	}}

	svc := NewService(repo)
	svc.now = func() time.Time { return now }

	got, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.True(t, got[0].Quote.DiscountActive)
	assert.True(t, decimal.NewFromInt(800).Equal(got[0].Quote.FinalPrice))
	assert.Equal(t, StockLow, got[0].StockStatus)

	assert.False(t, got[1].Quote.DiscountActive)
	assert.True(t, decimal.NewFromInt(250).Equal(got[1].Quote.FinalPrice))
	assert.Equal(t, StockIn, got[1].StockStatus)
}

func TestService_ListNormalizesPagination(t *testing.T) {
	repo := &mockProductRepo{}
	svc := NewService(repo)

	_, err := svc.List(context.Background(), ListFilter{Page: 0, Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.Equal(t, defaultPageLimit, repo.lastFilter.Limit)

	_, err = svc.List(context.Background(), ListFilter{Page: 3, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.lastFilter.Page)
	assert.Equal(t, maxPageLimit, repo.lastFilter.Limit)
}

func TestService_GetNotFound(t *testing.T) {
	svc := NewService(&mockProductRepo{})

	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_BestSellersKeepRankOrder(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := &mockProductRepo{sellers: []BestSeller{
		{Product: Product{ID: "p2", Price: decimal.NewFromInt(20)}, TotalSold: 90},
		{Product: Product{ID: "p1", Price: decimal.NewFromInt(10)}, TotalSold: 12},
	}}

	svc := NewService(repo)
	svc.now = func() time.Time { return now }

	got, err := svc.BestSellers(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p2", got[0].ID)
	assert.EqualValues(t, 90, got[0].TotalSold)
	assert.True(t, decimal.NewFromInt(20).Equal(got[0].Quote.FinalPrice))
}

func TestService_SaveValidation(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	tests := []struct {
		name    string
		product Product
		wantErr error
	}{
		{
			name:    "missing name",
			product: Product{Price: decimal.NewFromInt(10)},
			wantErr: ErrNameRequired,
		},
		{
			name:    "negative price",
			product: Product{Name: "x", Price: decimal.NewFromInt(-1)},
			wantErr: ErrNegativePrice,
		},
		{
			name: "percentage above 100",
			product: Product{
				Name: "x", Price: decimal.NewFromInt(10),
				DiscountPercentage: decimal.NewFromInt(101),
			},
			wantErr: ErrInvalidDiscount,
		},
		{
			name: "start without end",
			product: Product{
				Name: "x", Price: decimal.NewFromInt(10),
				DiscountStart: &now,
			},
			wantErr: ErrPartialWindow,
		},
		{
			name: "end before start",
			product: Product{
				Name: "x", Price: decimal.NewFromInt(10),
				DiscountStart: &later, DiscountEnd: &now,
			},
			wantErr: ErrWindowInverted,
		},
		{
			name: "valid product",
			product: Product{
				Name: "x", Price: decimal.NewFromInt(10),
				DiscountPercentage: decimal.NewFromInt(25),
				DiscountStart:      &now, DiscountEnd: &later,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockProductRepo{}
			svc := NewService(repo)

			err := svc.Save(context.Background(), &tt.product)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, repo.saved)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, repo.saved)
		})
	}
}
