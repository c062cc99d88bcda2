package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/catalog"
)

const productColumns = `id, name, description, price, category,
	discount_percentage, discount_start, discount_end,
	stock, low_stock_threshold, featured, image_url,
	average_rating, rating_count, created_at, updated_at`

const (
	listProductsSQL = `SELECT ` + productColumns + ` FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' ESCAPE '\'
		   OR description ILIKE '%' || $1 || '%' ESCAPE '\')
		  AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	getProductByIDSQL  = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	getProductsByIDsQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	featuredProductsSQL = `SELECT ` + productColumns + ` FROM products
		WHERE featured ORDER BY created_at DESC LIMIT $1`

	newArrivalsSQL = `SELECT ` + productColumns + ` FROM products
		ORDER BY created_at DESC LIMIT $1`

	// Best sellers rank by summed quantities from historical order line-item
	// snapshots, not by live stock or pricing.
	bestSellersSQL = `SELECT ` + productColumns + `, sold.total_sold FROM products
		JOIN (
			SELECT item->>'product_id' AS product_id,
			       SUM((item->>'quantity')::bigint) AS total_sold
			FROM orders, jsonb_array_elements(items) AS item
			GROUP BY item->>'product_id'
		) sold ON sold.product_id = products.id
		ORDER BY sold.total_sold DESC
		LIMIT $1`

	insertProductSQL = `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	updateProductSQL = `UPDATE products SET
		name = $2, description = $3, price = $4, category = $5,
		discount_percentage = $6, discount_start = $7, discount_end = $8,
		stock = $9, low_stock_threshold = $10, featured = $11, image_url = $12,
		updated_at = now()
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	// Feed imports re-run against the same data; rating aggregates are
	// preserved on conflict since they belong to the review pipeline.
	upsertProductSQL = `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			price = EXCLUDED.price, category = EXCLUDED.category,
			discount_percentage = EXCLUDED.discount_percentage,
			discount_start = EXCLUDED.discount_start,
			discount_end = EXCLUDED.discount_end,
			stock = EXCLUDED.stock,
			low_stock_threshold = EXCLUDED.low_stock_threshold,
			featured = EXCLUDED.featured, image_url = EXCLUDED.image_url,
			updated_at = now()`
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// likeEscaper neutralizes LIKE metacharacters so search terms match
// literally. The queries declare backslash as the escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns a page of products matching the filter. Search is a
// case-insensitive substring match over name and description; category is an
// exact match.
func (r *ProductRepository) List(ctx context.Context, f catalog.ListFilter) ([]catalog.Product, error) {
	offset := (f.Page - 1) * f.Limit
	rows, err := r.pool.Query(ctx, listProductsSQL, likeEscaper.Replace(f.Search), f.Category, f.Limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Featured returns products flagged for merchandising.
func (r *ProductRepository) Featured(ctx context.Context, limit int) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, featuredProductsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing featured products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// NewArrivals returns the most recently created products.
func (r *ProductRepository) NewArrivals(ctx context.Context, limit int) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, newArrivalsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing new arrivals: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// BestSellers ranks products by total quantity across order item snapshots.
func (r *ProductRepository) BestSellers(ctx context.Context, limit int) ([]catalog.BestSeller, error) {
	rows, err := r.pool.Query(ctx, bestSellersSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing best sellers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.BestSeller, error) {
		var bs catalog.BestSeller
		err := scanProductInto(row, &bs.Product, &bs.TotalSold)
		return bs, err
	})
}

// Create inserts a new product, assigning an ID when absent.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.pool.Exec(ctx, insertProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Category,
		p.DiscountPercentage, p.DiscountStart, p.DiscountEnd,
		p.Stock, p.LowStockThreshold, p.Featured, p.ImageURL,
		p.AverageRating, p.RatingCount, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Upsert inserts a product or refreshes its catalog-managed fields when a row
// with the same ID already exists. Used by the feed importer.
func (r *ProductRepository) Upsert(ctx context.Context, p *catalog.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Category,
		p.DiscountPercentage, p.DiscountStart, p.DiscountEnd,
		p.Stock, p.LowStockThreshold, p.Featured, p.ImageURL,
		p.AverageRating, p.RatingCount, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

// Update persists catalog-managed fields. Rating aggregates are written only
// by the review repository's recompute.
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Category,
		p.DiscountPercentage, p.DiscountStart, p.DiscountEnd,
		p.Stock, p.LowStockThreshold, p.Featured, p.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes a product. Orders and reviews that reference it are kept.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := scanProductInto(row, &p)
	return p, err
}

func scanProductInto(row pgx.CollectableRow, p *catalog.Product, extra ...any) error {
	dest := []any{
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
		&p.DiscountPercentage, &p.DiscountStart, &p.DiscountEnd,
		&p.Stock, &p.LowStockThreshold, &p.Featured, &p.ImageURL,
		&p.AverageRating, &p.RatingCount, &p.CreatedAt, &p.UpdatedAt,
	}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}
