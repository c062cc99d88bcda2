package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/order"
)

const orderColumns = `id, order_number, customer_name, customer_email,
	customer_phone, address, items, total_amount, status, notes,
	created_at, updated_at`

const (
	insertOrderSQL = `INSERT INTO orders (id, order_number, customer_name, customer_email,
		customer_phone, address, items, total_amount, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	countOrdersSQL = `SELECT COUNT(*) FROM orders`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, notes = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + orderColumns

	// nextSequenceSQL atomically increments a named counter and returns the
	// new value. The upsert makes the first use self-initializing.
	nextSequenceSQL = `INSERT INTO order_counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = order_counters.value + 1
		RETURNING value`
)

var (
	_ order.Repository = (*OrderRepository)(nil)
	_ order.Sequence   = (*PostgresSequence)(nil)
)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. Line-item snapshots are serialized to JSON
// for the JSONB column. A unique constraint violation on the order number
// is surfaced as order.ErrDuplicateNumber so the caller can retry.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	_, err = r.pool.Exec(ctx, insertOrderSQL,
		o.ID, o.Number, o.Customer.Name, o.Customer.Email,
		o.Customer.Phone, o.Customer.Address, itemsJSON,
		o.TotalAmount, string(o.Status), o.Notes, o.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return order.ErrDuplicateNumber
		}
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// List returns a page of orders, newest first, optionally filtered by status.
func (r *OrderRepository) List(ctx context.Context, f order.ListFilter) ([]order.Order, error) {
	offset := (f.Page - 1) * f.Limit
	rows, err := r.pool.Query(ctx, listOrdersSQL, string(f.Status), f.Limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Count returns the total number of orders.
func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countOrdersSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting orders: %w", err)
	}
	return n, nil
}

// UpdateStatus sets an order's status and notes, returning the updated row.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status, notes string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, updateOrderStatusSQL, id, string(status), notes)
	if err != nil {
		return nil, fmt.Errorf("updating order %q status: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("updating order %q status: %w", id, err)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
		status    string
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.Customer.Name, &o.Customer.Email,
		&o.Customer.Phone, &o.Customer.Address, &itemsJSON,
		&o.TotalAmount, &status, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	return o, nil
}

// PostgresSequence implements order.Sequence with a database-level atomic
// increment, eliminating the read-count-then-insert race entirely.
type PostgresSequence struct {
	pool *pgxpool.Pool
}

// NewPostgresSequence returns a PostgresSequence that uses the given pool.
func NewPostgresSequence(pool *pgxpool.Pool) *PostgresSequence {
	return &PostgresSequence{pool: pool}
}

// Next atomically increments the named counter and returns the new value.
func (s *PostgresSequence) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	if err := s.pool.QueryRow(ctx, nextSequenceSQL, name).Scan(&value); err != nil {
		return 0, fmt.Errorf("incrementing sequence %q: %w", name, err)
	}
	return value, nil
}
