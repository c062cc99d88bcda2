package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/user"
)

const userColumns = `id, name, email, password_hash, role, created_at`

const (
	insertUserSQL = `INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	getUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	getUserByIDSQL    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user. An email uniqueness violation is surfaced as
// user.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.pool.Exec(ctx, insertUserSQL,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailTaken
		}
		return fmt.Errorf("creating user %q: %w", u.ID, err)
	}
	return nil
}

// GetByEmail returns the user with the given email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, getUserByEmailSQL, email)
}

// GetByID returns the user with the given ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getOne(ctx, getUserByIDSQL, id)
}

func (r *UserRepository) getOne(ctx context.Context, sql, arg string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var (
		u    user.User
		role string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	u.Role = user.Role(role)
	return u, err
}
