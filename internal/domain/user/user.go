package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Role gates access to administrative operations.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering with an email that is
	// already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on a failed login. It deliberately
	// does not distinguish unknown email from wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is a registered account. PasswordHash is a bcrypt hash and never
// leaves the domain layer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Identity is the authenticated principal attached to a request.
type Identity struct {
	ID    string
	Email string
	Role  Role
}

// Repository defines persistence operations for users. Create must return
// ErrEmailTaken when the email uniqueness constraint is violated.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
