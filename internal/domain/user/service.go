package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Validation errors for registration.
var (
	ErrNameRequired  = errors.New("name is required")
	ErrEmailRequired = errors.New("email is required")
	ErrWeakPassword  = errors.New("password must be at least 8 characters")
)

const minPasswordLen = 8

// Service handles registration and login.
type Service struct {
	users  Repository
	signer *TokenSigner
	now    func() time.Time
}

// NewService creates a user Service.
func NewService(users Repository, signer *TokenSigner) *Service {
	return &Service{users: users, signer: signer, now: time.Now}
}

// Register creates a new account with a bcrypt password hash and returns the
// identity plus a signed token.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Identity, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, "", ErrNameRequired
	}
	if email == "" {
		return nil, "", ErrEmailRequired
	}
	if len(password) < minPasswordLen {
		return nil, "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errors.Wrap(err, "hash password")
	}

	u := &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleUser,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	return s.issue(u)
}

// Login verifies credentials and returns the identity plus a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*Identity, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", errors.Wrap(err, "lookup user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	return s.issue(u)
}

// Verify resolves a bearer token to an identity.
func (s *Service) Verify(token string) (*Identity, error) {
	return s.signer.Verify(token)
}

func (s *Service) issue(u *User) (*Identity, string, error) {
	id := Identity{ID: u.ID, Email: u.Email, Role: u.Role}
	token, err := s.signer.Sign(id)
	if err != nil {
		return nil, "", errors.Wrap(err, "sign token")
	}
	return &id, token, nil
}
