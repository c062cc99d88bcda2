package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct {
	byEmail map[string]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byEmail: make(map[string]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if _, taken := m.byEmail[u.Email]; taken {
		return ErrEmailTaken
	}
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func newTestService() (*Service, *mockUserRepo) {
	repo := newMockUserRepo()
	signer := NewTokenSigner([]byte("test-secret"), time.Hour)
	return NewService(repo, signer), repo
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{"missing name", "", "a@b.c", "password123", ErrNameRequired},
		{"missing email", "Ada", "", "password123", ErrEmailRequired},
		{"short password", "Ada", "a@b.c", "short", ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.userName, tt.email, tt.password)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	id, token, err := svc.Register(ctx, "Ada", "Ada@Example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, id.Role)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.NotEmpty(t, token)

	// Password is stored hashed, never in the clear.
	stored := repo.byEmail["ada@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)

	// Login with the right password succeeds, email case-insensitive.
	loginID, loginToken, err := svc.Login(ctx, "ADA@example.COM", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, id.ID, loginID.ID)
	assert.NotEmpty(t, loginToken)

	// Wrong password and unknown email both yield the same error.
	_, _, err = svc.Login(ctx, "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", "correct-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Ada", "ada@example.com", "correct-horse")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Imposter", "ada@example.com", "another-pass")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := NewTokenSigner([]byte("secret"), time.Hour)

	token, err := signer.Sign(Identity{ID: "u1", Email: "a@b.c", Role: RoleAdmin})
	require.NoError(t, err)

	id, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)
	assert.Equal(t, RoleAdmin, id.Role)
}

func TestTokenSigner_RejectsTampering(t *testing.T) {
	signer := NewTokenSigner([]byte("secret"), time.Hour)

	token, err := signer.Sign(Identity{ID: "u1", Email: "a@b.c", Role: RoleUser})
	require.NoError(t, err)

	_, err = signer.Verify(token + "x")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = signer.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenSigner([]byte("different"), time.Hour)
	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSigner_Expiry(t *testing.T) {
	signer := NewTokenSigner([]byte("secret"), time.Minute)
	issued := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return issued }

	token, err := signer.Sign(Identity{ID: "u1"})
	require.NoError(t, err)

	signer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = signer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
