package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/user"
)

type identityKey struct{}

// identityFrom returns the authenticated identity stored by RequireAuth.
func identityFrom(ctx context.Context) (*user.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*user.Identity)
	return id, ok
}

// RequireAuth verifies the Bearer token and stores the resolved identity in
// the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		id, err := h.users.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects authenticated callers without the admin role. It must
// be mounted after RequireAuth.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if id.Role != user.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func toAuthResponse(id *user.Identity, token string) authResponse {
	var resp authResponse
	resp.Token = token
	resp.User.ID = id.ID
	resp.User.Email = id.Email
	resp.User.Role = string(id.Role)
	return resp
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id, token, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNameRequired),
			errors.Is(err, user.ErrEmailRequired),
			errors.Is(err, user.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, user.ErrEmailTaken):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeServerError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toAuthResponse(id, token))
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(id, token))
}
