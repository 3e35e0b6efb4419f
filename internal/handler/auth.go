package handler

import (
	"net/http"

	"github.com/google/uuid"

	"inventorypro/internal/domain"
	"inventorypro/internal/middleware"
	"inventorypro/internal/service"
)

// AuthHandler serves login, logout and account endpoints.
type AuthHandler struct {
	users    *service.UserService
	store    domain.UserStore
	sessions *service.SessionManager
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users *service.UserService, store domain.UserStore, sessions *service.SessionManager) *AuthHandler {
	return &AuthHandler{users: users, store: store, sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/auth/login: verifies credentials and binds the
// user to the current session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionCart(w, r)
	if !ok {
		return
	}

	var req loginRequest
	if err := DecodeValid(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.sessions.Login(session.Token, user.ID)
	RespondJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout: unbinds the user but keeps the
// terminal session (and its cart) alive.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionCart(w, r)
	if !ok {
		return
	}

	h.sessions.Login(session.Token, uuid.Nil)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil || !session.Authenticated() {
		ErrorResponse(w, r, domain.Unauthorized("users.me", "not logged in"))
		return
	}

	user, err := h.store.GetUserByID(r.Context(), session.UserID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"`
	Role     string `json:"role" validate:"required,oneof=admin staff"`
}

// Register handles POST /api/auth/register (admin only, enforced in routes).
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := DecodeValid(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, user)
}
