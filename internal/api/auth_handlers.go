package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/readmodel"
)

// AuthHandlers issue access tokens. Every other route trusts the identity in
// the token as given.
type AuthHandlers struct {
	users      store.UserStore
	hasher     *auth.PasswordHasher
	jwtService *auth.JWTService
	opts       Options
	logger     *slog.Logger
}

func NewAuthHandlers(users store.UserStore, hasher *auth.PasswordHasher, jwtService *auth.JWTService, opts Options, logger *slog.Logger) *AuthHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandlers{
		users:      users,
		hasher:     hasher,
		jwtService: jwtService,
		opts:       opts,
		logger:     logger.With("component", "auth"),
	}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string                `json:"token"`
	ExpiresAt time.Time             `json:"expiresAt"`
	User      readmodel.UserProfile `json:"user"`
}

func toProfile(u *user.User) readmodel.UserProfile {
	return readmodel.UserProfile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, h.opts.maxBody(), &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	newUser, err := user.New(req.Email, req.Name, hash)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.users.Create(r.Context(), newUser); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, newUser)
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, h.opts.maxBody(), &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, user.ErrUserNotFound) {
		writeError(w, r, h.logger, user.ErrInvalidCredentials)
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !h.hasher.Check(req.Password, u.PasswordHash) {
		writeError(w, r, h.logger, user.ErrInvalidCredentials)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, u)
}

// Logout always clears the cookie. A still-valid token only identifies who
// logged out.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	if userID := middleware.GetUserID(r.Context()); userID != "" {
		h.logger.Info("user logged out", "user_id", userID)
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toProfile(u))
}

// respondWithToken sets the access_token cookie for browsers and returns the
// same token in the body for API clients.
func (h *AuthHandlers) respondWithToken(w http.ResponseWriter, r *http.Request, status int, u *user.User) {
	token, expiresAt, err := h.jwtService.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(h.jwtService.Expiry().Seconds()),
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("user authenticated", "user_id", u.ID)
	respondJSON(w, status, AuthResponse{Token: token, ExpiresAt: expiresAt, User: toProfile(u)})
}
