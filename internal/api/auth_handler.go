package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	service   simplegallery.Service
	tokenAuth *jwtauth.JWTAuth
	tokenTTL  time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service simplegallery.Service, tokenAuth *jwtauth.JWTAuth, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthHandler{
		service:   service,
		tokenAuth: tokenAuth,
		tokenTTL:  tokenTTL,
	}
}

// Routes returns the public auth routes
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	return r
}

// CredentialsRequest is the request body for register and login
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the response body for a user account
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// TokenResponse is the response body for a successful login
type TokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func userResponse(u *simplegallery.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// Register creates a new user account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.service.RegisterUser(r.Context(), simplegallery.RegisterUserRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, userResponse(user))
}

// Login verifies credentials and issues a session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID, err := h.service.VerifyUser(r.Context(), req.Username, req.Password)
	if err != nil {
		renderError(w, r, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	now := time.Now().UTC()
	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		"user_id": user.ID.String(),
		"role":    string(user.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(h.tokenTTL).Unix(),
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, TokenResponse{
		Token: tokenString,
		User:  userResponse(user),
	})
}

// actorID extracts the authenticated user ID from the request's JWT claims.
func actorID(r *http.Request) (uuid.UUID, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return uuid.Nil, simplegallery.ErrPermissionDenied
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, simplegallery.ErrPermissionDenied
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, simplegallery.ErrPermissionDenied
	}
	return id, nil
}
