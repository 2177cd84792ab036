package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
)

// UserHandler handles HTTP requests for user accounts
type UserHandler struct {
	service simplegallery.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(service simplegallery.Service) *UserHandler {
	return &UserHandler{service: service}
}

// Routes returns the routes for users
func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/me", h.Me)
	r.Get("/{id}", h.Get)

	return r
}

// List lists all registered users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := actorID(r); err != nil {
		renderError(w, r, err)
		return
	}

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, userResponse(u))
	}
	render.JSON(w, r, resp)
}

// Me returns the acting user's account
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), actor)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, userResponse(user))
}

// Get returns a user by ID
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := actorID(r); err != nil {
		renderError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, userResponse(user))
}
