package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
)

// SettingsHandler handles HTTP requests for partition display settings.
// Settings are strictly owner-scoped: the authenticated user reads and
// writes only its own.
type SettingsHandler struct {
	service simplegallery.Service
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(service simplegallery.Service) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Routes returns the routes for settings
func (h *SettingsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Get)
	r.Put("/", h.Update)

	return r
}

// UpdateSettingsRequest is the request body for patching settings
type UpdateSettingsRequest struct {
	Theme    *string `json:"theme,omitempty"`
	Accent   *string `json:"accent,omitempty"`
	ViewMode *string `json:"view_mode,omitempty"`
}

// Get returns the acting user's settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	settings, err := h.service.GetSettings(r.Context(), actor)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, settings)
}

// Update patches the acting user's settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), simplegallery.UpdateSettingsRequest{
		ActorID:  actor,
		OwnerID:  actor,
		Theme:    req.Theme,
		Accent:   req.Accent,
		ViewMode: req.ViewMode,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, settings)
}
