package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
	"github.com/tendant/simple-gallery/pkg/simplegallery/snapshot"
)

// SnapshotHandler handles document export/import and snapshot storage.
// All operations are admin-only.
type SnapshotHandler struct {
	service simplegallery.Service
	manager *snapshot.Manager
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(service simplegallery.Service, manager *snapshot.Manager) *SnapshotHandler {
	return &SnapshotHandler{service: service, manager: manager}
}

// Routes returns the routes for snapshots
func (h *SnapshotHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/export", h.Export)
	r.Post("/import", h.Import)
	r.Post("/save", h.Save)
	r.Post("/restore", h.Restore)

	return r
}

// requireAdmin resolves the acting user and verifies the admin role.
func (h *SnapshotHandler) requireAdmin(r *http.Request) error {
	actor, err := actorID(r)
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(r.Context(), actor)
	if err != nil {
		return simplegallery.ErrPermissionDenied
	}
	if user.Role != simplegallery.RoleAdmin {
		return simplegallery.ErrPermissionDenied
	}
	return nil
}

// Export returns the full document as JSON
func (h *SnapshotHandler) Export(w http.ResponseWriter, r *http.Request) {
	if err := h.requireAdmin(r); err != nil {
		renderError(w, r, err)
		return
	}

	doc, err := h.service.ExportDocument(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, doc)
}

// Import replaces all state with the posted document
func (h *SnapshotHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := h.requireAdmin(r); err != nil {
		renderError(w, r, err)
		return
	}

	var doc simplegallery.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		renderError(w, r, simplegallery.ErrMalformedImport)
		return
	}

	if err := h.service.ImportDocument(r.Context(), &doc); err != nil {
		renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// SaveResponse is the response body for a stored snapshot
type SaveResponse struct {
	Key string `json:"key"`
}

// Save exports the document and writes it to the snapshot store
func (h *SnapshotHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.requireAdmin(r); err != nil {
		renderError(w, r, err)
		return
	}

	doc, err := h.service.ExportDocument(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	key, err := h.manager.Save(r.Context(), doc)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, SaveResponse{Key: key})
}

// RestoreRequest is the request body for restoring from the snapshot store.
// An empty key restores the latest snapshot.
type RestoreRequest struct {
	Key string `json:"key,omitempty"`
}

// Restore loads a stored snapshot and imports it
func (h *SnapshotHandler) Restore(w http.ResponseWriter, r *http.Request) {
	if err := h.requireAdmin(r); err != nil {
		renderError(w, r, err)
		return
	}

	var req RestoreRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var doc *simplegallery.Document
	var key string
	var err error
	if req.Key == "" {
		doc, key, err = h.manager.Latest(r.Context())
	} else {
		key = req.Key
		doc, err = h.manager.Load(r.Context(), req.Key)
	}
	if err != nil {
		if errors.Is(err, snapshot.ErrSnapshotNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		renderError(w, r, err)
		return
	}

	if err := h.service.ImportDocument(r.Context(), doc); err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, SaveResponse{Key: key})
}
