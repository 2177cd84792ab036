package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
)

// GalleryHandler handles HTTP requests for galleries
type GalleryHandler struct {
	service simplegallery.Service
}

// NewGalleryHandler creates a new gallery handler
func NewGalleryHandler(service simplegallery.Service) *GalleryHandler {
	return &GalleryHandler{service: service}
}

// Routes returns the routes for galleries. All routes require an
// authenticated actor.
func (h *GalleryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/restore", h.Restore)
	r.Delete("/{id}/purge", h.Purge)
	r.Get("/{id}/meta", h.Meta)
	r.Get("/{id}/posts", h.ListPosts)

	return r
}

// CreateGalleryRequest is the request body for creating a gallery
type CreateGalleryRequest struct {
	OwnerID     string `json:"owner_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	Pinned      bool   `json:"pinned,omitempty"`
}

// UpdateGalleryRequest is the request body for patching a gallery. Absent
// fields keep their prior value.
type UpdateGalleryRequest struct {
	OwnerID     string  `json:"owner_id,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
	Pinned      *bool   `json:"pinned,omitempty"`
}

// GalleryResponse is the response body for a gallery
type GalleryResponse struct {
	ID            string  `json:"id"`
	OwnerID       string  `json:"owner_id"`
	OwnerUsername string  `json:"owner_username,omitempty"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Icon          string  `json:"icon"`
	Color         string  `json:"color"`
	Pinned        bool    `json:"pinned"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
	DeletedAt     *string `json:"deleted_at,omitempty"`
}

func galleryResponse(ownerID uuid.UUID, ownerUsername string, g *simplegallery.Gallery) GalleryResponse {
	return GalleryResponse{
		ID:            g.ID.String(),
		OwnerID:       ownerID.String(),
		OwnerUsername: ownerUsername,
		Title:         g.Title,
		Description:   g.Description,
		Icon:          g.Icon,
		Color:         g.Color,
		Pinned:        g.Pinned,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
		DeletedAt:     g.DeletedAt,
	}
}

// ownerParam resolves the target partition owner: the "owner" query parameter
// when present, otherwise the acting user itself.
func ownerParam(r *http.Request, actor uuid.UUID) (uuid.UUID, error) {
	raw := r.URL.Query().Get("owner")
	if raw == "" {
		return actor, nil
	}
	return uuid.Parse(raw)
}

// parseOwnerField resolves an optional owner field from a request body.
func parseOwnerField(raw string, actor uuid.UUID) (uuid.UUID, error) {
	if raw == "" {
		return actor, nil
	}
	return uuid.Parse(raw)
}

// List lists galleries across all partitions
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	_, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	listings, err := h.service.ListGalleries(r.Context(), simplegallery.ListGalleriesRequest{
		IncludeDeleted: r.URL.Query().Get("include_deleted") == "true",
		Search:         r.URL.Query().Get("q"),
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	resp := make([]GalleryResponse, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, galleryResponse(l.OwnerID, l.OwnerUsername, l.Gallery))
	}
	render.JSON(w, r, resp)
}

// Create creates a new gallery
func (h *GalleryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req CreateGalleryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ownerID, err := parseOwnerField(req.OwnerID, actor)
	if err != nil {
		http.Error(w, "Invalid owner ID", http.StatusBadRequest)
		return
	}

	gallery, err := h.service.CreateGallery(r.Context(), simplegallery.CreateGalleryRequest{
		ActorID:     actor,
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Pinned:      req.Pinned,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, galleryResponse(ownerID, "", gallery))
}

// Get resolves a gallery by ID. The "owner" query parameter is an optional
// partition hint.
func (h *GalleryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := actorID(r); err != nil {
		renderError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid gallery ID", http.StatusBadRequest)
		return
	}

	var ownerHint *uuid.UUID
	if raw := r.URL.Query().Get("owner"); raw != "" {
		hint, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid owner ID", http.StatusBadRequest)
			return
		}
		ownerHint = &hint
	}

	owned, err := h.service.ResolveGallery(r.Context(), id, ownerHint)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, galleryResponse(owned.OwnerID, "", owned.Gallery))
}

// Update patches a gallery
func (h *GalleryHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid gallery ID", http.StatusBadRequest)
		return
	}

	var req UpdateGalleryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ownerID, err := parseOwnerField(req.OwnerID, actor)
	if err != nil {
		http.Error(w, "Invalid owner ID", http.StatusBadRequest)
		return
	}

	gallery, err := h.service.UpdateGallery(r.Context(), simplegallery.UpdateGalleryRequest{
		ActorID:     actor,
		OwnerID:     ownerID,
		GalleryID:   id,
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Pinned:      req.Pinned,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, galleryResponse(ownerID, "", gallery))
}

// Delete tombstones a gallery and cascades to its alive posts
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.DeleteGallery)
}

// Restore clears a gallery tombstone and restores cascade-deleted posts
func (h *GalleryHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.RestoreGallery)
}

// Purge permanently removes a gallery, its posts and their comments
func (h *GalleryHandler) Purge(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.PurgeGallery)
}

func (h *GalleryHandler) lifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actorID, ownerID, galleryID uuid.UUID) error) {
	actor, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid gallery ID", http.StatusBadRequest)
		return
	}

	ownerID, err := ownerParam(r, actor)
	if err != nil {
		http.Error(w, "Invalid owner ID", http.StatusBadRequest)
		return
	}

	if err := op(r.Context(), actor, ownerID, id); err != nil {
		renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// Meta returns aggregate counts and recency for a gallery
func (h *GalleryHandler) Meta(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid gallery ID", http.StatusBadRequest)
		return
	}

	ownerID, err := ownerParam(r, actor)
	if err != nil {
		http.Error(w, "Invalid owner ID", http.StatusBadRequest)
		return
	}

	meta, err := h.service.ComputeGalleryMeta(r.Context(), ownerID, id)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, meta)
}

// ListPosts lists the posts targeting a gallery
func (h *GalleryHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid gallery ID", http.StatusBadRequest)
		return
	}

	ownerID, err := ownerParam(r, actor)
	if err != nil {
		http.Error(w, "Invalid owner ID", http.StatusBadRequest)
		return
	}

	posts, err := h.service.ListPostsInGallery(r.Context(), simplegallery.ListPostsRequest{
		OwnerID:        ownerID,
		GalleryID:      id,
		IncludeDeleted: r.URL.Query().Get("include_deleted") == "true",
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	resp := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, postResponse(p.AuthorID, p.Post))
	}
	render.JSON(w, r, resp)
}
