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

// PostHandler handles HTTP requests for posts
type PostHandler struct {
	service simplegallery.Service
}

// NewPostHandler creates a new post handler
func NewPostHandler(service simplegallery.Service) *PostHandler {
	return &PostHandler{service: service}
}

// Routes returns the routes for posts
func (h *PostHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/restore", h.Restore)
	r.Delete("/{id}/purge", h.Purge)
	r.Get("/{id}/comments", h.ListComments)

	return r
}

// CreatePostRequest is the request body for creating a post
type CreatePostRequest struct {
	AuthorID       string `json:"author_id,omitempty"`
	GalleryID      string `json:"gallery_id"`
	GalleryOwnerID string `json:"gallery_owner_id,omitempty"`
	Title          string `json:"title"`
	Content        string `json:"content,omitempty"`
}

// UpdatePostRequest is the request body for patching a post
type UpdatePostRequest struct {
	AuthorID string  `json:"author_id,omitempty"`
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
}

// PostResponse is the response body for a post
type PostResponse struct {
	ID             string  `json:"id"`
	AuthorID       string  `json:"author_id"`
	GalleryID      string  `json:"gallery_id"`
	GalleryOwnerID string  `json:"gallery_owner_id,omitempty"`
	Title          string  `json:"title"`
	Content        string  `json:"content,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
	DeletedAt      *string `json:"deleted_at,omitempty"`
	DeletedReason  string  `json:"deleted_reason,omitempty"`
}

func postResponse(authorID uuid.UUID, p *simplegallery.Post) PostResponse {
	galleryOwner := ""
	if p.GalleryOwnerID != uuid.Nil {
		galleryOwner = p.GalleryOwnerID.String()
	}
	return PostResponse{
		ID:             p.ID.String(),
		AuthorID:       authorID.String(),
		GalleryID:      p.GalleryID.String(),
		GalleryOwnerID: galleryOwner,
		Title:          p.Title,
		Content:        p.Content,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		DeletedAt:      p.DeletedAt,
		DeletedReason:  string(p.DeletedReason),
	}
}

// Create creates a new post in a gallery
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	authorID, err := parseOwnerField(req.AuthorID, actor)
	if err != nil {
		http.Error(w, "Invalid author ID", http.StatusBadRequest)
		return
	}

	galleryID, err := uuid.Parse(req.GalleryID)
	if err != nil {
		http.Error(w, "Invalid gallery ID", http.StatusBadRequest)
		return
	}

	var galleryOwner *uuid.UUID
	if req.GalleryOwnerID != "" {
		hint, err := uuid.Parse(req.GalleryOwnerID)
		if err != nil {
			http.Error(w, "Invalid gallery owner ID", http.StatusBadRequest)
			return
		}
		galleryOwner = &hint
	}

	post, err := h.service.CreatePost(r.Context(), simplegallery.CreatePostRequest{
		ActorID:        actor,
		AuthorID:       authorID,
		GalleryID:      galleryID,
		GalleryOwnerID: galleryOwner,
		Title:          req.Title,
		Content:        req.Content,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, postResponse(authorID, post))
}

// Get resolves a post by ID. The "author" query parameter is an optional
// partition hint.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := actorID(r); err != nil {
		renderError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var authorHint *uuid.UUID
	if raw := r.URL.Query().Get("author"); raw != "" {
		hint, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid author ID", http.StatusBadRequest)
			return
		}
		authorHint = &hint
	}

	owned, err := h.service.ResolvePost(r.Context(), id, authorHint)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, postResponse(owned.AuthorID, owned.Post))
}

// Update patches a post
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	authorID, err := parseOwnerField(req.AuthorID, actor)
	if err != nil {
		http.Error(w, "Invalid author ID", http.StatusBadRequest)
		return
	}

	post, err := h.service.UpdatePost(r.Context(), simplegallery.UpdatePostRequest{
		ActorID:  actor,
		AuthorID: authorID,
		PostID:   id,
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, postResponse(authorID, post))
}

// Delete tombstones a post
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.DeletePost)
}

// Restore clears a post tombstone when its gallery is still alive
func (h *PostHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.RestorePost)
}

// Purge permanently removes a post and its comments
func (h *PostHandler) Purge(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.PurgePost)
}

func (h *PostHandler) lifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actorID, authorID, postID uuid.UUID) error) {
	actor, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	authorID := actor
	if raw := r.URL.Query().Get("author"); raw != "" {
		authorID, err = uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid author ID", http.StatusBadRequest)
			return
		}
	}

	if err := op(r.Context(), actor, authorID, id); err != nil {
		renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// ListComments lists the comments on a post
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	if _, err := actorID(r); err != nil {
		renderError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	comments, err := h.service.ListCommentsForPost(r.Context(), simplegallery.ListCommentsRequest{
		PostID:         id,
		IncludeDeleted: r.URL.Query().Get("include_deleted") == "true",
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	resp := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, commentResponse(c.AuthorID, c.Comment))
	}
	render.JSON(w, r, resp)
}
