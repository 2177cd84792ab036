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

// CommentHandler handles HTTP requests for comments
type CommentHandler struct {
	service simplegallery.Service
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(service simplegallery.Service) *CommentHandler {
	return &CommentHandler{service: service}
}

// Routes returns the routes for comments
func (h *CommentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/restore", h.Restore)
	r.Delete("/{id}/purge", h.Purge)

	return r
}

// CreateCommentRequest is the request body for creating a comment
type CreateCommentRequest struct {
	AuthorID string `json:"author_id,omitempty"`
	PostID   string `json:"post_id"`
	Text     string `json:"text"`
}

// UpdateCommentRequest is the request body for patching a comment
type UpdateCommentRequest struct {
	AuthorID string  `json:"author_id,omitempty"`
	Text     *string `json:"text,omitempty"`
}

// CommentResponse is the response body for a comment
type CommentResponse struct {
	ID        string  `json:"id"`
	AuthorID  string  `json:"author_id"`
	PostID    string  `json:"post_id"`
	Text      string  `json:"text"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	DeletedAt *string `json:"deleted_at,omitempty"`
}

func commentResponse(authorID uuid.UUID, c *simplegallery.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID.String(),
		AuthorID:  authorID.String(),
		PostID:    c.PostID.String(),
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		DeletedAt: c.DeletedAt,
	}
}

// Create creates a new comment on a post
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	authorID, err := parseOwnerField(req.AuthorID, actor)
	if err != nil {
		http.Error(w, "Invalid author ID", http.StatusBadRequest)
		return
	}

	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	comment, err := h.service.CreateComment(r.Context(), simplegallery.CreateCommentRequest{
		ActorID:  actor,
		AuthorID: authorID,
		PostID:   postID,
		Text:     req.Text,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, commentResponse(authorID, comment))
}

// Update patches a comment
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	var req UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	authorID, err := parseOwnerField(req.AuthorID, actor)
	if err != nil {
		http.Error(w, "Invalid author ID", http.StatusBadRequest)
		return
	}

	comment, err := h.service.UpdateComment(r.Context(), simplegallery.UpdateCommentRequest{
		ActorID:   actor,
		AuthorID:  authorID,
		CommentID: id,
		Text:      req.Text,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, commentResponse(authorID, comment))
}

// Delete tombstones a comment
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.DeleteComment)
}

// Restore clears a comment tombstone when its post is still alive
func (h *CommentHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.RestoreComment)
}

// Purge permanently removes a comment
func (h *CommentHandler) Purge(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.PurgeComment)
}

func (h *CommentHandler) lifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actorID, authorID, commentID uuid.UUID) error) {
	actor, err := actorID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
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
