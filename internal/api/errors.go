package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
)

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusForError maps service errors onto HTTP status codes. Wrapped errors
// are matched through errors.Is, so GalleryError and friends map by their
// underlying sentinel.
func statusForError(err error) int {
	switch {
	case errors.Is(err, simplegallery.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, simplegallery.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, simplegallery.ErrGalleryNotFound),
		errors.Is(err, simplegallery.ErrPostNotFound),
		errors.Is(err, simplegallery.ErrCommentNotFound),
		errors.Is(err, simplegallery.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, simplegallery.ErrDuplicateUsername):
		return http.StatusConflict
	case errors.Is(err, simplegallery.ErrAlreadyDeleted),
		errors.Is(err, simplegallery.ErrNotDeleted),
		errors.Is(err, simplegallery.ErrParentUnavailable),
		errors.Is(err, simplegallery.ErrGalleryDeleted),
		errors.Is(err, simplegallery.ErrPostDeleted):
		return http.StatusConflict
	case errors.Is(err, simplegallery.ErrInvalidUsername),
		errors.Is(err, simplegallery.ErrInvalidInput),
		errors.Is(err, simplegallery.ErrMalformedImport):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Do not leak internals to clients.
		msg = "internal server error"
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}
