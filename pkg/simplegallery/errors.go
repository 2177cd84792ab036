package simplegallery

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrPermissionDenied indicates the acting user may not mutate the entity
	ErrPermissionDenied = errors.New("permission denied")

	// ErrGalleryNotFound indicates a gallery was not found
	ErrGalleryNotFound = errors.New("gallery not found")

	// ErrPostNotFound indicates a post was not found
	ErrPostNotFound = errors.New("post not found")

	// ErrCommentNotFound indicates a comment was not found
	ErrCommentNotFound = errors.New("comment not found")

	// ErrUserNotFound indicates a user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyDeleted indicates the entity already carries a tombstone
	ErrAlreadyDeleted = errors.New("already deleted")

	// ErrNotDeleted indicates a restore was attempted on a live entity
	ErrNotDeleted = errors.New("not deleted")

	// ErrParentUnavailable indicates a restore is blocked by a tombstoned parent
	ErrParentUnavailable = errors.New("parent is deleted")

	// ErrGalleryDeleted indicates the target gallery carries a tombstone
	ErrGalleryDeleted = errors.New("gallery is deleted")

	// ErrPostDeleted indicates the target post carries a tombstone
	ErrPostDeleted = errors.New("post is deleted")

	// ErrDuplicateUsername indicates the username is already registered
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrInvalidUsername indicates the username fails shape validation
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidCredentials indicates an unknown username or a wrong password,
	// deliberately without distinguishing the two
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMalformedImport indicates an imported document failed shape validation
	ErrMalformedImport = errors.New("malformed import document")

	// ErrInvalidInput indicates a request field failed validation
	ErrInvalidInput = errors.New("invalid input")
)

// GalleryError represents an error related to gallery operations
type GalleryError struct {
	GalleryID uuid.UUID
	Op        string
	Err       error
}

func (e *GalleryError) Error() string {
	return fmt.Sprintf("gallery operation %s failed for gallery %s: %v", e.Op, e.GalleryID, e.Err)
}

func (e *GalleryError) Unwrap() error {
	return e.Err
}

// PostError represents an error related to post operations
type PostError struct {
	PostID uuid.UUID
	Op     string
	Err    error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post operation %s failed for post %s: %v", e.Op, e.PostID, e.Err)
}

func (e *PostError) Unwrap() error {
	return e.Err
}

// CommentError represents an error related to comment operations
type CommentError struct {
	CommentID uuid.UUID
	Op        string
	Err       error
}

func (e *CommentError) Error() string {
	return fmt.Sprintf("comment operation %s failed for comment %s: %v", e.Op, e.CommentID, e.Err)
}

func (e *CommentError) Unwrap() error {
	return e.Err
}
