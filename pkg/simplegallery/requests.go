package simplegallery

import "github.com/google/uuid"

// Request DTOs
//
// Every mutating request names the acting user explicitly; there is no
// ambient session. ActorID is the account performing the operation, which is
// allowed to differ from the partition owner only when the actor is an admin.

// RegisterUserRequest contains parameters for registering an account
type RegisterUserRequest struct {
	Username string
	Password string
}

// BootstrapAdminRequest contains parameters for provisioning the reserved
// admin account. The secret comes from configuration, never from source.
type BootstrapAdminRequest struct {
	Username string
	Secret   string
}

// CreateGalleryRequest contains parameters for creating a gallery
type CreateGalleryRequest struct {
	ActorID     uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	Description string
	Icon        string
	Color       string
	Pinned      bool
}

// UpdateGalleryRequest contains a gallery patch. Nil fields keep their prior
// value.
type UpdateGalleryRequest struct {
	ActorID     uuid.UUID
	OwnerID     uuid.UUID
	GalleryID   uuid.UUID
	Title       *string
	Description *string
	Icon        *string
	Color       *string
	Pinned      *bool
}

// CreatePostRequest contains parameters for creating a post. GalleryOwnerID
// is an optional resolution hint; when nil the target gallery is found by
// scanning every partition.
type CreatePostRequest struct {
	ActorID        uuid.UUID
	AuthorID       uuid.UUID
	GalleryID      uuid.UUID
	GalleryOwnerID *uuid.UUID
	Title          string
	Content        string
}

// UpdatePostRequest contains a post patch. Nil fields keep their prior value.
type UpdatePostRequest struct {
	ActorID  uuid.UUID
	AuthorID uuid.UUID
	PostID   uuid.UUID
	Title    *string
	Content  *string
}

// CreateCommentRequest contains parameters for creating a comment. The target
// post is resolved by id alone.
type CreateCommentRequest struct {
	ActorID  uuid.UUID
	AuthorID uuid.UUID
	PostID   uuid.UUID
	Text     string
}

// UpdateCommentRequest contains a comment patch.
type UpdateCommentRequest struct {
	ActorID   uuid.UUID
	AuthorID  uuid.UUID
	CommentID uuid.UUID
	Text      *string
}

// UpdateSettingsRequest contains a partition settings patch. Settings are
// owner-only: the actor must be the partition owner, admins included out.
type UpdateSettingsRequest struct {
	ActorID  uuid.UUID
	OwnerID  uuid.UUID
	Theme    *string
	Accent   *string
	ViewMode *string
}

// ListGalleriesRequest contains filtering options for the gallery listing
type ListGalleriesRequest struct {
	IncludeDeleted bool
	Search         string
}

// ListPostsRequest contains filtering options for listing posts in a gallery
type ListPostsRequest struct {
	OwnerID        uuid.UUID
	GalleryID      uuid.UUID
	IncludeDeleted bool
}

// ListCommentsRequest contains filtering options for listing a post's comments
type ListCommentsRequest struct {
	PostID         uuid.UUID
	IncludeDeleted bool
}
