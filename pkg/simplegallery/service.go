package simplegallery

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the simple-gallery library
type Service interface {
	// Account operations
	RegisterUser(ctx context.Context, req RegisterUserRequest) (*User, error)
	VerifyUser(ctx context.Context, username, password string) (uuid.UUID, error)
	EnsureBootstrapAdmin(ctx context.Context, req BootstrapAdminRequest) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)

	// Gallery operations
	CreateGallery(ctx context.Context, req CreateGalleryRequest) (*Gallery, error)
	UpdateGallery(ctx context.Context, req UpdateGalleryRequest) (*Gallery, error)
	DeleteGallery(ctx context.Context, actorID, ownerID, galleryID uuid.UUID) error
	RestoreGallery(ctx context.Context, actorID, ownerID, galleryID uuid.UUID) error
	PurgeGallery(ctx context.Context, actorID, ownerID, galleryID uuid.UUID) error

	// Post operations
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)
	UpdatePost(ctx context.Context, req UpdatePostRequest) (*Post, error)
	DeletePost(ctx context.Context, actorID, authorID, postID uuid.UUID) error
	RestorePost(ctx context.Context, actorID, authorID, postID uuid.UUID) error
	PurgePost(ctx context.Context, actorID, authorID, postID uuid.UUID) error

	// Comment operations
	CreateComment(ctx context.Context, req CreateCommentRequest) (*Comment, error)
	UpdateComment(ctx context.Context, req UpdateCommentRequest) (*Comment, error)
	DeleteComment(ctx context.Context, actorID, authorID, commentID uuid.UUID) error
	RestoreComment(ctx context.Context, actorID, authorID, commentID uuid.UUID) error
	PurgeComment(ctx context.Context, actorID, authorID, commentID uuid.UUID) error

	// Settings operations
	GetSettings(ctx context.Context, ownerID uuid.UUID) (*Settings, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*Settings, error)

	// Query operations
	ResolveGallery(ctx context.Context, id uuid.UUID, ownerHint *uuid.UUID) (*OwnedGallery, error)
	ResolvePost(ctx context.Context, id uuid.UUID, authorHint *uuid.UUID) (*OwnedPost, error)
	ListGalleries(ctx context.Context, req ListGalleriesRequest) ([]GalleryListing, error)
	ListPostsInGallery(ctx context.Context, req ListPostsRequest) ([]OwnedPost, error)
	ListCommentsForPost(ctx context.Context, req ListCommentsRequest) ([]OwnedComment, error)
	ComputeGalleryMeta(ctx context.Context, ownerID, galleryID uuid.UUID) (*GalleryMeta, error)

	// Document snapshot operations
	ExportDocument(ctx context.Context) (*Document, error)
	ImportDocument(ctx context.Context, doc *Document) error
}
