package simplegallery

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for user and partition persistence.
//
// Save operations are upserts into the named partition; a partition is
// created lazily and normalized on first reference. Get operations return
// tombstoned records as-is: lifecycle rules live in the service layer, not
// here. The ListAll scans are the only cross-partition primitives; there are
// no secondary indices by gallery or post id.
type Repository interface {
	// User registry operations. CreateUser must reject a taken username
	// atomically against its own latest state, because the service derives
	// credentials outside any repository critical section.
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	ListUsers(ctx context.Context) ([]*User, error)

	// Settings operations
	GetSettings(ctx context.Context, ownerID uuid.UUID) (*Settings, error)
	SaveSettings(ctx context.Context, ownerID uuid.UUID, settings *Settings) error

	// Gallery operations
	SaveGallery(ctx context.Context, ownerID uuid.UUID, gallery *Gallery) error
	GetGallery(ctx context.Context, ownerID, id uuid.UUID) (*Gallery, error)
	RemoveGallery(ctx context.Context, ownerID, id uuid.UUID) error
	ListAllGalleries(ctx context.Context) ([]OwnedGallery, error)

	// Post operations
	SavePost(ctx context.Context, authorID uuid.UUID, post *Post) error
	GetPost(ctx context.Context, authorID, id uuid.UUID) (*Post, error)
	RemovePost(ctx context.Context, authorID, id uuid.UUID) error
	ListAllPosts(ctx context.Context) ([]OwnedPost, error)

	// Comment operations
	SaveComment(ctx context.Context, authorID uuid.UUID, comment *Comment) error
	GetComment(ctx context.Context, authorID, id uuid.UUID) (*Comment, error)
	RemoveComment(ctx context.Context, authorID, id uuid.UUID) error
	ListAllComments(ctx context.Context) ([]OwnedComment, error)

	// Document operations, exposed whole for backup and restore
	ExportDocument(ctx context.Context) (*Document, error)
	ImportDocument(ctx context.Context, doc *Document) error
}

// KeyDeriver derives a fixed-length verification key from a password and a
// per-user salt. The default implementation is an iterated PBKDF2-SHA256;
// tests may substitute a cheaper deriver.
type KeyDeriver interface {
	DeriveKey(password string, salt []byte) []byte
}

// EventSink defines the interface for mutation event handling. Sink failures
// are logged and never fail the operation that fired them.
type EventSink interface {
	// UserRegistered is fired when an account is registered
	UserRegistered(ctx context.Context, user *User) error

	// GalleryCreated is fired when a gallery is created
	GalleryCreated(ctx context.Context, ownerID uuid.UUID, gallery *Gallery) error

	// GalleryUpdated is fired when a gallery is updated
	GalleryUpdated(ctx context.Context, ownerID uuid.UUID, gallery *Gallery) error

	// GalleryDeleted is fired when a gallery is tombstoned
	GalleryDeleted(ctx context.Context, ownerID, galleryID uuid.UUID) error

	// GalleryRestored is fired when a gallery tombstone is cleared
	GalleryRestored(ctx context.Context, ownerID, galleryID uuid.UUID) error

	// GalleryPurged is fired when a gallery and its dependents are removed
	GalleryPurged(ctx context.Context, ownerID, galleryID uuid.UUID) error

	// PostCreated is fired when a post is created
	PostCreated(ctx context.Context, authorID uuid.UUID, post *Post) error

	// PostUpdated is fired when a post is updated
	PostUpdated(ctx context.Context, authorID uuid.UUID, post *Post) error

	// PostDeleted is fired when a post is tombstoned
	PostDeleted(ctx context.Context, authorID, postID uuid.UUID) error

	// PostRestored is fired when a post tombstone is cleared
	PostRestored(ctx context.Context, authorID, postID uuid.UUID) error

	// PostPurged is fired when a post and its comments are removed
	PostPurged(ctx context.Context, authorID, postID uuid.UUID) error

	// CommentCreated is fired when a comment is created
	CommentCreated(ctx context.Context, authorID uuid.UUID, comment *Comment) error

	// CommentUpdated is fired when a comment is updated
	CommentUpdated(ctx context.Context, authorID uuid.UUID, comment *Comment) error

	// CommentDeleted is fired when a comment is tombstoned
	CommentDeleted(ctx context.Context, authorID, commentID uuid.UUID) error

	// CommentRestored is fired when a comment tombstone is cleared
	CommentRestored(ctx context.Context, authorID, commentID uuid.UUID) error

	// CommentPurged is fired when a comment is removed
	CommentPurged(ctx context.Context, authorID, commentID uuid.UUID) error

	// DocumentImported is fired after a document replaces the active state
	DocumentImported(ctx context.Context, doc *Document) error
}
