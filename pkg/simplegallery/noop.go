package simplegallery

import (
	"context"

	"github.com/google/uuid"
)

// NoopEventSink is a no-op implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-op event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (s *NoopEventSink) UserRegistered(ctx context.Context, user *User) error { return nil }

func (s *NoopEventSink) GalleryCreated(ctx context.Context, ownerID uuid.UUID, gallery *Gallery) error {
	return nil
}

func (s *NoopEventSink) GalleryUpdated(ctx context.Context, ownerID uuid.UUID, gallery *Gallery) error {
	return nil
}

func (s *NoopEventSink) GalleryDeleted(ctx context.Context, ownerID, galleryID uuid.UUID) error {
	return nil
}

func (s *NoopEventSink) GalleryRestored(ctx context.Context, ownerID, galleryID uuid.UUID) error {
	return nil
}

func (s *NoopEventSink) GalleryPurged(ctx context.Context, ownerID, galleryID uuid.UUID) error {
	return nil
}

func (s *NoopEventSink) PostCreated(ctx context.Context, authorID uuid.UUID, post *Post) error {
	return nil
}

func (s *NoopEventSink) PostUpdated(ctx context.Context, authorID uuid.UUID, post *Post) error {
	return nil
}

func (s *NoopEventSink) PostDeleted(ctx context.Context, authorID, postID uuid.UUID) error {
	return nil
}

func (s *NoopEventSink) PostRestored(ctx context.Context, authorID, postID uuid.UUID) error {
	return nil
}

func (s *NoopEventSink) PostPurged(ctx context.Context, authorID, postID uuid.UUID) error {
	return nil
}

func (s *NoopEventSink) CommentCreated(ctx context.Context, authorID uuid.UUID, comment *Comment) error {
	return nil
}

func (s *NoopEventSink) CommentUpdated(ctx context.Context, authorID uuid.UUID, comment *Comment) error {
	return nil
}

func (s *NoopEventSink) CommentDeleted(ctx context.Context, authorID, commentID uuid.UUID) error {
	return nil
}

func (s *NoopEventSink) CommentRestored(ctx context.Context, authorID, commentID uuid.UUID) error {
	return nil
}

func (s *NoopEventSink) CommentPurged(ctx context.Context, authorID, commentID uuid.UUID) error {
	return nil
}

func (s *NoopEventSink) DocumentImported(ctx context.Context, doc *Document) error { return nil }
