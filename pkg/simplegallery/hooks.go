package simplegallery

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LoggingEventSink writes one structured log line per mutation event. It is
// the default sink wired by cmd/server; library users who want silence use
// NewNoopEventSink instead.
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates an event sink backed by the given logger. A nil
// logger falls back to slog.Default().
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

func (s *LoggingEventSink) UserRegistered(ctx context.Context, user *User) error {
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return nil
}

func (s *LoggingEventSink) GalleryCreated(ctx context.Context, ownerID uuid.UUID, gallery *Gallery) error {
	s.logger.InfoContext(ctx, "gallery created", "owner_id", ownerID, "gallery_id", gallery.ID)
	return nil
}

func (s *LoggingEventSink) GalleryUpdated(ctx context.Context, ownerID uuid.UUID, gallery *Gallery) error {
	s.logger.InfoContext(ctx, "gallery updated", "owner_id", ownerID, "gallery_id", gallery.ID)
	return nil
}

func (s *LoggingEventSink) GalleryDeleted(ctx context.Context, ownerID, galleryID uuid.UUID) error {
	s.logger.InfoContext(ctx, "gallery deleted", "owner_id", ownerID, "gallery_id", galleryID)
	return nil
}

func (s *LoggingEventSink) GalleryRestored(ctx context.Context, ownerID, galleryID uuid.UUID) error {
	s.logger.InfoContext(ctx, "gallery restored", "owner_id", ownerID, "gallery_id", galleryID)
	return nil
}

func (s *LoggingEventSink) GalleryPurged(ctx context.Context, ownerID, galleryID uuid.UUID) error {
	s.logger.InfoContext(ctx, "gallery purged", "owner_id", ownerID, "gallery_id", galleryID)
	return nil
}

func (s *LoggingEventSink) PostCreated(ctx context.Context, authorID uuid.UUID, post *Post) error {
	s.logger.InfoContext(ctx, "post created", "author_id", authorID, "post_id", post.ID, "gallery_id", post.GalleryID)
	return nil
}

func (s *LoggingEventSink) PostUpdated(ctx context.Context, authorID uuid.UUID, post *Post) error {
	s.logger.InfoContext(ctx, "post updated", "author_id", authorID, "post_id", post.ID)
	return nil
}

func (s *LoggingEventSink) PostDeleted(ctx context.Context, authorID, postID uuid.UUID) error {
	s.logger.InfoContext(ctx, "post deleted", "author_id", authorID, "post_id", postID)
	return nil
}

func (s *LoggingEventSink) PostRestored(ctx context.Context, authorID, postID uuid.UUID) error {
	s.logger.InfoContext(ctx, "post restored", "author_id", authorID, "post_id", postID)
	return nil
}

func (s *LoggingEventSink) PostPurged(ctx context.Context, authorID, postID uuid.UUID) error {
	s.logger.InfoContext(ctx, "post purged", "author_id", authorID, "post_id", postID)
	return nil
}

func (s *LoggingEventSink) CommentCreated(ctx context.Context, authorID uuid.UUID, comment *Comment) error {
	s.logger.InfoContext(ctx, "comment created", "author_id", authorID, "comment_id", comment.ID, "post_id", comment.PostID)
	return nil
}

func (s *LoggingEventSink) CommentUpdated(ctx context.Context, authorID uuid.UUID, comment *Comment) error {
	s.logger.InfoContext(ctx, "comment updated", "author_id", authorID, "comment_id", comment.ID)
	return nil
}

func (s *LoggingEventSink) CommentDeleted(ctx context.Context, authorID, commentID uuid.UUID) error {
	s.logger.InfoContext(ctx, "comment deleted", "author_id", authorID, "comment_id", commentID)
	return nil
}

func (s *LoggingEventSink) CommentRestored(ctx context.Context, authorID, commentID uuid.UUID) error {
	s.logger.InfoContext(ctx, "comment restored", "author_id", authorID, "comment_id", commentID)
	return nil
}

func (s *LoggingEventSink) CommentPurged(ctx context.Context, authorID, commentID uuid.UUID) error {
	s.logger.InfoContext(ctx, "comment purged", "author_id", authorID, "comment_id", commentID)
	return nil
}

func (s *LoggingEventSink) DocumentImported(ctx context.Context, doc *Document) error {
	s.logger.InfoContext(ctx, "document imported", "users", len(doc.Users), "partitions", len(doc.UserData))
	return nil
}
