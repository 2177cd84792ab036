package simplegallery

import (
	"context"

	"github.com/google/uuid"
)

// postInGallery reports whether an owned post belongs to the given gallery.
// Posts persisted before cross-owner galleries carry a zero GalleryOwnerID
// and resolve against their own author's partition.
func postInGallery(p OwnedPost, ownerID, galleryID uuid.UUID) bool {
	if p.Post.GalleryID != galleryID {
		return false
	}
	galleryOwner := p.Post.GalleryOwnerID
	if galleryOwner == uuid.Nil {
		galleryOwner = p.AuthorID
	}
	return galleryOwner == ownerID
}

// DeleteGallery tombstones the gallery, then cascade-tombstones every
// currently-alive post under it. Posts already tombstoned keep their prior
// deletion reason untouched.
func (s *service) DeleteGallery(ctx context.Context, actorID, ownerID, galleryID uuid.UUID) error {
	if err := s.authorize(ctx, actorID, ownerID); err != nil {
		return err
	}

	gallery, err := s.repository.GetGallery(ctx, ownerID, galleryID)
	if err != nil {
		return &GalleryError{GalleryID: galleryID, Op: "delete", Err: err}
	}
	if gallery.DeletedAt != nil {
		return &GalleryError{GalleryID: galleryID, Op: "delete", Err: ErrAlreadyDeleted}
	}

	now := s.timestamp()
	gallery.DeletedAt = &now
	if err := s.repository.SaveGallery(ctx, ownerID, gallery); err != nil {
		return &GalleryError{GalleryID: galleryID, Op: "delete", Err: err}
	}

	posts, err := s.repository.ListAllPosts(ctx)
	if err != nil {
		return &GalleryError{GalleryID: galleryID, Op: "delete", Err: err}
	}
	for _, p := range posts {
		if !postInGallery(p, ownerID, galleryID) || p.Post.DeletedAt != nil {
			continue
		}
		stamp := now
		p.Post.DeletedAt = &stamp
		p.Post.DeletedReason = DeletionReasonCascade
		if err := s.repository.SavePost(ctx, p.AuthorID, p.Post); err != nil {
			return &GalleryError{GalleryID: galleryID, Op: "delete", Err: err}
		}
	}

	if s.eventSink != nil {
		_ = s.eventSink.GalleryDeleted(ctx, ownerID, galleryID)
	}

	return nil
}

// RestoreGallery clears the gallery tombstone, then restores exactly the
// posts whose tombstone the gallery's own deletion caused. Posts their author
// deleted independently stay deleted.
func (s *service) RestoreGallery(ctx context.Context, actorID, ownerID, galleryID uuid.UUID) error {
	if err := s.authorize(ctx, actorID, ownerID); err != nil {
		return err
	}

	gallery, err := s.repository.GetGallery(ctx, ownerID, galleryID)
	if err != nil {
		return &GalleryError{GalleryID: galleryID, Op: "restore", Err: err}
	}
	if gallery.DeletedAt == nil {
		return &GalleryError{GalleryID: galleryID, Op: "restore", Err: ErrNotDeleted}
	}

	gallery.DeletedAt = nil
	if err := s.repository.SaveGallery(ctx, ownerID, gallery); err != nil {
		return &GalleryError{GalleryID: galleryID, Op: "restore", Err: err}
	}

	posts, err := s.repository.ListAllPosts(ctx)
	if err != nil {
		return &GalleryError{GalleryID: galleryID, Op: "restore", Err: err}
	}
	for _, p := range posts {
		if !postInGallery(p, ownerID, galleryID) {
			continue
		}
		if p.Post.DeletedAt == nil || p.Post.DeletedReason != DeletionReasonCascade {
			continue
		}
		p.Post.DeletedAt = nil
		p.Post.DeletedReason = DeletionReasonNone
		if err := s.repository.SavePost(ctx, p.AuthorID, p.Post); err != nil {
			return &GalleryError{GalleryID: galleryID, Op: "restore", Err: err}
		}
	}

	if s.eventSink != nil {
		_ = s.eventSink.GalleryRestored(ctx, ownerID, galleryID)
	}

	return nil
}

// PurgeGallery irreversibly removes the gallery, every post under it in any
// tombstone state, and every comment on those posts from every partition.
// Authorization happens at the gallery level only: owning the parent
// authorizes cascading removal of dependents regardless of who wrote them.
func (s *service) PurgeGallery(ctx context.Context, actorID, ownerID, galleryID uuid.UUID) error {
	if err := s.authorize(ctx, actorID, ownerID); err != nil {
		return err
	}

	if _, err := s.repository.GetGallery(ctx, ownerID, galleryID); err != nil {
		return &GalleryError{GalleryID: galleryID, Op: "purge", Err: err}
	}

	posts, err := s.repository.ListAllPosts(ctx)
	if err != nil {
		return &GalleryError{GalleryID: galleryID, Op: "purge", Err: err}
	}
	var doomed []OwnedPost
	purgedPostIDs := make(map[uuid.UUID]bool)
	for _, p := range posts {
		if postInGallery(p, ownerID, galleryID) {
			doomed = append(doomed, p)
			purgedPostIDs[p.Post.ID] = true
		}
	}

	if err := s.removeCommentsForPosts(ctx, purgedPostIDs); err != nil {
		return &GalleryError{GalleryID: galleryID, Op: "purge", Err: err}
	}
	for _, p := range doomed {
		if err := s.repository.RemovePost(ctx, p.AuthorID, p.Post.ID); err != nil {
			return &GalleryError{GalleryID: galleryID, Op: "purge", Err: err}
		}
	}
	if err := s.repository.RemoveGallery(ctx, ownerID, galleryID); err != nil {
		return &GalleryError{GalleryID: galleryID, Op: "purge", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.GalleryPurged(ctx, ownerID, galleryID)
	}

	return nil
}

// DeletePost tombstones a post independently of its gallery.
func (s *service) DeletePost(ctx context.Context, actorID, authorID, postID uuid.UUID) error {
	if err := s.authorize(ctx, actorID, authorID); err != nil {
		return err
	}

	post, err := s.repository.GetPost(ctx, authorID, postID)
	if err != nil {
		return &PostError{PostID: postID, Op: "delete", Err: err}
	}
	if post.DeletedAt != nil {
		return &PostError{PostID: postID, Op: "delete", Err: ErrAlreadyDeleted}
	}

	now := s.timestamp()
	post.DeletedAt = &now
	post.DeletedReason = DeletionReasonDirect
	if err := s.repository.SavePost(ctx, authorID, post); err != nil {
		return &PostError{PostID: postID, Op: "delete", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.PostDeleted(ctx, authorID, postID)
	}

	return nil
}

// RestorePost clears a directly-set post tombstone. It fails while the owning
// gallery is itself tombstoned: the gallery must be restored first, and a
// gallery restore is the only path that undoes cascade tombstones.
func (s *service) RestorePost(ctx context.Context, actorID, authorID, postID uuid.UUID) error {
	if err := s.authorize(ctx, actorID, authorID); err != nil {
		return err
	}

	post, err := s.repository.GetPost(ctx, authorID, postID)
	if err != nil {
		return &PostError{PostID: postID, Op: "restore", Err: err}
	}
	if post.DeletedAt == nil {
		return &PostError{PostID: postID, Op: "restore", Err: ErrNotDeleted}
	}

	galleryOwner := post.GalleryOwnerID
	if galleryOwner == uuid.Nil {
		galleryOwner = authorID
	}
	gallery, err := s.repository.GetGallery(ctx, galleryOwner, post.GalleryID)
	if err != nil || gallery.DeletedAt != nil {
		return &PostError{PostID: postID, Op: "restore", Err: ErrParentUnavailable}
	}

	post.DeletedAt = nil
	post.DeletedReason = DeletionReasonNone
	if err := s.repository.SavePost(ctx, authorID, post); err != nil {
		return &PostError{PostID: postID, Op: "restore", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.PostRestored(ctx, authorID, postID)
	}

	return nil
}

// PurgePost irreversibly removes the post and every comment referencing it
// from every partition. Authorization happens at the post level only.
func (s *service) PurgePost(ctx context.Context, actorID, authorID, postID uuid.UUID) error {
	if err := s.authorize(ctx, actorID, authorID); err != nil {
		return err
	}

	if _, err := s.repository.GetPost(ctx, authorID, postID); err != nil {
		return &PostError{PostID: postID, Op: "purge", Err: err}
	}

	if err := s.removeCommentsForPosts(ctx, map[uuid.UUID]bool{postID: true}); err != nil {
		return &PostError{PostID: postID, Op: "purge", Err: err}
	}
	if err := s.repository.RemovePost(ctx, authorID, postID); err != nil {
		return &PostError{PostID: postID, Op: "purge", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.PostPurged(ctx, authorID, postID)
	}

	return nil
}

// DeleteComment tombstones a comment.
func (s *service) DeleteComment(ctx context.Context, actorID, authorID, commentID uuid.UUID) error {
	if err := s.authorize(ctx, actorID, authorID); err != nil {
		return err
	}

	comment, err := s.repository.GetComment(ctx, authorID, commentID)
	if err != nil {
		return &CommentError{CommentID: commentID, Op: "delete", Err: err}
	}
	if comment.DeletedAt != nil {
		return &CommentError{CommentID: commentID, Op: "delete", Err: ErrAlreadyDeleted}
	}

	now := s.timestamp()
	comment.DeletedAt = &now
	if err := s.repository.SaveComment(ctx, authorID, comment); err != nil {
		return &CommentError{CommentID: commentID, Op: "delete", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.CommentDeleted(ctx, authorID, commentID)
	}

	return nil
}

// RestoreComment clears a comment tombstone. It fails while the target post
// is missing or tombstoned.
func (s *service) RestoreComment(ctx context.Context, actorID, authorID, commentID uuid.UUID) error {
	if err := s.authorize(ctx, actorID, authorID); err != nil {
		return err
	}

	comment, err := s.repository.GetComment(ctx, authorID, commentID)
	if err != nil {
		return &CommentError{CommentID: commentID, Op: "restore", Err: err}
	}
	if comment.DeletedAt == nil {
		return &CommentError{CommentID: commentID, Op: "restore", Err: ErrNotDeleted}
	}

	target, err := s.resolvePost(ctx, comment.PostID, nil)
	if err != nil || target.Post.DeletedAt != nil {
		return &CommentError{CommentID: commentID, Op: "restore", Err: ErrParentUnavailable}
	}

	comment.DeletedAt = nil
	if err := s.repository.SaveComment(ctx, authorID, comment); err != nil {
		return &CommentError{CommentID: commentID, Op: "restore", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.CommentRestored(ctx, authorID, commentID)
	}

	return nil
}

// PurgeComment irreversibly removes a single comment.
func (s *service) PurgeComment(ctx context.Context, actorID, authorID, commentID uuid.UUID) error {
	if err := s.authorize(ctx, actorID, authorID); err != nil {
		return err
	}

	if _, err := s.repository.GetComment(ctx, authorID, commentID); err != nil {
		return &CommentError{CommentID: commentID, Op: "purge", Err: err}
	}
	if err := s.repository.RemoveComment(ctx, authorID, commentID); err != nil {
		return &CommentError{CommentID: commentID, Op: "purge", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.CommentPurged(ctx, authorID, commentID)
	}

	return nil
}

// removeCommentsForPosts hard-removes every comment referencing any of the
// given post ids, scanning all partitions.
func (s *service) removeCommentsForPosts(ctx context.Context, postIDs map[uuid.UUID]bool) error {
	if len(postIDs) == 0 {
		return nil
	}
	comments, err := s.repository.ListAllComments(ctx)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if !postIDs[c.Comment.PostID] {
			continue
		}
		if err := s.repository.RemoveComment(ctx, c.AuthorID, c.Comment.ID); err != nil {
			return err
		}
	}
	return nil
}
