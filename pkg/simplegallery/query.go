package simplegallery

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// resolveGallery tries the hinted partition first, then falls back to a scan
// over every partition.
func (s *service) resolveGallery(ctx context.Context, id uuid.UUID, ownerHint *uuid.UUID) (*OwnedGallery, error) {
	if ownerHint != nil && *ownerHint != uuid.Nil {
		if gallery, err := s.repository.GetGallery(ctx, *ownerHint, id); err == nil {
			return &OwnedGallery{OwnerID: *ownerHint, Gallery: gallery}, nil
		}
	}

	galleries, err := s.repository.ListAllGalleries(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range galleries {
		if g.Gallery.ID == id {
			owned := g
			return &owned, nil
		}
	}
	return nil, ErrGalleryNotFound
}

// resolvePost tries the hinted partition first, then falls back to a scan.
func (s *service) resolvePost(ctx context.Context, id uuid.UUID, authorHint *uuid.UUID) (*OwnedPost, error) {
	if authorHint != nil && *authorHint != uuid.Nil {
		if post, err := s.repository.GetPost(ctx, *authorHint, id); err == nil {
			return &OwnedPost{AuthorID: *authorHint, Post: post}, nil
		}
	}

	posts, err := s.repository.ListAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if p.Post.ID == id {
			owned := p
			return &owned, nil
		}
	}
	return nil, ErrPostNotFound
}

func (s *service) ResolveGallery(ctx context.Context, id uuid.UUID, ownerHint *uuid.UUID) (*OwnedGallery, error) {
	return s.resolveGallery(ctx, id, ownerHint)
}

func (s *service) ResolvePost(ctx context.Context, id uuid.UUID, authorHint *uuid.UUID) (*OwnedPost, error) {
	return s.resolvePost(ctx, id, authorHint)
}

// ListGalleries flattens every partition into one listing. Live listings sort
// pinned galleries first; both live and tombstone views then order by
// UpdatedAt descending. Timestamps are fixed-width RFC 3339 strings, so plain
// string comparison gives chronological order. Search matches a
// case-insensitive substring against title, description, and the owner's
// username.
func (s *service) ListGalleries(ctx context.Context, req ListGalleriesRequest) ([]GalleryListing, error) {
	galleries, err := s.repository.ListAllGalleries(ctx)
	if err != nil {
		return nil, err
	}

	usernames := make(map[uuid.UUID]string)
	users, err := s.repository.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		usernames[u.ID] = u.Username
	}

	needle := strings.ToLower(strings.TrimSpace(req.Search))

	var result []GalleryListing
	for _, g := range galleries {
		if !req.IncludeDeleted && g.Gallery.DeletedAt != nil {
			continue
		}
		listing := GalleryListing{
			OwnerID:       g.OwnerID,
			OwnerUsername: usernames[g.OwnerID],
			Gallery:       g.Gallery,
		}
		if needle != "" && !matchesGallerySearch(listing, needle) {
			continue
		}
		result = append(result, listing)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Gallery, result[j].Gallery
		if !req.IncludeDeleted && a.Pinned != b.Pinned {
			return a.Pinned
		}
		return a.UpdatedAt > b.UpdatedAt
	})

	return result, nil
}

func matchesGallerySearch(listing GalleryListing, needle string) bool {
	if strings.Contains(strings.ToLower(listing.Gallery.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(listing.Gallery.Description), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(listing.OwnerUsername), needle)
}

// ListPostsInGallery scans every author partition for posts under the
// gallery, ordered by UpdatedAt descending.
func (s *service) ListPostsInGallery(ctx context.Context, req ListPostsRequest) ([]OwnedPost, error) {
	posts, err := s.repository.ListAllPosts(ctx)
	if err != nil {
		return nil, err
	}

	var result []OwnedPost
	for _, p := range posts {
		if !postInGallery(p, req.OwnerID, req.GalleryID) {
			continue
		}
		if !req.IncludeDeleted && p.Post.DeletedAt != nil {
			continue
		}
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Post.UpdatedAt > result[j].Post.UpdatedAt
	})

	return result, nil
}

// ListCommentsForPost scans every partition for comments on the post, in
// chronological display order.
func (s *service) ListCommentsForPost(ctx context.Context, req ListCommentsRequest) ([]OwnedComment, error) {
	comments, err := s.repository.ListAllComments(ctx)
	if err != nil {
		return nil, err
	}

	var result []OwnedComment
	for _, c := range comments {
		if c.Comment.PostID != req.PostID {
			continue
		}
		if !req.IncludeDeleted && c.Comment.DeletedAt != nil {
			continue
		}
		result = append(result, c)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Comment.CreatedAt < result[j].Comment.CreatedAt
	})

	return result, nil
}

// ComputeGalleryMeta aggregates post counts and the most recent activity
// stamp over the gallery's alive posts.
func (s *service) ComputeGalleryMeta(ctx context.Context, ownerID, galleryID uuid.UUID) (*GalleryMeta, error) {
	if _, err := s.repository.GetGallery(ctx, ownerID, galleryID); err != nil {
		return nil, err
	}

	posts, err := s.repository.ListAllPosts(ctx)
	if err != nil {
		return nil, err
	}

	meta := &GalleryMeta{}
	for _, p := range posts {
		if !postInGallery(p, ownerID, galleryID) {
			continue
		}
		if p.Post.DeletedAt != nil {
			meta.TombstonedCount++
			continue
		}
		meta.AliveCount++
		activity := p.Post.UpdatedAt
		if p.Post.CreatedAt > activity {
			activity = p.Post.CreatedAt
		}
		if meta.LatestActivity == nil || activity > *meta.LatestActivity {
			stamp := activity
			meta.LatestActivity = &stamp
		}
	}

	return meta, nil
}
