package simplegallery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository Repository
	eventSink  EventSink
	deriver    KeyDeriver
	now        func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithKeyDeriver sets the credential key deriver for the service
func WithKeyDeriver(deriver KeyDeriver) Option {
	return func(s *service) {
		s.deriver = deriver
	}
}

// WithClock sets the time source used for persisted timestamps
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		deriver: DefaultKeyDeriver(),
		now:     time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

// timestamp renders the current clock reading in the persisted layout.
func (s *service) timestamp() string {
	return FormatTime(s.now())
}

// authorize allows the mutation when the actor owns the partition or holds
// the admin role. Unknown actors are denied, not reported as missing.
func (s *service) authorize(ctx context.Context, actorID, ownerID uuid.UUID) error {
	if actorID == ownerID {
		return nil
	}
	actor, err := s.repository.GetUser(ctx, actorID)
	if err != nil {
		return ErrPermissionDenied
	}
	if actor.Role != RoleAdmin {
		return ErrPermissionDenied
	}
	return nil
}

// Account read operations (registration and verification live in credentials.go)

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repository.GetUser(ctx, id)
}

func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repository.ListUsers(ctx)
}

// Gallery operations

func (s *service) CreateGallery(ctx context.Context, req CreateGalleryRequest) (*Gallery, error) {
	if err := s.authorize(ctx, req.ActorID, req.OwnerID); err != nil {
		return nil, err
	}

	icon := req.Icon
	if icon == "" {
		icon = DefaultIcon
	}
	color := NormalizeColor(req.Color)
	if color == "" {
		color = DefaultColor
	}
	if !ValidHexColor(color) {
		return nil, fmt.Errorf("%w: gallery color %q", ErrInvalidInput, req.Color)
	}

	now := s.timestamp()
	gallery := &Gallery{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Icon:        icon,
		Color:       color,
		Pinned:      req.Pinned,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repository.SaveGallery(ctx, req.OwnerID, gallery); err != nil {
		return nil, &GalleryError{GalleryID: gallery.ID, Op: "create", Err: err}
	}

	if s.eventSink != nil {
		// Sink failures must not fail the mutation.
		_ = s.eventSink.GalleryCreated(ctx, req.OwnerID, gallery)
	}

	return gallery, nil
}

func (s *service) UpdateGallery(ctx context.Context, req UpdateGalleryRequest) (*Gallery, error) {
	if err := s.authorize(ctx, req.ActorID, req.OwnerID); err != nil {
		return nil, err
	}

	gallery, err := s.repository.GetGallery(ctx, req.OwnerID, req.GalleryID)
	if err != nil {
		return nil, &GalleryError{GalleryID: req.GalleryID, Op: "update", Err: err}
	}
	if gallery.DeletedAt != nil {
		return nil, &GalleryError{GalleryID: req.GalleryID, Op: "update", Err: ErrAlreadyDeleted}
	}

	if req.Title != nil {
		gallery.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		gallery.Description = strings.TrimSpace(*req.Description)
	}
	if req.Icon != nil && *req.Icon != "" {
		gallery.Icon = *req.Icon
	}
	if req.Color != nil {
		color := NormalizeColor(*req.Color)
		if !ValidHexColor(color) {
			return nil, fmt.Errorf("%w: gallery color %q", ErrInvalidInput, *req.Color)
		}
		gallery.Color = color
	}
	if req.Pinned != nil {
		gallery.Pinned = *req.Pinned
	}
	gallery.UpdatedAt = s.timestamp()

	if err := s.repository.SaveGallery(ctx, req.OwnerID, gallery); err != nil {
		return nil, &GalleryError{GalleryID: gallery.ID, Op: "update", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.GalleryUpdated(ctx, req.OwnerID, gallery)
	}

	return gallery, nil
}

// Post operations

func (s *service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if err := s.authorize(ctx, req.ActorID, req.AuthorID); err != nil {
		return nil, err
	}

	target, err := s.resolveGallery(ctx, req.GalleryID, req.GalleryOwnerID)
	if err != nil {
		return nil, ErrGalleryNotFound
	}
	if target.Gallery.DeletedAt != nil {
		return nil, ErrGalleryDeleted
	}

	now := s.timestamp()
	post := &Post{
		ID:             uuid.New(),
		GalleryOwnerID: target.OwnerID,
		GalleryID:      req.GalleryID,
		Title:          strings.TrimSpace(req.Title),
		Content:        req.Content,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repository.SavePost(ctx, req.AuthorID, post); err != nil {
		return nil, &PostError{PostID: post.ID, Op: "create", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.PostCreated(ctx, req.AuthorID, post)
	}

	return post, nil
}

func (s *service) UpdatePost(ctx context.Context, req UpdatePostRequest) (*Post, error) {
	if err := s.authorize(ctx, req.ActorID, req.AuthorID); err != nil {
		return nil, err
	}

	post, err := s.repository.GetPost(ctx, req.AuthorID, req.PostID)
	if err != nil {
		return nil, &PostError{PostID: req.PostID, Op: "update", Err: err}
	}
	if post.DeletedAt != nil {
		return nil, &PostError{PostID: req.PostID, Op: "update", Err: ErrAlreadyDeleted}
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	post.UpdatedAt = s.timestamp()

	if err := s.repository.SavePost(ctx, req.AuthorID, post); err != nil {
		return nil, &PostError{PostID: post.ID, Op: "update", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.PostUpdated(ctx, req.AuthorID, post)
	}

	return post, nil
}

// Comment operations

func (s *service) CreateComment(ctx context.Context, req CreateCommentRequest) (*Comment, error) {
	if err := s.authorize(ctx, req.ActorID, req.AuthorID); err != nil {
		return nil, err
	}

	target, err := s.resolvePost(ctx, req.PostID, nil)
	if err != nil {
		return nil, ErrPostNotFound
	}
	if target.Post.DeletedAt != nil {
		return nil, ErrPostDeleted
	}

	now := s.timestamp()
	comment := &Comment{
		ID:        uuid.New(),
		PostID:    req.PostID,
		Text:      strings.TrimSpace(req.Text),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repository.SaveComment(ctx, req.AuthorID, comment); err != nil {
		return nil, &CommentError{CommentID: comment.ID, Op: "create", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.CommentCreated(ctx, req.AuthorID, comment)
	}

	return comment, nil
}

func (s *service) UpdateComment(ctx context.Context, req UpdateCommentRequest) (*Comment, error) {
	if err := s.authorize(ctx, req.ActorID, req.AuthorID); err != nil {
		return nil, err
	}

	comment, err := s.repository.GetComment(ctx, req.AuthorID, req.CommentID)
	if err != nil {
		return nil, &CommentError{CommentID: req.CommentID, Op: "update", Err: err}
	}
	if comment.DeletedAt != nil {
		return nil, &CommentError{CommentID: req.CommentID, Op: "update", Err: ErrAlreadyDeleted}
	}

	if req.Text != nil {
		comment.Text = strings.TrimSpace(*req.Text)
	}
	comment.UpdatedAt = s.timestamp()

	if err := s.repository.SaveComment(ctx, req.AuthorID, comment); err != nil {
		return nil, &CommentError{CommentID: comment.ID, Op: "update", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.CommentUpdated(ctx, req.AuthorID, comment)
	}

	return comment, nil
}

// Settings operations

func (s *service) GetSettings(ctx context.Context, ownerID uuid.UUID) (*Settings, error) {
	return s.repository.GetSettings(ctx, ownerID)
}

func (s *service) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*Settings, error) {
	// Settings are strictly per-owner; not even an admin may touch another
	// partition's display preferences.
	if req.ActorID != req.OwnerID {
		return nil, ErrPermissionDenied
	}
	if _, err := s.repository.GetUser(ctx, req.OwnerID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, err
	}

	settings, err := s.repository.GetSettings(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}

	if req.Theme != nil {
		if !ValidTheme(*req.Theme) {
			return nil, fmt.Errorf("%w: theme %q", ErrInvalidInput, *req.Theme)
		}
		settings.Theme = *req.Theme
	}
	if req.Accent != nil {
		accent := NormalizeColor(*req.Accent)
		if !ValidHexColor(accent) {
			return nil, fmt.Errorf("%w: accent color %q", ErrInvalidInput, *req.Accent)
		}
		settings.Accent = accent
	}
	if req.ViewMode != nil {
		if !ValidViewMode(*req.ViewMode) {
			return nil, fmt.Errorf("%w: view mode %q", ErrInvalidInput, *req.ViewMode)
		}
		settings.ViewMode = *req.ViewMode
	}

	if err := s.repository.SaveSettings(ctx, req.OwnerID, settings); err != nil {
		return nil, err
	}

	return settings, nil
}
