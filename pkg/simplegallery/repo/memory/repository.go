// Package memory provides the in-memory Repository used by tests, the demo
// server, and anything else that wants the store without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
)

// Repository implements simplegallery.Repository over one in-memory document.
// A single RWMutex serializes whole-document access, which is the concurrency
// contract the store is specified against: every command owns the document
// for the duration of its execution.
type Repository struct {
	mu  sync.RWMutex
	doc *simplegallery.Document
}

// New creates a new in-memory repository holding an empty document
func New() simplegallery.Repository {
	return &Repository{doc: simplegallery.NewDocument()}
}

// NewWithDocument creates an in-memory repository seeded from doc. The
// document is deep-copied; the caller's value stays untouched.
func NewWithDocument(doc *simplegallery.Document) simplegallery.Repository {
	return &Repository{doc: doc.Clone()}
}

// partition returns the owner's partition, creating and normalizing it on
// first reference. Callers must hold the write lock.
func (r *Repository) partition(ownerID uuid.UUID) *simplegallery.UserPartition {
	p, exists := r.doc.UserData[ownerID]
	if !exists {
		p = &simplegallery.UserPartition{}
		p.Normalize()
		r.doc.UserData[ownerID] = p
	}
	return p
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *simplegallery.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check uniqueness inside the critical section: the service derives
	// credentials before calling us, and another registration may have
	// claimed the name in between.
	if _, taken := r.doc.UsernameIndex[user.Username]; taken {
		return simplegallery.ErrDuplicateUsername
	}

	userCopy := copyUser(user)
	r.doc.Users[user.ID] = userCopy
	r.doc.UsernameIndex[user.Username] = user.ID
	r.partition(user.ID)

	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*simplegallery.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.doc.Users[id]
	if !exists {
		return nil, simplegallery.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*simplegallery.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.doc.UsernameIndex[username]
	if !exists {
		return nil, simplegallery.ErrUserNotFound
	}
	user, exists := r.doc.Users[id]
	if !exists {
		return nil, simplegallery.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *simplegallery.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prior, exists := r.doc.Users[user.ID]
	if !exists {
		return simplegallery.ErrUserNotFound
	}
	if prior.Username != user.Username {
		if _, taken := r.doc.UsernameIndex[user.Username]; taken {
			return simplegallery.ErrDuplicateUsername
		}
		delete(r.doc.UsernameIndex, prior.Username)
		r.doc.UsernameIndex[user.Username] = user.ID
	}
	r.doc.Users[user.ID] = copyUser(user)

	return nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]*simplegallery.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*simplegallery.User, 0, len(r.doc.Users))
	for _, user := range r.doc.Users {
		result = append(result, copyUser(user))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Username < result[j].Username
	})
	return result, nil
}

// Settings operations

func (r *Repository) GetSettings(ctx context.Context, ownerID uuid.UUID) (*simplegallery.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings := r.partition(ownerID).Settings
	return &settings, nil
}

func (r *Repository) SaveSettings(ctx context.Context, ownerID uuid.UUID, settings *simplegallery.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.partition(ownerID).Settings = *settings
	return nil
}

// Gallery operations

func (r *Repository) SaveGallery(ctx context.Context, ownerID uuid.UUID, gallery *simplegallery.Gallery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.partition(ownerID).Galleries[gallery.ID] = copyGallery(gallery)
	return nil
}

func (r *Repository) GetGallery(ctx context.Context, ownerID, id uuid.UUID) (*simplegallery.Gallery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.doc.UserData[ownerID]
	if !exists {
		return nil, simplegallery.ErrGalleryNotFound
	}
	gallery, exists := p.Galleries[id]
	if !exists {
		return nil, simplegallery.ErrGalleryNotFound
	}
	return copyGallery(gallery), nil
}

func (r *Repository) RemoveGallery(ctx context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.doc.UserData[ownerID]
	if !exists {
		return simplegallery.ErrGalleryNotFound
	}
	if _, exists := p.Galleries[id]; !exists {
		return simplegallery.ErrGalleryNotFound
	}
	delete(p.Galleries, id)
	return nil
}

func (r *Repository) ListAllGalleries(ctx context.Context) ([]simplegallery.OwnedGallery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []simplegallery.OwnedGallery
	for ownerID, p := range r.doc.UserData {
		for _, gallery := range p.Galleries {
			result = append(result, simplegallery.OwnedGallery{
				OwnerID: ownerID,
				Gallery: copyGallery(gallery),
			})
		}
	}
	return result, nil
}

// Post operations

func (r *Repository) SavePost(ctx context.Context, authorID uuid.UUID, post *simplegallery.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.partition(authorID).Posts[post.ID] = copyPost(post)
	return nil
}

func (r *Repository) GetPost(ctx context.Context, authorID, id uuid.UUID) (*simplegallery.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.doc.UserData[authorID]
	if !exists {
		return nil, simplegallery.ErrPostNotFound
	}
	post, exists := p.Posts[id]
	if !exists {
		return nil, simplegallery.ErrPostNotFound
	}
	return copyPost(post), nil
}

func (r *Repository) RemovePost(ctx context.Context, authorID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.doc.UserData[authorID]
	if !exists {
		return simplegallery.ErrPostNotFound
	}
	if _, exists := p.Posts[id]; !exists {
		return simplegallery.ErrPostNotFound
	}
	delete(p.Posts, id)
	return nil
}

func (r *Repository) ListAllPosts(ctx context.Context) ([]simplegallery.OwnedPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []simplegallery.OwnedPost
	for authorID, p := range r.doc.UserData {
		for _, post := range p.Posts {
			result = append(result, simplegallery.OwnedPost{
				AuthorID: authorID,
				Post:     copyPost(post),
			})
		}
	}
	return result, nil
}

// Comment operations

func (r *Repository) SaveComment(ctx context.Context, authorID uuid.UUID, comment *simplegallery.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.partition(authorID).Comments[comment.ID] = copyComment(comment)
	return nil
}

func (r *Repository) GetComment(ctx context.Context, authorID, id uuid.UUID) (*simplegallery.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.doc.UserData[authorID]
	if !exists {
		return nil, simplegallery.ErrCommentNotFound
	}
	comment, exists := p.Comments[id]
	if !exists {
		return nil, simplegallery.ErrCommentNotFound
	}
	return copyComment(comment), nil
}

func (r *Repository) RemoveComment(ctx context.Context, authorID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.doc.UserData[authorID]
	if !exists {
		return simplegallery.ErrCommentNotFound
	}
	if _, exists := p.Comments[id]; !exists {
		return simplegallery.ErrCommentNotFound
	}
	delete(p.Comments, id)
	return nil
}

func (r *Repository) ListAllComments(ctx context.Context) ([]simplegallery.OwnedComment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []simplegallery.OwnedComment
	for authorID, p := range r.doc.UserData {
		for _, comment := range p.Comments {
			result = append(result, simplegallery.OwnedComment{
				AuthorID: authorID,
				Comment:  copyComment(comment),
			})
		}
	}
	return result, nil
}

// Document operations

func (r *Repository) ExportDocument(ctx context.Context) (*simplegallery.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.doc.Clone(), nil
}

func (r *Repository) ImportDocument(ctx context.Context, doc *simplegallery.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.doc = doc.Clone()
	return nil
}

// Copy helpers to keep callers from mutating stored records.

func copyUser(u *simplegallery.User) *simplegallery.User {
	userCopy := *u
	userCopy.Salt = append([]byte(nil), u.Salt...)
	userCopy.DerivedHash = append([]byte(nil), u.DerivedHash...)
	return &userCopy
}

func copyGallery(g *simplegallery.Gallery) *simplegallery.Gallery {
	galleryCopy := *g
	if g.DeletedAt != nil {
		stamp := *g.DeletedAt
		galleryCopy.DeletedAt = &stamp
	}
	return &galleryCopy
}

func copyPost(p *simplegallery.Post) *simplegallery.Post {
	postCopy := *p
	if p.DeletedAt != nil {
		stamp := *p.DeletedAt
		postCopy.DeletedAt = &stamp
	}
	return &postCopy
}

func copyComment(c *simplegallery.Comment) *simplegallery.Comment {
	commentCopy := *c
	if c.DeletedAt != nil {
		stamp := *c.DeletedAt
		commentCopy.DeletedAt = &stamp
	}
	return &commentCopy
}
