package simplegallery

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// DocumentVersion is the current persisted document format version.
const DocumentVersion = 1

// Document is the whole persisted state, exposed verbatim as a portable
// snapshot for backup and restore.
type Document struct {
	Version       int                          `json:"version"`
	Users         map[uuid.UUID]*User          `json:"users"`
	UsernameIndex map[string]uuid.UUID         `json:"username_index"`
	UserData      map[uuid.UUID]*UserPartition `json:"user_data"`
}

// NewDocument returns an initialized empty document.
func NewDocument() *Document {
	return &Document{
		Version:       DocumentVersion,
		Users:         make(map[uuid.UUID]*User),
		UsernameIndex: make(map[string]uuid.UUID),
		UserData:      make(map[uuid.UUID]*UserPartition),
	}
}

// Normalize validates a document's shape and repairs what is repairable:
// missing maps become empty, every partition gets all four fields populated,
// and the username index is rebuilt from the user registry so the two can
// never disagree. Unrepairable shapes (nil entries) return an error.
func (d *Document) Normalize() error {
	if d.Version < 0 {
		return fmt.Errorf("negative document version %d", d.Version)
	}
	if d.Version == 0 {
		d.Version = DocumentVersion
	}
	if d.Users == nil {
		d.Users = make(map[uuid.UUID]*User)
	}
	if d.UserData == nil {
		d.UserData = make(map[uuid.UUID]*UserPartition)
	}

	d.UsernameIndex = make(map[string]uuid.UUID, len(d.Users))
	for id, u := range d.Users {
		if u == nil {
			return fmt.Errorf("nil user entry %s", id)
		}
		u.ID = id
		if u.Role != RoleAdmin {
			u.Role = RoleUser
		}
		if _, taken := d.UsernameIndex[u.Username]; taken {
			return fmt.Errorf("duplicate username %q", u.Username)
		}
		d.UsernameIndex[u.Username] = id
	}

	for id, p := range d.UserData {
		if p == nil {
			return fmt.Errorf("nil partition entry %s", id)
		}
		p.Normalize()
		for gid, g := range p.Galleries {
			if g == nil {
				return fmt.Errorf("nil gallery entry %s", gid)
			}
			g.ID = gid
		}
		for pid, post := range p.Posts {
			if post == nil {
				return fmt.Errorf("nil post entry %s", pid)
			}
			post.ID = pid
		}
		for cid, c := range p.Comments {
			if c == nil {
				return fmt.Errorf("nil comment entry %s", cid)
			}
			c.ID = cid
		}
	}

	return nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		Version:       d.Version,
		Users:         make(map[uuid.UUID]*User, len(d.Users)),
		UsernameIndex: make(map[string]uuid.UUID, len(d.UsernameIndex)),
		UserData:      make(map[uuid.UUID]*UserPartition, len(d.UserData)),
	}
	for id, u := range d.Users {
		userCopy := *u
		userCopy.Salt = append([]byte(nil), u.Salt...)
		userCopy.DerivedHash = append([]byte(nil), u.DerivedHash...)
		out.Users[id] = &userCopy
	}
	for name, id := range d.UsernameIndex {
		out.UsernameIndex[name] = id
	}
	for id, p := range d.UserData {
		partCopy := &UserPartition{
			Settings:  p.Settings,
			Galleries: make(map[uuid.UUID]*Gallery, len(p.Galleries)),
			Posts:     make(map[uuid.UUID]*Post, len(p.Posts)),
			Comments:  make(map[uuid.UUID]*Comment, len(p.Comments)),
		}
		for gid, g := range p.Galleries {
			galleryCopy := *g
			if g.DeletedAt != nil {
				stamp := *g.DeletedAt
				galleryCopy.DeletedAt = &stamp
			}
			partCopy.Galleries[gid] = &galleryCopy
		}
		for pid, post := range p.Posts {
			postCopy := *post
			if post.DeletedAt != nil {
				stamp := *post.DeletedAt
				postCopy.DeletedAt = &stamp
			}
			partCopy.Posts[pid] = &postCopy
		}
		for cid, c := range p.Comments {
			commentCopy := *c
			if c.DeletedAt != nil {
				stamp := *c.DeletedAt
				commentCopy.DeletedAt = &stamp
			}
			partCopy.Comments[cid] = &commentCopy
		}
		out.UserData[id] = partCopy
	}
	return out
}

// ExportDocument returns a deep snapshot of the whole store.
func (s *service) ExportDocument(ctx context.Context) (*Document, error) {
	return s.repository.ExportDocument(ctx)
}

// ImportDocument validates and normalizes the supplied document, then
// replaces the active store with it. Callers must re-issue queries afterward;
// nothing cached across the import stays valid.
func (s *service) ImportDocument(ctx context.Context, doc *Document) error {
	if doc == nil {
		return ErrMalformedImport
	}
	if err := doc.Normalize(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if err := s.repository.ImportDocument(ctx, doc); err != nil {
		return err
	}

	if s.eventSink != nil {
		_ = s.eventSink.DocumentImported(ctx, doc)
	}

	return nil
}
