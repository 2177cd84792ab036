package simplegallery

import (
	"time"

	"github.com/google/uuid"
)

// Role is the domain type for account roles.
type Role string

// Role constants (typed).
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// DeletionReason records why a post carries a tombstone. A cascade reason is
// cleared only by a gallery-restore cascade, never by a direct restore.
type DeletionReason string

// Deletion reason constants (typed).
const (
	DeletionReasonNone    DeletionReason = ""
	DeletionReasonDirect  DeletionReason = "direct"
	DeletionReasonCascade DeletionReason = "cascade"
)

// TimeLayout is the fixed-width RFC 3339 layout used for every persisted
// timestamp. Millisecond precision with no trailing-zero trimming keeps the
// strings lexicographically monotonic, so listings can sort by plain string
// comparison.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t in the persisted timestamp layout (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// User is a registered account. Only the salt and the derived hash are
// persisted; the plaintext password never is.
type User struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Salt        []byte    `json:"salt"`
	DerivedHash []byte    `json:"derived_hash"`
	Role        Role      `json:"role"`
	CreatedAt   string    `json:"created_at"`
}

// Settings are per-partition display preferences, mutable only by the
// partition owner.
type Settings struct {
	Theme    string `json:"theme"`
	Accent   string `json:"accent"`
	ViewMode string `json:"view_mode"`
}

// Gallery lives in its owner's partition. A non-nil DeletedAt marks a
// tombstone; the record stays in place until purged.
type Gallery struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	Pinned      bool      `json:"pinned"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
	DeletedAt   *string   `json:"deleted_at,omitempty"`
}

// Post lives in its author's partition, which may differ from the partition
// owning the target gallery. A zero GalleryOwnerID means the post predates
// cross-owner galleries and is resolved against its author's own partition.
type Post struct {
	ID             uuid.UUID      `json:"id"`
	GalleryOwnerID uuid.UUID      `json:"gallery_owner_id,omitempty"`
	GalleryID      uuid.UUID      `json:"gallery_id"`
	Title          string         `json:"title"`
	Content        string         `json:"content,omitempty"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
	DeletedAt      *string        `json:"deleted_at,omitempty"`
	DeletedReason  DeletionReason `json:"deleted_reason,omitempty"`
}

// Comment lives in its author's partition. It carries no owner hint for its
// target post, so resolving the post is always a full partition scan.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	Text      string    `json:"text"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
	DeletedAt *string   `json:"deleted_at,omitempty"`
}

// UserPartition is the namespaced sub-store holding one user's own records.
type UserPartition struct {
	Settings  Settings               `json:"settings"`
	Galleries map[uuid.UUID]*Gallery `json:"galleries"`
	Posts     map[uuid.UUID]*Post    `json:"posts"`
	Comments  map[uuid.UUID]*Comment `json:"comments"`
}

// Normalize fills a partition's nil maps and zero-valued settings so every
// partition observed by callers has all four fields populated.
func (p *UserPartition) Normalize() {
	if p.Galleries == nil {
		p.Galleries = make(map[uuid.UUID]*Gallery)
	}
	if p.Posts == nil {
		p.Posts = make(map[uuid.UUID]*Post)
	}
	if p.Comments == nil {
		p.Comments = make(map[uuid.UUID]*Comment)
	}
	if p.Settings.Theme == "" {
		p.Settings.Theme = DefaultTheme
	}
	if p.Settings.Accent == "" {
		p.Settings.Accent = DefaultAccent
	}
	if p.Settings.ViewMode == "" {
		p.Settings.ViewMode = DefaultViewMode
	}
}

// OwnedGallery pairs a gallery with the id of the partition holding it.
type OwnedGallery struct {
	OwnerID uuid.UUID `json:"owner_id"`
	Gallery *Gallery  `json:"gallery"`
}

// OwnedPost pairs a post with the id of its author's partition.
type OwnedPost struct {
	AuthorID uuid.UUID `json:"author_id"`
	Post     *Post     `json:"post"`
}

// OwnedComment pairs a comment with the id of its author's partition.
type OwnedComment struct {
	AuthorID uuid.UUID `json:"author_id"`
	Comment  *Comment  `json:"comment"`
}

// GalleryListing is a list/search row: the gallery plus its resolved owner.
type GalleryListing struct {
	OwnerID       uuid.UUID `json:"owner_id"`
	OwnerUsername string    `json:"owner_username"`
	Gallery       *Gallery  `json:"gallery"`
}

// GalleryMeta aggregates post counts and recency for one gallery.
type GalleryMeta struct {
	AliveCount      int     `json:"alive_count"`
	TombstonedCount int     `json:"tombstoned_count"`
	LatestActivity  *string `json:"latest_activity,omitempty"`
}
