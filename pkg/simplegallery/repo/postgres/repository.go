// Package postgres provides the PostgreSQL-backed Repository. Timestamps are
// stored as the same fixed-width RFC 3339 strings the domain model uses, so
// ordering semantics are identical across backends.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplegallery.Repository using PostgreSQL
type Repository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL repository
func New(db DBTX) simplegallery.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool.
// Document import runs in a transaction, which needs the pool.
func NewWithPool(pool *pgxpool.Pool) simplegallery.Repository {
	return &Repository{db: pool, pool: pool}
}

func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if pgErr.ConstraintName == "users_username_key" {
				return simplegallery.ErrDuplicateUsername
			}
			return fmt.Errorf("duplicate entry")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *simplegallery.User) error {
	query := `
		INSERT INTO gallery.users (id, username, salt, derived_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.Salt, user.DerivedHash, string(user.Role), user.CreatedAt)
	if err != nil {
		return r.handlePostgresError("create user", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*simplegallery.User, error) {
	query := `
		SELECT id, username, salt, derived_hash, role, created_at
		FROM gallery.users WHERE id = $1`

	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*simplegallery.User, error) {
	query := `
		SELECT id, username, salt, derived_hash, role, created_at
		FROM gallery.users WHERE username = $1`

	return r.scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *Repository) scanUser(row pgx.Row) (*simplegallery.User, error) {
	var user simplegallery.User
	var role string
	err := row.Scan(&user.ID, &user.Username, &user.Salt, &user.DerivedHash, &role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplegallery.ErrUserNotFound
		}
		return nil, r.handlePostgresError("get user", err)
	}
	user.Role = simplegallery.Role(role)
	return &user, nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *simplegallery.User) error {
	query := `
		UPDATE gallery.users
		SET username = $2, salt = $3, derived_hash = $4, role = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.Salt, user.DerivedHash, string(user.Role))
	if err != nil {
		return r.handlePostgresError("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return simplegallery.ErrUserNotFound
	}
	return nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]*simplegallery.User, error) {
	query := `
		SELECT id, username, salt, derived_hash, role, created_at
		FROM gallery.users ORDER BY username`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list users", err)
	}
	defer rows.Close()

	var result []*simplegallery.User
	for rows.Next() {
		var user simplegallery.User
		var role string
		if err := rows.Scan(&user.ID, &user.Username, &user.Salt, &user.DerivedHash, &role, &user.CreatedAt); err != nil {
			return nil, r.handlePostgresError("list users", err)
		}
		user.Role = simplegallery.Role(role)
		result = append(result, &user)
	}
	return result, rows.Err()
}

// Settings operations

func (r *Repository) GetSettings(ctx context.Context, ownerID uuid.UUID) (*simplegallery.Settings, error) {
	query := `
		SELECT theme, accent, view_mode FROM gallery.settings WHERE owner_id = $1`

	var settings simplegallery.Settings
	err := r.db.QueryRow(ctx, query, ownerID).Scan(&settings.Theme, &settings.Accent, &settings.ViewMode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Partitions materialize lazily; absent settings read as defaults.
			return &simplegallery.Settings{
				Theme:    simplegallery.DefaultTheme,
				Accent:   simplegallery.DefaultAccent,
				ViewMode: simplegallery.DefaultViewMode,
			}, nil
		}
		return nil, r.handlePostgresError("get settings", err)
	}
	return &settings, nil
}

func (r *Repository) SaveSettings(ctx context.Context, ownerID uuid.UUID, settings *simplegallery.Settings) error {
	query := `
		INSERT INTO gallery.settings (owner_id, theme, accent, view_mode)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id) DO UPDATE
		SET theme = EXCLUDED.theme, accent = EXCLUDED.accent, view_mode = EXCLUDED.view_mode`

	_, err := r.db.Exec(ctx, query, ownerID, settings.Theme, settings.Accent, settings.ViewMode)
	if err != nil {
		return r.handlePostgresError("save settings", err)
	}
	return nil
}

// Gallery operations

func (r *Repository) SaveGallery(ctx context.Context, ownerID uuid.UUID, gallery *simplegallery.Gallery) error {
	query := `
		INSERT INTO gallery.galleries (
			id, owner_id, title, description, icon, color, pinned,
			created_at, updated_at, deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, description = EXCLUDED.description,
			icon = EXCLUDED.icon, color = EXCLUDED.color, pinned = EXCLUDED.pinned,
			updated_at = EXCLUDED.updated_at, deleted_at = EXCLUDED.deleted_at`

	_, err := r.db.Exec(ctx, query,
		gallery.ID, ownerID, gallery.Title, gallery.Description, gallery.Icon,
		gallery.Color, gallery.Pinned, gallery.CreatedAt, gallery.UpdatedAt, gallery.DeletedAt)
	if err != nil {
		return r.handlePostgresError("save gallery", err)
	}
	return nil
}

func (r *Repository) GetGallery(ctx context.Context, ownerID, id uuid.UUID) (*simplegallery.Gallery, error) {
	query := `
		SELECT id, title, description, icon, color, pinned, created_at, updated_at, deleted_at
		FROM gallery.galleries WHERE id = $1 AND owner_id = $2`

	var g simplegallery.Gallery
	err := r.db.QueryRow(ctx, query, id, ownerID).Scan(
		&g.ID, &g.Title, &g.Description, &g.Icon, &g.Color, &g.Pinned,
		&g.CreatedAt, &g.UpdatedAt, &g.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplegallery.ErrGalleryNotFound
		}
		return nil, r.handlePostgresError("get gallery", err)
	}
	return &g, nil
}

func (r *Repository) RemoveGallery(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM gallery.galleries WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return r.handlePostgresError("remove gallery", err)
	}
	if tag.RowsAffected() == 0 {
		return simplegallery.ErrGalleryNotFound
	}
	return nil
}

func (r *Repository) ListAllGalleries(ctx context.Context) ([]simplegallery.OwnedGallery, error) {
	query := `
		SELECT owner_id, id, title, description, icon, color, pinned, created_at, updated_at, deleted_at
		FROM gallery.galleries`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list galleries", err)
	}
	defer rows.Close()

	var result []simplegallery.OwnedGallery
	for rows.Next() {
		var ownerID uuid.UUID
		var g simplegallery.Gallery
		if err := rows.Scan(&ownerID, &g.ID, &g.Title, &g.Description, &g.Icon, &g.Color,
			&g.Pinned, &g.CreatedAt, &g.UpdatedAt, &g.DeletedAt); err != nil {
			return nil, r.handlePostgresError("list galleries", err)
		}
		result = append(result, simplegallery.OwnedGallery{OwnerID: ownerID, Gallery: &g})
	}
	return result, rows.Err()
}

// Post operations

func (r *Repository) SavePost(ctx context.Context, authorID uuid.UUID, post *simplegallery.Post) error {
	query := `
		INSERT INTO gallery.posts (
			id, author_id, gallery_owner_id, gallery_id, title, content,
			created_at, updated_at, deleted_at, deleted_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at, deleted_at = EXCLUDED.deleted_at,
			deleted_reason = EXCLUDED.deleted_reason`

	_, err := r.db.Exec(ctx, query,
		post.ID, authorID, nullableUUID(post.GalleryOwnerID), post.GalleryID,
		post.Title, post.Content, post.CreatedAt, post.UpdatedAt,
		post.DeletedAt, string(post.DeletedReason))
	if err != nil {
		return r.handlePostgresError("save post", err)
	}
	return nil
}

func (r *Repository) GetPost(ctx context.Context, authorID, id uuid.UUID) (*simplegallery.Post, error) {
	query := `
		SELECT id, gallery_owner_id, gallery_id, title, content,
			created_at, updated_at, deleted_at, deleted_reason
		FROM gallery.posts WHERE id = $1 AND author_id = $2`

	post, err := scanPost(r.db.QueryRow(ctx, query, id, authorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplegallery.ErrPostNotFound
		}
		return nil, r.handlePostgresError("get post", err)
	}
	return post, nil
}

func scanPost(row pgx.Row) (*simplegallery.Post, error) {
	var post simplegallery.Post
	var galleryOwner *uuid.UUID
	var reason string
	err := row.Scan(&post.ID, &galleryOwner, &post.GalleryID, &post.Title, &post.Content,
		&post.CreatedAt, &post.UpdatedAt, &post.DeletedAt, &reason)
	if err != nil {
		return nil, err
	}
	if galleryOwner != nil {
		post.GalleryOwnerID = *galleryOwner
	}
	post.DeletedReason = simplegallery.DeletionReason(reason)
	return &post, nil
}

func (r *Repository) RemovePost(ctx context.Context, authorID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM gallery.posts WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return r.handlePostgresError("remove post", err)
	}
	if tag.RowsAffected() == 0 {
		return simplegallery.ErrPostNotFound
	}
	return nil
}

func (r *Repository) ListAllPosts(ctx context.Context) ([]simplegallery.OwnedPost, error) {
	query := `
		SELECT author_id, id, gallery_owner_id, gallery_id, title, content,
			created_at, updated_at, deleted_at, deleted_reason
		FROM gallery.posts`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list posts", err)
	}
	defer rows.Close()

	var result []simplegallery.OwnedPost
	for rows.Next() {
		var authorID uuid.UUID
		var post simplegallery.Post
		var galleryOwner *uuid.UUID
		var reason string
		if err := rows.Scan(&authorID, &post.ID, &galleryOwner, &post.GalleryID,
			&post.Title, &post.Content, &post.CreatedAt, &post.UpdatedAt,
			&post.DeletedAt, &reason); err != nil {
			return nil, r.handlePostgresError("list posts", err)
		}
		if galleryOwner != nil {
			post.GalleryOwnerID = *galleryOwner
		}
		post.DeletedReason = simplegallery.DeletionReason(reason)
		result = append(result, simplegallery.OwnedPost{AuthorID: authorID, Post: &post})
	}
	return result, rows.Err()
}

// Comment operations

func (r *Repository) SaveComment(ctx context.Context, authorID uuid.UUID, comment *simplegallery.Comment) error {
	query := `
		INSERT INTO gallery.comments (id, author_id, post_id, body, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			body = EXCLUDED.body, updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at`

	_, err := r.db.Exec(ctx, query,
		comment.ID, authorID, comment.PostID, comment.Text,
		comment.CreatedAt, comment.UpdatedAt, comment.DeletedAt)
	if err != nil {
		return r.handlePostgresError("save comment", err)
	}
	return nil
}

func (r *Repository) GetComment(ctx context.Context, authorID, id uuid.UUID) (*simplegallery.Comment, error) {
	query := `
		SELECT id, post_id, body, created_at, updated_at, deleted_at
		FROM gallery.comments WHERE id = $1 AND author_id = $2`

	var c simplegallery.Comment
	err := r.db.QueryRow(ctx, query, id, authorID).Scan(
		&c.ID, &c.PostID, &c.Text, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplegallery.ErrCommentNotFound
		}
		return nil, r.handlePostgresError("get comment", err)
	}
	return &c, nil
}

func (r *Repository) RemoveComment(ctx context.Context, authorID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM gallery.comments WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return r.handlePostgresError("remove comment", err)
	}
	if tag.RowsAffected() == 0 {
		return simplegallery.ErrCommentNotFound
	}
	return nil
}

func (r *Repository) ListAllComments(ctx context.Context) ([]simplegallery.OwnedComment, error) {
	query := `
		SELECT author_id, id, post_id, body, created_at, updated_at, deleted_at
		FROM gallery.comments`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list comments", err)
	}
	defer rows.Close()

	var result []simplegallery.OwnedComment
	for rows.Next() {
		var authorID uuid.UUID
		var c simplegallery.Comment
		if err := rows.Scan(&authorID, &c.ID, &c.PostID, &c.Text,
			&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
			return nil, r.handlePostgresError("list comments", err)
		}
		result = append(result, simplegallery.OwnedComment{AuthorID: authorID, Comment: &c})
	}
	return result, rows.Err()
}

// Document operations

func (r *Repository) ExportDocument(ctx context.Context) (*simplegallery.Document, error) {
	doc := simplegallery.NewDocument()

	users, err := r.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		doc.Users[u.ID] = u
		doc.UsernameIndex[u.Username] = u.ID
		doc.UserData[u.ID] = &simplegallery.UserPartition{}
	}

	settingsRows, err := r.db.Query(ctx, `SELECT owner_id, theme, accent, view_mode FROM gallery.settings`)
	if err != nil {
		return nil, r.handlePostgresError("export settings", err)
	}
	defer settingsRows.Close()
	for settingsRows.Next() {
		var ownerID uuid.UUID
		var settings simplegallery.Settings
		if err := settingsRows.Scan(&ownerID, &settings.Theme, &settings.Accent, &settings.ViewMode); err != nil {
			return nil, r.handlePostgresError("export settings", err)
		}
		p := exportPartition(doc, ownerID)
		p.Settings = settings
	}

	galleries, err := r.ListAllGalleries(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range galleries {
		exportPartition(doc, g.OwnerID).Galleries[g.Gallery.ID] = g.Gallery
	}

	posts, err := r.ListAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		exportPartition(doc, p.AuthorID).Posts[p.Post.ID] = p.Post
	}

	comments, err := r.ListAllComments(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		exportPartition(doc, c.AuthorID).Comments[c.Comment.ID] = c.Comment
	}

	if err := doc.Normalize(); err != nil {
		return nil, fmt.Errorf("exported document failed validation: %w", err)
	}
	return doc, nil
}

func exportPartition(doc *simplegallery.Document, ownerID uuid.UUID) *simplegallery.UserPartition {
	p, exists := doc.UserData[ownerID]
	if !exists {
		p = &simplegallery.UserPartition{}
		p.Normalize()
		doc.UserData[ownerID] = p
	}
	return p
}

// ImportDocument replaces all stored state with the supplied document inside
// one transaction.
func (r *Repository) ImportDocument(ctx context.Context, doc *simplegallery.Document) error {
	if r.pool == nil {
		return fmt.Errorf("document import requires a connection pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("import document", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"gallery.comments", "gallery.posts", "gallery.galleries", "gallery.settings", "gallery.users"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return r.handlePostgresError("import document", err)
		}
	}

	txRepo := &Repository{db: tx}
	for _, u := range doc.Users {
		if err := txRepo.CreateUser(ctx, u); err != nil {
			return err
		}
	}
	for ownerID, p := range doc.UserData {
		settings := p.Settings
		if err := txRepo.SaveSettings(ctx, ownerID, &settings); err != nil {
			return err
		}
		for _, g := range p.Galleries {
			if err := txRepo.SaveGallery(ctx, ownerID, g); err != nil {
				return err
			}
		}
		for _, post := range p.Posts {
			if err := txRepo.SavePost(ctx, ownerID, post); err != nil {
				return err
			}
		}
		for _, c := range p.Comments {
			if err := txRepo.SaveComment(ctx, ownerID, c); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return r.handlePostgresError("import document", err)
	}
	return nil
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
