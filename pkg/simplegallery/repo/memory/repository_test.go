package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
	"github.com/tendant/simple-gallery/pkg/simplegallery/repo/memory"
)

var testStamp = simplegallery.FormatTime(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

func newUser(username string) *simplegallery.User {
	return &simplegallery.User{
		ID:          uuid.New(),
		Username:    username,
		Salt:        []byte{1, 2, 3},
		DerivedHash: []byte{4, 5, 6},
		Role:        simplegallery.RoleUser,
		CreatedAt:   testStamp,
	}
}

func newGallery(title string) *simplegallery.Gallery {
	return &simplegallery.Gallery{
		ID:        uuid.New(),
		Title:     title,
		Icon:      simplegallery.DefaultIcon,
		Color:     simplegallery.DefaultColor,
		CreatedAt: testStamp,
		UpdatedAt: testStamp,
	}
}

func TestUserOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		user := newUser("alice")
		require.NoError(t, repo.CreateUser(ctx, user))

		got, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Username, got.Username)

		byName, err := repo.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byName.ID)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		err := repo.CreateUser(ctx, newUser("alice"))
		assert.ErrorIs(t, err, simplegallery.ErrDuplicateUsername)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetUser(ctx, uuid.New())
		assert.ErrorIs(t, err, simplegallery.ErrUserNotFound)

		_, err = repo.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, simplegallery.ErrUserNotFound)
	})

	t.Run("UpdateReindexesUsername", func(t *testing.T) {
		user := newUser("carol")
		require.NoError(t, repo.CreateUser(ctx, user))

		user.Username = "caroline"
		require.NoError(t, repo.UpdateUser(ctx, user))

		_, err := repo.GetUserByUsername(ctx, "carol")
		assert.ErrorIs(t, err, simplegallery.ErrUserNotFound)

		renamed, err := repo.GetUserByUsername(ctx, "caroline")
		require.NoError(t, err)
		assert.Equal(t, user.ID, renamed.ID)
	})

	t.Run("UpdateRejectsTakenUsername", func(t *testing.T) {
		user := newUser("dave")
		require.NoError(t, repo.CreateUser(ctx, user))

		user.Username = "alice"
		err := repo.UpdateUser(ctx, user)
		assert.ErrorIs(t, err, simplegallery.ErrDuplicateUsername)
	})

	t.Run("ListSortedByUsername", func(t *testing.T) {
		users, err := repo.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, "caroline", users[1].Username)
		assert.Equal(t, "dave", users[2].Username)
	})
}

func TestCopyOutIsolation(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	user := newUser("alice")
	require.NoError(t, repo.CreateUser(ctx, user))

	t.Run("UserByteSlices", func(t *testing.T) {
		got, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		got.Salt[0] = 99
		got.Username = "tampered"

		again, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, byte(1), again.Salt[0])
		assert.Equal(t, "alice", again.Username)
	})

	t.Run("SaveCopiesInput", func(t *testing.T) {
		gallery := newGallery("Trips")
		require.NoError(t, repo.SaveGallery(ctx, user.ID, gallery))

		gallery.Title = "Mutated After Save"
		got, err := repo.GetGallery(ctx, user.ID, gallery.ID)
		require.NoError(t, err)
		assert.Equal(t, "Trips", got.Title)
	})

	t.Run("DeletedAtPointer", func(t *testing.T) {
		gallery := newGallery("Doomed")
		stamp := testStamp
		gallery.DeletedAt = &stamp
		require.NoError(t, repo.SaveGallery(ctx, user.ID, gallery))

		got, err := repo.GetGallery(ctx, user.ID, gallery.ID)
		require.NoError(t, err)
		*got.DeletedAt = "overwritten"

		again, err := repo.GetGallery(ctx, user.ID, gallery.ID)
		require.NoError(t, err)
		assert.Equal(t, testStamp, *again.DeletedAt)
	})
}

func TestPartitionScoping(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	alice := newUser("alice")
	bob := newUser("bob")
	require.NoError(t, repo.CreateUser(ctx, alice))
	require.NoError(t, repo.CreateUser(ctx, bob))

	gallery := newGallery("Private")
	require.NoError(t, repo.SaveGallery(ctx, alice.ID, gallery))

	t.Run("GetScopedToOwner", func(t *testing.T) {
		_, err := repo.GetGallery(ctx, bob.ID, gallery.ID)
		assert.ErrorIs(t, err, simplegallery.ErrGalleryNotFound)
	})

	t.Run("RemoveScopedToOwner", func(t *testing.T) {
		err := repo.RemoveGallery(ctx, bob.ID, gallery.ID)
		assert.ErrorIs(t, err, simplegallery.ErrGalleryNotFound)

		require.NoError(t, repo.RemoveGallery(ctx, alice.ID, gallery.ID))
		_, err = repo.GetGallery(ctx, alice.ID, gallery.ID)
		assert.ErrorIs(t, err, simplegallery.ErrGalleryNotFound)
	})

	t.Run("ListAllSpansPartitions", func(t *testing.T) {
		require.NoError(t, repo.SavePost(ctx, alice.ID, &simplegallery.Post{
			ID: uuid.New(), GalleryID: uuid.New(), Title: "A",
			CreatedAt: testStamp, UpdatedAt: testStamp,
		}))
		require.NoError(t, repo.SavePost(ctx, bob.ID, &simplegallery.Post{
			ID: uuid.New(), GalleryID: uuid.New(), Title: "B",
			CreatedAt: testStamp, UpdatedAt: testStamp,
		}))

		posts, err := repo.ListAllPosts(ctx)
		require.NoError(t, err)
		assert.Len(t, posts, 2)
		authors := map[uuid.UUID]bool{}
		for _, p := range posts {
			authors[p.AuthorID] = true
		}
		assert.True(t, authors[alice.ID])
		assert.True(t, authors[bob.ID])
	})
}

func TestSettingsDefaults(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	t.Run("LazyPartitionGetsDefaults", func(t *testing.T) {
		settings, err := repo.GetSettings(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, simplegallery.DefaultTheme, settings.Theme)
		assert.Equal(t, simplegallery.DefaultAccent, settings.Accent)
		assert.Equal(t, simplegallery.DefaultViewMode, settings.ViewMode)
	})

	t.Run("SaveRoundTrip", func(t *testing.T) {
		ownerID := uuid.New()
		require.NoError(t, repo.SaveSettings(ctx, ownerID, &simplegallery.Settings{
			Theme: "dark", Accent: "ff8800", ViewMode: "list",
		}))

		settings, err := repo.GetSettings(ctx, ownerID)
		require.NoError(t, err)
		assert.Equal(t, "dark", settings.Theme)
	})
}

func TestDocumentOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	alice := newUser("alice")
	require.NoError(t, repo.CreateUser(ctx, alice))
	gallery := newGallery("Kept")
	require.NoError(t, repo.SaveGallery(ctx, alice.ID, gallery))

	t.Run("ExportIsDetached", func(t *testing.T) {
		doc, err := repo.ExportDocument(ctx)
		require.NoError(t, err)
		doc.Users[alice.ID].Username = "tampered"
		doc.UserData[alice.ID].Galleries[gallery.ID].Title = "tampered"

		got, err := repo.GetUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)

		stored, err := repo.GetGallery(ctx, alice.ID, gallery.ID)
		require.NoError(t, err)
		assert.Equal(t, "Kept", stored.Title)
	})

	t.Run("ImportReplacesState", func(t *testing.T) {
		doc, err := repo.ExportDocument(ctx)
		require.NoError(t, err)

		extra := newUser("transient")
		require.NoError(t, repo.CreateUser(ctx, extra))
		require.NoError(t, repo.ImportDocument(ctx, doc))

		_, err = repo.GetUser(ctx, extra.ID)
		assert.ErrorIs(t, err, simplegallery.ErrUserNotFound)
		_, err = repo.GetUser(ctx, alice.ID)
		assert.NoError(t, err)
	})

	t.Run("ImportIsDetachedFromCaller", func(t *testing.T) {
		doc, err := repo.ExportDocument(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.ImportDocument(ctx, doc))

		doc.Users[alice.ID].Username = "tampered"
		got, err := repo.GetUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("SeedFromDocument", func(t *testing.T) {
		doc, err := repo.ExportDocument(ctx)
		require.NoError(t, err)

		seeded := memory.NewWithDocument(doc)
		got, err := seeded.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
	})
}
