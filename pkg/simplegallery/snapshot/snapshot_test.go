package snapshot_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
	"github.com/tendant/simple-gallery/pkg/simplegallery/snapshot"
	"github.com/tendant/simple-gallery/pkg/simplegallery/snapshot/memory"
)

// tickingClock hands out strictly increasing times so every snapshot gets a
// distinct key.
type tickingClock struct {
	current time.Time
}

func newTickingClock() *tickingClock {
	return &tickingClock{current: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *tickingClock) Now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

func newManager() *snapshot.Manager {
	return snapshot.NewManager(memory.New(), snapshot.WithClock(newTickingClock().Now))
}

func docWithUser(username string) *simplegallery.Document {
	doc := simplegallery.NewDocument()
	id := uuid.New()
	doc.Users[id] = &simplegallery.User{ID: id, Username: username, Role: simplegallery.RoleUser}
	doc.UsernameIndex[username] = id
	return doc
}

func TestManagerSaveLoad(t *testing.T) {
	manager := newManager()
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		key, err := manager.Save(ctx, docWithUser("alice"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(key, "snapshots/"))
		assert.True(t, strings.HasSuffix(key, ".json"))

		doc, err := manager.Load(ctx, key)
		require.NoError(t, err)
		_, found := doc.UsernameIndex["alice"]
		assert.True(t, found)
	})

	t.Run("NilDocument", func(t *testing.T) {
		_, err := manager.Save(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("MissingKey", func(t *testing.T) {
		_, err := manager.Load(ctx, "snapshots/nothing.json")
		assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
	})

	t.Run("CorruptObject", func(t *testing.T) {
		store := memory.New()
		corrupt := snapshot.NewManager(store)
		require.NoError(t, store.Write(ctx, "snapshots/bad.json", strings.NewReader("not json")))

		_, err := corrupt.Load(ctx, "snapshots/bad.json")
		assert.ErrorIs(t, err, simplegallery.ErrMalformedImport)
	})
}

func TestManagerLatest(t *testing.T) {
	manager := newManager()
	ctx := context.Background()

	t.Run("EmptyStore", func(t *testing.T) {
		_, _, err := manager.Latest(ctx)
		assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
	})

	t.Run("PicksNewest", func(t *testing.T) {
		_, err := manager.Save(ctx, docWithUser("old"))
		require.NoError(t, err)
		middleKey, err := manager.Save(ctx, docWithUser("middle"))
		require.NoError(t, err)
		newestKey, err := manager.Save(ctx, docWithUser("newest"))
		require.NoError(t, err)
		assert.Less(t, middleKey, newestKey)

		doc, key, err := manager.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, newestKey, key)
		_, found := doc.UsernameIndex["newest"]
		assert.True(t, found)
	})
}

func TestManagerPrune(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, n int) (*snapshot.Manager, snapshot.Store, []string) {
		store := memory.New()
		manager := snapshot.NewManager(store, snapshot.WithClock(newTickingClock().Now))
		keys := make([]string, 0, n)
		for i := 0; i < n; i++ {
			key, err := manager.Save(ctx, docWithUser("user"))
			require.NoError(t, err)
			keys = append(keys, key)
		}
		return manager, store, keys
	}

	t.Run("KeepsNewest", func(t *testing.T) {
		manager, store, keys := seed(t, 5)
		require.NoError(t, manager.Prune(ctx, 2))

		infos, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 2)
		remaining := map[string]bool{}
		for _, info := range infos {
			remaining[info.Key] = true
		}
		assert.True(t, remaining[keys[3]])
		assert.True(t, remaining[keys[4]])
	})

	t.Run("KeepZeroDeletesAll", func(t *testing.T) {
		manager, store, _ := seed(t, 3)
		require.NoError(t, manager.Prune(ctx, 0))

		infos, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, infos)
	})

	t.Run("KeepBeyondCountIsNoop", func(t *testing.T) {
		manager, store, _ := seed(t, 2)
		require.NoError(t, manager.Prune(ctx, 10))

		infos, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, infos, 2)
	})

	t.Run("NegativeKeepRejected", func(t *testing.T) {
		manager, _, _ := seed(t, 1)
		assert.Error(t, manager.Prune(ctx, -1))
	})
}
