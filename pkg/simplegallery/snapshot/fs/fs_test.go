package fs_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-gallery/pkg/simplegallery/snapshot"
	"github.com/tendant/simple-gallery/pkg/simplegallery/snapshot/fs"
)

func newStore(t *testing.T) (snapshot.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := fs.New(fs.Config{BaseDir: dir})
	require.NoError(t, err)
	return store, dir
}

func TestNew(t *testing.T) {
	t.Run("RequiresBaseDir", func(t *testing.T) {
		_, err := fs.New(fs.Config{})
		assert.Error(t, err)
	})

	t.Run("CreatesBaseDir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "snapshots")
		_, err := fs.New(fs.Config{BaseDir: dir})
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestWriteReadDelete(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		require.NoError(t, store.Write(ctx, "snapshots/a.json", strings.NewReader(`{"version":1}`)))

		reader, err := store.Read(ctx, "snapshots/a.json")
		require.NoError(t, err)
		defer reader.Close()

		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, `{"version":1}`, string(data))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Write(ctx, "snapshots/a.json", strings.NewReader("second")))

		reader, err := store.Read(ctx, "snapshots/a.json")
		require.NoError(t, err)
		defer reader.Close()

		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, "second", string(data))
	})

	t.Run("ReadMissing", func(t *testing.T) {
		_, err := store.Read(ctx, "snapshots/missing.json")
		assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		err := store.Delete(ctx, "snapshots/missing.json")
		assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
	})

	t.Run("DeleteCleansEmptyDirectories", func(t *testing.T) {
		require.NoError(t, store.Write(ctx, "deep/nested/b.json", strings.NewReader("x")))
		require.NoError(t, store.Delete(ctx, "deep/nested/b.json"))

		_, err := os.Stat(filepath.Join(dir, "deep"))
		assert.True(t, os.IsNotExist(err))
		// The base directory itself survives.
		_, err = os.Stat(dir)
		assert.NoError(t, err)
	})
}

func TestList(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		infos, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, infos)
	})

	t.Run("SlashSeparatedKeys", func(t *testing.T) {
		require.NoError(t, store.Write(ctx, "snapshots/one.json", strings.NewReader("one")))
		require.NoError(t, store.Write(ctx, "snapshots/nested/two.json", strings.NewReader("two")))

		infos, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 2)

		byKey := map[string]snapshot.Info{}
		for _, info := range infos {
			byKey[info.Key] = info
		}
		assert.Contains(t, byKey, "snapshots/one.json")
		assert.Contains(t, byKey, "snapshots/nested/two.json")
		assert.Equal(t, int64(3), byKey["snapshots/one.json"].Size)
		assert.False(t, byKey["snapshots/one.json"].UpdatedAt.IsZero())
	})
}
