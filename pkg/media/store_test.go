package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestStoreAssetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	dir := store.UserDir(7)

	payload := []byte{0xff, 0xd8, 0xff, 0xe0}
	require.NoError(t, store.WriteAsset(dir, ProfileImagePrefix, "jpg", payload))

	data, found, err := store.ReadAsset(dir, ProfileImagePrefix)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, payload, data)
}

func TestStoreReadAssetAbsent(t *testing.T) {
	store := newTestStore(t)

	data, found, err := store.ReadAsset(store.CategoryDir("Math"), CategoryImagePrefix)
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, data)
}

func TestStoreReplaceAssetRemovesOldExtension(t *testing.T) {
	store := newTestStore(t)
	dir := store.UserDir(3)

	require.NoError(t, store.WriteAsset(dir, ProfileImagePrefix, "png", []byte("old")))
	require.NoError(t, store.ReplaceAsset(dir, ProfileImagePrefix, "jpg", []byte("new")))

	_, err := os.Stat(filepath.Join(dir, "profileimg.png"))
	require.True(t, os.IsNotExist(err))

	data, found, err := store.ReadAsset(dir, ProfileImagePrefix)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("new"), data)
}

func TestStoreEnsureDirIdempotent(t *testing.T) {
	store := newTestStore(t)
	dir := store.CourseDir(12)

	require.NoError(t, store.EnsureDir(dir))
	require.NoError(t, store.EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestStoreContentRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WriteContent(5, "lesson1.pdf", []byte("pdf-bytes")))

	data, found, err := store.ReadContent(5, "lesson1.pdf")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("pdf-bytes"), data)

	_, found, err = store.ReadContent(5, "missing.txt")
	require.NoError(t, err)
	require.False(t, found)
}

func TestStoreContentNameCannotEscapeCourseDirectory(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WriteContent(5, "../../../escape.txt", []byte("out")))

	_, err := os.Stat(filepath.Join(store.ContentDir(5), "escape.txt"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(store.root, "..", "escape.txt"))
	require.True(t, os.IsNotExist(err))

	data, found, err := store.ReadContent(5, "../../../escape.txt")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("out"), data)
}

func TestStoreCategoryDirStripsPathComponents(t *testing.T) {
	store := newTestStore(t)

	dir := store.CategoryDir("../../evil")
	require.Equal(t, filepath.Join(store.root, categoriesDir, "evil"), dir)
}

func TestStoreRemoveSubtree(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WriteAsset(store.CourseDir(9), CourseImagePrefix, "png", []byte("img")))
	require.NoError(t, store.WriteContent(9, "notes.txt", []byte("notes")))

	require.NoError(t, store.RemoveSubtree(store.CourseDir(9)))

	_, err := os.Stat(store.CourseDir(9))
	require.True(t, os.IsNotExist(err))

	// removing an already absent subtree is not an error
	require.NoError(t, store.RemoveSubtree(store.CourseDir(9)))
}
