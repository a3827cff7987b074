package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocalDisk(t.TempDir(), "http://cdn.test/storage/")
	key := "products/1/latte.png"

	require.NoError(t, disk.Put(ctx, key, strings.NewReader("png")))
	ok, err := disk.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "http://cdn.test/storage/products/1/latte.png", disk.URL(key))

	rc, err := disk.Open(ctx, key)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png", string(body))

	require.NoError(t, disk.Delete(ctx, key))
	ok, err = disk.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, disk.Delete(ctx, key))

	_, err = disk.Open(ctx, key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	disk := storage.NewLocalDisk(root, "/storage")

	require.NoError(t, disk.Put(ctx, "../../escape.txt", strings.NewReader("x")))
	_, err := os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err)
	assert.Equal(t, "/storage/escape.txt", disk.URL("../../escape.txt"))
}

func TestLocalDiskLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	disk := storage.NewLocalDisk(root, "/storage")
	require.NoError(t, disk.Put(context.Background(), "a/b.txt", strings.NewReader("hello")))

	entries, err := os.ReadDir(filepath.Join(root, "a"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b.txt", entries[0].Name())
}

func TestRegisterAndUse(t *testing.T) {
	disk := storage.NewLocalDisk(t.TempDir(), "/storage")
	storage.Register("images", disk)

	got, err := storage.Use("images")
	require.NoError(t, err)
	assert.Same(t, disk, got)

	_, err = storage.Use("missing")
	assert.Error(t, err)
}

func TestDefaultFallsBackToLocal(t *testing.T) {
	config.Set("STORAGE_DISK", "s3")
	config.Set("STORAGE_LOCAL_ROOT", t.TempDir())
	t.Cleanup(func() {
		config.Set("STORAGE_DISK", "")
		config.Set("STORAGE_LOCAL_ROOT", "")
	})
	storage.Connect(context.Background())

	local, err := storage.Use("local")
	require.NoError(t, err)
	assert.Same(t, local, storage.Default())
}
