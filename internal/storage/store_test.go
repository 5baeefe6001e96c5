package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gaethering/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSafeKey(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		key  string
		safe bool
	}{
		{"Profile Key", "profile/abc.webp", true},
		{"Nested Board Key", "board/7/abc.jpg", true},
		{"Empty", "", false},
		{"Absolute", "/etc/passwd", false},
		{"Parent Traversal", "board/../../etc/passwd", false},
		{"Dot Segment", "board/./abc.jpg", false},
		{"Empty Segment", "board//abc.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.safe, isSafeKey(tt.key))
		})
	}
}

func TestFileStore_PutAndRemove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewFileStore(&config.Config{
		UploadDir:     dir,
		PublicBaseURL: "http://localhost:8080/media/",
	})
	ctx := context.Background()

	url, err := store.Put(ctx, "board/7/test.webp", "image/webp", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/board/7/test.webp", url)

	data, err := os.ReadFile(filepath.Join(dir, "board", "7", "test.webp"))
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	require.NoError(t, store.Remove(ctx, "board/7/test.webp"))
	_, err = os.Stat(filepath.Join(dir, "board", "7", "test.webp"))
	assert.True(t, os.IsNotExist(err))

	// removing an already-gone object is not an error
	assert.NoError(t, store.Remove(ctx, "board/7/test.webp"))
}

func TestFileStore_RejectsUnsafeKeys(t *testing.T) {
	t.Parallel()

	store := NewFileStore(&config.Config{UploadDir: t.TempDir()})
	ctx := context.Background()

	_, err := store.Put(ctx, "../escape.txt", "text/plain", []byte("x"))
	assert.Error(t, err)

	assert.Error(t, store.Remove(ctx, "/etc/passwd"))
}

func TestFileStore_Defaults(t *testing.T) {
	t.Parallel()

	store := NewFileStore(nil)
	assert.Equal(t, DefaultUploadDir, store.BaseDir())
}
