package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadStoresContentWithGeneratedName(t *testing.T) {
	root := t.TempDir()
	svc := New(root, "/storage")

	path, err := svc.Upload(strings.NewReader("fake-png-bytes"), "PIC.PNG", "posts/image")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "posts/image/"), "path %q", path)
	assert.True(t, strings.HasSuffix(path, ".png"), "extension should be lowercased: %q", path)
	assert.NotContains(t, path, "PIC", "original name must not leak into the stored path")
	assert.True(t, svc.Exists(path))

	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	require.NoError(t, err)
	assert.Equal(t, "fake-png-bytes", string(b))
}

func TestUploadsGetDistinctNames(t *testing.T) {
	svc := New(t.TempDir(), "/storage")

	first, err := svc.Upload(strings.NewReader("a"), "same.jpg", "posts/image")
	require.NoError(t, err)
	second, err := svc.Upload(strings.NewReader("b"), "same.jpg", "posts/image")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc := New(t.TempDir(), "/storage")

	path, err := svc.Upload(strings.NewReader("x"), "a.gif", "posts/image")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(path))
	assert.False(t, svc.Exists(path))

	require.NoError(t, svc.Delete(path))
	require.NoError(t, svc.Delete("never/stored.png"))
	require.NoError(t, svc.Delete(""))
}

func TestPublicURL(t *testing.T) {
	svc := New(t.TempDir(), "/storage/")

	assert.Equal(t, "/storage/posts/image/a.png", svc.PublicURL("posts/image/a.png"))
	assert.Equal(t, "", svc.PublicURL(""))
}
