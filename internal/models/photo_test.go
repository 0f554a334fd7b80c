package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoto(t *testing.T) {
	t.Run("creates photo with valid parameters", func(t *testing.T) {
		photo, err := NewPhoto("test_photo.jpg", "2026/03/test_photo.jpg", "image/jpeg", 1024)

		require.NoError(t, err)
		assert.NotEmpty(t, photo.ID)
		assert.Equal(t, "test_photo.jpg", photo.Name)
		assert.Equal(t, "2026/03/test_photo.jpg", photo.StoredPath)
		assert.Equal(t, "image/jpeg", photo.MimeType)
		assert.Equal(t, int64(1024), photo.Size)
		assert.Empty(t, photo.AlbumIDs)
		assert.WithinDuration(t, time.Now().UTC(), photo.UploadedAt, time.Second*5)
	})

	t.Run("rejects empty filename", func(t *testing.T) {
		_, err := NewPhoto("", "path", "image/jpeg", 1024)
		assert.ErrorIs(t, err, ErrEmptyFilename)
	})

	t.Run("rejects empty stored path", func(t *testing.T) {
		_, err := NewPhoto("file.jpg", "", "image/jpeg", 1024)
		assert.ErrorIs(t, err, ErrEmptyStoredPath)
	})

	t.Run("rejects non-positive file size", func(t *testing.T) {
		_, err := NewPhoto("file.jpg", "path", "image/jpeg", 0)
		assert.ErrorIs(t, err, ErrInvalidFileSize)

		_, err = NewPhoto("file.jpg", "path", "image/jpeg", -100)
		assert.ErrorIs(t, err, ErrInvalidFileSize)
	})

	t.Run("sanitizes filename with path components", func(t *testing.T) {
		photo, err := NewPhoto("../../../etc/passwd.jpg", "safe/path.jpg", "image/jpeg", 1024)

		require.NoError(t, err)
		assert.NotContains(t, photo.Name, "..")
		assert.NotContains(t, photo.Name, "/")
	})

	t.Run("generates unique IDs", func(t *testing.T) {
		photo1, err := NewPhoto("a.jpg", "path1", "image/jpeg", 100)
		require.NoError(t, err)

		photo2, err := NewPhoto("b.jpg", "path2", "image/jpeg", 100)
		require.NoError(t, err)

		assert.NotEqual(t, photo1.ID, photo2.ID)
	})
}

func TestPhotoInAlbum(t *testing.T) {
	photo := Photo{AlbumIDs: []string{"a1", "a2"}}

	assert.True(t, photo.InAlbum("a1"))
	assert.False(t, photo.InAlbum("a3"))
}
