package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *PhotoStorageService {
	t.Helper()
	svc, err := NewPhotoStorageService(t.TempDir(), []string{".jpg", ".jpeg", ".png"}, 10)
	require.NoError(t, err)
	return svc
}

func TestPhotoStorageService_Store(t *testing.T) {
	svc := newTestStorage(t)
	takenAt := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

	t.Run("stores under year/month", func(t *testing.T) {
		stored, err := svc.Store(strings.NewReader("data"), "photo.jpg", takenAt, 4)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stored, "2026/03/"))
		assert.True(t, svc.Exists(stored))
	})

	t.Run("sanitizes hostile filenames", func(t *testing.T) {
		stored, err := svc.Store(strings.NewReader("data"), "../../etc/passwd.png", takenAt, 4)
		require.NoError(t, err)
		assert.NotContains(t, stored, "..")
		full, err := svc.GetFullPath(stored)
		require.NoError(t, err)
		_, err = os.Stat(full)
		assert.NoError(t, err)
	})

	t.Run("rejects disallowed extension", func(t *testing.T) {
		_, err := svc.Store(strings.NewReader("data"), "script.exe", takenAt, 4)
		assert.Error(t, err)
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		_, err := svc.Store(strings.NewReader("data"), "big.jpg", takenAt, 11*1024*1024)
		assert.Error(t, err)
	})

	t.Run("same name gets a unique path", func(t *testing.T) {
		a, err := svc.Store(strings.NewReader("one"), "dup.jpg", takenAt, 3)
		require.NoError(t, err)
		b, err := svc.Store(strings.NewReader("two"), "dup.jpg", takenAt, 3)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestPhotoStorageService_Delete(t *testing.T) {
	svc := newTestStorage(t)
	takenAt := time.Now().UTC()

	stored, err := svc.Store(strings.NewReader("data"), "gone.jpg", takenAt, 4)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(stored))
	assert.False(t, svc.Exists(stored))

	t.Run("deleting an absent file succeeds", func(t *testing.T) {
		assert.NoError(t, svc.Delete(stored))
	})

	t.Run("traversal paths are rejected", func(t *testing.T) {
		assert.Error(t, svc.Delete(filepath.Join("..", "outside.jpg")))
	})
}

func TestPhotoStorageService_Open(t *testing.T) {
	svc := newTestStorage(t)

	stored, err := svc.Store(strings.NewReader("payload"), "read.jpg", time.Now().UTC(), 7)
	require.NoError(t, err)

	rc, err := svc.Open(stored)
	require.NoError(t, err)
	defer rc.Close()

	buf := make([]byte, 7)
	n, _ := rc.Read(buf)
	assert.Equal(t, "payload", string(buf[:n]))
}
