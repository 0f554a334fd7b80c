package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photogallery/server/internal/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func mustAlbum(t *testing.T, repo *AlbumRepository, name string) *models.Album {
	album, err := models.NewAlbum(name)
	require.NoError(t, err)
	require.NoError(t, repo.Add(context.Background(), album))
	return album
}

func mustPhoto(t *testing.T, repo *PhotoRepository, name string) *models.Photo {
	photo, err := models.NewPhoto(name, "2026/01/"+name, "image/jpeg", 1024)
	require.NoError(t, err)
	photo.FileHash = "hash-" + name
	require.NoError(t, repo.Add(context.Background(), photo))
	return photo
}

func TestAlbumRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlbumRepository(db)
	ctx := context.Background()

	t.Run("get missing album returns nil", func(t *testing.T) {
		album, err := repo.GetByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, album)
	})

	t.Run("created album round-trips with zero count", func(t *testing.T) {
		album := mustAlbum(t, repo, "Trip")

		got, err := repo.GetByID(ctx, album.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Trip", got.Name)
		assert.Equal(t, 0, got.PhotoCount)
		assert.Empty(t, got.Tags)
	})

	t.Run("update replaces fields", func(t *testing.T) {
		album := mustAlbum(t, repo, "Before")
		album.Name = "After"
		album.Tags = []string{"vacation"}
		require.NoError(t, repo.Update(ctx, album))

		got, err := repo.GetByID(ctx, album.ID)
		require.NoError(t, err)
		assert.Equal(t, "After", got.Name)
		assert.Equal(t, []string{"vacation"}, got.Tags)
	})

	t.Run("default album is findable", func(t *testing.T) {
		album, err := models.NewAlbum("All Photos")
		require.NoError(t, err)
		album.IsDefault = true
		require.NoError(t, repo.Add(ctx, album))

		got, err := repo.GetDefault(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, album.ID, got.ID)
	})
}

func TestAlbumRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	albumRepo := NewAlbumRepository(db)
	photoRepo := NewPhotoRepository(db)
	apRepo := NewAlbumPhotoRepository(db)
	ctx := context.Background()

	album := mustAlbum(t, albumRepo, "Holiday")
	for _, name := range []string{"p1.jpg", "p2.jpg", "p3.jpg"} {
		photo := mustPhoto(t, photoRepo, name)
		inserted, err := apRepo.Add(ctx, models.NewAlbumPhoto(album.ID, photo.ID))
		require.NoError(t, err)
		require.True(t, inserted)
	}

	count, err := apRepo.GetPhotoCountForAlbum(ctx, album.ID)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	require.NoError(t, albumRepo.Delete(ctx, album.ID))

	count, err = apRepo.GetPhotoCountForAlbum(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// The photos themselves survive the album delete.
	photos, err := photoRepo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, photos, 3)
}

func TestAlbumPhotoRepository_IdempotentAdd(t *testing.T) {
	db := setupTestDB(t)
	albumRepo := NewAlbumRepository(db)
	photoRepo := NewPhotoRepository(db)
	apRepo := NewAlbumPhotoRepository(db)
	ctx := context.Background()

	album := mustAlbum(t, albumRepo, "Pets")
	photo := mustPhoto(t, photoRepo, "cat.jpg")

	inserted, err := apRepo.Add(ctx, models.NewAlbumPhoto(album.ID, photo.ID))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = apRepo.Add(ctx, models.NewAlbumPhoto(album.ID, photo.ID))
	require.NoError(t, err)
	assert.False(t, inserted)

	count, err := apRepo.GetPhotoCountForAlbum(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAlbumPhotoRepository_MovePhoto(t *testing.T) {
	db := setupTestDB(t)
	albumRepo := NewAlbumRepository(db)
	photoRepo := NewPhotoRepository(db)
	apRepo := NewAlbumPhotoRepository(db)
	ctx := context.Background()

	from := mustAlbum(t, albumRepo, "From")
	to := mustAlbum(t, albumRepo, "To")
	photo := mustPhoto(t, photoRepo, "move.jpg")

	_, err := apRepo.Add(ctx, models.NewAlbumPhoto(from.ID, photo.ID))
	require.NoError(t, err)

	removed, added, err := apRepo.MovePhoto(ctx, models.PhotoMoveOperation{
		PhotoID:     photo.ID,
		FromAlbumID: from.ID,
		ToAlbumID:   to.ID,
	})
	require.NoError(t, err)
	assert.True(t, removed)
	assert.True(t, added)

	inFrom, err := apRepo.IsPhotoInAlbum(ctx, from.ID, photo.ID)
	require.NoError(t, err)
	assert.False(t, inFrom)

	inTo, err := apRepo.IsPhotoInAlbum(ctx, to.ID, photo.ID)
	require.NoError(t, err)
	assert.True(t, inTo)

	t.Run("self move is rejected before touching the database", func(t *testing.T) {
		_, _, err := apRepo.MovePhoto(ctx, models.PhotoMoveOperation{
			PhotoID:     photo.ID,
			FromAlbumID: to.ID,
			ToAlbumID:   to.ID,
		})
		assert.ErrorIs(t, err, models.ErrMoveSameAlbum)
	})

	t.Run("reports untouched sides", func(t *testing.T) {
		// Photo now lives only in the destination: deleting from the old
		// source affects no rows and the insert hits the conflict clause.
		removed, added, err := apRepo.MovePhoto(ctx, models.PhotoMoveOperation{
			PhotoID:     photo.ID,
			FromAlbumID: from.ID,
			ToAlbumID:   to.ID,
		})
		require.NoError(t, err)
		assert.False(t, removed)
		assert.False(t, added)

		count, err := apRepo.GetPhotoCountForAlbum(ctx, to.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestPhotoRepository_DeleteRemovesAssociations(t *testing.T) {
	db := setupTestDB(t)
	albumRepo := NewAlbumRepository(db)
	photoRepo := NewPhotoRepository(db)
	apRepo := NewAlbumPhotoRepository(db)
	ctx := context.Background()

	a1 := mustAlbum(t, albumRepo, "First")
	a2 := mustAlbum(t, albumRepo, "Second")
	photo := mustPhoto(t, photoRepo, "shared.jpg")

	_, err := apRepo.Add(ctx, models.NewAlbumPhoto(a1.ID, photo.ID))
	require.NoError(t, err)
	_, err = apRepo.Add(ctx, models.NewAlbumPhoto(a2.ID, photo.ID))
	require.NoError(t, err)

	deleted, err := photoRepo.Delete(ctx, photo.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	albums, err := apRepo.GetAlbumsForPhoto(ctx, photo.ID)
	require.NoError(t, err)
	assert.Empty(t, albums)

	t.Run("double delete reports not found", func(t *testing.T) {
		deleted, err := photoRepo.Delete(ctx, photo.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestPhotoRepository_GetByHash(t *testing.T) {
	db := setupTestDB(t)
	photoRepo := NewPhotoRepository(db)
	ctx := context.Background()

	photo := mustPhoto(t, photoRepo, "dedupe.jpg")

	got, err := photoRepo.GetByHash(ctx, photo.FileHash)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, photo.ID, got.ID)

	got, err = photoRepo.GetByHash(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}
