package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photogallery/server/internal/models"
	"github.com/photogallery/server/internal/repository"
)

func newTestAlbumService(t *testing.T) (*AlbumService, *repository.PhotoRepository) {
	t.Helper()
	db, err := repository.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	albumRepo := repository.NewAlbumRepository(db)
	albumPhotoRepo := repository.NewAlbumPhotoRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	return NewAlbumService(albumRepo, albumPhotoRepo, photoRepo), photoRepo
}

func seedPhoto(t *testing.T, repo *repository.PhotoRepository, name string) *models.Photo {
	t.Helper()
	photo, err := models.NewPhoto(name, "2026/01/"+name, "image/jpeg", 1024)
	require.NoError(t, err)
	require.NoError(t, repo.Add(context.Background(), photo))
	return photo
}

func TestAlbumService_CreateAlbum(t *testing.T) {
	svc, _ := newTestAlbumService(t)
	ctx := context.Background()

	t.Run("creates with trimmed name", func(t *testing.T) {
		album, err := svc.CreateAlbum(ctx, &models.CreateAlbumRequest{Name: "  Summer 2026  "})
		require.NoError(t, err)
		assert.Equal(t, "Summer 2026", album.Name)
		assert.NotEmpty(t, album.ID)
		assert.Zero(t, album.PhotoCount)
	})

	t.Run("rejects short name", func(t *testing.T) {
		_, err := svc.CreateAlbum(ctx, &models.CreateAlbumRequest{Name: "x"})
		assert.True(t, models.IsValidation(err))
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := svc.CreateAlbum(ctx, &models.CreateAlbumRequest{Name: "   "})
		assert.True(t, models.IsValidation(err))
	})
}

func TestAlbumService_UpdateAlbum(t *testing.T) {
	svc, photoRepo := newTestAlbumService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, &models.CreateAlbumRequest{Name: "Trips"})
	require.NoError(t, err)

	t.Run("partial patch keeps untouched fields", func(t *testing.T) {
		desc := "road trips"
		updated, err := svc.UpdateAlbum(ctx, album.ID, &models.UpdateAlbumRequest{Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, "Trips", updated.Name)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "road trips", *updated.Description)
	})

	t.Run("rejects invalid new name", func(t *testing.T) {
		bad := "y"
		_, err := svc.UpdateAlbum(ctx, album.ID, &models.UpdateAlbumRequest{Name: &bad})
		assert.True(t, models.IsValidation(err))
	})

	t.Run("rejects cover photo outside the album", func(t *testing.T) {
		stranger := seedPhoto(t, photoRepo, "stray.jpg")
		_, err := svc.UpdateAlbum(ctx, album.ID, &models.UpdateAlbumRequest{CoverPhotoID: &stranger.ID})
		assert.True(t, models.IsValidation(err))
	})

	t.Run("sets cover photo that is a member", func(t *testing.T) {
		member := seedPhoto(t, photoRepo, "member.jpg")
		changed, err := svc.AddPhoto(ctx, album.ID, member.ID)
		require.NoError(t, err)
		require.True(t, changed)

		updated, err := svc.UpdateAlbum(ctx, album.ID, &models.UpdateAlbumRequest{CoverPhotoID: &member.ID})
		require.NoError(t, err)
		require.NotNil(t, updated.CoverPhotoID)
		assert.Equal(t, member.ID, *updated.CoverPhotoID)
	})

	t.Run("missing album", func(t *testing.T) {
		name := "Renamed"
		_, err := svc.UpdateAlbum(ctx, "nope", &models.UpdateAlbumRequest{Name: &name})
		assert.True(t, models.IsNotFound(err))
	})
}

func TestAlbumService_DeleteAlbum(t *testing.T) {
	svc, photoRepo := newTestAlbumService(t)
	ctx := context.Background()

	t.Run("deleting a missing album succeeds", func(t *testing.T) {
		assert.NoError(t, svc.DeleteAlbum(ctx, "does-not-exist"))
	})

	t.Run("photos survive album deletion", func(t *testing.T) {
		album, err := svc.CreateAlbum(ctx, &models.CreateAlbumRequest{Name: "Doomed"})
		require.NoError(t, err)
		photo := seedPhoto(t, photoRepo, "survivor.jpg")
		_, err = svc.AddPhoto(ctx, album.ID, photo.ID)
		require.NoError(t, err)

		require.NoError(t, svc.DeleteAlbum(ctx, album.ID))

		gone, err := svc.GetAlbum(ctx, album.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)

		kept, err := photoRepo.GetByID(ctx, photo.ID)
		require.NoError(t, err)
		assert.NotNil(t, kept)
	})

	t.Run("default album is protected", func(t *testing.T) {
		def, err := svc.EnsureDefaultAlbum(ctx, "All Photos")
		require.NoError(t, err)
		err = svc.DeleteAlbum(ctx, def.ID)
		assert.True(t, models.IsProtected(err))
	})
}

func TestAlbumService_PhotoMembership(t *testing.T) {
	svc, photoRepo := newTestAlbumService(t)
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, &models.CreateAlbumRequest{Name: "Membership"})
	require.NoError(t, err)
	photo := seedPhoto(t, photoRepo, "pic.jpg")

	t.Run("add is idempotent", func(t *testing.T) {
		changed, err := svc.AddPhoto(ctx, album.ID, photo.ID)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = svc.AddPhoto(ctx, album.ID, photo.ID)
		require.NoError(t, err)
		assert.False(t, changed)

		got, err := svc.GetAlbum(ctx, album.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.PhotoCount)
	})

	t.Run("add to missing album", func(t *testing.T) {
		_, err := svc.AddPhoto(ctx, "ghost", photo.ID)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("add missing photo", func(t *testing.T) {
		_, err := svc.AddPhoto(ctx, album.ID, "ghost")
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		changed, err := svc.RemovePhoto(ctx, album.ID, photo.ID)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = svc.RemovePhoto(ctx, album.ID, photo.ID)
		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestAlbumService_MovePhoto(t *testing.T) {
	svc, photoRepo := newTestAlbumService(t)
	ctx := context.Background()

	from, err := svc.CreateAlbum(ctx, &models.CreateAlbumRequest{Name: "Source"})
	require.NoError(t, err)
	to, err := svc.CreateAlbum(ctx, &models.CreateAlbumRequest{Name: "Destination"})
	require.NoError(t, err)
	photo := seedPhoto(t, photoRepo, "mover.jpg")
	_, err = svc.AddPhoto(ctx, from.ID, photo.ID)
	require.NoError(t, err)

	t.Run("rejects same-album move", func(t *testing.T) {
		_, _, err := svc.MovePhoto(ctx, models.PhotoMoveOperation{
			PhotoID: photo.ID, FromAlbumID: from.ID, ToAlbumID: from.ID,
		})
		assert.True(t, models.IsValidation(err))
	})

	t.Run("rejects incomplete operation", func(t *testing.T) {
		_, _, err := svc.MovePhoto(ctx, models.PhotoMoveOperation{PhotoID: photo.ID, FromAlbumID: from.ID})
		assert.True(t, models.IsValidation(err))
	})

	t.Run("moves between albums", func(t *testing.T) {
		removed, added, err := svc.MovePhoto(ctx, models.PhotoMoveOperation{
			PhotoID: photo.ID, FromAlbumID: from.ID, ToAlbumID: to.ID,
		})
		require.NoError(t, err)
		assert.True(t, removed)
		assert.True(t, added)

		src, err := svc.GetAlbum(ctx, from.ID)
		require.NoError(t, err)
		assert.Zero(t, src.PhotoCount)

		dst, err := svc.GetAlbum(ctx, to.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, dst.PhotoCount)
	})

	t.Run("repeat move changes nothing", func(t *testing.T) {
		removed, added, err := svc.MovePhoto(ctx, models.PhotoMoveOperation{
			PhotoID: photo.ID, FromAlbumID: from.ID, ToAlbumID: to.ID,
		})
		require.NoError(t, err)
		assert.False(t, removed)
		assert.False(t, added)

		dst, err := svc.GetAlbum(ctx, to.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, dst.PhotoCount)
	})

	t.Run("missing destination album", func(t *testing.T) {
		_, _, err := svc.MovePhoto(ctx, models.PhotoMoveOperation{
			PhotoID: photo.ID, FromAlbumID: to.ID, ToAlbumID: "ghost",
		})
		assert.True(t, models.IsNotFound(err))
	})
}

func TestAlbumService_EnsureDefaultAlbum(t *testing.T) {
	svc, _ := newTestAlbumService(t)
	ctx := context.Background()

	first, err := svc.EnsureDefaultAlbum(ctx, "All Photos")
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := svc.EnsureDefaultAlbum(ctx, "All Photos")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
