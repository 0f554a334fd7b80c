package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photogallery/server/internal/models"
)

func albumFixture(id, name string, count int) *models.Album {
	return &models.Album{ID: id, Name: name, PhotoCount: count}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	original := albumFixture("a1", "Untouched", 3)
	state := AlbumState{Albums: []*models.Album{original}}

	next := reduce(state, action{kind: actionPhotoAdded, albumID: "a1", photoID: "p1"})

	assert.Equal(t, 3, original.PhotoCount)
	assert.Equal(t, 4, next.Albums[0].PhotoCount)
}

func TestReduce_PhotoMovedIsOneStep(t *testing.T) {
	state := AlbumState{
		Albums: []*models.Album{
			albumFixture("src", "Source", 2),
			albumFixture("dst", "Destination", 0),
		},
		CurrentAlbum: &models.AlbumWithPhotos{
			Album:  models.Album{ID: "src", Name: "Source", PhotoCount: 2},
			Photos: []string{"p1", "p2"},
		},
	}

	next := reduce(state, action{
		kind:        actionPhotoMoved,
		move:        models.PhotoMoveOperation{PhotoID: "p1", FromAlbumID: "src", ToAlbumID: "dst"},
		moveRemoved: true,
		moveAdded:   true,
	})

	assert.Equal(t, 1, next.Albums[0].PhotoCount)
	assert.Equal(t, 1, next.Albums[1].PhotoCount)
	require.NotNil(t, next.CurrentAlbum)
	assert.Equal(t, []string{"p2"}, next.CurrentAlbum.Photos)
}

func TestReduce_PhotoMovedPatchesOnlyChangedSides(t *testing.T) {
	state := AlbumState{
		Albums: []*models.Album{
			albumFixture("src", "Source", 1),
			albumFixture("dst", "Destination", 1),
		},
	}

	t.Run("destination already holds the photo", func(t *testing.T) {
		next := reduce(state, action{
			kind:        actionPhotoMoved,
			move:        models.PhotoMoveOperation{PhotoID: "p1", FromAlbumID: "src", ToAlbumID: "dst"},
			moveRemoved: true,
			moveAdded:   false,
		})
		assert.Zero(t, next.Albums[0].PhotoCount)
		assert.Equal(t, 1, next.Albums[1].PhotoCount)
	})

	t.Run("photo was never in the source", func(t *testing.T) {
		next := reduce(state, action{
			kind:      actionPhotoMoved,
			move:      models.PhotoMoveOperation{PhotoID: "p1", FromAlbumID: "src", ToAlbumID: "dst"},
			moveAdded: true,
		})
		assert.Equal(t, 1, next.Albums[0].PhotoCount)
		assert.Equal(t, 2, next.Albums[1].PhotoCount)
	})
}

func TestReduce_CountNeverGoesNegative(t *testing.T) {
	state := AlbumState{Albums: []*models.Album{albumFixture("a1", "Empty", 0)}}
	next := reduce(state, action{kind: actionPhotoRemoved, albumID: "a1", photoID: "p1"})
	assert.Zero(t, next.Albums[0].PhotoCount)
}

func TestReduce_LoadFinishedReconcilesCurrent(t *testing.T) {
	state := AlbumState{
		IsLoading: true,
		CurrentAlbum: &models.AlbumWithPhotos{
			Album:  models.Album{ID: "keep", Name: "Stale", PhotoCount: 1},
			Photos: []string{"p1"},
		},
	}

	t.Run("refresh re-points current at its new entry", func(t *testing.T) {
		next := reduce(state, action{kind: actionLoadFinished, albums: []*models.Album{
			albumFixture("keep", "Fresh", 5),
		}})
		assert.False(t, next.IsLoading)
		require.NotNil(t, next.CurrentAlbum)
		assert.Equal(t, "Fresh", next.CurrentAlbum.Name)
		assert.Equal(t, []string{"p1"}, next.CurrentAlbum.Photos)
	})

	t.Run("refresh drops a vanished current album", func(t *testing.T) {
		next := reduce(state, action{kind: actionLoadFinished, albums: nil})
		assert.Nil(t, next.CurrentAlbum)
	})

	t.Run("failed refresh keeps the old list", func(t *testing.T) {
		withList := reduce(state, action{kind: actionLoadFinished, albums: []*models.Album{
			albumFixture("keep", "Fresh", 5),
		}})
		next := reduce(withList, action{kind: actionLoadFinished, err: assert.AnError})
		assert.Len(t, next.Albums, 1)
	})
}

func TestReduce_DeleteFinished(t *testing.T) {
	state := AlbumState{
		IsDeleting: true,
		Albums:     []*models.Album{albumFixture("a1", "One", 0), albumFixture("a2", "Two", 0)},
		CurrentAlbum: &models.AlbumWithPhotos{
			Album: models.Album{ID: "a1", Name: "One"},
		},
	}

	next := reduce(state, action{kind: actionDeleteFinished, albumID: "a1"})
	assert.False(t, next.IsDeleting)
	require.Len(t, next.Albums, 1)
	assert.Equal(t, "a2", next.Albums[0].ID)
	assert.Nil(t, next.CurrentAlbum)
}
