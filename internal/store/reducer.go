package store

import (
	"github.com/photogallery/server/internal/models"
)

// reduce is the only place AlbumState transitions happen. It is pure: it
// never mutates its inputs and always returns a fresh state value.
func reduce(state AlbumState, a action) AlbumState {
	switch a.kind {
	case actionLoadStarted:
		state.IsLoading = true

	case actionLoadFinished:
		state.IsLoading = false
		if a.err == nil {
			state.Albums = a.albums
			state.CurrentAlbum = reconcileCurrent(state.CurrentAlbum, a.albums)
		}

	case actionAlbumLoaded:
		state.CurrentAlbum = a.withPhotos

	case actionCreateStarted:
		state.IsCreating = true

	case actionCreateFinished:
		state.IsCreating = false
		if a.err == nil && a.album != nil {
			albums := make([]*models.Album, 0, len(state.Albums)+1)
			albums = append(albums, a.album)
			albums = append(albums, state.Albums...)
			state.Albums = albums
		}

	case actionUpdateStarted:
		state.IsUpdating = true

	case actionUpdateFinished:
		state.IsUpdating = false
		if a.err == nil && a.album != nil {
			state.Albums = replaceAlbum(state.Albums, a.album)
			if state.CurrentAlbum != nil && state.CurrentAlbum.ID == a.album.ID {
				cur := *state.CurrentAlbum
				cur.Album = *a.album
				state.CurrentAlbum = &cur
			}
		}

	case actionDeleteStarted:
		state.IsDeleting = true

	case actionDeleteFinished:
		state.IsDeleting = false
		if a.err == nil {
			state.Albums = removeAlbum(state.Albums, a.albumID)
			if state.CurrentAlbum != nil && state.CurrentAlbum.ID == a.albumID {
				state.CurrentAlbum = nil
			}
		}

	case actionPhotoAdded:
		state.Albums = adjustCount(state.Albums, a.albumID, 1)
		if state.CurrentAlbum != nil && state.CurrentAlbum.ID == a.albumID {
			state.CurrentAlbum = withPhoto(state.CurrentAlbum, a.photoID)
		}

	case actionPhotoRemoved:
		state.Albums = adjustCount(state.Albums, a.albumID, -1)
		if state.CurrentAlbum != nil && state.CurrentAlbum.ID == a.albumID {
			state.CurrentAlbum = withoutPhoto(state.CurrentAlbum, a.photoID)
		}

	case actionPhotoMoved:
		// Both sides change in one step so no observer sees the photo in
		// neither or both albums. Each side is patched only when the
		// backend actually changed it, keeping cached counts aligned with
		// the live association rows.
		if a.moveRemoved {
			state.Albums = adjustCount(state.Albums, a.move.FromAlbumID, -1)
		}
		if a.moveAdded {
			state.Albums = adjustCount(state.Albums, a.move.ToAlbumID, 1)
		}
		if state.CurrentAlbum != nil {
			switch state.CurrentAlbum.ID {
			case a.move.FromAlbumID:
				if a.moveRemoved {
					state.CurrentAlbum = withoutPhoto(state.CurrentAlbum, a.move.PhotoID)
				}
			case a.move.ToAlbumID:
				if a.moveAdded {
					state.CurrentAlbum = withPhoto(state.CurrentAlbum, a.move.PhotoID)
				}
			}
		}

	case actionErrorSet:
		state.Err = a.err

	case actionErrorCleared:
		state.Err = nil
	}

	return state
}

// reconcileCurrent re-points the current album at its refreshed entry, or
// drops it when the refresh no longer contains it.
func reconcileCurrent(current *models.AlbumWithPhotos, albums []*models.Album) *models.AlbumWithPhotos {
	if current == nil {
		return nil
	}
	for _, al := range albums {
		if al.ID == current.ID {
			cur := *current
			cur.Album = *al
			return &cur
		}
	}
	return nil
}

func replaceAlbum(albums []*models.Album, album *models.Album) []*models.Album {
	out := make([]*models.Album, len(albums))
	copy(out, albums)
	for i, al := range out {
		if al.ID == album.ID {
			out[i] = album
		}
	}
	return out
}

func removeAlbum(albums []*models.Album, id string) []*models.Album {
	out := make([]*models.Album, 0, len(albums))
	for _, al := range albums {
		if al.ID != id {
			out = append(out, al)
		}
	}
	return out
}

// adjustCount patches one album's photo count, cloning the entry so shared
// snapshots stay untouched. The count never goes below zero.
func adjustCount(albums []*models.Album, id string, delta int) []*models.Album {
	out := make([]*models.Album, len(albums))
	copy(out, albums)
	for i, al := range out {
		if al.ID == id {
			updated := *al
			updated.PhotoCount += delta
			if updated.PhotoCount < 0 {
				updated.PhotoCount = 0
			}
			out[i] = &updated
		}
	}
	return out
}

func withPhoto(album *models.AlbumWithPhotos, photoID string) *models.AlbumWithPhotos {
	for _, id := range album.Photos {
		if id == photoID {
			return album
		}
	}
	cur := *album
	cur.Photos = append(append([]string(nil), album.Photos...), photoID)
	cur.PhotoCount = len(cur.Photos)
	return &cur
}

func withoutPhoto(album *models.AlbumWithPhotos, photoID string) *models.AlbumWithPhotos {
	cur := *album
	cur.Photos = make([]string, 0, len(album.Photos))
	for _, id := range album.Photos {
		if id != photoID {
			cur.Photos = append(cur.Photos, id)
		}
	}
	cur.PhotoCount = len(cur.Photos)
	return &cur
}
