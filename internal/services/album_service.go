package services

import (
	"context"
	"time"

	"github.com/photogallery/server/internal/models"
	"github.com/photogallery/server/internal/observability"
	"github.com/photogallery/server/internal/repository"
)

// AlbumService handles album business logic
type AlbumService struct {
	albumRepo      repository.AlbumRepo
	albumPhotoRepo repository.AlbumPhotoRepo
	photoRepo      repository.PhotoRepo
}

// NewAlbumService creates a new AlbumService
func NewAlbumService(
	albumRepo repository.AlbumRepo,
	albumPhotoRepo repository.AlbumPhotoRepo,
	photoRepo repository.PhotoRepo,
) *AlbumService {
	return &AlbumService{
		albumRepo:      albumRepo,
		albumPhotoRepo: albumPhotoRepo,
		photoRepo:      photoRepo,
	}
}

// ListAlbums returns all albums, most recently created first.
func (s *AlbumService) ListAlbums(ctx context.Context) ([]*models.Album, error) {
	albums, err := s.albumRepo.GetAll(ctx)
	if err != nil {
		return nil, models.PersistenceError{Op: "list albums", Err: err}
	}
	return albums, nil
}

// GetAlbum returns the album, or nil when it does not exist.
func (s *AlbumService) GetAlbum(ctx context.Context, id string) (*models.Album, error) {
	album, err := s.albumRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.PersistenceError{Op: "get album", Err: err}
	}
	return album, nil
}

// GetAlbumWithPhotos returns the album joined with its photo IDs, or nil when
// it does not exist. Absence is a nil result, not an error.
func (s *AlbumService) GetAlbumWithPhotos(ctx context.Context, id string) (*models.AlbumWithPhotos, error) {
	album, err := s.albumRepo.GetWithPhotos(ctx, id)
	if err != nil {
		return nil, models.PersistenceError{Op: "get album with photos", Err: err}
	}
	return album, nil
}

// CreateAlbum validates the request and persists a new album.
func (s *AlbumService) CreateAlbum(ctx context.Context, req *models.CreateAlbumRequest) (*models.Album, error) {
	album, err := models.NewAlbum(req.Name)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		album.Description = req.Description
	}
	if req.CoverPhotoID != nil {
		album.CoverPhotoID = req.CoverPhotoID
	}
	if len(req.Tags) > 0 {
		album.Tags = req.Tags
	}

	if err := s.albumRepo.Add(ctx, album); err != nil {
		return nil, models.PersistenceError{Op: "create album", Err: err}
	}

	observability.WithContext(ctx).WithField("album_id", album.ID).Info("album created")
	return album, nil
}

// UpdateAlbum applies a partial patch and persists it. Nil request fields
// leave the existing values untouched.
func (s *AlbumService) UpdateAlbum(ctx context.Context, id string, req *models.UpdateAlbumRequest) (*models.Album, error) {
	album, err := s.albumRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.PersistenceError{Op: "get album", Err: err}
	}
	if album == nil {
		return nil, models.NotFoundError{Resource: "album", ID: id}
	}

	if req.Name != nil {
		trimmed, err := models.ValidateAlbumName(*req.Name)
		if err != nil {
			return nil, err
		}
		album.Name = trimmed
	}
	if req.Description != nil {
		album.Description = req.Description
	}
	if req.CoverPhotoID != nil {
		if *req.CoverPhotoID != "" {
			inAlbum, err := s.albumPhotoRepo.IsPhotoInAlbum(ctx, id, *req.CoverPhotoID)
			if err != nil {
				return nil, models.PersistenceError{Op: "verify cover photo", Err: err}
			}
			if !inAlbum {
				return nil, models.ValidationError{Message: "cover photo must be in the album"}
			}
		}
		album.CoverPhotoID = req.CoverPhotoID
	}
	if req.Tags != nil {
		album.Tags = *req.Tags
	}

	album.UpdatedAt = time.Now().UTC()

	if err := s.albumRepo.Update(ctx, album); err != nil {
		return nil, models.PersistenceError{Op: "update album", Err: err}
	}

	return album, nil
}

// DeleteAlbum removes the album and its associations. The default album is
// protected; deleting an album that is already gone is a no-op.
func (s *AlbumService) DeleteAlbum(ctx context.Context, id string) error {
	album, err := s.albumRepo.GetByID(ctx, id)
	if err != nil {
		return models.PersistenceError{Op: "get album", Err: err}
	}
	if album == nil {
		// Already in the desired end state.
		return nil
	}
	if album.IsDefault {
		return models.ErrDefaultAlbum
	}

	if err := s.albumRepo.Delete(ctx, id); err != nil {
		return models.PersistenceError{Op: "delete album", Err: err}
	}

	observability.WithContext(ctx).WithField("album_id", id).Info("album deleted")
	return nil
}

// AddPhoto creates the association and reports whether it was newly added.
// Adding a photo that is already in the album is a no-op returning false.
func (s *AlbumService) AddPhoto(ctx context.Context, albumID, photoID string) (bool, error) {
	album, err := s.albumRepo.GetByID(ctx, albumID)
	if err != nil {
		return false, models.PersistenceError{Op: "get album", Err: err}
	}
	if album == nil {
		return false, models.NotFoundError{Resource: "album", ID: albumID}
	}

	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		return false, models.PersistenceError{Op: "get photo", Err: err}
	}
	if photo == nil {
		return false, models.NotFoundError{Resource: "photo", ID: photoID}
	}

	added, err := s.albumPhotoRepo.Add(ctx, models.NewAlbumPhoto(albumID, photoID))
	if err != nil {
		return false, models.PersistenceError{Op: "add photo to album", Err: err}
	}

	if added {
		s.touch(ctx, album)
	}
	return added, nil
}

// RemovePhoto deletes the association and reports whether one existed.
func (s *AlbumService) RemovePhoto(ctx context.Context, albumID, photoID string) (bool, error) {
	album, err := s.albumRepo.GetByID(ctx, albumID)
	if err != nil {
		return false, models.PersistenceError{Op: "get album", Err: err}
	}
	if album == nil {
		return false, models.NotFoundError{Resource: "album", ID: albumID}
	}

	removed, err := s.albumPhotoRepo.Remove(ctx, albumID, photoID)
	if err != nil {
		return false, models.PersistenceError{Op: "remove photo from album", Err: err}
	}

	if removed {
		s.touch(ctx, album)
	}
	return removed, nil
}

// MovePhoto transfers a photo between two albums as one transactional unit.
// The returned flags report which sides actually changed: the source delete
// affects no rows when the photo was not in that album, and the destination
// insert is a no-op when the photo is already there.
func (s *AlbumService) MovePhoto(ctx context.Context, op models.PhotoMoveOperation) (removed, added bool, err error) {
	if err := op.Validate(); err != nil {
		return false, false, err
	}

	for _, id := range []string{op.FromAlbumID, op.ToAlbumID} {
		album, err := s.albumRepo.GetByID(ctx, id)
		if err != nil {
			return false, false, models.PersistenceError{Op: "get album", Err: err}
		}
		if album == nil {
			return false, false, models.NotFoundError{Resource: "album", ID: id}
		}
	}

	removed, added, err = s.albumPhotoRepo.MovePhoto(ctx, op)
	if err != nil {
		return false, false, models.PersistenceError{Op: "move photo", Err: err}
	}

	observability.WithContext(ctx).WithFields(map[string]interface{}{
		"photo_id": op.PhotoID,
		"from":     op.FromAlbumID,
		"to":       op.ToAlbumID,
	}).Info("photo moved between albums")
	return removed, added, nil
}

// GetDefaultAlbum returns the protected default album, or nil when none has
// been created yet.
func (s *AlbumService) GetDefaultAlbum(ctx context.Context) (*models.Album, error) {
	album, err := s.albumRepo.GetDefault(ctx)
	if err != nil {
		return nil, models.PersistenceError{Op: "get default album", Err: err}
	}
	return album, nil
}

// EnsureDefaultAlbum creates the protected default album if none exists yet.
func (s *AlbumService) EnsureDefaultAlbum(ctx context.Context, name string) (*models.Album, error) {
	existing, err := s.albumRepo.GetDefault(ctx)
	if err != nil {
		return nil, models.PersistenceError{Op: "get default album", Err: err}
	}
	if existing != nil {
		return existing, nil
	}

	album, err := models.NewAlbum(name)
	if err != nil {
		return nil, err
	}
	album.IsDefault = true

	if err := s.albumRepo.Add(ctx, album); err != nil {
		return nil, models.PersistenceError{Op: "create default album", Err: err}
	}
	return album, nil
}

// touch bumps the album's updated timestamp after a membership change. A
// failure here is logged and dropped; the association is already durable.
func (s *AlbumService) touch(ctx context.Context, album *models.Album) {
	album.UpdatedAt = time.Now().UTC()
	if err := s.albumRepo.Update(ctx, album); err != nil {
		observability.WithContext(ctx).WithField("album_id", album.ID).Warnf("failed to touch album: %v", err)
	}
}
