package services

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/photogallery/server/internal/models"
	"github.com/photogallery/server/internal/observability"
	"github.com/photogallery/server/internal/repository"
)

// PhotoService composes the photo catalog, the byte store, and metadata
// extraction into the upload/list/delete operations the stores consume.
type PhotoService struct {
	photoRepo      repository.PhotoRepo
	albumPhotoRepo repository.AlbumPhotoRepo
	storage        *PhotoStorageService
	hash           *HashService
	exif           *EXIFService
}

// NewPhotoService creates a new PhotoService
func NewPhotoService(
	photoRepo repository.PhotoRepo,
	albumPhotoRepo repository.AlbumPhotoRepo,
	storage *PhotoStorageService,
	hash *HashService,
	exif *EXIFService,
) *PhotoService {
	return &PhotoService{
		photoRepo:      photoRepo,
		albumPhotoRepo: albumPhotoRepo,
		storage:        storage,
		hash:           hash,
		exif:           exif,
	}
}

// ContentURLPrefix is where photo bytes are served from.
const ContentURLPrefix = "/api/photos/"

func contentURL(photoID string) string {
	return ContentURLPrefix + photoID + "/content"
}

// ListPhotos returns every stored photo, newest first, without membership.
func (s *PhotoService) ListPhotos(ctx context.Context) ([]*models.Photo, error) {
	photos, err := s.photoRepo.GetAll(ctx)
	if err != nil {
		return nil, models.PersistenceError{Op: "list photos", Err: err}
	}
	for _, p := range photos {
		p.URL = contentURL(p.ID)
	}
	return photos, nil
}

// ListAssociations returns every album-photo association record.
func (s *PhotoService) ListAssociations(ctx context.Context) ([]*models.AlbumPhoto, error) {
	assocs, err := s.albumPhotoRepo.GetAll(ctx)
	if err != nil {
		return nil, models.PersistenceError{Op: "list associations", Err: err}
	}
	return assocs, nil
}

// GetPhoto returns the photo, or nil when it does not exist.
func (s *PhotoService) GetPhoto(ctx context.Context, id string) (*models.Photo, error) {
	photo, err := s.photoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.PersistenceError{Op: "get photo", Err: err}
	}
	if photo != nil {
		photo.URL = contentURL(photo.ID)
	}
	return photo, nil
}

// Upload stores the bytes and catalogs the photo. Content identical to an
// already-stored photo is deduplicated: the existing photo is returned and
// marked as a duplicate instead of storing a second copy.
func (s *PhotoService) Upload(ctx context.Context, filename, mimeType string, data []byte) (*models.Photo, bool, error) {
	if len(data) == 0 {
		return nil, false, models.ErrInvalidFileSize
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	fileHash := s.hash.ComputeHashBytes(data)
	existing, err := s.photoRepo.GetByHash(ctx, fileHash)
	if err != nil {
		return nil, false, models.PersistenceError{Op: "check duplicate", Err: err}
	}
	if existing != nil {
		existing.URL = contentURL(existing.ID)
		return existing, true, nil
	}

	meta := s.exif.ExtractFromBytes(data)
	takenAt := time.Now().UTC()
	if meta.DateTaken != nil {
		takenAt = *meta.DateTaken
	}

	storedPath, err := s.storage.Store(bytes.NewReader(data), filename, takenAt, int64(len(data)))
	if err != nil {
		return nil, false, err
	}

	photo, err := models.NewPhoto(filename, storedPath, mimeType, int64(len(data)))
	if err != nil {
		s.storage.Delete(storedPath)
		return nil, false, err
	}
	photo.FileHash = fileHash
	if meta.DateTaken != nil {
		photo.DateTaken = *meta.DateTaken
	}
	if meta.Width != nil {
		photo.Width = *meta.Width
	}
	if meta.Height != nil {
		photo.Height = *meta.Height
	}

	if err := s.photoRepo.Add(ctx, photo); err != nil {
		s.storage.Delete(storedPath)
		return nil, false, models.PersistenceError{Op: "catalog photo", Err: err}
	}

	photo.URL = contentURL(photo.ID)
	observability.WithContext(ctx).WithFields(map[string]interface{}{
		"photo_id": photo.ID,
		"size":     photo.Size,
	}).Info("photo uploaded")
	return photo, false, nil
}

// Delete removes the catalog row and every association in one transaction,
// then the stored bytes. A photo that is already gone is a no-op.
func (s *PhotoService) Delete(ctx context.Context, id string) error {
	photo, err := s.photoRepo.GetByID(ctx, id)
	if err != nil {
		return models.PersistenceError{Op: "get photo", Err: err}
	}
	if photo == nil {
		// Already in the desired end state.
		return nil
	}

	deleted, err := s.photoRepo.Delete(ctx, id)
	if err != nil {
		return models.PersistenceError{Op: "delete photo", Err: err}
	}

	if deleted {
		// The catalog row and associations are gone; a failure removing the
		// bytes leaves an orphaned file, never an orphaned association.
		if err := s.storage.Delete(photo.StoredPath); err != nil {
			observability.WithContext(ctx).WithField("photo_id", id).Warnf("failed to remove stored bytes: %v", err)
		}
	}

	observability.WithContext(ctx).WithField("photo_id", id).Info("photo deleted")
	return nil
}

// Open streams the stored bytes for a photo.
func (s *PhotoService) Open(ctx context.Context, id string) (io.ReadCloser, *models.Photo, error) {
	photo, err := s.photoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, models.PersistenceError{Op: "get photo", Err: err}
	}
	if photo == nil {
		return nil, nil, models.NotFoundError{Resource: "photo", ID: id}
	}

	rc, err := s.storage.Open(photo.StoredPath)
	if err != nil {
		return nil, nil, models.PersistenceError{Op: "open photo", Err: err}
	}
	return rc, photo, nil
}
