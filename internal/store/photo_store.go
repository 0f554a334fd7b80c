package store

import (
	"context"
	"sync"

	"github.com/photogallery/server/internal/models"
	"github.com/photogallery/server/internal/notify"
	"github.com/photogallery/server/internal/observability"
	"github.com/photogallery/server/internal/services"
)

// PhotoStore caches the flat photo catalog with each photo's album
// membership resolved. Unlike AlbumStore it has no per-operation UI flags,
// so a mutex over the map is enough.
type PhotoStore struct {
	service  *services.PhotoService
	notifier notify.Notifier
	logger   *observability.Logger

	mu     sync.RWMutex
	photos map[string]*models.Photo
	order  []string
	err    error
}

// NewPhotoStore creates an empty store. Call Refresh to populate it.
func NewPhotoStore(service *services.PhotoService, notifier notify.Notifier) *PhotoStore {
	return &PhotoStore{
		service:  service,
		notifier: notifier,
		logger:   observability.GetLogger().WithField("component", "photo_store"),
		photos:   make(map[string]*models.Photo),
	}
}

// Refresh reloads the catalog and joins every association onto its photo, so
// each cached photo carries the full set of albums it belongs to.
func (s *PhotoStore) Refresh(ctx context.Context) ([]*models.Photo, error) {
	photos, err := s.service.ListPhotos(ctx)
	if err != nil {
		s.recordError(err)
		return nil, err
	}
	assocs, err := s.service.ListAssociations(ctx)
	if err != nil {
		s.recordError(err)
		return nil, err
	}

	membership := make(map[string][]string, len(photos))
	for _, ap := range assocs {
		membership[ap.PhotoID] = append(membership[ap.PhotoID], ap.AlbumID)
	}

	s.mu.Lock()
	s.photos = make(map[string]*models.Photo, len(photos))
	s.order = s.order[:0]
	for _, p := range photos {
		p.AlbumIDs = membership[p.ID]
		if p.AlbumIDs == nil {
			// Serialized as [] rather than null for photos in no album.
			p.AlbumIDs = []string{}
		}
		s.photos[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	s.err = nil
	s.mu.Unlock()

	return s.Photos(), nil
}

// Photos returns the cached catalog in load order.
func (s *PhotoStore) Photos() []*models.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Photo, 0, len(s.order))
	for _, id := range s.order {
		if p, ok := s.photos[id]; ok {
			out = append(out, clonePhoto(p))
		}
	}
	return out
}

// Photo returns the cached photo, or nil when it is not cached.
func (s *PhotoStore) Photo(id string) *models.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.photos[id]; ok {
		return clonePhoto(p)
	}
	return nil
}

// PhotosInAlbum filters the cache by album membership.
func (s *PhotoStore) PhotosInAlbum(albumID string) []*models.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Photo
	for _, id := range s.order {
		p, ok := s.photos[id]
		if ok && p.InAlbum(albumID) {
			out = append(out, clonePhoto(p))
		}
	}
	return out
}

// Err returns the last refresh error, if any.
func (s *PhotoStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// AddPhoto upserts an uploaded photo into the cache.
func (s *PhotoStore) AddPhoto(photo *models.Photo) {
	if photo == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.photos[photo.ID]; !ok {
		s.order = append([]string{photo.ID}, s.order...)
	}
	s.photos[photo.ID] = clonePhoto(photo)
}

// AddPhotoToAlbum patches the cached membership after an association is
// created. Adding an album the photo is already in changes nothing.
func (s *PhotoStore) AddPhotoToAlbum(photoID, albumID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.photos[photoID]
	if !ok || p.InAlbum(albumID) {
		return
	}
	p.AlbumIDs = append(p.AlbumIDs, albumID)
}

// RemovePhotoFromAlbum patches the cached membership after an association is
// removed.
func (s *PhotoStore) RemovePhotoFromAlbum(photoID, albumID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.photos[photoID]
	if !ok {
		return
	}
	ids := p.AlbumIDs[:0]
	for _, id := range p.AlbumIDs {
		if id != albumID {
			ids = append(ids, id)
		}
	}
	p.AlbumIDs = ids
}

// MovePhoto applies both sides of a move as one cache patch.
func (s *PhotoStore) MovePhoto(op models.PhotoMoveOperation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.photos[op.PhotoID]
	if !ok {
		return
	}
	ids := p.AlbumIDs[:0]
	for _, id := range p.AlbumIDs {
		if id != op.FromAlbumID {
			ids = append(ids, id)
		}
	}
	p.AlbumIDs = ids
	if !p.InAlbum(op.ToAlbumID) {
		p.AlbumIDs = append(p.AlbumIDs, op.ToAlbumID)
	}
}

// DeletePhoto removes the photo from the backend, its stored bytes, and the
// cache.
func (s *PhotoStore) DeletePhoto(ctx context.Context, id string) error {
	if err := s.service.Delete(ctx, id); err != nil {
		s.recordError(err)
		s.notifier.ShowError(err.Error())
		return err
	}

	s.mu.Lock()
	if _, ok := s.photos[id]; ok {
		delete(s.photos, id)
		order := s.order[:0]
		for _, pid := range s.order {
			if pid != id {
				order = append(order, pid)
			}
		}
		s.order = order
	}
	s.mu.Unlock()

	s.notifier.ShowSuccess("Photo deleted")
	return nil
}

func (s *PhotoStore) recordError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.logger.Errorf("%v", err)
}

func clonePhoto(p *models.Photo) *models.Photo {
	out := *p
	// make, not append: an empty membership stays a non-nil slice so it
	// serializes as [].
	out.AlbumIDs = make([]string, len(p.AlbumIDs))
	copy(out.AlbumIDs, p.AlbumIDs)
	out.Tags = make([]string, len(p.Tags))
	copy(out.Tags, p.Tags)
	return &out
}
