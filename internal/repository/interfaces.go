package repository

import (
	"context"

	"github.com/photogallery/server/internal/models"
)

// AlbumRepo defines the interface for album persistence operations
type AlbumRepo interface {
	GetAll(ctx context.Context) ([]*models.Album, error)
	GetByID(ctx context.Context, id string) (*models.Album, error)
	GetWithPhotos(ctx context.Context, id string) (*models.AlbumWithPhotos, error)
	GetDefault(ctx context.Context) (*models.Album, error)
	Add(ctx context.Context, album *models.Album) error
	Update(ctx context.Context, album *models.Album) error
	Delete(ctx context.Context, id string) error
}

// AlbumPhotoRepo defines the interface for album-photo association records
type AlbumPhotoRepo interface {
	GetAll(ctx context.Context) ([]*models.AlbumPhoto, error)
	GetByAlbumID(ctx context.Context, albumID string) ([]*models.AlbumPhoto, error)
	GetAlbumsForPhoto(ctx context.Context, photoID string) ([]string, error)
	GetPhotoCountForAlbum(ctx context.Context, albumID string) (int, error)
	Add(ctx context.Context, ap *models.AlbumPhoto) (bool, error)
	Remove(ctx context.Context, albumID, photoID string) (bool, error)
	RemoveAllForPhoto(ctx context.Context, photoID string) error
	IsPhotoInAlbum(ctx context.Context, albumID, photoID string) (bool, error)
	MovePhoto(ctx context.Context, op models.PhotoMoveOperation) (removed, added bool, err error)
}

// PhotoRepo defines the interface for photo catalog persistence
type PhotoRepo interface {
	GetAll(ctx context.Context) ([]*models.Photo, error)
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	GetByHash(ctx context.Context, hash string) (*models.Photo, error)
	Add(ctx context.Context, photo *models.Photo) error
	Delete(ctx context.Context, id string) (bool, error)
}
