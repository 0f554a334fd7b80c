package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/photogallery/server/internal/models"
)

// AlbumPhotoRepository implements AlbumPhotoRepo for PostgreSQL/SQLite
type AlbumPhotoRepository struct {
	db *sql.DB
}

// NewAlbumPhotoRepository creates a new AlbumPhotoRepository
func NewAlbumPhotoRepository(db *sql.DB) *AlbumPhotoRepository {
	return &AlbumPhotoRepository{db: db}
}

func (r *AlbumPhotoRepository) GetAll(ctx context.Context) ([]*models.AlbumPhoto, error) {
	query := `SELECT id, album_id, photo_id, added_at FROM album_photos ORDER BY added_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assocs []*models.AlbumPhoto
	for rows.Next() {
		var ap models.AlbumPhoto
		if err := rows.Scan(&ap.ID, &ap.AlbumID, &ap.PhotoID, &ap.AddedAt); err != nil {
			return nil, err
		}
		assocs = append(assocs, &ap)
	}
	return assocs, rows.Err()
}

func (r *AlbumPhotoRepository) GetByAlbumID(ctx context.Context, albumID string) ([]*models.AlbumPhoto, error) {
	query := `SELECT id, album_id, photo_id, added_at
			  FROM album_photos WHERE album_id = $1 ORDER BY position ASC, added_at ASC`

	rows, err := r.db.QueryContext(ctx, query, albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assocs []*models.AlbumPhoto
	for rows.Next() {
		var ap models.AlbumPhoto
		if err := rows.Scan(&ap.ID, &ap.AlbumID, &ap.PhotoID, &ap.AddedAt); err != nil {
			return nil, err
		}
		assocs = append(assocs, &ap)
	}
	return assocs, rows.Err()
}

// GetAlbumsForPhoto returns all album IDs that contain this photo
func (r *AlbumPhotoRepository) GetAlbumsForPhoto(ctx context.Context, photoID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT album_id FROM album_photos WHERE photo_id = $1`, photoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var albumIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		albumIDs = append(albumIDs, id)
	}
	return albumIDs, rows.Err()
}

func (r *AlbumPhotoRepository) GetPhotoCountForAlbum(ctx context.Context, albumID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM album_photos WHERE album_id = $1`, albumID).Scan(&count)
	return count, err
}

// Add inserts the association and reports whether a new record was created.
// A duplicate (album, photo) pair is a no-op returning false, which lets the
// caller skip its count increment on repeat adds.
func (r *AlbumPhotoRepository) Add(ctx context.Context, ap *models.AlbumPhoto) (bool, error) {
	query := `INSERT INTO album_photos (id, album_id, photo_id, position, added_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (album_id, photo_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, ap.ID, ap.AlbumID, ap.PhotoID, 0, ap.AddedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Remove deletes the association and reports whether a record existed.
func (r *AlbumPhotoRepository) Remove(ctx context.Context, albumID, photoID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM album_photos WHERE album_id = $1 AND photo_id = $2`, albumID, photoID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveAllForPhoto cascades away every association referencing the photo.
func (r *AlbumPhotoRepository) RemoveAllForPhoto(ctx context.Context, photoID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM album_photos WHERE photo_id = $1`, photoID)
	return err
}

func (r *AlbumPhotoRepository) IsPhotoInAlbum(ctx context.Context, albumID, photoID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM album_photos WHERE album_id = $1 AND photo_id = $2)`
	err := r.db.QueryRowContext(ctx, query, albumID, photoID).Scan(&exists)
	return exists, err
}

// MovePhoto removes the source association and creates the destination one in
// a single transaction, so a failure between the two steps cannot leave the
// photo in neither album. Either side can be a no-op: the photo may not be
// in the source album, or may already be in the destination. The returned
// flags report which sides actually changed so callers can patch their
// cached counts only for rows that exist.
func (r *AlbumPhotoRepository) MovePhoto(ctx context.Context, op models.PhotoMoveOperation) (removed, added bool, err error) {
	if err := op.Validate(); err != nil {
		return false, false, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM album_photos WHERE album_id = $1 AND photo_id = $2`,
		op.FromAlbumID, op.PhotoID)
	if err != nil {
		return false, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, false, err
	}
	removed = n > 0

	res, err = tx.ExecContext(ctx,
		`INSERT INTO album_photos (id, album_id, photo_id, position, added_at)
		 VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		 ON CONFLICT (album_id, photo_id) DO NOTHING`,
		uuid.New().String(), op.ToAlbumID, op.PhotoID, op.Position)
	if err != nil {
		return false, false, err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return false, false, err
	}
	added = n > 0

	if err := tx.Commit(); err != nil {
		return false, false, err
	}
	return removed, added, nil
}
