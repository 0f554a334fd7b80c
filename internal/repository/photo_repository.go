package repository

import (
	"context"
	"database/sql"

	"github.com/photogallery/server/internal/models"
)

// PhotoRepository implements PhotoRepo for PostgreSQL/SQLite
type PhotoRepository struct {
	db *sql.DB
}

// NewPhotoRepository creates a new PhotoRepository
func NewPhotoRepository(db *sql.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

const photoColumns = `id, name, stored_path, file_hash, file_size, mime_type, width, height, tags, date_taken, uploaded_at`

func scanPhoto(row interface{ Scan(...interface{}) error }) (*models.Photo, error) {
	var p models.Photo
	var tags string
	var dateTaken sql.NullTime
	if err := row.Scan(&p.ID, &p.Name, &p.StoredPath, &p.FileHash, &p.Size, &p.MimeType,
		&p.Width, &p.Height, &tags, &dateTaken, &p.UploadedAt); err != nil {
		return nil, err
	}
	p.Tags = decodeTags(tags)
	p.AlbumIDs = []string{}
	if dateTaken.Valid {
		p.DateTaken = dateTaken.Time
	}
	return &p, nil
}

func (r *PhotoRepository) GetAll(ctx context.Context) ([]*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos ORDER BY uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`

	p, err := scanPhoto(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByHash finds a photo by content hash, used for upload deduplication.
func (r *PhotoRepository) GetByHash(ctx context.Context, hash string) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE file_hash = $1`

	p, err := scanPhoto(r.db.QueryRowContext(ctx, query, hash))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PhotoRepository) Add(ctx context.Context, photo *models.Photo) error {
	query := `INSERT INTO photos (id, name, stored_path, file_hash, file_size, mime_type, width, height, tags, date_taken, uploaded_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var dateTaken sql.NullTime
	if !photo.DateTaken.IsZero() {
		dateTaken = sql.NullTime{Time: photo.DateTaken, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		photo.ID, photo.Name, photo.StoredPath, photo.FileHash, photo.Size, photo.MimeType,
		photo.Width, photo.Height, encodeTags(photo.Tags), dateTaken, photo.UploadedAt,
	)
	return err
}

// Delete removes the photo row and every association referencing it in one
// transaction. Returns false when no such photo existed.
func (r *PhotoRepository) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM album_photos WHERE photo_id = $1`, id); err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}
