package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/photogallery/server/internal/models"
)

// AlbumRepository implements AlbumRepo for PostgreSQL/SQLite
type AlbumRepository struct {
	db *sql.DB
}

// NewAlbumRepository creates a new AlbumRepository
func NewAlbumRepository(db *sql.DB) *AlbumRepository {
	return &AlbumRepository{db: db}
}

const albumColumns = `a.id, a.name, a.description, a.cover_photo_id, a.is_default,
			  a.tags, a.created_at, a.updated_at,
			  (SELECT COUNT(*) FROM album_photos WHERE album_id = a.id) AS photo_count`

func scanAlbum(row interface{ Scan(...interface{}) error }) (*models.Album, error) {
	var a models.Album
	var tags string
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &a.CoverPhotoID, &a.IsDefault,
		&tags, &a.CreatedAt, &a.UpdatedAt, &a.PhotoCount); err != nil {
		return nil, err
	}
	a.Tags = decodeTags(tags)
	return &a, nil
}

func decodeTags(raw string) []string {
	tags := []string{}
	if raw != "" {
		// Stored as a JSON array; a malformed value degrades to no tags.
		json.Unmarshal([]byte(raw), &tags)
	}
	return tags
}

func encodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

func (r *AlbumRepository) GetAll(ctx context.Context) ([]*models.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums a ORDER BY a.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var albums []*models.Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}
	return albums, rows.Err()
}

func (r *AlbumRepository) GetByID(ctx context.Context, id string) (*models.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums a WHERE a.id = $1`

	a, err := scanAlbum(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetWithPhotos joins the album with the IDs of its member photos, ordered by
// association position.
func (r *AlbumRepository) GetWithPhotos(ctx context.Context, id string) (*models.AlbumWithPhotos, error) {
	album, err := r.GetByID(ctx, id)
	if err != nil || album == nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT photo_id FROM album_photos WHERE album_id = $1 ORDER BY position ASC, added_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := []string{}
	for rows.Next() {
		var photoID string
		if err := rows.Scan(&photoID); err != nil {
			return nil, err
		}
		photos = append(photos, photoID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.AlbumWithPhotos{Album: *album, Photos: photos}, nil
}

func (r *AlbumRepository) GetDefault(ctx context.Context) (*models.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums a WHERE a.is_default`

	a, err := scanAlbum(r.db.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AlbumRepository) Add(ctx context.Context, album *models.Album) error {
	query := `INSERT INTO albums (id, name, description, cover_photo_id, is_default, tags, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		album.ID, album.Name, album.Description, album.CoverPhotoID, album.IsDefault,
		encodeTags(album.Tags), album.CreatedAt, album.UpdatedAt,
	)
	return err
}

func (r *AlbumRepository) Update(ctx context.Context, album *models.Album) error {
	query := `UPDATE albums SET name = $2, description = $3, cover_photo_id = $4, tags = $5, updated_at = $6
			  WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		album.ID, album.Name, album.Description, album.CoverPhotoID,
		encodeTags(album.Tags), album.UpdatedAt,
	)
	return err
}

// Delete removes the album and all of its association records in one
// transaction, so the cascade cannot partially apply.
func (r *AlbumRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM album_photos WHERE album_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM albums WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit()
}
