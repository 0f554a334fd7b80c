package repository

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDB creates and initializes a SQLite database
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
	-- Photos table (flat object catalog; album membership lives in album_photos)
	CREATE TABLE IF NOT EXISTS photos (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		stored_path TEXT NOT NULL,
		file_hash TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		mime_type TEXT NOT NULL,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		tags TEXT NOT NULL DEFAULT '[]',
		date_taken DATETIME,
		uploaded_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_photos_hash ON photos(file_hash);
	CREATE INDEX IF NOT EXISTS idx_photos_uploaded ON photos(uploaded_at);

	-- Albums table
	CREATE TABLE IF NOT EXISTS albums (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		cover_photo_id TEXT,
		is_default INTEGER NOT NULL DEFAULT 0,
		tags TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_albums_updated ON albums(updated_at);

	-- Album-photo associations (at most one per pair)
	CREATE TABLE IF NOT EXISTS album_photos (
		id TEXT PRIMARY KEY,
		album_id TEXT NOT NULL REFERENCES albums(id) ON DELETE CASCADE,
		photo_id TEXT NOT NULL REFERENCES photos(id) ON DELETE CASCADE,
		position INTEGER NOT NULL DEFAULT 0,
		added_at DATETIME NOT NULL,
		UNIQUE(album_id, photo_id)
	);

	CREATE INDEX IF NOT EXISTS idx_album_photos_album ON album_photos(album_id);
	CREATE INDEX IF NOT EXISTS idx_album_photos_photo ON album_photos(photo_id);
	`

	_, err := db.Exec(schema)
	return err
}
