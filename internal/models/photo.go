package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Photo represents a stored image. A photo is first-class and independent of
// albums; AlbumIDs is a derived view reconstructed from association records
// and is never persisted on the photo row itself.
type Photo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StoredPath string    `json:"-"`
	URL        string    `json:"url"`
	AlbumIDs   []string  `json:"albumIds"`
	UploadedAt time.Time `json:"uploadedAt"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimeType"`
	Tags       []string  `json:"tags"`

	// Optional metadata captured at upload time.
	FileHash  string    `json:"-"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	DateTaken time.Time `json:"dateTaken,omitempty"`
}

// NewPhoto creates a Photo with a generated ID and sanitized name.
func NewPhoto(name, storedPath, mimeType string, size int64) (*Photo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyFilename
	}
	if strings.TrimSpace(storedPath) == "" {
		return nil, ErrEmptyStoredPath
	}
	if size <= 0 {
		return nil, ErrInvalidFileSize
	}

	return &Photo{
		ID:         uuid.New().String(),
		Name:       SanitizeFilename(name),
		StoredPath: storedPath,
		MimeType:   mimeType,
		Size:       size,
		UploadedAt: time.Now().UTC(),
		AlbumIDs:   []string{},
		Tags:       []string{},
	}, nil
}

// InAlbum reports whether the photo's derived membership contains albumID.
func (p *Photo) InAlbum(albumID string) bool {
	for _, id := range p.AlbumIDs {
		if id == albumID {
			return true
		}
	}
	return false
}

// SanitizeFilename removes path components and invalid characters.
func SanitizeFilename(filename string) string {
	name := filepath.Base(filename)

	replacer := strings.NewReplacer(
		"..", "",
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}

// PhotoError is the typed error for photo-level validation failures.
type PhotoError struct {
	Message string
}

func (e PhotoError) Error() string {
	return e.Message
}

var (
	ErrEmptyFilename    = PhotoError{"filename cannot be empty"}
	ErrEmptyStoredPath  = PhotoError{"stored path cannot be empty"}
	ErrInvalidFileSize  = PhotoError{"file size must be positive"}
	ErrInvalidExtension = PhotoError{"file extension not allowed"}
	ErrFileTooLarge     = PhotoError{"file size exceeds maximum allowed"}
	ErrPathTraversal    = PhotoError{"invalid path - path traversal detected"}
)
