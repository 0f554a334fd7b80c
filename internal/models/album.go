package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Album name length bounds, applied after trimming whitespace.
const (
	AlbumNameMinLen = 2
	AlbumNameMaxLen = 100
)

// Album represents a named, user-defined collection of photos.
type Album struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	CoverPhotoID *string   `json:"coverPhotoId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Tags         []string  `json:"tags"`
	IsDefault    bool      `json:"isDefault,omitempty"`

	// PhotoCount mirrors the number of live association records pointing at
	// this album. Repositories populate it on read; the in-memory store
	// maintains it incrementally on every mutation.
	PhotoCount int `json:"photoCount"`
}

// AlbumWithPhotos is an album joined with the IDs of its member photos.
type AlbumWithPhotos struct {
	Album
	Photos []string `json:"photos"`
}

// NewAlbum creates an album with a generated ID and validated name.
func NewAlbum(name string) (*Album, error) {
	trimmed, err := ValidateAlbumName(name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Album{
		ID:        uuid.New().String(),
		Name:      trimmed,
		CreatedAt: now,
		UpdatedAt: now,
		Tags:      []string{},
	}, nil
}

// ValidateAlbumName trims the name and checks the length bounds.
func ValidateAlbumName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrAlbumNameRequired
	}
	if len(trimmed) < AlbumNameMinLen {
		return "", ErrAlbumNameTooShort
	}
	if len(trimmed) > AlbumNameMaxLen {
		return "", ErrAlbumNameTooLong
	}
	return trimmed, nil
}
