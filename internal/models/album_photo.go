package models

import (
	"time"

	"github.com/google/uuid"
)

// AlbumPhoto is the many-to-many join record linking one photo to one album.
// Records are only ever created and deleted, never mutated, and at most one
// exists per (album, photo) pair.
type AlbumPhoto struct {
	ID      string    `json:"id"`
	AlbumID string    `json:"albumId"`
	PhotoID string    `json:"photoId"`
	AddedAt time.Time `json:"addedAt"`
}

// NewAlbumPhoto creates a new album-photo association.
func NewAlbumPhoto(albumID, photoID string) *AlbumPhoto {
	return &AlbumPhoto{
		ID:      uuid.New().String(),
		AlbumID: albumID,
		PhotoID: photoID,
		AddedAt: time.Now().UTC(),
	}
}

// PhotoMoveOperation is a command value describing "remove association
// (from, photo), add association (to, photo)" as one logical unit. It is
// never persisted.
type PhotoMoveOperation struct {
	PhotoID     string `json:"photoId"`
	FromAlbumID string `json:"fromAlbumId"`
	ToAlbumID   string `json:"toAlbumId"`
	Position    int    `json:"position,omitempty"`
}

// Validate checks the move carries all three IDs and is not a self-move.
func (op PhotoMoveOperation) Validate() error {
	if op.PhotoID == "" || op.FromAlbumID == "" || op.ToAlbumID == "" {
		return ErrMoveIncomplete
	}
	if op.FromAlbumID == op.ToAlbumID {
		return ErrMoveSameAlbum
	}
	return nil
}
