package models

import "time"

// CreateAlbumRequest is the request body for creating an album
type CreateAlbumRequest struct {
	Name         string   `json:"name"`
	Description  *string  `json:"description,omitempty"`
	CoverPhotoID *string  `json:"coverPhotoId,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// UpdateAlbumRequest is a partial patch for an album; nil fields are untouched
type UpdateAlbumRequest struct {
	Name         *string   `json:"name,omitempty"`
	Description  *string   `json:"description,omitempty"`
	CoverPhotoID *string   `json:"coverPhotoId,omitempty"`
	Tags         *[]string `json:"tags,omitempty"`
}

// AlbumPhotoRequest adds or removes a single photo association
type AlbumPhotoRequest struct {
	PhotoID string `json:"photoId"`
}

// PhotoDescriptor is the flat listing entry for a stored photo object
type PhotoDescriptor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// UploadResponse reports the outcome of a single uploaded file
type UploadResponse struct {
	Photo            *Photo  `json:"photo"`
	OriginalSize     int64   `json:"originalSize"`
	StoredSize       int64   `json:"storedSize"`
	CompressionRatio float64 `json:"compressionRatio"`
	Duplicate        bool    `json:"duplicate,omitempty"`
}

// MovePhotoRequest moves a photo from one album to another
type MovePhotoRequest struct {
	PhotoID     string `json:"photoId"`
	FromAlbumID string `json:"fromAlbumId"`
	ToAlbumID   string `json:"toAlbumId"`
}

// TransferBeginRequest starts a drag gesture
type TransferBeginRequest struct {
	Type          string `json:"type"`
	ID            string `json:"id"`
	SourceAlbumID string `json:"sourceAlbumId"`
}

// TransferTargetRequest points the active gesture at an album
type TransferTargetRequest struct {
	AlbumID string `json:"albumId"`
}

// TransferCommitRequest drops the active gesture onto an album
type TransferCommitRequest struct {
	TargetAlbumID string `json:"targetAlbumId"`
}

// TransferResultResponse reports how a drop ended
type TransferResultResponse struct {
	Success   bool                `json:"success"`
	Operation *PhotoMoveOperation `json:"operation,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
