package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/photogallery/server/internal/models"
	"github.com/photogallery/server/internal/notify"
	"github.com/photogallery/server/internal/observability"
	"github.com/photogallery/server/internal/store"
)

// AlbumHandler handles album API endpoints
type AlbumHandler struct {
	albums  *store.AlbumStore
	photos  *store.PhotoStore
	hub     *notify.Hub
	metrics *observability.GalleryMetrics
}

// NewAlbumHandler creates a new AlbumHandler
func NewAlbumHandler(albums *store.AlbumStore, photos *store.PhotoStore, hub *notify.Hub, metrics *observability.GalleryMetrics) *AlbumHandler {
	return &AlbumHandler{albums: albums, photos: photos, hub: hub, metrics: metrics}
}

// ListAlbums returns every album with its photo count
func (h *AlbumHandler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.albums.LoadAlbums(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, albums)
}

// GetAlbum returns one album with its photo membership
func (h *AlbumHandler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Album ID required", http.StatusBadRequest)
		return
	}

	album, err := h.albums.LoadAlbum(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if album == nil {
		http.Error(w, "Album not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, album)
}

// CreateAlbum creates a new album
func (h *AlbumHandler) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAlbumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	album, err := h.albums.CreateAlbum(r.Context(), &req)
	h.metrics.RecordAlbumOperation(r.Context(), "create", err == nil)
	if err != nil {
		respondError(w, err)
		return
	}

	h.hub.BroadcastToTopic(notify.TopicAlbums, notify.Event{Type: notify.EventAlbumsChanged})
	respondJSON(w, http.StatusCreated, album)
}

// UpdateAlbum applies a partial update to an album
func (h *AlbumHandler) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req models.UpdateAlbumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	album, err := h.albums.UpdateAlbum(r.Context(), id, &req)
	h.metrics.RecordAlbumOperation(r.Context(), "update", err == nil)
	if err != nil {
		respondError(w, err)
		return
	}

	h.hub.BroadcastToTopic(notify.TopicAlbums, notify.Event{Type: notify.EventAlbumsChanged})
	respondJSON(w, http.StatusOK, album)
}

// DeleteAlbum deletes an album. Its photos remain in the library.
func (h *AlbumHandler) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.albums.DeleteAlbum(r.Context(), id)
	h.metrics.RecordAlbumOperation(r.Context(), "delete", err == nil)
	if err != nil {
		respondError(w, err)
		return
	}

	h.hub.BroadcastToTopic(notify.TopicAlbums, notify.Event{Type: notify.EventAlbumsChanged})
	w.WriteHeader(http.StatusNoContent)
}

// AddPhoto adds a photo to an album
func (h *AlbumHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "id")
	var req models.AlbumPhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PhotoID == "" {
		http.Error(w, "Photo ID required", http.StatusBadRequest)
		return
	}

	if err := h.albums.AddPhotoToAlbum(r.Context(), albumID, req.PhotoID); err != nil {
		respondError(w, err)
		return
	}
	h.photos.AddPhotoToAlbum(req.PhotoID, albumID)

	h.hub.BroadcastToTopic(notify.TopicAlbums, notify.Event{Type: notify.EventAlbumsChanged})
	w.WriteHeader(http.StatusNoContent)
}

// RemovePhoto removes a photo from an album
func (h *AlbumHandler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "id")
	photoID := chi.URLParam(r, "photoId")
	if photoID == "" {
		http.Error(w, "Photo ID required", http.StatusBadRequest)
		return
	}

	if err := h.albums.RemovePhotoFromAlbum(r.Context(), albumID, photoID); err != nil {
		respondError(w, err)
		return
	}
	h.photos.RemovePhotoFromAlbum(photoID, albumID)

	h.hub.BroadcastToTopic(notify.TopicAlbums, notify.Event{Type: notify.EventAlbumsChanged})
	w.WriteHeader(http.StatusNoContent)
}

// MovePhoto moves a photo between two albums atomically
func (h *AlbumHandler) MovePhoto(w http.ResponseWriter, r *http.Request) {
	var req models.MovePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	op := models.PhotoMoveOperation{
		PhotoID:     req.PhotoID,
		FromAlbumID: req.FromAlbumID,
		ToAlbumID:   req.ToAlbumID,
	}
	err := h.albums.MovePhotoBetweenAlbums(r.Context(), op)
	h.metrics.RecordPhotoMove(r.Context(), err == nil)
	if err != nil {
		respondError(w, err)
		return
	}
	h.photos.MovePhoto(op)

	h.hub.BroadcastToTopic(notify.TopicAlbums, notify.Event{Type: notify.EventAlbumsChanged})
	w.WriteHeader(http.StatusNoContent)
}
