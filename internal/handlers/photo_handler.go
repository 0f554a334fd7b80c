package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/photogallery/server/internal/imageproc"
	"github.com/photogallery/server/internal/models"
	"github.com/photogallery/server/internal/notify"
	"github.com/photogallery/server/internal/observability"
	"github.com/photogallery/server/internal/services"
	"github.com/photogallery/server/internal/store"
)

const maxUploadMemory = 64 << 20

// PhotoHandler handles photo API endpoints
type PhotoHandler struct {
	photoSvc   *services.PhotoService
	albumSvc   *services.AlbumService
	photos     *store.PhotoStore
	albums     *store.AlbumStore
	compressor *imageproc.Compressor
	compress   imageproc.Options
	compressOn bool
	hub        *notify.Hub
	metrics    *observability.GalleryMetrics
}

// NewPhotoHandler creates a new PhotoHandler
func NewPhotoHandler(
	photoSvc *services.PhotoService,
	albumSvc *services.AlbumService,
	photos *store.PhotoStore,
	albums *store.AlbumStore,
	compressor *imageproc.Compressor,
	compress imageproc.Options,
	compressOn bool,
	hub *notify.Hub,
	metrics *observability.GalleryMetrics,
) *PhotoHandler {
	return &PhotoHandler{
		photoSvc:   photoSvc,
		albumSvc:   albumSvc,
		photos:     photos,
		albums:     albums,
		compressor: compressor,
		compress:   compress,
		compressOn: compressOn,
		hub:        hub,
		metrics:    metrics,
	}
}

// List returns the photo catalog with album membership resolved
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	photos, err := h.photos.Refresh(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if albumID := r.URL.Query().Get("albumId"); albumID != "" {
		photos = h.photos.PhotosInAlbum(albumID)
	}
	respondJSON(w, http.StatusOK, photos)
}

// GetByID returns one photo's metadata
func (h *PhotoHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	photo, err := h.photoSvc.GetPhoto(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if photo == nil {
		http.Error(w, "Photo not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

// Content streams the stored photo bytes
func (h *PhotoHandler) Content(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rc, photo, err := h.photoSvc.Open(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	defer rc.Close()

	if photo.MimeType != "" {
		w.Header().Set("Content-Type", photo.MimeType)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(photo.Size, 10))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	io.Copy(w, rc)
	h.metrics.RecordPhotoDownload(r.Context(), photo.ID)
}

// Upload accepts multipart photo uploads, runs each file through the
// compression pipeline, deduplicates by content hash, and files new photos
// into the target album (or the default album when none is given).
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	fileHeaders := r.MultipartForm.File["photos"]
	if len(fileHeaders) == 0 {
		fileHeaders = r.MultipartForm.File["file"]
	}
	if len(fileHeaders) == 0 {
		http.Error(w, "No files provided", http.StatusBadRequest)
		return
	}

	albumID := r.FormValue("albumId")
	if albumID == "" {
		def, err := h.albumSvc.GetDefaultAlbum(r.Context())
		if err == nil && def != nil {
			albumID = def.ID
		}
	}

	files := make([]imageproc.File, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			http.Error(w, "Failed to read uploaded file", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, "Failed to read uploaded file", http.StatusBadRequest)
			return
		}
		files = append(files, imageproc.File{Name: fh.Filename, Data: data})
	}

	total := len(files)
	responses := make([]*models.UploadResponse, 0, total)
	for i, file := range files {
		resp, err := h.uploadOne(r, file, albumID)
		if err != nil {
			observability.WithContext(r.Context()).WithField("file", file.Name).Errorf("upload failed: %v", err)
			respondError(w, err)
			return
		}
		responses = append(responses, resp)

		h.hub.BroadcastToTopic(notify.TopicPhotos, notify.Event{
			Type: notify.EventPhotosChanged,
			Payload: map[string]interface{}{
				"current": i + 1,
				"total":   total,
				"percent": float64(i+1) / float64(total) * 100,
			},
		})
	}

	respondJSON(w, http.StatusCreated, responses)
}

func (h *PhotoHandler) uploadOne(r *http.Request, file imageproc.File, albumID string) (*models.UploadResponse, error) {
	originalSize := int64(len(file.Data))
	data := file.Data
	mimeType := ""

	if h.compressOn && imageproc.ShouldCompress(originalSize, file.Name) {
		res, err := h.compressor.Compress(file, h.compress)
		if err == nil && res.Compressed {
			data = res.Data
			mimeType = res.MimeType
		}
		// A file the pipeline cannot handle is stored as-is.
	}

	photo, duplicate, err := h.photoSvc.Upload(r.Context(), file.Name, mimeType, data)
	h.metrics.RecordPhotoUpload(r.Context(), originalSize, err == nil)
	if err != nil {
		return nil, err
	}
	if !duplicate {
		h.metrics.RecordCompressionSavings(r.Context(), originalSize, photo.Size)
	}

	if !duplicate {
		h.photos.AddPhoto(photo)
		if albumID != "" {
			if err := h.albums.AddPhotoToAlbum(r.Context(), albumID, photo.ID); err == nil {
				h.photos.AddPhotoToAlbum(photo.ID, albumID)
			}
		}
	}

	resp := &models.UploadResponse{
		Photo:        photo,
		OriginalSize: originalSize,
		StoredSize:   photo.Size,
		Duplicate:    duplicate,
	}
	if originalSize > 0 {
		resp.CompressionRatio = (1 - float64(photo.Size)/float64(originalSize)) * 100
	}
	return resp, nil
}

// Delete removes a photo everywhere: catalog, associations, stored bytes
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.photos.DeletePhoto(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	h.hub.BroadcastToTopic(notify.TopicPhotos, notify.Event{Type: notify.EventPhotosChanged})
	w.WriteHeader(http.StatusNoContent)
}
