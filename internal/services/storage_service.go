package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/photogallery/server/internal/models"
)

// PhotoStorageService is the on-disk object store for image bytes, organized
// in Year/Month folders. It knows nothing about albums or the photo catalog.
type PhotoStorageService struct {
	basePath          string
	allowedExtensions map[string]bool
	maxFileSizeBytes  int64
}

// NewPhotoStorageService creates a new PhotoStorageService
func NewPhotoStorageService(basePath string, allowedExtensions []string, maxFileSizeMB int64) (*PhotoStorageService, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, err
	}

	extSet := make(map[string]bool)
	if len(allowedExtensions) == 0 {
		for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic", ".heif", ".bmp", ".tiff", ".tif"} {
			extSet[ext] = true
		}
	} else {
		for _, ext := range allowedExtensions {
			extSet[strings.ToLower(ext)] = true
		}
	}

	return &PhotoStorageService{
		basePath:          absPath,
		allowedExtensions: extSet,
		maxFileSizeBytes:  maxFileSizeMB * 1024 * 1024,
	}, nil
}

// Store saves a file and returns the relative storage path
func (s *PhotoStorageService) Store(reader io.Reader, originalFilename string, takenAt time.Time, fileSize int64) (string, error) {
	if fileSize > s.maxFileSizeBytes {
		return "", models.ErrFileTooLarge
	}

	sanitized := models.SanitizeFilename(originalFilename)
	ext := strings.ToLower(filepath.Ext(sanitized))
	if !s.allowedExtensions[ext] {
		return "", models.ErrInvalidExtension
	}

	if takenAt.IsZero() {
		takenAt = time.Now().UTC()
	}
	relativeFolder := filepath.Join(takenAt.Format("2006"), takenAt.Format("01"))
	absoluteFolder := filepath.Join(s.basePath, relativeFolder)

	if err := os.MkdirAll(absoluteFolder, 0755); err != nil {
		return "", err
	}

	uniqueName := generateUniqueFilename(sanitized, absoluteFolder)
	relativePath := filepath.Join(relativeFolder, uniqueName)
	absolutePath := filepath.Join(s.basePath, relativePath)

	if !strings.HasPrefix(absolutePath, s.basePath) {
		return "", models.ErrPathTraversal
	}

	file, err := os.OpenFile(absolutePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		os.Remove(absolutePath) // Clean up on error
		return "", err
	}

	return strings.ReplaceAll(relativePath, string(os.PathSeparator), "/"), nil
}

// Delete removes a file by its stored path. Deleting an absent file succeeds,
// so callers can treat it as already being in the desired end state.
func (s *PhotoStorageService) Delete(storedPath string) error {
	fullPath, err := s.GetFullPath(storedPath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Open returns a reader over the stored bytes.
func (s *PhotoStorageService) Open(storedPath string) (io.ReadCloser, error) {
	fullPath, err := s.GetFullPath(storedPath)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// GetFullPath returns the absolute path for a stored path
func (s *PhotoStorageService) GetFullPath(storedPath string) (string, error) {
	if strings.TrimSpace(storedPath) == "" {
		return "", fmt.Errorf("stored path cannot be empty")
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(storedPath))

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(absPath, s.basePath) {
		return "", models.ErrPathTraversal
	}

	return absPath, nil
}

// Exists checks if a file exists at the given stored path
func (s *PhotoStorageService) Exists(storedPath string) bool {
	fullPath, err := s.GetFullPath(storedPath)
	if err != nil {
		return false
	}

	_, err = os.Stat(fullPath)
	return err == nil
}

// generateUniqueFilename creates a unique filename if collision exists
func generateUniqueFilename(filename, folderPath string) string {
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))
	ext := filepath.Ext(filename)
	candidate := filename
	counter := 1

	for {
		fullPath := filepath.Join(folderPath, candidate)
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			break
		}

		candidate = fmt.Sprintf("%s_%03d%s", nameWithoutExt, counter, ext)
		counter++

		if counter > 9999 {
			// Fall back to timestamp
			candidate = fmt.Sprintf("%s_%d%s", nameWithoutExt, time.Now().UnixNano(), ext)
			break
		}
	}

	return candidate
}
