package services

import (
	"bytes"
	"io"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// EXIFData contains the metadata this gallery cares about: when the photo was
// taken (used for storage layout), orientation (used before resizing), and
// the pixel dimensions reported by the camera.
type EXIFData struct {
	Orientation int
	Width       *int
	Height      *int
	DateTaken   *time.Time
}

// EXIFService extracts EXIF metadata from images
type EXIFService struct{}

// NewEXIFService creates a new EXIFService
func NewEXIFService() *EXIFService {
	return &EXIFService{}
}

// ExtractFromBytes extracts EXIF data from image bytes
func (s *EXIFService) ExtractFromBytes(data []byte) *EXIFData {
	return s.ExtractFromReader(bytes.NewReader(data))
}

// ExtractFromReader extracts EXIF data from an io.Reader. Images without EXIF
// blocks yield default values rather than an error.
func (s *EXIFService) ExtractFromReader(r io.Reader) *EXIFData {
	result := &EXIFData{Orientation: 1}

	x, err := exif.Decode(r)
	if err != nil {
		return result
	}

	if tag, err := x.Get(exif.Orientation); err == nil {
		if val, err := tag.Int(0); err == nil && val >= 1 && val <= 8 {
			result.Orientation = val
		}
	}

	if tag, err := x.Get(exif.PixelXDimension); err == nil {
		if val, err := tag.Int(0); err == nil && val > 0 {
			result.Width = &val
		}
	}
	if tag, err := x.Get(exif.PixelYDimension); err == nil {
		if val, err := tag.Int(0); err == nil && val > 0 {
			result.Height = &val
		}
	}

	if dt, err := x.DateTime(); err == nil {
		utc := dt.UTC()
		result.DateTaken = &utc
	}

	return result
}
