package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	_ "image/gif"

	"github.com/disintegration/imaging"
	"github.com/jdeng/goheif"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp"

	"github.com/photogallery/server/internal/observability"
)

// Defaults for compression options.
const (
	DefaultMaxWidth    = 1920
	DefaultMaxHeight   = 1080
	DefaultQuality     = 0.8
	DefaultMaxFileSize = 2 * 1024 * 1024

	// Files at or under this size skip compression unless their format
	// always benefits from re-encoding.
	compressThreshold = 1024 * 1024

	// The quality decay loop stops here; below this the output is mush.
	minQuality   = 0.1
	qualityDecay = 0.8
)

// Options controls how Compress shrinks an image. The zero value is not
// usable; start from DefaultOptions.
type Options struct {
	MaxWidth            int
	MaxHeight           int
	Quality             float64 // 0..1, lossy formats only
	MaxFileSize         int64   // target output ceiling in bytes
	Format              string  // "jpeg", "png", or "webp"
	MaintainAspectRatio bool
}

func DefaultOptions() Options {
	return Options{
		MaxWidth:            DefaultMaxWidth,
		MaxHeight:           DefaultMaxHeight,
		Quality:             DefaultQuality,
		MaxFileSize:         DefaultMaxFileSize,
		Format:              "jpeg",
		MaintainAspectRatio: true,
	}
}

// File is one input to the pipeline.
type File struct {
	Name string
	Data []byte
}

// Result is the outcome for one file. When Compressed is false the original
// bytes passed through untouched.
type Result struct {
	Name           string
	Data           []byte
	MimeType       string
	OriginalSize   int64
	CompressedSize int64
	Width          int
	Height         int
	Quality        float64
	Compressed     bool
	Err            error
}

// Ratio reports how much smaller the output is, as a percentage of the
// original size that was shaved off.
func (r Result) Ratio() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return (1 - float64(r.CompressedSize)/float64(r.OriginalSize)) * 100
}

// ProgressFunc receives batch progress after each file finishes.
type ProgressFunc func(percent float64, current, total int)

// Compressor shrinks photos before they are stored.
type Compressor struct {
	logger *observability.Logger
}

func NewCompressor() *Compressor {
	return &Compressor{
		logger: observability.GetLogger().WithField("component", "imageproc"),
	}
}

// ShouldCompress reports whether a file is worth running through the
// pipeline. Large files always are; PNG and BMP screenshots re-encode well
// at any size.
func ShouldCompress(size int64, filename string) bool {
	if size > compressThreshold {
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".bmp":
		return true
	}
	return false
}

// Compress shrinks one image: scale down to fit the bounding box, then
// re-encode, lowering quality until the output fits under MaxFileSize or
// quality bottoms out. Images already inside the box are never scaled up.
func (c *Compressor) Compress(file File, opts Options) (Result, error) {
	res := Result{
		Name:         file.Name,
		OriginalSize: int64(len(file.Data)),
		Quality:      opts.Quality,
	}

	img, err := decode(file.Data, file.Name)
	if err != nil {
		return res, fmt.Errorf("decode %s: %w", file.Name, err)
	}
	img = applyOrientation(img, orientationOf(file.Data))

	img = fit(img, opts)
	bounds := img.Bounds()
	res.Width = bounds.Dx()
	res.Height = bounds.Dy()

	data, mimeType, quality, err := encode(img, opts)
	if err != nil {
		return res, fmt.Errorf("encode %s: %w", file.Name, err)
	}

	// Re-encoding can lose to the source encoder; keep whichever is smaller.
	if int64(len(data)) >= res.OriginalSize {
		res.Data = file.Data
		res.CompressedSize = res.OriginalSize
		res.MimeType = mimeTypeFor(file.Name)
		return res, nil
	}

	res.Data = data
	res.CompressedSize = int64(len(data))
	res.MimeType = mimeType
	res.Quality = quality
	res.Compressed = true
	return res, nil
}

// CompressBatch runs files through the pipeline one at a time, reporting
// progress after each. Files under the size threshold skip the pipeline and
// pass through unchanged. A file that cannot be processed passes through
// with its original bytes and its error recorded; the batch keeps going.
func (c *Compressor) CompressBatch(files []File, opts Options, onProgress ProgressFunc) []Result {
	results := make([]Result, 0, len(files))
	for i, file := range files {
		if !ShouldCompress(int64(len(file.Data)), file.Name) {
			results = append(results, Result{
				Name:           file.Name,
				Data:           file.Data,
				OriginalSize:   int64(len(file.Data)),
				CompressedSize: int64(len(file.Data)),
				MimeType:       mimeTypeFor(file.Name),
				Quality:        opts.Quality,
			})
			if onProgress != nil {
				onProgress(float64(i+1)/float64(len(files))*100, i+1, len(files))
			}
			continue
		}

		res, err := c.Compress(file, opts)
		if err != nil {
			c.logger.WithField("file", file.Name).Warnf("compression failed, keeping original: %v", err)
			res.Err = err
			res.Data = file.Data
			res.CompressedSize = res.OriginalSize
			res.MimeType = mimeTypeFor(file.Name)
		}
		results = append(results, res)

		if onProgress != nil {
			onProgress(float64(i+1)/float64(len(files))*100, i+1, len(files))
		}
	}
	return results
}

func decode(data []byte, filename string) (image.Image, error) {
	if isHEIC(filename) {
		return goheif.Decode(bytes.NewReader(data))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// fit scales the image down to the bounding box. Shrink only: a smaller
// image keeps its dimensions.
func fit(img image.Image, opts Options) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	maxW := opts.MaxWidth
	maxH := opts.MaxHeight
	if maxW <= 0 {
		maxW = DefaultMaxWidth
	}
	if maxH <= 0 {
		maxH = DefaultMaxHeight
	}

	if width <= maxW && height <= maxH {
		return img
	}

	if !opts.MaintainAspectRatio {
		newW := min(width, maxW)
		newH := min(height, maxH)
		return imaging.Resize(img, newW, newH, imaging.Lanczos)
	}

	scaleW := float64(maxW) / float64(width)
	scaleH := float64(maxH) / float64(height)
	scale := scaleW
	if scaleH < scaleW {
		scale = scaleH
	}

	newW := int(float64(width) * scale)
	newH := int(float64(height) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return imaging.Resize(img, newW, newH, imaging.Lanczos)
}

// encode renders the image, walking quality down until the output fits the
// size ceiling or quality reaches the floor. The loop is bounded: quality
// decays geometrically, so it terminates in a handful of passes.
func encode(img image.Image, opts Options) ([]byte, string, float64, error) {
	if strings.EqualFold(opts.Format, "png") {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", 0, err
		}
		return buf.Bytes(), "image/png", 1, nil
	}

	// webp has no encoder here, so webp requests produce jpeg.
	quality := opts.Quality
	if quality <= 0 || quality > 1 {
		quality = DefaultQuality
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var buf bytes.Buffer
	for {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: int(quality*100 + 0.5)}); err != nil {
			return nil, "", 0, err
		}
		if int64(buf.Len()) <= maxSize || quality <= minQuality {
			break
		}
		quality *= qualityDecay
		if quality < minQuality {
			quality = minQuality
		}
	}
	return buf.Bytes(), "image/jpeg", quality, nil
}

func orientationOf(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// applyOrientation normalizes pixel data according to the EXIF orientation
// flag so output files render upright everywhere.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Rotate270(imaging.FlipH(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Rotate90(imaging.FlipH(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func isHEIC(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".heic" || ext == ".heif"
}

func mimeTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".heic", ".heif":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}

// FormatFileSize renders a byte count for logs and responses.
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
