package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noisyImage produces an image that resists JPEG compression, so size-driven
// behavior is observable.
func noisyImage(width, height int) image.Image {
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}))
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestShouldCompress(t *testing.T) {
	assert.True(t, ShouldCompress(2*1024*1024, "big.jpg"))
	assert.False(t, ShouldCompress(500*1024, "small.jpg"))
	assert.True(t, ShouldCompress(10*1024, "tiny.png"))
	assert.True(t, ShouldCompress(10*1024, "tiny.bmp"))
	assert.False(t, ShouldCompress(10*1024, "tiny.gif"))
}

func TestCompressor_Compress(t *testing.T) {
	c := NewCompressor()

	t.Run("scales down oversized images", func(t *testing.T) {
		data := encodeJPEG(t, noisyImage(3840, 2160), 95)
		res, err := c.Compress(File{Name: "wide.jpg", Data: data}, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, 1920, res.Width)
		assert.Equal(t, 1080, res.Height)
		assert.True(t, res.Compressed)
		assert.Less(t, res.CompressedSize, res.OriginalSize)
	})

	t.Run("preserves aspect ratio on the tighter axis", func(t *testing.T) {
		data := encodeJPEG(t, noisyImage(1000, 4000), 95)
		res, err := c.Compress(File{Name: "tall.jpg", Data: data}, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, 1080, res.Height)
		assert.Equal(t, 270, res.Width)
	})

	t.Run("never scales up", func(t *testing.T) {
		data := encodeJPEG(t, noisyImage(640, 480), 95)
		res, err := c.Compress(File{Name: "small.jpg", Data: data}, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, 640, res.Width)
		assert.Equal(t, 480, res.Height)
	})

	t.Run("quality decays until the output fits", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxFileSize = 40 * 1024
		data := encodeJPEG(t, noisyImage(2400, 1600), 95)

		res, err := c.Compress(File{Name: "huge.jpg", Data: data}, opts)
		require.NoError(t, err)
		assert.Less(t, res.Quality, DefaultQuality)
		assert.GreaterOrEqual(t, res.Quality, minQuality)
	})

	t.Run("quality floor bounds the loop", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxFileSize = 1 // unreachable target
		data := encodeJPEG(t, noisyImage(800, 600), 95)

		res, err := c.Compress(File{Name: "stubborn.jpg", Data: data}, opts)
		require.NoError(t, err)
		assert.InDelta(t, minQuality, res.Quality, 0.0001)
	})

	t.Run("keeps the original when re-encoding loses", func(t *testing.T) {
		// A low-quality source re-encodes larger at the default quality.
		data := encodeJPEG(t, noisyImage(400, 300), 10)
		res, err := c.Compress(File{Name: "already-small.jpg", Data: data}, DefaultOptions())
		require.NoError(t, err)
		assert.False(t, res.Compressed)
		assert.Equal(t, res.OriginalSize, res.CompressedSize)
		assert.Equal(t, data, res.Data)
	})

	t.Run("png input converts to jpeg", func(t *testing.T) {
		data := encodePNG(t, noisyImage(2000, 1500))
		res, err := c.Compress(File{Name: "shot.png", Data: data}, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", res.MimeType)
	})

	t.Run("png output format is lossless", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Format = "png"
		data := encodeJPEG(t, noisyImage(2400, 1350), 95)
		res, err := c.Compress(File{Name: "in.jpg", Data: data}, opts)
		require.NoError(t, err)
		if res.Compressed {
			assert.Equal(t, "image/png", res.MimeType)
		}
	})

	t.Run("undecodable input errors", func(t *testing.T) {
		_, err := c.Compress(File{Name: "junk.jpg", Data: []byte("not an image")}, DefaultOptions())
		assert.Error(t, err)
	})
}

func TestCompressor_CompressBatch(t *testing.T) {
	c := NewCompressor()
	small := encodeJPEG(t, noisyImage(120, 80), 60)
	require.False(t, ShouldCompress(int64(len(small)), "small.jpg"))
	files := []File{
		{Name: "one.jpg", Data: encodeJPEG(t, noisyImage(2400, 1600), 95)},
		{Name: "broken.jpg", Data: bytes.Repeat([]byte("garbage"), 200_000)},
		{Name: "small.jpg", Data: small},
		{Name: "two.jpg", Data: encodeJPEG(t, noisyImage(2000, 1200), 95)},
	}

	var progress []float64
	results := c.CompressBatch(files, DefaultOptions(), func(pct float64, current, total int) {
		progress = append(progress, pct)
		assert.Equal(t, 4, total)
	})

	require.Len(t, results, 4)

	t.Run("progress advances through every file", func(t *testing.T) {
		require.Len(t, progress, 4)
		assert.InDelta(t, 100, progress[3], 0.001)
		assert.Less(t, progress[0], progress[1])
	})

	t.Run("good files compress", func(t *testing.T) {
		assert.True(t, results[0].Compressed)
		assert.True(t, results[3].Compressed)
	})

	t.Run("broken file passes through with its error", func(t *testing.T) {
		broken := results[1]
		assert.Error(t, broken.Err)
		assert.False(t, broken.Compressed)
		assert.Equal(t, files[1].Data, broken.Data)
	})

	t.Run("file under the threshold is never re-encoded", func(t *testing.T) {
		skipped := results[2]
		assert.NoError(t, skipped.Err)
		assert.False(t, skipped.Compressed)
		assert.Equal(t, small, skipped.Data)
		assert.Zero(t, skipped.Ratio())
		assert.Equal(t, "image/jpeg", skipped.MimeType)
	})
}

func TestResult_Ratio(t *testing.T) {
	assert.InDelta(t, 75, Result{OriginalSize: 1000, CompressedSize: 250}.Ratio(), 0.001)
	assert.Zero(t, Result{}.Ratio())
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.0 KB", FormatFileSize(1024))
	assert.Equal(t, "2.0 MB", FormatFileSize(2*1024*1024))
}
