// Package imaging prepares garment photos for upload: it rescales them into
// the backend's accepted resolution window and re-encodes them as JPEG under
// a byte budget, so oversized camera shots never leave the machine.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"math"
	"time"

	"golang.org/x/image/draw"

	// Register decoders for the formats the panel accepts.
	_ "image/gif"
	_ "image/png"
)

const (
	// maxEncodeAttempts bounds the quality search; the final attempt's
	// output is accepted even when it is still over budget.
	maxEncodeAttempts = 3

	// qualityStep and qualityFloor drive the downward quality search.
	qualityStep  = 0.1
	qualityFloor = 0.1
)

// Bounds constrains the normalized output. Zero-valued fields disable the
// corresponding constraint.
type Bounds struct {
	MaxSizeMB float64
	MaxWidth  int
	MaxHeight int
	MinWidth  int
	MinHeight int
}

// budgetBytes converts MaxSizeMB to a byte budget; 0 means unbounded.
func (b Bounds) budgetBytes() int {
	if b.MaxSizeMB <= 0 {
		return 0
	}
	return int(b.MaxSizeMB * 1024 * 1024)
}

// File is a normalized image ready for upload.
type File struct {
	Name    string
	Data    []byte
	Width   int
	Height  int
	ModTime time.Time
}

// Normalize decodes src, rescales it uniformly so both dimensions land
// inside [min, max], and re-encodes it as JPEG, searching downward for a
// quality that fits the byte budget. The search starts at a quality chosen
// from how far the source overshoots the budget and makes at most three
// attempts; the last attempt is returned even if still over budget.
func Normalize(src io.Reader, name string, bounds Bounds) (*File, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read source image: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", name, err)
	}

	img = rescale(img, bounds)

	budget := bounds.budgetBytes()
	quality := initialQuality(len(raw), budget)

	var encoded []byte
	for attempt := 0; attempt < maxEncodeAttempts; attempt++ {
		var buf bytes.Buffer
		opts := &jpeg.Options{Quality: encoderQuality(quality)}
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encode attempt %d: %w", attempt+1, err)
		}
		encoded = buf.Bytes()

		if budget == 0 || len(encoded) <= budget {
			break
		}

		quality -= qualityStep
		if quality < qualityFloor {
			quality = qualityFloor
		}
	}

	size := img.Bounds().Size()
	return &File{
		Name:    name,
		Data:    encoded,
		Width:   size.X,
		Height:  size.Y,
		ModTime: time.Now(),
	}, nil
}

// rescale applies the resolution window: a uniform upscale to reach the
// minimums, then a uniform downscale to respect the maximums. Aspect ratio
// is preserved throughout.
func rescale(img image.Image, bounds Bounds) image.Image {
	size := img.Bounds().Size()
	w, h := float64(size.X), float64(size.Y)

	scale := 1.0
	if bounds.MinWidth > 0 && w*scale < float64(bounds.MinWidth) {
		scale = float64(bounds.MinWidth) / w
	}
	if bounds.MinHeight > 0 && h*scale < float64(bounds.MinHeight) {
		scale = float64(bounds.MinHeight) / h
	}

	shrink := 1.0
	if bounds.MaxWidth > 0 && w*scale*shrink > float64(bounds.MaxWidth) {
		shrink = float64(bounds.MaxWidth) / (w * scale)
	}
	if bounds.MaxHeight > 0 && h*scale*shrink > float64(bounds.MaxHeight) {
		shrink = float64(bounds.MaxHeight) / (h * scale)
	}
	scale *= shrink

	if scale == 1.0 {
		return img
	}

	dstW := int(w*scale + 0.5)
	dstH := int(h*scale + 0.5)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// encoderQuality converts a fractional quality to the encoder's 1-100 scale.
// The conversion rounds so repeated 0.1 steps land on exact multiples of ten
// (0.7-0.1 is 0.5999..., which must encode at 60, not 59).
func encoderQuality(q float64) int {
	return int(math.Round(q * 100))
}

// initialQuality picks the starting JPEG quality from how far the source
// size overshoots the budget: heavier overshoot starts lower.
func initialQuality(srcSize, budget int) float64 {
	if budget <= 0 {
		return 0.8
	}

	ratio := float64(srcSize) / float64(budget)
	switch {
	case ratio > 5:
		return 0.5
	case ratio > 2:
		return 0.6
	case ratio > 1.5:
		return 0.7
	default:
		return 0.8
	}
}
