// Package photo turns an uploaded file into an embeddable image.
package photo

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"io"

	"github.com/couchcryptid/bugwatch/internal/domain"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
)

const thumbnailQuality = 85

// DefaultMaxPixels caps decoded image area. Compressed uploads far below the
// byte limit can still expand to gigabytes once decoded.
const DefaultMaxPixels = 24_000_000

var supportedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Decoder validates uploads and prepares them for embedding.
type Decoder struct {
	maxBytes     int64
	maxDimension int
	maxPixels    int64
}

// NewDecoder creates a Decoder that rejects uploads above maxBytes and
// downscales images whose longest side exceeds maxDimension. Images above
// DefaultMaxPixels are rejected; see WithMaxPixels.
func NewDecoder(maxBytes int64, maxDimension int) *Decoder {
	return &Decoder{maxBytes: maxBytes, maxDimension: maxDimension, maxPixels: DefaultMaxPixels}
}

// WithMaxPixels sets the largest accepted width*height. Values below 1 keep
// the current limit.
func (d *Decoder) WithMaxPixels(n int64) *Decoder {
	if n > 0 {
		d.maxPixels = n
	}
	return d
}

// MaxBytes is the upload size limit.
func (d *Decoder) MaxBytes() int64 { return d.maxBytes }

// Decode reads an upload. Errors are *domain.SubmissionError values of kind
// validation (missing, too large, not an image) or I/O (unreadable, corrupt).
func (d *Decoder) Decode(r io.Reader) (domain.Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, d.maxBytes+1))
	if err != nil {
		return domain.Photo{}, domain.NewIOError("photo", "Could not read file", err)
	}
	if len(data) == 0 {
		return domain.Photo{}, domain.NewValidationError("photo", "Please attach a photo of the bug so others can verify the sighting.")
	}
	if int64(len(data)) > d.maxBytes {
		return domain.Photo{}, domain.NewValidationError("photo",
			fmt.Sprintf("Photo is larger than the %s limit.", humanize.IBytes(uint64(d.maxBytes))))
	}

	mimeType := mimetype.Detect(data).String()
	if !supportedTypes[mimeType] {
		return domain.Photo{}, domain.NewValidationError("photo", "Photo must be a JPEG, PNG, GIF or WebP image.")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.Photo{}, domain.NewIOError("photo", "Could not read image", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > d.maxPixels {
		return domain.Photo{}, domain.NewValidationError("photo",
			fmt.Sprintf("Photo is %dx%d pixels; the limit is %s pixels.", cfg.Width, cfg.Height, humanize.Comma(d.maxPixels)))
	}

	sum := sha256.Sum256(data)
	p := domain.Photo{
		MIMEType: mimeType,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Digest:   hex.EncodeToString(sum[:]),
		Data:     data,
	}

	orientation := 1
	if mimeType == "image/jpeg" {
		if x, err := exif.Decode(bytes.NewReader(data)); err == nil {
			orientation = exifOrientation(x)
			if taken, err := x.DateTime(); err == nil {
				p.TakenAt = taken
			}
		}
	}

	if max(cfg.Width, cfg.Height) <= d.maxDimension && orientation == 1 {
		return p, nil
	}

	thumb, bounds, err := d.thumbnail(data, orientation)
	if err != nil {
		return domain.Photo{}, domain.NewIOError("photo", "Could not read image", err)
	}
	p.Data = thumb
	p.MIMEType = "image/jpeg"
	p.Width = bounds.Dx()
	p.Height = bounds.Dy()
	return p, nil
}

// DataURL encodes the photo as a self-contained data URL.
func DataURL(p domain.Photo) string {
	return "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// thumbnail decodes, orients and downscales the image, re-encoding it as JPEG.
func (d *Decoder) thumbnail(data []byte, orientation int) ([]byte, image.Rectangle, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	src = orient(src, orientation)

	w, h := fitWithin(src.Bounds().Dx(), src.Bounds().Dy(), d.maxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), dst.Bounds(), nil
}

// fitWithin scales w x h so the longest side is at most limit, keeping the
// aspect ratio. Sides never drop below one pixel.
func fitWithin(w, h, limit int) (int, int) {
	longest := max(w, h)
	if longest <= limit {
		return w, h
	}
	scale := float64(limit) / float64(longest)
	return max(1, int(float64(w)*scale+0.5)), max(1, int(float64(h)*scale+0.5))
}

func exifOrientation(x *exif.Exif) int {
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

// orient applies an EXIF orientation (2-8) so the image displays upright.
func orient(src image.Image, orientation int) image.Image {
	if orientation < 2 || orientation > 8 {
		return src
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch orientation {
			case 2: // mirror horizontal
				dx, dy = w-1-x, y
			case 3: // rotate 180
				dx, dy = w-1-x, h-1-y
			case 4: // mirror vertical
				dx, dy = x, h-1-y
			case 5: // transpose
				dx, dy = y, x
			case 6: // rotate 90 clockwise
				dx, dy = h-1-y, x
			case 7: // transverse
				dx, dy = h-1-y, w-1-x
			case 8: // rotate 90 counter-clockwise
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
