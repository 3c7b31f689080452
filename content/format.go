package content

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Format is an image encoding.
type Format int

// Supported image formats. GIF and WebP are decode-only.
const (
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatGIF
	FormatWebP
	FormatBMP
	FormatTIFF
)

var formatNames = [...]string{"unknown", "png", "jpeg", "gif", "webp", "bmp", "tiff"}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// MIME returns the media type of the format.
func (f Format) MIME() string {
	switch f {
	case FormatUnknown:
		return "application/octet-stream"
	case FormatJPEG:
		return "image/jpeg"
	}
	return "image/" + f.String()
}

// ParseFormat maps a format name or file extension (with or without the
// leading dot) to a Format.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, true
	case "jpg", "jpeg":
		return FormatJPEG, true
	case "gif":
		return FormatGIF, true
	case "webp":
		return FormatWebP, true
	case "bmp":
		return FormatBMP, true
	case "tif", "tiff":
		return FormatTIFF, true
	}
	return FormatUnknown, false
}

// MaxPixels bounds the pixel count of a decoded image. Larger images are
// rejected before their pixels are allocated.
const MaxPixels = 64 << 20

var (
	// ErrNotFound is returned by a Loader that has no content for a ref.
	ErrNotFound = errors.New("content: not found")

	// ErrUnsupportedFormat is returned when the encoded bytes are not one
	// of the supported image formats.
	ErrUnsupportedFormat = errors.New("content: unsupported format")

	// ErrTooLarge is returned for images with more than MaxPixels pixels.
	ErrTooLarge = errors.New("content: image too large")
)

// DecodeError reports content that was found but could not be decoded.
type DecodeError struct {
	Ref    string
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("content: decode %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("content: decode %q as %s: %v", e.Ref, e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Sniff identifies the image format from the leading bytes of data.
func Sniff(data []byte) Format {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return FormatUnknown
	}
	f, _ := ParseFormat(kind.Extension)
	return f
}

// Decode sniffs and decodes an encoded image. Errors are *DecodeError.
func Decode(data []byte) (image.Image, Format, error) {
	f := Sniff(data)
	if f == FormatUnknown {
		return nil, f, &DecodeError{Format: f, Err: ErrUnsupportedFormat}
	}
	dec := decoders[f]
	cfg, err := dec.config(bytes.NewReader(data))
	if err != nil {
		return nil, f, &DecodeError{Format: f, Err: err}
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, f, &DecodeError{Format: f, Err: fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)}
	}
	img, err := dec.decode(bytes.NewReader(data))
	if err != nil {
		return nil, f, &DecodeError{Format: f, Err: err}
	}
	return img, f, nil
}

type decoder struct {
	decode func(io.Reader) (image.Image, error)
	config func(io.Reader) (image.Config, error)
}

var decoders = map[Format]decoder{
	FormatPNG:  {png.Decode, png.DecodeConfig},
	FormatJPEG: {jpeg.Decode, jpeg.DecodeConfig},
	FormatGIF:  {gif.Decode, gif.DecodeConfig},
	FormatWebP: {webp.Decode, webp.DecodeConfig},
	FormatBMP:  {bmp.Decode, bmp.DecodeConfig},
	FormatTIFF: {tiff.Decode, tiff.DecodeConfig},
}

// Encode writes img to w in format f. quality applies to JPEG only and is
// clamped to [1, 100]; 0 selects 90.
func Encode(w io.Writer, img image.Image, f Format, quality int) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		if quality == 0 {
			quality = 90
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: min(max(quality, 1), 100)})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%w: cannot encode %s", ErrUnsupportedFormat, f)
}
