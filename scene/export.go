package scene

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/content"
)

// MaxExportScale bounds the export upsampling factor.
const MaxExportScale = 8

// ExportRaster paints tree at canvas resolution and upsamples the result
// by scale. Layout is never recomputed at the output size. A scale below
// 1 is treated as 1.
func ExportRaster(tree *Tree, scale int) *image.RGBA {
	scale = exportScale(scale)
	w, h := tree.PixelSize()
	dc := pairkit.NewContext(w, h)
	tree.Paint(dc)
	img := dc.Image()
	if scale == 1 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	xdraw.CatmullRom.Scale(dst, dst.Rect, img, img.Rect, xdraw.Src, nil)
	return dst
}

func exportScale(scale int) int {
	return min(max(scale, 1), MaxExportScale)
}

// ExportOptions selects the encoding of an export.
type ExportOptions struct {
	Format  content.Format
	Quality int
	Scale   int
}

// Blob is an encoded export.
type Blob struct {
	Data    []byte
	Format  content.Format
	Quality int
	Scale   int
	Width   int
	Height  int
}

// Sink receives finished exports.
type Sink interface {
	Write(ctx context.Context, b Blob) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, b Blob) error

// Write calls f.
func (f SinkFunc) Write(ctx context.Context, b Blob) error { return f(ctx, b) }

// WriterSink writes the encoded bytes to an io.Writer.
type WriterSink struct {
	W io.Writer
}

// Write copies b.Data to s.W.
func (s WriterSink) Write(ctx context.Context, b Blob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.W.Write(b.Data)
	return err
}

// Export rasterizes tree, encodes it and hands the blob to sink. An
// unknown format exports PNG.
func Export(ctx context.Context, tree *Tree, opts ExportOptions, sink Sink) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if opts.Format == content.FormatUnknown {
		opts.Format = content.FormatPNG
	}
	opts.Scale = exportScale(opts.Scale)

	img := ExportRaster(tree, opts.Scale)
	var buf bytes.Buffer
	if err := content.Encode(&buf, img, opts.Format, opts.Quality); err != nil {
		return fmt.Errorf("scene: export: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b := Blob{
		Data:    buf.Bytes(),
		Format:  opts.Format,
		Quality: opts.Quality,
		Scale:   opts.Scale,
		Width:   img.Rect.Dx(),
		Height:  img.Rect.Dy(),
	}
	pairkit.Logger().Debug("scene: export", "format", b.Format, "width", b.Width, "height", b.Height, "bytes", len(b.Data))
	if err := sink.Write(ctx, b); err != nil {
		return fmt.Errorf("scene: export sink: %w", err)
	}
	return nil
}
