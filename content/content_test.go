package content

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 40), B: 128, A: 255})
		}
	}
	return img
}

func encoded(t *testing.T, f Format) []byte {
	t.Helper()
	var buf bytes.Buffer
	if f == FormatGIF {
		if err := gif.Encode(&buf, testImage(4, 3), nil); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}
	if err := Encode(&buf, testImage(4, 3), f, 0); err != nil {
		t.Fatalf("Encode(%s): %v", f, err)
	}
	return buf.Bytes()
}

func TestDecodeSniffsFormat(t *testing.T) {
	for _, f := range []Format{FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatTIFF} {
		t.Run(f.String(), func(t *testing.T) {
			data := encoded(t, f)
			if got := Sniff(data); got != f {
				t.Errorf("Sniff() = %s, want %s", got, f)
			}
			img, got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if got != f || img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
				t.Errorf("Decode() = %v %s", img.Bounds(), got)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, _, err := Decode([]byte("definitely not an image"))
	var de *DecodeError
	if !errors.As(err, &de) || !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("garbage: error = %v", err)
	}

	truncated := encoded(t, FormatPNG)[:40]
	if _, f, err := Decode(truncated); err == nil || f != FormatPNG {
		t.Errorf("truncated png: format %s, error %v", f, err)
	}

	// A valid header announcing 20000x20000 pixels.
	huge := encoded(t, FormatPNG)
	binary.BigEndian.PutUint32(huge[16:], 20000)
	binary.BigEndian.PutUint32(huge[20:], 20000)
	binary.BigEndian.PutUint32(huge[29:], crc32.ChecksumIEEE(huge[12:29]))
	if _, _, err := Decode(huge); !errors.Is(err, ErrTooLarge) {
		t.Errorf("huge png: error = %v, want ErrTooLarge", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"png", FormatPNG, true},
		{".JPG", FormatJPEG, true},
		{"jpeg", FormatJPEG, true},
		{"tif", FormatTIFF, true},
		{"webp", FormatWebP, true},
		{"svg", FormatUnknown, false},
	}
	for _, tt := range tests {
		got, ok := ParseFormat(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseFormat(%q) = %s, %v", tt.in, got, ok)
		}
	}
	if FormatJPEG.MIME() != "image/jpeg" || FormatPNG.MIME() != "image/png" {
		t.Error("unexpected MIME types")
	}
	if err := Encode(&bytes.Buffer{}, testImage(1, 1), FormatWebP, 0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Encode(webp) error = %v", err)
	}
}

func TestLoaders(t *testing.T) {
	ctx := context.Background()
	png := encoded(t, FormatPNG)
	fsys := fstest.MapFS{
		"photos/a.png": {Data: png},
		"broken.jpg":   {Data: []byte("nope")},
	}
	l := FSLoader{FS: fsys}

	if img, err := l.Load(ctx, "photos/a.png"); err != nil || img.Bounds().Dx() != 4 {
		t.Errorf("Load(photos/a.png) = %v, %v", img, err)
	}
	if _, err := l.Load(ctx, "/photos/a.png"); err != nil {
		t.Errorf("leading slash: %v", err)
	}
	for _, ref := range []string{"missing.png", "../etc/passwd", ""} {
		if _, err := l.Load(ctx, ref); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load(%q) error = %v, want ErrNotFound", ref, err)
		}
	}
	_, err := l.Load(ctx, "broken.jpg")
	var de *DecodeError
	if !errors.As(err, &de) || de.Ref != "broken.jpg" {
		t.Errorf("Load(broken.jpg) error = %v", err)
	}

	chain := Chain(ImageLoader{"mem": testImage(2, 2)}, BytesLoader{"bytes.png": png}, l)
	for _, ref := range []string{"mem", "bytes.png", "photos/a.png"} {
		if _, err := chain.Load(ctx, ref); err != nil {
			t.Errorf("Chain.Load(%q) = %v", ref, err)
		}
	}
	if _, err := chain.Load(ctx, "nowhere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Chain miss error = %v", err)
	}
	if _, err := chain.Load(ctx, "broken.jpg"); !errors.As(err, &de) {
		t.Errorf("Chain should stop at decode errors, got %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := (BytesLoader{}).Load(canceled, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled load error = %v", err)
	}
}

type countingLoader struct {
	calls atomic.Int32
	inner Loader
}

func (c *countingLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	c.calls.Add(1)
	return c.inner.Load(ctx, ref)
}

func TestArenaLoadsOnce(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 14, 13))
	l := &countingLoader{inner: ImageLoader{"a": src}}
	a := NewArena(l, 0)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := a.Image(context.Background(), "a")
			if err != nil || img.Rect != image.Rect(0, 0, 4, 3) {
				t.Errorf("Image(a) = %v, %v", img.Rect, err)
			}
		}()
	}
	wg.Wait()
	if n := l.calls.Load(); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
	if _, ok := a.Lookup("a"); !ok {
		t.Error("Lookup(a) missed after load")
	}
}

func TestArenaRemembersFailures(t *testing.T) {
	l := &countingLoader{inner: ImageLoader{}}
	a := NewArena(l, 0)
	ctx := context.Background()

	for range 3 {
		if _, err := a.Image(ctx, "gone"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Image(gone) error = %v", err)
		}
	}
	if n := l.calls.Load(); n != 1 || !a.Failed("gone") {
		t.Errorf("calls = %d, Failed = %v", n, a.Failed("gone"))
	}
	a.Forget("gone")
	_, _ = a.Image(ctx, "gone")
	if n := l.calls.Load(); n != 2 {
		t.Errorf("Forget should allow a retry, calls = %d", n)
	}
}

func TestArenaPrefetchAndRetain(t *testing.T) {
	a := NewArena(ImageLoader{
		"bg":    testImage(2, 2),
		"left":  testImage(2, 2),
		"right": testImage(2, 2),
	}, 0)
	ctx := context.Background()

	if err := a.Prefetch(ctx, []string{"bg", "left", "right", "missing", ""}); err != nil {
		t.Fatalf("Prefetch() error: %v", err)
	}
	if a.Len() != 3 || !a.Failed("missing") {
		t.Fatalf("Len() = %d, Failed(missing) = %v", a.Len(), a.Failed("missing"))
	}

	released := a.Retain(map[string]bool{"bg": true, "right": true})
	if released != 1 || a.Len() != 2 {
		t.Errorf("Retain released %d, Len() = %d", released, a.Len())
	}
	if _, ok := a.Lookup("left"); ok {
		t.Error("left should be released")
	}
	if a.Failed("missing") {
		t.Error("Retain should drop unreferenced failures")
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := a.Prefetch(canceled, []string{"left"}); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled Prefetch error = %v", err)
	}
	if a.Failed("left") {
		t.Error("cancellation must not be recorded as a failure")
	}
}

func TestNilArena(t *testing.T) {
	var a *Arena
	if _, ok := a.Lookup("x"); ok || a.Len() != 0 || a.Retain(nil) != 0 || a.Failed("x") {
		t.Error("nil arena should behave as empty")
	}
}

func TestToRGBA(t *testing.T) {
	rgba := testImage(3, 3)
	if ToRGBA(rgba) != rgba {
		t.Error("origin-based RGBA should pass through")
	}
	sub := rgba.SubImage(image.Rect(1, 1, 3, 3))
	out := ToRGBA(sub)
	if out.Rect != image.Rect(0, 0, 2, 2) || out.RGBAAt(0, 0) != rgba.RGBAAt(1, 1) {
		t.Errorf("ToRGBA(sub) = %v %v", out.Rect, out.RGBAAt(0, 0))
	}
}
