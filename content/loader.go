package content

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"strings"
)

// Loader resolves a content reference to a decoded image. Implementations
// must be safe for concurrent use. A failed load means "no image" to the
// renderer; it is never fatal.
type Loader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, ref string) (image.Image, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, ref string) (image.Image, error) {
	return f(ctx, ref)
}

// FSLoader loads encoded images from a file system. References are
// slash-separated paths relative to the file system root.
type FSLoader struct {
	FS fs.FS
}

// NewDirLoader returns a loader reading from the directory dir.
func NewDirLoader(dir string) FSLoader {
	return FSLoader{FS: os.DirFS(dir)}
}

// Load implements Loader.
func (l FSLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimPrefix(ref, "/")
	if !fs.ValidPath(name) || name == "." {
		return nil, fmt.Errorf("%w: invalid ref %q", ErrNotFound, ref)
	}
	data, err := fs.ReadFile(l.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("content: read %q: %w", ref, err)
	}
	return decodeRef(ref, data)
}

// BytesLoader serves encoded images held in memory.
type BytesLoader map[string][]byte

// Load implements Loader.
func (l BytesLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := l[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	return decodeRef(ref, data)
}

// ImageLoader serves already decoded images.
type ImageLoader map[string]image.Image

// Load implements Loader.
func (l ImageLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, ok := l[ref]
	if !ok || img == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	return img, nil
}

// Chain returns a Loader that tries each loader in order and returns the
// first image found. Only ErrNotFound moves on to the next loader.
func Chain(loaders ...Loader) Loader {
	return LoaderFunc(func(ctx context.Context, ref string) (image.Image, error) {
		for _, l := range loaders {
			img, err := l.Load(ctx, ref)
			if err == nil {
				return img, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ref)
	})
}

func decodeRef(ref string, data []byte) (image.Image, error) {
	img, _, err := Decode(data)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Ref = ref
		}
		return nil, err
	}
	return img, nil
}
