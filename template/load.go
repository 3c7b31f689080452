package template

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound is returned by a Source that has no template for an id.
	ErrNotFound = errors.New("template: not found")

	// ErrUnknownFormat is returned for file extensions other than
	// .yaml, .yml and .json.
	ErrUnknownFormat = errors.New("template: unknown format")
)

// Format is a template document encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatOf picks the encoding from a file name's extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Decode parses a template document. Unknown fields are rejected so typos
// in authored templates surface instead of being silently ignored.
func Decode(data []byte, format Format) (*Template, error) {
	t := &Template{}
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(t); err != nil {
			return nil, fmt.Errorf("template: decode json: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(t); err != nil {
			return nil, fmt.Errorf("template: decode yaml: %w", err)
		}
	}
	return t, nil
}

// Load reads and decodes a template file, choosing the codec by extension.
func Load(path string) (*Template, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}
	return Decode(data, format)
}

// Source supplies immutable templates by id.
type Source interface {
	Template(ctx context.Context, id string) (*Template, error)
}

// DirSource loads <Dir>/<id>.yaml, .yml or .json and caches the result.
type DirSource struct {
	Dir string

	mu    sync.Mutex
	cache map[string]*Template
}

// NewDirSource returns a Source reading from dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir, cache: map[string]*Template{}}
}

// Template implements Source.
func (s *DirSource) Template(ctx context.Context, id string) (*Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.cache[id]; ok {
		return t, nil
	}
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		t, err := Load(filepath.Join(s.Dir, id+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if s.cache == nil {
			s.cache = map[string]*Template{}
		}
		s.cache[id] = t
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// MapSource serves templates from memory.
type MapSource map[string]*Template

// Template implements Source.
func (m MapSource) Template(ctx context.Context, id string) (*Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t, ok := m[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
}
