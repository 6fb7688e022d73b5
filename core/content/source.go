package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned by Source.Open when no entry has the given path.
var ErrNotFound = errors.New("content entry not found")

// RawEntry is one item listed by a Source.
type RawEntry struct {
	// Path is the slash-separated logical path inside the source.
	Path string
	// Size is the entry size in bytes, when known.
	Size int64
	// Dir is true for directory entries.
	Dir bool
}

// Source exposes the raw entries of one owner's content.
type Source interface {
	// Entries lists every entry of the source.
	Entries(ctx context.Context) ([]RawEntry, error)
	// Open opens the entry at the exact logical path.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Ref addresses one entry inside a Source.
type Ref struct {
	Source Source
	Path   string
}

// Open opens the referenced entry.
func (r Ref) Open(ctx context.Context) (io.ReadCloser, error) {
	if r.Source == nil {
		return nil, fmt.Errorf("%s: %w", r.Path, ErrNotFound)
	}
	return r.Source.Open(ctx, r.Path)
}

// ReadAll reads the referenced entry into memory.
func (r Ref) ReadAll(ctx context.Context) ([]byte, error) {
	rc, err := r.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.Path, err)
	}
	return data, nil
}

// cleanPath normalizes a logical path: forward slashes, no leading slash.
func cleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}
