package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// DirSource serves the files below a directory.
type DirSource struct {
	fs   afero.Fs
	root string
}

// NewDirSource returns a source rooted at root on fs.
func NewDirSource(fs afero.Fs, root string) *DirSource {
	return &DirSource{fs: fs, root: root}
}

// Entries walks the directory tree.
func (s *DirSource) Entries(ctx context.Context) ([]RawEntry, error) {
	var entries []RawEntry
	err := afero.Walk(s.fs, s.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		entries = append(entries, RawEntry{
			Path: cleanPath(filepath.ToSlash(rel)),
			Size: info.Size(),
			Dir:  info.IsDir(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.root, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Open opens a file relative to the root.
func (s *DirSource) Open(_ context.Context, p string) (io.ReadCloser, error) {
	full := filepath.Join(s.root, filepath.FromSlash(cleanPath(p)))
	f, err := s.fs.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("opening %s: %w", p, err)
	}
	info, err := f.Stat()
	if err == nil && info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s is a directory: %w", p, ErrNotFound)
	}
	return f, nil
}
