package content

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// ZipSource serves the entries of a plugin archive (.zip or .jar).
//
// The central directory is read once at construction; entry streams are
// opened on demand and are safe to open concurrently.
type ZipSource struct {
	file   afero.File
	reader *zip.Reader
	byPath map[string]*zip.File
}

// OpenZipSource opens the archive at path on fs.
func OpenZipSource(fs afero.Fs, path string) (*ZipSource, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat archive %s: %w", path, err)
	}
	r, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading archive %s: %w", path, err)
	}

	s := &ZipSource{file: f, reader: r, byPath: make(map[string]*zip.File, len(r.File))}
	for _, zf := range r.File {
		s.byPath[cleanPath(zf.Name)] = zf
	}
	return s, nil
}

// Entries lists the archive's central directory.
func (s *ZipSource) Entries(ctx context.Context) ([]RawEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries := make([]RawEntry, 0, len(s.reader.File))
	for _, zf := range s.reader.File {
		entries = append(entries, RawEntry{
			Path: cleanPath(zf.Name),
			Size: int64(zf.UncompressedSize64),
			Dir:  strings.HasSuffix(zf.Name, "/") || zf.FileInfo().IsDir(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Open decompresses one archive entry.
func (s *ZipSource) Open(_ context.Context, p string) (io.ReadCloser, error) {
	zf, ok := s.byPath[cleanPath(p)]
	if !ok || zf.FileInfo().IsDir() {
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	rc, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", p, err)
	}
	return rc, nil
}

// Close releases the underlying archive file.
func (s *ZipSource) Close() error {
	return s.file.Close()
}
