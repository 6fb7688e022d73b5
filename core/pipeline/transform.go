package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"content-manager/core/content"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// Transform produces the artifact of one owner at outputPath.
type Transform interface {
	Build(ctx context.Context, owner string, src content.Source, entries []content.Entry, outputPath string) error
}

// TransformFunc adapts a function to Transform.
type TransformFunc func(ctx context.Context, owner string, src content.Source, entries []content.Entry, outputPath string) error

// Build calls f.
func (f TransformFunc) Build(ctx context.Context, owner string, src content.Source, entries []content.Entry, outputPath string) error {
	return f(ctx, owner, src, entries, outputPath)
}

// archiveEpoch is the modification time stamped on every bundle entry, so
// equal input always yields byte-identical archives.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// ArchiveTransform packs the entries into a deflate zip bundle, keeping
// their full paths. Output is deterministic and written atomically.
type ArchiveTransform struct {
	fs afero.Fs
}

// NewArchiveTransform returns a transform writing bundles to fs.
func NewArchiveTransform(fs afero.Fs) *ArchiveTransform {
	return &ArchiveTransform{fs: fs}
}

// Build writes the bundle to a temp file next to outputPath and renames it
// into place once complete.
func (t *ArchiveTransform) Build(ctx context.Context, owner string, src content.Source, entries []content.Entry, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := t.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := afero.TempFile(t.fs, dir, filepath.Base(outputPath)+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp bundle: %w", err)
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		_ = tmp.Close()
		if !renamed {
			_ = t.fs.Remove(tmpName)
		}
	}()

	zw := zip.NewWriter(tmp)
	zw.SetComment("bundle of " + owner)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.copyEntry(ctx, zw, src, e); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp bundle: %w", err)
	}
	if err := t.fs.Rename(tmpName, outputPath); err != nil {
		return fmt.Errorf("committing bundle: %w", err)
	}
	renamed = true
	return nil
}

func (t *ArchiveTransform) copyEntry(ctx context.Context, zw *zip.Writer, src content.Source, e content.Entry) error {
	rc, err := src.Open(ctx, e.FullPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", e.FullPath, err)
	}
	defer rc.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     e.FullPath,
		Method:   zip.Deflate,
		Modified: archiveEpoch,
	})
	if err != nil {
		return fmt.Errorf("adding %s: %w", e.FullPath, err)
	}
	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("compressing %s: %w", e.FullPath, err)
	}
	return nil
}
