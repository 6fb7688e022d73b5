package buildcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
)

// Store persists the complete record index.
type Store interface {
	// Load returns the persisted records. found is false when no index
	// exists yet. A present but unreadable index returns an error wrapping
	// ErrCorruptIndex.
	Load(ctx context.Context) (records []Record, found bool, err error)
	// Save replaces the persisted index with records.
	Save(ctx context.Context, records []Record) error
}

// FileStore keeps the index in a single JSON document.
type FileStore struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store writing to path on fs.
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// Path returns the index location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and decodes the index document.
func (s *FileStore) Load(_ context.Context) ([]Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, true, fmt.Errorf("%w: reading %s: %v", ErrCorruptIndex, s.path, err)
	}

	var doc map[string]indexEntry
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, true, fmt.Errorf("%w: decoding %s: %v", ErrCorruptIndex, s.path, err)
	}

	records := make([]Record, 0, len(doc))
	for owner, e := range doc {
		records = append(records, Record{Owner: owner, Source: e.SourceFingerprint, Artifact: e.ArtifactFingerprint})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Owner < records[j].Owner })
	return records, true, nil
}

// Save writes the whole document to a temp file and renames it into place,
// so readers never observe a partial index.
func (s *FileStore) Save(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := make(map[string]indexEntry, len(records))
	for _, r := range records {
		doc[r.Owner] = indexEntry{SourceFingerprint: r.Source, ArtifactFingerprint: r.Artifact}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding build index: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	return writeFileAtomic(s.fs, s.path, data)
}

func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	tmp, err := afero.TempFile(fs, filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp index: %w", err)
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		_ = tmp.Close()
		if !renamed {
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp index: %w", err)
	}
	_ = tmp.Sync() // best-effort durability
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp index: %w", err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	renamed = true
	return nil
}
