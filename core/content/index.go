package content

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Category separates gameplay data from client assets.
type Category int

const (
	// Data entries live under data/.
	Data Category = iota
	// Asset entries live under assets/.
	Asset
)

// String returns the path prefix of the category.
func (c Category) String() string {
	switch c {
	case Data:
		return "data"
	case Asset:
		return "assets"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory maps "data" or "assets" to its Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(s) {
	case "data":
		return Data, nil
	case "assets", "asset":
		return Asset, nil
	}
	return 0, fmt.Errorf("unknown content category %q", s)
}

// MinSegments is the smallest number of path segments an indexable entry
// has: category, namespace and file name.
const MinSegments = 3

// MetadataFiles are descriptor files that never enter the data collection.
var MetadataFiles = map[string]struct{}{
	"pack.mcmeta": {},
	"index.json":  {},
}

// Identifier names an entry within its category.
type Identifier struct {
	Namespace string
	Path      string
}

// String renders the identifier as "namespace:path".
func (id Identifier) String() string {
	return id.Namespace + ":" + id.Path
}

// ParseIdentifier parses "namespace:path". A missing namespace is an error.
func ParseIdentifier(s string) (Identifier, error) {
	ns, p, ok := strings.Cut(s, ":")
	if !ok || ns == "" || p == "" {
		return Identifier{}, fmt.Errorf("invalid identifier %q: want namespace:path", s)
	}
	return Identifier{Namespace: ns, Path: p}, nil
}

// Entry is one classified content file.
type Entry struct {
	Key       Identifier
	Namespace string
	// Type is the folder between namespace and file, empty when the file
	// sits directly under the namespace.
	Type     string
	Category Category
	FullPath string
}

// Index maps identifiers to entries for one source.
type Index struct {
	entries  [2]map[Identifier]Entry
	rejected []string
}

// BuildIndex classifies every non-directory entry of src exactly once.
// Only the listing itself can fail; malformed entries are logged and
// skipped.
func BuildIndex(ctx context.Context, src Source, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	raw, err := src.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing content entries: %w", err)
	}

	idx := &Index{entries: [2]map[Identifier]Entry{
		Data:  make(map[Identifier]Entry),
		Asset: make(map[Identifier]Entry),
	}}
	for _, re := range raw {
		if re.Dir {
			continue
		}
		entry, ok, err := classify(re.Path)
		if err != nil {
			logger.Warn("Skipping malformed content path", zap.String("path", re.Path), zap.Error(err))
			idx.rejected = append(idx.rejected, re.Path)
			continue
		}
		if !ok {
			continue
		}
		if entry.Category == Data {
			if _, meta := MetadataFiles[path.Base(entry.FullPath)]; meta || strings.HasSuffix(entry.FullPath, ".mcmeta") {
				continue
			}
		}
		if prev, dup := idx.entries[entry.Category][entry.Key]; dup {
			logger.Warn("Duplicate content identifier, keeping the first path",
				zap.String("id", entry.Key.String()),
				zap.String("kept", prev.FullPath),
				zap.String("skipped", entry.FullPath))
			continue
		}
		idx.entries[entry.Category][entry.Key] = entry
	}
	return idx, nil
}

// classify derives an Entry from a logical path. ok is false for paths
// outside data/ and assets/, which are not content.
func classify(p string) (Entry, bool, error) {
	p = cleanPath(p)
	segments := strings.Split(p, "/")

	var category Category
	switch segments[0] {
	case "data":
		category = Data
	case "assets":
		category = Asset
	default:
		return Entry{}, false, nil
	}

	if len(segments) < MinSegments {
		return Entry{}, false, fmt.Errorf("%d path segments, need at least %d", len(segments), MinSegments)
	}
	namespace := segments[1]
	if namespace == "" {
		return Entry{}, false, fmt.Errorf("empty namespace")
	}

	entry := Entry{Namespace: namespace, Category: category, FullPath: p}
	var key string
	if len(segments) == MinSegments {
		key = stripExt(segments[2])
	} else {
		entry.Type = segments[2]
		key = entry.Type + "/" + stripExt(strings.Join(segments[3:], "/"))
	}
	if key == "" || strings.HasSuffix(key, "/") {
		return Entry{}, false, fmt.Errorf("empty key")
	}
	entry.Key = Identifier{Namespace: namespace, Path: key}
	return entry, true, nil
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

// Get returns the entry with id in category.
func (idx *Index) Get(category Category, id Identifier) (Entry, bool) {
	e, ok := idx.entries[category][id]
	return e, ok
}

// Entries returns the entries of category sorted by full path.
func (idx *Index) Entries(category Category) []Entry {
	out := make([]Entry, 0, len(idx.entries[category]))
	for _, e := range idx.entries[category] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullPath < out[j].FullPath })
	return out
}

// Len returns the number of entries in category.
func (idx *Index) Len(category Category) int {
	return len(idx.entries[category])
}

// Rejected lists the paths skipped as malformed.
func (idx *Index) Rejected() []string {
	return append([]string(nil), idx.rejected...)
}
