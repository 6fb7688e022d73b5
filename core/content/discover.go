package content

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ArchiveExtensions lists the file extensions treated as plugin archives.
var ArchiveExtensions = []string{".zip", ".jar"}

// Discover maps the owners found in dir to their sources. Every
// sub-directory is an owner named after the directory; every archive is an
// owner named after the file without extension. Unreadable archives are
// logged and skipped so one broken plugin does not hide the others.
func Discover(fs afero.Fs, dir string, logger *zap.Logger) (map[string]Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("reading plugins directory %s: %w", dir, err)
	}

	sources := make(map[string]Source, len(infos))
	for _, info := range infos {
		name := info.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)

		owner := name
		if !info.IsDir() {
			if !isArchive(strings.ToLower(filepath.Ext(name))) {
				continue
			}
			owner = strings.TrimSuffix(name, filepath.Ext(name))
		}
		if _, dup := sources[owner]; dup {
			logger.Warn("Duplicate plugin owner, keeping the first one", zap.String("owner", owner), zap.String("file", name))
			continue
		}

		if info.IsDir() {
			sources[owner] = NewDirSource(fs, full)
			continue
		}
		src, err := OpenZipSource(fs, full)
		if err != nil {
			logger.Warn("Skipping unreadable plugin archive", zap.String("file", full), zap.Error(err))
			continue
		}
		sources[owner] = src
	}
	return sources, nil
}

// Owners returns the owner names of sources in sorted order.
func Owners(sources map[string]Source) []string {
	owners := make([]string, 0, len(sources))
	for owner := range sources {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}

// CloseAll closes every source holding an open handle, such as archives.
func CloseAll(sources map[string]Source) error {
	var errs []error
	for owner, src := range sources {
		if c, ok := src.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing %s: %w", owner, err))
			}
		}
	}
	return errors.Join(errs...)
}

func isArchive(ext string) bool {
	for _, e := range ArchiveExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
