package buildcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"content-manager/core/fingerprint"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Cache is the build-avoidance index. It is safe for concurrent use; reads
// never take a lock.
type Cache struct {
	store   Store
	fs      afero.Fs
	logger  *zap.Logger
	records sync.Map // owner -> Record

	persist   *persister
	closeOnce sync.Once
}

// New returns a cache persisting through store and hashing artifacts on fs.
// Call Load before use.
func New(store Store, fs afero.Fs, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{store: store, fs: fs, logger: logger}
	c.persist = newPersister(c.save, logger)
	return c
}

// Load reads the persisted index into memory, creating an empty one when
// none exists. An unreadable index is returned as an error wrapping
// ErrCorruptIndex and must abort startup.
func (c *Cache) Load(ctx context.Context) error {
	records, found, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading build cache: %w", err)
	}
	if !found {
		c.logger.Info("No build cache index found, initializing an empty one")
		if err := c.store.Save(ctx, nil); err != nil {
			return fmt.Errorf("initializing build cache index: %w", err)
		}
		return nil
	}

	for _, r := range records {
		c.records.Store(r.Owner, r)
	}
	c.logger.Info("Loaded build cache", zap.Int("records", len(records)))
	return nil
}

// IsCached reports whether the artifact at artifactPath is the up-to-date
// build of owner for the given source fingerprint. Any failure while
// checking returns false.
func (c *Cache) IsCached(owner string, source fingerprint.Fingerprint, artifactPath string) bool {
	l := c.logger.With(zap.String("owner", owner))

	rec, ok := c.Record(owner)
	if !ok {
		l.Debug("No build record")
		return false
	}
	if rec.Source != source {
		l.Debug("Source changed since last build",
			zap.String("recorded", rec.Source.Short()),
			zap.String("current", source.Short()))
		return false
	}

	current, err := fingerprint.File(c.fs, artifactPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.Info("Artifact missing, rebuild required", zap.String("path", artifactPath))
		} else {
			l.Warn("Failed to verify artifact, rebuild required", zap.String("path", artifactPath), zap.Error(err))
		}
		return false
	}
	if current != rec.Artifact {
		l.Warn("Artifact modified since last build, rebuild required",
			zap.String("path", artifactPath),
			zap.String("recorded", rec.Artifact.Short()),
			zap.String("current", current.Short()))
		return false
	}
	return true
}

// RecordBuild hashes the artifact, stores the record for owner and schedules
// persistence without waiting for it.
func (c *Cache) RecordBuild(owner string, source fingerprint.Fingerprint, artifactPath string) error {
	artifact, err := fingerprint.File(c.fs, artifactPath)
	if err != nil {
		return fmt.Errorf("fingerprinting artifact of %s: %w", owner, err)
	}
	c.records.Store(owner, Record{Owner: owner, Source: source, Artifact: artifact})
	c.persist.schedule()
	return nil
}

// Forget drops the record of owner so its next build runs unconditionally.
// It reports whether a record existed.
func (c *Cache) Forget(owner string) bool {
	if _, ok := c.records.LoadAndDelete(owner); !ok {
		return false
	}
	c.persist.schedule()
	return true
}

// ResolveArtifactFingerprint returns the recorded artifact fingerprint of
// owner, or hashes artifactPath when there is no record.
func (c *Cache) ResolveArtifactFingerprint(owner, artifactPath string) (fingerprint.Fingerprint, error) {
	if rec, ok := c.Record(owner); ok {
		return rec.Artifact, nil
	}
	return fingerprint.File(c.fs, artifactPath)
}

// Record returns the current record of owner.
func (c *Cache) Record(owner string) (Record, bool) {
	v, ok := c.records.Load(owner)
	if !ok {
		return Record{}, false
	}
	return v.(Record), true
}

// Records returns a snapshot of all records sorted by owner.
func (c *Cache) Records() []Record {
	var out []Record
	c.records.Range(func(_, v any) bool {
		out = append(out, v.(Record))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Owner < out[j].Owner })
	return out
}

// Flush waits until every persistence request made so far has been handled.
func (c *Cache) Flush() {
	c.persist.flush()
}

// Close flushes pending saves and stops the background persister.
func (c *Cache) Close() {
	c.closeOnce.Do(c.persist.close)
}

func (c *Cache) save(ctx context.Context) error {
	return c.store.Save(ctx, c.Records())
}
