package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"content-manager/core/buildcache"
	"content-manager/core/content"
	"content-manager/core/fingerprint"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoContent is returned for owners without entries in the bundled category.
var ErrNoContent = errors.New("owner has no bundle content")

// Options configures a Pipeline.
type Options struct {
	// OutputDir receives one artifact per owner.
	OutputDir string
	// Concurrency bounds the owners processed at once by Run.
	Concurrency int
	// Category selects which index entries are bundled.
	Category content.Category
	// Transform builds artifacts. Required.
	Transform Transform
	// Publisher exposes artifacts. Defaults to a relative LocalPublisher.
	Publisher Publisher
	Logger    *zap.Logger
}

// Pipeline builds, caches and publishes owner bundles.
type Pipeline struct {
	cache    *buildcache.Cache
	registry *Registry
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
	runMu    sync.Mutex
}

// Outcome is what Process did for one owner.
type Outcome int

const (
	// Built means the transform ran.
	Built Outcome = iota
	// Skipped means the cached artifact was reused.
	Skipped
)

// Report summarizes a Run.
type Report struct {
	Built    []string          `json:"built"`
	Skipped  []string          `json:"skipped"`
	Empty    []string          `json:"empty"`
	Failed   map[string]string `json:"failed"`
	Duration time.Duration     `json:"duration"`
}

// New returns a pipeline recording builds in cache and publishing into registry.
func New(cache *buildcache.Cache, registry *Registry, opts Options) (*Pipeline, error) {
	if cache == nil || registry == nil {
		return nil, errors.New("pipeline requires a build cache and a registry")
	}
	if opts.Transform == nil {
		return nil, errors.New("pipeline requires a transform")
	}
	if opts.Publisher == nil {
		opts.Publisher = LocalPublisher{}
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cache: cache, registry: registry, opts: opts, logger: logger, now: time.Now}, nil
}

// Registry returns the registry descriptors are published to.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// ArtifactPath returns the deterministic artifact location of owner.
func (p *Pipeline) ArtifactPath(owner string) string {
	return filepath.Join(p.opts.OutputDir, SanitizeOwner(owner)+".zip")
}

// SanitizeOwner maps an owner id to a file-name-safe form. Ids that need
// rewriting get a short hash of the original appended, so "my plugin" and
// "my_plugin" never share an artifact.
func SanitizeOwner(owner string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, owner)
	if safe == owner {
		return safe
	}
	return safe + "-" + fingerprint.Of([]byte(owner)).Short()
}

// Process runs the pipeline for one owner. On any error the owner's
// descriptor is withdrawn and the error returned.
func (p *Pipeline) Process(ctx context.Context, owner string, src content.Source) (Descriptor, Outcome, error) {
	l := p.logger.With(zap.String("owner", owner))

	d, outcome, err := p.process(ctx, owner, src, l)
	if err != nil {
		p.registry.Withdraw(owner)
		if errors.Is(err, ErrNoContent) {
			l.Debug("Owner has nothing to bundle")
		} else {
			l.Error("Bundle unavailable", zap.Error(err))
		}
		return Descriptor{}, outcome, err
	}
	p.registry.Publish(d)
	return d, outcome, nil
}

func (p *Pipeline) process(ctx context.Context, owner string, src content.Source, l *zap.Logger) (Descriptor, Outcome, error) {
	idx, err := content.BuildIndex(ctx, src, l)
	if err != nil {
		return Descriptor{}, Built, fmt.Errorf("indexing: %w", err)
	}
	entries := idx.Entries(p.opts.Category)
	if len(entries) == 0 {
		return Descriptor{}, Built, ErrNoContent
	}

	source, err := p.sourceFingerprint(ctx, src, entries)
	if err != nil {
		return Descriptor{}, Built, err
	}

	artifact := p.ArtifactPath(owner)
	outcome := Skipped
	if !p.cache.IsCached(owner, source, artifact) {
		outcome = Built
		start := p.now()
		if err := p.opts.Transform.Build(ctx, owner, src, entries, artifact); err != nil {
			return Descriptor{}, outcome, fmt.Errorf("building artifact: %w", err)
		}
		if err := p.cache.RecordBuild(owner, source, artifact); err != nil {
			return Descriptor{}, outcome, err
		}
		l.Info("Built bundle",
			zap.Int("entries", len(entries)),
			zap.String("source", source.Short()),
			zap.Duration("took", p.now().Sub(start)))
	} else {
		l.Debug("Bundle up to date", zap.String("source", source.Short()))
	}

	fp, err := p.cache.ResolveArtifactFingerprint(owner, artifact)
	if err != nil {
		return Descriptor{}, outcome, fmt.Errorf("resolving artifact fingerprint: %w", err)
	}
	uri, err := p.opts.Publisher.Publish(ctx, owner, artifact, fp)
	if err != nil {
		return Descriptor{}, outcome, fmt.Errorf("publishing: %w", err)
	}

	return Descriptor{
		Owner:       owner,
		URI:         uri,
		Fingerprint: fp,
		Cached:      outcome == Skipped,
		BuiltAt:     p.now().UTC(),
	}, outcome, nil
}

// sourceFingerprint digests the entries in path order.
func (p *Pipeline) sourceFingerprint(ctx context.Context, src content.Source, entries []content.Entry) (fingerprint.Fingerprint, error) {
	b := fingerprint.NewBuilder()
	for _, e := range entries {
		rc, err := src.Open(ctx, e.FullPath)
		if err != nil {
			return fingerprint.Zero, fmt.Errorf("opening %s: %w", e.FullPath, err)
		}
		err = b.Add(e.FullPath, rc)
		rc.Close()
		if err != nil {
			return fingerprint.Zero, fmt.Errorf("fingerprinting %s: %w", e.FullPath, err)
		}
	}
	return b.Sum(), nil
}

// Run processes every owner with bounded concurrency. Runs do not overlap.
func (p *Pipeline) Run(ctx context.Context, sources map[string]content.Source) Report {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := p.now()
	var (
		mu     sync.Mutex
		report = Report{Built: []string{}, Skipped: []string{}, Empty: []string{}, Failed: map[string]string{}}
		g      errgroup.Group
	)
	g.SetLimit(p.opts.Concurrency)

	for _, owner := range content.Owners(sources) {
		src := sources[owner]
		g.Go(func() error {
			_, outcome, err := p.Process(ctx, owner, src)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrNoContent):
				report.Empty = append(report.Empty, owner)
			case err != nil:
				report.Failed[owner] = err.Error()
			case outcome == Skipped:
				report.Skipped = append(report.Skipped, owner)
			default:
				report.Built = append(report.Built, owner)
			}
			// Owner failures never cancel the others.
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(report.Built)
	sort.Strings(report.Skipped)
	sort.Strings(report.Empty)
	report.Duration = p.now().Sub(start)

	p.logger.Info("Pipeline run finished",
		zap.Int("built", len(report.Built)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("empty", len(report.Empty)),
		zap.Int("failed", len(report.Failed)),
		zap.Duration("took", report.Duration))
	return report
}
