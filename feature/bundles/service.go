package bundles

import (
	"context"
	"fmt"
	"sync"

	"content-manager/core/content"
	"content-manager/core/pipeline"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Service runs the pipeline over the discovered owners.
type Service struct {
	pipeline   *pipeline.Pipeline
	fs         afero.Fs
	pluginsDir string
	logger     *zap.Logger

	mu   sync.Mutex
	last *pipeline.Report
}

// NewService creates a new bundles service.
func NewService(p *pipeline.Pipeline, fs afero.Fs, pluginsDir string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{pipeline: p, fs: fs, pluginsDir: pluginsDir, logger: logger}
}

// Rebuild discovers owners, runs the pipeline and withdraws owners that are
// gone. Only discovery itself can fail; per-owner failures are in the report.
func (s *Service) Rebuild(ctx context.Context) (pipeline.Report, error) {
	sources, err := content.Discover(s.fs, s.pluginsDir, s.logger)
	if err != nil {
		return pipeline.Report{}, fmt.Errorf("discovering plugins: %w", err)
	}
	defer func() {
		if err := content.CloseAll(sources); err != nil {
			s.logger.Warn("Failed to close plugin sources", zap.Error(err))
		}
	}()

	report := s.pipeline.Run(ctx, sources)

	registry := s.pipeline.Registry()
	for _, d := range registry.All() {
		if _, ok := sources[d.Owner]; !ok {
			s.logger.Info("Withdrawing bundle of removed owner", zap.String("owner", d.Owner))
			registry.Withdraw(d.Owner)
		}
	}

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()
	return report, nil
}

// List returns every published descriptor.
func (s *Service) List() []pipeline.Descriptor {
	return s.pipeline.Registry().All()
}

// Get returns the descriptor of owner.
func (s *Service) Get(owner string) (pipeline.Descriptor, bool) {
	return s.pipeline.Registry().Get(owner)
}

// LastReport returns the report of the most recent rebuild.
func (s *Service) LastReport() (pipeline.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return pipeline.Report{}, false
	}
	return *s.last, true
}
