package integrity

import (
	"context"
	"errors"

	"content-manager/core/buildcache"
	"content-manager/core/storage"
	"content-manager/feature/integrity/checks"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrStorageDisabled is returned by bucket checks when no storage is configured.
var ErrStorageDisabled = errors.New("object storage is not configured")

// Options wires the service to the components it inspects. Client and DB
// are optional.
type Options struct {
	Client       storage.Client
	Bucket       string
	DB           *gorm.DB
	Fs           afero.Fs
	Cache        *buildcache.Cache
	ArtifactPath func(owner string) string
}

// Service handles integrity checks.
type Service struct {
	opts   Options
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{opts: opts, logger: logger}
}

// CheckStructure returns a list of missing bucket folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	if s.opts.Client == nil {
		return nil, ErrStorageDisabled
	}
	return checks.CheckStructure(ctx, s.opts.Client, s.opts.Bucket)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	if s.opts.Client == nil {
		return ErrStorageDisabled
	}
	return checks.FixStructure(ctx, s.opts.Client, s.opts.Bucket, s.logger, missing)
}

// CheckArtifacts verifies every recorded artifact against its fingerprint.
func (s *Service) CheckArtifacts() checks.ArtifactReport {
	if s.opts.Cache == nil {
		return checks.CheckArtifacts(s.opts.Fs, nil, s.opts.ArtifactPath)
	}
	return checks.CheckArtifacts(s.opts.Fs, s.opts.Cache.Records(), s.opts.ArtifactPath)
}

// CheckDatabase verifies the build cache table schema.
func (s *Service) CheckDatabase() (*checks.DatabaseReport, error) {
	return checks.CheckDatabase(s.opts.DB)
}
