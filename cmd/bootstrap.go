package cmd

import (
	"context"
	"errors"
	"fmt"

	"content-manager/core/buildcache"
	"content-manager/core/config"
	"content-manager/core/content"
	"content-manager/core/database"
	"content-manager/core/logger"
	"content-manager/core/pipeline"
	"content-manager/core/storage"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime carries the components shared by every command.
type runtime struct {
	cfg      *config.Config
	logg     *zap.Logger
	fs       afero.Fs
	db       *gorm.DB
	store    storage.Client
	cache    *buildcache.Cache
	pipeline *pipeline.Pipeline
}

// bootstrap loads configuration and wires storage, the build cache and the
// pipeline. A corrupt build index is returned as an error wrapping
// buildcache.ErrCorruptIndex.
func bootstrap(ctx context.Context) (*runtime, error) {
	// 1. Load Configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if !cfg.Cache.IsValidBackend() {
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
	if !cfg.Pipeline.IsValidPublisher() {
		return nil, fmt.Errorf("unsupported publisher %q", cfg.Pipeline.Publisher)
	}
	category, err := content.ParseCategory(cfg.Pipeline.Category)
	if err != nil {
		return nil, err
	}

	// 2. Initialize Logger
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	rt := &runtime{cfg: cfg, logg: logg, fs: afero.NewOsFs()}

	// 3. Connect to Database (required by the database cache backend only)
	if conn, err := database.Connect(cfg.Database); err != nil {
		if cfg.Cache.Backend == buildcache.BackendDatabase {
			return nil, fmt.Errorf("database connection required by cache backend: %w", err)
		}
		logg.Warn("Optional database connection failed", zap.Error(err))
	} else {
		rt.db = conn
		logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))
	}

	// 4. Initialize Storage
	if cfg.Storage.Enabled {
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := storage.EnsureBucket(ctx, store, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return nil, err
		}
		rt.store = store
	} else if cfg.Pipeline.Publisher == pipeline.PublisherBucket {
		return nil, errors.New("bucket publisher requires storage to be enabled")
	}

	// 5. Load Build Cache
	var cacheStore buildcache.Store = buildcache.NewFileStore(rt.fs, cfg.Cache.IndexPath)
	if cfg.Cache.Backend == buildcache.BackendDatabase {
		cacheStore = buildcache.NewDBStore(rt.db)
	}
	rt.cache = buildcache.New(cacheStore, rt.fs, logg)
	if err := rt.cache.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load build cache: %w", err)
	}

	// 6. Assemble Pipeline
	var publisher pipeline.Publisher = pipeline.LocalPublisher{BaseURL: cfg.Server.PublicURL()}
	if cfg.Pipeline.Publisher == pipeline.PublisherBucket {
		publisher = pipeline.NewBucketPublisher(rt.store, rt.fs, cfg.Storage.Bucket, cfg.Storage.PublicURL)
	}
	rt.pipeline, err = pipeline.New(rt.cache, pipeline.NewRegistry(), pipeline.Options{
		OutputDir:   cfg.Pipeline.OutputDir,
		Concurrency: cfg.Pipeline.Concurrency,
		Category:    category,
		Transform:   pipeline.NewArchiveTransform(rt.fs),
		Publisher:   publisher,
		Logger:      logg,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}

	return rt, nil
}

// Close flushes the build cache and syncs the logger.
func (rt *runtime) Close() {
	if rt.cache != nil {
		rt.cache.Close()
	}
	_ = rt.logg.Sync()
}
