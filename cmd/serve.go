package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-manager/core/loader"
	"content-manager/core/logger"
	"content-manager/core/middleware/auth"
	"content-manager/core/middleware/rayid"
	"content-manager/core/pipeline"

	"content-manager/feature/bundles"
	"content-manager/feature/integrity"
	"content-manager/feature/structures"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "content-manager/docs/swagger"
)

// @title Content Manager API
// @version 1.0
// @description API for plugin content bundles and weighted structure pools.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"start"},
	Short:   "Start the content manager server",
	Long:    `Builds all bundles, loads the structure pools and starts the HTTP server with all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Bootstrap configuration, logger, storage, cache and pipeline
		rt, err := bootstrap(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer rt.Close()
		logg := rt.logg

		// 2. Initial Build
		bundleSvc := bundles.NewService(rt.pipeline, rt.fs, rt.cfg.Pipeline.PluginsDir, logg)
		if _, err := bundleSvc.Rebuild(ctx); err != nil {
			logg.Fatal("Initial bundle build failed", zap.Error(err))
		}

		// 3. Load Structure Pools
		structureSvc, err := loadStructures(ctx, rt)
		if err != nil {
			logg.Fatal("Failed to load structure pools", zap.Error(err))
		}
		defer structureSvc.Close()

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 5. Initialize Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(bundles.NewFeature(bundleSvc))
		mgr.Register(structures.NewFeature(structureSvc, rt.cfg.Structures, logg))
		mgr.Register(integrity.NewFeature(integrity.Options{
			Client:       rt.store,
			Bucket:       rt.cfg.Storage.Bucket,
			DB:           rt.db,
			Fs:           rt.fs,
			Cache:        rt.cache,
			ArtifactPath: rt.pipeline.ArtifactPath,
		}, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			l.Info("Request handled",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("duration", time.Since(start)),
			)
			return err
		})

		// 3. Swagger Documentation and Artifacts (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Static(pipeline.ArtifactRoute, rt.cfg.Pipeline.OutputDir)

		// 4. Auth (Protect API)
		app.Use(auth.New(auth.Config{
			ApiKey: rt.cfg.Server.ApiKey,
			Skip:   []string{"/swagger", pipeline.ArtifactRoute},
		}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server",
				zap.String("address", rt.cfg.Server.Address()),
				zap.String("public_url", rt.cfg.Server.PublicURL()))
			if err := app.Listen(rt.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		timeout := time.Duration(rt.cfg.Server.ShutdownSeconds) * time.Second
		if err := app.ShutdownWithTimeout(timeout); err != nil {
			logg.Warn("Server shutdown incomplete", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
