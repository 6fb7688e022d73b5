// Package config provides configuration management for the Content Manager.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file. Defaults come from the `default` struct tags of
// each partial configuration.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, public base URL)
//   - Database: MySQL or SQLite connection details
//   - Storage: S3/MinIO credentials and bucket settings
//   - Log: Logging level and format
//   - Cache: Build cache backend (file or database)
//   - Pipeline: Plugin directory, output directory, concurrency and publisher
//   - Structures: Structure pool declarations
//
// Nested keys map to upper-case environment variables joined by
// underscores, e.g. PIPELINE_CONCURRENCY -> pipeline.concurrency.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
