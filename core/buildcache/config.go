package buildcache

const (
	BackendFile     = "file"
	BackendDatabase = "database"
)

// Config holds configuration for the build cache index.
type Config struct {
	// Backend selects where the index is persisted (file, database).
	Backend string `mapstructure:"backend" default:"file"`
	// IndexPath is the location of the JSON index for the file backend.
	IndexPath string `mapstructure:"index_path" default:"cache/build-index.json"`
}

// IsValidBackend checks if the configured backend is supported.
func (c Config) IsValidBackend() bool {
	switch c.Backend {
	case BackendFile, BackendDatabase:
		return true
	default:
		return false
	}
}
