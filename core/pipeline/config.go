package pipeline

// Config holds configuration for bundle generation.
type Config struct {
	// PluginsDir holds one sub-directory or archive per owner.
	PluginsDir string `mapstructure:"plugins_dir" default:"plugins"`
	// OutputDir receives the generated bundles.
	OutputDir string `mapstructure:"output_dir" default:"generated/bundles"`
	// Concurrency bounds the owners built at once.
	Concurrency int `mapstructure:"concurrency" default:"4"`
	// Publisher selects where bundles are published (local, bucket).
	Publisher string `mapstructure:"publisher" default:"local"`
	// Category selects the bundled entries (assets, data).
	Category string `mapstructure:"category" default:"assets"`
}

// IsValidPublisher checks if the configured publisher is known.
func (c Config) IsValidPublisher() bool {
	switch c.Publisher {
	case PublisherLocal, PublisherBucket:
		return true
	default:
		return false
	}
}
