package structures

// Config holds configuration for structure pools.
type Config struct {
	// Enabled toggles the structures feature.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Declarations is the YAML file declaring the pools.
	Declarations string `mapstructure:"declarations" default:"structures.yaml"`
}
