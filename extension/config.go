package extension

// Config holds the invoicer extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.invoicer" or "invoicer" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// OutputDir overrides the output folder stored in the company settings.
	OutputDir string `json:"output_dir" mapstructure:"output_dir" yaml:"output_dir"`

	// PageSize is how many records the engine reads per store call when
	// iterating invoices (default: 100).
	PageSize int `json:"page_size" mapstructure:"page_size" yaml:"page_size"`

	// EnableMetrics registers the Prometheus-backed metrics plugin.
	EnableMetrics bool `json:"enable_metrics" mapstructure:"enable_metrics" yaml:"enable_metrics"`

	// GroveDatabase is the name of a grove.DB registered in the DI container.
	// When set, the extension resolves this named database and auto-constructs
	// the appropriate store based on the driver type (pg/sqlite/mongo).
	// When empty and WithGroveDatabase was called, the default (unnamed) DB is used.
	GroveDatabase string `json:"grove_database" mapstructure:"grove_database" yaml:"grove_database"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PageSize: 100,
	}
}
