// Package extension provides the Forge extension adapter for the invoicer.
//
// It implements the forge.Extension interface to integrate the invoicer
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.invoicer" or "invoicer" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	"github.com/xraph/invoicer"
	"github.com/xraph/invoicer/observability"
	"github.com/xraph/invoicer/store"
	"github.com/xraph/invoicer/store/memory"
	"github.com/xraph/invoicer/store/mongo"
	"github.com/xraph/invoicer/store/postgres"
	"github.com/xraph/invoicer/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "invoicer"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Sequential PDF invoice generation with durable records"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the invoicer as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *invoicer.Invoicer
	store      store.Store
	engineOpts []invoicer.Option
	useGrove   bool
}

// New creates a new invoicer Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Invoicer instance.
// This is nil until Register is called.
func (e *Extension) Engine() *invoicer.Invoicer { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.store == nil && e.useGrove {
		s, err := e.resolveGroveStore(fapp.Container())
		if err != nil {
			return err
		}
		e.store = s
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	eng := invoicer.New(e.store, e.buildEngineOpts()...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*invoicer.Invoicer, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("invoicer: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("invoicer: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs invoicer.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []invoicer.Option {
	opts := make([]invoicer.Option, 0, len(e.engineOpts)+3)

	if e.config.OutputDir != "" {
		opts = append(opts, invoicer.WithOutputDir(e.config.OutputDir))
	}
	if e.config.PageSize > 0 {
		opts = append(opts, invoicer.WithPageSize(e.config.PageSize))
	}
	if e.config.EnableMetrics {
		opts = append(opts, invoicer.WithPlugin(
			observability.NewMetricsExtension(observability.NewPrometheusFactory(nil)),
		))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// resolveGroveStore builds a store over the grove.DB registered in the
// container, picking the backend from the driver name.
func (e *Extension) resolveGroveStore(c vessel.Vessel) (store.Store, error) {
	var (
		db  *grove.DB
		err error
	)
	if e.config.GroveDatabase != "" {
		db, err = vessel.InjectNamed[*grove.DB](c, e.config.GroveDatabase)
	} else {
		db, err = vessel.Inject[*grove.DB](c)
	}
	if err != nil {
		return nil, fmt.Errorf("invoicer: resolve grove database %q: %w", e.config.GroveDatabase, err)
	}

	s, err := storeForDriver(db)
	if err != nil {
		return nil, err
	}

	e.Logger().Debug("invoicer: using grove database",
		forge.F("name", e.config.GroveDatabase),
		forge.F("driver", db.Driver().Name()),
	)
	return s, nil
}

func storeForDriver(db *grove.DB) (store.Store, error) {
	switch name := db.Driver().Name(); name {
	case "pg":
		return postgres.New(db), nil
	case "sqlite":
		return sqlite.New(db), nil
	case "mongo":
		return mongo.New(db), nil
	default:
		return nil, fmt.Errorf("invoicer: unsupported grove driver %q", name)
	}
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("invoicer: configuration is required but not found in config files; " +
				"ensure 'extensions.invoicer' or 'invoicer' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
		if e.config.GroveDatabase != "" {
			e.useGrove = true
		}
	}

	e.Logger().Debug("invoicer: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("output_dir", e.config.OutputDir),
		forge.F("page_size", e.config.PageSize),
		forge.F("enable_metrics", e.config.EnableMetrics),
		forge.F("grove_database", e.config.GroveDatabase),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	for _, key := range []string{"extensions.invoicer", "invoicer"} {
		if !cm.IsSet(key) {
			continue
		}
		if err := cm.Bind(key, &cfg); err != nil {
			e.Logger().Warn("invoicer: failed to bind config",
				forge.F("key", key),
				forge.F("error", err.Error()),
			)
			continue
		}
		e.Logger().Debug("invoicer: loaded config from file",
			forge.F("key", key),
		)
		return cfg, true
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.PageSize == 0 {
		cfg.PageSize = defaults.PageSize
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.EnableMetrics {
		yamlConfig.EnableMetrics = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.OutputDir == "" {
		yamlConfig.OutputDir = programmaticConfig.OutputDir
	}
	if yamlConfig.GroveDatabase == "" {
		yamlConfig.GroveDatabase = programmaticConfig.GroveDatabase
	}

	if yamlConfig.PageSize == 0 {
		yamlConfig.PageSize = programmaticConfig.PageSize
	}

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(yamlConfig)
}
