package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xraph/invoicer/store"
	"github.com/xraph/invoicer/store/memory"
	"github.com/xraph/invoicer/store/mongo"
	"github.com/xraph/invoicer/store/postgres"
	"github.com/xraph/invoicer/store/sqlite"
)

// Config is the CLI configuration file.
//
//	database:
//	  driver: sqlite          # sqlite, postgres, mongo or memory
//	  dsn: invoices.db
//	log:
//	  level: info             # debug, info, warn, error
//	  format: text            # text or json
//	output_dir: ./invoices    # overrides the stored company setting
type Config struct {
	Database  DatabaseConfig `yaml:"database"`
	Log       LogConfig      `yaml:"log"`
	OutputDir string         `yaml:"output_dir"`
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Driver: "sqlite", DSN: "invoices.db"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error
// when optional is set.
func LoadConfig(path string, optional bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// NewLogger builds the slog logger described by c, writing to w.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if c.Level != "" {
		if err := level.UnmarshalText([]byte(c.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", c.Level, err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
}

// OpenStore opens the backend named by c.
func (c DatabaseConfig) OpenStore(ctx context.Context) (store.Store, error) {
	switch strings.ToLower(c.Driver) {
	case "", "sqlite", "sqlite3":
		return sqlite.Open(ctx, c.DSN)
	case "postgres", "pg", "postgresql":
		return postgres.Open(ctx, c.DSN)
	case "mongo", "mongodb":
		return mongo.Open(ctx, c.DSN)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", c.Driver)
	}
}
