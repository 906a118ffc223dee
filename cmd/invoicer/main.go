// Command invoicer creates numbered PDF invoices from YAML files and keeps a
// record of every invoice issued.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/xraph/invoicer"
	"github.com/xraph/invoicer/observability"
)

// Exit codes.
const (
	exitError      = 1
	exitValidation = 2
	exitUnrecorded = 3
)

// env carries what the Before hook set up to every command.
type env struct {
	cfg    Config
	logger *slog.Logger
	engine *invoicer.Invoicer
	out    io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "invoicer:", err)
		os.Exit(exitCode(err))
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	e := &env{out: stdout}

	return &cli.App{
		Name:      "invoicer",
		Usage:     "generate numbered PDF invoices",
		Writer:    stdout,
		ErrWriter: stderr,
		// main owns the exit status.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file",
				Value:   "invoicer.yaml",
				EnvVars: []string{"INVOICER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db-driver",
				Usage:   "store backend: sqlite, postgres, mongo or memory",
				EnvVars: []string{"INVOICER_DB_DRIVER"},
			},
			&cli.StringFlag{
				Name:    "dsn",
				Usage:   "database file, connection string or URI",
				EnvVars: []string{"INVOICER_DSN"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"INVOICER_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "text or json",
				EnvVars: []string{"INVOICER_LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Usage:   "write PDFs here instead of the configured output folder",
				EnvVars: []string{"INVOICER_OUTPUT_DIR"},
			},
		},
		Before: func(c *cli.Context) error {
			return e.setup(c, stderr)
		},
		After: func(*cli.Context) error {
			if e.engine == nil {
				return nil
			}
			return e.engine.Stop()
		},
		Commands: []*cli.Command{
			setupCommand(e),
			settingsCommand(e),
			createCommand(e),
			previewCommand(e),
			listCommand(e),
			showCommand(e),
			nextCommand(e),
			currenciesCommand(e),
		},
	}
}

// setup resolves configuration, opens the store and starts the engine.
func (e *env) setup(c *cli.Context, stderr io.Writer) error {
	cfg, err := LoadConfig(c.String("config"), !c.IsSet("config"))
	if err != nil {
		return err
	}
	if v := c.String("db-driver"); v != "" {
		cfg.Database.Driver = v
	}
	if v := c.String("dsn"); v != "" {
		cfg.Database.DSN = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := c.String("log-format"); v != "" {
		cfg.Log.Format = v
	}
	if v := c.String("output-dir"); v != "" {
		cfg.OutputDir = v
	}
	e.cfg = cfg

	logger, err := cfg.Log.NewLogger(stderr)
	if err != nil {
		return err
	}
	e.logger = logger

	// Help and version need no store.
	if c.Args().Len() == 0 || c.Args().First() == "help" || c.Bool("help") {
		return nil
	}

	st, err := cfg.Database.OpenStore(c.Context)
	if err != nil {
		return err
	}

	opts := []invoicer.Option{
		invoicer.WithLogger(logger),
		invoicer.WithPlugin(observability.NewMetricsExtension(observability.NewPrometheusFactory(nil))),
	}
	if cfg.OutputDir != "" {
		opts = append(opts, invoicer.WithOutputDir(cfg.OutputDir))
	}

	e.engine = invoicer.New(st, opts...)
	if err := e.engine.Start(c.Context); err != nil {
		_ = st.Close()
		e.engine = nil
		return err
	}

	logger.Debug("store opened",
		"driver", cfg.Database.Driver,
	)
	return nil
}

// exitCode maps an engine error to the process exit status.
func exitCode(err error) int {
	var coder cli.ExitCoder
	switch {
	case errors.As(err, &coder):
		return coder.ExitCode()
	case invoicer.IsValidation(err):
		return exitValidation
	case invoicer.IsUnrecorded(err):
		return exitUnrecorded
	default:
		return exitError
	}
}
