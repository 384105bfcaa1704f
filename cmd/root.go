// Package cmd implements the wiring command line.
package cmd

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-wiring/framework/app"
	"github.com/km-arc/go-wiring/framework/config"
	"github.com/km-arc/go-wiring/framework/log"
	"github.com/km-arc/go-wiring/framework/providers"
	"github.com/km-arc/go-wiring/framework/registry"
	"github.com/km-arc/go-wiring/framework/tracing"
)

// ErrDiagnostics is returned when lint found problems. They have already
// been printed, so callers only need to set the exit status.
var ErrDiagnostics = errors.New("manifest has diagnostics")

// options holds the persistent flags and what PersistentPreRunE builds
// from them.
type options struct {
	envFiles  []string
	logLevel  string
	logFormat string
	trace     string

	cfg      *config.Config
	logger   *slog.Logger
	provider *tracing.Provider
}

func newRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "wiring",
		Short:         "Validate and inspect dependency wiring manifests",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringArrayVar(&o.envFiles, "env-file", nil, "env file to load (repeatable, default .env)")
	flags.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&o.logFormat, "log-format", "", "log format: text or json")
	flags.StringVar(&o.trace, "trace", "", "trace exporter: none, stdout or otlp")

	root.AddCommand(newLintCmd(o), newInspectCmd(o), newVersionCmd())
	return root
}

// init loads configuration, applies flag overrides and builds the logger
// and trace provider.
func (o *options) init(cmd *cobra.Command) error {
	o.cfg = config.Load(o.envFiles...)

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		o.cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		o.cfg.Log.Format = o.logFormat
	}
	if flags.Changed("trace") {
		o.cfg.Trace.Exporter = o.trace
	}

	o.logger = log.FromConfig(o.cfg, cmd.ErrOrStderr())

	traceOpts := tracing.OptionsFromConfig(o.cfg)
	traceOpts.Writer = cmd.ErrOrStderr()
	provider, err := tracing.NewProvider(traceOpts)
	if err != nil {
		return err
	}
	o.provider = provider
	return nil
}

// shutdown flushes pending spans.
func (o *options) shutdown() {
	if o.provider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.provider.Shutdown(ctx); err != nil {
		o.logger.Warn("trace shutdown failed", "error", err)
	}
}

// loadRegistry replays files into a registry holding no framework
// definitions, with the validator pipeline cfg selects. The error is the one
// that stopped a manifest from being loaded or applied.
func (o *options) loadRegistry(cfg *config.Config, files []string) (*registry.Registry, error) {
	r := o.newRegistry(cfg)
	mp := &providers.ManifestServiceProvider{Files: files}
	mp.Register(r)
	if err := mp.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

func (o *options) newRegistry(cfg *config.Config) *registry.Registry {
	return app.NewRegistry(cfg, o.logger, registry.WithTracer(o.provider.Tracer()))
}

// Execute runs the root command.
func Execute() error {
	o := &options{}
	err := newRootCmd(o).Execute()
	o.shutdown()
	return err
}
