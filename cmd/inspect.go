package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-wiring/framework/config"
	"github.com/km-arc/go-wiring/framework/inspect"
	"github.com/km-arc/go-wiring/framework/registry"
	"github.com/km-arc/go-wiring/framework/watch"
)

func newInspectCmd(o *options) *cobra.Command {
	var (
		addr       string
		watchFiles bool
	)

	c := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Serve a JSON view of the registry built from manifest files",
		Long: `Load manifest files into a registry and serve it over HTTP.

Endpoints:
  GET  /definitions        every live definition
  GET  /definitions/{id}   one definition
  GET  /groups             every group and its members
  GET  /overrides          id → number of displaced registrations
  GET  /diagnostics        compile the registry and report
  POST /lint               lint a manifest body
  GET  /status             revision and counts

With --watch the files are reloaded whenever they change.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = o.cfg.Addr()
			}

			srv, err := o.newInspectServer(o.cfg, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if watchFiles {
				w, err := watch.New(watch.Config{Files: args, Debounce: o.cfg.Watch.Debounce, Logger: o.logger})
				if err != nil {
					return err
				}
				defer func() { _ = w.Stop() }()

				changes, err := w.Start()
				if err != nil {
					return err
				}
				go o.reloadOnChange(ctx, srv, args, changes)
			}

			return serve(ctx, &http.Server{
				Addr:              addr,
				Handler:           srv,
				ReadHeaderTimeout: 10 * time.Second,
			}, o)
		},
	}

	c.Flags().StringVar(&addr, "addr", "", "listen address (default :$WIRING_PORT)")
	c.Flags().BoolVarP(&watchFiles, "watch", "w", false, "reload the files when they change")
	return c
}

// newInspectServer loads files into a fresh registry and serves it. Lint
// requests get an empty registry with the same configuration.
func (o *options) newInspectServer(cfg *config.Config, files []string) (*inspect.Server, error) {
	reg, err := o.loadRegistry(cfg, files)
	if err != nil {
		return nil, err
	}
	return inspect.NewServer(reg,
		inspect.WithLogger(o.logger),
		inspect.WithRegistryFactory(func() *registry.Registry {
			return o.newRegistry(cfg)
		}),
	), nil
}

// reload swaps in a registry freshly built from files. On failure the
// served registry is kept.
func (o *options) reload(srv *inspect.Server, files []string) error {
	reg, err := o.loadRegistry(o.cfg, files)
	if err != nil {
		o.logger.Error("reload failed", "error", err)
		return err
	}
	srv.Swap(reg)
	return nil
}

func (o *options) reloadOnChange(ctx context.Context, srv *inspect.Server, files []string, changes <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			_ = o.reload(srv, files)
		}
	}
}

func serve(ctx context.Context, server *http.Server, o *options) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	o.logger.Info("inspect server listening", "addr", server.Addr, "env", o.cfg.App.Env)

	select {
	case <-ctx.Done():
		o.logger.Info("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
