package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/km-arc/go-wiring/framework/config"
	"github.com/km-arc/go-wiring/framework/container"
	"github.com/km-arc/go-wiring/framework/providers"
	"github.com/km-arc/go-wiring/framework/registry"
)

// Version is the framework version reported by the CLI.
const Version = "0.1.0"

// errorReporter is implemented by providers whose Register can fail, like
// the manifest provider.
type errorReporter interface {
	Err() error
}

// Application owns the registry, the providers that fill it, and the
// container produced by compiling it.
type Application struct {
	Registry  *registry.Registry
	Providers *ProviderRegistry

	config    *config.Config
	logger    *slog.Logger
	container *container.Container
}

// New creates the application and registers the framework providers.
//
// The registry's validator pipeline follows cfg.Registry: AllowOverrides
// drops the override check, Strict adds the cycle and namespace-collision
// checks. opts are applied after that.
func New(cfg *config.Config, logger *slog.Logger, opts ...registry.Option) *Application {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := NewRegistry(cfg, logger, opts...)
	a := &Application{
		Registry:  r,
		Providers: NewProviderRegistry(r),
		config:    cfg,
		logger:    logger,
	}

	a.Register(&providers.ConfigServiceProvider{Config: cfg})
	a.Register(&providers.LoggerServiceProvider{})

	return a
}

// NewRegistry creates an empty registry whose validator pipeline follows
// cfg.Registry. It holds no framework definitions, so it is what manifests
// are linted against.
func NewRegistry(cfg *config.Config, logger *slog.Logger, opts ...registry.Option) *registry.Registry {
	regOpts := []registry.Option{registry.WithLogger(logger)}
	if cfg.Registry.Strict {
		regOpts = append(regOpts, registry.WithValidators(
			registry.CycleValidator{},
			registry.NamespaceCollisionValidator{},
		))
	}
	r := registry.New(append(regOpts, opts...)...)
	if cfg.Registry.AllowOverrides {
		r.AllowOverrides()
	}
	return r
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider ServiceProvider) {
	a.Providers.Register(provider)
}

// Compile compiles the registry and boots every provider. The container is
// kept only when both succeed. A provider that failed to register stops the
// compile before it starts.
func (a *Application) Compile(ctx context.Context) (*container.Container, error) {
	var errs []error
	for _, p := range a.Providers.Providers() {
		if reporter, ok := p.(errorReporter); ok && reporter.Err() != nil {
			errs = append(errs, reporter.Err())
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	c, err := a.Registry.CompileContext(ctx)
	if err != nil {
		a.logger.Error("registry failed to compile", "error", err)
		return nil, err
	}
	if err := a.Providers.Boot(c); err != nil {
		return nil, err
	}

	a.container = c
	a.logger.Info("application compiled",
		"definitions", len(c.Definitions()),
		"groups", len(c.Groups()),
	)
	return c, nil
}

// Container returns the compiled container, or nil before Compile succeeds.
func (a *Application) Container() *container.Container { return a.container }

// Config returns the configuration the application was built with.
func (a *Application) Config() *config.Config { return a.config }

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger { return a.logger }

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.config.App.Debug }
