package providers

import (
	"io"
	"log/slog"
	"os"

	"github.com/km-arc/go-wiring/framework/config"
	"github.com/km-arc/go-wiring/framework/container"
	"github.com/km-arc/go-wiring/framework/factory"
	"github.com/km-arc/go-wiring/framework/log"
	"github.com/km-arc/go-wiring/framework/manifest"
	"github.com/km-arc/go-wiring/framework/registry"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider registers the application configuration.
//
// Definitions:
//   - "config"  → *config.Config
//
// A nil Config is loaded from EnvFiles when the provider registers.
type ConfigServiceProvider struct {
	Config   *config.Config
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(r *registry.Registry) {
	cfg := p.Config
	if cfg == nil {
		cfg = config.Load(p.EnvFiles...)
	}
	r.RegisterOne("config", factory.Value(cfg))
}

func (p *ConfigServiceProvider) Boot(_ *container.Container) error { return nil }

// ── LoggerServiceProvider ─────────────────────────────────────────────────────

// LoggerServiceProvider registers the application logger, built from the
// "config" definition.
//
// Definitions:
//   - "logger"  → *slog.Logger  (args: "config")
type LoggerServiceProvider struct {
	Writer io.Writer // default: os.Stderr
}

func (p *LoggerServiceProvider) Register(r *registry.Registry) {
	w := p.Writer
	if w == nil {
		w = os.Stderr
	}
	r.One("logger", factory.Func(func(cfg *config.Config) *slog.Logger {
		return log.FromConfig(cfg, w)
	})).WithArg("config").Insert()
}

func (p *LoggerServiceProvider) Boot(_ *container.Container) error { return nil }

// ── ManifestServiceProvider ───────────────────────────────────────────────────

// ManifestServiceProvider replays manifest files into the registry.
//
// Names are looked up through Resolver; a nil Resolver uses manifest.Stubs,
// which is enough to validate the files but not to build their definitions.
// Load and apply failures are reported through Err, which the application
// checks before compiling.
type ManifestServiceProvider struct {
	Files    []string
	Resolver manifest.Resolver

	err error
}

func (p *ManifestServiceProvider) Register(r *registry.Registry) {
	if len(p.Files) == 0 {
		return
	}
	m, err := manifest.LoadFiles(p.Files...)
	if err != nil {
		p.err = err
		return
	}
	resolver := p.Resolver
	if resolver == nil {
		resolver = manifest.Stubs{}
	}
	p.err = manifest.Apply(r, m, resolver)
}

func (p *ManifestServiceProvider) Boot(_ *container.Container) error { return nil }

// Err returns the error from the last Register, if any.
func (p *ManifestServiceProvider) Err() error { return p.err }
