package app

import (
	"fmt"

	"github.com/km-arc/go-wiring/framework/container"
	"github.com/km-arc/go-wiring/framework/registry"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related registrations.
//
// Register is called as soon as the provider is added and may only touch the
// registry. Boot is called after the registry compiled, making it safe to
// resolve anything inside Boot.
//
//	type MailProvider struct{ app.BaseProvider }
//
//	func (p *MailProvider) Register(r *registry.Registry) {
//	    r.One("mailer", factory.Func(mail.NewSMTP)).WithArg("config").Insert()
//	}
//
//	func (p *MailProvider) Boot(c *container.Container) error {
//	    _, err := container.Resolve[*mail.SMTP](c, "mailer")
//	    return err
//	}
type ServiceProvider interface {
	// Register adds definitions and groups to the registry.
	// Do NOT compile here; the application does that once.
	Register(r *registry.Registry)

	// Boot is called once, after a successful compile.
	Boot(c *container.Container) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with a no-op Boot.
//
//	type MyProvider struct{ app.BaseProvider }
//	func (p *MyProvider) Register(r *registry.Registry) { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *container.Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders.
type ProviderRegistry struct {
	registry   *registry.Registry
	providers  []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a provider registry bound to r.
func NewProviderRegistry(r *registry.Registry) *ProviderRegistry {
	return &ProviderRegistry{
		registry:   r,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register method. Adding the same
// provider twice is a no-op.
func (p *ProviderRegistry) Register(provider ServiceProvider) {
	if p.registered[provider] {
		return
	}
	p.registered[provider] = true

	provider.Register(p.registry)
	p.providers = append(p.providers, provider)
}

// Boot calls Boot on every provider in registration order, stopping at the
// first error. Only the first successful call has an effect.
func (p *ProviderRegistry) Boot(c *container.Container) error {
	if p.booted {
		return nil
	}
	for _, provider := range p.providers {
		if err := provider.Boot(c); err != nil {
			return fmt.Errorf("boot %T: %w", provider, err)
		}
	}
	p.booted = true
	return nil
}

// Booted returns true if Boot has completed.
func (p *ProviderRegistry) Booted() bool { return p.booted }

// Providers returns all registered providers in order.
func (p *ProviderRegistry) Providers() []ServiceProvider { return p.providers }
