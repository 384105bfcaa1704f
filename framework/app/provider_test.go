package app_test

import (
	"errors"
	"testing"

	"github.com/km-arc/go-wiring/framework/app"
	"github.com/km-arc/go-wiring/framework/container"
	"github.com/km-arc/go-wiring/framework/factory"
	"github.com/km-arc/go-wiring/framework/registry"
)

// ── stub providers ────────────────────────────────────────────────────────────

type eagerProvider struct {
	app.BaseProvider
	registerCalled bool
	bootCalled     bool
}

func (p *eagerProvider) Register(r *registry.Registry) {
	p.registerCalled = true
	r.RegisterOne("eager-svc", factory.Value("eager"))
}

func (p *eagerProvider) Boot(c *container.Container) error {
	p.bootCalled = true
	return nil
}

// multiProvider registers several definitions.
type multiProvider struct {
	app.BaseProvider
}

func (p *multiProvider) Register(r *registry.Registry) {
	r.RegisterOne("alpha", factory.Value("α"))
	r.RegisterOne("beta", factory.Value("β"))
}

// failingProvider fails to boot.
type failingProvider struct {
	app.BaseProvider
}

func (p *failingProvider) Register(*registry.Registry) {}

func (p *failingProvider) Boot(*container.Container) error { return errBoot }

var errBoot = errors.New("boot failed")

func compile(t *testing.T, r *registry.Registry) *container.Container {
	t.Helper()
	c, err := r.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return c
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

func TestRegistry_Provider_RegisterCalled(t *testing.T) {
	reg := app.NewProviderRegistry(registry.New())

	p := &eagerProvider{}
	reg.Register(p)

	if !p.registerCalled {
		t.Error("Register() should be called immediately")
	}
}

func TestRegistry_Provider_BootCalledAfterBoot(t *testing.T) {
	r := registry.New()
	reg := app.NewProviderRegistry(r)

	p := &eagerProvider{}
	reg.Register(p)

	if p.bootCalled {
		t.Error("Boot() should NOT be called before registry.Boot()")
	}

	if err := reg.Boot(compile(t, r)); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	if !p.bootCalled {
		t.Error("Boot() should be called after registry.Boot()")
	}
}

func TestRegistry_Provider_ServiceResolvable(t *testing.T) {
	r := registry.New()
	reg := app.NewProviderRegistry(r)
	reg.Register(&eagerProvider{})

	c := compile(t, r)
	if got := container.MustResolve[string](c, "eager-svc"); got != "eager" {
		t.Errorf("eager-svc: got %q, want 'eager'", got)
	}
}

func TestRegistry_Boot_IdempotentCallsAreIgnored(t *testing.T) {
	r := registry.New()
	reg := app.NewProviderRegistry(r)
	reg.Register(&eagerProvider{})

	c := compile(t, r)
	_ = reg.Boot(c)
	_ = reg.Boot(c) // second call should be no-op

	if !reg.Booted() {
		t.Error("Booted() should be true after Boot()")
	}
}

func TestRegistry_Booted_FalseBeforeBoot(t *testing.T) {
	reg := app.NewProviderRegistry(registry.New())
	if reg.Booted() {
		t.Error("Booted() should be false before Boot()")
	}
}

func TestRegistry_DuplicateRegister_Ignored(t *testing.T) {
	r := registry.New()
	reg := app.NewProviderRegistry(r)

	p := &eagerProvider{}
	reg.Register(p)
	reg.Register(p) // second register of same instance

	if len(reg.Providers()) != 1 {
		t.Errorf("Providers(): got %d, want 1", len(reg.Providers()))
	}
	// a second real Register would have overridden "eager-svc"
	if _, err := r.Compile(); err != nil {
		t.Errorf("Compile: %v", err)
	}
}

func TestRegistry_BootError_StopsAndIsReported(t *testing.T) {
	r := registry.New()
	reg := app.NewProviderRegistry(r)

	late := &eagerProvider{}
	reg.Register(&failingProvider{})
	reg.Register(late)

	err := reg.Boot(compile(t, r))
	if !errors.Is(err, errBoot) {
		t.Fatalf("expected errBoot, got %v", err)
	}
	if late.bootCalled {
		t.Error("providers after a failing one should not boot")
	}
	if reg.Booted() {
		t.Error("Booted() should stay false after a failed Boot()")
	}
}

// ── Multiple providers ────────────────────────────────────────────────────────

func TestRegistry_MultipleProviders_AllServicesResolvable(t *testing.T) {
	r := registry.New()
	reg := app.NewProviderRegistry(r)
	reg.Register(&multiProvider{})
	reg.Register(&eagerProvider{})

	c := compile(t, r)

	if got := c.MustMake("alpha").(string); got != "α" {
		t.Errorf("alpha: got %q, want 'α'", got)
	}
	if got := c.MustMake("beta").(string); got != "β" {
		t.Errorf("beta: got %q, want 'β'", got)
	}
	if got := c.MustMake("eager-svc").(string); got != "eager" {
		t.Errorf("eager-svc: got %q, want 'eager'", got)
	}
}

// ── BaseProvider defaults ─────────────────────────────────────────────────────

func TestBaseProvider_Defaults(t *testing.T) {
	var p app.BaseProvider
	if err := p.Boot(nil); err != nil {
		t.Errorf("BaseProvider.Boot() should return nil, got %v", err)
	}
}
