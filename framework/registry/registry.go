package registry

import (
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/km-arc/go-wiring/framework/factory"
)

const tracerName = "github.com/km-arc/go-wiring/framework/registry"

// ── Registry ──────────────────────────────────────────────────────────────────

// Registry is the mutable symbol table of definitions and groups.
//
// Registration never fails for a non-nil factory; every problem is reported
// by Compile. Mutations are serialised by a write lock, so a Registry may be
// shared, but the intended use is a single builder goroutine followed by one
// Compile.
type Registry struct {
	mu sync.RWMutex

	// group id → group candidate
	groups map[string]*GroupCandidate

	// definition id → current candidate
	definitions map[string]*DefinitionCandidate

	// definition id → displaced candidates, oldest first
	overridden map[string][]*DefinitionCandidate

	validators []Validator

	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration and compile events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracer sets the tracer used for compile spans. The global otel tracer
// is used otherwise.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Registry) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithValidators appends validators after the default ones.
func WithValidators(validators ...Validator) Option {
	return func(r *Registry) {
		for _, v := range validators {
			r.pushValidator(v)
		}
	}
}

// New creates an empty registry with the default validator pipeline.
func New(opts ...Option) *Registry {
	r := &Registry{
		groups:      make(map[string]*GroupCandidate),
		definitions: make(map[string]*DefinitionCandidate),
		overridden:  make(map[string][]*DefinitionCandidate),
		logger:      slog.New(slog.DiscardHandler),
		tracer:      otel.Tracer(tracerName),
	}

	r.pushValidator(ArgumentCountValidator{})
	r.pushValidator(NoOverridesValidator{})
	r.pushValidator(DependencyValidator{})

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ── Validators ────────────────────────────────────────────────────────────────

// PushValidator appends a validator to the end of the pipeline.
func (r *Registry) PushValidator(v Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushValidator(v)
}

func (r *Registry) pushValidator(v Validator) {
	if v == nil {
		return
	}
	r.validators = append(r.validators, v)
}

// AllowOverrides removes NoOverridesValidator from the pipeline. Overridden
// definitions are still recorded in the override log.
func (r *Registry) AllowOverrides() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators = slices.DeleteFunc(r.validators, func(v Validator) bool {
		switch v.(type) {
		case NoOverridesValidator, *NoOverridesValidator:
			return true
		}
		return false
	})
}

// Validators returns the pipeline in execution order.
func (r *Registry) Validators() []Validator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.validators)
}

// ── Groups ────────────────────────────────────────────────────────────────────

// DeclareGroup declares a group with an explicit element descriptor. It is a
// no-op when the group already exists.
func (r *Registry) DeclareGroup(id string, agg factory.Aggregate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.declareGroup(id, agg)
}

// HasMany declares a group collecting values of type T.
//
//	registry.HasMany[http.Handler](r, "handlers")
func HasMany[T any](r *Registry, id string) {
	r.DeclareGroup(id, factory.AggregateFor[T]())
}

// declareGroup must hold mu.Lock.
func (r *Registry) declareGroup(id string, agg factory.Aggregate) {
	if _, ok := r.groups[id]; ok {
		return
	}
	r.logger.Debug("declared group", "group", id, "collection", agg.String())
	r.groups[id] = newGroupCandidate(agg)
}

// ── Definitions ───────────────────────────────────────────────────────────────

// RegisterOne installs f as the current definition for id. A previous
// definition for id is moved to the override log.
//
// RegisterOne panics if f is nil.
func (r *Registry) RegisterOne(id string, f factory.Factory, args ...string) {
	mustFactory(id, f)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalize("", id, f, args)
}

// RegisterOneOf installs f as the current definition for id and as a member
// of groupID, declaring the group from f's produced type if it is new. An
// empty groupID registers a plain definition, like RegisterOne.
//
// RegisterOneOf panics if f is nil.
func (r *Registry) RegisterOneOf(groupID, id string, f factory.Factory, args ...string) {
	if groupID == "" {
		r.RegisterOne(id, f, args...)
		return
	}
	mustFactory(id, f)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.declareGroup(groupID, factory.AggregateOf(f.Type()))
	r.finalize(groupID, id, f, args)
}

func mustFactory(id string, f factory.Factory) {
	if f == nil {
		panic("registry: nil factory for " + strconv.Quote(id))
	}
}

// finalize must hold mu.Lock.
func (r *Registry) finalize(groupID, id string, f factory.Factory, args []string) {
	if prev, ok := r.definitions[id]; ok {
		r.overridden[id] = append(r.overridden[id], prev)
		r.logger.Debug("definition overridden", "id", id, "displaced", len(r.overridden[id]))
	}
	r.definitions[id] = newDefinitionCandidate(f, args, groupID)
}

// ── Builders ──────────────────────────────────────────────────────────────────

// One starts a builder for a plain definition. Nothing is registered until
// Insert is called.
func (r *Registry) One(id string, f factory.Factory) *One {
	return &One{registry: r, id: id, factory: f}
}

// OneOf starts a builder for a group member. Nothing is registered, and the
// group is not declared, until Insert is called.
func (r *Registry) OneOf(groupID, id string, f factory.Factory) *OneOf {
	return &OneOf{registry: r, group: groupID, id: id, factory: f}
}

// ── Read access ───────────────────────────────────────────────────────────────

// Snapshot returns a read-only copy of the registry's current state.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot()
}

// snapshot must hold mu.RLock.
func (r *Registry) snapshot() *Snapshot {
	return newSnapshot(r.groups, r.definitions, r.overridden)
}
