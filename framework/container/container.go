package container

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/km-arc/go-wiring/framework/factory"
)

// ── Entries ───────────────────────────────────────────────────────────────────

// Definition is a compiled definition: a factory and the ids its positional
// arguments resolve from.
type Definition struct {
	Factory factory.Factory
	Args    []string
	Group   string
}

// Group is a compiled group: how its members combine and who they are.
type Group struct {
	Aggregate factory.Aggregate
	Members   []string
}

// ── Errors ────────────────────────────────────────────────────────────────────

// NotFoundError is returned when an id is neither a definition nor a group.
type NotFoundError struct{ ID string }

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return "container: no definition or group registered for " + strconv.Quote(e.ID)
}

// CycleError is returned when resolving an id requires that id again.
type CycleError struct{ Path []string }

// Error implements the error interface.
func (e *CycleError) Error() string {
	return "container: dependency cycle " + strings.Join(e.Path, " -> ")
}

// FactoryError wraps a failure while building id.
type FactoryError struct {
	ID  string
	Err error
}

// Error implements the error interface.
func (e *FactoryError) Error() string {
	return "container: building " + strconv.Quote(e.ID) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *FactoryError) Unwrap() error { return e.Err }

// ── Container ─────────────────────────────────────────────────────────────────

// Container holds the definitions and groups of a compiled registry and
// builds them on demand.
//
// Every definition is a singleton: its factory runs on the first Make and the
// result is cached. Group values are collected fresh on each request from the
// cached member instances.
type Container struct {
	mu sync.Mutex

	// id → compiled definition
	definitions map[string]Definition

	// id → compiled group
	groups map[string]Group

	// id → resolved singleton instance
	instances map[string]any

	// resolved callbacks: []func(id, instance)
	afterResolving []func(string, any)

	// stack of ids currently being resolved (for cycle detection)
	buildStack []string
}

// New creates a container from compiled entries. It is normally called by
// registry.Compile.
func New(definitions map[string]Definition, groups map[string]Group) *Container {
	c := &Container{
		definitions: make(map[string]Definition, len(definitions)),
		groups:      make(map[string]Group, len(groups)),
		instances:   make(map[string]any),
	}
	for id, d := range definitions {
		d.Args = slices.Clone(d.Args)
		c.definitions[id] = d
	}
	for id, g := range groups {
		g.Members = slices.Clone(g.Members)
		c.groups[id] = g
	}
	return c
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves id. A definition resolves to its (cached) instance; an id that
// is only a group resolves to the collection of its members.
func (c *Container) Make(id string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.make(id)
}

// MustMake is like Make but panics on error.
func (c *Container) MustMake(id string) any {
	instance, err := c.Make(id)
	if err != nil {
		panic(err)
	}
	return instance
}

// make is the internal resolver (must hold mu).
func (c *Container) make(id string) (any, error) {
	if inst, ok := c.instances[id]; ok {
		return inst, nil
	}

	if slices.Contains(c.buildStack, id) {
		path := append(slices.Clone(c.buildStack), id)
		start := slices.Index(path, id)
		return nil, &CycleError{Path: path[start:]}
	}

	if def, ok := c.definitions[id]; ok {
		return c.build(id, def)
	}
	if g, ok := c.groups[id]; ok {
		return c.collect(id, g)
	}
	return nil, &NotFoundError{ID: id}
}

// build runs a definition's factory and caches the result.
func (c *Container) build(id string, def Definition) (any, error) {
	c.buildStack = append(c.buildStack, id)
	defer func() { c.buildStack = c.buildStack[:len(c.buildStack)-1] }()

	args := make([]any, len(def.Args))
	for i, src := range def.Args {
		v, err := c.make(src)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	instance, err := def.Factory.Invoke(args)
	if err != nil {
		return nil, &FactoryError{ID: id, Err: err}
	}

	c.instances[id] = instance
	c.fireAfterResolving(id, instance)
	return instance, nil
}

// collect resolves every member of a group into one collection value.
func (c *Container) collect(id string, g Group) (any, error) {
	c.buildStack = append(c.buildStack, id)
	defer func() { c.buildStack = c.buildStack[:len(c.buildStack)-1] }()

	values := make([]any, len(g.Members))
	for i, member := range g.Members {
		v, err := c.make(member)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	collection, err := g.Aggregate.Collect(values)
	if err != nil {
		return nil, &FactoryError{ID: id, Err: err}
	}
	return collection, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if id is a definition or a group.
func (c *Container) Bound(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, isDef := c.definitions[id]
	_, isGroup := c.groups[id]
	return isDef || isGroup
}

// Resolved returns true if the definition id has been built.
func (c *Container) Resolved(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.instances[id]
	return ok
}

// Definitions returns the sorted definition ids.
func (c *Container) Definitions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(maps.Keys(c.definitions))
}

// Groups returns the sorted group ids.
func (c *Container) Groups() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(maps.Keys(c.groups))
}

// Members returns the member ids of a group.
func (c *Container) Members(groupID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.groups[groupID].Members)
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired once per definition, right after
// its instance is built. Callbacks run while the container is locked and must
// not call back into it.
func (c *Container) AfterResolving(cb func(id string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireAfterResolving(id string, instance any) {
	for _, cb := range c.afterResolving {
		cb(id, instance)
	}
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Make and type-asserts the result.
//
//	db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, id string) (T, error) {
	var zero T
	instance, err := c.Make(id)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: Resolve[%T]: %q resolved to %T", zero, id, instance)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, id string) T {
	typed, err := Resolve[T](c, id)
	if err != nil {
		panic(err)
	}
	return typed
}
