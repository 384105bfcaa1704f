package manifest

import (
	"strconv"

	"github.com/km-arc/go-wiring/framework/factory"
)

// Resolver turns the names used in a manifest into factories and group
// element descriptors.
type Resolver interface {
	// ResolveFactory returns the factory for a declaration with a factory name.
	ResolveFactory(decl DefinitionDecl) (factory.Factory, error)

	// ResolveElement returns the aggregate for a non-empty element name.
	ResolveElement(name string) (factory.Aggregate, error)
}

// UnknownFactoryError is returned when a declaration names a factory the
// resolver does not know.
type UnknownFactoryError struct {
	ID      string
	Factory string
	Source  string
}

// Error implements the error interface.
func (e *UnknownFactoryError) Error() string {
	return e.Source + ": definition " + strconv.Quote(e.ID) + " uses unknown factory " + strconv.Quote(e.Factory)
}

// UnknownElementError is returned when a group names an element type the
// resolver does not know.
type UnknownElementError struct {
	Group   string
	Element string
	Source  string
}

// Error implements the error interface.
func (e *UnknownElementError) Error() string {
	return e.Source + ": group " + strconv.Quote(e.Group) + " uses unknown element " + strconv.Quote(e.Element)
}

// ArityDeclarationError is returned when a declaration's arity disagrees
// with the catalog factory it names.
type ArityDeclarationError struct {
	ID       string
	Declared int
	Actual   int
	Source   string
}

// Error implements the error interface.
func (e *ArityDeclarationError) Error() string {
	return e.Source + ": definition " + strconv.Quote(e.ID) + " declares arity " + strconv.Itoa(e.Declared) +
		" but its factory takes " + strconv.Itoa(e.Actual)
}

// ── Catalog ───────────────────────────────────────────────────────────────────

// Catalog resolves names registered in code.
//
//	catalog := manifest.NewCatalog().
//	    AddFactory("sql.open", factory.Func(openDB)).
//	    AddElement("plugin", factory.AggregateFor[Plugin]())
type Catalog struct {
	factories map[string]factory.Factory
	elements  map[string]factory.Aggregate
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		factories: make(map[string]factory.Factory),
		elements:  make(map[string]factory.Aggregate),
	}
}

// AddFactory registers f under name, replacing any previous factory.
func (c *Catalog) AddFactory(name string, f factory.Factory) *Catalog {
	c.factories[name] = f
	return c
}

// AddElement registers an element descriptor under name.
func (c *Catalog) AddElement(name string, agg factory.Aggregate) *Catalog {
	c.elements[name] = agg
	return c
}

// ResolveFactory implements Resolver.
func (c *Catalog) ResolveFactory(decl DefinitionDecl) (factory.Factory, error) {
	f, ok := c.factories[decl.Factory]
	if !ok {
		return nil, &UnknownFactoryError{ID: decl.ID, Factory: decl.Factory, Source: decl.Source}
	}
	if decl.Arity != nil && *decl.Arity != f.Arity() {
		return nil, &ArityDeclarationError{ID: decl.ID, Declared: *decl.Arity, Actual: f.Arity(), Source: decl.Source}
	}
	return f, nil
}

// ResolveElement implements Resolver.
func (c *Catalog) ResolveElement(name string) (factory.Aggregate, error) {
	agg, ok := c.elements[name]
	if !ok {
		return factory.Aggregate{}, &UnknownElementError{Element: name}
	}
	return agg, nil
}

// ── Stubs ─────────────────────────────────────────────────────────────────────

// Stubs resolves every name to a placeholder. Factories are factory.Stub
// values whose arity is the declared arity, or the number of arguments when
// none is declared. Every group collects values of any type.
type Stubs struct{}

// ResolveFactory implements Resolver.
func (Stubs) ResolveFactory(decl DefinitionDecl) (factory.Factory, error) {
	arity := len(decl.Args)
	if decl.Arity != nil {
		arity = *decl.Arity
	}
	return factory.Stub(arity, nil), nil
}

// ResolveElement implements Resolver.
func (Stubs) ResolveElement(string) (factory.Aggregate, error) {
	return factory.Aggregate{}, nil
}
