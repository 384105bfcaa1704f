package manifest

import (
	"errors"

	"github.com/km-arc/go-wiring/framework/factory"
	"github.com/km-arc/go-wiring/framework/registry"
)

// Apply replays m into r: every group through DeclareGroup, then every
// definition in order through RegisterOne or RegisterOneOf. A re-declared id
// therefore lands in the registry's override log like any other
// registration.
//
// Names are resolved before anything is registered, so a failed Apply leaves
// r untouched. The error is a *FieldErrors for malformed declarations, or
// the joined resolver errors.
func Apply(r *registry.Registry, m *Manifest, resolver Resolver) error {
	if errs := Validate(m); errs.Has() {
		return errs
	}

	var errs []error

	groups := make([]factory.Aggregate, len(m.Groups))
	for i, g := range m.Groups {
		if g.Element == "" {
			continue
		}
		agg, err := resolver.ResolveElement(g.Element)
		if err != nil {
			var unknown *UnknownElementError
			if errors.As(err, &unknown) {
				unknown.Group, unknown.Source = g.ID, g.Source
			}
			errs = append(errs, err)
			continue
		}
		groups[i] = agg
	}

	factories := make([]factory.Factory, len(m.Definitions))
	for i, d := range m.Definitions {
		if d.IsValue() {
			factories[i] = factory.Value(d.Value)
			continue
		}
		f, err := resolver.ResolveFactory(d)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		factories[i] = f
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for i, g := range m.Groups {
		r.DeclareGroup(g.ID, groups[i])
	}
	for i, d := range m.Definitions {
		if d.Group != "" {
			r.RegisterOneOf(d.Group, d.ID, factories[i], d.Args...)
			continue
		}
		r.RegisterOne(d.ID, factories[i], d.Args...)
	}
	return nil
}
