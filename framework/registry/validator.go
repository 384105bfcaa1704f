package registry

// Validator is one static-analysis pass over a Snapshot. Validators must not
// retain the snapshot or the sink beyond the call.
type Validator interface {
	Validate(s *Snapshot, d *Diagnostics)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(s *Snapshot, d *Diagnostics)

// Validate calls f(s, d).
func (f ValidatorFunc) Validate(s *Snapshot, d *Diagnostics) { f(s, d) }

// ArgumentCountValidator checks that every definition supplies exactly as
// many argument sources as its factory requires.
type ArgumentCountValidator struct{}

// Validate implements Validator.
func (ArgumentCountValidator) Validate(s *Snapshot, d *Diagnostics) {
	for _, id := range s.definitionIDs {
		def := s.definitions[id]
		if given, required := len(def.args), def.factory.Arity(); given != required {
			d.Add(&ArityMismatchError{ID: id, Given: given, Required: required})
		}
	}
}

// NoOverridesValidator reports every id whose definition displaced an earlier
// one. Registry.AllowOverrides removes it from the pipeline.
type NoOverridesValidator struct{}

// Validate implements Validator.
func (NoOverridesValidator) Validate(s *Snapshot, d *Diagnostics) {
	for _, id := range s.overriddenIDs {
		d.Add(&SilentOverrideError{ID: id, Count: len(s.overridden[id])})
	}
}

// DependencyValidator checks that every argument source names a live
// definition or a group.
type DependencyValidator struct{}

// Validate implements Validator.
func (DependencyValidator) Validate(s *Snapshot, d *Diagnostics) {
	for _, id := range s.definitionIDs {
		for _, arg := range s.definitions[id].args {
			if !s.HasDefinition(arg) && !s.HasGroup(arg) {
				d.Add(&UnresolvedDependencyError{ID: id, Missing: arg})
			}
		}
	}
}
