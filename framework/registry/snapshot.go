package registry

import (
	"maps"
	"slices"
)

// Snapshot is a read-only view of a Registry, taken at one point in time.
// Validators receive a Snapshot; it is safe to read from several goroutines.
//
// Every id listing is sorted, so anything derived from a Snapshot is
// deterministic.
type Snapshot struct {
	groups      map[string]*GroupCandidate
	definitions map[string]*DefinitionCandidate
	overridden  map[string][]*DefinitionCandidate

	groupIDs      []string
	definitionIDs []string
	overriddenIDs []string

	// group id → sorted ids of live definitions that belong to it
	members map[string][]string
}

func newSnapshot(
	groups map[string]*GroupCandidate,
	definitions map[string]*DefinitionCandidate,
	overridden map[string][]*DefinitionCandidate,
) *Snapshot {
	s := &Snapshot{
		groups:      maps.Clone(groups),
		definitions: maps.Clone(definitions),
		overridden:  make(map[string][]*DefinitionCandidate, len(overridden)),
		members:     make(map[string][]string),
	}
	for id, prev := range overridden {
		s.overridden[id] = slices.Clone(prev)
	}

	s.groupIDs = slices.Sorted(maps.Keys(s.groups))
	s.definitionIDs = slices.Sorted(maps.Keys(s.definitions))
	s.overriddenIDs = slices.Sorted(maps.Keys(s.overridden))

	for _, id := range s.definitionIDs {
		if g := s.definitions[id].group; g != "" {
			s.members[g] = append(s.members[g], id)
		}
	}
	return s
}

// DefinitionIDs returns the ids of all live definitions.
func (s *Snapshot) DefinitionIDs() []string { return slices.Clone(s.definitionIDs) }

// Definition returns the live definition for id.
func (s *Snapshot) Definition(id string) (*DefinitionCandidate, bool) {
	c, ok := s.definitions[id]
	return c, ok
}

// HasDefinition reports whether id is a live definition.
func (s *Snapshot) HasDefinition(id string) bool {
	_, ok := s.definitions[id]
	return ok
}

// GroupIDs returns the ids of all declared groups.
func (s *Snapshot) GroupIDs() []string { return slices.Clone(s.groupIDs) }

// Group returns the group candidate for id.
func (s *Snapshot) Group(id string) (*GroupCandidate, bool) {
	g, ok := s.groups[id]
	return g, ok
}

// HasGroup reports whether id is a declared group.
func (s *Snapshot) HasGroup(id string) bool {
	_, ok := s.groups[id]
	return ok
}

// Members returns the ids of the live definitions that belong to groupID.
func (s *Snapshot) Members(groupID string) []string { return slices.Clone(s.members[groupID]) }

// OverriddenIDs returns every id that has at least one displaced candidate.
func (s *Snapshot) OverriddenIDs() []string { return slices.Clone(s.overriddenIDs) }

// Overridden returns the candidates displaced from id, oldest first.
func (s *Snapshot) Overridden(id string) []*DefinitionCandidate {
	return slices.Clone(s.overridden[id])
}

// ── Diagnostics ───────────────────────────────────────────────────────────────

// Diagnostics is the append-only sink shared by every validator in one
// compile.
type Diagnostics struct {
	errs []CompileError
}

// Add appends a diagnostic. A nil diagnostic is ignored.
func (d *Diagnostics) Add(err CompileError) {
	if err == nil {
		return
	}
	d.errs = append(d.errs, err)
}

// Len returns the number of diagnostics collected so far.
func (d *Diagnostics) Len() int { return len(d.errs) }

// Errors returns the diagnostics in the order they were added.
func (d *Diagnostics) Errors() []CompileError { return slices.Clone(d.errs) }
