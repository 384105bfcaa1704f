package registry

import (
	"slices"
	"strings"
)

// CycleValidator reports cycles among argument sources, including a
// definition that names itself. An argument naming a group depends on every
// member of that group; a name that is both a definition and a group resolves
// to the definition, as it does in the container.
//
// It is not part of the default pipeline.
type CycleValidator struct{}

// Validate implements Validator.
func (CycleValidator) Validate(s *Snapshot, d *Diagnostics) {
	edges := dependencyEdges(s)
	nodes := make([]string, 0, len(edges))
	for id := range edges {
		nodes = append(nodes, id)
	}
	slices.Sort(nodes)

	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(nodes))
	seen := make(map[string]bool)
	var stack []string

	var visit func(id string)
	visit = func(id string) {
		color[id] = grey
		stack = append(stack, id)

		for _, next := range edges[id] {
			switch color[next] {
			case white:
				visit(next)
			case grey:
				start := slices.Index(stack, next)
				path := canonicalCycle(stack[start:])
				key := strings.Join(path, "\x00")
				if !seen[key] {
					seen[key] = true
					d.Add(&DependencyCycleError{Path: path})
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for _, id := range nodes {
		if color[id] == white {
			visit(id)
		}
	}
}

// dependencyEdges maps every resolvable node to the nodes it depends on, in
// argument order. Unresolved arguments are left to DependencyValidator.
func dependencyEdges(s *Snapshot) map[string][]string {
	edges := make(map[string][]string, len(s.definitionIDs)+len(s.groupIDs))
	for _, id := range s.definitionIDs {
		var deps []string
		for _, arg := range s.definitions[id].args {
			if s.HasDefinition(arg) || s.HasGroup(arg) {
				deps = append(deps, arg)
			}
		}
		edges[id] = deps
	}
	for _, id := range s.groupIDs {
		if s.HasDefinition(id) {
			continue
		}
		edges[id] = s.members[id]
	}
	return edges
}

// canonicalCycle rotates a cycle so it starts at its smallest id and closes
// it by repeating that id at the end.
func canonicalCycle(cycle []string) []string {
	start := 0
	for i, id := range cycle {
		if id < cycle[start] {
			start = i
		}
	}
	path := make([]string, 0, len(cycle)+1)
	path = append(path, cycle[start:]...)
	path = append(path, cycle[:start]...)
	return append(path, path[0])
}

// NamespaceCollisionValidator reports ids that are both a definition and a
// group. It is not part of the default pipeline.
type NamespaceCollisionValidator struct{}

// Validate implements Validator.
func (NamespaceCollisionValidator) Validate(s *Snapshot, d *Diagnostics) {
	for _, id := range s.definitionIDs {
		if s.HasGroup(id) {
			d.Add(&NamespaceCollisionError{ID: id})
		}
	}
}
