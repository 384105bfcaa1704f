package registry

import (
	"slices"

	"github.com/km-arc/go-wiring/framework/factory"
)

// DefinitionCandidate is a pending definition: a factory, the ids of its
// positional arguments, and the group it contributes to, if any.
type DefinitionCandidate struct {
	factory factory.Factory
	args    []string
	group   string
}

func newDefinitionCandidate(f factory.Factory, args []string, group string) *DefinitionCandidate {
	return &DefinitionCandidate{
		factory: f,
		args:    slices.Clone(args),
		group:   group,
	}
}

// Factory returns the candidate's factory.
func (c *DefinitionCandidate) Factory() factory.Factory { return c.factory }

// Args returns the argument sources in positional order.
func (c *DefinitionCandidate) Args() []string { return slices.Clone(c.args) }

// Group returns the owning group id, or "" when the candidate is not a member.
func (c *DefinitionCandidate) Group() string { return c.group }

// HasGroup reports whether the candidate is a group member.
func (c *DefinitionCandidate) HasGroup() bool { return c.group != "" }

// GroupCandidate is a pending group.
type GroupCandidate struct {
	aggregate factory.Aggregate
}

func newGroupCandidate(agg factory.Aggregate) *GroupCandidate {
	return &GroupCandidate{aggregate: agg}
}

// Aggregate returns the descriptor of the group's collection type.
func (g *GroupCandidate) Aggregate() factory.Aggregate { return g.aggregate }
