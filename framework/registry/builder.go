package registry

import "github.com/km-arc/go-wiring/framework/factory"

// One accumulates the argument sources of a plain definition.
//
//	r.One("server", factory.Func(newServer)).
//	    WithArg("config").
//	    WithArg("handlers").
//	    Insert()
type One struct {
	registry *Registry
	id       string
	factory  factory.Factory
	args     []string
	inserted bool
}

// WithArg appends one argument source.
func (b *One) WithArg(id string) *One {
	b.args = append(b.args, id)
	return b
}

// WithArgs appends several argument sources in order.
func (b *One) WithArgs(ids ...string) *One {
	b.args = append(b.args, ids...)
	return b
}

// Insert registers the definition. Only the first call has an effect.
func (b *One) Insert() {
	if b.inserted {
		return
	}
	b.inserted = true
	b.registry.RegisterOne(b.id, b.factory, b.args...)
}

// OneOf accumulates the argument sources of a group member.
//
//	r.OneOf("handlers", "users", factory.Func(newUsers)).
//	    WithArg("db").
//	    Insert()
type OneOf struct {
	registry *Registry
	group    string
	id       string
	factory  factory.Factory
	args     []string
	inserted bool
}

// WithArg appends one argument source.
func (b *OneOf) WithArg(id string) *OneOf {
	b.args = append(b.args, id)
	return b
}

// WithArgs appends several argument sources in order.
func (b *OneOf) WithArgs(ids ...string) *OneOf {
	b.args = append(b.args, ids...)
	return b
}

// Insert registers the member, declaring its group if needed. Only the first
// call has an effect.
func (b *OneOf) Insert() {
	if b.inserted {
		return
	}
	b.inserted = true
	b.registry.RegisterOneOf(b.group, b.id, b.factory, b.args...)
}
