package manifest

// Manifest is a decoded set of declarations. Declarations keep the order in
// which they appear in their source files.
type Manifest struct {
	Groups      []GroupDecl      `json:"groups,omitempty" yaml:"groups,omitempty"`
	Definitions []DefinitionDecl `json:"definitions,omitempty" yaml:"definitions,omitempty"`
}

// GroupDecl declares a group. Element names the collection's element type in
// the resolver; an empty element collects values of any type.
type GroupDecl struct {
	ID      string `json:"id" yaml:"id"`
	Element string `json:"element,omitempty" yaml:"element,omitempty"`

	Source string `json:"-" yaml:"-"`
}

// DefinitionDecl declares a definition. Exactly one of Factory and Value is
// set: Factory names a constructor in the resolver, Value is a literal.
type DefinitionDecl struct {
	ID      string   `json:"id" yaml:"id"`
	Factory string   `json:"factory,omitempty" yaml:"factory,omitempty"`
	Value   any      `json:"value,omitempty" yaml:"value,omitempty"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty"`
	Group   string   `json:"group,omitempty" yaml:"group,omitempty"`

	// Arity is the factory's expected argument count. Stubs uses it to
	// describe factories it cannot see; it defaults to len(Args).
	Arity *int `json:"arity,omitempty" yaml:"arity,omitempty"`

	Source string `json:"-" yaml:"-"`
}

// IsValue reports whether the declaration is a literal value.
func (d DefinitionDecl) IsValue() bool { return d.Value != nil }

// Merge concatenates manifests in order.
func Merge(ms ...*Manifest) *Manifest {
	out := &Manifest{}
	for _, m := range ms {
		if m == nil {
			continue
		}
		out.Groups = append(out.Groups, m.Groups...)
		out.Definitions = append(out.Definitions, m.Definitions...)
	}
	return out
}

// setSource stamps every declaration with the file it came from.
func (m *Manifest) setSource(filename string) {
	for i := range m.Groups {
		m.Groups[i].Source = filename
	}
	for i := range m.Definitions {
		m.Definitions[i].Source = filename
	}
}
