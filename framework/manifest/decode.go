package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// ── HCL ───────────────────────────────────────────────────────────────────────

// hclRoot decodes every top-level block of a manifest file. Unknown blocks
// are rejected by gohcl.
type hclRoot struct {
	Groups      []*hclGroup      `hcl:"group,block"`
	Definitions []*hclDefinition `hcl:"definition,block"`
}

type hclGroup struct {
	ID      string  `hcl:"id,label"`
	Element *string `hcl:"element,optional"`
}

type hclDefinition struct {
	ID      string     `hcl:"id,label"`
	Factory *string    `hcl:"factory,optional"`
	Value   *cty.Value `hcl:"value,optional"`
	Args    []string   `hcl:"args,optional"`
	Group   *string    `hcl:"group,optional"`
	Arity   *int       `hcl:"arity,optional"`
}

// DecodeHCL decodes an HCL manifest. filename is used in diagnostics and
// recorded as each declaration's Source.
func DecodeHCL(src []byte, filename string) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	m := &Manifest{}
	for _, g := range root.Groups {
		m.Groups = append(m.Groups, GroupDecl{ID: g.ID, Element: deref(g.Element)})
	}
	for _, d := range root.Definitions {
		decl := DefinitionDecl{
			ID:      d.ID,
			Factory: deref(d.Factory),
			Args:    d.Args,
			Group:   deref(d.Group),
			Arity:   d.Arity,
		}
		if d.Value != nil {
			v, err := ctyToNative(*d.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: definition %q: %w", filename, d.ID, err)
			}
			decl.Value = v
		}
		m.Definitions = append(m.Definitions, decl)
	}
	m.setSource(filename)
	return m, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ctyToNative converts a cty.Value to its natural Go counterpart. Whole
// numbers become int so HCL, YAML and JSON literals agree.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return int(i), nil
			}
		}
		f, _ := bf.Float64()
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}

// ── YAML ──────────────────────────────────────────────────────────────────────

// DecodeYAML decodes a YAML manifest. Unknown keys are rejected.
func DecodeYAML(src []byte, filename string) (*Manifest, error) {
	m := &Manifest{}
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", filename, err)
	}
	m.setSource(filename)
	return m, nil
}

// ── JSON ──────────────────────────────────────────────────────────────────────

// DecodeJSON decodes a JSON manifest. Unknown keys are rejected and whole
// numbers in literal values become int.
func DecodeJSON(src []byte, filename string) (*Manifest, error) {
	m := &Manifest{}
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode JSON file %s: %w", filename, err)
	}
	for i := range m.Definitions {
		m.Definitions[i].Value = normalizeJSON(m.Definitions[i].Value)
	}
	m.setSource(filename)
	return m, nil
}

func normalizeJSON(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		f, _ := v.Float64()
		return f
	case []any:
		for i := range v {
			v[i] = normalizeJSON(v[i])
		}
		return v
	case map[string]any:
		for k := range v {
			v[k] = normalizeJSON(v[k])
		}
		return v
	default:
		return v
	}
}
