package manifest

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-/*\[\]]*$`)

// ── Types ────────────────────────────────────────────────────────────────────

// FieldErrors holds declaration errors keyed by field path, e.g.
// "definitions[2].factory".
// JSON output: {"errors": {"field": ["msg1", "msg2"]}}
type FieldErrors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *FieldErrors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *FieldErrors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a field.
func (e *FieldErrors) First(field string) string {
	if msgs, ok := e.Bag[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Fields returns the failing field paths, sorted.
func (e *FieldErrors) Fields() []string { return slices.Sorted(maps.Keys(e.Bag)) }

// Error implements the error interface.
func (e *FieldErrors) Error() string {
	var b strings.Builder
	b.WriteString("manifest: invalid declarations:")
	for _, field := range e.Fields() {
		for _, msg := range e.Bag[field] {
			b.WriteString("\n- ")
			b.WriteString(msg)
		}
	}
	return b.String()
}

// ── Rules ────────────────────────────────────────────────────────────────────

// Rules is a map of field → pipe-separated rule string.
// e.g. Rules{"id": "required|identifier", "arity": "sometimes|integer|gte:0"}
type Rules map[string]string

// fieldValidator checks one declaration's flattened fields.
type fieldValidator struct {
	prefix string
	data   map[string]string
	rules  Rules
	errors *FieldErrors
}

var groupRules = Rules{
	"id":      "required|identifier",
	"element": "sometimes|identifier",
}

var definitionRules = Rules{
	"id":      "required|identifier",
	"factory": "required_without:value|prohibited_with:value|sometimes|identifier",
	"group":   "sometimes|identifier",
	"arity":   "prohibited_with:value|sometimes|integer|gte:0",
}

// Validate checks the shape of every declaration in m and returns every
// failure at once. It never looks at other declarations; cross-references
// are the registry's job.
func Validate(m *Manifest) *FieldErrors {
	errs := &FieldErrors{}

	for i, g := range m.Groups {
		validateFields(errs, fmt.Sprintf("groups[%d]", i), map[string]string{
			"id":      g.ID,
			"element": g.Element,
		}, groupRules)
	}

	for i, d := range m.Definitions {
		prefix := fmt.Sprintf("definitions[%d]", i)
		data := map[string]string{
			"id":      d.ID,
			"factory": d.Factory,
			"group":   d.Group,
		}
		if d.IsValue() {
			data["value"] = "1"
		}
		if d.Arity != nil {
			data["arity"] = strconv.Itoa(*d.Arity)
		}
		validateFields(errs, prefix, data, definitionRules)

		for j, arg := range d.Args {
			validateFields(errs, fmt.Sprintf("%s.args[%d]", prefix, j),
				map[string]string{"": arg}, Rules{"": "required|identifier"})
		}
	}
	return errs
}

func validateFields(errs *FieldErrors, prefix string, data map[string]string, rules Rules) {
	v := &fieldValidator{prefix: prefix, data: data, rules: rules, errors: errs}
	v.validate()
}

// ── Core validation loop ─────────────────────────────────────────────────────

func (v *fieldValidator) validate() {
	for _, field := range slices.Sorted(maps.Keys(v.rules)) {
		value := v.data[field]
		for _, rule := range strings.Split(v.rules[field], "|") {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}

			// min:3 → name=min, param=3
			name, param, _ := strings.Cut(rule, ":")

			if !v.applyRule(v.path(field), value, name, param) {
				break // bail on first failure
			}
		}
	}
}

func (v *fieldValidator) path(field string) string {
	if field == "" {
		return v.prefix
	}
	return v.prefix + "." + field
}

// applyRule returns true if the rule passes.
func (v *fieldValidator) applyRule(field, value, rule, param string) bool {
	switch rule {
	case "required":
		if strings.TrimSpace(value) == "" {
			v.errors.add(field, fmt.Sprintf("The %s field is required.", field))
			return false
		}

	case "required_without":
		if value == "" && v.data[param] == "" {
			v.errors.add(field, fmt.Sprintf("The %s field is required when %s is not present.", field, param))
			return false
		}

	case "prohibited_with":
		if value != "" && v.data[param] != "" {
			v.errors.add(field, fmt.Sprintf("The %s field is prohibited when %s is present.", field, param))
			return false
		}

	case "sometimes":
		// Skip remaining rules if field is absent.
		if value == "" {
			return false
		}

	case "identifier":
		if !identifierRe.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s must be a valid identifier.", field))
			return false
		}

	case "integer":
		if _, err := strconv.Atoi(value); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s must be an integer.", field))
			return false
		}

	case "gte":
		f, _ := strconv.ParseFloat(value, 64)
		t, _ := strconv.ParseFloat(param, 64)
		if f < t {
			v.errors.add(field, fmt.Sprintf("The %s must be greater than or equal to %s.", field, param))
			return false
		}
	}

	return true
}
