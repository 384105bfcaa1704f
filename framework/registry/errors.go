package registry

import (
	"strconv"
	"strings"
)

// Kind classifies a CompileError.
type Kind string

const (
	KindArityMismatch        Kind = "arity-mismatch"
	KindSilentOverride       Kind = "silent-override"
	KindUnresolvedDependency Kind = "unresolved-dependency"
	KindDependencyCycle      Kind = "dependency-cycle"
	KindNamespaceCollision   Kind = "namespace-collision"
)

// CompileError is a single diagnostic produced by a validator.
type CompileError interface {
	error

	// Kind classifies the diagnostic.
	Kind() Kind

	// Subject is the id the diagnostic is about.
	Subject() string
}

// ArityMismatchError reports a definition whose argument sources do not match
// its factory's arity.
type ArityMismatchError struct {
	ID       string
	Given    int
	Required int
}

// Error implements the error interface.
func (e *ArityMismatchError) Error() string {
	// Example: di: definition "x" has 2 argument sources but its factory requires 3
	return "di: definition " + strconv.Quote(e.ID) + " has " + strconv.Itoa(e.Given) +
		" argument sources but its factory requires " + strconv.Itoa(e.Required)
}

func (e *ArityMismatchError) Kind() Kind      { return KindArityMismatch }
func (e *ArityMismatchError) Subject() string { return e.ID }

// SilentOverrideError reports a definition that displaced earlier ones.
type SilentOverrideError struct {
	ID    string
	Count int
}

// Error implements the error interface.
func (e *SilentOverrideError) Error() string {
	// Example: di: definition "x" overrides 1 earlier registration(s)
	return "di: definition " + strconv.Quote(e.ID) + " overrides " + strconv.Itoa(e.Count) +
		" earlier registration(s)"
}

func (e *SilentOverrideError) Kind() Kind      { return KindSilentOverride }
func (e *SilentOverrideError) Subject() string { return e.ID }

// UnresolvedDependencyError reports an argument source that names neither a
// definition nor a group.
type UnresolvedDependencyError struct {
	ID      string
	Missing string
}

// Error implements the error interface.
func (e *UnresolvedDependencyError) Error() string {
	// Example: di: definition "a" depends on "b", which is neither a definition nor a group
	return "di: definition " + strconv.Quote(e.ID) + " depends on " + strconv.Quote(e.Missing) +
		", which is neither a definition nor a group"
}

func (e *UnresolvedDependencyError) Kind() Kind      { return KindUnresolvedDependency }
func (e *UnresolvedDependencyError) Subject() string { return e.ID }

// DependencyCycleError reports a cycle of argument sources. Path starts and
// ends with the same id.
type DependencyCycleError struct {
	Path []string
}

// Error implements the error interface.
func (e *DependencyCycleError) Error() string {
	// Example: di: dependency cycle "a" -> "b" -> "a"
	quoted := make([]string, len(e.Path))
	for i, id := range e.Path {
		quoted[i] = strconv.Quote(id)
	}
	return "di: dependency cycle " + strings.Join(quoted, " -> ")
}

func (e *DependencyCycleError) Kind() Kind { return KindDependencyCycle }

func (e *DependencyCycleError) Subject() string {
	if len(e.Path) == 0 {
		return ""
	}
	return e.Path[0]
}

// NamespaceCollisionError reports an id used both as a definition and as a
// group.
type NamespaceCollisionError struct {
	ID string
}

// Error implements the error interface.
func (e *NamespaceCollisionError) Error() string {
	return "di: " + strconv.Quote(e.ID) + " is registered both as a definition and as a group"
}

func (e *NamespaceCollisionError) Kind() Kind      { return KindNamespaceCollision }
func (e *NamespaceCollisionError) Subject() string { return e.ID }

// ── CompileErrors ─────────────────────────────────────────────────────────────

// CompileErrors is returned by Compile when any validator reported a problem.
// Errors holds every diagnostic, in pipeline order.
type CompileErrors struct {
	Errors []CompileError
}

// Error implements the error interface.
func (e *CompileErrors) Error() string {
	var b strings.Builder
	b.WriteString("di: compile failed with ")
	b.WriteString(strconv.Itoa(len(e.Errors)))
	b.WriteString(" error(s):")
	for _, err := range e.Errors {
		b.WriteString("\n- ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes every diagnostic to errors.Is and errors.As.
func (e *CompileErrors) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err
	}
	return out
}

// OfKind returns the diagnostics of the given kind, in order.
func (e *CompileErrors) OfKind(kind Kind) []CompileError {
	var out []CompileError
	for _, err := range e.Errors {
		if err.Kind() == kind {
			out = append(out, err)
		}
	}
	return out
}
