package inspect

import (
	"errors"

	"github.com/km-arc/go-wiring/framework/manifest"
	"github.com/km-arc/go-wiring/framework/registry"
)

// KindInvalidDeclaration marks a diagnostic raised while reading a manifest,
// before the registry saw it.
const KindInvalidDeclaration registry.Kind = "invalid-declaration"

// Diagnostic is the JSON view of one problem.
type Diagnostic struct {
	Kind    registry.Kind `json:"kind"`
	Subject string        `json:"subject,omitempty"`
	Message string        `json:"message"`
}

// Report is the result of linting or compiling a registry.
type Report struct {
	Valid  bool         `json:"valid"`
	Errors []Diagnostic `json:"errors"`
}

// NewReport converts the error of a compile or manifest apply into a Report.
// A nil error is a valid report.
func NewReport(err error) Report {
	rep := Report{Valid: err == nil, Errors: []Diagnostic{}}
	if err == nil {
		return rep
	}

	var compileErrs *registry.CompileErrors
	var fieldErrs *manifest.FieldErrors
	switch {
	case errors.As(err, &compileErrs):
		for _, e := range compileErrs.Errors {
			rep.Errors = append(rep.Errors, Diagnostic{Kind: e.Kind(), Subject: e.Subject(), Message: e.Error()})
		}
	case errors.As(err, &fieldErrs):
		for _, field := range fieldErrs.Fields() {
			for _, msg := range fieldErrs.Bag[field] {
				rep.Errors = append(rep.Errors, Diagnostic{Kind: KindInvalidDeclaration, Subject: field, Message: msg})
			}
		}
	default:
		rep.Errors = append(rep.Errors, Diagnostic{Kind: KindInvalidDeclaration, Message: err.Error()})
	}
	return rep
}
