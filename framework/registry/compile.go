package registry

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/km-arc/go-wiring/framework/container"
)

// Compile runs every validator against the current state and, when none of
// them reports a problem, returns a ready container. Otherwise the error is a
// *CompileErrors holding every diagnostic.
//
// Compile does not modify the registry and may be called repeatedly.
func (r *Registry) Compile() (*container.Container, error) {
	return r.CompileContext(context.Background())
}

// CompileContext is Compile with a parent context for tracing.
func (r *Registry) CompileContext(ctx context.Context) (*container.Container, error) {
	ctx, span := r.tracer.Start(ctx, "registry.compile")
	defer span.End()

	r.mu.RLock()
	snap := r.snapshot()
	validators := slices.Clone(r.validators)
	r.mu.RUnlock()

	span.SetAttributes(
		attribute.Int("definitions", len(snap.definitionIDs)),
		attribute.Int("groups", len(snap.groupIDs)),
		attribute.Int("validators", len(validators)),
	)

	diags := Validate(ctx, snap, validators...)
	if diags.Len() > 0 {
		span.SetAttributes(attribute.Int("diagnostics", diags.Len()))
		span.SetStatus(codes.Error, "compile failed")
		r.logger.Debug("compile failed", "diagnostics", diags.Len())
		return nil, &CompileErrors{Errors: diags.Errors()}
	}

	r.logger.Debug("compiled registry",
		"definitions", len(snap.definitionIDs),
		"groups", len(snap.groupIDs),
	)
	return snap.Container(), nil
}

// Validate runs validators over s in order and returns the shared sink. It is
// the pipeline Compile uses, exposed for callers that only want diagnostics.
func Validate(ctx context.Context, s *Snapshot, validators ...Validator) *Diagnostics {
	tracer := tracerFromContext(ctx)
	diags := &Diagnostics{}
	for _, v := range validators {
		_, span := tracer.Start(ctx, "registry.validate")
		before := diags.Len()
		v.Validate(s, diags)
		span.SetAttributes(
			attribute.String("validator", fmt.Sprintf("%T", v)),
			attribute.Int("diagnostics", diags.Len()-before),
		)
		span.End()
	}
	return diags
}

// tracerFromContext returns a tracer from the provider of the span in ctx,
// so validator spans nest under the compile span.
func tracerFromContext(ctx context.Context) trace.Tracer {
	return trace.SpanFromContext(ctx).TracerProvider().Tracer(tracerName)
}

// Container builds the runtime container from the snapshot's live
// definitions and groups, without validating them.
func (s *Snapshot) Container() *container.Container {
	defs := make(map[string]container.Definition, len(s.definitions))
	for id, c := range s.definitions {
		defs[id] = container.Definition{
			Factory: c.factory,
			Args:    slices.Clone(c.args),
			Group:   c.group,
		}
	}

	groups := make(map[string]container.Group, len(s.groups))
	for id, g := range s.groups {
		groups[id] = container.Group{
			Aggregate: g.aggregate,
			Members:   slices.Clone(s.members[id]),
		}
	}
	return container.New(defs, groups)
}
