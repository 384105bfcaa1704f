// Package tracing builds the OpenTelemetry tracer provider used by the
// registry's compile spans.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/km-arc/go-wiring/framework/config"
)

const (
	instrumentationName = "github.com/km-arc/go-wiring"
	defaultEndpoint     = "localhost:4317"
	defaultServiceName  = "go-wiring"
)

// Options configures NewProvider.
type Options struct {
	Exporter    string    // none | stdout | otlp
	Endpoint    string    // otlp collector, default localhost:4317
	ServiceName string    // service.name resource attribute
	Writer      io.Writer // stdout exporter target, default os.Stdout
}

// OptionsFromConfig maps the trace section of cfg to Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Exporter:    cfg.Trace.Exporter,
		Endpoint:    cfg.Trace.Endpoint,
		ServiceName: cfg.App.Name,
	}
}

// Provider owns the tracer the registry records compile spans with.
type Provider struct {
	sdk    *sdktrace.TracerProvider // nil when disabled
	tracer trace.Tracer
}

// NewProvider builds a provider for opts.Exporter. The "none" exporter
// yields a no-op tracer and leaves the global provider alone; any other
// exporter installs the new provider globally.
//
// Stdout spans are written as each span ends, since the CLI exits right
// after one compile. OTLP spans are batched.
func NewProvider(opts Options) (*Provider, error) {
	var export sdktrace.TracerProviderOption

	switch opts.Exporter {
	case "", "none":
		return &Provider{tracer: noop.NewTracerProvider().Tracer(instrumentationName)}, nil

	case "stdout":
		w := opts.Writer
		if w == nil {
			w = os.Stdout
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("tracing: stdout exporter: %w", err)
		}
		export = sdktrace.WithSyncer(exp)

	case "otlp":
		endpoint := opts.Endpoint
		if endpoint == "" {
			endpoint = defaultEndpoint
		}
		exp, err := otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("tracing: otlp exporter for %s: %w", endpoint, err)
		}
		export = sdktrace.WithBatcher(exp)

	default:
		return nil, fmt.Errorf("tracing: unknown exporter %q (want none, stdout or otlp)", opts.Exporter)
	}

	name := opts.ServiceName
	if name == "" {
		name = defaultServiceName
	}

	tp := sdktrace.NewTracerProvider(
		export,
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", name))),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return &Provider{sdk: tp, tracer: tp.Tracer(instrumentationName)}, nil
}

// Tracer returns the tracer for compile spans.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Enabled reports whether spans leave the process.
func (p *Provider) Enabled() bool { return p.sdk != nil }

// Shutdown flushes and stops the exporter. It is a no-op when disabled.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	return p.sdk.Shutdown(ctx)
}
