// Package tracing sets up the OpenTelemetry tracer used around sweep planning and
// submission.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	SpanPlan   = "xyzplot.plan"
	SpanSubmit = "xyzplot.submit"

	AttrFolder     = "xyzplot.folder"
	AttrRunID      = "xyzplot.run_id"
	AttrSourceNode = "xyzplot.source_node"
	AttrCellCount  = "xyzplot.cell_count"
	AttrCell       = "xyzplot.cell"
	AttrTargets    = "xyzplot.targets"

	DefaultServiceName = "xyzplot"
)

// Config configures the tracing subsystem.
type Config struct {
	// Enabled controls whether tracing is active. When false a no-op tracer is used.
	Enabled bool
	// Exporter selects the export backend: "stdout" or "none".
	Exporter    string
	ServiceName string
	// Writer receives stdout exporter output; defaults to os.Stdout.
	Writer io.Writer
	// SpanExporter overrides Exporter and is flushed synchronously.
	SpanExporter sdktrace.SpanExporter
}

// DefaultConfig returns the disabled configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		Exporter:    "stdout",
		ServiceName: DefaultServiceName,
	}
}

// Provider wraps the tracer provider and its tracer.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	enabled  bool
}

// NewProvider creates the trace provider. A disabled config yields a no-op provider.
func NewProvider(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracer: noop.NewTracerProvider().Tracer("noop")}, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	switch {
	case cfg.SpanExporter != nil:
		opts = append(opts, sdktrace.WithSyncer(cfg.SpanExporter))
	case cfg.Exporter == "stdout":
		writer := cfg.Writer
		if writer == nil {
			writer = os.Stdout
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(writer), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	case cfg.Exporter == "none" || cfg.Exporter == "":
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.Exporter)
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)

	return &Provider{
		provider: provider,
		tracer:   provider.Tracer(serviceName),
		enabled:  true,
	}, nil
}

// Tracer returns the configured tracer; never nil.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil || p.tracer == nil {
		return noop.NewTracerProvider().Tracer("noop")
	}
	return p.tracer
}

// Enabled reports whether spans are recorded.
func (p *Provider) Enabled() bool {
	return p != nil && p.enabled
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p != nil && p.provider != nil {
		return p.provider.Shutdown(ctx)
	}
	return nil
}
