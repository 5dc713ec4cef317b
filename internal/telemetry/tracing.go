package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Tracing owns the tracer provider selected by TRACES_EXPORTER
type Tracing struct {
	provider *sdktrace.TracerProvider // nil when tracing is disabled
}

// InitTracing installs a global tracer provider. "otlp" batches spans to
// OTEL_EXPORTER_OTLP_TRACES_ENDPOINT; "none" leaves a no-op provider in place.
func InitTracing(ctx context.Context, exporter, serviceName, version string) (*Tracing, error) {
	switch exporter {
	case ExporterOTLP:
	case ExporterNone, "":
		slog.Info("Tracing disabled")
		otel.SetTracerProvider(noop.NewTracerProvider())
		return &Tracing{}, nil
	default:
		return nil, fmt.Errorf("unknown traces exporter %q", exporter)
	}

	slog.Info("Starting tracing with grpc exporter")
	exp, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exp),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return &Tracing{provider: tp}, nil
}

// Provider returns the installed tracer provider
func (t *Tracing) Provider() trace.TracerProvider {
	if t.provider == nil {
		return otel.GetTracerProvider()
	}
	return t.provider
}

// Shutdown flushes pending spans
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down tracer provider: %w", err)
	}
	slog.Info("Tracer provider shut down")
	return nil
}
