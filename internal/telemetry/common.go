package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
)

const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterNone       = "none"
)

// Telemetry owns the meter provider selected by METRICS_EXPORTER
type Telemetry struct {
	Provider *metric.MeterProvider // nil when metrics are disabled
	exporter string
	meter    api.Meter
}

// InitMetrics builds the meter provider for exporter and installs it globally.
// "prometheus" exposes the scrape handler returned by Handler; "otlp" pushes to
// OTEL_EXPORTER_OTLP_METRICS_ENDPOINT (default localhost:4317); "none" records nothing.
func InitMetrics(ctx context.Context, exporter, meterName string) (*Telemetry, error) {
	t := &Telemetry{exporter: exporter}

	switch exporter {
	case ExporterPrometheus:
		slog.Info("Starting metrics with prometheus scrape exporter")
		// The exporter is both a Reader and a prometheus.Collector on the default registry.
		reader, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		t.Provider = metric.NewMeterProvider(metric.WithReader(reader))

	case ExporterOTLP:
		slog.Info("Starting metrics with grpc exporter")
		exp, err := otlpmetricgrpc.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create grpc exporter: %w", err)
		}
		t.Provider = metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(exp)))

	case ExporterNone, "":
		slog.Info("Metrics disabled")
		t.meter = noop.NewMeterProvider().Meter(meterName)
		return t, nil

	default:
		return nil, fmt.Errorf("unknown metrics exporter %q", exporter)
	}

	otel.SetMeterProvider(t.Provider)
	t.meter = t.Provider.Meter(meterName)
	return t, nil
}

// Meter returns the meter instruments should be created on
func (t *Telemetry) Meter() api.Meter {
	return t.meter
}

// Handler returns the /metrics scrape handler, or nil unless the prometheus exporter is active
func (t *Telemetry) Handler() http.Handler {
	if t.exporter != ExporterPrometheus {
		return nil
	}
	return promhttp.Handler()
}

// Shutdown flushes and stops the provider
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.Provider == nil {
		return nil
	}
	err := errors.Join(t.Provider.ForceFlush(ctx), t.Provider.Shutdown(ctx))
	if err != nil {
		return fmt.Errorf("failed to shut down meter provider: %w", err)
	}
	slog.Info("Metrics provider shut down")
	return nil
}
