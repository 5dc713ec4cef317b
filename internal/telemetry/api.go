package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PortalTelemetry provides the portal's request and domain instruments
type PortalTelemetry struct {
	requestCounter    metric.Int64Counter
	errorCounter      metric.Int64Counter
	durationHistogram metric.Float64Histogram

	offerSaveCounter      metric.Int64Counter
	offerDeleteCounter    metric.Int64Counter
	dashboardMountCounter metric.Int64Counter
	upstreamErrorCounter  metric.Int64Counter
}

// RequestMetrics contains the telemetry data for a request
type RequestMetrics struct {
	Method       string
	Endpoint     string // route template, never the raw path
	StatusCode   int
	Duration     time.Duration
	ErrorMessage string
	ClientIP     string // raw IP, logged only
	ClientIPType string // "internal", "external", "localhost", "invalid" or "unknown"
	Role         string
}

// NewPortalTelemetry creates every instrument on meter
func NewPortalTelemetry(meter metric.Meter) (*PortalTelemetry, error) {
	t := &PortalTelemetry{}
	var err error

	counters := []struct {
		dst         *metric.Int64Counter
		name        string
		description string
	}{
		{&t.requestCounter, "portal_requests_total", "Total number of portal API requests"},
		{&t.errorCounter, "portal_errors_total", "Total number of portal API requests answered with an error"},
		{&t.offerSaveCounter, "portal_offer_saves_total", "Inline offer edits sent to the insurance API"},
		{&t.offerDeleteCounter, "portal_offer_deletes_total", "Offer deletions confirmed by agents"},
		{&t.dashboardMountCounter, "portal_dashboard_mounts_total", "Dashboards mounted per role"},
		{&t.upstreamErrorCounter, "portal_upstream_errors_total", "Failed calls to the insurance API"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit("1"))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
	}

	t.durationHistogram, err = meter.Float64Histogram(
		"portal_request_duration_seconds",
		metric.WithDescription("Duration of portal API requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	slog.Info("Portal telemetry initialized successfully")
	return t, nil
}

func (m RequestMetrics) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("method", m.Method),
		attribute.String("endpoint", m.Endpoint),
		attribute.Int("status_code", m.StatusCode),
	}
	if m.ClientIPType != "" {
		attrs = append(attrs, attribute.String("client_ip_type", m.ClientIPType))
	}
	if m.Role != "" {
		attrs = append(attrs, attribute.String("role", m.Role))
	}
	return attrs
}

// RegisterRequestReceived records a successful request
func (t *PortalTelemetry) RegisterRequestReceived(ctx context.Context, m RequestMetrics) {
	t.requestCounter.Add(ctx, 1, metric.WithAttributes(m.attributes()...))

	slog.Debug("Recorded successful API request",
		"method", m.Method,
		"endpoint", m.Endpoint,
		"status_code", m.StatusCode,
		"client_ip", m.ClientIP,
		"duration_ms", m.Duration.Milliseconds())
}

// RegisterRequestError records a failed request; it also counts towards the request total
func (t *PortalTelemetry) RegisterRequestError(ctx context.Context, m RequestMetrics) {
	attrs := m.attributes()
	t.requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	attrs = append(attrs, attribute.String("error_type", categorizeError(m.ErrorMessage)))
	t.errorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	slog.Debug("Recorded API request error",
		"method", m.Method,
		"endpoint", m.Endpoint,
		"status_code", m.StatusCode,
		"client_ip", m.ClientIP,
		"error", m.ErrorMessage)
}

// RegisterRequestDuration records the duration of a request
func (t *PortalTelemetry) RegisterRequestDuration(ctx context.Context, m RequestMetrics) {
	t.durationHistogram.Record(ctx, m.Duration.Seconds(), metric.WithAttributes(m.attributes()...))
}

// RecordOfferSave counts one inline edit save with its outcome
func (t *PortalTelemetry) RecordOfferSave(ctx context.Context, ok bool) {
	t.offerSaveCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result(ok))))
}

// RecordOfferDelete counts one confirmed deletion with its outcome
func (t *PortalTelemetry) RecordOfferDelete(ctx context.Context, ok bool) {
	t.offerDeleteCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result(ok))))
}

// RecordDashboardMount counts a dashboard mount for role
func (t *PortalTelemetry) RecordDashboardMount(ctx context.Context, role string, ok bool) {
	t.dashboardMountCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", role),
		attribute.String("result", result(ok))))
}

// RecordUpstreamError counts a failed insurance API call by HTTP status (0 for transport errors)
func (t *PortalTelemetry) RecordUpstreamError(ctx context.Context, statusCode int) {
	t.upstreamErrorCounter.Add(ctx, 1, metric.WithAttributes(attribute.Int("status_code", statusCode)))
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// categorizeError groups similar errors to prevent high cardinality
func categorizeError(errorMessage string) string {
	msg := strings.ToLower(errorMessage)
	switch {
	case msg == "":
		return "unknown"
	case strings.Contains(msg, "not found"):
		return "not_found"
	case strings.Contains(msg, "unauthorized"):
		return "unauthorized"
	case strings.Contains(msg, "forbidden"):
		return "forbidden"
	case strings.Contains(msg, "too many"):
		return "rate_limited"
	case strings.Contains(msg, "conflict"):
		return "conflict"
	case strings.Contains(msg, "bad gateway"):
		return "upstream"
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "bad request"), strings.Contains(msg, "invalid"):
		return "bad_request"
	case strings.Contains(msg, "internal"):
		return "internal_error"
	default:
		return "other"
	}
}

var privateRanges = func() []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
		"fc00::/7",
		"fe80::/10",
	} {
		_, n, err := net.ParseCIDR(cidr)
		if err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}()

// NormalizeClientIP categorizes client IPs to control cardinality
func NormalizeClientIP(clientIP string) string {
	if clientIP == "" {
		return "unknown"
	}
	ip := net.ParseIP(clientIP)
	if ip == nil {
		return "invalid"
	}
	if ip.IsLoopback() {
		return "localhost"
	}
	for _, n := range privateRanges {
		if n.Contains(ip) {
			return "internal"
		}
	}
	return "external"
}
