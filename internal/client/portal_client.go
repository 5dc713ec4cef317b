package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"insurance-portal/internal/models"
)

const maxErrorBody = 4 << 10

// PortalClient talks to the insurance API on behalf of one portal user
type PortalClient struct {
	baseURL         string
	documentsOrigin string
	token           string
	httpClient      *http.Client
	tracer          trace.Tracer
}

// Option configures a PortalClient
type Option func(*PortalClient)

// WithHTTPClient replaces the default client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *PortalClient) { c.httpClient = hc }
}

// WithDocumentsOrigin sets the origin relative document paths are resolved against.
// It defaults to the API base URL's origin.
func WithDocumentsOrigin(origin string) Option {
	return func(c *PortalClient) { c.documentsOrigin = strings.TrimRight(origin, "/") }
}

// WithTracerProvider sets where request spans are recorded. It defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *PortalClient) { c.tracer = tp.Tracer("insurance-portal/client") }
}

// NewPortalClient creates a new client for the API at baseURL
func NewPortalClient(baseURL string, timeout time.Duration, opts ...Option) *PortalClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &PortalClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.documentsOrigin == "" {
		c.documentsOrigin = origin(c.baseURL)
	}
	if c.tracer == nil {
		c.tracer = otel.GetTracerProvider().Tracer("insurance-portal/client")
	}
	return c
}

// WithToken returns a copy of the client that authenticates with token
func (c *PortalClient) WithToken(token string) *PortalClient {
	clone := *c
	clone.token = token
	return &clone
}

// Token returns the bearer token the client is bound to
func (c *PortalClient) Token() string {
	return c.token
}

// DocumentURL resolves a document path returned by the API. Absolute URLs pass through.
func (c *PortalClient) DocumentURL(path string) string {
	if path == "" {
		return ""
	}
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	return c.documentsOrigin + "/" + strings.TrimLeft(path, "/")
}

func origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil
func (c *PortalClient) do(ctx context.Context, method, path string, body, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, method+" "+routeOf(path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// routeOf drops the query string and replaces numeric segments so span names stay low-cardinality
func routeOf(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg != "" && strings.Trim(seg, "0123456789") == "" {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		apiErr.Code = envelope.Code
		apiErr.Message = envelope.Message
		if apiErr.Message == "" {
			apiErr.Message = envelope.Error
		}
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// HealthCheck checks the health of the insurance API
func (c *PortalClient) HealthCheck(ctx context.Context) (*models.HealthResponse, error) {
	var health models.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	return &health, nil
}
