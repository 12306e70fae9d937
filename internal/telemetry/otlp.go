// Package telemetry wires OpenTelemetry tracing for the backend.
package telemetry

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.uber.org/zap"

	"chronology/internal/logging"
)

// EndpointEnv enables export when set.
const EndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"

// DefaultServiceName is used when OTEL_SERVICE_NAME is unset.
const DefaultServiceName = "chronology"

// Provider owns the installed tracer provider.
type Provider struct {
	provider *sdktrace.TracerProvider
}

// Setup installs an OTLP/HTTP tracer provider as the global provider when
// OTEL_EXPORTER_OTLP_ENDPOINT is set. Without it tracing stays a no-op and
// Setup returns nil, nil.
func Setup(ctx context.Context, logger *zap.Logger) (*Provider, error) {
	endpoint := os.Getenv(EndpointEnv)
	if endpoint == "" {
		return nil, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	serviceName := os.Getenv("OTEL_SERVICE_NAME")
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	p := NewProvider(serviceName, sdktrace.WithBatcher(exporter))
	logging.OrNop(logger).Info("OTLP tracing enabled",
		zap.String("endpoint", endpoint), zap.String("service", serviceName))
	return p, nil
}

// NewProvider builds a tracer provider for serviceName with extra options
// and installs it globally.
func NewProvider(serviceName string, opts ...sdktrace.TracerProviderOption) *Provider {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)
	opts = append(opts, sdktrace.WithResource(res))
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return &Provider{provider: tp}
}

// Shutdown flushes and closes the provider. Safe on a nil Provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}
