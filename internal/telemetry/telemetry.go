// Package telemetry sets up tracing of the install steps.
package telemetry

import (
	"context"
	"fmt"

	"github.com/archstrap/archstrap/internal/build"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer every archstrap span is recorded with.
const TracerName = "github.com/archstrap/archstrap"

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// Setup installs a tracer provider exporting spans to the Jaeger collector at endpoint. Without an endpoint the
// global no-op provider stays in place and the returned ShutdownFunc does nothing.
func Setup(endpoint string) (ShutdownFunc, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to create jaeger exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "archstrap"),
			attribute.String("service.version", build.Version),
		)),
	)
	otel.SetTracerProvider(provider)
	logrus.WithField("endpoint", endpoint).Debug("Tracing enabled")

	return provider.Shutdown, nil
}

// Tracer returns the archstrap tracer of the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
