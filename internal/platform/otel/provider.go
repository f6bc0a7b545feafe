// Package otel configures opt-in OpenTelemetry tracing for service binaries.
package otel

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	envEndpoint = "PORTARIA_OTEL_ENDPOINT"
	envEnabled  = "PORTARIA_OTEL_ENABLED"
)

var noopShutdown = func(context.Context) error { return nil }

// Setup registers a global tracer provider exporting spans over OTLP/HTTP.
//
// Tracing is opt-in: with no PORTARIA_OTEL_ENDPOINT, or with
// PORTARIA_OTEL_ENABLED set to "false", Setup is a no-op and the returned
// shutdown function does nothing. Otherwise the caller must invoke the
// shutdown function to flush pending spans.
func Setup(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	endpoint, ok := tracingEndpoint()
	if !ok {
		return noopShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noopShutdown, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noopShutdown, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return provider.Shutdown, nil
}

func tracingEndpoint() (string, bool) {
	if strings.EqualFold(os.Getenv(envEnabled), "false") {
		return "", false
	}
	endpoint := os.Getenv(envEndpoint)
	return endpoint, endpoint != ""
}
