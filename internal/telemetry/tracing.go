package telemetry

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of every span we create.
const TracerName = "github.com/streamssr/streamssr"

// Exporters accepted by SetupTracing.
const (
	TraceNone   = ""
	TraceStdout = "stdout"
)

// Shutdown flushes and stops a tracer provider.
type Shutdown func(context.Context) error

// TracerProvider builds a provider for exporter. TraceNone returns the
// global provider unchanged and a no-op shutdown. w defaults to stdout.
func TracerProvider(exporter string, w io.Writer) (trace.TracerProvider, Shutdown, error) {
	if exporter == TraceNone {
		return otel.GetTracerProvider(), func(context.Context) error { return nil }, nil
	}
	if w == nil {
		w = os.Stdout
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "streamssr"),
		)),
	)
	return tp, tp.Shutdown, nil
}

// SetupTracing installs a provider for exporter as the global one and
// returns its shutdown.
func SetupTracing(exporter string, w io.Writer) (Shutdown, error) {
	tp, shutdown, err := TracerProvider(exporter, w)
	if err != nil {
		return nil, err
	}
	if exporter != TraceNone {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{},
		))
	}
	return shutdown, nil
}

// Tracer returns our tracer from tp, or from the global provider if tp
// is nil.
func Tracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		return otel.Tracer(TracerName)
	}
	return tp.Tracer(TracerName)
}
