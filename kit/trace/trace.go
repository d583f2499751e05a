package trace

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type ShutdownFunc func(context.Context) error

type tracerConfig struct {
	serviceVersion string
	environment    string
	sampleRatio    float64
	clientOptions  []otlptracegrpc.Option
}

type tracerOption func(*tracerConfig)

func WithServiceVersion(version string) tracerOption {
	return func(c *tracerConfig) {
		c.serviceVersion = version
	}
}

func WithEnvironment(env string) tracerOption {
	return func(c *tracerConfig) {
		c.environment = env
	}
}

// WithSampleRatio samples root spans at ratio and follows the parent otherwise.
func WithSampleRatio(ratio float64) tracerOption {
	return func(c *tracerConfig) {
		c.sampleRatio = ratio
	}
}

func WithInsecureEndpoint(endpoint string) tracerOption {
	return func(c *tracerConfig) {
		c.clientOptions = append(c.clientOptions, otlptracegrpc.WithEndpoint(endpoint), otlptracegrpc.WithInsecure())
	}
}

// CreateTracer exports spans over OTLP/gRPC. Without WithInsecureEndpoint the
// collector comes from the OTEL_EXPORTER_OTLP_* variables.
func CreateTracer(ctx context.Context, serviceName string, options ...tracerOption) (trace.Tracer, ShutdownFunc, error) {
	config := tracerConfig{serviceVersion: "0.0.0", sampleRatio: 1}
	for _, option := range options {
		option(&config)
	}

	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(config.clientOptions...))
	if err != nil {
		return nil, nil, errors.Wrap(err, "create otlp exporter failed")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(serviceName, config)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.sampleRatio))),
	)

	return tp.Tracer(serviceName), tp.Shutdown, nil
}

func CreateNoOpTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("no-op")
}

func newResource(serviceName string, config tracerConfig) *resource.Resource {
	attributes := []attribute.KeyValue{
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(config.serviceVersion),
	}
	if config.environment != "" {
		attributes = append(attributes, semconv.DeploymentEnvironment(config.environment))
	}
	return resource.NewWithAttributes(semconv.SchemaURL, attributes...)
}
