package pantrysync

import (
	"context"
	"errors"

	"github.com/joeshaw/envdecode"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerNameSync names the tracer and meter of the sync engine.
const TracerNameSync = "pantry-sync"

// OtelConfig is a configuration struct for the OpenTelemetry providers.
type OtelConfig struct {
	Endpoint       string `env:"OTEL_EXPORTER_OTLP_ENDPOINT,default=set-me"`
	Headers        string `env:"OTEL_EXPORTER_OTLP_HEADERS,default=set-me"`
	ServiceVersion string `env:"OTEL_SERVICE_VERSION,default=0.1.0"`
	ServiceName    string `env:"OTEL_SERVICE_NAME,default=pantry-sync"`
	DeployEnv      string `env:"OTEL_DEPLOY_ENV,default=development"`
}

// Telemetry bundles the tracer and meter handed to the engine.
type Telemetry struct {
	Tracer   trace.Tracer
	Meter    metric.Meter
	Shutdown func(ctx context.Context) error
}

// InitOtel sets up OTLP/gRPC trace and metric export, registers the providers
// globally and returns the sync engine's tracer and meter.
func InitOtel(ctx context.Context) (Telemetry, error) {
	var cfg OtelConfig
	if err := envdecode.Decode(&cfg); err != nil {
		return Telemetry{}, err
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
		attribute.String("deployment.environment", cfg.DeployEnv),
	)

	// exporters read OTEL_EXPORTER_OTLP_* from the environment
	traceExporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient())
	if err != nil {
		return Telemetry{}, err
	}
	metricExporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return Telemetry{}, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	shutdown := func(ctx context.Context) error {
		err := errors.Join(
			tracerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
		)
		if err != nil && err.Error() == "gRPC exporter is shutdown" {
			return nil
		}
		return err
	}

	return Telemetry{
		Tracer:   tracerProvider.Tracer(TracerNameSync),
		Meter:    meterProvider.Meter(TracerNameSync),
		Shutdown: shutdown,
	}, nil
}
