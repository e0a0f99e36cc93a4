package otelcol

import (
	"context"

	"airdrop-ledger/pkg/config"
	"airdrop-ledger/pkg/otelcol/exporters"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("otelcol",
	fx.Provide(
		NewTracerProvider,
		NewMeterProvider,
	),
)

func Resource(cfg *config.Config) *resource.Resource {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.AppName),
		attribute.String("service.version", cfg.AppVersion),
		attribute.String("deployment.environment", cfg.AppEnv),
	))
	if err != nil {
		return resource.Default()
	}
	return res
}

func ProvideTrace(exporter sdktrace.SpanExporter, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	if len(opts) == 0 {
		opts = []sdktrace.TracerProviderOption{sdktrace.WithResource(resource.Default())}
	}

	opts = append(opts, sdktrace.WithBatcher(exporter))

	return sdktrace.NewTracerProvider(opts...)
}

// NewTracerProvider exports spans over OTLP when OTEL.ADDR is set and falls
// back to the global no-op provider otherwise.
func NewTracerProvider(lc fx.Lifecycle, cfg *config.Config) (trace.TracerProvider, error) {
	if cfg.Otel.Addr == "" {
		zap.L().Info("[Otel] tracing disabled, OTEL.ADDR is empty")
		return otel.GetTracerProvider(), nil
	}

	exporter, err := exporters.Provide(cfg)
	if err != nil {
		return nil, err
	}

	tp := ProvideTrace(exporter, sdktrace.WithResource(Resource(cfg)))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	zap.L().Info("[Otel] exporting traces",
		zap.String("addr", cfg.Otel.Addr),
		zap.String("protocol", cfg.Otel.Protocol),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	return tp, nil
}

// NewMeterProvider returns the global provider. Application metrics are
// served by the prometheus registry on /metrics.
func NewMeterProvider() metric.MeterProvider {
	return otel.GetMeterProvider()
}
