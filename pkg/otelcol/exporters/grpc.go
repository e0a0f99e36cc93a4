package exporters

import (
	"context"
	"time"

	"airdrop-ledger/pkg/config"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
)

func ProvideGrpc(cfg *config.Config) (*otlptrace.Exporter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := otlptracegrpc.NewClient(
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithCompressor("gzip"),
		otlptracegrpc.WithEndpoint(cfg.Otel.Addr),
	)

	return otlptrace.New(ctx, client)
}

// Provide picks the OTLP transport from OTEL.PROTOCOL ("grpc" or "http").
func Provide(cfg *config.Config) (*otlptrace.Exporter, error) {
	if cfg.Otel.Protocol == "grpc" {
		return ProvideGrpc(cfg)
	}
	return ProvideHttp(cfg)
}
