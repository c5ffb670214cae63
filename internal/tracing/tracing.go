package tracing

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Settings параметры экспорта трасс из config.Config
type Settings struct {
	ServiceName string
	Environment string
	// Endpoint host:port OTLP HTTP коллектора; пустой отключает экспорт
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// Shutdown сбрасывает буфер спанов и останавливает провайдер
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// Init ставит глобальный TracerProvider и W3C propagator.
// Без Endpoint трассировка остается no-op.
func Init(ctx context.Context, logger *slog.Logger, s Settings) (Shutdown, error) {
	if s.Endpoint == "" {
		logger.Info("tracing disabled: no OTLP endpoint configured")
		return noop, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(s.Endpoint)}
	if s.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(s.ServiceName),
			semconv.DeploymentEnvironment(s.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(s.SampleRatio)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	logger.Info("tracing initialized",
		slog.String("endpoint", s.Endpoint),
		slog.Float64("sample_ratio", s.SampleRatio))
	return tp.Shutdown, nil
}

// sampler уважает решение родителя; корневые спаны по доле ratio
func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}
