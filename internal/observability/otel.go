package observability

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

// TraceExporter selects where spans go. Values follow OTEL_TRACES_EXPORTER.
type TraceExporter string

const (
	ExporterNone    TraceExporter = "none"
	ExporterOTLP    TraceExporter = "otlp"
	ExporterConsole TraceExporter = "console"
)

func ParseTraceExporter(raw string) (TraceExporter, error) {
	switch e := TraceExporter(strings.ToLower(strings.TrimSpace(raw))); e {
	case "", ExporterNone:
		return ExporterNone, nil
	case ExporterOTLP, ExporterConsole:
		return e, nil
	default:
		return ExporterNone, fmt.Errorf("unknown trace exporter %q", raw)
	}
}

type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string
	Exporter    TraceExporter
	// SampleRatio applies to root spans; children follow their parent.
	SampleRatio float64
}

// InitOTel installs the global tracer provider and returns its shutdown.
// With no exporter the global provider stays a no-op. The OTLP exporter
// reads endpoint, headers and TLS settings from the OTEL_EXPORTER_OTLP_* env.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	noop := func(context.Context) error { return nil }

	var (
		exp sdktrace.SpanExporter
		err error
	)
	switch cfg.Exporter {
	case ExporterOTLP:
		exp, err = otlptracehttp.New(ctx)
	case ExporterConsole:
		exp, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return noop
	}
	if err != nil {
		log.Warn("trace exporter init failed; tracing disabled", "exporter", string(cfg.Exporter), "error", err)
		return noop
	}

	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "pathforge"
	}
	res := resource.NewSchemaless(
		semconv.ServiceNameKey.String(name),
		semconv.ServiceVersionKey.String(cfg.Version),
		attribute.String("deployment.environment", cfg.Environment),
	)
	ratio := min(max(cfg.SampleRatio, 0), 1)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	log.Info("tracing initialized", "service", name, "exporter", string(cfg.Exporter), "sample_ratio", ratio)
	return tp.Shutdown
}

const tracerName = "github.com/yungbote/pathforge-backend"

// StartSpan starts a span on the global provider. Before InitOTel (and in
// tests) the provider is a no-op.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
