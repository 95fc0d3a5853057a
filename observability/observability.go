// Package observability wires structured logging, OTLP tracing, and
// Prometheus metrics for a mesh node process. Setup is a no-op for
// whichever signal isn't configured, so a node can run with metrics
// only, tracing only, both, or neither.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Config selects which observability signals a node process turns on.
// The zero value disables everything: Setup still succeeds, it just
// installs no-op providers.
type Config struct {
	Service   string
	TraceAddr string // OTLP/gRPC collector address for traces; empty disables tracing
	LogAddr   string // OTLP/gRPC collector address for logs; empty disables log export
	Metrics   bool   // enables the package-level Prometheus recorders
}

var (
	mu             sync.Mutex
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	loggerProvider *sdklog.LoggerProvider
	metricsOn      bool
)

// Setup installs the configured providers as the global OTel tracer
// and logger, and flips on the package-level Prometheus recorders.
// Call Shutdown with the same context to flush and release them.
func Setup(ctx context.Context, cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	metricsOn = cfg.Metrics
	res := serviceResource(cfg.Service)

	if cfg.TraceAddr != "" {
		exp, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(cfg.TraceAddr), otlptracegrpc.WithInsecure())
		if err != nil {
			return fmt.Errorf("observability: trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		tracerProvider = tp
		tracer = tp.Tracer(cfg.Service)
	} else {
		tracer = otel.Tracer(cfg.Service)
	}

	if cfg.LogAddr != "" {
		exp, err := otlploggrpc.New(ctx, otlploggrpc.WithEndpoint(cfg.LogAddr), otlploggrpc.WithInsecure())
		if err != nil {
			return fmt.Errorf("observability: log exporter: %w", err)
		}
		lp := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)),
			sdklog.WithResource(res),
		)
		global.SetLoggerProvider(lp)
		loggerProvider = lp
	}

	return nil
}

// Shutdown flushes and closes whichever providers Setup installed.
// Safe to call even when Setup ran with a zero Config.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	tp, lp := tracerProvider, loggerProvider
	tracerProvider, loggerProvider = nil, nil
	metricsOn = false
	mu.Unlock()

	var firstErr error
	if tp != nil {
		if err := tp.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if lp != nil {
		if err := lp.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Enabled reports whether tracing is exporting to a collector.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return tracerProvider != nil
}

// MetricsEnabled reports whether the Prometheus recorders are active.
func MetricsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return metricsOn
}

// SLogHandler returns a slog.Handler bridged to the OTel logger
// provider Setup installed, so records go to the log collector only
// (the handler writes nothing to stderr). Returns nil when no log exporter
// was configured, so callers fall back to their own handler.
func SLogHandler(service string) slog.Handler {
	mu.Lock()
	lp := loggerProvider
	mu.Unlock()
	if lp == nil {
		return nil
	}
	return otelslog.NewHandler(service, otelslog.WithLoggerProvider(lp))
}

func serviceResource(service string) *resource.Resource {
	if service == "" {
		service = "meshroute"
	}
	return resource.NewSchemaless(attribute.String("service.name", service))
}

// Span wraps an OTel span with the shorthand this package's callers
// use (Error/Event/Set), so routing code never imports
// go.opentelemetry.io/otel/trace directly.
type Span struct {
	span  trace.Span
	onEnd func()
}

// Start begins a span named name under the package tracer.
func Start(ctx context.Context, name string) (context.Context, *Span) {
	mu.Lock()
	t := tracer
	mu.Unlock()
	if t == nil {
		t = otel.Tracer("meshroute")
	}
	ctx, span := t.Start(ctx, name)
	return ctx, &Span{span: span}
}

type startOptions struct {
	attrs   []attribute.KeyValue
	onStart func()
	onEnd   func()
}

// StartOption configures StartWith.
type StartOption func(*startOptions)

// Attrs attaches attributes to the span at creation time.
func Attrs(attrs ...attribute.KeyValue) StartOption {
	return func(o *startOptions) { o.attrs = append(o.attrs, attrs...) }
}

// OnStart registers a callback invoked synchronously after the span starts.
func OnStart(fn func()) StartOption {
	return func(o *startOptions) { o.onStart = fn }
}

// OnEnd registers a callback invoked when the returned Span's End is called.
func OnEnd(fn func()) StartOption {
	return func(o *startOptions) { o.onEnd = fn }
}

// StartWith begins a span with attributes and lifecycle hooks attached.
func StartWith(ctx context.Context, name string, opts ...StartOption) (context.Context, *Span) {
	var o startOptions
	for _, opt := range opts {
		opt(&o)
	}
	ctx, s := Start(ctx, name)
	if len(o.attrs) > 0 {
		s.span.SetAttributes(o.attrs...)
	}
	s.onEnd = o.onEnd
	if o.onStart != nil {
		o.onStart()
	}
	return ctx, s
}

// End finishes the span and runs any OnEnd hook registered via StartWith.
func (s *Span) End() {
	if s == nil {
		return
	}
	if s.onEnd != nil {
		s.onEnd()
	}
	s.span.End()
}

// Error records err on the span (when non-nil) and adds msg as an
// event; it does not change the span's status. A nil err still
// records the message, matching callers that want to annotate a span
// without a concrete error value.
func (s *Span) Error(err error, msg string) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
	}
	s.span.AddEvent(msg)
}

// Event records a named point-in-time event with attributes.
func (s *Span) Event(name string, attrs ...attribute.KeyValue) {
	if s == nil {
		return
	}
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Set attaches attributes to the span after creation.
func (s *Span) Set(attrs ...attribute.KeyValue) {
	if s == nil {
		return
	}
	s.span.SetAttributes(attrs...)
}
