// internal/common/observability/observability.go
package observability

import (
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"swipe-screening/internal/common/config"
)

// Observability holds the OpenTelemetry meter and tracer providers for the service.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider

	meter           otelmetric.Meter
	tracer          trace.Tracer
	requestCounter  otelmetric.Int64Counter
	requestDuration otelmetric.Float64Histogram
}

type options struct {
	registerer     promclient.Registerer
	spanProcessors []sdktrace.SpanProcessor
}

type Option func(*options)

// WithRegisterer sends exported metrics to reg instead of the default registry.
func WithRegisterer(reg promclient.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithSpanProcessor attaches a span processor to the tracer provider.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) { o.spanProcessors = append(o.spanProcessors, sp) }
}

func New(cfg config.ObservabilityConfig, opts ...Option) (*Observability, error) {
	o := options{registerer: promclient.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))
	obs := &Observability{}

	if cfg.MetricsEnabled {
		exporter, err := prometheus.New(prometheus.WithRegisterer(o.registerer))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		obs.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
		otel.SetMeterProvider(obs.meterProvider)
		obs.meter = obs.meterProvider.Meter(cfg.ServiceName)
	} else {
		obs.meter = noop.NewMeterProvider().Meter(cfg.ServiceName)
	}

	if cfg.TracingEnabled {
		tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
		for _, sp := range o.spanProcessors {
			tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
		}
		obs.tracerProvider = sdktrace.NewTracerProvider(tpOpts...)
		otel.SetTracerProvider(obs.tracerProvider)
		obs.tracer = obs.tracerProvider.Tracer(cfg.ServiceName)
	} else {
		obs.tracer = tracenoop.NewTracerProvider().Tracer(cfg.ServiceName)
	}

	var err error
	obs.requestCounter, err = obs.meter.Int64Counter(
		"http_server_requests",
		otelmetric.WithDescription("Number of HTTP requests served"),
	)
	if err != nil {
		return nil, err
	}
	obs.requestDuration, err = obs.meter.Float64Histogram(
		"http_server_duration",
		otelmetric.WithDescription("HTTP request duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return obs, nil
}

// RecordRequest counts a served request and records its latency.
func (o *Observability) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	o.requestCounter.Add(ctx, 1, attrs)
	o.requestDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// StartSpan starts a span on the service tracer.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) Tracer() trace.Tracer {
	return o.tracer
}

func (o *Observability) Shutdown(ctx context.Context) error {
	var firstErr error
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
