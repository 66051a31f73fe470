package glscene

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Root during creation.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	root := glscene.NewRoot(dev,
//	    glscene.WithMetrics(reg),
//	    glscene.WithLogger(slog.Default()),
//	)
type Option func(*options)

// options holds optional configuration for Root creation.
type options struct {
	logger     *slog.Logger
	registerer prometheus.Registerer
	namespace  string
	tracer     trace.Tracer
}

// defaultTracerName is the instrumentation name used with the global
// tracer provider.
const defaultTracerName = "github.com/gogpu/glscene"

func defaultOptions() options {
	return options{
		namespace: "glscene",
		tracer:    otel.Tracer(defaultTracerName),
	}
}

// WithLogger sets the package logger, as SetLogger does, and hands it to
// the device when the device accepts one.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics registers the root's Prometheus collectors with reg.
// Metrics are disabled unless this option is given.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithMetricsNamespace sets the metrics namespace (default "glscene").
func WithMetricsNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithTracer sets the tracer used for frame and commit spans. The default
// comes from the global OpenTelemetry tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}
