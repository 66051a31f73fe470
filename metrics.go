package glscene

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus collectors of one root. A nil *metrics
// records nothing.
type metrics struct {
	frames        prometheus.Counter
	frameErrors   prometheus.Counter
	frameDuration prometheus.Histogram
	drawCalls     prometheus.Counter
	vaoLookups    *prometheus.CounterVec
	compiles      *prometheus.CounterVec
	commits       prometheus.Counter
	rootNodes     prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer, namespace string) *metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)

	return &metrics{
		frames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Total number of render passes",
		}),
		frameErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_errors_total",
			Help:      "Total number of render passes that failed",
		}),
		frameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Render pass duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.033, 0.066, 0.1},
		}),
		drawCalls: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draw_calls_total",
			Help:      "Total number of draw calls issued",
		}),
		vaoLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vao_lookups_total",
			Help:      "Vertex-array cache lookups by result",
		}, []string{"result"}),
		compiles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shader_builds_total",
			Help:      "Shader program builds by result",
		}, []string{"result"}),
		commits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_total",
			Help:      "Total number of reconciler commits",
		}),
		rootNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "root_nodes",
			Help:      "Number of top-level nodes in the root",
		}),
	}
}

func (m *metrics) frame(st FrameStats, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.frames.Inc()
	if err != nil {
		m.frameErrors.Inc()
	}
	m.frameDuration.Observe(d.Seconds())
	m.drawCalls.Add(float64(st.DrawCalls))
	m.vaoLookups.WithLabelValues("hit").Add(float64(st.VAOHits))
	m.vaoLookups.WithLabelValues("miss").Add(float64(st.VAOMisses))
}

func (m *metrics) compiled(err error) {
	if m == nil {
		return
	}
	var ce *CompileError
	var le *LinkError
	switch {
	case err == nil:
		m.compiles.WithLabelValues("ok").Inc()
	case errors.As(err, &ce):
		m.compiles.WithLabelValues("compile_error").Inc()
	case errors.As(err, &le):
		m.compiles.WithLabelValues("link_error").Inc()
	default:
		m.compiles.WithLabelValues("error").Inc()
	}
}

func (m *metrics) committed() {
	if m == nil {
		return
	}
	m.commits.Inc()
}

func (m *metrics) setRootNodes(n int) {
	if m == nil {
		return
	}
	m.rootNodes.Set(float64(n))
}
