package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "swarm"

// Tool call outcomes used as the status label.
const (
	StatusOK       = "ok"
	StatusFailSoft = "fail_soft"
	StatusError    = "error"
)

// Recorder holds the turn loop's Prometheus collectors on a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	completions       *prometheus.CounterVec
	completionLatency *prometheus.HistogramVec
	toolCalls         *prometheus.CounterVec
	toolLatency       *prometheus.HistogramVec
	handoffs          *prometheus.CounterVec
	rounds            prometheus.Histogram
}

// NewRecorder registers all collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		completions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Model completions by model and outcome.",
		}, []string{"model", "status"}),
		completionLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Model completion latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"model"}),
		toolCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool and outcome.",
		}, []string{"tool", "status"}),
		toolLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Tool execution latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		handoffs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handoffs_total",
			Help:      "Agent handoffs by source and target.",
		}, []string{"from", "to"}),
		rounds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_rounds",
			Help:      "Completions per user turn.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16},
		}),
	}
}

func (r *Recorder) Completion(model string, d time.Duration, err error) {
	if r == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	r.completions.WithLabelValues(model, status).Inc()
	r.completionLatency.WithLabelValues(model).Observe(d.Seconds())
}

func (r *Recorder) ToolCall(tool, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.toolCalls.WithLabelValues(tool, status).Inc()
	r.toolLatency.WithLabelValues(tool).Observe(d.Seconds())
}

func (r *Recorder) Handoff(from, to string) {
	if r == nil {
		return
	}
	r.handoffs.WithLabelValues(from, to).Inc()
}

// Turn records how many completions one Run needed.
func (r *Recorder) Turn(rounds int) {
	if r == nil {
		return
	}
	r.rounds.Observe(float64(rounds))
}

// Registry exposes the underlying registry for scraping and tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
