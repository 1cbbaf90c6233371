package runner

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/petasbytes/go-swarm/internal/metrics"
)

// Option configures a Runner.
type Option func(*Runner)

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records completions, tool calls and handoffs on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = rec }
}

// WithTracerProvider sets where turn, completion and tool spans go.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Runner) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithEventHandler receives assistant text, tool calls and handoffs as they happen.
func WithEventHandler(h EventHandler) Option {
	return func(r *Runner) { r.onEvent = h }
}

// WithCompletionTimeout bounds each model call. Zero means no deadline.
func WithCompletionTimeout(d time.Duration) Option {
	return func(r *Runner) { r.completionTimeout = d }
}

// WithToolTimeout bounds each tool invocation. Zero means no deadline.
func WithToolTimeout(d time.Duration) Option {
	return func(r *Runner) { r.toolTimeout = d }
}

// WithMaxRounds caps completions per Run. Zero means unlimited.
func WithMaxRounds(n int) Option {
	return func(r *Runner) { r.maxRounds = n }
}
