package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/petasbytes/go-swarm/agent"
	"github.com/petasbytes/go-swarm/internal/logging"
	"github.com/petasbytes/go-swarm/internal/runner"
	"github.com/petasbytes/go-swarm/memory"
)

// Retrying wraps a Completer and retries rate limits, server errors and
// transport failures with exponential backoff. The turn loop never retries on
// its own; callers opt in by wrapping their provider.
type Retrying struct {
	next       runner.Completer
	maxTries   uint
	newBackOff func() backoff.BackOff
	logger     *slog.Logger
}

type RetryOption func(*Retrying)

// WithBackOffFactory overrides the schedule; each Complete gets a fresh BackOff.
func WithBackOffFactory(f func() backoff.BackOff) RetryOption {
	return func(r *Retrying) { r.newBackOff = f }
}

func WithRetryLogger(l *slog.Logger) RetryOption {
	return func(r *Retrying) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRetrying makes at most maxTries attempts per completion. maxTries <= 1 disables retry.
func NewRetrying(next runner.Completer, maxTries uint, opts ...RetryOption) *Retrying {
	r := &Retrying{
		next:     next,
		maxTries: maxTries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 10 * time.Second
			return b
		},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Retrying) Complete(ctx context.Context, model string, msgs []memory.Message, tools []agent.Schema) (memory.Message, error) {
	if r.maxTries <= 1 {
		return r.next.Complete(ctx, model, msgs, tools)
	}
	attempt := 0
	op := func() (memory.Message, error) {
		attempt++
		msg, err := r.next.Complete(ctx, model, msgs, tools)
		if err != nil && !Retryable(err) {
			return memory.Message{}, backoff.Permanent(err)
		}
		return msg, err
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(r.newBackOff()),
		backoff.WithMaxTries(r.maxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			r.logger.Warn("completion failed; retrying",
				logging.Model(model), slog.Int("attempt", attempt), slog.Duration("wait", wait), logging.Err(err))
		}),
	)
}

// Retryable reports whether a provider error is worth another attempt.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	status := openAIStatus(err)
	if status == 0 {
		status = anthropicStatus(err)
	}
	switch {
	case status == 0:
		// No HTTP response. Only network failures (including *url.Error) are
		// transient; locally produced errors fail the same way again.
		var netErr net.Error
		return errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF)
	case status == http.StatusTooManyRequests, status == http.StatusRequestTimeout:
		return true
	case status >= 500:
		return true
	default:
		return false
	}
}
