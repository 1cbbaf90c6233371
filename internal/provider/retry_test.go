package provider_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"syscall"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-swarm/agent"
	"github.com/petasbytes/go-swarm/internal/provider"
	"github.com/petasbytes/go-swarm/memory"
)

type flaky struct {
	errs  []error
	calls int
}

func (f *flaky) Complete(context.Context, string, []memory.Message, []agent.Schema) (memory.Message, error) {
	f.calls++
	if f.calls <= len(f.errs) {
		return memory.Message{}, f.errs[f.calls-1]
	}
	return memory.Assistant("ok"), nil
}

func zeroBackOff() backoff.BackOff { return &backoff.ZeroBackOff{} }

func connReset() error {
	return &url.Error{Op: "Post", URL: "https://api.example.com/v1/chat/completions", Err: syscall.ECONNRESET}
}

func TestRetrying_RetriesTransientFailures(t *testing.T) {
	f := &flaky{errs: []error{connReset(), connReset()}}
	r := provider.NewRetrying(f, 3, provider.WithBackOffFactory(zeroBackOff))

	out, err := r.Complete(context.Background(), "m", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Content)
	assert.Equal(t, 3, f.calls)
}

func TestRetrying_GivesUpAfterMaxTries(t *testing.T) {
	transient := connReset()
	f := &flaky{errs: []error{transient, transient, transient, transient}}
	r := provider.NewRetrying(f, 2, provider.WithBackOffFactory(zeroBackOff))

	_, err := r.Complete(context.Background(), "m", nil, nil)
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 2, f.calls)
}

func TestRetrying_PermanentErrorsStopImmediately(t *testing.T) {
	f := &flaky{errs: []error{fmt.Errorf("wrapped: %w", context.Canceled)}}
	r := provider.NewRetrying(f, 5, provider.WithBackOffFactory(zeroBackOff))

	_, err := r.Complete(context.Background(), "m", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, f.calls)
}

func TestRetrying_LocalErrorsStopImmediately(t *testing.T) {
	f := &flaky{errs: []error{errors.New("openai returned no choices")}}
	r := provider.NewRetrying(f, 5, provider.WithBackOffFactory(zeroBackOff))

	_, err := r.Complete(context.Background(), "m", nil, nil)
	assert.ErrorContains(t, err, "no choices")
	assert.Equal(t, 1, f.calls)
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"url error", connReset(), true},
		{"wrapped url error", fmt.Errorf("openai chat completion: %w", connReset()), true},
		{"unexpected eof", fmt.Errorf("read body: %w", io.ErrUnexpectedEOF), true},
		{"local error", errors.New("openai returned no choices"), false},
		{"encode error", fmt.Errorf("encode tool schema: %w", errors.New("unsupported type")), false},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, provider.Retryable(tt.err))
		})
	}
}

func TestRetrying_DisabledPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	f := &flaky{errs: []error{boom}}
	_, err := provider.NewRetrying(f, 1).Complete(context.Background(), "m", nil, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, f.calls)
}

func TestNew_SelectsProvider(t *testing.T) {
	c, err := provider.New(provider.Settings{Name: "openai", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &provider.OpenAI{}, c)

	c, err = provider.New(provider.Settings{Name: "Anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &provider.Anthropic{}, c)

	_, err = provider.New(provider.Settings{Name: "llama"})
	assert.Error(t, err)
}
