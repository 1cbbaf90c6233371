package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/petasbytes/go-swarm/internal/config"
	"github.com/petasbytes/go-swarm/internal/logging"
	"github.com/petasbytes/go-swarm/internal/metrics"
	"github.com/petasbytes/go-swarm/internal/provider"
	"github.com/petasbytes/go-swarm/internal/runner"
	"github.com/petasbytes/go-swarm/internal/telemetry"
)

// app is the process-wide wiring shared by chat and demo.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Recorder
	printer *printer
	runner  *runner.Runner
	closers []func(context.Context) error
}

// newApp wires logging, telemetry, metrics and tracing around c. Conversation
// output goes to stdout, logs to stderr.
func newApp(cfg config.Config, c runner.Completer, stdout, stderr io.Writer) (*app, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:     cfg,
		logger:  logging.New(level, cfg.LogFormat, stderr),
		metrics: metrics.NewRecorder(),
		printer: newPrinter(stdout),
	}
	if cfg.ObserveJSON {
		telemetry.Enable(cfg.ArtifactsDir)
		a.closers = append(a.closers, func(context.Context) error { telemetry.Disable(); return nil })
	}

	opts := []runner.Option{
		runner.WithLogger(a.logger),
		runner.WithMetrics(a.metrics),
		runner.WithEventHandler(a.printer.event),
		runner.WithCompletionTimeout(cfg.CompletionTimeout),
		runner.WithToolTimeout(cfg.ToolTimeout),
		runner.WithMaxRounds(cfg.MaxRounds),
	}
	if cfg.TraceFile != "" {
		tp, shutdown, err := newTracerProvider(cfg.TraceFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, shutdown)
		opts = append(opts, runner.WithTracerProvider(tp))
	}
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, a.metrics, a.logger)
		a.closers = append(a.closers, srv.Shutdown)
	}

	if cfg.Retry.MaxTries > 1 {
		c = provider.NewRetrying(c, cfg.Retry.MaxTries, provider.WithRetryLogger(a.logger))
	}
	a.runner = runner.New(c, opts...)
	return a, nil
}

// newCompleter builds the configured provider.
func newCompleter(cfg config.Config) (runner.Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing API key for %s; set AGT_API_KEY or the provider's key variable", cfg.Provider)
	}
	return provider.New(provider.Settings{
		Name:      cfg.Provider,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		MaxTokens: cfg.MaxTokens,
	})
}

// close runs shutdown hooks in reverse order with a short grace period.
func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	return errors.Join(errs...)
}
