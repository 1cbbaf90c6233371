package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/petasbytes/go-swarm/agent"
	"github.com/petasbytes/go-swarm/internal/logging"
	"github.com/petasbytes/go-swarm/internal/runner"
	"github.com/petasbytes/go-swarm/internal/telemetry"
	"github.com/petasbytes/go-swarm/memory"
)

type turnRunner interface {
	Run(ctx context.Context, start *agent.Agent, history []memory.Message) (runner.Response, error)
}

// session owns the conversation log and the current agent across turns.
type session struct {
	runner  turnRunner
	printer *printer
	logger  *slog.Logger
	current *agent.Agent
	conv    *memory.Conversation
	// actions requires every line to be a JSON action object.
	actions bool
}

func newSession(r turnRunner, p *printer, logger *slog.Logger, start *agent.Agent) *session {
	return &session{runner: r, printer: p, logger: logger, current: start, conv: memory.NewConversation()}
}

func isQuit(s string) bool {
	return strings.EqualFold(s, "exit") || strings.EqualFold(s, "quit")
}

// checkAction accepts a JSON object with a non-empty string "action".
func checkAction(line string) error {
	var obj map[string]any
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return fmt.Errorf("action must be a JSON object: %w", err)
	}
	name, _ := obj["action"].(string)
	if strings.TrimSpace(name) == "" {
		return errors.New(`action object needs an "action" field`)
	}
	return nil
}

// loop reads one line per turn until quit, EOF or ctx is done.
func (s *session) loop(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		s.printer.prompt()
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}
		if isQuit(line) {
			return nil
		}
		if s.actions {
			if err := checkAction(line); err != nil {
				s.printer.failure(err)
				continue
			}
		}
		// A failed turn is reported and the loop goes on.
		_ = s.turn(ctx, line)
	}
}

// turn runs one user message through the current agent. The log only grows
// when the turn completes, so a failed turn leaves no dangling tool calls.
func (s *session) turn(ctx context.Context, text string) error {
	ctx = telemetry.WithTurnID(ctx, telemetry.NewTurnID())
	telemetry.EmitLocalFeatures(ctx, text)

	user := memory.User(text)
	history := append(s.conv.Messages(), user)
	resp, err := s.runner.Run(ctx, s.current, history)
	if err != nil {
		s.logger.Error("turn failed", logging.Agent(s.current.Name()), logging.Err(err))
		s.printer.failure(err)
		return err
	}
	s.conv.Append(user)
	s.conv.Append(resp.Messages...)
	s.current = resp.Agent
	return nil
}
