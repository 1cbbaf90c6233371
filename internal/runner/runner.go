package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/petasbytes/go-swarm/agent"
	"github.com/petasbytes/go-swarm/internal/logging"
	"github.com/petasbytes/go-swarm/internal/metrics"
	"github.com/petasbytes/go-swarm/internal/telemetry"
	"github.com/petasbytes/go-swarm/memory"
)

const tracerName = "github.com/petasbytes/go-swarm/internal/runner"

// Completer is the model-completion interface. It must accept several tool
// calls in one returned message. tools is nil when the agent has none.
type Completer interface {
	Complete(ctx context.Context, model string, msgs []memory.Message, tools []agent.Schema) (memory.Message, error)
}

// State is a turn-loop state.
type State int

const (
	AwaitingModel State = iota
	DispatchingTools
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingModel:
		return "AWAITING_MODEL"
	case DispatchingTools:
		return "DISPATCHING_TOOLS"
	case Done:
		return "DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Response is what one Run appended plus the agent holding the conversation afterwards.
type Response struct {
	Agent    *agent.Agent
	Messages []memory.Message
}

type Runner struct {
	completer Completer
	logger    *slog.Logger
	metrics   *metrics.Recorder
	tracer    trace.Tracer
	onEvent   EventHandler

	completionTimeout time.Duration
	toolTimeout       time.Duration
	maxRounds         int
}

func New(c Completer, opts ...Option) *Runner {
	r := &Runner{
		completer: c,
		logger:    logging.NewNop(),
		tracer:    otel.GetTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives one turn starting from start over history, which it never
// modifies. It alternates completions and in-order tool dispatch until the
// model answers without tool calls.
//
// On error the zero Response is returned; no tool results are fabricated for
// calls that were not dispatched.
func (r *Runner) Run(ctx context.Context, start *agent.Agent, history []memory.Message) (resp Response, err error) {
	if start == nil {
		return Response{}, errors.New("runner: nil starting agent")
	}
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	ctx, span := r.tracer.Start(ctx, "turn", trace.WithAttributes(
		attribute.String("turn.id", turnID),
		attribute.String("agent.start", start.Name()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var (
		current  = start
		appended []memory.Message
		caller   *agent.Agent
		reg      *agent.Registry
		rounds   int
		state    = AwaitingModel
	)
	log := r.logger.With(logging.Turn(turnID))

	for state != Done {
		switch state {
		case AwaitingModel:
			if r.maxRounds > 0 && rounds >= r.maxRounds {
				return Response{}, fmt.Errorf("%w (%d)", ErrMaxRounds, r.maxRounds)
			}
			rounds++
			caller = current
			reg = r.registry(log, current)

			prompt := make([]memory.Message, 0, 1+len(history)+len(appended))
			prompt = append(prompt, memory.System(current.Instructions()))
			prompt = append(prompt, history...)
			prompt = append(prompt, appended...)

			msg, err := r.complete(ctx, log, current, rounds, prompt, reg.Schemas())
			if err != nil {
				return Response{}, err
			}
			appended = append(appended, msg)
			if msg.Content != "" {
				r.emit(Event{Kind: EventText, Agent: current.Name(), Text: msg.Content})
			}
			if msg.HasToolCalls() {
				state = DispatchingTools
			} else {
				state = Done
			}

		case DispatchingTools:
			// A handoff takes effect next round. Calls after it in this batch
			// still belong to the agent that made them.
			calls := appended[len(appended)-1].ToolCalls
			for _, call := range calls {
				if err := ctx.Err(); err != nil {
					return Response{}, err
				}
				res, err := r.dispatch(ctx, log, caller, reg, call)
				if err != nil {
					return Response{}, err
				}
				if to, ok := res.Handoff(); ok {
					r.handoff(ctx, log, current, to)
					current = to
				}
				appended = append(appended, memory.ToolResult(call.ID, res.Content()))
			}
			state = AwaitingModel
		}
	}

	r.metrics.Turn(rounds)
	span.SetAttributes(attribute.String("agent.end", current.Name()), attribute.Int("turn.rounds", rounds))
	telemetry.Emit("turn_done", map[string]any{
		"turn_id":  turnID,
		"agent":    current.Name(),
		"rounds":   rounds,
		"messages": len(appended),
	})
	return Response{Agent: current, Messages: appended}, nil
}

// registry is rebuilt every round since the current agent may have changed.
func (r *Runner) registry(log *slog.Logger, a *agent.Agent) *agent.Registry {
	reg := agent.NewRegistry(a.Tools())
	for _, err := range reg.Excluded() {
		log.Warn("tool excluded", logging.Agent(a.Name()), logging.Err(err))
	}
	for _, name := range reg.Shadowed() {
		log.Warn("duplicate tool shadows earlier entry", logging.Agent(a.Name()), logging.Tool(name))
	}
	return reg
}

func (r *Runner) complete(ctx context.Context, log *slog.Logger, a *agent.Agent, round int, prompt []memory.Message, schemas []agent.Schema) (memory.Message, error) {
	ctx, span := r.tracer.Start(ctx, "completion", trace.WithAttributes(
		attribute.String("agent.name", a.Name()),
		attribute.String("model", a.Model()),
		attribute.Int("round", round),
		attribute.Int("tools", len(schemas)),
	))
	defer span.End()
	if r.completionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.completionTimeout)
		defer cancel()
	}

	start := time.Now()
	msg, err := r.completer.Complete(ctx, a.Model(), prompt, schemas)
	elapsed := time.Since(start)
	r.metrics.Completion(a.Model(), elapsed, err)

	turnID, _ := telemetry.TurnIDFromContext(ctx)
	fields := map[string]any{
		"turn_id":     turnID,
		"agent":       a.Name(),
		"model":       a.Model(),
		"round":       round,
		"duration_ms": elapsed.Milliseconds(),
		"messages":    len(prompt),
		"tools":       len(schemas),
		"error":       nil,
	}
	if err != nil {
		fields["error"] = "completion error"
		telemetry.Emit("completion", fields)
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		log.Error("completion failed", logging.Agent(a.Name()), logging.Model(a.Model()), logging.Err(err))
		return memory.Message{}, &CompletionError{Agent: a.Name(), Model: a.Model(), Err: err}
	}
	msg.Role = memory.RoleAssistant
	fields["tool_calls"] = len(msg.ToolCalls)
	fields["content_size"] = len(msg.Content)
	telemetry.Emit("completion", fields)
	log.Debug("completion", logging.Agent(a.Name()), logging.Model(a.Model()),
		slog.Int("round", round), slog.Int("tool_calls", len(msg.ToolCalls)), slog.Duration(logging.KeyDuration, elapsed))
	return msg, nil
}

// dispatch runs one tool call and applies the tool's failure policy.
func (r *Runner) dispatch(ctx context.Context, log *slog.Logger, a *agent.Agent, reg *agent.Registry, call memory.ToolCall) (agent.Result, error) {
	r.emit(Event{Kind: EventToolCall, Agent: a.Name(), Tool: call.Name, Arguments: call.Arguments, CallID: call.ID})
	log = log.With(logging.Agent(a.Name()), logging.Tool(call.Name), logging.CallID(call.ID))

	ctx, span := r.tracer.Start(ctx, "tool", trace.WithAttributes(
		attribute.String("agent.name", a.Name()),
		attribute.String("tool.name", call.Name),
		attribute.String("tool.call_id", call.ID),
	))
	defer span.End()

	turnID, _ := telemetry.TurnIDFromContext(ctx)
	start := time.Now()
	record := func(status string, outSize int, errStr any) {
		elapsed := time.Since(start)
		r.metrics.ToolCall(call.Name, status, elapsed)
		telemetry.Emit("tool_exec", map[string]any{
			"turn_id":      turnID,
			"agent":        a.Name(),
			"tool_name":    call.Name,
			"duration_ms":  elapsed.Milliseconds(),
			"input_size":   len(call.Arguments),
			"input_fields": metrics.ArgFields(call.Arguments),
			"output_size":  outSize,
			"status":       status,
			"error":        errStr,
		})
	}
	fail := func(err error, msg string) (agent.Result, error) {
		record(metrics.StatusError, 0, msg)
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		log.Error(msg, logging.Status(metrics.StatusError), logging.Err(err))
		return agent.Result{}, err
	}

	tool, ok := reg.Lookup(call.Name)
	if !ok {
		return fail(&agent.UnknownToolError{Tool: call.Name, CallID: call.ID}, "tool not found")
	}

	tctx := ctx
	if r.toolTimeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, r.toolTimeout)
		defer cancel()
	}
	res, err := tool.Call(tctx, call.ID, call.Arguments)
	if err != nil {
		var execErr *agent.ToolExecutionError
		if !errors.As(err, &execErr) {
			return fail(err, "tool arguments rejected")
		}
		fallback, soft := tool.Policy().Fallback()
		if !soft {
			return fail(err, "tool error")
		}
		// Fail-soft tools report the failure and give the model their safe default.
		log.Warn("tool failed; using fallback", logging.Status(metrics.StatusFailSoft), logging.Err(execErr.Err))
		span.SetAttributes(attribute.Bool("tool.fail_soft", true))
		record(metrics.StatusFailSoft, len(fallback.Content()), "tool error")
		return fallback, nil
	}
	record(metrics.StatusOK, len(res.Content()), nil)
	log.Debug("tool executed", logging.Status(metrics.StatusOK), slog.Duration(logging.KeyDuration, time.Since(start)))
	return res, nil
}

func (r *Runner) handoff(ctx context.Context, log *slog.Logger, from, to *agent.Agent) {
	r.metrics.Handoff(from.Name(), to.Name())
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	trace.SpanFromContext(ctx).AddEvent("handoff", trace.WithAttributes(
		attribute.String("from", from.Name()),
		attribute.String("to", to.Name()),
	))
	log.Info("handoff", slog.String("from", from.Name()), slog.String("to", to.Name()))
	telemetry.Emit("handoff", map[string]any{
		"turn_id": turnID,
		"from":    from.Name(),
		"to":      to.Name(),
	})
	r.emit(Event{Kind: EventHandoff, Agent: from.Name(), Target: to.Name()})
}

func (r *Runner) emit(e Event) {
	if r.onEvent != nil {
		r.onEvent(e)
	}
}
