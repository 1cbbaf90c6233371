package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/petasbytes/go-swarm/agent"
	"github.com/petasbytes/go-swarm/internal/logging"
	"github.com/petasbytes/go-swarm/internal/metrics"
	"github.com/petasbytes/go-swarm/internal/runner"
	"github.com/petasbytes/go-swarm/internal/telemetry"
	"github.com/petasbytes/go-swarm/memory"
)

func readEvents(t *testing.T, dir string) []map[string]any {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, "events.jsonl"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func eventsNamed(events []map[string]any, name string) []map[string]any {
	var out []map[string]any
	for _, e := range events {
		if e["event"] == name {
			out = append(out, e)
		}
	}
	return out
}

func TestRun_ToolExecEvent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AGT_ARTIFACTS_DIR", dir)
	t.Setenv("AGT_OBSERVE_JSON", "1")

	lookup := agent.NewTextTool("lookup", "", func(context.Context, queryInput) (string, error) { return "secret result", nil })
	c := &scripted{steps: []step{reply("", call("c1", "lookup", `{"query":"private text"}`)), reply("ok")}}
	ctx := telemetry.WithTurnID(context.Background(), "turn-abc")

	_, err := runner.New(c).Run(ctx, agent.New("A", agent.WithTools(lookup)), nil)
	require.NoError(t, err)

	events := readEvents(t, dir)
	execs := eventsNamed(events, "tool_exec")
	require.Len(t, execs, 1)
	exec := execs[0]
	assert.Equal(t, "lookup", exec["tool_name"])
	assert.Equal(t, "turn-abc", exec["turn_id"])
	assert.Equal(t, metrics.StatusOK, exec["status"])
	assert.Equal(t, float64(len(`{"query":"private text"}`)), exec["input_size"])
	assert.Equal(t, float64(1), exec["input_fields"])
	assert.Equal(t, float64(len("secret result")), exec["output_size"])
	assert.Nil(t, exec["error"])

	assert.Len(t, eventsNamed(events, "completion"), 2)
	require.Len(t, eventsNamed(events, "turn_done"), 1)

	raw, err := os.ReadFile(filepath.Join(dir, "events.jsonl"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "private text")
	assert.NotContains(t, string(raw), "secret result")
}

func TestRun_UnknownToolEvent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AGT_ARTIFACTS_DIR", dir)
	t.Setenv("AGT_OBSERVE_JSON", "1")

	c := &scripted{steps: []step{reply("", call("c1", "nope", "{}"))}}
	_, err := runner.New(c).Run(context.Background(), agent.New("A"), nil)
	require.Error(t, err)

	execs := eventsNamed(readEvents(t, dir), "tool_exec")
	require.Len(t, execs, 1)
	assert.Equal(t, "tool not found", execs[0]["error"])
	assert.Equal(t, metrics.StatusError, execs[0]["status"])
}

func TestRun_HandoffEventAndMetrics(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AGT_ARTIFACTS_DIR", dir)
	t.Setenv("AGT_OBSERVE_JSON", "1")

	rec := metrics.NewRecorder()
	b := agent.New("B")
	a := agent.New("A", agent.WithTools(agent.Transfer("to_b", "", b)))
	c := &scripted{steps: []step{reply("", call("c1", "to_b", "{}")), reply("hi")}}

	_, err := runner.New(c, runner.WithMetrics(rec)).Run(context.Background(), a, nil)
	require.NoError(t, err)

	handoffs := eventsNamed(readEvents(t, dir), "handoff")
	require.Len(t, handoffs, 1)
	assert.Equal(t, "A", handoffs[0]["from"])
	assert.Equal(t, "B", handoffs[0]["to"])

	n, err := testutil.GatherAndCount(rec.Registry(), "swarm_handoffs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = testutil.GatherAndCount(rec.Registry(), "swarm_tool_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRun_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	noop := agent.NewTextTool("noop", "", func(context.Context, struct{}) (string, error) { return "", nil })
	c := &scripted{steps: []step{reply("", call("c1", "noop", "{}")), reply("done")}}

	_, err := runner.New(c, runner.WithTracerProvider(tp)).Run(context.Background(), agent.New("A", agent.WithTools(noop)), nil)
	require.NoError(t, err)

	var names []string
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{"completion", "tool", "completion", "turn"}, names)
}

func TestRun_FailSoftLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(slog.LevelDebug, "text", &buf)

	tool := agent.NewValueTool("delete_message", "", func(context.Context, struct{}) (bool, error) {
		return false, errors.New("403 forbidden")
	}, agent.WithPolicy(agent.FailSoft(agent.Text("false"))))
	c := &scripted{steps: []step{reply("", call("c1", "delete_message", "{}")), reply("Could not delete.")}}

	resp, err := runner.New(c, runner.WithLogger(logger)).Run(context.Background(), agent.New("Gmail Agent", agent.WithTools(tool)), nil)
	require.NoError(t, err)
	assert.Equal(t, "false", resp.Messages[1].Content)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "tool=delete_message")
	assert.Contains(t, out, "status=fail_soft")
	assert.Contains(t, out, "403 forbidden")
}

func TestRun_ToolTimeout(t *testing.T) {
	slow := agent.NewTextTool("slow", "", func(ctx context.Context, _ struct{}) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	c := &scripted{steps: []step{reply("", call("c1", "slow", "{}"))}}

	_, err := runner.New(c, runner.WithToolTimeout(10*time.Millisecond)).Run(context.Background(), agent.New("A", agent.WithTools(slow)), nil)
	var execErr *agent.ToolExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type blockingCompleter struct{}

func (blockingCompleter) Complete(ctx context.Context, _ string, _ []memory.Message, _ []agent.Schema) (memory.Message, error) {
	<-ctx.Done()
	return memory.Message{}, ctx.Err()
}

func TestRun_CompletionTimeout(t *testing.T) {
	_, err := runner.New(blockingCompleter{}, runner.WithCompletionTimeout(10*time.Millisecond)).
		Run(context.Background(), agent.New("A"), nil)
	var ce *runner.CompletionError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
