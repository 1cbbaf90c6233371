package agent_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-swarm/agent"
)

func TestNew_Defaults(t *testing.T) {
	a := agent.New("")
	assert.Equal(t, agent.DefaultName, a.Name())
	assert.Equal(t, agent.DefaultModel, a.Model())
	assert.Equal(t, agent.DefaultInstructions, a.Instructions())
	assert.False(t, a.Bound())
	assert.Empty(t, a.Tools())
}

func TestNew_Options(t *testing.T) {
	a := agent.New("Refund Agent",
		agent.WithModel("gpt-4o"),
		agent.WithInstructions("Help the user with refunds."),
		agent.WithTools(constTool("execute_refund", "success")),
	)
	assert.Equal(t, "Refund Agent", a.Name())
	assert.Equal(t, "gpt-4o", a.Model())
	assert.Equal(t, "Help the user with refunds.", a.Instructions())
	assert.True(t, a.Bound())
	require.Len(t, a.Tools(), 1)

	err := a.Bind(constTool("other", ""))
	assert.ErrorIs(t, err, agent.ErrAlreadyBound)
}

func TestBind_OnceThenSealed(t *testing.T) {
	triage := agent.New("Triage Agent")
	gmail := agent.New("Gmail Agent")

	// Agents can reference each other before either is bound.
	require.NoError(t, triage.Bind(agent.Transfer("transfer_to_gmail_agent", "", gmail)))
	require.NoError(t, gmail.Bind(agent.Transfer("transfer_back_to_triage", "", triage)))

	assert.ErrorIs(t, gmail.Bind(), agent.ErrAlreadyBound)

	tools := triage.Tools()
	require.Len(t, tools, 1)
	res, err := tools[0].Call(context.Background(), "c", "{}")
	require.NoError(t, err)
	to, ok := res.Handoff()
	require.True(t, ok)
	assert.Same(t, gmail, to)
}

func TestBind_ConcurrentCallersSeeOneWinner(t *testing.T) {
	a := agent.New("Calendar Agent")
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- a.Bind(constTool("list_events", "[]"))
		}()
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, agent.ErrAlreadyBound)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, a.Tools(), 1)
}

func TestTools_ReturnsCopy(t *testing.T) {
	a := agent.New("A", agent.WithTools(constTool("one", "1")))
	tools := a.Tools()
	tools[0] = constTool("mutated", "x")
	assert.Equal(t, "one", a.Tools()[0].Name())
}

func TestValidate(t *testing.T) {
	ok := agent.New("A", agent.WithTools(constTool("one", "1"), constTool("two", "2")))
	assert.NoError(t, ok.Validate())

	bad := agent.New("B", agent.WithTools(
		constTool("one", "1"),
		constTool("one", "again"),
		agent.NewTextTool("opaque", "", func(context.Context, []string) (string, error) { return "", nil }),
	))
	err := bad.Validate()
	require.Error(t, err)
	var se *agent.SchemaError
	assert.True(t, errors.As(err, &se))
	assert.Contains(t, err.Error(), `duplicate tool "one"`)
}
