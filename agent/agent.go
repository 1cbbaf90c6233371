package agent

import (
	"errors"
	"fmt"
	"sync"
)

const (
	DefaultName         = "Agent"
	DefaultModel        = "gpt-4o-mini"
	DefaultInstructions = "You are a helpful Agent"
)

// Agent is a named persona: a model, its system instructions and the tools it may call.
//
// Tools are bound in a second phase so agents can reference each other
// through handoff tools before every callable exists. Once bound they are sealed.
type Agent struct {
	name         string
	model        string
	instructions string

	mu    sync.RWMutex
	tools []Tool
	bound bool
}

// Option configures an Agent at construction.
type Option func(*Agent)

func WithModel(model string) Option {
	return func(a *Agent) { a.model = model }
}

func WithInstructions(instructions string) Option {
	return func(a *Agent) { a.instructions = instructions }
}

// WithTools binds tools at construction, sealing the agent.
func WithTools(tools ...Tool) Option {
	return func(a *Agent) {
		a.tools = append([]Tool(nil), tools...)
		a.bound = true
	}
}

// New returns an agent with the package defaults for anything not set.
func New(name string, opts ...Option) *Agent {
	if name == "" {
		name = DefaultName
	}
	a := &Agent{name: name, model: DefaultModel, instructions: DefaultInstructions}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) Name() string { return a.name }
func (a *Agent) Model() string { return a.model }
func (a *Agent) Instructions() string { return a.instructions }
func (a *Agent) String() string { return a.name }

// Bind sets the agent's tools. It must complete before any turn loop uses the
// agent and can only happen once.
func (a *Agent) Bind(tools ...Tool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bound {
		return fmt.Errorf("%s: %w", a.name, ErrAlreadyBound)
	}
	a.tools = append([]Tool(nil), tools...)
	a.bound = true
	return nil
}

// Bound reports whether the tool set is sealed.
func (a *Agent) Bound() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bound
}

// Tools returns a copy of the bound tools in declaration order.
func (a *Agent) Tools() []Tool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Tool(nil), a.tools...)
}

// Validate is the strict check: every tool must derive a schema and tool
// names must be unique.
func (a *Agent) Validate() error {
	var errs []error
	seen := map[string]bool{}
	for _, t := range a.Tools() {
		if _, err := t.Schema(); err != nil {
			errs = append(errs, err)
		}
		if seen[t.Name()] {
			errs = append(errs, fmt.Errorf("%s: duplicate tool %q", a.name, t.Name()))
		}
		seen[t.Name()] = true
	}
	return errors.Join(errs...)
}
