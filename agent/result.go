package agent

import (
	"encoding/json"
	"fmt"
)

// Result is what a tool hands back to the turn loop: either text for the
// model or a handoff to another agent.
type Result struct {
	text    string
	handoff *Agent
}

// Text returns a Result whose content is s.
func Text(s string) Result { return Result{text: s} }

// Handoff returns a Result that makes to the current agent.
func Handoff(to *Agent) Result { return Result{handoff: to} }

// Value returns a Result holding the canonical JSON encoding of v.
// Strings are passed through unchanged.
func Value(v any) (Result, error) {
	if s, ok := v.(string); ok {
		return Text(s), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return Result{}, fmt.Errorf("encode tool result: %w", err)
	}
	return Text(string(b)), nil
}

// Handoff reports the target agent when r is a handoff.
func (r Result) Handoff() (*Agent, bool) {
	return r.handoff, r.handoff != nil
}

// Content is the tool-result message body for r.
func (r Result) Content() string {
	if r.handoff != nil {
		return HandoffMessage(r.handoff.Name())
	}
	return r.text
}

// HandoffMessage is the tool result recorded when control moves to the named agent.
func HandoffMessage(name string) string {
	return fmt.Sprintf("Transferred to %s. Adopt persona immediately.", name)
}
