package agent

import (
	"errors"
	"fmt"
)

// ErrAlreadyBound is returned when Bind is called on an agent whose tools are sealed.
var ErrAlreadyBound = errors.New("agent tools already bound")

// SchemaError reports a tool that cannot be described to the model.
// Callers exclude the tool instead of aborting the loop.
type SchemaError struct {
	Tool string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema for tool %q: %v", e.Tool, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ArgumentParseError reports a tool call whose arguments are not a JSON object
// or do not bind to the tool's parameters.
type ArgumentParseError struct {
	Tool   string
	CallID string
	Err    error
}

func (e *ArgumentParseError) Error() string {
	return fmt.Sprintf("tool call %s: parse arguments for %q: %v", e.CallID, e.Tool, e.Err)
}

func (e *ArgumentParseError) Unwrap() error { return e.Err }

// UnknownToolError reports a tool call naming a tool absent from the registry.
type UnknownToolError struct {
	Tool   string
	CallID string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool call %s: unknown tool %q", e.CallID, e.Tool)
}

// ToolExecutionError wraps an error returned by a tool using the Propagate policy.
type ToolExecutionError struct {
	Tool   string
	CallID string
	Err    error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool call %s: %q failed: %v", e.CallID, e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }
