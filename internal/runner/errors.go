package runner

import (
	"errors"
	"fmt"
)

// ErrMaxRounds is returned when a turn needs more completions than the configured limit.
var ErrMaxRounds = errors.New("turn exceeded max completion rounds")

// CompletionError wraps a failure from the Completer. It is never retried here.
type CompletionError struct {
	Agent string
	Model string
	Err   error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion for agent %q (model %s): %v", e.Agent, e.Model, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }
