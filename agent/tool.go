package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Policy decides what happens when a tool's function returns an error.
type Policy struct {
	failSoft bool
	fallback Result
}

// Propagate aborts the turn loop with a ToolExecutionError. It is the default.
func Propagate() Policy { return Policy{} }

// FailSoft reports the failure and hands fallback to the model instead.
func FailSoft(fallback Result) Policy { return Policy{failSoft: true, fallback: fallback} }

// Fallback returns the safe default for fail-soft tools.
func (p Policy) Fallback() (Result, bool) { return p.fallback, p.failSoft }

// ToolOption configures a Tool.
type ToolOption func(*Tool)

// WithPolicy sets the tool's failure policy.
func WithPolicy(p Policy) ToolOption {
	return func(t *Tool) { t.policy = p }
}

// Tool is a named callable exposed to the model. Its parameters are the
// fields of an input struct; arguments are bound to them by json name.
type Tool struct {
	name        string
	description string
	policy      Policy
	schema      Schema
	schemaErr   error
	decode      func(args map[string]any) (any, error)
	run         func(ctx context.Context, in any) (Result, error)
}

// NewTool builds a tool over fn. The description is what the model reads.
func NewTool[In any](name, description string, fn func(ctx context.Context, in In) (Result, error), opts ...ToolOption) Tool {
	t := Tool{
		name:        name,
		description: strings.TrimSpace(description),
		decode: func(args map[string]any) (any, error) {
			var in In
			if err := bindArguments(args, &in); err != nil {
				return nil, err
			}
			return in, nil
		},
		run: func(ctx context.Context, in any) (Result, error) {
			return fn(ctx, in.(In))
		},
	}
	t.schema, t.schemaErr = DeriveSchema(name, description, reflect.TypeFor[In]())
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// NewTextTool builds a tool whose function returns the model-facing text directly.
func NewTextTool[In any](name, description string, fn func(ctx context.Context, in In) (string, error), opts ...ToolOption) Tool {
	return NewTool(name, description, func(ctx context.Context, in In) (Result, error) {
		s, err := fn(ctx, in)
		if err != nil {
			return Result{}, err
		}
		return Text(s), nil
	}, opts...)
}

// NewValueTool builds a tool whose structured return value is sent to the
// model as canonical JSON text.
func NewValueTool[In, Out any](name, description string, fn func(ctx context.Context, in In) (Out, error), opts ...ToolOption) Tool {
	return NewTool(name, description, func(ctx context.Context, in In) (Result, error) {
		v, err := fn(ctx, in)
		if err != nil {
			return Result{}, err
		}
		return Value(v)
	}, opts...)
}

// Transfer builds a no-argument tool that hands control to target. A nil
// target yields a tool carrying a SchemaError, so it is never exposed.
func Transfer(name, description string, target *Agent) Tool {
	t := NewTool(name, description, func(context.Context, struct{}) (Result, error) {
		return Handoff(target), nil
	})
	if target == nil {
		t.schemaErr = &SchemaError{Tool: name, Err: errors.New("transfer target is nil")}
	}
	return t
}

func (t Tool) Name() string { return t.name }
func (t Tool) Description() string { return t.description }
func (t Tool) Policy() Policy { return t.policy }

// Schema returns the derived schema, or the SchemaError that prevents exposing the tool.
func (t Tool) Schema() (Schema, error) {
	return t.schema, t.schemaErr
}

// Call parses raw as a JSON object, binds it to the tool's input and runs it.
// Errors from the function itself are returned as *ToolExecutionError; the
// caller applies Policy.
func (t Tool) Call(ctx context.Context, callID, raw string) (Result, error) {
	if t.schemaErr != nil {
		return Result{}, t.schemaErr
	}
	args, err := ParseArguments(raw)
	if err != nil {
		return Result{}, &ArgumentParseError{Tool: t.name, CallID: callID, Err: err}
	}
	for k, v := range t.schema.Defaults() {
		if _, ok := args[k]; !ok {
			args[k] = v
		}
	}
	for _, req := range t.schema.Required {
		if _, ok := args[req]; !ok {
			return Result{}, &ArgumentParseError{Tool: t.name, CallID: callID, Err: fmt.Errorf("missing required argument %q", req)}
		}
	}
	in, err := t.decode(args)
	if err != nil {
		return Result{}, &ArgumentParseError{Tool: t.name, CallID: callID, Err: err}
	}
	res, err := t.run(ctx, in)
	if err != nil {
		return Result{}, &ToolExecutionError{Tool: t.name, CallID: callID, Err: err}
	}
	return res, nil
}

// ParseArguments decodes a tool-call argument payload. An empty payload or
// JSON null is an empty argument set; anything but an object is an error.
func ParseArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// bindArguments decodes args into out. Embedded structs are squashed to
// match the flattened properties DeriveSchema advertises.
func bindArguments(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Squash:      true,
		Result:      out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			integralHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}

// integralHook rejects JSON numbers with a fractional part bound to integer
// fields; mapstructure would otherwise truncate them.
func integralHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	f, ok := data.(float64)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("%v is not an integer", f)
		}
	}
	return data, nil
}
