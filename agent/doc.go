// Package agent defines agents, the tools they expose and how those tools are
// described to and invoked by a language model.
//
// Includes:
//   - Agent: name, model, instructions and a tool set bound exactly once.
//   - Tool: a named callable over an input struct, returning a Result.
//   - Result: either text for the model or a handoff to another Agent.
//   - DeriveSchema: ToolSchema from the input struct (json tags, field order).
//   - Registry: name -> tool lookup built per loop iteration.
//
// Invariants:
//   - An Agent's tools are immutable once bound; Bind fails on a second call.
//   - Schema.Required lists exactly the parameters without a default.
package agent
