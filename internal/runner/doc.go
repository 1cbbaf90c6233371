// Package runner implements the turn loop that alternates model completions
// with tool dispatch and moves the conversation between agents.
//
// States:
//
//	AWAITING_MODEL -> DISPATCHING_TOOLS -> AWAITING_MODEL ... -> DONE
//
// Invariants:
//   - every prompt is the current agent's instructions as a system message,
//     followed by the caller's history and everything appended this turn;
//   - tool calls run one at a time in the order the model emitted them, and each
//     is answered by exactly one tool message carrying its call id;
//   - a handoff result switches the agent for the next completion; its tool
//     message reads "Transferred to {name}. Adopt persona immediately.";
//   - completion failures, unknown tools and malformed arguments abort the turn.
//
// Flow:
//
//	user(text) -> assistant(tool_calls) -> tool(result)... -> assistant(text)
package runner
