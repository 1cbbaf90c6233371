// Package memory holds the conversation log shared between the CLI and the turn loop.
//
// Model:
//   - Message is a tagged variant over system, user, assistant and tool roles.
//   - The log is append-only; nothing is ever removed or rewritten.
//   - Each tool message answers a call emitted by the assistant message directly
//     before its run of tool messages (see Validate).
//   - The log lives in memory for the process lifetime; SaveTranscript writes a
//     copy for inspection and is never read back.
package memory
