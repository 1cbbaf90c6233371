// Package provider implements runner.Completer over hosted model APIs.
//
// OpenAI (go-openai) is the default and maps messages one to one. Anthropic
// (anthropic-sdk-go) lifts system messages into the system prompt and sends
// tool results as user tool_result blocks. Retrying adds caller-side backoff.
package provider
