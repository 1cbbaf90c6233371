// Package config resolves CLI settings from defaults, an optional YAML file and
// AGT_* environment variables. Flags are layered on top by cmd/agent.
package config
