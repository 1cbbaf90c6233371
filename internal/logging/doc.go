// Package logging configures slog for the CLI and defines the attribute
// helpers used across packages, so agent, tool and call identifiers are
// always logged under the same keys.
package logging
