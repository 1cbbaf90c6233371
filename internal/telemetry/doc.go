// Package telemetry writes privacy-preserving JSONL events for offline analysis.
//
// Events go to <artifacts>/events.jsonl when enabled through Enable or
// AGT_OBSERVE_JSON=1. The artifacts directory is the one passed to Enable,
// else AGT_ARTIFACTS_DIR, else ".agent". Events carry sizes, durations, names
// and turn IDs; raw user text and tool arguments are never written.
package telemetry
