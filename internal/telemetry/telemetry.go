package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const defaultArtifactsDir = ".agent"

var (
	mu         sync.Mutex
	enabled    bool
	configured string
)

// Enable turns on JSONL emission into dir (".agent" when empty).
func Enable(dir string) {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
	configured = dir
}

// Disable turns emission off again. AGT_OBSERVE_JSON=1 still forces it on.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = false
	configured = ""
}

// ObserveEnabled reports whether events are written.
func ObserveEnabled() bool {
	if os.Getenv("AGT_OBSERVE_JSON") == "1" {
		return true
	}
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

func artifactsDir() string {
	mu.Lock()
	dir := configured
	mu.Unlock()
	if dir != "" {
		return dir
	}
	if v := os.Getenv("AGT_ARTIFACTS_DIR"); v != "" {
		return v
	}
	return defaultArtifactsDir
}

// Emit appends one JSON line to <artifacts>/events.jsonl when observation is on.
// It augments fields with RFC3339Nano time and the event name.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	// Shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: marshal: %v\n", err)
		return
	}

	dir := artifactsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: mkdir %s: %v\n", dir, err)
		return
	}

	mu.Lock()
	defer mu.Unlock()
	path := filepath.Join(dir, "events.jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: open %s: %v\n", path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: write %s: %v\n", path, err)
	}
}
