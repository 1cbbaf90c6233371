package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Attribute keys shared by every package that logs.
const (
	KeyAgent    = "agent"
	KeyTool     = "tool"
	KeyCallID   = "call_id"
	KeyModel    = "model"
	KeyTurn     = "turn_id"
	KeyStatus   = "status"
	KeyDuration = "duration"
	KeyError    = "err"
)

// New builds the application logger. Output goes to w (stderr when nil) so
// stdout stays free for the conversation. format is "text" or "json".
func New(level slog.Level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = KeyError
			}
			return a
		},
	}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

func Agent(name string) slog.Attr { return slog.String(KeyAgent, name) }
func Tool(name string) slog.Attr { return slog.String(KeyTool, name) }
func CallID(id string) slog.Attr { return slog.String(KeyCallID, id) }
func Model(model string) slog.Attr { return slog.String(KeyModel, model) }
func Turn(id string) slog.Attr { return slog.String(KeyTurn, id) }
func Status(status string) slog.Attr { return slog.String(KeyStatus, status) }

// Err returns an error attribute, or an empty group that slog omits when err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}
