package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model request to run one tool. Arguments is the JSON payload
// exactly as the model emitted it; it is parsed at dispatch time.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry in the conversation log.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

func System(text string) Message { return Message{Role: RoleSystem, Content: text} }
func User(text string) Message { return Message{Role: RoleUser, Content: text} }

// Assistant builds an assistant message; calls may be empty.
func Assistant(text string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// ToolResult builds the tool message answering callID.
func ToolResult(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// HasToolCalls reports whether m asks for any tool to run.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

var (
	ErrOrphanToolResult = errors.New("tool result without matching call")
	ErrUnansweredCall   = errors.New("tool call without result")
)

// Validate checks the pairing invariant over msgs:
//   - a tool message must answer a call of the nearest assistant message, with
//     only tool messages in between, and each call is answered at most once;
//   - every call must be answered before the next non-tool message or the end of msgs.
func Validate(msgs []Message) error {
	var pending map[string]bool
	flush := func(idx int) error {
		for id, answered := range pending {
			if !answered {
				return fmt.Errorf("message %d: call %q: %w", idx, id, ErrUnansweredCall)
			}
		}
		return nil
	}
	for i, m := range msgs {
		if m.Role == RoleTool {
			answered, ok := pending[m.ToolCallID]
			if !ok || answered {
				return fmt.Errorf("message %d: call %q: %w", i, m.ToolCallID, ErrOrphanToolResult)
			}
			pending[m.ToolCallID] = true
			continue
		}
		if err := flush(i); err != nil {
			return err
		}
		pending = nil
		if m.Role == RoleAssistant && m.HasToolCalls() {
			pending = make(map[string]bool, len(m.ToolCalls))
			for _, c := range m.ToolCalls {
				pending[c.ID] = false
			}
		}
	}
	return flush(len(msgs))
}

// Conversation is an append-only message log safe for concurrent readers.
type Conversation struct {
	mu   sync.RWMutex
	msgs []Message
}

// NewConversation starts a log with the given messages.
func NewConversation(msgs ...Message) *Conversation {
	return &Conversation{msgs: append([]Message(nil), msgs...)}
}

// Append adds msgs at the end of the log.
func (c *Conversation) Append(msgs ...Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msgs...)
}

// Messages returns a copy of the log.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Message(nil), c.msgs...)
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.msgs)
}

// SaveTranscript writes msgs as indented JSON.
func SaveTranscript(path string, msgs []Message) error {
	b, err := json.MarshalIndent(msgs, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
