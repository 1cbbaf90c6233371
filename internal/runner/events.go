package runner

// EventKind classifies what an Event reports.
type EventKind int

const (
	// EventText is visible assistant text, reported before any tool dispatch.
	EventText EventKind = iota
	// EventToolCall is reported just before a tool runs.
	EventToolCall
	// EventHandoff is reported once the current agent has changed.
	EventHandoff
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventToolCall:
		return "tool_call"
	case EventHandoff:
		return "handoff"
	default:
		return "unknown"
	}
}

// Event is one reportable step of a turn. Agent is the agent that produced it.
type Event struct {
	Kind      EventKind
	Agent     string
	Text      string
	Tool      string
	Arguments string
	CallID    string
	// Target is the new agent's name for EventHandoff.
	Target string
}

// EventHandler is called synchronously from the turn loop.
type EventHandler func(Event)
