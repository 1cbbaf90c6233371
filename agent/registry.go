package agent

// Registry maps tool names to tools for one agent. It is rebuilt on every
// model round because a handoff can change the agent mid-loop.
type Registry struct {
	names    []string
	tools    map[string]Tool
	schemas  map[string]Schema
	excluded []error
	shadowed []string
}

// NewRegistry indexes tools by name.
//
// Tools whose schema cannot be derived are excluded and recorded in Excluded.
// A duplicate name shadows the earlier tool: the later tool wins but keeps the
// position of the first, and the name is recorded in Shadowed.
func NewRegistry(tools []Tool) *Registry {
	r := &Registry{
		tools:   make(map[string]Tool, len(tools)),
		schemas: make(map[string]Schema, len(tools)),
	}
	for _, t := range tools {
		s, err := t.Schema()
		if err != nil {
			r.excluded = append(r.excluded, err)
			continue
		}
		if _, exists := r.tools[t.Name()]; exists {
			r.shadowed = append(r.shadowed, t.Name())
		} else {
			r.names = append(r.names, t.Name())
		}
		r.tools[t.Name()] = t
		r.schemas[t.Name()] = s
	}
	return r
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Schemas returns one schema per registered name, in declaration order.
// It returns nil when no tool is registered.
func (r *Registry) Schemas() []Schema {
	if len(r.names) == 0 {
		return nil
	}
	out := make([]Schema, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.schemas[n])
	}
	return out
}

func (r *Registry) Names() []string { return append([]string(nil), r.names...) }
func (r *Registry) Len() int { return len(r.names) }
func (r *Registry) Excluded() []error { return r.excluded }
func (r *Registry) Shadowed() []string { return r.shadowed }
