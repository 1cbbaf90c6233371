package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/muesli/termenv"

	"github.com/petasbytes/go-swarm/internal/runner"
)

// printer renders the conversation. Agent names are colored when the output
// supports it.
type printer struct {
	mu  sync.Mutex
	out *termenv.Output
}

func newPrinter(w io.Writer, opts ...termenv.OutputOption) *printer {
	return &printer{out: termenv.NewOutput(w, opts...)}
}

func (p *printer) name(s string) termenv.Style {
	return p.out.String(s).Foreground(p.out.Color("5")).Bold()
}

func (p *printer) prompt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s: ", p.out.String("User").Foreground(p.out.Color("12")))
}

// user echoes scripted input, as the demo does.
func (p *printer) user(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s: %s\n", p.out.String("User").Foreground(p.out.Color("12")), text)
}

func (p *printer) event(e runner.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch e.Kind {
	case runner.EventText:
		fmt.Fprintf(p.out, "%s: %s\n", p.name(e.Agent), e.Text)
	case runner.EventToolCall:
		fmt.Fprintf(p.out, "%s: %s(%s)\n", p.name(e.Agent), e.Tool, e.Arguments)
	case runner.EventHandoff:
		fmt.Fprintf(p.out, "%s\n", p.out.String(fmt.Sprintf("-- %s -> %s", e.Agent, e.Target)).Faint())
	}
}

func (p *printer) failure(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %v\n", p.out.String("error:").Foreground(p.out.Color("1")), err)
}
