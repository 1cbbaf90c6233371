package tools

import (
	"errors"

	"github.com/petasbytes/go-swarm/agent"
)

const (
	TriageAgentName   = "Triage Agent"
	GmailAgentName    = "Gmail Agent"
	CalendarAgentName = "Google Calendar Agent"
)

const triageInstructions = "You are a triage agent for an AI assistant that can handle both email and calendar tasks. " +
	"Introduce yourself briefly. Determine whether the user needs help with email or calendar tasks. " +
	"Transfer to the appropriate agent based on the user's needs. " +
	"If the task is unclear, ask for clarification."

const gmailInstructions = "You are a Gmail assistant. Help the user with email-related tasks " +
	"such as listing messages, sending emails, and managing the inbox. " +
	"The user may send a JSON action such as " +
	`{"action": "Get Emails", "max_results": 100, "query": "search_query"}; ` +
	"carry it out with your tools. " +
	"If the request is not about email, transfer back to triage."

const calendarInstructions = "You are a Calendar assistant. Help the user with calendar-related tasks " +
	"such as listing events, creating events, updating events, and deleting events. " +
	"Use RFC 3339 times. If the request is not about the calendar, transfer back to triage."

// Assistant is the email and calendar agent graph. Conversations start at Triage.
type Assistant struct {
	Triage   *agent.Agent
	Gmail    *agent.Agent
	Calendar *agent.Agent
}

// NewAssistant builds and binds the graph. The agents reference each other
// through transfer tools, so all three are declared before any is bound.
// An empty model keeps the agent default.
func NewAssistant(model string, mail Mailbox, cal Calendar) (*Assistant, error) {
	opts := func(instructions string) []agent.Option {
		o := []agent.Option{agent.WithInstructions(instructions)}
		if model != "" {
			o = append(o, agent.WithModel(model))
		}
		return o
	}
	a := &Assistant{
		Triage:   agent.New(TriageAgentName, opts(triageInstructions)...),
		Gmail:    agent.New(GmailAgentName, opts(gmailInstructions)...),
		Calendar: agent.New(CalendarAgentName, opts(calendarInstructions)...),
	}
	back := agent.Transfer("transfer_back_to_triage",
		"Transfer back to the Triage Agent when the request is outside your area.", a.Triage)

	err := errors.Join(
		a.Triage.Bind(
			agent.Transfer("transfer_to_gmail_agent", "Transfer to the Gmail Agent for email-related tasks.", a.Gmail),
			agent.Transfer("transfer_to_calendar_agent", "Transfer to the Calendar Agent for calendar-related tasks.", a.Calendar),
		),
		a.Gmail.Bind(append(GmailTools(mail), back)...),
		a.Calendar.Bind(append(CalendarTools(cal, nil), back)...),
	)
	if err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Agents lists the graph in a stable order.
func (a *Assistant) Agents() []*agent.Agent {
	return []*agent.Agent{a.Triage, a.Gmail, a.Calendar}
}

func (a *Assistant) validate() error {
	var errs []error
	for _, ag := range a.Agents() {
		errs = append(errs, ag.Validate())
	}
	return errors.Join(errs...)
}
