package tools

import (
	"context"

	"github.com/petasbytes/go-swarm/agent"
	"github.com/petasbytes/go-swarm/internal/gmail"
)

// Mailbox is the Gmail surface the email tools need. *gmail.Client satisfies it.
type Mailbox interface {
	List(ctx context.Context, maxResults int64, query string) ([]gmail.Message, error)
	Get(ctx context.Context, id string) (gmail.Message, error)
	Send(ctx context.Context, to, subject, body string) (string, error)
	Delete(ctx context.Context, id string) error
}

type ListMessagesInput struct {
	MaxResults int64  `json:"max_results,omitempty" jsonschema:"default=100" jsonschema_description:"Maximum number of messages to return."`
	Query      string `json:"query,omitempty" jsonschema_description:"Gmail search query, e.g. from:alice is:unread."`
}

type GetMessageInput struct {
	MessageID string `json:"message_id" jsonschema_description:"Id of the message to fetch."`
}

type SendMessageInput struct {
	To      string `json:"to" jsonschema_description:"Recipient email address."`
	Subject string `json:"subject" jsonschema_description:"Subject line."`
	Body    string `json:"body" jsonschema_description:"Plain-text body."`
}

type DeleteMessageInput struct {
	MessageID string `json:"message_id" jsonschema_description:"Id of the message to delete permanently."`
}

// Gmail tools report provider failures to the model as these defaults.
var (
	emptyList = agent.FailSoft(agent.Text("[]"))
	none      = agent.FailSoft(agent.Text("null"))
	notDone   = agent.FailSoft(agent.Text("false"))
)

// GmailTools returns list_messages, get_message, send_message and delete_message over m.
func GmailTools(m Mailbox) []agent.Tool {
	return []agent.Tool{
		agent.NewValueTool("list_messages",
			"List messages in the inbox, newest first, with subject, sender and body. Supports an optional Gmail search query.",
			func(ctx context.Context, in ListMessagesInput) ([]gmail.Message, error) {
				msgs, err := m.List(ctx, in.MaxResults, in.Query)
				if err != nil {
					return nil, err
				}
				if msgs == nil {
					msgs = []gmail.Message{}
				}
				return msgs, nil
			}, agent.WithPolicy(emptyList)),
		agent.NewValueTool("get_message",
			"Fetch a single message by id.",
			func(ctx context.Context, in GetMessageInput) (gmail.Message, error) {
				return m.Get(ctx, in.MessageID)
			}, agent.WithPolicy(none)),
		agent.NewTextTool("send_message",
			"Send a plain-text email. Returns the id of the sent message.",
			func(ctx context.Context, in SendMessageInput) (string, error) {
				return m.Send(ctx, in.To, in.Subject, in.Body)
			}, agent.WithPolicy(none)),
		agent.NewValueTool("delete_message",
			"Permanently delete a message by id. Returns true on success.",
			func(ctx context.Context, in DeleteMessageInput) (bool, error) {
				if err := m.Delete(ctx, in.MessageID); err != nil {
					return false, err
				}
				return true, nil
			}, agent.WithPolicy(notDone)),
	}
}
