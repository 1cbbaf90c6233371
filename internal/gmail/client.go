package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

const me = "me"

// Message is the flattened view of a Gmail message handed to the model.
type Message struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
	Subject  string `json:"subject"`
	Sender   string `json:"sender"`
	Body     string `json:"body"`
}

// Client wraps the Gmail Users service for the signed-in account.
type Client struct {
	users *gmail.UsersService
}

func New(svc *gmail.Service) *Client {
	return &Client{users: svc.Users}
}

// List returns up to maxResults messages matching query, each fetched in full.
func (c *Client) List(ctx context.Context, maxResults int64, query string) ([]Message, error) {
	call := c.users.Messages.List(me).Context(ctx)
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}
	if query != "" {
		call = call.Q(query)
	}
	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	out := make([]Message, 0, len(res.Messages))
	for _, m := range res.Messages {
		msg, err := c.Get(ctx, m.Id)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

// Get fetches one message and extracts its subject, sender and plain-text body.
func (c *Client) Get(ctx context.Context, id string) (Message, error) {
	m, err := c.users.Messages.Get(me, id).Format("full").Context(ctx).Do()
	if err != nil {
		return Message{}, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return toMessage(m), nil
}

// Send delivers a plain-text message and returns the provider message id.
func (c *Client) Send(ctx context.Context, to, subject, body string) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", errors.New("recipient is required")
	}
	sent, err := c.users.Messages.Send(me, &gmail.Message{Raw: buildRaw(to, subject, body)}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

// Delete permanently removes a message.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.users.Messages.Delete(me, id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete message %s: %w", id, err)
	}
	return nil
}

func toMessage(m *gmail.Message) Message {
	if m == nil {
		return Message{}
	}
	out := Message{ID: m.Id, ThreadID: m.ThreadId, Subject: "No Subject", Sender: "Unknown Sender"}
	if m.Payload == nil {
		return out
	}
	if v, ok := header(m.Payload.Headers, "Subject"); ok {
		out.Subject = v
	}
	if v, ok := header(m.Payload.Headers, "From"); ok {
		out.Sender = v
	}
	if len(m.Payload.Parts) > 0 {
		out.Body = bodyFromParts(m.Payload.Parts)
	} else {
		out.Body = decodeBody(m.Payload.Body)
	}
	return out
}

func header(headers []*gmail.MessagePartHeader, name string) (string, bool) {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// bodyFromParts returns the first text/plain part, depth first.
func bodyFromParts(parts []*gmail.MessagePart) string {
	for _, p := range parts {
		if p == nil {
			continue
		}
		if p.MimeType == "text/plain" {
			return decodeBody(p.Body)
		}
		if len(p.Parts) > 0 {
			if s := bodyFromParts(p.Parts); s != "" {
				return s
			}
		}
	}
	return ""
}

func decodeBody(b *gmail.MessagePartBody) string {
	if b == nil || b.Data == "" {
		return ""
	}
	// Gmail uses base64url and may drop the padding.
	data, err := base64.URLEncoding.DecodeString(b.Data)
	if err != nil {
		data, err = base64.RawURLEncoding.DecodeString(b.Data)
		if err != nil {
			return ""
		}
	}
	return string(data)
}

func buildRaw(to, subject, body string) string {
	var sb strings.Builder
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return base64.URLEncoding.EncodeToString([]byte(sb.String()))
}
