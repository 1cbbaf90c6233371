package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Primary is the calendar id of the signed-in user's main calendar.
const Primary = "primary"

const naiveLayout = "2006-01-02T15:04:05"

// Event is the record handed back to the model.
type Event struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Status      string `json:"status,omitempty"`
	HTMLLink    string `json:"htmlLink,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// EventInput describes an event to create, or the fields to change on update.
// On update, empty strings and zero times leave the existing value alone.
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

type Client struct {
	events *calendar.EventsService
}

func New(svc *calendar.Service) *Client {
	return &Client{events: svc.Events}
}

// ParseTime accepts RFC 3339 or a timestamp without offset, which is read as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339", s)
	}
	return t, nil
}

// List returns up to maxResults events starting at or after timeMin.
func (c *Client) List(ctx context.Context, calendarID string, maxResults int64, timeMin time.Time) ([]Event, error) {
	call := c.events.List(orPrimary(calendarID)).
		TimeMin(timeMin.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}
	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	out := make([]Event, 0, len(res.Items))
	for _, e := range res.Items {
		out = append(out, toEvent(e))
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, calendarID string, in EventInput) (Event, error) {
	if in.Summary == "" {
		return Event{}, errors.New("summary is required")
	}
	if in.Start.IsZero() || in.End.IsZero() {
		return Event{}, errors.New("start and end are required")
	}
	if in.End.Before(in.Start) {
		return Event{}, errors.New("end is before start")
	}
	ev := &calendar.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Location:    in.Location,
		Start:       dateTime(in.Start),
		End:         dateTime(in.End),
	}
	created, err := c.events.Insert(orPrimary(calendarID), ev).Context(ctx).Do()
	if err != nil {
		return Event{}, fmt.Errorf("failed to create event: %w", err)
	}
	return toEvent(created), nil
}

// Update fetches the event, applies the non-empty fields of patch and writes it back.
func (c *Client) Update(ctx context.Context, calendarID, eventID string, patch EventInput) (Event, error) {
	calendarID = orPrimary(calendarID)
	ev, err := c.events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return Event{}, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	if patch.Summary != "" {
		ev.Summary = patch.Summary
	}
	if patch.Description != "" {
		ev.Description = patch.Description
	}
	if patch.Location != "" {
		ev.Location = patch.Location
	}
	if !patch.Start.IsZero() {
		ev.Start = dateTime(patch.Start)
	}
	if !patch.End.IsZero() {
		ev.End = dateTime(patch.End)
	}
	updated, err := c.events.Update(calendarID, eventID, ev).Context(ctx).Do()
	if err != nil {
		return Event{}, fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	return toEvent(updated), nil
}

func (c *Client) Delete(ctx context.Context, calendarID, eventID string) error {
	if err := c.events.Delete(orPrimary(calendarID), eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}

func orPrimary(id string) string {
	if id == "" {
		return Primary
	}
	return id
}

func dateTime(t time.Time) *calendar.EventDateTime {
	return &calendar.EventDateTime{DateTime: t.UTC().Format(time.RFC3339), TimeZone: "UTC"}
}

func toEvent(e *calendar.Event) Event {
	if e == nil {
		return Event{}
	}
	return Event{
		ID:          e.Id,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Status:      e.Status,
		HTMLLink:    e.HtmlLink,
		Start:       when(e.Start),
		End:         when(e.End),
	}
}

// when returns the timestamp, or the date for all-day events.
func when(d *calendar.EventDateTime) string {
	if d == nil {
		return ""
	}
	if d.DateTime != "" {
		return d.DateTime
	}
	return d.Date
}
