package tools_test

import (
	"context"
	"time"

	"github.com/petasbytes/go-swarm/internal/calendar"
	"github.com/petasbytes/go-swarm/internal/gmail"
)

type fakeMailbox struct {
	err      error
	messages []gmail.Message

	listMax   int64
	listQuery string
	sent      []string
	deleted   []string
}

func (f *fakeMailbox) List(_ context.Context, maxResults int64, query string) ([]gmail.Message, error) {
	f.listMax, f.listQuery = maxResults, query
	if f.err != nil {
		return nil, f.err
	}
	return f.messages, nil
}

func (f *fakeMailbox) Get(_ context.Context, id string) (gmail.Message, error) {
	if f.err != nil {
		return gmail.Message{}, f.err
	}
	for _, m := range f.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return gmail.Message{}, errNotFound
}

func (f *fakeMailbox) Send(_ context.Context, to, subject, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, to+"|"+subject+"|"+body)
	return "sent-1", nil
}

func (f *fakeMailbox) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

type fakeCalendar struct {
	err error

	listCalendar string
	listMax      int64
	listFrom     time.Time
	created      []calendar.EventInput
	updated      map[string]calendar.EventInput
	deleted      []string
}

func (f *fakeCalendar) List(_ context.Context, calendarID string, maxResults int64, timeMin time.Time) ([]calendar.Event, error) {
	f.listCalendar, f.listMax, f.listFrom = calendarID, maxResults, timeMin
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

func (f *fakeCalendar) Create(_ context.Context, calendarID string, in calendar.EventInput) (calendar.Event, error) {
	if f.err != nil {
		return calendar.Event{}, f.err
	}
	f.created = append(f.created, in)
	return calendar.Event{ID: "e1", Summary: in.Summary, Start: in.Start.Format(time.RFC3339), End: in.End.Format(time.RFC3339)}, nil
}

func (f *fakeCalendar) Update(_ context.Context, calendarID, eventID string, patch calendar.EventInput) (calendar.Event, error) {
	if f.err != nil {
		return calendar.Event{}, f.err
	}
	if f.updated == nil {
		f.updated = map[string]calendar.EventInput{}
	}
	f.updated[eventID] = patch
	return calendar.Event{ID: eventID, Summary: patch.Summary}, nil
}

func (f *fakeCalendar) Delete(_ context.Context, calendarID, eventID string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, calendarID+"/"+eventID)
	return nil
}
