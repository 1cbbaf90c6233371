package tools

import (
	"context"
	"time"

	"github.com/petasbytes/go-swarm/agent"
	"github.com/petasbytes/go-swarm/internal/calendar"
)

// Calendar is the Google Calendar surface the calendar tools need.
// *calendar.Client satisfies it.
type Calendar interface {
	List(ctx context.Context, calendarID string, maxResults int64, timeMin time.Time) ([]calendar.Event, error)
	Create(ctx context.Context, calendarID string, in calendar.EventInput) (calendar.Event, error)
	Update(ctx context.Context, calendarID, eventID string, patch calendar.EventInput) (calendar.Event, error)
	Delete(ctx context.Context, calendarID, eventID string) error
}

type ListEventsInput struct {
	CalendarID string `json:"calendar_id,omitempty" jsonschema:"default=primary" jsonschema_description:"Calendar to read."`
	MaxResults int64  `json:"max_results,omitempty" jsonschema:"default=100" jsonschema_description:"Maximum number of events to return."`
	TimeMin    string `json:"time_min,omitempty" jsonschema_description:"RFC 3339 lower bound on event start. Defaults to now."`
}

type CreateEventInput struct {
	Summary     string `json:"summary" jsonschema_description:"Event title."`
	StartTime   string `json:"start_time" jsonschema_description:"RFC 3339 start time. Times without an offset are UTC."`
	EndTime     string `json:"end_time" jsonschema_description:"RFC 3339 end time. Times without an offset are UTC."`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	CalendarID  string `json:"calendar_id,omitempty" jsonschema:"default=primary"`
}

type UpdateEventInput struct {
	EventID     string `json:"event_id" jsonschema_description:"Id of the event to change."`
	Summary     string `json:"summary,omitempty"`
	StartTime   string `json:"start_time,omitempty" jsonschema_description:"New RFC 3339 start time."`
	EndTime     string `json:"end_time,omitempty" jsonschema_description:"New RFC 3339 end time."`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	CalendarID  string `json:"calendar_id,omitempty" jsonschema:"default=primary"`
}

type DeleteEventInput struct {
	EventID    string `json:"event_id" jsonschema_description:"Id of the event to delete."`
	CalendarID string `json:"calendar_id,omitempty" jsonschema:"default=primary"`
}

// CalendarTools returns list_events, create_event, update_event and
// delete_event over c. now supplies the default lower bound for listing;
// nil means time.Now.
func CalendarTools(c Calendar, now func() time.Time) []agent.Tool {
	if now == nil {
		now = time.Now
	}
	return []agent.Tool{
		agent.NewValueTool("list_events",
			"List upcoming events ordered by start time.",
			func(ctx context.Context, in ListEventsInput) ([]calendar.Event, error) {
				from := now()
				if in.TimeMin != "" {
					t, err := calendar.ParseTime(in.TimeMin)
					if err != nil {
						return nil, err
					}
					from = t
				}
				events, err := c.List(ctx, in.CalendarID, in.MaxResults, from)
				if err != nil {
					return nil, err
				}
				if events == nil {
					events = []calendar.Event{}
				}
				return events, nil
			}, agent.WithPolicy(emptyList)),
		agent.NewValueTool("create_event",
			"Create a calendar event. Times are stored in UTC.",
			func(ctx context.Context, in CreateEventInput) (calendar.Event, error) {
				start, err := calendar.ParseTime(in.StartTime)
				if err != nil {
					return calendar.Event{}, err
				}
				end, err := calendar.ParseTime(in.EndTime)
				if err != nil {
					return calendar.Event{}, err
				}
				return c.Create(ctx, in.CalendarID, calendar.EventInput{
					Summary:     in.Summary,
					Description: in.Description,
					Location:    in.Location,
					Start:       start,
					End:         end,
				})
			}, agent.WithPolicy(none)),
		agent.NewValueTool("update_event",
			"Update an existing event. Only the fields given are changed.",
			func(ctx context.Context, in UpdateEventInput) (calendar.Event, error) {
				patch := calendar.EventInput{Summary: in.Summary, Description: in.Description, Location: in.Location}
				var err error
				if in.StartTime != "" {
					if patch.Start, err = calendar.ParseTime(in.StartTime); err != nil {
						return calendar.Event{}, err
					}
				}
				if in.EndTime != "" {
					if patch.End, err = calendar.ParseTime(in.EndTime); err != nil {
						return calendar.Event{}, err
					}
				}
				return c.Update(ctx, in.CalendarID, in.EventID, patch)
			}, agent.WithPolicy(none)),
		agent.NewValueTool("delete_event",
			"Delete an event by id. Returns true on success.",
			func(ctx context.Context, in DeleteEventInput) (bool, error) {
				if err := c.Delete(ctx, in.CalendarID, in.EventID); err != nil {
					return false, err
				}
				return true, nil
			}, agent.WithPolicy(notDone)),
	}
}
