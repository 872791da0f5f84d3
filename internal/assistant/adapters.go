package assistant

import (
	"context"
	"log/slog"
	"time"

	"github.com/schedchat/schedchat/internal/actions"
	"github.com/schedchat/schedchat/internal/auth"
	"github.com/schedchat/schedchat/internal/calendar"
	"github.com/schedchat/schedchat/internal/enrich"
)

// untitledEvent stands in for events whose summary is empty.
const untitledEvent = "Untitled Event"

// CalendarAdapter binds a calendar.Client to the read port the enricher
// consumes and the write port the directive executor consumes.
type CalendarAdapter struct {
	client     *calendar.Client
	calendarID string
	timeZone   string
}

// NewCalendarAdapter wraps a calendar client for one target calendar.
// An empty calendarID targets the primary calendar.
func NewCalendarAdapter(client *calendar.Client, calendarID, timeZone string) *CalendarAdapter {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &CalendarAdapter{
		client:     client,
		calendarID: calendarID,
		timeZone:   timeZone,
	}
}

// UpcomingEvents implements enrich.EventSource.
func (a *CalendarAdapter) UpcomingEvents(ctx context.Context, timeMin, timeMax time.Time, maxResults int64) ([]enrich.Event, error) {
	summaries, err := a.client.ListEvents(ctx, a.calendarID, timeMin, timeMax, maxResults)
	if err != nil {
		return nil, err
	}

	events := make([]enrich.Event, 0, len(summaries))
	for _, s := range summaries {
		title := s.Summary
		if title == "" {
			title = untitledEvent
		}
		events = append(events, enrich.Event{
			ID:      s.ID,
			Summary: title,
			Start:   s.Start,
			End:     s.End,
		})
	}
	return events, nil
}

// CreateEvent implements actions.CalendarService.
func (a *CalendarAdapter) CreateEvent(ctx context.Context, change actions.EventChange) (string, error) {
	created, err := a.client.CreateEvent(ctx, a.calendarID, a.toInput(change))
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// UpdateEvent implements actions.CalendarService.
func (a *CalendarAdapter) UpdateEvent(ctx context.Context, eventID string, change actions.EventChange) error {
	_, err := a.client.UpdateEvent(ctx, a.calendarID, eventID, a.toInput(change))
	return err
}

func (a *CalendarAdapter) toInput(change actions.EventChange) calendar.EventInput {
	return calendar.EventInput{
		Summary:     change.Summary,
		Description: change.Description,
		Location:    change.Location,
		Start:       change.Start,
		End:         change.End,
		TimeZone:    a.timeZone,
		Attendees:   change.Attendees,
	}
}

// NewConversation wires a full pipeline from concrete components: the
// auth state feeds enrichment and gates directive execution, and the
// calendar client serves both the context window and event writes.
// calClient may be nil when no calendar is connected.
func NewConversation(cfg Config, completer Completer, authState *auth.State, calClient *calendar.Client, logger *slog.Logger) (*Pipeline, error) {
	var (
		enricher *enrich.Enricher
		executor *actions.Executor
	)

	if authState != nil {
		var adapter *CalendarAdapter
		if calClient != nil {
			adapter = NewCalendarAdapter(calClient, "", "")
			enricher = enrich.NewEnricher(authState, adapter, logger)
			executor = actions.NewExecutor(adapter, authState, logger)
			executor.SetFieldLimits(cfg.MaxEventTitleLength, cfg.MaxEventDescriptionLength)
		} else {
			enricher = enrich.NewEnricher(authState, nil, logger)
		}
	}

	return NewPipeline(cfg, completer, enricher, executor, logger)
}
