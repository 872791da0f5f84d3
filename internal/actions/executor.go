package actions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/schedchat/schedchat/internal/logging"
	"github.com/schedchat/schedchat/internal/sanitize"
)

// accessUnavailableNotice replaces a directive span when calendar writes
// are not currently possible.
const accessUnavailableNotice = "⚠️ Calendar access not available. Please ensure you're signed in with Google Calendar access."

// Recorder counts executed directive spans by kind and outcome.
// Implementations must be safe for concurrent use.
type Recorder interface {
	RecordDirective(ctx context.Context, kind, status string)
}

// Executor runs parsed directives against the calendar and splices the
// outcome of each back into the response text.
type Executor struct {
	calendar         CalendarService
	auth             Authorizer
	logger           *slog.Logger
	now              func() time.Time
	recorder         Recorder
	titleLimit       int
	descriptionLimit int
}

// NewExecutor returns an Executor bound to the given calendar and
// authorization ports. Either port may be nil, in which case every
// directive resolves to the access-unavailable notice.
func NewExecutor(calendar CalendarService, auth Authorizer, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		calendar: calendar,
		auth:     auth,
		logger:   logging.WithComponent(logger, "executor"),
		now:      time.Now,
	}
}

// SetRecorder attaches a measurement sink for executed directives. A
// nil recorder disables recording.
func (e *Executor) SetRecorder(r Recorder) {
	e.recorder = r
}

// SetFieldLimits bounds the title and description lengths, in bytes,
// written to the calendar. Non-positive values leave a field unbounded.
func (e *Executor) SetFieldLimits(title, description int) {
	e.titleLimit = title
	e.descriptionLimit = description
}

// Execute finds every directive span in the response, runs them strictly
// left to right, and returns the response with each span replaced by its
// result line. A failed directive does not stop later ones. Responses
// without spans are returned unchanged.
func (e *Executor) Execute(ctx context.Context, response string) string {
	directives := Parse(response)
	if len(directives) == 0 {
		return response
	}

	var out strings.Builder
	cursor := 0
	for _, d := range directives {
		if d.start < cursor {
			// Span overlaps the previous directive, from nested or
			// malformed delimiters. It stays literal text.
			e.logger.Warn("ignoring overlapping directive",
				logging.Directive(string(d.Kind)))
			continue
		}
		out.WriteString(response[cursor:d.start])
		out.WriteString(e.run(ctx, d))
		cursor = d.end
	}
	out.WriteString(response[cursor:])

	return out.String()
}

func (e *Executor) run(ctx context.Context, d Directive) string {
	if e.calendar == nil || e.auth == nil || !e.auth.IsAuthenticated() {
		e.logger.Warn("directive skipped, calendar access unavailable",
			logging.Directive(string(d.Kind)))
		e.record(ctx, d.Kind, logging.StatusError)
		return accessUnavailableNotice
	}

	switch d.Kind {
	case KindCreate:
		return e.create(ctx, d)
	case KindUpdate:
		return e.update(ctx, d)
	default:
		return accessUnavailableNotice
	}
}

func (e *Executor) create(ctx context.Context, d Directive) string {
	change := e.toChange(d.Fields, true)

	eventID, err := e.calendar.CreateEvent(ctx, change)
	if err != nil {
		e.logger.Error("failed to create calendar event",
			logging.Directive(string(KindCreate)),
			logging.Err(err))
		e.record(ctx, KindCreate, logging.StatusError)
		return fmt.Sprintf("❌ Failed to create calendar event: %v", err)
	}

	e.record(ctx, KindCreate, logging.StatusSuccess)
	e.logger.Info("calendar event created",
		logging.Directive(string(KindCreate)),
		slog.String("event_id", eventID))
	return fmt.Sprintf("✅ Successfully created: %q on %s from %s to %s",
		d.Fields.Title, d.Fields.Date, d.Fields.StartTime, d.Fields.EndTime)
}

func (e *Executor) update(ctx context.Context, d Directive) string {
	change := e.toChange(d.Fields, false)

	if err := e.calendar.UpdateEvent(ctx, d.EventID, change); err != nil {
		e.logger.Error("failed to update calendar event",
			logging.Directive(string(KindUpdate)),
			slog.String("event_id", d.EventID),
			logging.Err(err))
		e.record(ctx, KindUpdate, logging.StatusError)
		return fmt.Sprintf("❌ Failed to update calendar event: %v", err)
	}

	e.record(ctx, KindUpdate, logging.StatusSuccess)
	e.logger.Info("calendar event updated",
		logging.Directive(string(KindUpdate)),
		slog.String("event_id", d.EventID))
	return "✅ Successfully updated the event."
}

// toChange composes the directive's date and clock strings into concrete
// instants. For creates, missing or malformed values fall back to the
// current moment so a sloppy directive still produces a well-formed API
// call. For updates, absent times stay zero so existing event times are
// left untouched. Title and description are clipped to the configured
// field limits before they reach the calendar.
func (e *Executor) record(ctx context.Context, kind Kind, status string) {
	if e.recorder != nil {
		e.recorder.RecordDirective(ctx, string(kind), status)
	}
}

func (e *Executor) toChange(f Fields, fallbackToNow bool) EventChange {
	change := EventChange{
		Summary:     sanitize.ClipRunes(f.Title, e.titleLimit),
		Location:    f.Location,
		Description: sanitize.ClipRunes(f.Description, e.descriptionLimit),
		Attendees:   f.Attendees,
	}

	if fallbackToNow {
		change.Start = ComposeDateTime(f.Date, f.StartTime, e.now)
		change.End = ComposeDateTime(f.Date, f.EndTime, e.now)
		return change
	}

	if f.Date != "" && f.StartTime != "" {
		change.Start = ComposeDateTime(f.Date, f.StartTime, e.now)
	}
	if f.Date != "" && f.EndTime != "" {
		change.End = ComposeDateTime(f.Date, f.EndTime, e.now)
	}
	return change
}
