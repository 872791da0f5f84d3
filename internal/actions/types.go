package actions

import (
	"context"
	"time"
)

// Kind discriminates the directive forms the model can emit.
type Kind string

const (
	KindCreate Kind = "create_event"
	KindUpdate Kind = "update_event"
)

// Fields holds the key/value body of a directive span. All values are
// kept verbatim as the model wrote them; keys the parser does not
// recognize are dropped.
type Fields struct {
	Title       string
	Date        string // YYYY-MM-DD
	StartTime   string // HH:MM
	EndTime     string // HH:MM
	Location    string
	Description string
	Attendees   []string
}

// Directive is one parsed span, positioned by its byte offsets in the
// original response so the executor can splice results back in place.
type Directive struct {
	Kind    Kind
	EventID string // update directives only
	Fields  Fields
	start   int
	end     int
}

// EventChange is the calendar-facing shape of a directive after its
// date and time strings have been composed into concrete instants.
type EventChange struct {
	Summary     string
	Start       time.Time
	End         time.Time
	Location    string
	Description string
	Attendees   []string
}

// CalendarService is the write side of the calendar port consumed by the
// executor.
type CalendarService interface {
	CreateEvent(ctx context.Context, change EventChange) (string, error)
	UpdateEvent(ctx context.Context, eventID string, change EventChange) error
}

// Authorizer reports whether calendar writes are currently permitted.
type Authorizer interface {
	IsAuthenticated() bool
}
