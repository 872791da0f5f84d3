package enrich

import (
	"context"
	"time"
)

// AccessState describes whether calendar data could be retrieved for this
// turn. The three states are mutually exclusive; the prompt builder keys
// its calendar phrasing off this value.
type AccessState string

const (
	// AccessConfirmedEvents means the fetch succeeded and returned at
	// least one event.
	AccessConfirmedEvents AccessState = "confirmed-with-events"

	// AccessConfirmedEmpty means the fetch succeeded and the window is
	// clear.
	AccessConfirmedEmpty AccessState = "confirmed-empty"

	// AccessUnavailable means the calendar could not be reached or the
	// user is not signed in.
	AccessUnavailable AccessState = "unavailable"
)

// UnknownUserName is the placeholder profile name the auth layer reports
// before the real profile has loaded. Profiles carrying it are not
// attached to the context.
const UnknownUserName = "Unknown User"

// UserProfile is the signed-in user's identity as reported by the auth
// port.
type UserProfile struct {
	Name    string
	Email   string
	Picture string
}

// Event is the calendar event shape injected into the prompt context.
type Event struct {
	ID      string
	Summary string
	Start   time.Time
	End     time.Time
}

// Context is the transient per-turn snapshot of auth and calendar facts.
// It is rebuilt for every turn and never shared across turns.
type Context struct {
	UserProfile *UserProfile
	CurrentTime time.Time
	TimeZone    string
	Events      []Event
	AccessState AccessState
}

// IsEmpty reports whether the context carries nothing worth rendering.
func (c Context) IsEmpty() bool {
	return c.UserProfile == nil && c.CurrentTime.IsZero() && c.TimeZone == "" && len(c.Events) == 0
}

// AuthProvider is the auth port consumed by the enricher.
type AuthProvider interface {
	IsAuthenticated() bool
	GetUserProfile(ctx context.Context) (*UserProfile, error)
}

// EventSource is the read side of the calendar port consumed by the
// enricher. Implementations return events ordered chronologically by
// start time.
type EventSource interface {
	UpcomingEvents(ctx context.Context, timeMin, timeMax time.Time, maxResults int64) ([]Event, error)
}
