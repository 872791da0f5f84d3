package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// EventInput represents the input for creating or updating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string

	// AllDay events carry a date only; Start and End are interpreted at
	// day granularity
	AllDay bool
}

// EventSummary represents a simplified calendar event for listing
type EventSummary struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Creator     string
	Organizer   string
	Status      string
	Attendees   []AttendeeInfo
}

// AttendeeInfo represents information about an event attendee
type AttendeeInfo struct {
	Email          string
	DisplayName    string
	ResponseStatus string // "needsAction", "declined", "tentative", "accepted"
	Optional       bool
	Organizer      bool
}

// CalendarInfo represents information about a calendar
type CalendarInfo struct {
	ID          string
	Summary     string
	Description string
	TimeZone    string
	Primary     bool
	AccessRole  string // "owner", "writer", "reader", "freeBusyReader"
}

// FreeBusyInfo represents availability information for a calendar
type FreeBusyInfo struct {
	Calendar string
	Busy     []TimeRange
	Errors   []string
}

// TimeRange represents a time range
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// AvailableSlot represents an available time slot for scheduling
type AvailableSlot struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// Conflict pairs an existing event with the portion of it that overlaps
// a proposed time range
type Conflict struct {
	Event        EventSummary
	OverlapStart time.Time
	OverlapEnd   time.Time
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Status:      event.Status,
	}

	summary.Start = parseEventTime(event.Start)
	summary.End = parseEventTime(event.End)

	if event.Creator != nil {
		summary.Creator = event.Creator.Email
	}
	if event.Organizer != nil {
		summary.Organizer = event.Organizer.Email
	}

	for _, att := range event.Attendees {
		summary.Attendees = append(summary.Attendees, AttendeeInfo{
			Email:          att.Email,
			DisplayName:    att.DisplayName,
			ResponseStatus: att.ResponseStatus,
			Optional:       att.Optional,
			Organizer:      att.Organizer,
		})
	}

	return summary
}

// parseEventTime resolves the datetime-or-date union the API uses for
// event boundaries. All-day events carry a bare date.
func parseEventTime(edt *calendar.EventDateTime) time.Time {
	if edt == nil {
		return time.Time{}
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// toCalendarInfo converts a Google Calendar list entry to CalendarInfo
func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	if entry == nil {
		return CalendarInfo{}
	}
	return CalendarInfo{
		ID:          entry.Id,
		Summary:     entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		Primary:     entry.Primary,
		AccessRole:  entry.AccessRole,
	}
}
