package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/schedchat/schedchat/internal/google"
)

// Client wraps the Google Calendar service
type Client struct {
	svc           *calendar.Service
	account       string // The account this client is associated with
	tokenProvider google.TokenProvider
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccountWithProvider checks if a valid OAuth token exists for the specified account
func HasTokenForAccountWithProvider(account string, provider google.TokenProvider) bool {
	if provider == nil {
		return false
	}
	return provider.HasTokenForAccount(account)
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	provider := google.NewFileTokenProvider()
	return HasTokenForAccountWithProvider(account, provider)
}

// HasToken checks if a valid OAuth token exists for the default account
func HasToken() bool {
	return HasTokenForAccount("default")
}

// NewClientForAccountWithProvider creates a new Calendar client with OAuth2 authentication for a specific account
// The OAuth token is retrieved from the provided token provider
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	conf := google.GetOAuthConfig()
	tokenSource := conf.TokenSource(ctx, token)
	client := oauth2.NewClient(ctx, tokenSource)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	baseTransport := &http.Transport{
		ForceAttemptHTTP2: false,
	}
	transport.Base = baseTransport

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:           svc,
		account:       account,
		tokenProvider: tokenProvider,
	}, nil
}

// NewClientForAccount creates a new Calendar client with OAuth2 authentication for a specific account
// Uses the default file-based token provider
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	provider := google.NewFileTokenProvider()
	return NewClientForAccountWithProvider(ctx, account, provider)
}

// NewClient creates a new Calendar client with OAuth2 authentication for the default account
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// NewClientWithProvider creates a new Calendar client with OAuth2 authentication for the default account
// using the provided token provider
func NewClientWithProvider(ctx context.Context, provider google.TokenProvider) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, "default", provider)
}

// ListEvents lists events in a calendar within a time range, ordered by
// start time. A maxResults of 0 leaves the API default in place.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, maxResults int64) ([]EventSummary, error) {
	call := c.svc.Events.List(calendarID).
		Context(ctx).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var summaries []EventSummary
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}

	return summaries, nil
}

// GetEvent retrieves a specific event by ID
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*EventSummary, error) {
	event, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	summary := toEventSummary(event)
	return &summary, nil
}

// CreateEvent creates a new calendar event
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start:       toEventDateTime(input.Start, input.TimeZone, input.AllDay),
		End:         toEventDateTime(input.End, input.TimeZone, input.AllDay),
	}

	if len(input.Attendees) > 0 {
		var attendees []*calendar.EventAttendee
		for _, email := range input.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{
				Email: email,
			})
		}
		event.Attendees = attendees
	}

	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// UpdateEvent applies the non-empty fields of input to an existing
// calendar event
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, input EventInput) (*EventSummary, error) {
	existing, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get existing event: %w", err)
	}

	if input.Summary != "" {
		existing.Summary = input.Summary
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.Location != "" {
		existing.Location = input.Location
	}
	if !input.Start.IsZero() {
		existing.Start = toEventDateTime(input.Start, input.TimeZone, input.AllDay)
	}
	if !input.End.IsZero() {
		existing.End = toEventDateTime(input.End, input.TimeZone, input.AllDay)
	}
	if len(input.Attendees) > 0 {
		var attendees []*calendar.EventAttendee
		for _, email := range input.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{
				Email: email,
			})
		}
		existing.Attendees = attendees
	}

	updated, err := c.svc.Events.Update(calendarID, eventID, existing).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	summary := toEventSummary(updated)
	return &summary, nil
}

// DeleteEvent deletes a calendar event
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ListCalendars lists all calendars accessible to the user
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	list, err := c.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	var calendars []CalendarInfo
	for _, entry := range list.Items {
		calendars = append(calendars, toCalendarInfo(entry))
	}

	return calendars, nil
}

// GetCalendar retrieves information about a specific calendar
func (c *Client) GetCalendar(ctx context.Context, calendarID string) (*CalendarInfo, error) {
	entry, err := c.svc.CalendarList.Get(calendarID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}

	info := toCalendarInfo(entry)
	return &info, nil
}

// GetPrimaryCalendar retrieves information about the primary calendar
func (c *Client) GetPrimaryCalendar(ctx context.Context) (*CalendarInfo, error) {
	return c.GetCalendar(ctx, "primary")
}

// QueryFreeBusy checks availability for calendars in a time range
func (c *Client) QueryFreeBusy(ctx context.Context, timeMin, timeMax time.Time, calendarIDs []string) ([]FreeBusyInfo, error) {
	items := make([]*calendar.FreeBusyRequestItem, len(calendarIDs))
	for i, id := range calendarIDs {
		items[i] = &calendar.FreeBusyRequestItem{Id: id}
	}

	query := &calendar.FreeBusyRequest{
		TimeMin: timeMin.Format(time.RFC3339),
		TimeMax: timeMax.Format(time.RFC3339),
		Items:   items,
	}

	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	var infos []FreeBusyInfo
	for calID, cal := range result.Calendars {
		info := FreeBusyInfo{
			Calendar: calID,
		}

		for _, busy := range cal.Busy {
			start, _ := time.Parse(time.RFC3339, busy.Start)
			end, _ := time.Parse(time.RFC3339, busy.End)
			info.Busy = append(info.Busy, TimeRange{Start: start, End: end})
		}

		for _, err := range cal.Errors {
			info.Errors = append(info.Errors, err.Reason)
		}

		infos = append(infos, info)
	}

	return infos, nil
}

// FindAvailableSlots finds available time slots for scheduling a meeting
// It checks the availability of all specified attendees and returns slots where everyone is free
func (c *Client) FindAvailableSlots(ctx context.Context, attendees []string, duration time.Duration, timeMin, timeMax time.Time) ([]AvailableSlot, error) {
	freeBusyInfos, err := c.QueryFreeBusy(ctx, timeMin, timeMax, attendees)
	if err != nil {
		return nil, err
	}

	var allBusyTimes []TimeRange
	for _, info := range freeBusyInfos {
		allBusyTimes = append(allBusyTimes, info.Busy...)
	}

	var availableSlots []AvailableSlot

	currentTime := timeMin
	for currentTime.Add(duration).Before(timeMax) || currentTime.Add(duration).Equal(timeMax) {
		slotEnd := currentTime.Add(duration)

		isFree := true
		for _, busy := range allBusyTimes {
			if (currentTime.Before(busy.End) || currentTime.Equal(busy.End)) &&
				(slotEnd.After(busy.Start) || slotEnd.Equal(busy.Start)) {
				isFree = false
				// Skip to the end of this busy period
				if busy.End.After(currentTime) {
					currentTime = busy.End
				}
				break
			}
		}

		if isFree {
			availableSlots = append(availableSlots, AvailableSlot{
				Start:    currentTime,
				End:      slotEnd,
				Duration: duration,
			})
			// Move to next potential slot (15-minute increments)
			currentTime = currentTime.Add(15 * time.Minute)
		}
	}

	return availableSlots, nil
}

// toEventDateTime renders an instant as the API's datetime-or-date
// union. All-day events carry a bare date.
func toEventDateTime(t time.Time, timeZone string, allDay bool) *calendar.EventDateTime {
	if allDay {
		return &calendar.EventDateTime{
			Date: t.Format("2006-01-02"),
		}
	}
	if timeZone == "" {
		timeZone = "UTC"
	}
	return &calendar.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: timeZone,
	}
}
