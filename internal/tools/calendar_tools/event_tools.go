package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedchat/schedchat/internal/calendar"
	"github.com/schedchat/schedchat/internal/server"
	"github.com/schedchat/schedchat/internal/tools/common"
)

// RegisterEventTools registers event-related tools with the MCP server
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List events tool (read-only, always available)
	listEventsTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List calendar events within a time range"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start time for the range (RFC3339, 'YYYY-MM-DD HH:MM', or a phrase like 'tomorrow 9am')"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End time for the range (RFC3339, 'YYYY-MM-DD HH:MM', or a phrase like 'next week')"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of events to return (default: 50)"),
		),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandlerWithService(
		"calendar_list_events", "calendar", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	// Get event tool
	getEventTool := mcp.NewTool("calendar_get_event",
		mcp.WithDescription("Get details of a specific calendar event"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to retrieve"),
		),
	)

	s.AddTool(getEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_get_event", "calendar", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEvent(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	// Create event tool
	createEventTool := mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create a new calendar event"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title/summary"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time (RFC3339, 'YYYY-MM-DD HH:MM', or a phrase like 'tomorrow 2pm')"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End time (RFC3339, 'YYYY-MM-DD HH:MM', or a phrase like 'tomorrow 3pm')"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone (e.g., 'America/New_York'). Defaults to UTC."),
		),
		mcp.WithString("attendees",
			mcp.Description("Comma-separated list of attendee email addresses"),
		),
		mcp.WithBoolean("allDay",
			mcp.Description("Create as all-day event (ignores time portion of start/end)"),
		),
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_create_event", "calendar", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	// Update event tool
	updateEventTool := mcp.NewTool("calendar_update_event",
		mcp.WithDescription("Update an existing calendar event"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to update"),
		),
		mcp.WithString("summary",
			mcp.Description("New event title/summary"),
		),
		mcp.WithString("description",
			mcp.Description("New event description"),
		),
		mcp.WithString("location",
			mcp.Description("New event location"),
		),
		mcp.WithString("start",
			mcp.Description("New start time (RFC3339, 'YYYY-MM-DD HH:MM', or a natural phrase)"),
		),
		mcp.WithString("end",
			mcp.Description("New end time (RFC3339, 'YYYY-MM-DD HH:MM', or a natural phrase)"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone (e.g., 'America/New_York')"),
		),
		mcp.WithString("attendees",
			mcp.Description("New comma-separated list of attendee email addresses"),
		),
		mcp.WithBoolean("allDay",
			mcp.Description("Update to be an all-day event (ignores time portion of start/end)"),
		),
	)

	s.AddTool(updateEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_update_event", "calendar", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateEvent(ctx, request, sc)
		}))

	// Delete event tool
	deleteEventTool := mcp.NewTool("calendar_delete_event",
		mcp.WithDescription("Delete a calendar event"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to delete"),
		),
	)

	s.AddTool(deleteEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_delete_event", "calendar", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEvent(ctx, request, sc)
		}))

	return nil
}

const defaultListMaxResults = 50

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID := "primary"
	if calIDVal, ok := args["calendarId"].(string); ok && calIDVal != "" {
		calendarID = calIDVal
	}

	timeMinStr, ok := args["timeMin"].(string)
	if !ok || timeMinStr == "" {
		return mcp.NewToolResultError("timeMin is required"), nil
	}
	timeMin, err := parseTimeArg(timeMinStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid timeMin format: %v", err)), nil
	}

	timeMaxStr, ok := args["timeMax"].(string)
	if !ok || timeMaxStr == "" {
		return mcp.NewToolResultError("timeMax is required"), nil
	}
	timeMax, err := parseTimeArg(timeMaxStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid timeMax format: %v", err)), nil
	}

	maxResults := int64(defaultListMaxResults)
	if maxVal, ok := args["maxResults"].(float64); ok && maxVal > 0 {
		maxResults = int64(maxVal)
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	events, err := client.ListEvents(ctx, calendarID, timeMin, timeMax, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d events:\n\n", len(events))
	for i, event := range events {
		fmt.Fprintf(&b, "%d. %s\n", i+1, event.Summary)
		fmt.Fprintf(&b, "   ID: %s\n", event.ID)
		fmt.Fprintf(&b, "   Start: %s\n", event.Start.Format(time.RFC3339))
		fmt.Fprintf(&b, "   End: %s\n", event.End.Format(time.RFC3339))
		if event.Location != "" {
			fmt.Fprintf(&b, "   Location: %s\n", event.Location)
		}
		if len(event.Attendees) > 0 {
			fmt.Fprintf(&b, "   Attendees: %d\n", len(event.Attendees))
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleGetEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID := "primary"
	if calIDVal, ok := args["calendarId"].(string); ok && calIDVal != "" {
		calendarID = calIDVal
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.GetEvent(ctx, calendarID, eventID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get event: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s\n", event.Summary)
	fmt.Fprintf(&b, "ID: %s\n", event.ID)
	fmt.Fprintf(&b, "Start: %s\n", event.Start.Format(time.RFC3339))
	fmt.Fprintf(&b, "End: %s\n", event.End.Format(time.RFC3339))
	fmt.Fprintf(&b, "Status: %s\n", event.Status)
	if event.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", event.Description)
	}
	if event.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", event.Location)
	}
	if event.Creator != "" {
		fmt.Fprintf(&b, "Creator: %s\n", event.Creator)
	}
	if event.Organizer != "" {
		fmt.Fprintf(&b, "Organizer: %s\n", event.Organizer)
	}

	if len(event.Attendees) > 0 {
		fmt.Fprintf(&b, "\nAttendees (%d):\n", len(event.Attendees))
		for _, att := range event.Attendees {
			fmt.Fprintf(&b, "  - %s (%s)", att.Email, att.ResponseStatus)
			if att.DisplayName != "" {
				fmt.Fprintf(&b, " - %s", att.DisplayName)
			}
			if att.Optional {
				b.WriteString(" [optional]")
			}
			b.WriteString("\n")
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID := "primary"
	if calIDVal, ok := args["calendarId"].(string); ok && calIDVal != "" {
		calendarID = calIDVal
	}

	summary, ok := args["summary"].(string)
	if !ok || summary == "" {
		return mcp.NewToolResultError("summary is required"), nil
	}

	startStr, ok := args["start"].(string)
	if !ok || startStr == "" {
		return mcp.NewToolResultError("start is required"), nil
	}
	start, err := parseTimeArg(startStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid start format: %v", err)), nil
	}

	endStr, ok := args["end"].(string)
	if !ok || endStr == "" {
		return mcp.NewToolResultError("end is required"), nil
	}
	end, err := parseTimeArg(endStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid end format: %v", err)), nil
	}

	input := calendar.EventInput{
		Summary: summary,
		Start:   start,
		End:     end,
	}

	if desc, ok := args["description"].(string); ok {
		input.Description = desc
	}
	if loc, ok := args["location"].(string); ok {
		input.Location = loc
	}
	if tz, ok := args["timeZone"].(string); ok {
		input.TimeZone = tz
	}
	if attendeesStr, ok := args["attendees"].(string); ok && attendeesStr != "" {
		input.Attendees = parseList(attendeesStr)
	}
	if allDay, ok := args["allDay"].(bool); ok {
		input.AllDay = allDay
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.CreateEvent(ctx, calendarID, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully created event: %s\n", event.Summary)
	fmt.Fprintf(&b, "ID: %s\n", event.ID)
	fmt.Fprintf(&b, "Start: %s\n", event.Start.Format(time.RFC3339))
	fmt.Fprintf(&b, "End: %s\n", event.End.Format(time.RFC3339))

	return mcp.NewToolResultText(b.String()), nil
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID := "primary"
	if calIDVal, ok := args["calendarId"].(string); ok && calIDVal != "" {
		calendarID = calIDVal
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	input := calendar.EventInput{}

	if summary, ok := args["summary"].(string); ok {
		input.Summary = summary
	}
	if desc, ok := args["description"].(string); ok {
		input.Description = desc
	}
	if loc, ok := args["location"].(string); ok {
		input.Location = loc
	}
	if tz, ok := args["timeZone"].(string); ok {
		input.TimeZone = tz
	}

	if startStr, ok := args["start"].(string); ok && startStr != "" {
		start, err := parseTimeArg(startStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid start format: %v", err)), nil
		}
		input.Start = start
	}

	if endStr, ok := args["end"].(string); ok && endStr != "" {
		end, err := parseTimeArg(endStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid end format: %v", err)), nil
		}
		input.End = end
	}

	if attendeesStr, ok := args["attendees"].(string); ok && attendeesStr != "" {
		input.Attendees = parseList(attendeesStr)
	}
	if allDay, ok := args["allDay"].(bool); ok {
		input.AllDay = allDay
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.UpdateEvent(ctx, calendarID, eventID, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update event: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully updated event: %s\n", event.Summary)
	fmt.Fprintf(&b, "ID: %s\n", event.ID)
	fmt.Fprintf(&b, "Start: %s\n", event.Start.Format(time.RFC3339))
	fmt.Fprintf(&b, "End: %s\n", event.End.Format(time.RFC3339))

	return mcp.NewToolResultText(b.String()), nil
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID := "primary"
	if calIDVal, ok := args["calendarId"].(string); ok && calIDVal != "" {
		calendarID = calIDVal
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteEvent(ctx, calendarID, eventID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete event: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Successfully deleted event %s", eventID)), nil
}
