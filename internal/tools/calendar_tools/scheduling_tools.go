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

// RegisterSchedulingTools registers scheduling and availability tools with the MCP server
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Query free/busy tool
	queryFreeBusyTool := mcp.NewTool("calendar_query_freebusy",
		mcp.WithDescription("Check availability for one or more calendars/attendees in a time range"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start time for the range (RFC3339, 'YYYY-MM-DD HH:MM', or a phrase like 'tomorrow 9am')"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End time for the range (RFC3339, 'YYYY-MM-DD HH:MM', or a phrase like 'next week')"),
		),
		mcp.WithString("calendars",
			mcp.Required(),
			mcp.Description("Comma-separated list of calendar IDs or email addresses to check"),
		),
	)

	s.AddTool(queryFreeBusyTool, common.InstrumentedToolHandlerWithService(
		"calendar_query_freebusy", "calendar", "freebusy", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleQueryFreeBusy(ctx, request, sc)
		}))

	// Find available time tool
	findAvailableTimeTool := mcp.NewTool("calendar_find_available_time",
		mcp.WithDescription("Find available time slots for scheduling a meeting with one or more attendees"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("attendees",
			mcp.Required(),
			mcp.Description("Comma-separated list of attendee email addresses"),
		),
		mcp.WithNumber("durationMinutes",
			mcp.Required(),
			mcp.Description("Meeting duration in minutes"),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start time for search range (RFC3339, 'YYYY-MM-DD HH:MM', or a phrase like 'tomorrow 9am')"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End time for search range (RFC3339, 'YYYY-MM-DD HH:MM', or a phrase like 'tomorrow 5pm')"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of available slots to return (default: 10)"),
		),
	)

	s.AddTool(findAvailableTimeTool, common.InstrumentedToolHandlerWithService(
		"calendar_find_available_time", "calendar", "freebusy", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindAvailableTime(ctx, request, sc)
		}))

	// Conflict check tool
	checkConflictsTool := mcp.NewTool("calendar_check_conflicts",
		mcp.WithDescription("Check whether a proposed time range conflicts with existing events and suggest alternatives"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Proposed start time (RFC3339, 'YYYY-MM-DD HH:MM', or a natural phrase)"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Proposed end time (RFC3339, 'YYYY-MM-DD HH:MM', or a natural phrase)"),
		),
	)

	s.AddTool(checkConflictsTool, common.InstrumentedToolHandlerWithService(
		"calendar_check_conflicts", "calendar", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckConflicts(ctx, request, sc)
		}))

	return nil
}

func handleQueryFreeBusy(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

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

	calendarsStr, ok := args["calendars"].(string)
	if !ok || calendarsStr == "" {
		return mcp.NewToolResultError("calendars is required"), nil
	}
	calendars := parseList(calendarsStr)

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	freeBusyInfos, err := client.QueryFreeBusy(ctx, timeMin, timeMax, calendars)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to query free/busy: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Free/Busy information for %d calendar(s):\n\n", len(freeBusyInfos))
	for _, info := range freeBusyInfos {
		fmt.Fprintf(&b, "Calendar: %s\n", info.Calendar)

		if len(info.Errors) > 0 {
			fmt.Fprintf(&b, "  Errors: %s\n", strings.Join(info.Errors, ", "))
		}

		if len(info.Busy) == 0 {
			b.WriteString("  Status: FREE for entire range\n")
		} else {
			fmt.Fprintf(&b, "  Busy periods: %d\n", len(info.Busy))
			for i, busy := range info.Busy {
				fmt.Fprintf(&b, "  %d. %s to %s\n",
					i+1,
					busy.Start.Format("2006-01-02 15:04"),
					busy.End.Format("2006-01-02 15:04"))
			}
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleFindAvailableTime(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	attendeesStr, ok := args["attendees"].(string)
	if !ok || attendeesStr == "" {
		return mcp.NewToolResultError("attendees is required"), nil
	}
	attendees := parseList(attendeesStr)

	durationMinutes, ok := args["durationMinutes"].(float64)
	if !ok || durationMinutes <= 0 {
		return mcp.NewToolResultError("durationMinutes is required and must be positive"), nil
	}
	duration := time.Duration(durationMinutes) * time.Minute

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

	maxResults := 10
	if maxResultsVal, ok := args["maxResults"].(float64); ok && maxResultsVal > 0 {
		maxResults = int(maxResultsVal)
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slots, err := client.FindAvailableSlots(ctx, attendees, duration, timeMin, timeMax)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to find available time: %v", err)), nil
	}

	if len(slots) == 0 {
		return mcp.NewToolResultText("No available time slots found for the specified criteria"), nil
	}

	if len(slots) > maxResults {
		slots = slots[:maxResults]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d available time slot(s) for %d minute meeting:\n\n",
		len(slots), int(durationMinutes))

	for i, slot := range slots {
		fmt.Fprintf(&b, "%d. %s to %s\n",
			i+1,
			slot.Start.Format("Mon, Jan 2 at 3:04 PM"),
			slot.End.Format("3:04 PM MST"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleCheckConflicts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID := "primary"
	if calIDVal, ok := args["calendarId"].(string); ok && calIDVal != "" {
		calendarID = calIDVal
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

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	conflicts, err := client.CheckConflicts(ctx, calendarID, start, end)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to check conflicts: %v", err)), nil
	}

	if len(conflicts) == 0 {
		return mcp.NewToolResultText("No conflicts found. The proposed time is free."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d conflict(s):\n\n", len(conflicts))
	for i, c := range conflicts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Event.Summary)
		fmt.Fprintf(&b, "   Overlap: %s to %s\n",
			c.OverlapStart.Format(time.RFC3339),
			c.OverlapEnd.Format(time.RFC3339))
	}

	b.WriteString("\nAlternative times:\n")
	for i, alt := range calendar.SuggestAlternativeTimes(start, end) {
		fmt.Fprintf(&b, "%d. %s to %s\n", i+1,
			alt.Start.Format(time.RFC3339),
			alt.End.Format(time.RFC3339))
	}

	return mcp.NewToolResultText(b.String()), nil
}
