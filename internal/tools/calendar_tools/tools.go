package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedchat/schedchat/internal/actions"
	"github.com/schedchat/schedchat/internal/calendar"
	"github.com/schedchat/schedchat/internal/server"
)

// getCalendarClient retrieves or creates a calendar client for the specified account
func getCalendarClient(ctx context.Context, account string, sc *server.ServerContext) (*calendar.Client, error) {
	client := sc.CalendarClientForAccount(account)
	if client == nil {
		return nil, fmt.Errorf(`Google OAuth token not found for account %q. To authorize access:

1. Call the google_get_auth_url tool with account=%q and visit the URL in your browser
2. Sign in with your Google account and grant Calendar access
3. Copy the authorization code
4. Call the google_save_auth_code tool with the code and account=%q

You only need to authorize once. Tokens are refreshed automatically.`, account, account, account)
	}
	return client, nil
}

// parseTimeArg accepts RFC3339, "YYYY-MM-DD HH:MM", a bare date, or a
// natural phrase like "tomorrow 3pm".
func parseTimeArg(value string) (time.Time, error) {
	return actions.ParseNaturalTime(value, time.Now())
}

// parseList splits a comma-separated argument into trimmed entries.
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// RegisterCalendarTools registers all Calendar-related tools with the MCP server.
// When readOnly is true, tools that modify events are not registered.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterEventTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	if err := RegisterCalendarListTools(s, sc); err != nil {
		return fmt.Errorf("failed to register calendar list tools: %w", err)
	}

	if err := RegisterSchedulingTools(s, sc); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}

	return nil
}
