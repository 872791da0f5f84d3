// Package calendar provides Google Calendar access for the scheduling
// assistant.
//
// The Client wraps the Google Calendar API with OAuth2 authentication and
// exposes the event operations the assistant needs: listing upcoming
// events for prompt context, creating and updating events requested in
// conversation, deleting events, free/busy queries, and conflict
// detection with alternative-time suggestions.
//
// Tokens are resolved through a google.TokenProvider, so the same client
// code serves both the file-token CLI path and the OAuth-proxied MCP
// server path.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := calendar.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	events, err := client.ListEvents(ctx, "primary", time.Now(), time.Now().AddDate(0, 0, 7), 10)
//	if err != nil {
//	    log.Fatal(err)
//	}
package calendar
