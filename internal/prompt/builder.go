package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/schedchat/schedchat/internal/enrich"
	"github.com/schedchat/schedchat/internal/history"
	"github.com/schedchat/schedchat/internal/llm"
)

// maxContextEvents caps how many upcoming events are listed verbatim in
// the context message. Anything beyond the cap is summarized as a count.
const maxContextEvents = 5

// Date and time layouts used when rendering events and the current
// moment into prose.
const (
	eventDateLayout   = "Monday, January 2"
	eventTimeLayout   = "3:04 PM"
	currentTimeLayout = "1/2/2006, 3:04:05 PM"
)

// Builder assembles completion message sequences. The zero value is not
// usable; construct with NewBuilder.
type Builder struct {
	now func() time.Time
}

// NewBuilder returns a Builder that stamps the system prompt with the
// wall clock.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// Build assembles the full message sequence for one turn: system prompt,
// context message (omitted when the context carries nothing), prior
// turns in chronological order, and finally the current user input.
func (b *Builder) Build(input string, ctx enrich.Context, turns []history.Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns)+3)

	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: b.SystemPrompt(),
	})

	if !ctx.IsEmpty() {
		if contextMessage := FormatContext(ctx); contextMessage != "" {
			messages = append(messages, llm.Message{
				Role:    llm.RoleSystem,
				Content: contextMessage,
			})
		}
	}

	for _, turn := range turns {
		messages = append(messages, llm.Message{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: input,
	})

	return messages
}

// SystemPrompt returns the behavioral instructions for the model,
// including the calendar directive grammar and the current timestamp.
func (b *Builder) SystemPrompt() string {
	now := b.now()
	return `You are a Smart Scheduler AI assistant. You help users manage their Google Calendar.

CRITICAL RULES:
- NEVER claim events are scheduled unless you have actual calendar API confirmation
- NEVER make up meeting details, times, or confirmations
- ONLY reference real calendar events provided in the context
- Use the user's real name and calendar data when available in context

CALENDAR ACCESS DETECTION:
- IF context contains "✅ CALENDAR ACCESS CONFIRMED", you DO have access - use the provided calendar data
- IF context contains "❌ CALENDAR ACCESS NOT AVAILABLE", you do NOT have access - be honest about this
- NEVER contradict yourself - if you have access, confidently use the data; if not, clearly state you don't have access

MEETING CREATION PROCESS:
1. COLLECT MINIMUM REQUIRED INFO: title, date, start time, duration/end time
2. ONCE you have the minimum info, IMMEDIATELY create the calendar event
3. AFTER successful creation, ask follow-up questions for improvements (attendees, location, description, etc.)
4. UPDATE the event with additional details as provided
5. If event creation fails, explain the error and ask for corrections

MANDATORY INFORMATION for scheduling:
- Meeting title/subject (what)
- Date (when - day)
- Start time (when - time)
- Duration OR end time (how long)

OPTIONAL INFORMATION (collect after creation):
- Attendees/participants
- Location (physical or virtual)
- Description/agenda
- Reminders

Guidelines:
- Create events as soon as you have mandatory info - don't wait for optional details
- Ask follow-up questions to enhance already-created events
- Always confirm successful creation before asking for enhancements
- Be helpful but truthful about calendar integration status
- Reference actual upcoming events from context when relevant

CALENDAR ACTIONS AVAILABLE:
To create a calendar event, respond with exactly this format:
[CREATE_EVENT]
Title: [meeting title]
Date: [YYYY-MM-DD]
Start: [HH:MM]
End: [HH:MM]
[/CREATE_EVENT]

To update an event, respond with:
[UPDATE_EVENT:event_id]
[field]: [new value]
[/UPDATE_EVENT]

Example:
[CREATE_EVENT]
Title: Meeting with Dr. Shim
Date: 2025-08-17
Start: 14:00
End: 15:00
[/CREATE_EVENT]

Current: ` + now.Format(currentTimeLayout)
}

// FormatContext renders the enrichment snapshot as a single context
// sentence. Exactly one calendar access phrase is emitted; the three
// access states never mix.
func FormatContext(ctx enrich.Context) string {
	var parts []string

	if ctx.UserProfile != nil {
		name := ctx.UserProfile.Name
		if name == "" {
			name = "Unknown"
		}
		parts = append(parts, "User: "+name)
	}

	if !ctx.CurrentTime.IsZero() {
		parts = append(parts, "Current time: "+ctx.CurrentTime.Format(currentTimeLayout))
	}

	if ctx.TimeZone != "" {
		parts = append(parts, "Time zone: "+ctx.TimeZone)
	}

	switch ctx.AccessState {
	case enrich.AccessConfirmedEvents:
		shown := ctx.Events
		if len(shown) > maxContextEvents {
			shown = shown[:maxContextEvents]
		}
		summaries := make([]string, 0, len(shown))
		for _, event := range shown {
			summaries = append(summaries, fmt.Sprintf("%s on %s at %s",
				event.Summary,
				event.Start.Format(eventDateLayout),
				event.Start.Format(eventTimeLayout)))
		}
		parts = append(parts, fmt.Sprintf("✅ CALENDAR ACCESS CONFIRMED - You have %d upcoming events: %s",
			len(ctx.Events), strings.Join(summaries, "; ")))
		if hidden := len(ctx.Events) - maxContextEvents; hidden > 0 {
			parts = append(parts, fmt.Sprintf("Plus %d more events not shown", hidden))
		}
	case enrich.AccessConfirmedEmpty:
		parts = append(parts, "✅ CALENDAR ACCESS CONFIRMED - Your calendar is clear with no upcoming events")
	default:
		parts = append(parts, "❌ CALENDAR ACCESS NOT AVAILABLE - Cannot access calendar data")
	}

	if len(parts) == 0 {
		return ""
	}
	return "Context: " + strings.Join(parts, ". ") + "."
}
