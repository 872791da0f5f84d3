package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedchat/schedchat/internal/enrich"
	"github.com/schedchat/schedchat/internal/history"
	"github.com/schedchat/schedchat/internal/llm"
)

func testBuilder() *Builder {
	return &Builder{now: func() time.Time {
		return time.Date(2025, 8, 17, 9, 30, 0, 0, time.UTC)
	}}
}

func confirmedContext(events []enrich.Event) enrich.Context {
	state := enrich.AccessConfirmedEmpty
	if len(events) > 0 {
		state = enrich.AccessConfirmedEvents
	}
	return enrich.Context{
		UserProfile: &enrich.UserProfile{Name: "Jane Doe", Email: "jane@example.com"},
		CurrentTime: time.Date(2025, 8, 17, 9, 30, 0, 0, time.UTC),
		TimeZone:    "America/New_York",
		Events:      events,
		AccessState: state,
	}
}

func TestBuildMessageOrder(t *testing.T) {
	b := testBuilder()
	turns := []history.Turn{
		{Role: history.RoleUser, Content: "hi"},
		{Role: history.RoleAssistant, Content: "Hello! How can I help?"},
	}

	messages := b.Build("schedule lunch tomorrow", confirmedContext(nil), turns)

	require.Len(t, messages, 5)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "Smart Scheduler AI assistant")
	assert.Equal(t, llm.RoleSystem, messages[1].Role)
	assert.True(t, strings.HasPrefix(messages[1].Content, "Context: "))
	assert.Equal(t, llm.RoleUser, messages[2].Role)
	assert.Equal(t, "hi", messages[2].Content)
	assert.Equal(t, llm.RoleAssistant, messages[3].Role)
	assert.Equal(t, llm.RoleUser, messages[4].Role)
	assert.Equal(t, "schedule lunch tomorrow", messages[4].Content)
}

func TestBuildOmitsContextWhenEmpty(t *testing.T) {
	b := testBuilder()

	messages := b.Build("hello", enrich.Context{}, nil)

	require.Len(t, messages, 2)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, llm.RoleUser, messages[1].Role)
}

func TestSystemPromptCarriesGrammarAndClock(t *testing.T) {
	p := testBuilder().SystemPrompt()

	assert.Contains(t, p, "[CREATE_EVENT]")
	assert.Contains(t, p, "[/CREATE_EVENT]")
	assert.Contains(t, p, "[UPDATE_EVENT:event_id]")
	assert.Contains(t, p, "NEVER claim events are scheduled")
	assert.Contains(t, p, "Current: 8/17/2025, 9:30:00 AM")
}

func TestFormatContextWithEvents(t *testing.T) {
	events := []enrich.Event{
		{Summary: "Standup", Start: time.Date(2025, 8, 18, 9, 0, 0, 0, time.UTC)},
		{Summary: "Dentist", Start: time.Date(2025, 8, 19, 14, 30, 0, 0, time.UTC)},
	}

	got := FormatContext(confirmedContext(events))

	assert.Contains(t, got, "User: Jane Doe")
	assert.Contains(t, got, "Time zone: America/New_York")
	assert.Contains(t, got, "✅ CALENDAR ACCESS CONFIRMED - You have 2 upcoming events: ")
	assert.Contains(t, got, "Standup on Monday, August 18 at 9:00 AM")
	assert.Contains(t, got, "Dentist on Tuesday, August 19 at 2:30 PM")
	assert.True(t, strings.HasSuffix(got, "."))
}

func TestFormatContextCapsListedEvents(t *testing.T) {
	events := make([]enrich.Event, 8)
	for i := range events {
		events[i] = enrich.Event{
			Summary: "Meeting",
			Start:   time.Date(2025, 8, 18+i, 10, 0, 0, 0, time.UTC),
		}
	}

	got := FormatContext(confirmedContext(events))

	assert.Contains(t, got, "You have 8 upcoming events")
	assert.Equal(t, 5, strings.Count(got, "Meeting on"))
	assert.Contains(t, got, "Plus 3 more events not shown")
}

func TestFormatContextAccessStatesAreExclusive(t *testing.T) {
	tests := []struct {
		name    string
		ctx     enrich.Context
		want    string
		exclude []string
	}{
		{
			name: "confirmed with events",
			ctx: confirmedContext([]enrich.Event{
				{Summary: "Standup", Start: time.Date(2025, 8, 18, 9, 0, 0, 0, time.UTC)},
			}),
			want:    "You have 1 upcoming events",
			exclude: []string{"calendar is clear", "NOT AVAILABLE"},
		},
		{
			name:    "confirmed empty",
			ctx:     confirmedContext(nil),
			want:    "✅ CALENDAR ACCESS CONFIRMED - Your calendar is clear with no upcoming events",
			exclude: []string{"upcoming events:", "NOT AVAILABLE"},
		},
		{
			name: "unavailable",
			ctx: enrich.Context{
				CurrentTime: time.Date(2025, 8, 17, 9, 30, 0, 0, time.UTC),
				AccessState: enrich.AccessUnavailable,
			},
			want:    "❌ CALENDAR ACCESS NOT AVAILABLE - Cannot access calendar data",
			exclude: []string{"ACCESS CONFIRMED"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatContext(tt.ctx)
			assert.Contains(t, got, tt.want)
			for _, absent := range tt.exclude {
				assert.NotContains(t, got, absent)
			}
		})
	}
}

func TestFormatContextUnknownUserNameFallback(t *testing.T) {
	ctx := enrich.Context{
		UserProfile: &enrich.UserProfile{Email: "jane@example.com"},
		AccessState: enrich.AccessUnavailable,
	}

	got := FormatContext(ctx)

	assert.Contains(t, got, "User: Unknown")
}
