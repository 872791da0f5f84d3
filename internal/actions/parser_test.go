package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreateDirective(t *testing.T) {
	response := `Sure!
[CREATE_EVENT]
Title: Meeting with Dr. Shim
Date: 2025-08-17
Start: 14:00
End: 15:00
Location: Room 4
Attendees: a@example.com, b@example.com
[/CREATE_EVENT]
Anything else?`

	directives := Parse(response)

	require.Len(t, directives, 1)
	assert.Equal(t, KindCreate, directives[0].Kind)
	assert.Equal(t, "Meeting with Dr. Shim", directives[0].Fields.Title)
	assert.Equal(t, "2025-08-17", directives[0].Fields.Date)
	assert.Equal(t, "14:00", directives[0].Fields.StartTime)
	assert.Equal(t, "15:00", directives[0].Fields.EndTime)
	assert.Equal(t, "Room 4", directives[0].Fields.Location)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, directives[0].Fields.Attendees)
}

func TestParseUpdateDirective(t *testing.T) {
	response := "[UPDATE_EVENT:evt123]\nLocation: Cafe Luna\n[/UPDATE_EVENT]"

	directives := Parse(response)

	require.Len(t, directives, 1)
	assert.Equal(t, KindUpdate, directives[0].Kind)
	assert.Equal(t, "evt123", directives[0].EventID)
	assert.Equal(t, "Cafe Luna", directives[0].Fields.Location)
}

func TestParseDocumentOrderAcrossKinds(t *testing.T) {
	response := "[UPDATE_EVENT:first]\nTitle: A\n[/UPDATE_EVENT] then " +
		"[CREATE_EVENT]\nTitle: B\n[/CREATE_EVENT] then " +
		"[UPDATE_EVENT:second]\nTitle: C\n[/UPDATE_EVENT]"

	directives := Parse(response)

	require.Len(t, directives, 3)
	assert.Equal(t, KindUpdate, directives[0].Kind)
	assert.Equal(t, "first", directives[0].EventID)
	assert.Equal(t, KindCreate, directives[1].Kind)
	assert.Equal(t, KindUpdate, directives[2].Kind)
	assert.Equal(t, "second", directives[2].EventID)
}

func TestParseFieldEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Fields
	}{
		{
			name: "keys are case insensitive",
			body: "[CREATE_EVENT]\nTITLE: Standup\ndate: 2025-08-18\n[/CREATE_EVENT]",
			want: Fields{Title: "Standup", Date: "2025-08-18"},
		},
		{
			name: "value keeps colons after the first",
			body: "[CREATE_EVENT]\nStart: 14:00\n[/CREATE_EVENT]",
			want: Fields{StartTime: "14:00"},
		},
		{
			name: "unknown keys and bare lines are dropped",
			body: "[CREATE_EVENT]\nColor: red\nno colon here\nTitle: Lunch\n[/CREATE_EVENT]",
			want: Fields{Title: "Lunch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			directives := Parse(tt.body)
			require.Len(t, directives, 1)
			assert.Equal(t, tt.want, directives[0].Fields)
		})
	}
}

func TestParseNoDirectives(t *testing.T) {
	assert.Empty(t, Parse("Just a plain answer with no calendar actions."))
	// Unterminated spans are not directives.
	assert.Empty(t, Parse("[CREATE_EVENT]\nTitle: Lunch"))
}
