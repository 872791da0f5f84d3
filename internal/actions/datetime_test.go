package actions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeDateTime(t *testing.T) {
	fixed := time.Date(2025, 8, 17, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return fixed }

	t.Run("well formed", func(t *testing.T) {
		got := ComposeDateTime("2025-08-18", "14:30", now)
		assert.Equal(t, time.Date(2025, 8, 18, 14, 30, 0, 0, time.Local), got)
	})

	t.Run("missing parts fall back to now", func(t *testing.T) {
		assert.Equal(t, fixed, ComposeDateTime("", "14:30", now))
		assert.Equal(t, fixed, ComposeDateTime("2025-08-18", "", now))
	})

	t.Run("malformed falls back to now", func(t *testing.T) {
		assert.Equal(t, fixed, ComposeDateTime("next tuesday", "noonish", now))
	})
}

func TestParseNaturalTime(t *testing.T) {
	// A Sunday morning.
	now := time.Date(2025, 8, 17, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"tomorrow at 3pm", time.Date(2025, 8, 18, 15, 0, 0, 0, time.UTC)},
		{"tomorrow at 12pm", time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)},
		{"tomorrow at 12am", time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)},
		{"next week at 10:30am", time.Date(2025, 8, 24, 10, 30, 0, 0, time.UTC)},
		{"today at 14:00", time.Date(2025, 8, 17, 14, 0, 0, 0, time.UTC)},
		{"5pm", time.Date(2025, 8, 17, 17, 0, 0, 0, time.UTC)},
		{"2025-09-01 16:00", time.Date(2025, 9, 1, 16, 0, 0, 0, time.UTC)},
		{"2025-09-01", time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNaturalTime(tt.input, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNaturalTimeRejectsGibberish(t *testing.T) {
	_, err := ParseNaturalTime("whenever works", time.Now())
	assert.Error(t, err)
}
