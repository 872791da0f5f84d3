package actions

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultEventDuration is assumed when a requested event has a start but
// no end.
const DefaultEventDuration = 60 * time.Minute

var (
	clockPattern    = regexp.MustCompile(`(\d{1,2}):?(\d{0,2})\s*(am|pm)?`)
	meridiemPattern = regexp.MustCompile(`\d{1,2}\s*(am|pm)`)
)

// ComposeDateTime joins a YYYY-MM-DD date and an HH:MM clock into a
// local-time instant. When either part is missing or unparseable the
// current moment is returned instead.
func ComposeDateTime(date, clock string, now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	if date == "" || clock == "" {
		return now()
	}
	t, err := time.ParseInLocation("2006-01-02T15:04", date+"T"+clock, time.Local)
	if err != nil {
		return now()
	}
	return t
}

// ParseNaturalTime resolves a small vocabulary of relative phrases
// ("tomorrow at 3pm", "next week", "today 14:00") against a reference
// moment. Strings outside the vocabulary are tried as RFC 3339.
func ParseNaturalTime(input string, now time.Time) (time.Time, error) {
	lower := strings.ToLower(strings.TrimSpace(input))

	switch {
	case strings.Contains(lower, "tomorrow"):
		return applyClock(lower, now.AddDate(0, 0, 1)), nil
	case strings.Contains(lower, "next week"):
		return applyClock(lower, now.AddDate(0, 0, 7)), nil
	case strings.Contains(lower, "today"), meridiemPattern.MatchString(lower):
		return applyClock(lower, now), nil
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", input, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", input, now.Location()); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("could not parse time string %q", input)
}

// applyClock extracts an HH:MM or 3pm style clock from the phrase and
// applies it to the base day. Phrases without a clock keep the base
// moment's clock.
func applyClock(phrase string, base time.Time) time.Time {
	m := clockPattern.FindStringSubmatch(phrase)
	if m == nil {
		return base
	}

	hours, _ := strconv.Atoi(m[1])
	minutes := 0
	if m[2] != "" {
		minutes, _ = strconv.Atoi(m[2])
	}

	switch m[3] {
	case "pm":
		if hours != 12 {
			hours += 12
		}
	case "am":
		if hours == 12 {
			hours = 0
		}
	}

	return time.Date(base.Year(), base.Month(), base.Day(), hours, minutes, 0, 0, base.Location())
}
