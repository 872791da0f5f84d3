package calendar

import (
	"context"
	"fmt"
	"time"
)

// CheckConflicts returns the existing events on a calendar that overlap
// the proposed time range, together with the overlapping portion of
// each.
func (c *Client) CheckConflicts(ctx context.Context, calendarID string, start, end time.Time) ([]Conflict, error) {
	events, err := c.ListEvents(ctx, calendarID, start, end, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check conflicts: %w", err)
	}

	var conflicts []Conflict
	for _, event := range events {
		if start.Before(event.End) && end.After(event.Start) {
			conflicts = append(conflicts, Conflict{
				Event:        event,
				OverlapStart: laterOf(start, event.Start),
				OverlapEnd:   earlierOf(end, event.End),
			})
		}
	}

	return conflicts, nil
}

// SuggestAlternativeTimes proposes replacement slots for a conflicted
// time range, preserving its duration: 30 minutes later and one hour
// later.
func SuggestAlternativeTimes(start, end time.Time) []TimeRange {
	duration := end.Sub(start)
	return []TimeRange{
		{Start: start.Add(30 * time.Minute), End: start.Add(30 * time.Minute).Add(duration)},
		{Start: start.Add(time.Hour), End: start.Add(time.Hour).Add(duration)},
	}
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
