package services

import (
	"time"

	"github.com/huangang/taskflow/backend/pkg/response"
)

const noDate = "No date"

// DateLayout is the wire and message format for task due dates and project
// deadlines.
const DateLayout = "2006-01-02"

// parseDate accepts a calendar date or an RFC 3339 timestamp. Empty input
// means no date.
func parseDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, response.NewBadRequest(field + " must be a date (YYYY-MM-DD)")
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &day, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return noDate
	}
	return t.Format(DateLayout)
}

// sameDate compares calendar days; both nil counts as equal.
func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Format(DateLayout) == b.Format(DateLayout)
}

// dateMovedOrSet is true when next is present and differs from prev.
// Clearing a date is not a schedule change.
func dateMovedOrSet(prev, next *time.Time) bool {
	return next != nil && !sameDate(prev, next)
}
