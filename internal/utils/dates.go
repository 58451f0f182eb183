package utils

import (
	"fmt"
	"time"
)

// ParseDueDate parses a due date string as a calendar date at midnight in
// the local timezone. Parsing at UTC midnight would shift the date by a day
// for users west of UTC, so full timestamps are also reduced to their local
// calendar date.
func ParseDueDate(raw string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q", raw)
	}

	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local), nil
}
