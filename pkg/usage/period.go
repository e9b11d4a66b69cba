package usage

import (
	"fmt"
	"time"
)

// Period is the calendar window a quota is counted over. Windows are
// computed in UTC so every node agrees on the current key.
type Period string

const (
	Monthly Period = "monthly"
	Daily   Period = "daily"
)

// ParsePeriod validates s.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case Monthly, Daily:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

// KeyAt returns the window identifier containing t: YYYY-MM for Monthly,
// YYYY-MM-DD for Daily.
func (p Period) KeyAt(t time.Time) string {
	t = t.UTC()
	if p == Daily {
		return t.Format(time.DateOnly)
	}
	return t.Format("2006-01")
}

// ResetAt returns the start of the window following the one containing t.
func (p Period) ResetAt(t time.Time) time.Time {
	t = t.UTC()
	if p == Daily {
		return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}
