package core

import (
	"errors"
	"time"
)

// Period is a named, fixed time-range selector resolved against "now".
type Period string

const (
	PeriodLast7Days    Period = "last_7_days"
	PeriodCurrentMonth Period = "current_month"
	PeriodCurrentYear  Period = "current_year"
	PeriodAll          Period = "all"
)

// allEpoch is the lower bound used by PeriodAll. Nothing in the store can
// predate it for this application.
var allEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

var ErrUnknownPeriod = errors.New("unknown period")

// Valid reports whether p is one of the known period keys.
func (p Period) Valid() bool {
	switch p {
	case PeriodLast7Days, PeriodCurrentMonth, PeriodCurrentYear, PeriodAll:
		return true
	}
	return false
}

// Range resolves the period to a concrete [from, to] pair. to is always
// now; from depends on the key. Unknown keys fall back to PeriodAll.
func (p Period) Range(now time.Time) (from, to time.Time) {
	now = now.UTC()
	switch p {
	case PeriodLast7Days:
		return now.AddDate(0, 0, -7), now
	case PeriodCurrentMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), now
	case PeriodCurrentYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), now
	default:
		return allEpoch, now
	}
}

// DaysIn returns the number of whole or partial days covered by [from, to],
// never less than 1. Used for average-per-day figures.
func DaysIn(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 1
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}
