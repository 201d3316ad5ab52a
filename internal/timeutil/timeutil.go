// ABOUTME: Clock capability and local wall-clock date helpers
// ABOUTME: Formats YYYY-MM-DD from local fields and computes today/week/month boundaries

package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical storage form of a local date.
const DateLayout = "2006-01-02"

// Clock supplies the current time. Domain code never calls time.Now directly.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Loc (time.Local when nil).
type SystemClock struct {
	Loc *time.Location
}

// Now returns the current time in the clock's location.
func (c SystemClock) Now() time.Time {
	if c.Loc == nil {
		return time.Now()
	}
	return time.Now().In(c.Loc)
}

// FixedClock always returns T. Used by tests and replays.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.T
}

// ResolveLocation loads an IANA zone name; empty means time.Local.
func ResolveLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// ToLocalDateString formats t as YYYY-MM-DD using t's own year, month and day.
// Unlike formatting t.UTC(), this never moves the date across midnight.
func ToLocalDateString(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseLocalDate parses YYYY-MM-DD as midnight in loc.
func ParseLocalDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// Today returns the clock's current local date as YYYY-MM-DD.
func Today(c Clock) string {
	return ToLocalDateString(c.Now())
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfToday returns midnight (00:00:00) of the clock's current day
func StartOfToday(c Clock) time.Time {
	return StartOfDay(c.Now())
}

// StartOfYesterday returns midnight (00:00:00) of yesterday
func StartOfYesterday(c Clock) time.Time {
	return StartOfToday(c).AddDate(0, 0, -1)
}

// StartOfWeek returns midnight of the most recent Sunday
// Note: Week starts on Sunday, matching the calendar grid
func StartOfWeek(c Clock) time.Time {
	today := StartOfToday(c)
	weekday := int(today.Weekday())
	return today.AddDate(0, 0, -weekday)
}

// StartOfMonth returns midnight of the first day of the current month
func StartOfMonth(c Clock) time.Time {
	now := c.Now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// ParseDay resolves "today", "tomorrow", "yesterday" or a YYYY-MM-DD string
// to a canonical local date string.
func ParseDay(c Clock, s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return ToLocalDateString(c.Now()), nil
	case "tomorrow":
		return ToLocalDateString(StartOfToday(c).AddDate(0, 0, 1)), nil
	case "yesterday":
		return ToLocalDateString(StartOfYesterday(c)), nil
	}
	t, err := ParseLocalDate(s, c.Now().Location())
	if err != nil {
		return "", err
	}
	return ToLocalDateString(t), nil
}

// ParsePeriod converts a period string to the start of that period.
// Supported values: "today", "yesterday", "week", "month"
func ParsePeriod(c Clock, period string) (time.Time, bool) {
	switch period {
	case "today":
		return StartOfToday(c), true
	case "yesterday":
		return StartOfYesterday(c), true
	case "week":
		return StartOfWeek(c), true
	case "month":
		return StartOfMonth(c), true
	default:
		return time.Time{}, false
	}
}
