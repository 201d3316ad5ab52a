// ABOUTME: Conversion between stored 24-hour HH:MM strings and 12-hour segments
// ABOUTME: Decode, Encode and FormatDisplay share one 24h to 12h mapping

package timeofday

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/harper/gachi/internal/locale"
)

// ErrInvalidTime is returned when a value is not a valid HH:MM time.
var ErrInvalidTime = errors.New("invalid time")

// Period is the AM/PM half of a 12-hour time.
type Period int

const (
	PeriodUnset Period = iota
	AM
	PM
)

// String returns "AM", "PM" or "".
func (p Period) String() string {
	switch p {
	case AM:
		return "AM"
	case PM:
		return "PM"
	default:
		return ""
	}
}

// ParsePeriod accepts AM/PM in either locale's labels.
func ParsePeriod(s string) (Period, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AM", locale.Korean.AM:
		return AM, true
	case "PM", locale.Korean.PM:
		return PM, true
	default:
		return PeriodUnset, false
	}
}

// Segments is the three-selector form of a time. Hour 0 and Minute "" mean unset.
type Segments struct {
	Period Period
	Hour   int    // 1..12
	Minute string // two digits
}

// Count returns how many of the three segments are set.
func (s Segments) Count() int {
	n := 0
	if s.Period != PeriodUnset {
		n++
	}
	if s.Hour != 0 {
		n++
	}
	if s.Minute != "" {
		n++
	}
	return n
}

// Encode converts the segments to HH:MM. See Encode.
func (s Segments) Encode() (string, bool) {
	return Encode(s.Period, s.Hour, s.Minute)
}

// Parse reads a stored time. Seconds ("14:30:00") are ignored.
func Parse(hhmm string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(hhmm), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	if !isDigits(parts[0], 1, 2) || !isDigits(parts[1], 2, 2) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	hour, _ = strconv.Atoi(parts[0])
	minute, _ = strconv.Atoi(parts[1])
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q out of range", ErrInvalidTime, hhmm)
	}
	return hour, minute, nil
}

// Normalize validates hhmm and returns it in canonical zero-padded HH:MM form.
// Empty input stays empty.
func Normalize(hhmm string) (string, error) {
	if strings.TrimSpace(hhmm) == "" {
		return "", nil
	}
	h, m, err := Parse(hhmm)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// Decode splits a stored HH:MM into segments. Empty or unparsable input
// yields all segments unset. The minute is passed through as stored.
func Decode(hhmm string) Segments {
	h, m, err := Parse(hhmm)
	if err != nil {
		return Segments{}
	}
	return Segments{
		Period: periodFor(h),
		Hour:   to12(h),
		Minute: fmt.Sprintf("%02d", m),
	}
}

// Encode joins segments into a 24-hour HH:MM. It reports false until all three
// segments are present and valid.
func Encode(period Period, hour int, minute string) (string, bool) {
	if period == PeriodUnset || hour == 0 || minute == "" {
		return "", false
	}
	if hour < 1 || hour > 12 {
		return "", false
	}
	if !validMinute(minute) {
		return "", false
	}

	h := hour
	switch period {
	case AM:
		if h == 12 {
			h = 0
		}
	case PM:
		if h != 12 {
			h += 12
		}
	}
	return fmt.Sprintf("%02d:%s", h, minute), true
}

// FormatDisplay renders a stored time as "<period> <h>:<MM>", e.g. "오전 10:30".
func FormatDisplay(hhmm string, loc locale.Locale) string {
	h, m, err := Parse(hhmm)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s %d:%02d", loc.PeriodLabel(h >= 12), to12(h), m)
}

// Label renders a Period in the given locale.
func (p Period) Label(loc locale.Locale) string {
	switch p {
	case AM:
		return loc.PeriodLabel(false)
	case PM:
		return loc.PeriodLabel(true)
	default:
		return ""
	}
}

func periodFor(h int) Period {
	if h < 12 {
		return AM
	}
	return PM
}

func to12(h int) int {
	h %= 12
	if h == 0 {
		return 12
	}
	return h
}

// validMinute reports whether s is exactly two ASCII digits from 00 to 59.
func validMinute(s string) bool {
	return isDigits(s, 2, 2) && s[0] <= '5'
}

// isDigits reports whether s is between min and max ASCII digits, with no sign.
func isDigits(s string, min, max int) bool {
	if len(s) < min || len(s) > max {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
