// ABOUTME: RRULE expansion of repeating schedules into concrete dates
// ABOUTME: Uses rrule-go with the schedule's own date as DTSTART

package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/harper/gachi/internal/timeutil"
	"github.com/teambition/rrule-go"
)

// maxOccurrences caps one rule's expansion inside a single query range.
const maxOccurrences = 366

// ValidateRecurrence checks an RRULE body such as "FREQ=WEEKLY;BYDAY=MO".
// Rules repeating more often than daily are rejected.
func ValidateRecurrence(rule string) error {
	_, err := parseRule(rule)
	return err
}

// occurrences returns the distinct YYYY-MM-DD dates on which a rule starting at
// start fires within [from, to]. Dates are compared as wall-clock dates.
func occurrences(rule, start, from, to string) ([]string, error) {
	r, err := parseRule(rule)
	if err != nil {
		return nil, err
	}

	dtstart, err := timeutil.ParseLocalDate(start, time.UTC)
	if err != nil {
		return nil, err
	}
	lo, err := timeutil.ParseLocalDate(from, time.UTC)
	if err != nil {
		return nil, err
	}
	hi, err := timeutil.ParseLocalDate(to, time.UTC)
	if err != nil {
		return nil, err
	}
	// include every instant of the last day
	hi = hi.AddDate(0, 0, 1).Add(-time.Nanosecond)

	r.DTStart(dtstart)
	times := r.Between(lo, hi, true)

	dates := make([]string, 0, len(times))
	seen := make(map[string]bool, len(times))
	for _, t := range times {
		d := timeutil.ToLocalDateString(t)
		if seen[d] {
			continue
		}
		seen[d] = true
		dates = append(dates, d)
		if len(dates) == maxOccurrences {
			break
		}
	}
	return dates, nil
}

func parseRule(rule string) (*rrule.RRule, error) {
	opt, err := rrule.StrToROption(normalizeRule(rule))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
	}
	// rrule-go orders frequencies YEARLY..SECONDLY
	if opt.Freq > rrule.DAILY {
		return nil, fmt.Errorf("%w: FREQ %v repeats more often than daily", ErrInvalidRecurrence, opt.Freq)
	}
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
	}
	return r, nil
}

func normalizeRule(rule string) string {
	rule = strings.TrimSpace(rule)
	return strings.TrimPrefix(strings.ToUpper(rule), "RRULE:")
}
