// ABOUTME: Display locale capability for AM/PM labels, weekday names and titles
// ABOUTME: Injected into callers instead of reading ambient locale state

package locale

import (
	"fmt"
	"strings"
	"time"
)

// Locale holds the labels used when rendering dates and times for people.
type Locale struct {
	Code     string
	AM       string
	PM       string
	Weekdays [7]string // Sunday first
}

var (
	Korean = Locale{
		Code:     "ko",
		AM:       "오전",
		PM:       "오후",
		Weekdays: [7]string{"일", "월", "화", "수", "목", "금", "토"},
	}

	English = Locale{
		Code:     "en",
		AM:       "AM",
		PM:       "PM",
		Weekdays: [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	}
)

// Parse returns the locale for a code, defaulting to Korean.
func Parse(code string) Locale {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "en", "en-us", "en_us", "english":
		return English
	default:
		return Korean
	}
}

// PeriodLabel returns the AM or PM label.
func (l Locale) PeriodLabel(pm bool) string {
	if pm {
		return l.PM
	}
	return l.AM
}

// MonthTitle renders a month header, e.g. "2025년 2월" or "February 2025".
func (l Locale) MonthTitle(year int, month time.Month) string {
	if l.Code == "ko" {
		return fmt.Sprintf("%d년 %d월", year, int(month))
	}
	return fmt.Sprintf("%s %d", month.String(), year)
}

// DayTitle renders a day header, e.g. "2월 3일 월요일" or "Mon, February 3".
func (l Locale) DayTitle(t time.Time) string {
	if l.Code == "ko" {
		return fmt.Sprintf("%d월 %d일 %s요일", int(t.Month()), t.Day(), l.Weekdays[t.Weekday()])
	}
	return fmt.Sprintf("%s, %s %d", l.Weekdays[t.Weekday()], t.Month().String(), t.Day())
}
