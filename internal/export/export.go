// ABOUTME: Writes schedules out as iCalendar or YAML
// ABOUTME: Timed schedules last one hour; untimed ones are all-day events

package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/harper/gachi/internal/models"
	"github.com/harper/gachi/internal/timeofday"
	"github.com/harper/gachi/internal/timeutil"
	"gopkg.in/yaml.v3"
)

// ProductID identifies gachi in exported calendars.
const ProductID = "-//gachi//schedules//KO"

// Formats lists the supported export formats.
var Formats = []string{"ics", "yaml"}

// timedDuration is the length given to schedules with a start time.
const timedDuration = time.Hour

// Write exports schedules in format ("ics" or "yaml").
func Write(w io.Writer, format string, schedules []*models.Schedule, loc *time.Location, now time.Time) error {
	switch strings.ToLower(format) {
	case "ics", "ical":
		return ICS(w, schedules, loc, now)
	case "yaml", "yml":
		return YAML(w, schedules)
	default:
		return fmt.Errorf("unknown export format %q (want ics or yaml)", format)
	}
}

// ICS writes a VCALENDAR with one VEVENT per schedule. Times are
// interpreted in loc.
func ICS(w io.Writer, schedules []*models.Schedule, loc *time.Location, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)

	for _, s := range schedules {
		day, err := timeutil.ParseLocalDate(s.Date, loc)
		if err != nil {
			return fmt.Errorf("schedule %s: %w", s.ID, err)
		}

		ev := cal.AddEvent(s.ID + "@gachi")
		ev.SetDtStampTime(now.UTC())
		ev.SetCreatedTime(s.CreatedAt.UTC())
		ev.SetModifiedAt(s.UpdatedAt.UTC())
		ev.SetSummary(s.Title)
		if d := s.DescriptionOrEmpty(); d != "" {
			ev.SetDescription(d)
		}

		if hhmm := s.TimeOrEmpty(); hhmm != "" {
			h, m, err := timeofday.Parse(hhmm)
			if err != nil {
				return fmt.Errorf("schedule %s: %w", s.ID, err)
			}
			start := day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
			ev.SetStartAt(start)
			ev.SetEndAt(start.Add(timedDuration))
		} else {
			ev.SetAllDayStartAt(day)
			ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}

		if s.Recurrence != nil && *s.Recurrence != "" {
			ev.AddRrule(strings.TrimPrefix(strings.ToUpper(*s.Recurrence), "RRULE:"))
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

type yamlDoc struct {
	Schedules []*models.Schedule `yaml:"schedules"`
}

// YAML writes the schedules as a single document.
func YAML(w io.Writer, schedules []*models.Schedule) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlDoc{Schedules: schedules}); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
