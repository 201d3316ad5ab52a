// ABOUTME: Schedule model for a single dated, optionally timed, personal event
// ABOUTME: Schedules can be shared with the owner's family group and repeat via RRULE

package models

import (
	"time"

	"github.com/google/uuid"
)

// Schedule is one entry on a user's calendar.
type Schedule struct {
	ID               string    `json:"id" yaml:"id"`
	UserID           string    `json:"user_id" yaml:"user_id"`
	GroupID          *string   `json:"group_id,omitempty" yaml:"group_id,omitempty"`
	Title            string    `json:"title" yaml:"title"`
	Description      *string   `json:"description,omitempty" yaml:"description,omitempty"`
	Date             string    `json:"schedule_date" yaml:"date"`                    // YYYY-MM-DD
	Time             *string   `json:"schedule_time,omitempty" yaml:"time,omitempty"` // HH:MM
	SharedWithFamily bool      `json:"shared_with_family" yaml:"shared_with_family"`
	Recurrence       *string   `json:"recurrence,omitempty" yaml:"recurrence,omitempty"` // RRULE body
	CreatedAt        time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewSchedule creates a schedule with a generated ID stamped at now.
func NewSchedule(userID, title, date string, now time.Time) *Schedule {
	return &Schedule{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TimeOrEmpty returns the HH:MM time or "" when untimed.
func (s *Schedule) TimeOrEmpty() string {
	if s.Time == nil {
		return ""
	}
	return *s.Time
}

// DescriptionOrEmpty returns the description or "".
func (s *Schedule) DescriptionOrEmpty() string {
	if s.Description == nil {
		return ""
	}
	return *s.Description
}

// Less orders schedules by date, then time with untimed entries last, then title.
func (s *Schedule) Less(o *Schedule) bool {
	if s.Date != o.Date {
		return s.Date < o.Date
	}
	st, ot := s.TimeOrEmpty(), o.TimeOrEmpty()
	if st != ot {
		if st == "" {
			return false
		}
		if ot == "" {
			return true
		}
		return st < ot
	}
	return s.Title < o.Title
}
