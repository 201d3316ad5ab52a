// ABOUTME: Mood and health check-in records
// ABOUTME: Defines the three-level mood vocabulary with emoji and Korean labels

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Mood is a daily check-in level.
type Mood string

const (
	MoodGood Mood = "good"
	MoodOkay Mood = "okay"
	MoodBad  Mood = "bad"
)

// Moods lists the vocabulary in display order.
var Moods = []Mood{MoodGood, MoodOkay, MoodBad}

// ParseMood validates a mood string.
func ParseMood(s string) (Mood, error) {
	for _, m := range Moods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mood %q (want good, okay or bad)", s)
}

// Emoji returns the face shown next to the mood.
func (m Mood) Emoji() string {
	switch m {
	case MoodGood:
		return "😊"
	case MoodOkay:
		return "😐"
	case MoodBad:
		return "😢"
	default:
		return "❔"
	}
}

// Label returns the Korean label.
func (m Mood) Label() string {
	switch m {
	case MoodGood:
		return "행복"
	case MoodOkay:
		return "보통"
	case MoodBad:
		return "나쁨"
	default:
		return string(m)
	}
}

// MoodRecord is one mood check-in.
type MoodRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Mood       Mood      `json:"mood"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewMoodRecord creates a mood check-in at now.
func NewMoodRecord(userID string, mood Mood, now time.Time) *MoodRecord {
	return &MoodRecord{
		ID:         uuid.New().String(),
		UserID:     userID,
		Mood:       mood,
		RecordedAt: now,
	}
}

// HealthRecord is a free-form measurement such as blood pressure or steps.
type HealthRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	RecordType string    `json:"record_type"`
	Value      string    `json:"value"`
	Notes      *string   `json:"notes,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewHealthRecord creates a measurement at now.
func NewHealthRecord(userID, recordType, value string, now time.Time) *HealthRecord {
	return &HealthRecord{
		ID:         uuid.New().String(),
		UserID:     userID,
		RecordType: recordType,
		Value:      value,
		RecordedAt: now,
	}
}
