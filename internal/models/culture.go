// ABOUTME: Cultural event and cultural space catalogue models
// ABOUTME: Populated by the open-data importer and read by recommendations

package models

import (
	"time"

	"github.com/google/uuid"
)

// CulturalEvent is a performance, exhibition or class listed by a district.
type CulturalEvent struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	ProgramDescription string     `json:"program_description,omitempty"`
	Theme              string     `json:"theme,omitempty"`
	EventType          string     `json:"event_type,omitempty"`
	Place              string     `json:"place,omitempty"`
	District           string     `json:"district,omitempty"`
	Organization       string     `json:"organization,omitempty"`
	Performers         string     `json:"performers,omitempty"`
	TargetAudience     string     `json:"target_audience,omitempty"`
	Fee                string     `json:"fee,omitempty"`
	DetailURL          string     `json:"detail_url,omitempty"`
	EventTime          string     `json:"event_time,omitempty"`
	MainImage          string     `json:"main_image,omitempty"`
	Longitude          *float64   `json:"longitude,omitempty"`
	Latitude           *float64   `json:"latitude,omitempty"`
	IsFree             bool       `json:"is_free"`
	StartDate          string     `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate            string     `json:"end_date,omitempty"`   // YYYY-MM-DD
	CreatedAt          time.Time  `json:"created_at"`
}

// NewCulturalEvent creates an event with a generated ID.
func NewCulturalEvent(title string, now time.Time) *CulturalEvent {
	return &CulturalEvent{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: now,
	}
}

// CulturalSpace is a venue such as a library, gallery or community centre.
type CulturalSpace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	District    string    `json:"district,omitempty"`
	Address     string    `json:"address,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Homepage    string    `json:"homepage,omitempty"`
	Description string    `json:"description,omitempty"`
	OpenHours   string    `json:"open_hours,omitempty"`
	ClosedDays  string    `json:"closed_days,omitempty"`
	IsFree      bool      `json:"is_free"`
	EntranceFee string    `json:"entrance_fee,omitempty"`
	Category    string    `json:"category,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	MainImage   string    `json:"main_image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCulturalSpace creates a space with a generated ID.
func NewCulturalSpace(name string, now time.Time) *CulturalSpace {
	return &CulturalSpace{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
	}
}
