// ABOUTME: Profile, family group and membership models
// ABOUTME: A group is joined by invite code and its creator is the head member

package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDisplayName is used when a profile is created implicitly.
const DefaultDisplayName = "사용자"

// Profile holds a user's display details and home district.
type Profile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	City        *string   `json:"location_city,omitempty"`
	District    *string   `json:"location_district,omitempty"`
	Dong        *string   `json:"location_dong,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProfile creates a profile for userID. An empty name falls back to
// DefaultDisplayName.
func NewProfile(userID, displayName string, now time.Time) *Profile {
	if displayName == "" {
		displayName = DefaultDisplayName
	}
	return &Profile{
		ID:          uuid.New().String(),
		UserID:      userID,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// DistrictOrEmpty returns the district or "".
func (p *Profile) DistrictOrEmpty() string {
	if p.District == nil {
		return ""
	}
	return *p.District
}

// FamilyGroup is a set of users sharing schedules and moods.
type FamilyGroup struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewFamilyGroup creates a group owned by createdBy.
func NewFamilyGroup(name, inviteCode, createdBy string, now time.Time) *FamilyGroup {
	return &FamilyGroup{
		ID:         uuid.New().String(),
		Name:       name,
		InviteCode: inviteCode,
		CreatedBy:  createdBy,
		CreatedAt:  now,
	}
}

// FamilyMember links a user to a group.
type FamilyMember struct {
	ID       string    `json:"id"`
	GroupID  string    `json:"group_id"`
	UserID   string    `json:"user_id"`
	IsHead   bool      `json:"is_head"`
	JoinedAt time.Time `json:"joined_at"`
}

// NewFamilyMember creates a membership record.
func NewFamilyMember(groupID, userID string, isHead bool, now time.Time) *FamilyMember {
	return &FamilyMember{
		ID:       uuid.New().String(),
		GroupID:  groupID,
		UserID:   userID,
		IsHead:   isHead,
		JoinedAt: now,
	}
}
