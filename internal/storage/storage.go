// ABOUTME: Storage interface and filter types for gachi data persistence
// ABOUTME: Defines the contract for schedules, profiles, groups, check-ins and the culture catalogue

package storage

import (
	"errors"

	"github.com/harper/gachi/internal/models"
)

// ErrNotFound is wrapped by every lookup that finds nothing.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when a unique record is inserted twice.
var ErrAlreadyExists = errors.New("already exists")

// MinPrefixLen is the shortest ID prefix accepted by prefix lookups.
const MinPrefixLen = 6

// ScheduleFilter specifies criteria for listing schedules. Zero values match everything.
type ScheduleFilter struct {
	UserIDs       []string
	Date          string // exact YYYY-MM-DD
	From          string // inclusive YYYY-MM-DD
	To            string // inclusive YYYY-MM-DD
	SharedOnly    bool
	RecurringOnly bool
}

// EventFilter specifies criteria for listing cultural events.
type EventFilter struct {
	District    string
	EndingAfter string // events whose end date is on or after this YYYY-MM-DD
	Limit       int
}

// Store defines the storage interface for gachi data.
type Store interface {
	// Close closes the store and releases resources.
	Close() error

	// ChangeVersion returns a counter that increases on every schedule or mood write.
	ChangeVersion() (int64, error)

	// Schedule Operations

	// CreateSchedule stores a new schedule.
	CreateSchedule(s *models.Schedule) error

	// GetSchedule retrieves a schedule by ID.
	GetSchedule(id string) (*models.Schedule, error)

	// GetScheduleByPrefix finds a schedule by ID prefix (min 6 chars).
	GetScheduleByPrefix(prefix string) (*models.Schedule, error)

	// ListSchedules returns schedules ordered by date, then time with untimed last.
	ListSchedules(filter *ScheduleFilter) ([]*models.Schedule, error)

	// UpdateSchedule updates an existing schedule.
	UpdateSchedule(s *models.Schedule) error

	// DeleteSchedule removes a schedule.
	DeleteSchedule(id string) error

	// Profiles

	CreateProfile(p *models.Profile) error
	GetProfile(userID string) (*models.Profile, error)
	UpdateProfile(p *models.Profile) error
	// ListProfiles returns profiles for userIDs, or all profiles when userIDs is empty.
	ListProfiles(userIDs []string) ([]*models.Profile, error)

	// Family groups

	CreateGroup(g *models.FamilyGroup) error
	GetGroup(id string) (*models.FamilyGroup, error)
	GetGroupByInviteCode(code string) (*models.FamilyGroup, error)
	// DeleteGroup removes a group and its memberships.
	DeleteGroup(id string) error
	// ListGroups returns every group, oldest first.
	ListGroups() ([]*models.FamilyGroup, error)
	// ListGroupsForUser returns the groups userID belongs to, oldest first.
	ListGroupsForUser(userID string) ([]*models.FamilyGroup, error)
	// AddMember returns ErrAlreadyExists when the user is already in the group.
	AddMember(m *models.FamilyMember) error
	RemoveMember(groupID, userID string) error
	// ListMembers returns members ordered by join time.
	ListMembers(groupID string) ([]*models.FamilyMember, error)

	// Check-ins

	RecordMood(r *models.MoodRecord) error
	// LatestMood returns nil, nil when the user has never checked in.
	LatestMood(userID string) (*models.MoodRecord, error)
	// ListMoods returns newest first; empty userID means all users, limit 0 means no limit.
	ListMoods(userID string, limit int) ([]*models.MoodRecord, error)
	RecordHealth(r *models.HealthRecord) error
	// ListHealth returns newest first; empty userID means all users, limit 0 means no limit.
	ListHealth(userID string, limit int) ([]*models.HealthRecord, error)

	// Culture catalogue

	// InsertEvents stores one batch atomically.
	InsertEvents(events []*models.CulturalEvent) error
	// InsertSpaces stores one batch atomically.
	InsertSpaces(spaces []*models.CulturalSpace) error
	// ListEvents returns events ordered by start date.
	ListEvents(filter *EventFilter) ([]*models.CulturalEvent, error)
	// ListSpaces returns spaces in district (all when empty), ordered by name.
	ListSpaces(district string, limit int) ([]*models.CulturalSpace, error)
}
