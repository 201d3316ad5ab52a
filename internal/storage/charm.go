// ABOUTME: Charm KV storage backend using the transactional Do API
// ABOUTME: Short-lived connections, JSON values under per-table key prefixes

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/charm/kv"
	"github.com/harper/gachi/internal/models"
)

const (
	// Key prefixes for KV store
	SchedulePrefix = "schedule:"
	ProfilePrefix  = "profile:"
	GroupPrefix    = "group:"
	MemberPrefix   = "member:"
	MoodPrefix     = "mood:"
	HealthPrefix   = "health:"
	EventPrefix    = "event:"
	SpacePrefix    = "space:"

	versionKey = "meta:version"

	// DefaultCharmHost is used when CHARM_HOST is unset.
	DefaultCharmHost = "charm.2389.dev"

	// CharmDBName is the name of the charm kv database for gachi.
	CharmDBName = "gachi"
)

// CharmStore implements Store on Charm KV. It holds no open connection;
// each operation opens the database, runs, and closes it.
type CharmStore struct {
	dbName   string
	autoSync bool
}

// NewCharmStore creates a store syncing to the configured Charm server.
func NewCharmStore() *CharmStore {
	if os.Getenv("CHARM_HOST") == "" {
		os.Setenv("CHARM_HOST", DefaultCharmHost)
	}
	return &CharmStore{dbName: CharmDBName, autoSync: true}
}

// NewCharmStoreWithDBName creates a store on a named database. Tests disable autoSync.
func NewCharmStoreWithDBName(dbName string, autoSync bool) *CharmStore {
	return &CharmStore{dbName: dbName, autoSync: autoSync}
}

func (c *CharmStore) doReadOnly(fn func(k *kv.KV) error) error {
	return kv.DoReadOnly(c.dbName, fn)
}

func (c *CharmStore) do(fn func(k *kv.KV) error) error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		if err := fn(k); err != nil {
			return err
		}
		if c.autoSync {
			return k.Sync()
		}
		return nil
	})
}

// Close is a no-op; connections close after each operation.
func (c *CharmStore) Close() error {
	return nil
}

// ChangeVersion returns the counter bumped by schedule and mood writes.
func (c *CharmStore) ChangeVersion() (int64, error) {
	var v int64
	err := c.doReadOnly(func(k *kv.KV) error {
		v = readVersion(k)
		return nil
	})
	return v, err
}

func readVersion(k *kv.KV) int64 {
	data, err := k.Get([]byte(versionKey))
	if err != nil {
		return 0
	}
	v, _ := strconv.ParseInt(string(data), 10, 64)
	return v
}

func bumpVersion(k *kv.KV) error {
	next := readVersion(k) + 1
	return k.Set([]byte(versionKey), []byte(strconv.FormatInt(next, 10)))
}

func putJSON(k *kv.KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return k.Set([]byte(key), data)
}

func getJSON[T any](k *kv.KV, key string) (*T, error) {
	data, err := k.Get([]byte(key))
	if err != nil || data == nil {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return &v, nil
}

// listJSON decodes every value under prefix, skipping corrupt records.
func listJSON[T any](k *kv.KV, prefix string) ([]*T, error) {
	keys, err := k.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	var out []*T
	warned := false
	for _, key := range keys {
		if !strings.HasPrefix(string(key), prefix) {
			continue
		}
		data, err := k.Get(key)
		if err == nil {
			var v T
			if err = json.Unmarshal(data, &v); err == nil {
				out = append(out, &v)
				continue
			}
		}
		if !warned {
			fmt.Fprintf(os.Stderr, "Warning: some %s records may be corrupted\n", strings.TrimSuffix(prefix, ":"))
			warned = true
		}
	}
	return out, nil
}

func readAll[T any](c *CharmStore, prefix string) ([]*T, error) {
	var out []*T
	err := c.doReadOnly(func(k *kv.KV) error {
		var err error
		out, err = listJSON[T](k, prefix)
		return err
	})
	return out, err
}

// Schedule Operations

// CreateSchedule stores a new schedule.
func (c *CharmStore) CreateSchedule(s *models.Schedule) error {
	return c.do(func(k *kv.KV) error {
		if err := putJSON(k, SchedulePrefix+s.ID, s); err != nil {
			return err
		}
		return bumpVersion(k)
	})
}

// GetSchedule retrieves a schedule by ID.
func (c *CharmStore) GetSchedule(id string) (*models.Schedule, error) {
	var s *models.Schedule
	err := c.doReadOnly(func(k *kv.KV) error {
		var err error
		s, err = getJSON[models.Schedule](k, SchedulePrefix+id)
		return err
	})
	return s, err
}

// GetScheduleByPrefix finds a schedule by ID prefix (min 6 chars).
func (c *CharmStore) GetScheduleByPrefix(prefix string) (*models.Schedule, error) {
	if len(prefix) < MinPrefixLen {
		return nil, fmt.Errorf("prefix must be at least %d characters", MinPrefixLen)
	}
	all, err := readAll[models.Schedule](c, SchedulePrefix)
	if err != nil {
		return nil, err
	}
	var matches []*models.Schedule
	for _, s := range all {
		if strings.HasPrefix(s.ID, prefix) {
			matches = append(matches, s)
		}
	}
	return onePrefixMatch(matches, prefix)
}

// ListSchedules returns schedules matching the filter.
func (c *CharmStore) ListSchedules(filter *ScheduleFilter) ([]*models.Schedule, error) {
	if filter == nil {
		filter = &ScheduleFilter{}
	}
	all, err := readAll[models.Schedule](c, SchedulePrefix)
	if err != nil {
		return nil, err
	}

	users := make(map[string]bool, len(filter.UserIDs))
	for _, id := range filter.UserIDs {
		users[id] = true
	}

	var out []*models.Schedule
	for _, s := range all {
		if scheduleMatches(s, filter, users) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out, nil
}

func scheduleMatches(s *models.Schedule, f *ScheduleFilter, users map[string]bool) bool {
	if len(users) > 0 && !users[s.UserID] {
		return false
	}
	if f.Date != "" && s.Date != f.Date {
		return false
	}
	if f.From != "" && s.Date < f.From {
		return false
	}
	if f.To != "" && s.Date > f.To {
		return false
	}
	if f.SharedOnly && !s.SharedWithFamily {
		return false
	}
	if f.RecurringOnly && (s.Recurrence == nil || *s.Recurrence == "") {
		return false
	}
	return true
}

// UpdateSchedule overwrites an existing schedule.
func (c *CharmStore) UpdateSchedule(s *models.Schedule) error {
	return c.do(func(k *kv.KV) error {
		if _, err := getJSON[models.Schedule](k, SchedulePrefix+s.ID); err != nil {
			return err
		}
		if err := putJSON(k, SchedulePrefix+s.ID, s); err != nil {
			return err
		}
		return bumpVersion(k)
	})
}

// DeleteSchedule removes a schedule.
func (c *CharmStore) DeleteSchedule(id string) error {
	return c.do(func(k *kv.KV) error {
		if _, err := getJSON[models.Schedule](k, SchedulePrefix+id); err != nil {
			return err
		}
		if err := k.Delete([]byte(SchedulePrefix + id)); err != nil {
			return fmt.Errorf("delete schedule: %w", err)
		}
		return bumpVersion(k)
	})
}

// Profiles

// CreateProfile stores a new profile keyed by user.
func (c *CharmStore) CreateProfile(p *models.Profile) error {
	return c.do(func(k *kv.KV) error {
		if _, err := getJSON[models.Profile](k, ProfilePrefix+p.UserID); err == nil {
			return fmt.Errorf("profile for %s: %w", p.UserID, ErrAlreadyExists)
		}
		return putJSON(k, ProfilePrefix+p.UserID, p)
	})
}

// GetProfile retrieves the profile of userID.
func (c *CharmStore) GetProfile(userID string) (*models.Profile, error) {
	var p *models.Profile
	err := c.doReadOnly(func(k *kv.KV) error {
		var err error
		p, err = getJSON[models.Profile](k, ProfilePrefix+userID)
		return err
	})
	return p, err
}

// UpdateProfile overwrites an existing profile.
func (c *CharmStore) UpdateProfile(p *models.Profile) error {
	return c.do(func(k *kv.KV) error {
		if _, err := getJSON[models.Profile](k, ProfilePrefix+p.UserID); err != nil {
			return err
		}
		return putJSON(k, ProfilePrefix+p.UserID, p)
	})
}

// ListProfiles returns profiles for userIDs, or all when empty.
func (c *CharmStore) ListProfiles(userIDs []string) ([]*models.Profile, error) {
	all, err := readAll[models.Profile](c, ProfilePrefix)
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	var out []*models.Profile
	for _, p := range all {
		if len(want) == 0 || want[p.UserID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Family groups

// CreateGroup stores a new group; invite codes must be unique.
func (c *CharmStore) CreateGroup(g *models.FamilyGroup) error {
	return c.do(func(k *kv.KV) error {
		groups, err := listJSON[models.FamilyGroup](k, GroupPrefix)
		if err != nil {
			return err
		}
		for _, existing := range groups {
			if existing.InviteCode == g.InviteCode {
				return fmt.Errorf("group invite code %s: %w", g.InviteCode, ErrAlreadyExists)
			}
		}
		return putJSON(k, GroupPrefix+g.ID, g)
	})
}

// GetGroup retrieves a group by ID.
func (c *CharmStore) GetGroup(id string) (*models.FamilyGroup, error) {
	var g *models.FamilyGroup
	err := c.doReadOnly(func(k *kv.KV) error {
		var err error
		g, err = getJSON[models.FamilyGroup](k, GroupPrefix+id)
		return err
	})
	return g, err
}

// GetGroupByInviteCode finds a group by its invite code.
func (c *CharmStore) GetGroupByInviteCode(code string) (*models.FamilyGroup, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	groups, err := c.ListGroups()
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g.InviteCode == code {
			return g, nil
		}
	}
	return nil, fmt.Errorf("group %s: %w", code, ErrNotFound)
}

// DeleteGroup removes a group and its member keys.
func (c *CharmStore) DeleteGroup(id string) error {
	return c.do(func(k *kv.KV) error {
		if _, err := getJSON[models.FamilyGroup](k, GroupPrefix+id); err != nil {
			return err
		}
		keys, err := k.Keys()
		if err != nil {
			return fmt.Errorf("list keys: %w", err)
		}
		for _, key := range keys {
			if strings.HasPrefix(string(key), MemberPrefix+id+":") {
				if err := k.Delete(key); err != nil {
					return fmt.Errorf("delete member: %w", err)
				}
			}
		}
		if err := k.Delete([]byte(GroupPrefix + id)); err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		return nil
	})
}

// ListGroups returns every group, oldest first.
func (c *CharmStore) ListGroups() ([]*models.FamilyGroup, error) {
	groups, err := readAll[models.FamilyGroup](c, GroupPrefix)
	if err != nil {
		return nil, err
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].CreatedAt.Before(groups[j].CreatedAt) })
	return groups, nil
}

// ListGroupsForUser returns the groups userID belongs to.
func (c *CharmStore) ListGroupsForUser(userID string) ([]*models.FamilyGroup, error) {
	members, err := readAll[models.FamilyMember](c, MemberPrefix)
	if err != nil {
		return nil, err
	}
	in := make(map[string]bool)
	for _, m := range members {
		if m.UserID == userID {
			in[m.GroupID] = true
		}
	}

	groups, err := c.ListGroups()
	if err != nil {
		return nil, err
	}
	var out []*models.FamilyGroup
	for _, g := range groups {
		if in[g.ID] {
			out = append(out, g)
		}
	}
	return out, nil
}

func memberKey(groupID, userID string) string {
	return MemberPrefix + groupID + ":" + userID
}

// AddMember links a user to a group.
func (c *CharmStore) AddMember(m *models.FamilyMember) error {
	return c.do(func(k *kv.KV) error {
		if _, err := getJSON[models.FamilyGroup](k, GroupPrefix+m.GroupID); err != nil {
			return err
		}
		key := memberKey(m.GroupID, m.UserID)
		if _, err := getJSON[models.FamilyMember](k, key); err == nil {
			return fmt.Errorf("member %s in group %s: %w", m.UserID, m.GroupID, ErrAlreadyExists)
		}
		return putJSON(k, key, m)
	})
}

// RemoveMember unlinks a user from a group.
func (c *CharmStore) RemoveMember(groupID, userID string) error {
	return c.do(func(k *kv.KV) error {
		key := memberKey(groupID, userID)
		if _, err := getJSON[models.FamilyMember](k, key); err != nil {
			return err
		}
		return k.Delete([]byte(key))
	})
}

// ListMembers returns members of a group ordered by join time.
func (c *CharmStore) ListMembers(groupID string) ([]*models.FamilyMember, error) {
	members, err := readAll[models.FamilyMember](c, MemberPrefix+groupID+":")
	if err != nil {
		return nil, err
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

// Check-ins

// RecordMood stores a mood check-in.
func (c *CharmStore) RecordMood(r *models.MoodRecord) error {
	return c.do(func(k *kv.KV) error {
		if err := putJSON(k, MoodPrefix+r.ID, r); err != nil {
			return err
		}
		return bumpVersion(k)
	})
}

// LatestMood returns the most recent check-in, or nil when there is none.
func (c *CharmStore) LatestMood(userID string) (*models.MoodRecord, error) {
	moods, err := c.ListMoods(userID, 1)
	if err != nil || len(moods) == 0 {
		return nil, err
	}
	return moods[0], nil
}

// ListMoods returns check-ins newest first.
func (c *CharmStore) ListMoods(userID string, limit int) ([]*models.MoodRecord, error) {
	all, err := readAll[models.MoodRecord](c, MoodPrefix)
	if err != nil {
		return nil, err
	}
	var out []*models.MoodRecord
	for _, r := range all {
		if userID == "" || r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RecordHealth stores a health measurement.
func (c *CharmStore) RecordHealth(r *models.HealthRecord) error {
	return c.do(func(k *kv.KV) error {
		return putJSON(k, HealthPrefix+r.ID, r)
	})
}

// ListHealth returns measurements newest first.
func (c *CharmStore) ListHealth(userID string, limit int) ([]*models.HealthRecord, error) {
	all, err := readAll[models.HealthRecord](c, HealthPrefix)
	if err != nil {
		return nil, err
	}
	var out []*models.HealthRecord
	for _, r := range all {
		if userID == "" || r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Culture catalogue

// InsertEvents stores a batch of events. Values are encoded before any write.
func (c *CharmStore) InsertEvents(events []*models.CulturalEvent) error {
	return c.putBatch(EventPrefix, len(events), func(i int) (string, any) {
		return events[i].ID, events[i]
	})
}

// InsertSpaces stores a batch of spaces. Values are encoded before any write.
func (c *CharmStore) InsertSpaces(spaces []*models.CulturalSpace) error {
	return c.putBatch(SpacePrefix, len(spaces), func(i int) (string, any) {
		return spaces[i].ID, spaces[i]
	})
}

func (c *CharmStore) putBatch(prefix string, n int, item func(int) (string, any)) error {
	keys := make([][]byte, n)
	values := make([][]byte, n)
	for i := 0; i < n; i++ {
		id, v := item(i)
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s%s: %w", prefix, id, err)
		}
		keys[i] = []byte(prefix + id)
		values[i] = data
	}
	return c.do(func(k *kv.KV) error {
		for i := range keys {
			if err := k.Set(keys[i], values[i]); err != nil {
				return fmt.Errorf("set %s: %w", keys[i], err)
			}
		}
		return nil
	})
}

// ListEvents returns events matching the filter ordered by start date.
func (c *CharmStore) ListEvents(filter *EventFilter) ([]*models.CulturalEvent, error) {
	if filter == nil {
		filter = &EventFilter{}
	}
	all, err := readAll[models.CulturalEvent](c, EventPrefix)
	if err != nil {
		return nil, err
	}

	var out []*models.CulturalEvent
	for _, e := range all {
		if filter.District != "" && e.District != filter.District {
			continue
		}
		if filter.EndingAfter != "" && (e.EndDate == "" || e.EndDate < filter.EndingAfter) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.StartDate == "") != (b.StartDate == "") {
			return b.StartDate == ""
		}
		if a.StartDate != b.StartDate {
			return a.StartDate < b.StartDate
		}
		return a.Title < b.Title
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// ListSpaces returns spaces in district (all when empty) ordered by name.
func (c *CharmStore) ListSpaces(district string, limit int) ([]*models.CulturalSpace, error) {
	all, err := readAll[models.CulturalSpace](c, SpacePrefix)
	if err != nil {
		return nil, err
	}
	var out []*models.CulturalSpace
	for _, sp := range all {
		if district == "" || sp.District == district {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Store = (*CharmStore)(nil)
