// ABOUTME: SQLite persistence for profiles, family groups, memberships and check-ins
// ABOUTME: Membership uniqueness is enforced by the schema and surfaced as ErrAlreadyExists

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/gachi/internal/models"
)

// Profiles

const profileColumns = `id, user_id, display_name, phone_number, location_city, location_district,
	location_dong, avatar_url, created_at, updated_at`

// CreateProfile stores a new profile.
func (s *SQLiteStore) CreateProfile(p *models.Profile) error {
	query := `INSERT INTO profiles (` + profileColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query,
		p.ID, p.UserID, p.DisplayName, p.PhoneNumber, p.City, p.District,
		p.Dong, p.AvatarURL, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("profile for %s: %w", p.UserID, ErrAlreadyExists)
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// GetProfile retrieves the profile of userID.
func (s *SQLiteStore) GetProfile(userID string) (*models.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	return p, err
}

// UpdateProfile updates an existing profile.
func (s *SQLiteStore) UpdateProfile(p *models.Profile) error {
	query := `
		UPDATE profiles SET display_name = ?, phone_number = ?, location_city = ?,
			location_district = ?, location_dong = ?, avatar_url = ?, updated_at = ?
		WHERE user_id = ?
	`
	result, err := s.db.Exec(query,
		p.DisplayName, p.PhoneNumber, p.City, p.District, p.Dong, p.AvatarURL, p.UpdatedAt, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return expectOneRow(result, "profile", p.UserID)
}

// ListProfiles returns profiles for userIDs, or all when empty.
func (s *SQLiteStore) ListProfiles(userIDs []string) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles`
	var args []any
	if len(userIDs) > 0 {
		query += ` WHERE user_id IN (` + placeholders(len(userIDs)) + `)`
		for _, id := range userIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var out []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	if err := row.Scan(
		&p.ID, &p.UserID, &p.DisplayName, &p.PhoneNumber, &p.City, &p.District,
		&p.Dong, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return &p, nil
}

// Family groups

const groupColumns = `id, name, invite_code, created_by, created_at`

// CreateGroup stores a new group.
func (s *SQLiteStore) CreateGroup(g *models.FamilyGroup) error {
	_, err := s.db.Exec(`INSERT INTO family_groups (`+groupColumns+`) VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.InviteCode, g.CreatedBy, g.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("group invite code %s: %w", g.InviteCode, ErrAlreadyExists)
		}
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(id string) (*models.FamilyGroup, error) {
	return s.getGroupWhere("id = ?", id)
}

// GetGroupByInviteCode finds a group by its invite code.
func (s *SQLiteStore) GetGroupByInviteCode(code string) (*models.FamilyGroup, error) {
	return s.getGroupWhere("invite_code = ?", strings.ToUpper(strings.TrimSpace(code)))
}

func (s *SQLiteStore) getGroupWhere(cond, arg string) (*models.FamilyGroup, error) {
	row := s.db.QueryRow(`SELECT `+groupColumns+` FROM family_groups WHERE `+cond, arg)
	var g models.FamilyGroup
	if err := row.Scan(&g.ID, &g.Name, &g.InviteCode, &g.CreatedBy, &g.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("group %s: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("scan group: %w", err)
	}
	return &g, nil
}

// DeleteGroup removes a group; memberships go with it by cascade.
func (s *SQLiteStore) DeleteGroup(id string) error {
	result, err := s.db.Exec(`DELETE FROM family_groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return expectOneRow(result, "group", id)
}

// ListGroups returns every group, oldest first.
func (s *SQLiteStore) ListGroups() ([]*models.FamilyGroup, error) {
	return s.queryGroups(`SELECT ` + groupColumns + ` FROM family_groups ORDER BY created_at`)
}

// ListGroupsForUser returns the groups userID belongs to.
func (s *SQLiteStore) ListGroupsForUser(userID string) ([]*models.FamilyGroup, error) {
	query := `
		SELECT g.id, g.name, g.invite_code, g.created_by, g.created_at
		FROM family_groups g
		JOIN family_members m ON m.group_id = g.id
		WHERE m.user_id = ?
		ORDER BY g.created_at
	`
	return s.queryGroups(query, userID)
}

func (s *SQLiteStore) queryGroups(query string, args ...any) ([]*models.FamilyGroup, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var out []*models.FamilyGroup
	for rows.Next() {
		var g models.FamilyGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.InviteCode, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}

// AddMember links a user to a group.
func (s *SQLiteStore) AddMember(m *models.FamilyMember) error {
	_, err := s.db.Exec(`
		INSERT INTO family_members (id, group_id, user_id, is_head, joined_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.GroupID, m.UserID, boolToInt(m.IsHead), m.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("member %s in group %s: %w", m.UserID, m.GroupID, ErrAlreadyExists)
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// RemoveMember unlinks a user from a group.
func (s *SQLiteStore) RemoveMember(groupID, userID string) error {
	result, err := s.db.Exec(`DELETE FROM family_members WHERE group_id = ? AND user_id = ?`, groupID, userID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return expectOneRow(result, "member", userID)
}

// ListMembers returns members of a group ordered by join time.
func (s *SQLiteStore) ListMembers(groupID string) ([]*models.FamilyMember, error) {
	rows, err := s.db.Query(`
		SELECT id, group_id, user_id, is_head, joined_at
		FROM family_members WHERE group_id = ?
		ORDER BY joined_at
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var out []*models.FamilyMember
	for rows.Next() {
		var m models.FamilyMember
		var head int
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &head, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.IsHead = head == 1
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Check-ins

// RecordMood stores a mood check-in.
func (s *SQLiteStore) RecordMood(r *models.MoodRecord) error {
	_, err := s.db.Exec(`INSERT INTO mood_records (id, user_id, mood, recorded_at) VALUES (?, ?, ?, ?)`,
		r.ID, r.UserID, string(r.Mood), r.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert mood: %w", err)
	}
	return nil
}

// LatestMood returns the most recent check-in, or nil when there is none.
func (s *SQLiteStore) LatestMood(userID string) (*models.MoodRecord, error) {
	moods, err := s.ListMoods(userID, 1)
	if err != nil {
		return nil, err
	}
	if len(moods) == 0 {
		return nil, nil
	}
	return moods[0], nil
}

// ListMoods returns check-ins newest first.
func (s *SQLiteStore) ListMoods(userID string, limit int) ([]*models.MoodRecord, error) {
	query := `SELECT id, user_id, mood, recorded_at FROM mood_records`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY recorded_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query moods: %w", err)
	}
	defer rows.Close()

	var out []*models.MoodRecord
	for rows.Next() {
		var r models.MoodRecord
		var mood string
		if err := rows.Scan(&r.ID, &r.UserID, &mood, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan mood: %w", err)
		}
		r.Mood = models.Mood(mood)
		out = append(out, &r)
	}
	return out, rows.Err()
}

// RecordHealth stores a health measurement.
func (s *SQLiteStore) RecordHealth(r *models.HealthRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO health_records (id, user_id, record_type, value, notes, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.UserID, r.RecordType, r.Value, r.Notes, r.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert health record: %w", err)
	}
	return nil
}

// ListHealth returns measurements newest first.
func (s *SQLiteStore) ListHealth(userID string, limit int) ([]*models.HealthRecord, error) {
	query := `SELECT id, user_id, record_type, value, notes, recorded_at FROM health_records`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY recorded_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query health records: %w", err)
	}
	defer rows.Close()

	var out []*models.HealthRecord
	for rows.Next() {
		var r models.HealthRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.RecordType, &r.Value, &r.Notes, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan health record: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
