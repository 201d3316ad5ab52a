// ABOUTME: SQLite persistence for the cultural event and space catalogue
// ABOUTME: Each insert call is one transaction so a failed batch leaves no partial rows

package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/harper/gachi/internal/models"
)

// InsertEvents stores a batch of events in a single transaction.
func (s *SQLiteStore) InsertEvents(events []*models.CulturalEvent) error {
	return s.inTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO cultural_events (
				id, title, program_description, theme, event_type, place, district, organization,
				performers, target_audience, fee, detail_url, event_time, main_image,
				longitude, latitude, is_free, start_date, end_date, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare event insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range events {
			if _, err := stmt.Exec(
				e.ID, e.Title, e.ProgramDescription, e.Theme, e.EventType, e.Place, e.District,
				e.Organization, e.Performers, e.TargetAudience, e.Fee, e.DetailURL, e.EventTime,
				e.MainImage, e.Longitude, e.Latitude, boolToInt(e.IsFree),
				nullIfEmpty(e.StartDate), nullIfEmpty(e.EndDate), e.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert event %q: %w", e.Title, err)
			}
		}
		return nil
	})
}

// InsertSpaces stores a batch of spaces in a single transaction.
func (s *SQLiteStore) InsertSpaces(spaces []*models.CulturalSpace) error {
	return s.inTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO cultural_spaces (
				id, name, district, address, phone, homepage, description, open_hours,
				closed_days, is_free, entrance_fee, category, latitude, longitude, main_image, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare space insert: %w", err)
		}
		defer stmt.Close()

		for _, sp := range spaces {
			if _, err := stmt.Exec(
				sp.ID, sp.Name, sp.District, sp.Address, sp.Phone, sp.Homepage, sp.Description,
				sp.OpenHours, sp.ClosedDays, boolToInt(sp.IsFree), sp.EntranceFee, sp.Category,
				sp.Latitude, sp.Longitude, sp.MainImage, sp.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert space %q: %w", sp.Name, err)
			}
		}
		return nil
	})
}

// ListEvents returns events matching the filter ordered by start date.
func (s *SQLiteStore) ListEvents(filter *EventFilter) ([]*models.CulturalEvent, error) {
	if filter == nil {
		filter = &EventFilter{}
	}

	var where []string
	var args []any
	if filter.District != "" {
		where = append(where, "district = ?")
		args = append(args, filter.District)
	}
	if filter.EndingAfter != "" {
		where = append(where, "end_date >= ?")
		args = append(args, filter.EndingAfter)
	}

	query := `
		SELECT id, title, program_description, theme, event_type, place, district, organization,
			performers, target_audience, fee, detail_url, event_time, main_image,
			longitude, latitude, is_free, start_date, end_date, created_at
		FROM cultural_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_date IS NULL, start_date, title"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []*models.CulturalEvent
	for rows.Next() {
		var e models.CulturalEvent
		var desc, theme, typ, place, district, org, perf, target, fee, url, etime, img sql.NullString
		var start, end sql.NullString
		var free int
		if err := rows.Scan(
			&e.ID, &e.Title, &desc, &theme, &typ, &place, &district, &org,
			&perf, &target, &fee, &url, &etime, &img,
			&e.Longitude, &e.Latitude, &free, &start, &end, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.ProgramDescription, e.Theme, e.EventType, e.Place = desc.String, theme.String, typ.String, place.String
		e.District, e.Organization, e.Performers = district.String, org.String, perf.String
		e.TargetAudience, e.Fee, e.DetailURL = target.String, fee.String, url.String
		e.EventTime, e.MainImage = etime.String, img.String
		e.IsFree = free == 1
		e.StartDate, e.EndDate = start.String, end.String
		out = append(out, &e)
	}
	return out, rows.Err()
}

// ListSpaces returns spaces in district (all when empty) ordered by name.
func (s *SQLiteStore) ListSpaces(district string, limit int) ([]*models.CulturalSpace, error) {
	query := `
		SELECT id, name, district, address, phone, homepage, description, open_hours,
			closed_days, is_free, entrance_fee, category, latitude, longitude, main_image, created_at
		FROM cultural_spaces`
	var args []any
	if district != "" {
		query += " WHERE district = ?"
		args = append(args, district)
	}
	query += " ORDER BY name"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query spaces: %w", err)
	}
	defer rows.Close()

	var out []*models.CulturalSpace
	for rows.Next() {
		var sp models.CulturalSpace
		var dist, addr, phone, home, desc, open, closed, fee, cat, img sql.NullString
		var free int
		if err := rows.Scan(
			&sp.ID, &sp.Name, &dist, &addr, &phone, &home, &desc, &open,
			&closed, &free, &fee, &cat, &sp.Latitude, &sp.Longitude, &img, &sp.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		sp.District, sp.Address, sp.Phone, sp.Homepage = dist.String, addr.String, phone.String, home.String
		sp.Description, sp.OpenHours, sp.ClosedDays = desc.String, open.String, closed.String
		sp.EntranceFee, sp.Category, sp.MainImage = fee.String, cat.String, img.String
		sp.IsFree = free == 1
		out = append(out, &sp)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
