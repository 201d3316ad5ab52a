// ABOUTME: SQLite storage implementation using modernc.org/sqlite (pure Go)
// ABOUTME: Schema is managed by embedded goose migrations; this file holds schedule persistence

package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/gachi/internal/models"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and applies migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied goose migration version.
func (s *SQLiteStore) SchemaVersion() (int64, error) {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(s.db)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ChangeVersion returns the trigger-maintained write counter.
func (s *SQLiteStore) ChangeVersion() (int64, error) {
	var v int64
	if err := s.db.QueryRow(`SELECT version FROM change_version WHERE id = 1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read change version: %w", err)
	}
	return v, nil
}

// Schedule Operations

const scheduleColumns = `id, user_id, group_id, title, description, schedule_date, schedule_time,
	shared_with_family, recurrence, created_at, updated_at`

// CreateSchedule stores a new schedule.
func (s *SQLiteStore) CreateSchedule(sc *models.Schedule) error {
	query := `INSERT INTO schedules (` + scheduleColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query,
		sc.ID, sc.UserID, sc.GroupID, sc.Title, sc.Description, sc.Date, sc.Time,
		boolToInt(sc.SharedWithFamily), sc.Recurrence, sc.CreatedAt, sc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

// GetSchedule retrieves a schedule by ID.
func (s *SQLiteStore) GetSchedule(id string) (*models.Schedule, error) {
	row := s.db.QueryRow(`SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	sc, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}
	return sc, err
}

// GetScheduleByPrefix finds a schedule by ID prefix (min 6 chars).
func (s *SQLiteStore) GetScheduleByPrefix(prefix string) (*models.Schedule, error) {
	if len(prefix) < MinPrefixLen {
		return nil, fmt.Errorf("prefix must be at least %d characters", MinPrefixLen)
	}

	// prefix matches literally, including '_' and '%'
	rows, err := s.db.Query(`SELECT `+scheduleColumns+` FROM schedules WHERE substr(id, 1, length(?)) = ?`, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	matches, err := collectSchedules(rows)
	if err != nil {
		return nil, err
	}
	return onePrefixMatch(matches, prefix)
}

// ListSchedules returns schedules matching the filter.
func (s *SQLiteStore) ListSchedules(filter *ScheduleFilter) ([]*models.Schedule, error) {
	if filter == nil {
		filter = &ScheduleFilter{}
	}

	var where []string
	var args []any

	if len(filter.UserIDs) > 0 {
		where = append(where, "user_id IN ("+placeholders(len(filter.UserIDs))+")")
		for _, id := range filter.UserIDs {
			args = append(args, id)
		}
	}
	if filter.Date != "" {
		where = append(where, "schedule_date = ?")
		args = append(args, filter.Date)
	}
	if filter.From != "" {
		where = append(where, "schedule_date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		where = append(where, "schedule_date <= ?")
		args = append(args, filter.To)
	}
	if filter.SharedOnly {
		where = append(where, "shared_with_family = 1")
	}
	if filter.RecurringOnly {
		where = append(where, "recurrence IS NOT NULL AND recurrence != ''")
	}

	query := `SELECT ` + scheduleColumns + ` FROM schedules`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY schedule_date, schedule_time IS NULL, schedule_time, title"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	return collectSchedules(rows)
}

// UpdateSchedule updates an existing schedule.
func (s *SQLiteStore) UpdateSchedule(sc *models.Schedule) error {
	query := `
		UPDATE schedules SET group_id = ?, title = ?, description = ?, schedule_date = ?,
			schedule_time = ?, shared_with_family = ?, recurrence = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.Exec(query,
		sc.GroupID, sc.Title, sc.Description, sc.Date, sc.Time,
		boolToInt(sc.SharedWithFamily), sc.Recurrence, sc.UpdatedAt, sc.ID,
	)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return expectOneRow(result, "schedule", sc.ID)
}

// DeleteSchedule removes a schedule.
func (s *SQLiteStore) DeleteSchedule(id string) error {
	result, err := s.db.Exec(`DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return expectOneRow(result, "schedule", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	var sc models.Schedule
	var shared int
	if err := row.Scan(
		&sc.ID, &sc.UserID, &sc.GroupID, &sc.Title, &sc.Description, &sc.Date, &sc.Time,
		&shared, &sc.Recurrence, &sc.CreatedAt, &sc.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan schedule: %w", err)
	}
	sc.SharedWithFamily = shared == 1
	return &sc, nil
}

func collectSchedules(rows *sql.Rows) ([]*models.Schedule, error) {
	var out []*models.Schedule
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func onePrefixMatch(matches []*models.Schedule, prefix string) (*models.Schedule, error) {
	if len(matches) == 0 {
		return nil, fmt.Errorf("no schedule found with prefix %s: %w", prefix, ErrNotFound)
	}
	if len(matches) > 1 {
		return nil, fmt.Errorf("ambiguous prefix %s matches %d schedules", prefix, len(matches))
	}
	return matches[0], nil
}

func expectOneRow(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ Store = (*SQLiteStore)(nil)
