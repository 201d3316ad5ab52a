// ABOUTME: Schedule service: day and month views, family sharing and validated edits
// ABOUTME: Merges the viewer's own schedules with family members' shared ones

package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harper/gachi/internal/calendar"
	"github.com/harper/gachi/internal/models"
	"github.com/harper/gachi/internal/storage"
	"github.com/harper/gachi/internal/timeofday"
	"github.com/harper/gachi/internal/timeutil"
)

var (
	ErrInvalidTitle      = errors.New("title is required")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidTime       = timeofday.ErrInvalidTime
	ErrInvalidRecurrence = errors.New("invalid recurrence rule")
	ErrNotOwner          = errors.New("schedule belongs to another user")
	ErrNotInGroup        = errors.New("no shared family group with that member")
)

// Entry is a schedule as it appears on a particular day.
type Entry struct {
	*models.Schedule
	On        string `json:"on"` // occurrence date, differs from Date for repeats
	OwnerName string `json:"owner_name"`
	Mine      bool   `json:"mine"`
}

// MonthView is a month grid with entries bucketed by day of month.
type MonthView struct {
	Grid calendar.MonthGrid `json:"grid"`
	Days map[int][]Entry    `json:"days"`
}

// Service reads and writes schedules for one store.
type Service struct {
	store  storage.Store
	clock  timeutil.Clock
	logger *log.Logger
}

// NewService wires a schedule service.
func NewService(store storage.Store, clock timeutil.Clock, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, clock: clock, logger: logger}
}

// Day returns the viewer's schedules for date plus family members' shared
// schedules, ordered by time with untimed entries last.
func (s *Service) Day(ctx context.Context, userID, date string) ([]Entry, error) {
	date, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	view, err := s.collect(ctx, userID, date, date)
	if err != nil {
		return nil, err
	}
	return view[date], nil
}

// Month returns the viewer's month view. month is zero-based and may overflow.
func (s *Service) Month(ctx context.Context, userID string, year, month int) (*MonthView, error) {
	grid := calendar.ComputeMonthGrid(year, month)
	from, to := grid.DateRange()

	byDate, err := s.collect(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return bucket(grid, byDate), nil
}

// MemberMonth returns one member's month as seen by viewer. Other members'
// private schedules are hidden, and viewer must share a group with member.
func (s *Service) MemberMonth(ctx context.Context, viewerID, memberID string, year, month int) (*MonthView, error) {
	if viewerID != memberID {
		ok, err := s.shareGroup(viewerID, memberID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotInGroup
		}
	}

	grid := calendar.ComputeMonthGrid(year, month)
	from, to := grid.DateRange()
	filter := storage.ScheduleFilter{UserIDs: []string{memberID}, SharedOnly: viewerID != memberID}

	byDate, err := s.expand(ctx, filter, from, to)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(byDate, viewerID); err != nil {
		return nil, err
	}
	return bucket(grid, byDate), nil
}

// collect gathers own and shared family entries between from and to, keyed by date.
func (s *Service) collect(ctx context.Context, userID, from, to string) (map[string][]Entry, error) {
	own, err := s.expand(ctx, storage.ScheduleFilter{UserIDs: []string{userID}}, from, to)
	if err != nil {
		return nil, err
	}

	family, err := s.familyUserIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(family) > 0 {
		shared, err := s.expand(ctx, storage.ScheduleFilter{UserIDs: family, SharedOnly: true}, from, to)
		if err != nil {
			return nil, err
		}
		for date, entries := range shared {
			own[date] = append(own[date], entries...)
		}
	}

	if err := s.decorate(own, userID); err != nil {
		return nil, err
	}
	for date := range own {
		sortEntries(own[date])
	}
	return own, nil
}

// expand lists matching schedules in range and repeats recurring ones onto each date they fire.
func (s *Service) expand(ctx context.Context, base storage.ScheduleFilter, from, to string) (map[string][]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string][]Entry)

	inRange := base
	inRange.From, inRange.To = from, to
	plain, err := s.store.ListSchedules(&inRange)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	for _, sc := range plain {
		if sc.Recurrence != nil && *sc.Recurrence != "" {
			continue
		}
		out[sc.Date] = append(out[sc.Date], Entry{Schedule: sc, On: sc.Date})
	}

	repeating := base
	repeating.To, repeating.RecurringOnly = to, true
	rules, err := s.store.ListSchedules(&repeating)
	if err != nil {
		return nil, fmt.Errorf("list recurring schedules: %w", err)
	}
	for _, sc := range rules {
		dates, err := occurrences(*sc.Recurrence, sc.Date, from, to)
		if err != nil {
			s.logger.Warn("skipping schedule with bad recurrence", "id", sc.ID, "rule", *sc.Recurrence, "err", err)
			continue
		}
		for _, d := range dates {
			out[d] = append(out[d], Entry{Schedule: sc, On: d})
		}
	}
	return out, nil
}

// decorate fills owner names and the Mine flag.
func (s *Service) decorate(byDate map[string][]Entry, viewerID string) error {
	ids := make(map[string]bool)
	for _, entries := range byDate {
		for _, e := range entries {
			ids[e.UserID] = true
		}
	}
	if len(ids) == 0 {
		return nil
	}

	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	profiles, err := s.store.ListProfiles(list)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.UserID] = p.DisplayName
	}

	for date, entries := range byDate {
		for i := range entries {
			e := &entries[i]
			e.Mine = e.UserID == viewerID
			e.OwnerName = names[e.UserID]
			if e.OwnerName == "" {
				e.OwnerName = models.DefaultDisplayName
			}
		}
		byDate[date] = entries
	}
	return nil
}

func (s *Service) familyUserIDs(userID string) ([]string, error) {
	groups, err := s.store.ListGroupsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	seen := map[string]bool{userID: true}
	var ids []string
	for _, g := range groups {
		members, err := s.store.ListMembers(g.ID)
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		for _, m := range members {
			if !seen[m.UserID] {
				seen[m.UserID] = true
				ids = append(ids, m.UserID)
			}
		}
	}
	return ids, nil
}

func (s *Service) shareGroup(a, b string) (bool, error) {
	ids, err := s.familyUserIDs(a)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == b {
			return true, nil
		}
	}
	return false, nil
}

func bucket(grid calendar.MonthGrid, byDate map[string][]Entry) *MonthView {
	view := &MonthView{Grid: grid, Days: make(map[int][]Entry)}
	for day := 1; day <= grid.DayCount; day++ {
		if entries := byDate[grid.DateString(day)]; len(entries) > 0 {
			sortEntries(entries)
			view.Days[day] = entries
		}
	}
	return view
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		at, bt := a.TimeOrEmpty(), b.TimeOrEmpty()
		if at != bt {
			if at == "" {
				return false
			}
			if bt == "" {
				return true
			}
			return at < bt
		}
		return a.Title < b.Title
	})
}

// AddInput carries the fields of a new schedule. Time and Recurrence may be empty.
type AddInput struct {
	UserID      string
	Title       string
	Date        string
	Time        string
	Description string
	Shared      bool
	Recurrence  string
}

// Add validates and stores a new schedule.
func (s *Service) Add(ctx context.Context, in AddInput) (*models.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	date, err := normalizeDate(in.Date)
	if err != nil {
		return nil, err
	}

	sc := models.NewSchedule(in.UserID, title, date, s.clock.Now())
	if err := applyTime(sc, in.Time); err != nil {
		return nil, err
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		sc.Description = &d
	}
	if err := applyRecurrence(sc, in.Recurrence); err != nil {
		return nil, err
	}
	if err := s.applySharing(sc, in.Shared); err != nil {
		return nil, err
	}

	if err := s.store.CreateSchedule(sc); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	s.logger.Debug("schedule added", "id", sc.ID, "date", sc.Date, "time", sc.TimeOrEmpty())
	return sc, nil
}

// Patch holds optional edits. Nil fields are left unchanged; an empty Time
// or Recurrence clears it.
type Patch struct {
	Title       *string
	Date        *string
	Time        *string
	Description *string
	Shared      *bool
	Recurrence  *string
}

// Edit applies patch to the schedule referenced by ID or ID prefix.
func (s *Service) Edit(ctx context.Context, userID, ref string, p Patch) (*models.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sc, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if sc.UserID != userID {
		return nil, ErrNotOwner
	}

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, ErrInvalidTitle
		}
		sc.Title = title
	}
	if p.Date != nil {
		date, err := normalizeDate(*p.Date)
		if err != nil {
			return nil, err
		}
		sc.Date = date
	}
	if p.Time != nil {
		if err := applyTime(sc, *p.Time); err != nil {
			return nil, err
		}
	}
	if p.Description != nil {
		if d := strings.TrimSpace(*p.Description); d != "" {
			sc.Description = &d
		} else {
			sc.Description = nil
		}
	}
	if p.Recurrence != nil {
		if err := applyRecurrence(sc, *p.Recurrence); err != nil {
			return nil, err
		}
	}
	if p.Shared != nil {
		if err := s.applySharing(sc, *p.Shared); err != nil {
			return nil, err
		}
	}

	sc.UpdatedAt = s.clock.Now()
	if err := s.store.UpdateSchedule(sc); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	return sc, nil
}

// Delete removes the owner's schedule referenced by ID or ID prefix.
func (s *Service) Delete(ctx context.Context, userID, ref string) (*models.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sc, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if sc.UserID != userID {
		return nil, ErrNotOwner
	}
	if err := s.store.DeleteSchedule(sc.ID); err != nil {
		return nil, fmt.Errorf("delete schedule: %w", err)
	}
	return sc, nil
}

// Resolve looks a schedule up by exact ID, then by ID prefix.
func (s *Service) Resolve(ref string) (*models.Schedule, error) {
	sc, err := s.store.GetSchedule(ref)
	if err == nil {
		return sc, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	return s.store.GetScheduleByPrefix(ref)
}

func (s *Service) applySharing(sc *models.Schedule, shared bool) error {
	sc.SharedWithFamily = shared
	sc.GroupID = nil
	if !shared {
		return nil
	}
	groups, err := s.store.ListGroupsForUser(sc.UserID)
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}
	if len(groups) > 0 {
		id := groups[0].ID
		sc.GroupID = &id
	}
	return nil
}

func normalizeDate(s string) (string, error) {
	t, err := timeutil.ParseLocalDate(s, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return timeutil.ToLocalDateString(t), nil
}

func applyTime(sc *models.Schedule, hhmm string) error {
	norm, err := timeofday.Normalize(hhmm)
	if err != nil {
		return err
	}
	if norm == "" {
		sc.Time = nil
	} else {
		sc.Time = &norm
	}
	return nil
}

func applyRecurrence(sc *models.Schedule, rule string) error {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		sc.Recurrence = nil
		return nil
	}
	if err := ValidateRecurrence(rule); err != nil {
		return err
	}
	norm := normalizeRule(rule)
	sc.Recurrence = &norm
	return nil
}
