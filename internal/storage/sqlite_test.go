// ABOUTME: Tests for SQLite storage implementation
// ABOUTME: Covers schedule CRUD and ordering, groups, check-ins, catalogue batches and the change counter

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harper/gachi/internal/models"
)

var testNow = time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}

	v, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != 2 {
		t.Errorf("schema version = %d, want 2", v)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	s := models.NewSchedule("u1", "산책", "2025-02-03", testNow)
	if err := store.CreateSchedule(s); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()
	if _, err := store.GetSchedule(s.ID); err != nil {
		t.Errorf("GetSchedule after reopen: %v", err)
	}
}

func TestScheduleCRUD(t *testing.T) {
	store := newTestStore(t)

	s := models.NewSchedule("u1", "병원 예약", "2025-02-03", testNow)
	s.Time = strPtr("14:30")
	s.Description = strPtr("내과")
	s.SharedWithFamily = true

	if err := store.CreateSchedule(s); err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	got, err := store.GetSchedule(s.ID)
	if err != nil {
		t.Fatalf("GetSchedule failed: %v", err)
	}
	if got.Title != s.Title || got.TimeOrEmpty() != "14:30" || !got.SharedWithFamily {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.DescriptionOrEmpty() != "내과" {
		t.Errorf("Description = %q", got.DescriptionOrEmpty())
	}

	got, err = store.GetScheduleByPrefix(s.ID[:8])
	if err != nil {
		t.Fatalf("GetScheduleByPrefix failed: %v", err)
	}
	if got.ID != s.ID {
		t.Errorf("ID mismatch: got %q, want %q", got.ID, s.ID)
	}

	if _, err := store.GetScheduleByPrefix("abc"); err == nil {
		t.Error("expected error for short prefix")
	}
	for _, wild := range []string{"______", "%%%%%%", s.ID[:5] + "%"} {
		if _, err := store.GetScheduleByPrefix(wild); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetScheduleByPrefix(%q) error = %v, want ErrNotFound", wild, err)
		}
	}

	s.Title = "치과 예약"
	s.Time = nil
	if err := store.UpdateSchedule(s); err != nil {
		t.Fatalf("UpdateSchedule failed: %v", err)
	}
	got, _ = store.GetSchedule(s.ID)
	if got.Title != "치과 예약" || got.Time != nil {
		t.Errorf("update not applied: %+v", got)
	}

	if err := store.DeleteSchedule(s.ID); err != nil {
		t.Fatalf("DeleteSchedule failed: %v", err)
	}
	if _, err := store.GetSchedule(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSchedule after delete error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteSchedule(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestListSchedules_FilterAndOrder(t *testing.T) {
	store := newTestStore(t)

	mk := func(user, title, date, tm string, shared bool) {
		s := models.NewSchedule(user, title, date, testNow)
		if tm != "" {
			s.Time = strPtr(tm)
		}
		s.SharedWithFamily = shared
		if err := store.CreateSchedule(s); err != nil {
			t.Fatal(err)
		}
	}
	mk("u1", "untimed", "2025-02-03", "", false)
	mk("u1", "afternoon", "2025-02-03", "14:00", false)
	mk("u1", "morning", "2025-02-03", "09:30", false)
	mk("u2", "shared", "2025-02-03", "11:00", true)
	mk("u2", "private", "2025-02-03", "12:00", false)
	mk("u1", "next month", "2025-03-01", "", false)

	got, err := store.ListSchedules(&ScheduleFilter{UserIDs: []string{"u1"}, Date: "2025-02-03"})
	if err != nil {
		t.Fatalf("ListSchedules failed: %v", err)
	}
	want := []string{"morning", "afternoon", "untimed"}
	if len(got) != len(want) {
		t.Fatalf("got %d schedules, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Title != w {
			t.Errorf("position %d = %q, want %q", i, got[i].Title, w)
		}
	}

	shared, err := store.ListSchedules(&ScheduleFilter{UserIDs: []string{"u2"}, SharedOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(shared) != 1 || shared[0].Title != "shared" {
		t.Errorf("shared = %v", shared)
	}

	feb, err := store.ListSchedules(&ScheduleFilter{From: "2025-02-01", To: "2025-02-28"})
	if err != nil {
		t.Fatal(err)
	}
	if len(feb) != 5 {
		t.Errorf("february count = %d, want 5", len(feb))
	}

	all, err := store.ListSchedules(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 6 {
		t.Errorf("all count = %d, want 6", len(all))
	}
}

func TestChangeVersion(t *testing.T) {
	store := newTestStore(t)

	v0, err := store.ChangeVersion()
	if err != nil {
		t.Fatalf("ChangeVersion failed: %v", err)
	}

	s := models.NewSchedule("u1", "a", "2025-02-03", testNow)
	if err := store.CreateSchedule(s); err != nil {
		t.Fatal(err)
	}
	v1, _ := store.ChangeVersion()
	if v1 <= v0 {
		t.Errorf("version did not increase on insert: %d -> %d", v0, v1)
	}

	if err := store.DeleteSchedule(s.ID); err != nil {
		t.Fatal(err)
	}
	v2, _ := store.ChangeVersion()
	if v2 <= v1 {
		t.Errorf("version did not increase on delete: %d -> %d", v1, v2)
	}

	if err := store.RecordMood(models.NewMoodRecord("u1", models.MoodGood, testNow)); err != nil {
		t.Fatal(err)
	}
	v3, _ := store.ChangeVersion()
	if v3 <= v2 {
		t.Errorf("version did not increase on mood: %d -> %d", v2, v3)
	}
}

func TestProfiles(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetProfile("u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetProfile on empty store error = %v, want ErrNotFound", err)
	}

	p := models.NewProfile("u1", "김영희", testNow)
	p.District = strPtr("종로구")
	if err := store.CreateProfile(p); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	if err := store.CreateProfile(models.NewProfile("u1", "dup", testNow)); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate profile error = %v, want ErrAlreadyExists", err)
	}

	p.DisplayName = "김영희 할머니"
	if err := store.UpdateProfile(p); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	got, err := store.GetProfile("u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.DisplayName != "김영희 할머니" || got.DistrictOrEmpty() != "종로구" {
		t.Errorf("profile = %+v", got)
	}

	if err := store.CreateProfile(models.NewProfile("u2", "", testNow.Add(time.Minute))); err != nil {
		t.Fatal(err)
	}
	list, err := store.ListProfiles([]string{"u2"})
	if err != nil || len(list) != 1 || list[0].DisplayName != models.DefaultDisplayName {
		t.Errorf("ListProfiles(u2) = %v, %v", list, err)
	}
	all, _ := store.ListProfiles(nil)
	if len(all) != 2 {
		t.Errorf("ListProfiles(nil) count = %d, want 2", len(all))
	}
}

func TestGroupsAndMembers(t *testing.T) {
	store := newTestStore(t)

	g := models.NewFamilyGroup("우리 가족", "ABC123", "u1", testNow)
	if err := store.CreateGroup(g); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	dup := models.NewFamilyGroup("other", "ABC123", "u9", testNow)
	if err := store.CreateGroup(dup); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate invite code error = %v, want ErrAlreadyExists", err)
	}

	got, err := store.GetGroupByInviteCode(" abc123 ")
	if err != nil {
		t.Fatalf("GetGroupByInviteCode failed: %v", err)
	}
	if got.ID != g.ID {
		t.Errorf("group ID = %q, want %q", got.ID, g.ID)
	}

	if err := store.AddMember(models.NewFamilyMember(g.ID, "u1", true, testNow)); err != nil {
		t.Fatal(err)
	}
	if err := store.AddMember(models.NewFamilyMember(g.ID, "u2", false, testNow.Add(time.Minute))); err != nil {
		t.Fatal(err)
	}
	err = store.AddMember(models.NewFamilyMember(g.ID, "u2", false, testNow))
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate member error = %v, want ErrAlreadyExists", err)
	}

	members, err := store.ListMembers(g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 || !members[0].IsHead || members[1].UserID != "u2" {
		t.Errorf("members = %+v", members)
	}

	groups, err := store.ListGroupsForUser("u2")
	if err != nil || len(groups) != 1 {
		t.Fatalf("ListGroupsForUser = %v, %v", groups, err)
	}

	if err := store.RemoveMember(g.ID, "u2"); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	groups, _ = store.ListGroupsForUser("u2")
	if len(groups) != 0 {
		t.Errorf("u2 still in %d groups", len(groups))
	}
	if err := store.RemoveMember(g.ID, "u2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveMember error = %v, want ErrNotFound", err)
	}

	if err := store.DeleteGroup(g.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if _, err := store.GetGroup(g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetGroup after delete error = %v, want ErrNotFound", err)
	}
	if members, _ := store.ListMembers(g.ID); len(members) != 0 {
		t.Errorf("members left after DeleteGroup: %+v", members)
	}
	if err := store.DeleteGroup(g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteGroup error = %v, want ErrNotFound", err)
	}
}

func TestMoodsAndHealth(t *testing.T) {
	store := newTestStore(t)

	latest, err := store.LatestMood("u1")
	if err != nil || latest != nil {
		t.Fatalf("LatestMood on empty = %v, %v", latest, err)
	}

	_ = store.RecordMood(models.NewMoodRecord("u1", models.MoodBad, testNow))
	_ = store.RecordMood(models.NewMoodRecord("u1", models.MoodGood, testNow.Add(time.Hour)))
	_ = store.RecordMood(models.NewMoodRecord("u2", models.MoodOkay, testNow.Add(2*time.Hour)))

	latest, err = store.LatestMood("u1")
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.Mood != models.MoodGood {
		t.Errorf("LatestMood = %+v, want good", latest)
	}

	all, _ := store.ListMoods("", 0)
	if len(all) != 3 {
		t.Errorf("ListMoods count = %d, want 3", len(all))
	}

	h := models.NewHealthRecord("u1", "blood_pressure", "120/80", testNow)
	h.Notes = strPtr("아침")
	if err := store.RecordHealth(h); err != nil {
		t.Fatal(err)
	}
	_ = store.RecordHealth(models.NewHealthRecord("u1", "steps", "4000", testNow.Add(time.Hour)))

	list, err := store.ListHealth("u1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].RecordType != "steps" {
		t.Errorf("ListHealth(limit 1) = %+v", list)
	}
}

func TestCatalogue(t *testing.T) {
	store := newTestStore(t)

	mkEvent := func(title, district, start, end string) *models.CulturalEvent {
		e := models.NewCulturalEvent(title, testNow)
		e.District, e.StartDate, e.EndDate = district, start, end
		return e
	}
	events := []*models.CulturalEvent{
		mkEvent("late", "종로구", "2025-03-01", "2025-03-10"),
		mkEvent("early", "종로구", "2025-02-01", "2025-02-20"),
		mkEvent("past", "종로구", "2025-01-01", "2025-01-05"),
		mkEvent("elsewhere", "강남구", "2025-02-01", "2025-02-20"),
	}
	lat := 37.57
	events[0].Latitude = &lat
	events[0].IsFree = true

	if err := store.InsertEvents(events); err != nil {
		t.Fatalf("InsertEvents failed: %v", err)
	}

	got, err := store.ListEvents(&EventFilter{District: "종로구", EndingAfter: "2025-02-03", Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Title != "early" || got[1].Title != "late" {
		t.Fatalf("ListEvents = %v", got)
	}
	if got[1].Latitude == nil || *got[1].Latitude != lat || !got[1].IsFree {
		t.Errorf("event fields lost: %+v", got[1])
	}

	// a batch with a duplicate ID is rejected as a whole
	bad := []*models.CulturalEvent{mkEvent("new", "종로구", "", ""), events[0]}
	if err := store.InsertEvents(bad); err == nil {
		t.Error("expected duplicate batch to fail")
	}
	all, _ := store.ListEvents(nil)
	if len(all) != 4 {
		t.Errorf("event count after failed batch = %d, want 4", len(all))
	}

	sp := models.NewCulturalSpace("종로도서관", testNow)
	sp.District = "종로구"
	sp2 := models.NewCulturalSpace("강남미술관", testNow)
	sp2.District = "강남구"
	if err := store.InsertSpaces([]*models.CulturalSpace{sp, sp2}); err != nil {
		t.Fatal(err)
	}
	spaces, err := store.ListSpaces("종로구", 3)
	if err != nil || len(spaces) != 1 || spaces[0].Name != "종로도서관" {
		t.Errorf("ListSpaces = %v, %v", spaces, err)
	}
}
