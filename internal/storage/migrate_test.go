// ABOUTME: Tests for storage migration between backends
// ABOUTME: Seeds every table in one SQLite store and verifies the copy in another

package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harper/gachi/internal/models"
)

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// seedTestData populates a store with one row or more in every table.
func seedTestData(t *testing.T, src Store) {
	t.Helper()

	mustNoErr(t, src.CreateProfile(models.NewProfile("u1", "엄마", testNow)))
	mustNoErr(t, src.CreateProfile(models.NewProfile("u2", "아들", testNow.Add(time.Minute))))

	g := models.NewFamilyGroup("우리 가족", "FAM001", "u1", testNow)
	mustNoErr(t, src.CreateGroup(g))
	mustNoErr(t, src.AddMember(models.NewFamilyMember(g.ID, "u1", true, testNow)))
	mustNoErr(t, src.AddMember(models.NewFamilyMember(g.ID, "u2", false, testNow.Add(time.Minute))))

	s := models.NewSchedule("u1", "병원", "2025-02-03", testNow)
	s.Time = strPtr("10:00")
	s.SharedWithFamily = true
	mustNoErr(t, src.CreateSchedule(s))
	mustNoErr(t, src.CreateSchedule(models.NewSchedule("u2", "출장", "2025-02-04", testNow)))

	mustNoErr(t, src.RecordMood(models.NewMoodRecord("u1", models.MoodGood, testNow)))
	mustNoErr(t, src.RecordHealth(models.NewHealthRecord("u1", "steps", "3000", testNow)))

	mustNoErr(t, src.InsertEvents([]*models.CulturalEvent{models.NewCulturalEvent("국악 공연", testNow)}))
	mustNoErr(t, src.InsertSpaces([]*models.CulturalSpace{models.NewCulturalSpace("구립도서관", testNow)}))
}

func TestMigrateData_SQLiteToSQLite(t *testing.T) {
	src := newTestStore(t)
	dst := newTestStore(t)
	seedTestData(t, src)

	summary, err := MigrateData(src, dst)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}

	want := MigrateSummary{Profiles: 2, Groups: 1, Members: 2, Schedules: 2, Moods: 1, Health: 1, Events: 1, Spaces: 1}
	if *summary != want {
		t.Errorf("summary = %+v, want %+v", *summary, want)
	}

	schedules, err := dst.ListSchedules(&ScheduleFilter{UserIDs: []string{"u1"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(schedules) != 1 || schedules[0].TimeOrEmpty() != "10:00" || !schedules[0].SharedWithFamily {
		t.Errorf("migrated schedules = %+v", schedules)
	}

	g, err := dst.GetGroupByInviteCode("FAM001")
	if err != nil {
		t.Fatal(err)
	}
	members, _ := dst.ListMembers(g.ID)
	if len(members) != 2 || !members[0].IsHead {
		t.Errorf("migrated members = %+v", members)
	}

	mood, _ := dst.LatestMood("u1")
	if mood == nil || mood.Mood != models.MoodGood {
		t.Errorf("migrated mood = %+v", mood)
	}
}

func TestMigrateData_EmptySource(t *testing.T) {
	summary, err := MigrateData(newTestStore(t), newTestStore(t))
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}
	if *summary != (MigrateSummary{}) {
		t.Errorf("summary = %+v, want zero", *summary)
	}
}

func TestIsDirNonEmpty(t *testing.T) {
	dir := t.TempDir()

	got, err := IsDirNonEmpty(filepath.Join(dir, "missing"))
	if err != nil || got {
		t.Errorf("missing dir = %v, %v", got, err)
	}

	got, err = IsDirNonEmpty(dir)
	if err != nil || got {
		t.Errorf("empty dir = %v, %v", got, err)
	}

	mustNoErr(t, os.WriteFile(filepath.Join(dir, "x"), []byte("x"), 0644))
	got, err = IsDirNonEmpty(dir)
	if err != nil || !got {
		t.Errorf("non-empty dir = %v, %v", got, err)
	}
}
