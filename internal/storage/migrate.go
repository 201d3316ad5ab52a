// ABOUTME: Data migration between gachi storage backends
// ABOUTME: Copies every table from a source store to an empty destination store

package storage

import (
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Profiles  int
	Groups    int
	Members   int
	Schedules int
	Moods     int
	Health    int
	Events    int
	Spaces    int
}

// MigrateData copies all data from src to dst storage. Groups are copied
// before their members; the destination should be empty.
func MigrateData(src, dst Store) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	profiles, err := src.ListProfiles(nil)
	if err != nil {
		return nil, fmt.Errorf("list source profiles: %w", err)
	}
	for _, p := range profiles {
		if err := dst.CreateProfile(p); err != nil {
			return nil, fmt.Errorf("create profile %s: %w", p.UserID, err)
		}
		summary.Profiles++
	}

	groups, err := src.ListGroups()
	if err != nil {
		return nil, fmt.Errorf("list source groups: %w", err)
	}
	for _, g := range groups {
		if err := dst.CreateGroup(g); err != nil {
			return nil, fmt.Errorf("create group %q: %w", g.Name, err)
		}
		summary.Groups++

		members, err := src.ListMembers(g.ID)
		if err != nil {
			return nil, fmt.Errorf("list members of %s: %w", g.ID, err)
		}
		for _, m := range members {
			if err := dst.AddMember(m); err != nil {
				return nil, fmt.Errorf("add member %s to %s: %w", m.UserID, g.ID, err)
			}
			summary.Members++
		}
	}

	schedules, err := src.ListSchedules(nil)
	if err != nil {
		return nil, fmt.Errorf("list source schedules: %w", err)
	}
	for _, s := range schedules {
		if err := dst.CreateSchedule(s); err != nil {
			return nil, fmt.Errorf("create schedule %s: %w", s.ID, err)
		}
		summary.Schedules++
	}

	moods, err := src.ListMoods("", 0)
	if err != nil {
		return nil, fmt.Errorf("list source moods: %w", err)
	}
	for _, m := range moods {
		if err := dst.RecordMood(m); err != nil {
			return nil, fmt.Errorf("record mood %s: %w", m.ID, err)
		}
		summary.Moods++
	}

	health, err := src.ListHealth("", 0)
	if err != nil {
		return nil, fmt.Errorf("list source health records: %w", err)
	}
	for _, h := range health {
		if err := dst.RecordHealth(h); err != nil {
			return nil, fmt.Errorf("record health %s: %w", h.ID, err)
		}
		summary.Health++
	}

	events, err := src.ListEvents(nil)
	if err != nil {
		return nil, fmt.Errorf("list source events: %w", err)
	}
	if len(events) > 0 {
		if err := dst.InsertEvents(events); err != nil {
			return nil, fmt.Errorf("insert events: %w", err)
		}
		summary.Events = len(events)
	}

	spaces, err := src.ListSpaces("", 0)
	if err != nil {
		return nil, fmt.Errorf("list source spaces: %w", err)
	}
	if len(spaces) > 0 {
		if err := dst.InsertSpaces(spaces); err != nil {
			return nil, fmt.Errorf("insert spaces: %w", err)
		}
		summary.Spaces = len(spaces)
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
