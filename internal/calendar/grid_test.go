// ABOUTME: Tests for month grid computation
// ABOUTME: Covers leap years, month roll-over and the cell layout contract

package calendar

import (
	"testing"
	"time"
)

func TestComputeMonthGrid_DayCounts(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		want  int
	}{
		{"feb leap 2024", 2024, 1, 29},
		{"feb common 2023", 2023, 1, 28},
		{"feb leap 2000", 2000, 1, 29},
		{"feb common 1900", 1900, 1, 28},
		{"january", 2025, 0, 31},
		{"april", 2025, 3, 30},
		{"december", 2025, 11, 31},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := ComputeMonthGrid(tc.year, tc.month)
			if g.DayCount != tc.want {
				t.Errorf("DayCount = %d, want %d", g.DayCount, tc.want)
			}
		})
	}
}

func TestComputeMonthGrid_Offset(t *testing.T) {
	// 2025-02-01 is a Saturday
	g := ComputeMonthGrid(2025, 1)
	if g.FirstWeekdayOffset != 6 {
		t.Errorf("FirstWeekdayOffset = %d, want 6", g.FirstWeekdayOffset)
	}
	if g.DayCount != 28 {
		t.Errorf("DayCount = %d, want 28", g.DayCount)
	}

	// 2023-01-01 is a Sunday
	if got := ComputeMonthGrid(2023, 0).FirstWeekdayOffset; got != 0 {
		t.Errorf("2023-01 offset = %d, want 0", got)
	}
}

func TestComputeMonthGrid_RollOver(t *testing.T) {
	next := ComputeMonthGrid(2024, 12)
	if next.Year != 2025 || next.Month != 0 {
		t.Errorf("month 12 -> %d/%d, want 2025/0", next.Year, next.Month)
	}
	if next != ComputeMonthGrid(2025, 0) {
		t.Errorf("month 12 grid = %+v, want January 2025", next)
	}

	prev := ComputeMonthGrid(2025, -1)
	if prev.Year != 2024 || prev.Month != 11 || prev.DayCount != 31 {
		t.Errorf("month -1 -> %+v, want December 2024", prev)
	}

	g := ComputeMonthGrid(2024, 11)
	if g.Next() != ComputeMonthGrid(2025, 0) {
		t.Errorf("Next() from December = %+v", g.Next())
	}
	if ComputeMonthGrid(2025, 0).Prev() != g {
		t.Errorf("Prev() from January = %+v", ComputeMonthGrid(2025, 0).Prev())
	}
}

func TestComputeMonthGrid_Sweep(t *testing.T) {
	for year := 1900; year <= 2100; year++ {
		for month := 0; month < 12; month++ {
			g := ComputeMonthGrid(year, month)
			if g.FirstWeekdayOffset < 0 || g.FirstWeekdayOffset > 6 {
				t.Fatalf("%d-%d offset %d out of range", year, month, g.FirstWeekdayOffset)
			}
			if g.DayCount < 28 || g.DayCount > 31 {
				t.Fatalf("%d-%d day count %d out of range", year, month, g.DayCount)
			}

			// the day after the last day belongs to the next month
			last := time.Date(year, time.Month(month+1), g.DayCount, 0, 0, 0, 0, time.UTC)
			if last.AddDate(0, 0, 1).Day() != 1 {
				t.Fatalf("%d-%d day count %d is not the last day", year, month, g.DayCount)
			}

			// next month starts where this one ends
			want := (g.FirstWeekdayOffset + g.DayCount) % 7
			if got := g.Next().FirstWeekdayOffset; got != want {
				t.Fatalf("%d-%d next offset %d, want %d", year, month, got, want)
			}
		}
	}
}

func TestCellsAndWeeks(t *testing.T) {
	g := ComputeMonthGrid(2025, 1)
	cells := g.Cells()
	if len(cells) != 6+28 {
		t.Fatalf("len(cells) = %d, want 34", len(cells))
	}
	for i := 0; i < 6; i++ {
		if cells[i] != 0 {
			t.Errorf("cells[%d] = %d, want blank", i, cells[i])
		}
	}
	if cells[6] != 1 || cells[len(cells)-1] != 28 {
		t.Errorf("cells run %d..%d, want 1..28", cells[6], cells[len(cells)-1])
	}

	weeks := g.Weeks()
	if len(weeks) != 5 {
		t.Fatalf("len(weeks) = %d, want 5", len(weeks))
	}
	if len(weeks[4]) != 6 {
		t.Errorf("last week length = %d, want 6 (no trailing padding)", len(weeks[4]))
	}
	for i, w := range weeks[:4] {
		if len(w) != 7 {
			t.Errorf("week %d length = %d, want 7", i, len(w))
		}
	}
}

func TestDateRangeAndParse(t *testing.T) {
	g, err := ParseMonth("2024-02")
	if err != nil {
		t.Fatalf("ParseMonth error: %v", err)
	}
	from, to := g.DateRange()
	if from != "2024-02-01" || to != "2024-02-29" {
		t.Errorf("DateRange() = %s..%s", from, to)
	}
	if g.String() != "2024-02" {
		t.Errorf("String() = %q", g.String())
	}

	if _, err := ParseMonth("2024/02"); err == nil {
		t.Error("expected error for bad month")
	}
}
