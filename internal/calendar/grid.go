// ABOUTME: Sunday-first month grid computation for the calendar views
// ABOUTME: Normalises zero-based month overflow and reports leading blanks and day count

package calendar

import (
	"fmt"
	"time"
)

// MonthGrid describes the layout of one month in a Sunday-first 7-column grid.
type MonthGrid struct {
	Year               int
	Month              int // zero-based, 0 = January
	FirstWeekdayOffset int // 0 = Sunday
	DayCount           int
}

// ComputeMonthGrid returns the grid for a zero-based month. Out-of-range months
// (12, -1, ...) roll over into the neighbouring years.
func ComputeMonthGrid(year, month int) MonthGrid {
	first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	// day 0 of the following month is the last day of this one
	last := time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC)

	return MonthGrid{
		Year:               first.Year(),
		Month:              int(first.Month()) - 1,
		FirstWeekdayOffset: int(first.Weekday()),
		DayCount:           last.Day(),
	}
}

// ForTime returns the grid for the month containing t.
func ForTime(t time.Time) MonthGrid {
	return ComputeMonthGrid(t.Year(), int(t.Month())-1)
}

// Cells returns FirstWeekdayOffset zeros followed by 1..DayCount.
// No trailing padding is added.
func (g MonthGrid) Cells() []int {
	cells := make([]int, 0, g.FirstWeekdayOffset+g.DayCount)
	for i := 0; i < g.FirstWeekdayOffset; i++ {
		cells = append(cells, 0)
	}
	for d := 1; d <= g.DayCount; d++ {
		cells = append(cells, d)
	}
	return cells
}

// Weeks chunks Cells into rows of 7. The final row may be shorter.
func (g MonthGrid) Weeks() [][]int {
	cells := g.Cells()
	var weeks [][]int
	for len(cells) > 0 {
		n := 7
		if len(cells) < n {
			n = len(cells)
		}
		weeks = append(weeks, cells[:n:n])
		cells = cells[n:]
	}
	return weeks
}

// Prev returns the previous month's grid.
func (g MonthGrid) Prev() MonthGrid {
	return ComputeMonthGrid(g.Year, g.Month-1)
}

// Next returns the following month's grid.
func (g MonthGrid) Next() MonthGrid {
	return ComputeMonthGrid(g.Year, g.Month+1)
}

// DateString returns YYYY-MM-DD for a day number within the month.
func (g MonthGrid) DateString(day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", g.Year, g.Month+1, day)
}

// DateRange returns the first and last dates of the month as YYYY-MM-DD.
func (g MonthGrid) DateRange() (string, string) {
	return g.DateString(1), g.DateString(g.DayCount)
}

// ParseMonth parses "YYYY-MM" into a grid.
func ParseMonth(s string) (MonthGrid, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthGrid{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return ForTime(t), nil
}

// String returns the month as YYYY-MM.
func (g MonthGrid) String() string {
	return fmt.Sprintf("%04d-%02d", g.Year, g.Month+1)
}
