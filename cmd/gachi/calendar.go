// ABOUTME: Calendar command rendering a Sunday-first month grid
// ABOUTME: Marks days that have schedules and lists them below the grid

package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/calendar"
	"github.com/harper/gachi/internal/schedule"
)

var calendarCmd = &cobra.Command{
	Use:     "calendar",
	Aliases: []string{"cal"},
	Short:   "Show a month calendar",
	Long: `Show a month as a Sunday-first grid. Days with schedules are highlighted.

Use --member to look at a family member's calendar; only schedules they
shared with the family are shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		month, _ := cmd.Flags().GetString("month")
		member, _ := cmd.Flags().GetString("member")

		grid := calendar.ForTime(clock.Now())
		if month != "" {
			g, err := calendar.ParseMonth(month)
			if err != nil {
				return err
			}
			grid = g
		}

		svc := scheduleService()
		var view *schedule.MonthView
		var err error
		if member != "" {
			view, err = svc.MemberMonth(cmd.Context(), cfg.UserID, member, grid.Year, grid.Month)
		} else {
			view, err = svc.Month(cmd.Context(), cfg.UserID, grid.Year, grid.Month)
		}
		if err != nil {
			return fmt.Errorf("failed to load month: %w", err)
		}

		renderMonth(view)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(calendarCmd)
	calendarCmd.Flags().StringP("month", "m", "", "month as YYYY-MM (default: this month)")
	calendarCmd.Flags().String("member", "", "show a family member's shared schedules")
}

func renderMonth(view *schedule.MonthView) {
	g := view.Grid
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	busy := color.New(color.FgCyan, color.Bold).SprintFunc()
	today := color.New(color.ReverseVideo).SprintFunc()

	fmt.Println(bold(lang.MonthTitle(g.Year, time.Month(g.Month+1))))

	header := make([]string, 0, 7)
	for i, wd := range lang.Weekdays {
		label := fmt.Sprintf("%3s", wd)
		if i == 0 {
			label = color.RedString(label)
		}
		header = append(header, label)
	}
	fmt.Println(strings.Join(header, " "))

	now := clock.Now()
	isThisMonth := now.Year() == g.Year && int(now.Month())-1 == g.Month
	for _, week := range g.Weeks() {
		cells := make([]string, 0, len(week))
		for _, day := range week {
			if day == 0 {
				cells = append(cells, "   ")
				continue
			}
			cell := fmt.Sprintf("%3d", day)
			switch {
			case isThisMonth && day == now.Day():
				cell = today(cell)
			case len(view.Days[day]) > 0:
				cell = busy(cell)
			}
			cells = append(cells, cell)
		}
		fmt.Println(strings.Join(cells, " "))
	}

	days := make([]int, 0, len(view.Days))
	for d := range view.Days {
		days = append(days, d)
	}
	sort.Ints(days)
	if len(days) > 0 {
		fmt.Println()
	}
	for _, d := range days {
		fmt.Println(faint(g.DateString(d)))
		printEntries(view.Days[d])
	}
}
