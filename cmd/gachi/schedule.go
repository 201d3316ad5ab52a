// ABOUTME: Schedule commands for adding, listing, editing and deleting schedules
// ABOUTME: Supports the interactive time picker and family sharing flags

package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/schedule"
	"github.com/harper/gachi/internal/timeofday"
	"github.com/harper/gachi/internal/timeutil"
	"github.com/harper/gachi/internal/tui"
)

var scheduleCmd = &cobra.Command{
	Use:     "schedule",
	Aliases: []string{"sched", "s"},
	Short:   "Manage schedules",
	Long:    "Add, list, edit and delete schedules. Shared schedules appear on family members' calendars.",
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a schedule",
	Long: `Add a schedule on a date, optionally at a time.

Examples:
  gachi schedule add "병원 예약" --date 2025-02-14 --time 14:30
  gachi schedule add "경로당 모임" --date tomorrow --pick-time --shared
  gachi schedule add "수영" --repeat "FREQ=WEEKLY;BYDAY=TU,TH"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dateArg, _ := cmd.Flags().GetString("date")
		at, _ := cmd.Flags().GetString("time")
		desc, _ := cmd.Flags().GetString("desc")
		shared, _ := cmd.Flags().GetBool("shared")
		repeat, _ := cmd.Flags().GetString("repeat")
		pick, _ := cmd.Flags().GetBool("pick-time")

		date, err := timeutil.ParseDay(clock, dateArg)
		if err != nil {
			return err
		}

		if pick {
			value, ok, err := tui.RunTimePicker(at, lang)
			if err != nil {
				return fmt.Errorf("time picker: %w", err)
			}
			if !ok {
				fmt.Println("Canceled.")
				return nil
			}
			at = value
		}

		sc, err := scheduleService().Add(cmd.Context(), schedule.AddInput{
			UserID:      cfg.UserID,
			Title:       strings.Join(args, " "),
			Date:        date,
			Time:        at,
			Description: desc,
			Shared:      shared,
			Recurrence:  repeat,
		})
		if err != nil {
			return fmt.Errorf("failed to add schedule: %w", err)
		}

		color.Green("✓ Added %s", sc.Title)
		fmt.Printf("  %s %s\n", sc.Date, timeofday.FormatDisplay(sc.TimeOrEmpty(), lang))
		fmt.Printf("  ID: %s\n", shortID(sc.ID))
		return nil
	},
}

var scheduleListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List schedules for a day",
	Long:    "List your schedules for a day together with schedules your family has shared.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dateArg, _ := cmd.Flags().GetString("date")
		date, err := timeutil.ParseDay(clock, dateArg)
		if err != nil {
			return err
		}

		entries, err := scheduleService().Day(cmd.Context(), cfg.UserID, date)
		if err != nil {
			return fmt.Errorf("failed to list schedules: %w", err)
		}

		day, _ := timeutil.ParseLocalDate(date, tz)
		fmt.Println(color.New(color.Bold).Sprint(lang.DayTitle(day)))
		printEntries(entries)
		return nil
	},
}

var scheduleShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scheduleService().Resolve(args[0])
		if err != nil {
			return fmt.Errorf("failed to find schedule: %w", err)
		}

		faint := color.New(color.Faint).SprintFunc()
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.AddRow(faint("ID"), sc.ID)
		tbl.AddRow(faint("Title"), sc.Title)
		tbl.AddRow(faint("Date"), sc.Date)
		tbl.AddRow(faint("Time"), timeofday.FormatDisplay(sc.TimeOrEmpty(), lang))
		if d := sc.DescriptionOrEmpty(); d != "" {
			tbl.AddRow(faint("Notes"), d)
		}
		if sc.Recurrence != nil {
			tbl.AddRow(faint("Repeats"), *sc.Recurrence)
		}
		tbl.AddRow(faint("Shared"), yesNo(sc.SharedWithFamily))
		fmt.Fprintln(color.Output, tbl)
		return nil
	},
}

var scheduleEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a schedule",
	Long: `Edit one of your schedules. Only the flags you pass are changed.
Pass an empty --time or --repeat to clear it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var p schedule.Patch
		flags := cmd.Flags()
		if flags.Changed("title") {
			v, _ := flags.GetString("title")
			p.Title = &v
		}
		if flags.Changed("date") {
			v, _ := flags.GetString("date")
			date, err := timeutil.ParseDay(clock, v)
			if err != nil {
				return err
			}
			p.Date = &date
		}
		if flags.Changed("time") {
			v, _ := flags.GetString("time")
			p.Time = &v
		}
		if flags.Changed("desc") {
			v, _ := flags.GetString("desc")
			p.Description = &v
		}
		if flags.Changed("shared") {
			v, _ := flags.GetBool("shared")
			p.Shared = &v
		}
		if flags.Changed("repeat") {
			v, _ := flags.GetString("repeat")
			p.Recurrence = &v
		}

		svc := scheduleService()
		if pick, _ := flags.GetBool("pick-time"); pick {
			current, err := svc.Resolve(args[0])
			if err != nil {
				return fmt.Errorf("failed to find schedule: %w", err)
			}
			value, ok, err := tui.RunTimePicker(current.TimeOrEmpty(), lang)
			if err != nil {
				return fmt.Errorf("time picker: %w", err)
			}
			if !ok {
				fmt.Println("Canceled.")
				return nil
			}
			p.Time = &value
		}

		sc, err := svc.Edit(cmd.Context(), cfg.UserID, args[0], p)
		if err != nil {
			return fmt.Errorf("failed to edit schedule: %w", err)
		}
		color.Green("✓ Updated %s (%s %s)", sc.Title, sc.Date, timeofday.FormatDisplay(sc.TimeOrEmpty(), lang))
		return nil
	},
}

var scheduleDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a schedule",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scheduleService().Delete(cmd.Context(), cfg.UserID, args[0])
		if err != nil {
			return fmt.Errorf("failed to delete schedule: %w", err)
		}
		color.Green("✓ Deleted %s (%s)", sc.Title, sc.Date)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(scheduleAddCmd, scheduleListCmd, scheduleShowCmd, scheduleEditCmd, scheduleDeleteCmd)

	for _, c := range []*cobra.Command{scheduleAddCmd, scheduleEditCmd} {
		c.Flags().StringP("date", "d", "today", "date: today, tomorrow or YYYY-MM-DD")
		c.Flags().StringP("time", "t", "", "time as HH:MM (24-hour)")
		c.Flags().String("desc", "", "notes")
		c.Flags().Bool("shared", false, "share with your family group")
		c.Flags().String("repeat", "", "repeat rule, e.g. FREQ=WEEKLY;BYDAY=MO")
		c.Flags().Bool("pick-time", false, "choose the time interactively")
		c.MarkFlagsMutuallyExclusive("time", "pick-time")
	}
	scheduleEditCmd.Flags().String("title", "", "new title")

	scheduleListCmd.Flags().StringP("date", "d", "today", "date: today, tomorrow, yesterday or YYYY-MM-DD")
}

// printEntries renders one day's entries as a table.
func printEntries(entries []schedule.Entry) {
	if len(entries) == 0 {
		fmt.Println("No schedules")
		return
	}

	faint := color.New(color.Faint).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	for _, e := range entries {
		when := timeofday.FormatDisplay(e.TimeOrEmpty(), lang)
		if e.TimeOrEmpty() == "" {
			when = faint(allDayLabel())
		}
		title := e.Title
		if e.Recurrence != nil {
			title += " ↻"
		}
		owner := ""
		if !e.Mine {
			owner = cyan(e.OwnerName)
		}
		tbl.AddRow(faint(shortID(e.ID)), when, title, owner)
	}
	fmt.Fprintln(color.Output, tbl)
}

func allDayLabel() string {
	if lang.Code == "ko" {
		return "종일"
	}
	return "all day"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
