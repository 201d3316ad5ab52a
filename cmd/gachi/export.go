// ABOUTME: Export command writing your schedules as iCalendar or YAML
// ABOUTME: Writes to stdout or to a file given with --output

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/export"
	"github.com/harper/gachi/internal/storage"
	"github.com/harper/gachi/internal/timeutil"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export your schedules",
	Long: `Export your schedules as iCalendar (for phone and desktop calendars) or YAML.

Examples:
  gachi export --format ics -o gachi.ics
  gachi export --format yaml --from 2025-01-01 --to 2025-12-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		filter := &storage.ScheduleFilter{UserIDs: []string{cfg.UserID}}
		var err error
		if from != "" {
			if filter.From, err = timeutil.ParseDay(clock, from); err != nil {
				return err
			}
		}
		if to != "" {
			if filter.To, err = timeutil.ParseDay(clock, to); err != nil {
				return err
			}
		}

		schedules, err := store.ListSchedules(filter)
		if err != nil {
			return fmt.Errorf("failed to list schedules: %w", err)
		}

		var w io.Writer = os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}

		if err := export.Write(w, strings.ToLower(format), schedules, tz, clock.Now()); err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}
		if output != "" {
			color.Green("✓ Exported %d schedules to %s", len(schedules), output)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "f", "ics", "output format: "+strings.Join(export.Formats, ", "))
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	exportCmd.Flags().String("from", "", "first date to include")
	exportCmd.Flags().String("to", "", "last date to include")
}
