// ABOUTME: Health record commands
// ABOUTME: Stores free-form measurements such as blood pressure or steps

package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/config"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Health records",
}

var healthAddCmd = &cobra.Command{
	Use:   "add <type> <value>",
	Short: "Record a measurement",
	Long: `Record a measurement.

Examples:
  gachi health add blood_pressure 120/80
  gachi health add steps 4200 --notes "아침 산책"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, _ := cmd.Flags().GetString("notes")
		rec, err := familyService().RecordHealth(cmd.Context(), cfg.UserID, args[0], args[1], notes)
		if err != nil {
			return fmt.Errorf("failed to record health: %w", err)
		}
		color.Green("✓ %s: %s", rec.RecordType, rec.Value)
		return nil
	},
}

var healthListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent measurements",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("type")
		since, err := sinceFlag(cmd)
		if err != nil {
			return err
		}

		records, err := store.ListHealth(cfg.UserID, 0)
		if err != nil {
			return fmt.Errorf("failed to list health records: %w", err)
		}

		faint := color.New(color.Faint).SprintFunc()
		tbl := uitable.New()
		tbl.Separator = "  "
		shown := 0
		for _, r := range records {
			if kind != "" && !strings.EqualFold(r.RecordType, kind) {
				continue
			}
			if !since.IsZero() && r.RecordedAt.Before(since) {
				continue
			}
			if limit > 0 && shown == limit {
				break
			}
			notes := ""
			if r.Notes != nil {
				notes = faint(*r.Notes)
			}
			tbl.AddRow(faint(r.RecordedAt.In(tz).Format("2006-01-02 15:04")), r.RecordType, r.Value, notes)
			shown++
		}
		if shown == 0 {
			fmt.Println("No health records")
			return nil
		}
		fmt.Fprintln(color.Output, tbl)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.AddCommand(healthAddCmd, healthListCmd)
	healthAddCmd.Flags().String("notes", "", "optional notes")
	healthListCmd.Flags().IntP("limit", "n", config.DefaultListLimit, "max records to show")
	healthListCmd.Flags().String("type", "", "only this record type")
	healthListCmd.Flags().String("since", "", "only records since today, yesterday, week or month")
}
