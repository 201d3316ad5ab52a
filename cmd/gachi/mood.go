// ABOUTME: Mood check-in commands
// ABOUTME: Records good/okay/bad moods and shows recent check-ins

package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/config"
	"github.com/harper/gachi/internal/models"
	"github.com/harper/gachi/internal/timeutil"
)

var moodCmd = &cobra.Command{
	Use:   "mood",
	Short: "Mood check-ins",
	Long:  "Record how you feel today. Your family sees your latest mood next to your name.",
}

var moodSetCmd = &cobra.Command{
	Use:       "set <good|okay|bad>",
	Short:     "Record today's mood",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(models.MoodGood), string(models.MoodOkay), string(models.MoodBad)},
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := familyService().RecordMood(cmd.Context(), cfg.UserID, args[0])
		if err != nil {
			return fmt.Errorf("failed to record mood: %w", err)
		}
		color.Green("✓ %s %s", rec.Mood.Emoji(), rec.Mood.Label())
		return nil
	},
}

var moodShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show recent mood check-ins",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		since, err := sinceFlag(cmd)
		if err != nil {
			return err
		}
		moods, err := store.ListMoods(cfg.UserID, limit)
		if err != nil {
			return fmt.Errorf("failed to list moods: %w", err)
		}
		moods = moodsSince(moods, since)
		if len(moods) == 0 {
			fmt.Println("No mood check-ins yet")
			return nil
		}

		faint := color.New(color.Faint).SprintFunc()
		tbl := uitable.New()
		tbl.Separator = "  "
		for _, m := range moods {
			tbl.AddRow(faint(m.RecordedAt.In(tz).Format("2006-01-02 15:04")), m.Mood.Emoji(), m.Mood.Label())
		}
		fmt.Fprintln(color.Output, tbl)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(moodCmd)
	moodCmd.AddCommand(moodSetCmd, moodShowCmd)
	moodShowCmd.Flags().IntP("limit", "n", config.DefaultListLimit, "max check-ins to show")
	moodShowCmd.Flags().String("since", "", "only check-ins since today, yesterday, week or month")
}

// sinceFlag resolves --since to the start of the named period. Zero means no filter.
func sinceFlag(cmd *cobra.Command) (time.Time, error) {
	period, _ := cmd.Flags().GetString("since")
	if period == "" {
		return time.Time{}, nil
	}
	start, ok := timeutil.ParsePeriod(clock, period)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid --since %q (want today, yesterday, week or month)", period)
	}
	return start, nil
}

func moodsSince(moods []*models.MoodRecord, since time.Time) []*models.MoodRecord {
	if since.IsZero() {
		return moods
	}
	var kept []*models.MoodRecord
	for _, m := range moods {
		if !m.RecordedAt.Before(since) {
			kept = append(kept, m)
		}
	}
	return kept
}
