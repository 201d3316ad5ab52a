// ABOUTME: Today command showing the day's schedules, weather and mood
// ABOUTME: With --watch it redraws whenever a schedule or mood changes in the store

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/config"
	"github.com/harper/gachi/internal/realtime"
	"github.com/harper/gachi/internal/timeutil"
	"github.com/harper/gachi/internal/weather"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's schedules, weather and mood",
	Long: `Show today's schedules (yours and those your family shared), the current
weather in your district and your latest mood check-in.

Use --watch to keep the view open and refresh it when anything changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")
		noWeather, _ := cmd.Flags().GetBool("no-weather")

		if !watch {
			return renderToday(cmd.Context(), !noWeather)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := renderToday(ctx, !noWeather); err != nil {
			return err
		}
		w := realtime.NewWatcher(store, config.DefaultWatchInterval, logger, func(int64) {
			fmt.Print("\033[H\033[2J")
			if err := renderToday(ctx, false); err != nil {
				logger.Warn("refresh failed", "err", err)
			}
		})
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().BoolP("watch", "w", false, "refresh when schedules or moods change")
	todayCmd.Flags().Bool("no-weather", false, "skip the weather lookup")
}

func renderToday(ctx context.Context, withWeather bool) error {
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	now := clock.Now()
	fmt.Println(bold(lang.DayTitle(now)))

	if withWeather {
		wctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		cur, err := weather.NewClient().Current(wctx, cfg.GetDistrict())
		cancel()
		if err != nil {
			logger.Debug("weather lookup failed", "err", err)
		} else {
			fmt.Printf("%s %s\n", cur.String(), faint(cfg.GetDistrict()))
		}
	}
	fmt.Println()

	entries, err := scheduleService().Day(ctx, cfg.UserID, timeutil.Today(clock))
	if err != nil {
		return fmt.Errorf("failed to list schedules: %w", err)
	}
	printEntries(entries)

	mood, err := store.LatestMood(cfg.UserID)
	if err != nil {
		return fmt.Errorf("failed to read mood: %w", err)
	}
	fmt.Println()
	if mood == nil || timeutil.ToLocalDateString(mood.RecordedAt.In(tz)) != timeutil.Today(clock) {
		fmt.Println(faint("No mood check-in today. Try 'gachi mood set good'"))
	} else {
		fmt.Printf("%s %s %s\n", mood.Mood.Emoji(), mood.Mood.Label(), faint(mood.RecordedAt.In(tz).Format("15:04")))
	}
	return nil
}
