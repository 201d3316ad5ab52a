// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads config, opens the configured store and builds the shared services

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/config"
	"github.com/harper/gachi/internal/family"
	"github.com/harper/gachi/internal/locale"
	"github.com/harper/gachi/internal/logging"
	"github.com/harper/gachi/internal/recommend"
	"github.com/harper/gachi/internal/schedule"
	"github.com/harper/gachi/internal/storage"
	"github.com/harper/gachi/internal/timeutil"
)

// noStore marks commands that manage config or storage themselves.
const noStore = "no-store"

var (
	verbose bool

	cfg       *config.Config
	store     storage.Store
	logger    *log.Logger
	logCloser io.Closer
	clock     timeutil.Clock
	tz        *time.Location
	lang      locale.Locale
)

var rootCmd = &cobra.Command{
	Use:   "gachi",
	Short: "Family calendar and daily check-ins for older adults",
	Long: `
 ██████╗  █████╗  ██████╗██╗  ██╗██╗
██╔════╝ ██╔══██╗██╔════╝██║  ██║██║
██║  ███╗███████║██║     ███████║██║
██║   ██║██╔══██║██║     ██╔══██║██║
╚██████╔╝██║  ██║╚██████╗██║  ██║██║
 ╚═════╝ ╚═╝  ╚═╝ ╚═════╝╚═╝  ╚═╝╚═╝

가치: a family calendar for older adults and the people who care for them.

Keep schedules, share them with family, check in on mood and health,
and find cultural events nearby.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, logCloser = logging.New(logging.Options{File: cfg.GetLogFile(), Verbose: verbose})
		if tz, err = cfg.Location(); err != nil {
			return err
		}
		clock = timeutil.SystemClock{Loc: tz}
		lang = cfg.GetLocale()

		if cmd.Annotations[noStore] != "" {
			return nil
		}

		store, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		logger.Debug("storage opened", "backend", cfg.GetBackend(), "dir", cfg.GetDataDir())
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			defer logCloser.Close()
		}
		if store != nil {
			if err := store.Close(); err != nil {
				return fmt.Errorf("failed to close storage: %w", err)
			}
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func scheduleService() *schedule.Service {
	return schedule.NewService(store, clock, logger)
}

func familyService() *family.Service {
	return family.NewService(store, clock, logger)
}

func recommender() *recommend.Recommender {
	return recommend.New(store, clock, logger, recommend.Options{
		APIKey:  cfg.GetOpenAIAPIKey(),
		Model:   cfg.GetOpenAIModel(),
		BaseURL: cfg.GetOpenAIBaseURL(),
	})
}

// shortID trims an ID for display.
func shortID(id string) string {
	if len(id) > config.DisplayIDLength {
		return id[:config.DisplayIDLength]
	}
	return id
}
