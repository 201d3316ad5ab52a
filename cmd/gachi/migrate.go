// ABOUTME: Migration command for copying gachi data between storage backends
// ABOUTME: Supports sqlite-to-charm and charm-to-sqlite with safety checks

package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/config"
	"github.com/harper/gachi/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate data between storage backends",
	Long: `Migrate all gachi data from the currently configured backend to a different backend.

Copies profiles, family groups, schedules, check-ins and the cultural catalogue.
Does NOT update the config file; verify the migration was successful then
update config.json (or run 'gachi setup').

Examples:
  gachi migrate --to charm
  gachi migrate --to sqlite --data-dir ~/gachi-sqlite
  gachi migrate --to sqlite --force`,
	Annotations: map[string]string{noStore: "true"},
	RunE:        runMigrate,
}

var (
	migrateTo      string
	migrateDataDir string
	migrateForce   bool
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "target backend (sqlite or charm)")
	migrateCmd.Flags().StringVar(&migrateDataDir, "data-dir", "", "target data directory for sqlite (defaults to current config data_dir)")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "allow writing into a non-empty target directory")
	_ = migrateCmd.MarkFlagRequired("to")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	sourceBackend := cfg.GetBackend()
	targetBackend := migrateTo

	if targetBackend != "sqlite" && targetBackend != "charm" {
		return fmt.Errorf("invalid target backend %q: must be \"sqlite\" or \"charm\"", targetBackend)
	}
	if targetBackend == sourceBackend {
		return fmt.Errorf("target backend %q is the same as the current backend", targetBackend)
	}

	targetDataDir := cfg.GetDataDir()
	if migrateDataDir != "" {
		targetDataDir = config.ExpandPath(migrateDataDir)
	}

	if targetBackend == "sqlite" {
		nonEmpty, err := storage.IsDirNonEmpty(targetDataDir)
		if err != nil {
			return fmt.Errorf("check target directory: %w", err)
		}
		if nonEmpty && !migrateForce {
			return fmt.Errorf("target directory %q is not empty; use --force to overwrite", targetDataDir)
		}
	}

	src, err := cfg.OpenStorage()
	if err != nil {
		return fmt.Errorf("open source storage (%s): %w", sourceBackend, err)
	}
	defer src.Close()

	dst, err := openMigrateStorage(targetBackend, targetDataDir)
	if err != nil {
		return fmt.Errorf("open target storage (%s): %w", targetBackend, err)
	}
	defer dst.Close()

	color.Yellow("Migrating gachi data:")
	fmt.Printf("  Source:  %s (%s)\n", sourceBackend, cfg.GetDataDir())
	fmt.Printf("  Target:  %s (%s)\n", targetBackend, targetDataDir)
	fmt.Println()

	summary, err := storage.MigrateData(src, dst)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	color.Green("Migration complete!")
	fmt.Printf("  Profiles:  %d\n", summary.Profiles)
	fmt.Printf("  Groups:    %d (%d members)\n", summary.Groups, summary.Members)
	fmt.Printf("  Schedules: %d\n", summary.Schedules)
	fmt.Printf("  Check-ins: %d moods, %d health\n", summary.Moods, summary.Health)
	fmt.Printf("  Catalogue: %d events, %d spaces\n", summary.Events, summary.Spaces)
	fmt.Println()
	color.Yellow("Note: config.json was NOT updated. To switch to the new backend, edit:")
	fmt.Printf("  %s\n", config.GetConfigPath())
	fmt.Printf("  Set \"backend\": %q", targetBackend)
	if migrateDataDir != "" {
		fmt.Printf(" and \"data_dir\": %q", migrateDataDir)
	}
	fmt.Println()

	return nil
}

// openMigrateStorage creates a Store implementation for the given backend and data directory.
func openMigrateStorage(backend, dataDir string) (storage.Store, error) {
	switch backend {
	case "sqlite":
		return storage.NewSQLiteStore(filepath.Join(dataDir, config.DBFilename))
	case "charm":
		return storage.NewCharmStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}
