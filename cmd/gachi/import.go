// ABOUTME: Import commands for the cultural event and space catalogue
// ABOUTME: Loads open-data JSON exports from files or URLs, or a programme feed

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/importer"
	"github.com/harper/gachi/internal/opml"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import cultural events and spaces",
	Long: `Import the cultural catalogue used by recommendations.

Sources are open-data JSON exports with a top-level "DATA" array, given as a
file path or an http(s) URL. Without an argument the URLs from config.json
(events_url, spaces_url) are used.`,
}

var importEventsCmd = &cobra.Command{
	Use:   "events [file-or-url]",
	Short: "Import cultural events",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := importSource(args, cfg.EventsURL, "events_url")
		if err != nil {
			return err
		}
		sum, err := newImporter().ImportEvents(cmd.Context(), src)
		if err != nil {
			return fmt.Errorf("failed to import events: %w", err)
		}
		printSummary("Events", sum)
		return nil
	},
}

var importSpacesCmd = &cobra.Command{
	Use:   "spaces [file-or-url]",
	Short: "Import cultural spaces",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := importSource(args, cfg.SpacesURL, "spaces_url")
		if err != nil {
			return err
		}
		sum, err := newImporter().ImportSpaces(cmd.Context(), src)
		if err != nil {
			return fmt.Errorf("failed to import spaces: %w", err)
		}
		printSummary("Spaces", sum)
		return nil
	},
}

var importFeedCmd = &cobra.Command{
	Use:   "feed <page-url>",
	Short: "Import a programme feed as events",
	Long: `Discover the RSS/Atom feed behind a community centre or library page and
store its items as events in a district (default: your district).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		district, _ := cmd.Flags().GetString("district")
		if district == "" {
			district = cfg.GetDistrict()
		}
		sum, err := newImporter().ImportFeed(cmd.Context(), args[0], district)
		if err != nil {
			return fmt.Errorf("failed to import feed: %w", err)
		}
		printSummary("Feed", sum)
		return nil
	},
}

var importFeedsCmd = &cobra.Command{
	Use:   "feeds <opml-file>",
	Short: "Import every programme feed listed in an OPML file",
	Long: `Import every feed in an OPML file. Top-level folders name the district
their feeds belong to; feeds outside a folder use your district.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := opml.ParseFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read feed list: %w", err)
		}
		sources := doc.Sources(cfg.GetDistrict())
		if len(sources) == 0 {
			fmt.Println("No feeds found in " + args[0])
			return nil
		}
		fmt.Printf("Importing %d feeds...\n", len(sources))
		sum, err := newImporter().ImportFeedList(cmd.Context(), sources)
		if err != nil {
			return fmt.Errorf("failed to import feeds: %w", err)
		}
		printSummary("Feeds", sum)
		return nil
	},
}

var importAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Import events and spaces from the configured URLs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.EventsURL == "" && cfg.SpacesURL == "" {
			return fmt.Errorf("set events_url and spaces_url in config.json")
		}
		out, err := newImporter().ImportAll(cmd.Context(), cfg.EventsURL, cfg.SpacesURL)
		if cfg.EventsURL != "" {
			printSummary("Events", out.Events)
		}
		if cfg.SpacesURL != "" {
			printSummary("Spaces", out.Spaces)
		}
		if err != nil {
			return fmt.Errorf("failed to import: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importEventsCmd, importSpacesCmd, importFeedCmd, importFeedsCmd, importAllCmd)
	importFeedCmd.Flags().String("district", "", "district to file the events under")
}

func newImporter() *importer.Importer {
	return importer.New(store, clock, logger, cfg.GetImportBatchSize())
}

func importSource(args []string, configured, key string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if configured == "" {
		return "", fmt.Errorf("no source given and %s is not set in config.json", key)
	}
	return configured, nil
}

func printSummary(label string, sum importer.Summary) {
	if sum.Errors > 0 {
		color.Yellow("! %s: %s", label, sum)
		return
	}
	color.Green("✓ %s: %s", label, sum)
}
