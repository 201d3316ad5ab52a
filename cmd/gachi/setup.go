// ABOUTME: Cobra command for interactive gachi configuration.
// ABOUTME: Launches a bubbletea TUI wizard for storage, display name and district.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/config"
	"github.com/harper/gachi/internal/family"
	"github.com/harper/gachi/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:         "setup",
	Short:       "Configure gachi",
	Long:        "Interactive wizard to configure the storage backend, data directory, your display name and home district.",
	Annotations: map[string]string{noStore: "true"},
	RunE:        runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	model := tui.NewSetupModel(tui.SetupValues{
		Backend:  cfg.Backend,
		DataDir:  cfg.DataDir,
		District: cfg.District,
	})

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.SetupModel)
	if !final.ShouldSave() {
		fmt.Println("Setup canceled.")
		return nil
	}

	values := final.Result()
	cfg.Backend = values.Backend
	cfg.DataDir = values.DataDir
	cfg.District = values.District

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("Config saved to %s\n", config.GetConfigPath())

	store, err = cfg.OpenStorage()
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	_, err = familyService().UpdateProfile(cmd.Context(), cfg.UserID, family.ProfilePatch{
		DisplayName: &values.DisplayName,
		District:    &values.District,
	})
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	fmt.Printf("Welcome, %s!\n", values.DisplayName)
	return nil
}
