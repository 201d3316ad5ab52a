// ABOUTME: Recommend command asking the language model for activity ideas
// ABOUTME: Falls back to listing upcoming events when no API key is configured

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/recommend"
)

var recommendCmd = &cobra.Command{
	Use:     "recommend",
	Aliases: []string{"rec"},
	Short:   "Suggest activities for today",
	Long: `Suggest three activities for today based on upcoming cultural events and
spaces in your district.

Needs an OpenAI API key (OPENAI_API_KEY or openai_api_key in config.json).
Without one, the upcoming events are listed instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		district, _ := cmd.Flags().GetString("district")
		if district == "" {
			district = cfg.GetDistrict()
		}

		faint := color.New(color.Faint).SprintFunc()
		res, err := recommender().Recommend(cmd.Context(), district)
		switch {
		case errors.Is(err, recommend.ErrNotConfigured):
			color.Yellow("No OpenAI API key configured; showing upcoming events in %s.", district)
			if len(res.Events) == 0 {
				fmt.Println(faint("No upcoming events. Try 'gachi import events'"))
			}
			for _, e := range res.Events {
				fmt.Printf("• %s %s\n", e.Title, faint(fmt.Sprintf("%s ~ %s %s", e.StartDate, e.EndDate, e.Place)))
			}
			return nil
		case err != nil:
			return fmt.Errorf("failed to get recommendations: %w", err)
		}

		var md strings.Builder
		fmt.Fprintf(&md, "# %s\n\n", district)
		md.WriteString(res.Text)
		rendered, rerr := glamour.Render(md.String(), "dark")
		if rerr != nil {
			fmt.Printf("%s\n", faint("(markdown rendering unavailable, showing plain text)"))
			fmt.Println(md.String())
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().String("district", "", "Seoul district (default: your district)")
}
