// ABOUTME: Profile commands for viewing and editing the local user's profile
// ABOUTME: The display name is what family members see

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/family"
	"github.com/harper/gachi/internal/models"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View or edit your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := familyService().EnsureProfile(cmd.Context(), cfg.UserID)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		printProfile(p)
		return nil
	},
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit your profile",
	Long: `Edit your profile. Only the flags you pass are changed; pass an empty
value to clear an optional field.

Example:
  gachi profile edit --name "김영희" --district 마포구`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch family.ProfilePatch
		flags := cmd.Flags()
		for flag, field := range map[string]**string{
			"name":     &patch.DisplayName,
			"phone":    &patch.PhoneNumber,
			"city":     &patch.City,
			"district": &patch.District,
			"dong":     &patch.Dong,
			"avatar":   &patch.AvatarURL,
		} {
			if flags.Changed(flag) {
				v, _ := flags.GetString(flag)
				*field = &v
			}
		}

		p, err := familyService().UpdateProfile(cmd.Context(), cfg.UserID, patch)
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		color.Green("✓ Profile updated")
		printProfile(p)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileEditCmd)

	profileEditCmd.Flags().String("name", "", "display name")
	profileEditCmd.Flags().String("phone", "", "phone number")
	profileEditCmd.Flags().String("city", "", "city")
	profileEditCmd.Flags().String("district", "", "district (구)")
	profileEditCmd.Flags().String("dong", "", "neighbourhood (동)")
	profileEditCmd.Flags().String("avatar", "", "avatar image URL")
}

func printProfile(p *models.Profile) {
	faint := color.New(color.Faint).SprintFunc()
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(faint("User ID"), p.UserID)
	tbl.AddRow(faint("Name"), p.DisplayName)
	for _, row := range []struct {
		label string
		value *string
	}{
		{"Phone", p.PhoneNumber},
		{"City", p.City},
		{"District", p.District},
		{"Dong", p.Dong},
		{"Avatar", p.AvatarURL},
	} {
		if row.value != nil {
			tbl.AddRow(faint(row.label), *row.value)
		}
	}
	fmt.Fprintln(color.Output, tbl)
}
