// ABOUTME: Family group commands
// ABOUTME: Create a group, join by invite code, list members with their mood, and leave

package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/models"
)

var groupCmd = &cobra.Command{
	Use:     "group",
	Aliases: []string{"family", "g"},
	Short:   "Manage family groups",
	Long:    "Family groups share schedules and mood check-ins. Others join with the group's invite code.",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a family group",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := familyService().CreateGroup(cmd.Context(), cfg.UserID, strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}
		color.Green("✓ Created %s", g.Name)
		fmt.Printf("  Invite code: %s\n", color.New(color.Bold).Sprint(g.InviteCode))
		fmt.Println("  Share it with your family: gachi group join " + g.InviteCode)
		return nil
	},
}

var groupJoinCmd = &cobra.Command{
	Use:   "join <invite-code>",
	Short: "Join a family group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := familyService().Join(cmd.Context(), cfg.UserID, args[0])
		if err != nil {
			return fmt.Errorf("failed to join group: %w", err)
		}
		color.Green("✓ Joined %s", g.Name)
		return nil
	},
}

var groupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := familyService().Groups(cmd.Context(), cfg.UserID)
		if err != nil {
			return fmt.Errorf("failed to list groups: %w", err)
		}
		if len(groups) == 0 {
			fmt.Println("No groups yet. Create one with 'gachi group create <name>'")
			return nil
		}

		faint := color.New(color.Faint).SprintFunc()
		tbl := uitable.New()
		tbl.Separator = "  "
		for _, g := range groups {
			tbl.AddRow(faint(shortID(g.ID)), g.Name, g.InviteCode)
		}
		fmt.Fprintln(color.Output, tbl)
		return nil
	},
}

var groupMembersCmd = &cobra.Command{
	Use:   "members [group-id]",
	Short: "List group members and their latest mood",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := familyService()
		g, err := pickGroup(cmd, args)
		if err != nil {
			return err
		}

		members, err := svc.Members(cmd.Context(), g.ID, cfg.UserID)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		fmt.Println(bold(g.Name))

		tbl := uitable.New()
		tbl.Separator = "  "
		for _, m := range members {
			name := m.DisplayName
			if m.IsViewer {
				name += faint(" (me)")
			}
			role := ""
			if m.IsHead {
				role = "★"
			}
			mood := faint("-")
			if m.Mood != nil {
				mood = fmt.Sprintf("%s %s %s", m.Mood.Mood.Emoji(), m.Mood.Mood.Label(),
					faint(m.Mood.RecordedAt.In(tz).Format("01-02 15:04")))
			}
			tbl.AddRow(role, name, mood, faint(m.UserID))
		}
		fmt.Fprintln(color.Output, tbl)
		return nil
	},
}

var groupLeaveCmd = &cobra.Command{
	Use:   "leave [group-id]",
	Short: "Leave a family group",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := pickGroup(cmd, args)
		if err != nil {
			return err
		}
		if err := familyService().Leave(cmd.Context(), cfg.UserID, g.ID); err != nil {
			return fmt.Errorf("failed to leave group: %w", err)
		}
		color.Green("✓ Left %s", g.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groupCmd)
	groupCmd.AddCommand(groupCreateCmd, groupJoinCmd, groupListCmd, groupMembersCmd, groupLeaveCmd)
}

// pickGroup resolves an optional group ID or prefix among the user's groups,
// defaulting to the first one.
func pickGroup(cmd *cobra.Command, args []string) (*models.FamilyGroup, error) {
	groups, err := familyService().Groups(cmd.Context(), cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("you are not in a family group")
	}
	if len(args) == 0 {
		return groups[0], nil
	}
	for _, g := range groups {
		if g.ID == args[0] || strings.HasPrefix(g.ID, args[0]) || g.InviteCode == strings.ToUpper(args[0]) {
			return g, nil
		}
	}
	return nil, fmt.Errorf("group not found: %s", args[0])
}
