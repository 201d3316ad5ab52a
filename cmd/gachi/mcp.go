// ABOUTME: MCP server command for gachi CLI
// ABOUTME: Starts stdio-based MCP server for AI agent integration

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agents",
	Long: `Start the Model Context Protocol (MCP) server on stdio.

This allows AI agents like Claude to read and add schedules, record mood
check-ins, see family members and suggest nearby activities on your behalf.

The server communicates via JSON-RPC on stdin/stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := mcp.NewServer(mcp.Deps{
			Store:       store,
			Schedules:   scheduleService(),
			Family:      familyService(),
			Recommender: recommender(),
			Clock:       clock,
			UserID:      cfg.UserID,
			District:    cfg.GetDistrict(),
		})

		if err := server.ServeStdio(); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
