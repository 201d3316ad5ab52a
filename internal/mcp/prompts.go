// ABOUTME: MCP prompt definitions and handlers
// ABOUTME: Provides the daily planning workflow for an older adult's day

package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(
		mcp.Prompt{
			Name:        "daily-plan",
			Description: "Plan today: review schedules, check in on mood, and pick a nearby activity",
			Arguments: []mcp.PromptArgument{
				{
					Name:        "district",
					Description: "Seoul district to look for activities in (defaults to the configured district)",
					Required:    false,
				},
			},
		},
		s.handleDailyPlan,
	)
}

func (s *Server) handleDailyPlan(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	district := s.District
	if req.Params.Arguments != nil {
		if d, ok := req.Params.Arguments["district"]; ok && d != "" {
			district = d
		}
	}

	template := fmt.Sprintf(`# Daily Plan

## Overview
Help an older adult plan today in plain, warm language. Keep sentences short and
use large, simple steps. Answer in Korean unless the user writes in English.

## Step 1: Today's Schedules
Read %s (or call list_schedules with date "today").
- Read the timed schedules in order, saying times as 오전/오후 (e.g. 오후 2:30).
- Mention all-day entries last.
- Point out schedules shared by family members and who shared them.

## Step 2: Mood Check-in
Ask how they feel today: 좋음 😊, 보통 😐, or 나쁨 😢.
Record the answer with record_mood (good, okay or bad).
If the answer is "bad", suggest calling a family member and show group_members
so they can see who has checked in today.

## Step 3: One Activity
Call recommend_activities for %s, or read %s.
- Pick one activity that fits around today's schedules.
- Prefer free events and events ending soon.
- If they want to go, add it with add_schedule (ask whether to share it with family).

## Step 4: Wrap Up
Summarise the day in three short lines.
`, todayURI, district, upcomingURI)

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Daily plan for %s", district),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: template,
				},
			},
		},
	}, nil
}
