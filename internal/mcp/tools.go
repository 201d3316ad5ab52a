// ABOUTME: MCP tool definitions and handlers for schedules, moods and recommendations
// ABOUTME: Every tool acts as the configured local user

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/gachi/internal/calendar"
	"github.com/harper/gachi/internal/family"
	"github.com/harper/gachi/internal/models"
	"github.com/harper/gachi/internal/recommend"
	"github.com/harper/gachi/internal/schedule"
	"github.com/harper/gachi/internal/timeutil"
	"github.com/mark3labs/mcp-go/mcp"
)

// Type definitions for input/output structures

type ListSchedulesInput struct {
	Date *string `json:"date,omitempty"`
}

type ScheduleOutput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner"`
	Mine        bool   `json:"mine"`
	Shared      bool   `json:"shared_with_family"`
	Recurrence  string `json:"recurrence,omitempty"`
}

type ListSchedulesOutput struct {
	Date      string           `json:"date"`
	Schedules []ScheduleOutput `json:"schedules"`
	Count     int              `json:"count"`
}

type AddScheduleInput struct {
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Time        *string `json:"time,omitempty"`
	Description *string `json:"description,omitempty"`
	Shared      *bool   `json:"shared,omitempty"`
	Recurrence  *string `json:"recurrence,omitempty"`
}

type DeleteScheduleInput struct {
	ID string `json:"id"`
}

type DeleteScheduleOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

type MonthGridInput struct {
	Month    *string `json:"month,omitempty"`
	MemberID *string `json:"member_id,omitempty"`
}

type MonthGridOutput struct {
	Month              string                   `json:"month"`
	FirstWeekdayOffset int                      `json:"first_weekday_offset"`
	DayCount           int                      `json:"day_count"`
	Weeks              [][]int                  `json:"weeks"`
	Days               map[int][]ScheduleOutput `json:"days"`
}

type RecordMoodInput struct {
	Mood string `json:"mood"`
}

type RecordMoodOutput struct {
	Mood       string `json:"mood"`
	Emoji      string `json:"emoji"`
	Label      string `json:"label"`
	RecordedAt string `json:"recorded_at"`
}

type GroupMembersInput struct {
	GroupID *string `json:"group_id,omitempty"`
}

type MemberOutput struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	IsHead      bool   `json:"is_head"`
	IsViewer    bool   `json:"is_viewer"`
	Mood        string `json:"mood,omitempty"`
	MoodEmoji   string `json:"mood_emoji,omitempty"`
}

type GroupMembersOutput struct {
	GroupID   string         `json:"group_id"`
	GroupName string         `json:"group_name"`
	Members   []MemberOutput `json:"members"`
}

type RecommendInput struct {
	District *string `json:"district,omitempty"`
}

type RecommendOutput struct {
	District       string                 `json:"district"`
	Recommendation string                 `json:"recommendation,omitempty"`
	Suggestions    []recommend.Suggestion `json:"suggestions,omitempty"`
	Upcoming       []string               `json:"upcoming_events"`
	Note           string                 `json:"note,omitempty"`
}

// Tool registration

func (s *Server) registerTools() {
	s.registerListSchedulesTool()
	s.registerAddScheduleTool()
	s.registerDeleteScheduleTool()
	s.registerMonthGridTool()
	s.registerRecordMoodTool()
	s.registerGroupMembersTool()
	s.registerRecommendTool()
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func (s *Server) registerListSchedulesTool() {
	tool := mcp.Tool{
		Name:        "list_schedules",
		Description: "List the user's schedules for one day, merged with schedules family members have shared. Entries are ordered by time with untimed entries last.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"date": stringProp("Day to list: 'today', 'tomorrow', 'yesterday' or YYYY-MM-DD. Defaults to today."),
			},
		},
	}
	s.mcpServer.AddTool(tool, s.handleListSchedules)
}

func (s *Server) registerAddScheduleTool() {
	tool := mcp.Tool{
		Name:        "add_schedule",
		Description: "Add a schedule to the user's calendar. Time is optional 24-hour HH:MM; omit it for an all-day entry. Set shared to show it to the family group.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"title":       stringProp("What is happening. Example: '병원 예약'"),
				"date":        stringProp("'today', 'tomorrow' or YYYY-MM-DD"),
				"time":        stringProp("Optional start time, HH:MM. Example: '14:30'"),
				"description": stringProp("Optional notes"),
				"shared": map[string]interface{}{
					"type":        "boolean",
					"description": "Share with the family group",
				},
				"recurrence": stringProp("Optional RRULE body. Example: 'FREQ=WEEKLY;BYDAY=WE'"),
			},
			Required: []string{"title", "date"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleAddSchedule)
}

func (s *Server) registerDeleteScheduleTool() {
	tool := mcp.Tool{
		Name:        "delete_schedule",
		Description: "Delete one of the user's own schedules by ID or unique ID prefix (at least 6 characters).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": stringProp("Schedule ID or prefix"),
			},
			Required: []string{"id"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleDeleteSchedule)
}

func (s *Server) registerMonthGridTool() {
	tool := mcp.Tool{
		Name:        "month_grid",
		Description: "Return a Sunday-first month grid with schedules bucketed by day. Pass member_id to see a family member's calendar (only their shared schedules).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"month":     stringProp("YYYY-MM, defaults to the current month"),
				"member_id": stringProp("Optional family member user ID"),
			},
		},
	}
	s.mcpServer.AddTool(tool, s.handleMonthGrid)
}

func (s *Server) registerRecordMoodTool() {
	tool := mcp.Tool{
		Name:        "record_mood",
		Description: "Record today's mood check-in. Family members see the latest mood next to the user's name.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"mood": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"good", "okay", "bad"},
					"description": "good (😊 행복), okay (😐 보통) or bad (😢 나쁨)",
				},
			},
			Required: []string{"mood"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleRecordMood)
}

func (s *Server) registerGroupMembersTool() {
	tool := mcp.Tool{
		Name:        "group_members",
		Description: "List members of a family group with their latest mood. Defaults to the user's first group.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"group_id": stringProp("Optional group ID"),
			},
		},
	}
	s.mcpServer.AddTool(tool, s.handleGroupMembers)
}

func (s *Server) registerRecommendTool() {
	tool := mcp.Tool{
		Name:        "recommend_activities",
		Description: "Suggest three activities for today based on upcoming cultural events and spaces in a Seoul district. Without a configured API key only the upcoming events are returned.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"district": stringProp("Seoul district, e.g. '종로구'. Defaults to the configured district."),
			},
		},
	}
	s.mcpServer.AddTool(tool, s.handleRecommend)
}

// Handlers

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func toScheduleOutput(e schedule.Entry) ScheduleOutput {
	out := ScheduleOutput{
		ID:          e.ID,
		Title:       e.Title,
		Date:        e.On,
		Time:        e.TimeOrEmpty(),
		Description: e.DescriptionOrEmpty(),
		Owner:       e.OwnerName,
		Mine:        e.Mine,
		Shared:      e.SharedWithFamily,
	}
	if e.Recurrence != nil {
		out.Recurrence = *e.Recurrence
	}
	return out
}

func (s *Server) handleListSchedules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input ListSchedulesInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	day := "today"
	if input.Date != nil && *input.Date != "" {
		day = *input.Date
	}
	date, err := timeutil.ParseDay(s.Clock, day)
	if err != nil {
		return nil, err
	}

	entries, err := s.Schedules.Day(ctx, s.UserID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	output := ListSchedulesOutput{Date: date, Schedules: make([]ScheduleOutput, 0, len(entries))}
	for _, e := range entries {
		output.Schedules = append(output.Schedules, toScheduleOutput(e))
	}
	output.Count = len(output.Schedules)
	return jsonResult(output)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (s *Server) handleAddSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input AddScheduleInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	date, err := timeutil.ParseDay(s.Clock, input.Date)
	if err != nil {
		return nil, err
	}

	sc, err := s.Schedules.Add(ctx, schedule.AddInput{
		UserID:      s.UserID,
		Title:       input.Title,
		Date:        date,
		Time:        deref(input.Time),
		Description: deref(input.Description),
		Shared:      input.Shared != nil && *input.Shared,
		Recurrence:  deref(input.Recurrence),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add schedule: %w", err)
	}

	return jsonResult(toScheduleOutput(schedule.Entry{Schedule: sc, On: sc.Date, Mine: true}))
}

func (s *Server) handleDeleteSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input DeleteScheduleInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	sc, err := s.Schedules.Delete(ctx, s.UserID, strings.TrimSpace(input.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to delete schedule: %w", err)
	}

	return jsonResult(DeleteScheduleOutput{
		Success: true,
		Message: fmt.Sprintf("Schedule '%s' on %s deleted", sc.Title, sc.Date),
		ID:      sc.ID,
	})
}

func (s *Server) handleMonthGrid(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input MonthGridInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	grid := calendar.ForTime(s.Clock.Now())
	if input.Month != nil && *input.Month != "" {
		g, err := calendar.ParseMonth(*input.Month)
		if err != nil {
			return nil, err
		}
		grid = g
	}

	var view *schedule.MonthView
	var err error
	if input.MemberID != nil && *input.MemberID != "" {
		view, err = s.Schedules.MemberMonth(ctx, s.UserID, *input.MemberID, grid.Year, grid.Month)
	} else {
		view, err = s.Schedules.Month(ctx, s.UserID, grid.Year, grid.Month)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build month: %w", err)
	}

	output := MonthGridOutput{
		Month:              view.Grid.String(),
		FirstWeekdayOffset: view.Grid.FirstWeekdayOffset,
		DayCount:           view.Grid.DayCount,
		Weeks:              view.Grid.Weeks(),
		Days:               make(map[int][]ScheduleOutput, len(view.Days)),
	}
	for day, entries := range view.Days {
		for _, e := range entries {
			output.Days[day] = append(output.Days[day], toScheduleOutput(e))
		}
	}
	return jsonResult(output)
}

func (s *Server) handleRecordMood(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input RecordMoodInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	rec, err := s.Family.RecordMood(ctx, s.UserID, input.Mood)
	if err != nil {
		return nil, fmt.Errorf("failed to record mood: %w", err)
	}

	return jsonResult(RecordMoodOutput{
		Mood:       string(rec.Mood),
		Emoji:      rec.Mood.Emoji(),
		Label:      rec.Mood.Label(),
		RecordedAt: rec.RecordedAt.Format("2006-01-02 15:04"),
	})
}

func (s *Server) handleGroupMembers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input GroupMembersInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	groups, err := s.Family.Groups(ctx, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	var group *models.FamilyGroup
	for _, g := range groups {
		if input.GroupID == nil || *input.GroupID == "" || *input.GroupID == g.ID {
			group = g
			break
		}
	}
	if group == nil {
		return nil, family.ErrNotMember
	}

	members, err := s.Family.Members(ctx, group.ID, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	output := GroupMembersOutput{GroupID: group.ID, GroupName: group.Name, Members: make([]MemberOutput, 0, len(members))}
	for _, m := range members {
		mo := MemberOutput{UserID: m.UserID, DisplayName: m.DisplayName, IsHead: m.IsHead, IsViewer: m.IsViewer}
		if m.Mood != nil {
			mo.Mood = string(m.Mood.Mood)
			mo.MoodEmoji = m.Mood.Mood.Emoji()
		}
		output.Members = append(output.Members, mo)
	}
	return jsonResult(output)
}

func (s *Server) handleRecommend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input RecommendInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	district := s.District
	if input.District != nil && *input.District != "" {
		district = *input.District
	}

	res, err := s.Recommender.Recommend(ctx, district)
	output := RecommendOutput{District: district}
	switch {
	case errors.Is(err, recommend.ErrNotConfigured):
		output.Note = "No OpenAI API key configured; showing upcoming events only."
	case err != nil:
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	default:
		output.Recommendation = res.Text
		output.Suggestions = res.Suggestions
	}

	output.Upcoming = make([]string, 0, len(res.Events))
	for _, e := range res.Events {
		output.Upcoming = append(output.Upcoming, fmt.Sprintf("%s (%s ~ %s)", e.Title, e.StartDate, e.EndDate))
	}
	return jsonResult(output)
}
