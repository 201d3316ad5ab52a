// ABOUTME: MCP resource providers for gachi
// ABOUTME: Read-only views of today's schedules and upcoming cultural events

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/gachi/internal/storage"
	"github.com/harper/gachi/internal/timeutil"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	todayURI    = "gachi://schedules/today"
	upcomingURI = "gachi://events/upcoming"

	upcomingLimit = 20
)

// ResourceData is the standard response format for all resources.
type ResourceData struct {
	Metadata ResourceMetadata  `json:"metadata"`
	Data     interface{}       `json:"data"`
	Links    map[string]string `json:"links"`
}

// ResourceMetadata contains metadata about the resource response.
type ResourceMetadata struct {
	Timestamp   time.Time      `json:"timestamp"`
	Count       int            `json:"count"`
	ResourceURI string         `json:"resource_uri"`
	Filters     map[string]any `json:"filters,omitempty"`
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcp.Resource{
			URI:         todayURI,
			Name:        "Today's Schedules",
			Description: "The user's schedules for today plus schedules shared by family members, in time order",
			MIMEType:    "application/json",
		},
		s.readTodaySchedules,
	)
	s.mcpServer.AddResource(
		mcp.Resource{
			URI:         upcomingURI,
			Name:        "Upcoming Events",
			Description: "Cultural events in the user's district that have not ended yet, soonest first",
			MIMEType:    "application/json",
		},
		s.readUpcomingEvents,
	)
}

func (s *Server) resourceContents(uri string, data ResourceData) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (s *Server) readTodaySchedules(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	today := timeutil.Today(s.Clock)
	entries, err := s.Schedules.Day(ctx, s.UserID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's schedules: %w", err)
	}

	out := make([]ScheduleOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, toScheduleOutput(e))
	}

	return s.resourceContents(request.Params.URI, ResourceData{
		Metadata: ResourceMetadata{
			Timestamp:   s.Clock.Now(),
			Count:       len(out),
			ResourceURI: todayURI,
			Filters:     map[string]any{"date": today},
		},
		Data:  out,
		Links: map[string]string{"upcoming_events": upcomingURI},
	})
}

func (s *Server) readUpcomingEvents(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	today := timeutil.Today(s.Clock)
	events, err := s.Store.ListEvents(&storage.EventFilter{
		District:    s.District,
		EndingAfter: today,
		Limit:       upcomingLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return s.resourceContents(request.Params.URI, ResourceData{
		Metadata: ResourceMetadata{
			Timestamp:   s.Clock.Now(),
			Count:       len(events),
			ResourceURI: upcomingURI,
			Filters:     map[string]any{"district": s.District, "ending_after": today},
		},
		Data:  events,
		Links: map[string]string{"today_schedules": todayURI},
	})
}
