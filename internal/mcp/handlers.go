package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/lead-agent/internal/leads"
	"github.com/ziadkadry99/lead-agent/internal/notifications"
	"github.com/ziadkadry99/lead-agent/internal/records"
)

const defaultListLimit = 20

// handleListAttendances lists recorded attendances with optional filters.
func (s *Server) handleListAttendances(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.records == nil {
		return mcp.NewToolResultError("attendance records are not available"), nil
	}

	filter := records.ListFilter{Limit: request.GetInt("limit", defaultListLimit)}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if raw := request.GetString("priority", ""); raw != "" {
		p, ok := leads.ParsePriority(raw)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid priority %q", raw)), nil
		}
		filter.Priority = p
	}
	if raw := request.GetString("status", ""); raw != "" {
		st, err := records.ParseStatus(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filter.Status = st
	}

	list, err := s.records.List(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing attendances failed: %v", err)), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No attendances found."), nil
	}

	return mcp.NewToolResultText(formatAttendanceList(list)), nil
}

// handleGetAttendance returns one attendance with its transcript.
func (s *Server) handleGetAttendance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	if s.records == nil {
		return mcp.NewToolResultError("attendance records are not available"), nil
	}

	a, err := s.records.Get(ctx, id)
	if errors.Is(err, records.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("No attendance found with ID %q.", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading attendance failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatAttendance(a)), nil
}

// handleScoreConversation evaluates a transcript without recording anything.
func (s *Server) handleScoreConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawCategory, err := request.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: category"), nil
	}
	transcript, err := request.RequireString("transcript")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: transcript"), nil
	}

	category, err := leads.ParseCategory(rawCategory)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid category %q", rawCategory)), nil
	}
	turns, err := leads.ParseTranscript(transcript)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid transcript: %v", err)), nil
	}
	if len(turns) == 0 {
		return mcp.NewToolResultError("transcript has no turns"), nil
	}

	return mcp.NewToolResultText(formatAssessment(len(turns), leads.Assess(category, turns))), nil
}

// handlePendingNotifications lists undelivered hot-lead alerts.
func (s *Server) handlePendingNotifications(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.notifications == nil {
		return mcp.NewToolResultError("notifications are not available"), nil
	}

	pending, err := s.notifications.GetPending(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing notifications failed: %v", err)), nil
	}
	if len(pending) == 0 {
		return mcp.NewToolResultText("No pending hot-lead notifications."), nil
	}

	return mcp.NewToolResultText(formatNotifications(pending)), nil
}

func formatAttendanceList(list []records.Attendance) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d attendance(s):\n", len(list)))
	for _, a := range list {
		sb.WriteString(fmt.Sprintf("\n- %s | %s (%s) | %s | score %s | %s | %s\n",
			a.ID, a.Lead.Name, a.Lead.Category.Label(), a.Classification.Priority,
			leads.FormatScore(a.Classification.Score), a.Status, a.CreatedAt.Format("2006-01-02 15:04")))
	}
	return sb.String()
}

func formatAttendance(a *records.Attendance) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Attendance %s\n", a.ID))
	sb.WriteString(fmt.Sprintf("Lead: %s <%s> %s\n", a.Lead.Name, a.Lead.Email, a.Lead.Phone))
	sb.WriteString(fmt.Sprintf("Category: %s\n", a.Lead.Category.Label()))
	sb.WriteString(fmt.Sprintf("Score: %s (%s)\n", leads.FormatScore(a.Classification.Score), a.Classification.Priority))
	sb.WriteString(fmt.Sprintf("Interest: %t\n", a.HasInterest))
	sb.WriteString(fmt.Sprintf("Status: %s\n", a.Status))
	writeFacts(&sb, a.Facts)
	if a.HandoffLink != "" {
		sb.WriteString(fmt.Sprintf("Handoff: %s\n", a.HandoffLink))
	}

	sb.WriteString("\n--- Transcript ---\n")
	for _, t := range a.Turns {
		sb.WriteString(fmt.Sprintf("%s: %s\n", t.Role, t.Content))
	}
	return sb.String()
}

func formatAssessment(turns int, a leads.Assessment) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Turns: %d\n", turns))
	writeFacts(&sb, a.Facts)
	sb.WriteString(fmt.Sprintf("Should end: %t (rule: %s)\n", a.Decision.ShouldEnd, a.Decision.Rule))
	sb.WriteString(fmt.Sprintf("Interest: %t\n", a.Decision.HasInterest))
	sb.WriteString(fmt.Sprintf("Score: %s (%s)\n", leads.FormatScore(a.Classification.Score), a.Classification.Priority))
	return sb.String()
}

func writeFacts(sb *strings.Builder, f leads.Facts) {
	if f.EstimatedValue > 0 {
		sb.WriteString(fmt.Sprintf("Estimated value: R$ %s\n", leads.FormatAmount(f.EstimatedValue)))
	}
	if f.Timeline != "" {
		sb.WriteString(fmt.Sprintf("Timeline: %s\n", f.Timeline))
	}
	if f.MainConcern != "" {
		sb.WriteString(fmt.Sprintf("Main concern: %s\n", f.MainConcern))
	}
}

func formatNotifications(list []notifications.Notification) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d pending notification(s):\n", len(list)))
	for _, n := range list {
		sb.WriteString(fmt.Sprintf("\n- %s | %s | %s | score %s\n", n.AttendanceID, n.Title, n.Priority, leads.FormatScore(n.Score)))
		if n.LastError != "" {
			sb.WriteString(fmt.Sprintf("  last error: %s\n", n.LastError))
		}
	}
	return sb.String()
}
