package notifications

import (
	"time"

	"github.com/ziadkadry99/lead-agent/internal/leads"
)

// Notification records one hot-lead alert and whether the webhook accepted it.
type Notification struct {
	ID           string         `json:"id"`
	AttendanceID string         `json:"attendance_id"`
	LeadName     string         `json:"lead_name"`
	Priority     leads.Priority `json:"priority"`
	Score        float64        `json:"score"`
	Title        string         `json:"title"`
	Message      string         `json:"message"`
	Delivered    bool           `json:"delivered"`
	LastError    string         `json:"last_error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ListFilter controls which notifications are returned by List.
type ListFilter struct {
	Priority  leads.Priority
	Delivered *bool
	Since     time.Time
	Limit     int
}
