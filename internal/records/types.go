package records

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/lead-agent/internal/leads"
)

// Status tracks what happened to a lead after the conversation ended.
type Status string

const (
	StatusPending   Status = "pending"
	StatusForwarded Status = "forwarded"
	StatusCompleted Status = "completed"
)

// ErrNotFound is returned when no attendance has the requested ID.
var ErrNotFound = errors.New("attendance not found")

// ErrInvalidStatus is returned for a status outside pending/forwarded/completed.
var ErrInvalidStatus = errors.New("invalid attendance status")

// ParseStatus validates a status label.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusForwarded, StatusCompleted:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// StatusFor is the status recorded for a conversation that just terminated.
func StatusFor(hasInterest bool) Status {
	if hasInterest {
		return StatusForwarded
	}
	return StatusCompleted
}

// Attendance is the record appended once per terminated conversation.
type Attendance struct {
	ID             string               `json:"id"`
	Lead           leads.Lead           `json:"lead"`
	Turns          []leads.Turn         `json:"turns"`
	Facts          leads.Facts          `json:"facts"`
	Classification leads.Classification `json:"classification"`
	HasInterest    bool                 `json:"has_interest"`
	HandoffLink    string               `json:"handoff_link,omitempty"`
	Status         Status               `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// NewID returns an attendance ID of the form ATD-<unix millis>-<5 chars>.
func NewID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:5]
	return fmt.Sprintf("ATD-%d-%s", now.UnixMilli(), suffix)
}

// ListFilter controls which attendances List returns.
type ListFilter struct {
	Priority leads.Priority
	Status   Status
	Limit    int
}

// Rescore recomputes the classification from the stored transcript and
// facts with the current scoring rules, penalizing lost interest as the
// live conversation does.
func (a *Attendance) Rescore() leads.Classification {
	c := leads.Score(a.Lead.Category, a.Turns, a.Facts)
	if !a.HasInterest {
		c = c.Penalize()
	}
	return c
}

// Reclassify sets a new classification and rebuilds the handoff link so its
// score suffix matches. The link keeps pointing at the same number.
func (a *Attendance) Reclassify(c leads.Classification) {
	a.Classification = c
	if a.HandoffLink == "" {
		return
	}
	number, _ := leads.HandoffNumber(a.HandoffLink)
	a.HandoffLink = leads.NewHandoffBuilder(number, "").Build(a.Lead, a.Facts, c)
}
