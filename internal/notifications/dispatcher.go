package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/lead-agent/internal/leads"
	"github.com/ziadkadry99/lead-agent/internal/records"
)

// Dispatcher alerts the sales team about hot leads through a webhook.
type Dispatcher struct {
	store       *Store
	webhookURL  string
	minPriority leads.Priority
	client      *http.Client
	log         *logrus.Entry
}

// NewDispatcher creates a Dispatcher backed by the given store. An empty
// webhookURL still records notifications but sends nothing.
func NewDispatcher(store *Store, webhookURL string, minPriority leads.Priority, logger *logrus.Logger) *Dispatcher {
	if minPriority == "" {
		minPriority = leads.PriorityHigh
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Dispatcher{
		store:       store,
		webhookURL:  webhookURL,
		minPriority: minPriority,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: logger.WithField("component", "notifications"),
	}
}

// Qualifies reports whether an attendance is hot enough to alert on.
func (d *Dispatcher) Qualifies(a *records.Attendance) bool {
	return a.HasInterest && a.Classification.Priority.AtLeast(d.minPriority)
}

// Notify records a notification for a qualifying attendance and posts the
// attendance to the webhook. It returns nil, nil when the lead does not qualify.
func (d *Dispatcher) Notify(ctx context.Context, a *records.Attendance) (*Notification, error) {
	if !d.Qualifies(a) {
		return nil, nil
	}

	n := &Notification{
		AttendanceID: a.ID,
		LeadName:     a.Lead.Name,
		Priority:     a.Classification.Priority,
		Score:        a.Classification.Score,
		Title:        fmt.Sprintf("Lead %s: %s", a.Lead.Category.Label(), a.Lead.Name),
		Message:      a.HandoffLink,
	}
	if err := d.store.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}
	if d.webhookURL == "" {
		return n, nil
	}

	payload, err := json.Marshal(map[string]any{
		"notification": n,
		"attendance":   a,
	})
	if err != nil {
		return n, fmt.Errorf("marshalling webhook payload: %w", err)
	}

	entry := d.log.WithFields(logrus.Fields{"attendance_id": a.ID, "priority": n.Priority})
	if err := d.SendWebhook(ctx, d.webhookURL, payload); err != nil {
		entry.WithError(err).Warn("hot lead webhook failed")
		if recErr := d.store.RecordFailure(ctx, n.ID, err); recErr != nil {
			entry.WithError(recErr).Error("recording webhook failure")
		}
		n.LastError = err.Error()
		return n, err
	}
	if err := d.store.MarkDelivered(ctx, n.ID); err != nil {
		return n, err
	}
	n.Delivered = true
	entry.Info("hot lead webhook delivered")
	return n, nil
}

// SendWebhook POSTs payload to the given URL.
func (d *Dispatcher) SendWebhook(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
