package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/lead-agent/internal/db"
	"github.com/ziadkadry99/lead-agent/internal/leads"
)

// Record is a lead captured by the intake form.
type Record struct {
	ID             string               `json:"id"`
	Lead           leads.Lead           `json:"lead"`
	Classification leads.Classification `json:"classification"`
	ContactLink    string               `json:"whatsapp_link"`
	Welcome        string               `json:"welcome"`
	CreatedAt      time.Time            `json:"created_at"`
}

// Store persists intake records.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts rec, assigning an ID and timestamp when missing.
func (s *Store) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leads (id, name, email, phone, category, message, score, priority, contact_link, welcome, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Lead.Name, rec.Lead.Email, rec.Lead.Phone, string(rec.Lead.Category), rec.Lead.Message,
		rec.Classification.Score, string(rec.Classification.Priority), rec.ContactLink, rec.Welcome,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting lead: %w", err)
	}
	return nil
}

// List returns intake records newest first. A non-positive limit returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT id, name, email, phone, category, message, score, priority, contact_link, welcome, created_at
		FROM leads ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying leads: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			r                  Record
			category, priority string
			created            string
		)
		if err := rows.Scan(&r.ID, &r.Lead.Name, &r.Lead.Email, &r.Lead.Phone, &category, &r.Lead.Message,
			&r.Classification.Score, &priority, &r.ContactLink, &r.Welcome, &created); err != nil {
			return nil, fmt.Errorf("scanning lead: %w", err)
		}
		r.Lead.Category = leads.Category(category)
		r.Classification.Priority = leads.Priority(priority)
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}
