package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/lead-agent/internal/audit"
	"github.com/ziadkadry99/lead-agent/internal/db"
	"github.com/ziadkadry99/lead-agent/internal/leads"
)

// timeLayout sorts lexicographically, so ORDER BY created_at is chronological.
const timeLayout = "2006-01-02 15:04:05.000"

// Auditor receives one entry per change made through the Store, written in
// the same transaction as the change.
type Auditor interface {
	LogTx(ctx context.Context, tx *sql.Tx, entry audit.Entry) error
}

// Store persists attendances in SQLite.
type Store struct {
	db      *db.DB
	now     func() time.Time
	auditor Auditor
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// SetAuditor records every append, status change and reclassification
// in the given trail. The acting party is taken from the context.
func (s *Store) SetAuditor(a Auditor) {
	s.auditor = a
}

// inTx runs fn in a transaction and commits only when fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning attendance transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing attendance transaction: %w", err)
	}
	return nil
}

func (s *Store) logChange(ctx context.Context, tx *sql.Tx, id string, action audit.Action, summary, prev, next string) error {
	if s.auditor == nil {
		return nil
	}
	err := s.auditor.LogTx(ctx, tx, audit.Entry{
		Action:        action,
		AttendanceID:  id,
		Summary:       summary,
		PreviousValue: prev,
		NewValue:      next,
	})
	if err != nil {
		return fmt.Errorf("auditing attendance %s: %w", id, err)
	}
	return nil
}

// Append inserts a new attendance. Missing ID, status and timestamps are filled in
// and written back to a.
func (s *Store) Append(ctx context.Context, a *Attendance) error {
	now := s.now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if a.ID == "" {
		a.ID = NewID(a.CreatedAt)
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	if a.Turns == nil {
		a.Turns = []leads.Turn{}
	}

	turns, err := json.Marshal(a.Turns)
	if err != nil {
		return fmt.Errorf("marshalling turns: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO attendances (id, lead_name, lead_email, lead_phone, category, message, turns,
				estimated_value, timeline, main_concern, score, priority, has_interest, handoff_link,
				status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Lead.Name, a.Lead.Email, a.Lead.Phone, string(a.Lead.Category), a.Lead.Message, string(turns),
			a.Facts.EstimatedValue, a.Facts.Timeline, a.Facts.MainConcern,
			a.Classification.Score, string(a.Classification.Priority), boolToInt(a.HasInterest), a.HandoffLink,
			string(a.Status), a.CreatedAt.Format(timeLayout), a.UpdatedAt.Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("inserting attendance: %w", err)
		}
		return s.logChange(ctx, tx, a.ID, audit.ActionRecorded, "attendance recorded for "+a.Lead.Name, "", string(a.Status))
	})
}

const selectColumns = `SELECT id, lead_name, lead_email, lead_phone, category, message, turns,
	estimated_value, timeline, main_concern, score, priority, has_interest, handoff_link,
	status, created_at, updated_at FROM attendances`

// Get returns a single attendance, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Attendance, error) {
	return get(ctx, s.db, id)
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func get(ctx context.Context, q rowQueryer, id string) (*Attendance, error) {
	a, err := scanAttendance(q.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting attendance %s: %w", id, err)
	}
	return a, nil
}

// List returns attendances newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Attendance, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Priority != "" {
		clauses = append(clauses, "priority = ?")
		args = append(args, string(filter.Priority))
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := selectColumns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying attendances: %w", err)
	}
	defer rows.Close()

	result := []Attendance{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning attendance: %w", err)
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

// UpdateStatus changes the follow-up status of an attendance.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		a, err := get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.update(ctx, tx, id, "status = ?", string(status)); err != nil {
			return err
		}
		return s.logChange(ctx, tx, id, audit.ActionStatusChanged, "status changed", string(a.Status), string(status))
	})
}

// UpdateClassification overwrites the stored score and priority and rebuilds
// the handoff link to carry the new classification.
func (s *Store) UpdateClassification(ctx context.Context, id string, c leads.Classification) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		a, err := get(ctx, tx, id)
		if err != nil {
			return err
		}
		prev := formatClassification(a.Classification)
		a.Reclassify(c)
		err = s.update(ctx, tx, id, "score = ?, priority = ?, handoff_link = ?",
			c.Score, string(c.Priority), a.HandoffLink)
		if err != nil {
			return err
		}
		return s.logChange(ctx, tx, id, audit.ActionReclassified, "classification recomputed", prev, formatClassification(c))
	})
}

func formatClassification(c leads.Classification) string {
	return leads.FormatScore(c.Score) + " " + string(c.Priority)
}

func (s *Store) update(ctx context.Context, tx *sql.Tx, id, set string, args ...any) error {
	args = append(args, s.now().UTC().Format(timeLayout), id)
	res, err := tx.ExecContext(ctx, "UPDATE attendances SET "+set+", updated_at = ? WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating attendance %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttendance(sc scanner) (*Attendance, error) {
	var (
		a                  Attendance
		category, priority string
		status, turnsJSON  string
		hasInterest        int
		created, updated   string
	)
	err := sc.Scan(&a.ID, &a.Lead.Name, &a.Lead.Email, &a.Lead.Phone, &category, &a.Lead.Message, &turnsJSON,
		&a.Facts.EstimatedValue, &a.Facts.Timeline, &a.Facts.MainConcern,
		&a.Classification.Score, &priority, &hasInterest, &a.HandoffLink,
		&status, &created, &updated)
	if err != nil {
		return nil, err
	}

	a.Lead.Category = leads.Category(category)
	a.Classification.Priority = leads.Priority(priority)
	a.Status = Status(status)
	a.HasInterest = hasInterest != 0
	a.CreatedAt = parseTime(created)
	a.UpdatedAt = parseTime(updated)
	if err := json.Unmarshal([]byte(turnsJSON), &a.Turns); err != nil {
		a.Turns = []leads.Turn{}
	}
	return &a, nil
}

func parseTime(v string) time.Time {
	for _, layout := range []string{timeLayout, time.DateTime, time.RFC3339Nano} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
