package conversation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/lead-agent/internal/db"
	"github.com/ziadkadry99/lead-agent/internal/leads"
)

// SQLStore is a StateStore persisted in the conversation_states table, so live
// conversations survive a restart.
type SQLStore struct {
	db *db.DB
}

// NewSQLStore creates a SQLStore backed by the given database.
func NewSQLStore(database *db.DB) *SQLStore {
	return &SQLStore{db: database}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLStore) Get(ctx context.Context, id leads.Identity) (State, bool, error) {
	st, err := load(ctx, s.db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, err
	}
	return st, true, nil
}

func (s *SQLStore) GetOrCreate(ctx context.Context, id leads.Identity) (State, error) {
	return s.Update(ctx, id, func(*State) error { return nil })
}

func (s *SQLStore) Update(ctx context.Context, id leads.Identity, fn func(*State) error) (State, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return State{}, fmt.Errorf("beginning state transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	st, err := load(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		st = State{Identity: id, CreatedAt: now}
	} else if err != nil {
		return State{}, err
	}

	if err := fn(&st); err != nil {
		return State{}, err
	}
	st.Identity = id
	st.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversation_states (identity, turn_count, estimated_value, timeline, main_concern, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			turn_count = excluded.turn_count,
			estimated_value = excluded.estimated_value,
			timeline = excluded.timeline,
			main_concern = excluded.main_concern,
			updated_at = excluded.updated_at`,
		string(id), st.TurnCount, st.Facts.EstimatedValue, st.Facts.Timeline, st.Facts.MainConcern,
		st.CreatedAt.Format(time.RFC3339Nano), st.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return State{}, fmt.Errorf("saving conversation state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return State{}, fmt.Errorf("committing conversation state: %w", err)
	}
	return st, nil
}

func (s *SQLStore) Delete(ctx context.Context, id leads.Identity) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM conversation_states WHERE identity = ?", string(id)); err != nil {
		return fmt.Errorf("deleting conversation state: %w", err)
	}
	return nil
}

func load(ctx context.Context, q querier, id leads.Identity) (State, error) {
	var (
		st               State
		created, updated string
	)
	err := q.QueryRowContext(ctx, `
		SELECT turn_count, estimated_value, timeline, main_concern, created_at, updated_at
		FROM conversation_states WHERE identity = ?`, string(id)).
		Scan(&st.TurnCount, &st.Facts.EstimatedValue, &st.Facts.Timeline, &st.Facts.MainConcern, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return State{}, err
		}
		return State{}, fmt.Errorf("loading conversation state: %w", err)
	}
	st.Identity = id
	st.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	st.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return st, nil
}
