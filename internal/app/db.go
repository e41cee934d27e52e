package app

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"planner-service/internal/schedule"
)

//go:embed schema.sql
var schemaSQL string

// EventStore persists events. Days are epoch milliseconds at local midnight;
// ranges are half-open [from, to).
type EventStore interface {
	CreateEvent(ctx context.Context, e *Event) error
	GetEvent(ctx context.Context, userID, id string) (Event, error)
	ListEventsForDay(ctx context.Context, userID string, day int64) ([]Event, error)
	ListEventsInRange(ctx context.Context, userID string, from, to int64) ([]Event, error)
	ListEventsByCategory(ctx context.Context, userID, category string, from, to int64) ([]Event, error)
	UpdateEvent(ctx context.Context, e *Event) error
	DeleteEvent(ctx context.Context, userID, id string) error
	// SaveMove stores the moved event and the patches from overlap
	// resolution in one transaction.
	SaveMove(ctx context.Context, moved *Event, patches []schedule.Patch) error
}

// PgStore is the Postgres EventStore.
type PgStore struct {
	DB *pgxpool.Pool
}

const eventColumns = `id, user_id, title, day, time_start, time_end, COALESCE(category, ''), locked, created_at, updated_at`

func (s *PgStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PgStore) CreateEvent(ctx context.Context, e *Event) error {
	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt, e.UpdatedAt = now, now

	q := `INSERT INTO events
          (id, user_id, title, day, time_start, time_end, category, locked, created_at, updated_at)
          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := s.DB.Exec(ctx, q,
		e.ID, e.UserID, e.Title, e.Day, e.TimeStart, e.TimeEnd,
		e.Category, e.Locked, e.CreatedAt, e.UpdatedAt)
	return err
}

func (s *PgStore) GetEvent(ctx context.Context, userID, id string) (Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id=$1 AND user_id=$2`
	e, err := scanEvent(s.DB.QueryRow(ctx, q, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	return e, err
}

func (s *PgStore) ListEventsForDay(ctx context.Context, userID string, day int64) ([]Event, error) {
	q := `SELECT ` + eventColumns + `
	      FROM events WHERE user_id=$1 AND day=$2
	      ORDER BY time_start, created_at`
	return s.query(ctx, q, userID, day)
}

func (s *PgStore) ListEventsInRange(ctx context.Context, userID string, from, to int64) ([]Event, error) {
	q := `SELECT ` + eventColumns + `
	      FROM events WHERE user_id=$1 AND day >= $2 AND day < $3
	      ORDER BY day, time_start`
	return s.query(ctx, q, userID, from, to)
}

func (s *PgStore) ListEventsByCategory(ctx context.Context, userID, category string, from, to int64) ([]Event, error) {
	q := `SELECT ` + eventColumns + `
	      FROM events
	      WHERE user_id=$1 AND day >= $2 AND day < $3
	        AND COALESCE(NULLIF(TRIM(category), ''), $5) = $4
	      ORDER BY day, time_start`
	return s.query(ctx, q, userID, from, to, category, schedule.UnspecifiedCategory)
}

func (s *PgStore) UpdateEvent(ctx context.Context, e *Event) error {
	e.UpdatedAt = time.Now().UTC()
	q := `UPDATE events
          SET title=$1, day=$2, time_start=$3, time_end=$4, category=$5, locked=$6, updated_at=$7
          WHERE id=$8 AND user_id=$9`
	res, err := s.DB.Exec(ctx, q,
		e.Title, e.Day, e.TimeStart, e.TimeEnd, e.Category, e.Locked, e.UpdatedAt, e.ID, e.UserID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStore) DeleteEvent(ctx context.Context, userID, id string) error {
	res, err := s.DB.Exec(ctx, `DELETE FROM events WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStore) SaveMove(ctx context.Context, moved *Event, patches []schedule.Patch) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	moved.UpdatedAt = now
	res, err := tx.Exec(ctx,
		`UPDATE events SET day=$1, time_start=$2, time_end=$3, updated_at=$4 WHERE id=$5 AND user_id=$6`,
		moved.Day, moved.TimeStart, moved.TimeEnd, now, moved.ID, moved.UserID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}

	// Locked rows are excluded here as well as in the resolver.
	for _, p := range patches {
		if _, err := tx.Exec(ctx,
			`UPDATE events SET time_start=$1, time_end=$2, updated_at=$3
			 WHERE id=$4 AND user_id=$5 AND NOT locked`,
			p.TimeStart, p.TimeEnd, now, p.ID, moved.UserID); err != nil {
			return fmt.Errorf("patch event %s: %w", p.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PgStore) query(ctx context.Context, q string, args ...any) ([]Event, error) {
	rows, err := s.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Day, &e.TimeStart, &e.TimeEnd,
		&e.Category, &e.Locked, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
