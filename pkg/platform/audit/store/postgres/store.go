package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "clinic/pkg/domain"
	audit "clinic/pkg/platform/audit"
	txcontext "clinic/pkg/platform/tx"
)

// Store writes audit events to the audit_events table. When a transaction is
// present in ctx the insert joins it, so an event commits or rolls back with
// the record change that produced it.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, occurred_at, user_id, action,
			entity_kind, entity_id, request_id, reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	var userID sql.NullInt64
	if !event.UserID.IsNil() {
		userID = sql.NullInt64{Int64: int64(event.UserID), Valid: true}
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(event.Category),
		event.Timestamp,
		userID,
		event.Action,
		event.EntityKind,
		event.EntityID,
		event.RequestID,
		event.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	query := `
		SELECT category, occurred_at, user_id, action, entity_kind, entity_id, request_id, reason
		FROM audit_events
		WHERE user_id = $1
		ORDER BY occurred_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, int64(userID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e        audit.Event
			category string
			uid      sql.NullInt64
		)
		if err := rows.Scan(&category, &e.Timestamp, &uid, &e.Action, &e.EntityKind, &e.EntityID, &e.RequestID, &e.Reason); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		if uid.Valid {
			e.UserID = id.UserID(uid.Int64)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
