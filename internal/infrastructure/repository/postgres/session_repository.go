package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/duelhq/duel-tracker/internal/domain/session"
	qb "github.com/duelhq/duel-tracker/internal/platform/querybuilder"
)

type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (session.Session, bool, error) {
	query, args, err := qb.Select("*").From("sessions").
		Where(qb.Eq("id", sessionID)).
		ToSQL()
	if err != nil {
		return session.Session{}, false, fmt.Errorf("build get session query: %w", err)
	}

	var row sessionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, fmt.Errorf("get session: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *SessionRepository) List(ctx context.Context, status session.Status) ([]session.Session, error) {
	builder := qb.Select("*").From("sessions").OrderBy("created_at DESC", "id")
	if status != "" {
		builder = builder.Where(qb.Eq("status", string(status)))
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list sessions query: %w", err)
	}

	var rows []sessionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]session.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *SessionRepository) Insert(ctx context.Context, s session.Session) error {
	query, args, err := qb.InsertModel("sessions", sessionToModel(s), "")
	if err != nil {
		return fmt.Errorf("build insert session query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

func (r *SessionRepository) UpdateStatus(ctx context.Context, sessionID string, status session.Status) error {
	query, args, err := qb.Update("sessions").
		Set("status", string(status)).
		Where(qb.Eq("id", sessionID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update session status query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update session status: %w", err)
	}

	return nil
}

// Delete removes the session row; duels and player stats follow through the
// schema's cascading foreign keys.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	query, args, err := qb.DeleteFrom("sessions").
		Where(qb.Eq("id", sessionID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete session query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}
