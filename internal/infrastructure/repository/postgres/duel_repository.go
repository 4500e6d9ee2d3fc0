package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/duelhq/duel-tracker/internal/domain/duel"
	"github.com/duelhq/duel-tracker/internal/domain/playerstats"
	qb "github.com/duelhq/duel-tracker/internal/platform/querybuilder"
)

type DuelRepository struct {
	db *sqlx.DB
}

func NewDuelRepository(db *sqlx.DB) *DuelRepository {
	return &DuelRepository{db: db}
}

func (r *DuelRepository) GetByID(ctx context.Context, duelID string) (duel.Duel, bool, error) {
	query, args, err := qb.Select("*").From("duels").
		Where(qb.Eq("id", duelID)).
		ToSQL()
	if err != nil {
		return duel.Duel{}, false, fmt.Errorf("build get duel query: %w", err)
	}

	var row duelTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return duel.Duel{}, false, nil
		}
		return duel.Duel{}, false, fmt.Errorf("get duel: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *DuelRepository) ListByFilter(ctx context.Context, filter duel.Filter) ([]duel.Duel, error) {
	conditions := make([]qb.Condition, 0, 4)
	if filter.SessionID != "" {
		conditions = append(conditions, qb.Eq("session_id", filter.SessionID))
	}
	if filter.UserID != "" {
		conditions = append(conditions, qb.Eq("user_id", filter.UserID))
	}
	if start, end, ok := filter.DayBounds(); ok {
		conditions = append(conditions, qb.Gte("created_at", start), qb.Lt("created_at", end))
	}

	query, args, err := qb.Select("*").From("duels").
		Where(conditions...).
		OrderBy("created_at ASC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list duels query: %w", err)
	}

	var rows []duelTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list duels: %w", err)
	}

	out := make([]duel.Duel, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

// Ledger writes a duel and its stats side effect in one transaction. The
// stats row is locked with FOR UPDATE and the UPDATE carries a total_games
// guard, so a write built from a stale read matches zero rows even across
// replicas.
type Ledger struct {
	db *sqlx.DB
}

func NewLedger(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) Append(ctx context.Context, d duel.Duel, updated playerstats.Stats) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx append duel: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := l.guardStats(ctx, tx, updated.SessionID, updated.UserID); err != nil {
		return err
	}

	insertQuery, insertArgs, err := qb.InsertModel("duels", duelToModel(d), "")
	if err != nil {
		return fmt.Errorf("build insert duel query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("insert duel: %w", err)
	}

	if err := l.updateStats(ctx, tx, updated, updated.TotalGames-1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append duel tx: %w", err)
	}
	return nil
}

func (l *Ledger) Remove(ctx context.Context, duelID string, updated playerstats.Stats) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx remove duel: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := l.guardStats(ctx, tx, updated.SessionID, updated.UserID); err != nil {
		return err
	}

	deleteQuery, deleteArgs, err := qb.DeleteFrom("duels").
		Where(qb.Eq("id", duelID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete duel query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete duel: %w", err)
	}

	if err := l.updateStats(ctx, tx, updated, updated.TotalGames+1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove duel tx: %w", err)
	}
	return nil
}

func (l *Ledger) guardStats(ctx context.Context, tx *sqlx.Tx, sessionID, userID string) error {
	lockQuery, lockArgs, err := qb.Select("total_games").From("player_session_stats").
		Where(qb.Eq("session_id", sessionID), qb.Eq("user_id", userID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return fmt.Errorf("build lock stats query: %w", err)
	}

	var games int
	if err := tx.GetContext(ctx, &games, lockQuery, lockArgs...); err != nil {
		if isNotFound(err) {
			return duel.ErrStaleStats
		}
		return fmt.Errorf("lock player stats: %w", err)
	}
	return nil
}

func (l *Ledger) updateStats(ctx context.Context, tx *sqlx.Tx, updated playerstats.Stats, expectedGames int) error {
	query, args, err := qb.Update("player_session_stats").
		Set("current_points", updated.CurrentPoints).
		Set("total_games", updated.TotalGames).
		Set("total_wins", updated.TotalWins).
		Set("current_tier_id", updated.CurrentTierID).
		Set("current_net_wins", updated.CurrentNetWins).
		Set("updated_at", updated.UpdatedAt).
		Where(
			qb.Eq("session_id", updated.SessionID),
			qb.Eq("user_id", updated.UserID),
			qb.Eq("total_games", expectedGames),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update stats query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update player stats: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update player stats rows affected: %w", err)
	}
	if affected == 0 {
		return duel.ErrStaleStats
	}
	return nil
}
