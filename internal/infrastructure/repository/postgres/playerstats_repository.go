package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/duelhq/duel-tracker/internal/domain/playerstats"
	qb "github.com/duelhq/duel-tracker/internal/platform/querybuilder"
)

type PlayerStatsRepository struct {
	db *sqlx.DB
}

func NewPlayerStatsRepository(db *sqlx.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db}
}

func (r *PlayerStatsRepository) Get(ctx context.Context, sessionID, userID string) (playerstats.Stats, bool, error) {
	query, args, err := qb.Select("*").From("player_session_stats").
		Where(qb.Eq("session_id", sessionID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return playerstats.Stats{}, false, fmt.Errorf("build get player stats query: %w", err)
	}

	var row playerStatsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return playerstats.Stats{}, false, nil
		}
		return playerstats.Stats{}, false, fmt.Errorf("get player stats: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *PlayerStatsRepository) ListBySession(ctx context.Context, sessionID string) ([]playerstats.Stats, error) {
	query, args, err := qb.Select("*").From("player_session_stats").
		Where(qb.Eq("session_id", sessionID)).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player stats query: %w", err)
	}

	var rows []playerStatsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list player stats: %w", err)
	}

	out := make([]playerstats.Stats, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *PlayerStatsRepository) Insert(ctx context.Context, s playerstats.Stats) error {
	query, args, err := qb.InsertModel("player_session_stats", playerStatsToModel(s),
		"ON CONFLICT (session_id, user_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert player stats query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert player stats: %w", err)
	}

	return nil
}

func (r *PlayerStatsRepository) Replace(ctx context.Context, s playerstats.Stats) error {
	model := playerStatsToModel(s)
	query, args, err := qb.Update("player_session_stats").
		Set("username", model.Username).
		Set("current_points", model.CurrentPoints).
		Set("total_games", model.TotalGames).
		Set("total_wins", model.TotalWins).
		Set("current_tier_id", model.CurrentTierID).
		Set("current_net_wins", model.CurrentNetWins).
		Set("updated_at", model.UpdatedAt).
		Where(qb.Eq("session_id", model.SessionID), qb.Eq("user_id", model.UserID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build replace player stats query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("replace player stats: %w", err)
	}

	return nil
}
