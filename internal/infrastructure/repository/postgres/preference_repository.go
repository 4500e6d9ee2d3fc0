package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/duelhq/duel-tracker/internal/domain/user"
	qb "github.com/duelhq/duel-tracker/internal/platform/querybuilder"
)

type PreferenceRepository struct {
	db *sqlx.DB
}

func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func (r *PreferenceRepository) Get(ctx context.Context, userID string) (*user.Preference, error) {
	query, args, err := qb.Select("*").From("user_preferences").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get preference query: %w", err)
	}

	var row preferenceTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get preference: %w", err)
	}

	pref := row.toDomain()
	return &pref, nil
}

func (r *PreferenceRepository) Upsert(ctx context.Context, p *user.Preference) error {
	model := preferenceTableModel{
		UserID:              p.UserID,
		HideFromLeaderboard: p.HideFromLeaderboard,
		UpdatedAt:           p.UpdatedAt,
	}
	query, args, err := qb.InsertModel("user_preferences", model, `ON CONFLICT (user_id)
DO UPDATE SET
    hide_from_leaderboard = EXCLUDED.hide_from_leaderboard,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert preference query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}

	return nil
}
