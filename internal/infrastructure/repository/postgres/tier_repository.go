package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/duelhq/duel-tracker/internal/domain/tier"
	qb "github.com/duelhq/duel-tracker/internal/platform/querybuilder"
)

type TierRepository struct {
	db *sqlx.DB
}

func NewTierRepository(db *sqlx.DB) *TierRepository {
	return &TierRepository{db: db}
}

func (r *TierRepository) List(ctx context.Context) ([]tier.Tier, error) {
	query, args, err := qb.Select("*").From("ladder_tiers").
		OrderBy("sort_order ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list tiers query: %w", err)
	}

	var rows []tierTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}

	out := make([]tier.Tier, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *TierRepository) GetByID(ctx context.Context, tierID string) (tier.Tier, bool, error) {
	query, args, err := qb.Select("*").From("ladder_tiers").
		Where(qb.Eq("id", tierID)).
		ToSQL()
	if err != nil {
		return tier.Tier{}, false, fmt.Errorf("build get tier query: %w", err)
	}

	var row tierTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tier.Tier{}, false, nil
		}
		return tier.Tier{}, false, fmt.Errorf("get tier: %w", err)
	}

	return row.toDomain(), true, nil
}
