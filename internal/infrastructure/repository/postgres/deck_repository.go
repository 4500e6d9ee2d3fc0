package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/duelhq/duel-tracker/internal/domain/deck"
	qb "github.com/duelhq/duel-tracker/internal/platform/querybuilder"
)

type DeckRepository struct {
	db *sqlx.DB
}

func NewDeckRepository(db *sqlx.DB) *DeckRepository {
	return &DeckRepository{db: db}
}

func (r *DeckRepository) GetByID(ctx context.Context, deckID string) (deck.Deck, bool, error) {
	query, args, err := qb.Select("*").From("decks").
		Where(qb.Eq("id", deckID)).
		ToSQL()
	if err != nil {
		return deck.Deck{}, false, fmt.Errorf("build get deck query: %w", err)
	}

	var row deckTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return deck.Deck{}, false, nil
		}
		return deck.Deck{}, false, fmt.Errorf("get deck: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *DeckRepository) List(ctx context.Context) ([]deck.Deck, error) {
	query, args, err := qb.Select("*").From("decks").
		OrderBy("name ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list decks query: %w", err)
	}

	var rows []deckTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}

	out := make([]deck.Deck, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *DeckRepository) Insert(ctx context.Context, d deck.Deck) error {
	model := deckTableModel{
		ID:        d.ID,
		Name:      d.Name,
		ImageURL:  d.ImageURL,
		CreatedAt: d.CreatedAt,
	}
	query, args, err := qb.InsertModel("decks", model, "")
	if err != nil {
		return fmt.Errorf("build insert deck query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert deck: %w", err)
	}

	return nil
}
