package duel

import (
	"context"
	"errors"

	"github.com/duelhq/duel-tracker/internal/domain/playerstats"
)

// ErrStaleStats reports that the stats snapshot handed to the ledger no
// longer matches the stored row. The caller should reload and retry.
var ErrStaleStats = errors.New("stale player stats snapshot")

type Repository interface {
	GetByID(ctx context.Context, duelID string) (Duel, bool, error)
	// ListByFilter returns matching duels ordered by CreatedAt ascending.
	ListByFilter(ctx context.Context, filter Filter) ([]Duel, error)
}

// Ledger persists a duel together with its player-stats side effect as one
// atomic unit: either both land or neither does. Implementations must detect
// a stale stats snapshot (another writer got in between) and report it as a
// conflict so the caller can retry.
type Ledger interface {
	Append(ctx context.Context, d Duel, updated playerstats.Stats) error
	Remove(ctx context.Context, duelID string, updated playerstats.Stats) error
}
