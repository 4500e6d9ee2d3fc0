package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/duelhq/duel-tracker/internal/domain/duel"
	"github.com/duelhq/duel-tracker/internal/domain/playerstats"
)

type DuelRepository struct {
	mu    sync.RWMutex
	items map[string]duel.Duel
}

func NewDuelRepository() *DuelRepository {
	return &DuelRepository{items: make(map[string]duel.Duel)}
}

func (r *DuelRepository) GetByID(_ context.Context, duelID string) (duel.Duel, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.items[duelID]
	if !ok {
		return duel.Duel{}, false, nil
	}

	return d, true, nil
}

func (r *DuelRepository) ListByFilter(_ context.Context, filter duel.Filter) ([]duel.Duel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]duel.Duel, 0)
	for _, d := range r.items {
		if !filter.Matches(d) {
			continue
		}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *DuelRepository) insert(d duel.Duel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[d.ID] = d
}

func (r *DuelRepository) remove(duelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, duelID)
}

func (r *DuelRepository) removeBySession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, d := range r.items {
		if d.SessionID == sessionID {
			delete(r.items, id)
		}
	}
}

// Ledger couples the duel store with the stats store so a duel and its
// aggregate side effect land together. The optimistic check on total_games
// rejects writes built from a stale snapshot.
type Ledger struct {
	duels *DuelRepository
	stats *PlayerStatsRepository
}

func NewLedger(duels *DuelRepository, stats *PlayerStatsRepository) *Ledger {
	return &Ledger{duels: duels, stats: stats}
}

func (l *Ledger) Append(_ context.Context, d duel.Duel, updated playerstats.Stats) error {
	if !l.stats.replaceIfGames(updated, updated.TotalGames-1) {
		return duel.ErrStaleStats
	}
	l.duels.insert(d)

	return nil
}

func (l *Ledger) Remove(_ context.Context, duelID string, updated playerstats.Stats) error {
	if !l.stats.replaceIfGames(updated, updated.TotalGames+1) {
		return duel.ErrStaleStats
	}
	l.duels.remove(duelID)

	return nil
}
