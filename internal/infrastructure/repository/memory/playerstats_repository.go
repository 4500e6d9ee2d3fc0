package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/duelhq/duel-tracker/internal/domain/playerstats"
)

type statsKey struct {
	sessionID string
	userID    string
}

type PlayerStatsRepository struct {
	mu    sync.RWMutex
	items map[statsKey]playerstats.Stats
}

func NewPlayerStatsRepository() *PlayerStatsRepository {
	return &PlayerStatsRepository{items: make(map[statsKey]playerstats.Stats)}
}

func (r *PlayerStatsRepository) Get(_ context.Context, sessionID, userID string) (playerstats.Stats, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[statsKey{sessionID: sessionID, userID: userID}]
	if !ok {
		return playerstats.Stats{}, false, nil
	}

	return s, true, nil
}

func (r *PlayerStatsRepository) ListBySession(_ context.Context, sessionID string) ([]playerstats.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playerstats.Stats, 0)
	for key, s := range r.items {
		if key.sessionID != sessionID {
			continue
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID < out[j].UserID
	})

	return out, nil
}

func (r *PlayerStatsRepository) Insert(_ context.Context, s playerstats.Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := statsKey{sessionID: s.SessionID, userID: s.UserID}
	if _, ok := r.items[key]; ok {
		return nil
	}
	r.items[key] = s

	return nil
}

func (r *PlayerStatsRepository) Replace(_ context.Context, s playerstats.Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[statsKey{sessionID: s.SessionID, userID: s.UserID}] = s

	return nil
}

func (r *PlayerStatsRepository) removeBySession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.items {
		if key.sessionID == sessionID {
			delete(r.items, key)
		}
	}
}

// replaceIfGames swaps the row only when the stored total_games matches
// expectedGames. It is the in-process analogue of the SQL optimistic check.
func (r *PlayerStatsRepository) replaceIfGames(s playerstats.Stats, expectedGames int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := statsKey{sessionID: s.SessionID, userID: s.UserID}
	stored, ok := r.items[key]
	if !ok || stored.TotalGames != expectedGames {
		return false
	}
	r.items[key] = s

	return true
}
