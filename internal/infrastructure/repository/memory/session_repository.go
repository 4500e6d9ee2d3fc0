package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/duelhq/duel-tracker/internal/domain/session"
)

type SessionRepository struct {
	mu    sync.RWMutex
	items map[string]session.Session
	duels *DuelRepository
	stats *PlayerStatsRepository
}

// NewSessionRepository stores sessions and cascades deletes into the duel
// and stats stores, mirroring the foreign keys of the SQL schema.
func NewSessionRepository(sessions []session.Session, duels *DuelRepository, stats *PlayerStatsRepository) *SessionRepository {
	items := make(map[string]session.Session, len(sessions))
	for _, s := range sessions {
		items[s.ID] = s
	}

	return &SessionRepository{items: items, duels: duels, stats: stats}
}

func (r *SessionRepository) GetByID(_ context.Context, sessionID string) (session.Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[sessionID]
	if !ok {
		return session.Session{}, false, nil
	}

	return s, true, nil
}

func (r *SessionRepository) List(_ context.Context, status session.Status) ([]session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]session.Session, 0, len(r.items))
	for _, s := range r.items {
		if status != "" && s.Status != status {
			continue
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *SessionRepository) Insert(_ context.Context, s session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[s.ID] = s

	return nil
}

func (r *SessionRepository) UpdateStatus(_ context.Context, sessionID string, status session.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[sessionID]
	if !ok {
		return nil
	}
	s.Status = status
	r.items[sessionID] = s

	return nil
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.items, sessionID)
	r.mu.Unlock()

	if r.duels != nil {
		r.duels.removeBySession(sessionID)
	}
	if r.stats != nil {
		r.stats.removeBySession(sessionID)
	}

	return nil
}
