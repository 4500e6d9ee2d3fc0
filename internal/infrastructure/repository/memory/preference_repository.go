package memory

import (
	"context"
	"sync"

	"github.com/duelhq/duel-tracker/internal/domain/user"
)

type PreferenceRepository struct {
	mu    sync.RWMutex
	items map[string]user.Preference
}

func NewPreferenceRepository() *PreferenceRepository {
	return &PreferenceRepository{items: make(map[string]user.Preference)}
}

func (r *PreferenceRepository) Get(_ context.Context, userID string) (*user.Preference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[userID]
	if !ok {
		return nil, nil
	}

	return &p, nil
}

func (r *PreferenceRepository) Upsert(_ context.Context, p *user.Preference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[p.UserID] = *p

	return nil
}
