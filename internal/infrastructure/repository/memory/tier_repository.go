package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/duelhq/duel-tracker/internal/domain/tier"
)

type TierRepository struct {
	mu    sync.RWMutex
	items []tier.Tier
}

func NewTierRepository(tiers []tier.Tier) *TierRepository {
	ordered := append([]tier.Tier(nil), tiers...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	return &TierRepository{items: ordered}
}

func (r *TierRepository) List(_ context.Context) ([]tier.Tier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]tier.Tier(nil), r.items...), nil
}

func (r *TierRepository) GetByID(_ context.Context, tierID string) (tier.Tier, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.items {
		if t.ID == tierID {
			return t, true, nil
		}
	}

	return tier.Tier{}, false, nil
}
