package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/duelhq/duel-tracker/internal/domain/deck"
)

type DeckRepository struct {
	mu    sync.RWMutex
	items map[string]deck.Deck
}

func NewDeckRepository(decks []deck.Deck) *DeckRepository {
	items := make(map[string]deck.Deck, len(decks))
	for _, d := range decks {
		items[d.ID] = d
	}

	return &DeckRepository{items: items}
}

func (r *DeckRepository) GetByID(_ context.Context, deckID string) (deck.Deck, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.items[deckID]
	if !ok {
		return deck.Deck{}, false, nil
	}

	return d, true, nil
}

func (r *DeckRepository) List(_ context.Context) ([]deck.Deck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]deck.Deck, 0, len(r.items))
	for _, d := range r.items {
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out, nil
}

func (r *DeckRepository) Insert(_ context.Context, d deck.Deck) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[d.ID] = d

	return nil
}
