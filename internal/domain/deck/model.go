// Package deck holds the deck catalog players pick from when logging duels.
package deck

import "time"

// Deck is a catalog entry. Decks are shared across sessions.
type Deck struct {
	ID        string
	Name      string
	ImageURL  string
	CreatedAt time.Time
}
