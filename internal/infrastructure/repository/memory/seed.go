package memory

import (
	"time"

	"github.com/duelhq/duel-tracker/internal/domain/deck"
	"github.com/duelhq/duel-tracker/internal/domain/session"
	"github.com/duelhq/duel-tracker/internal/domain/tier"
)

const (
	SessionIDLadderOpen  = "ladder-open-2026"
	SessionIDRatedSpring = "rated-spring-2026"
)

// SeedTiers is the default ladder: five wins per rank, no demotion out of
// the two floor tiers.
func SeedTiers() []tier.Tier {
	return []tier.Tier{
		{ID: "rookie", Name: "Rookie", WinsRequired: 5, CanDemoteFrom: false, SortOrder: 0},
		{ID: "bronze", Name: "Bronze", WinsRequired: 5, CanDemoteFrom: false, SortOrder: 1},
		{ID: "silver", Name: "Silver", WinsRequired: 5, CanDemoteFrom: true, SortOrder: 2},
		{ID: "gold", Name: "Gold", WinsRequired: 5, CanDemoteFrom: true, SortOrder: 3},
		{ID: "platinum", Name: "Platinum", WinsRequired: 5, CanDemoteFrom: true, SortOrder: 4},
		{ID: "diamond", Name: "Diamond", WinsRequired: 5, CanDemoteFrom: true, SortOrder: 5},
		{ID: "master", Name: "Master", WinsRequired: 5, CanDemoteFrom: true, SortOrder: 6},
	}
}

func SeedDecks() []deck.Deck {
	return []deck.Deck{
		{ID: "deck-blue-eyes", Name: "Blue-Eyes"},
		{ID: "deck-dark-magician", Name: "Dark Magician"},
		{ID: "deck-salamangreat", Name: "Salamangreat"},
		{ID: "deck-sky-striker", Name: "Sky Striker"},
		{ID: "deck-eldlich", Name: "Eldlich"},
		{ID: "deck-branded", Name: "Branded Despia"},
		{ID: "deck-swordsoul", Name: "Swordsoul"},
		{ID: "deck-drytron", Name: "Drytron"},
	}
}

func SeedSessions(now time.Time) []session.Session {
	return []session.Session{
		{
			ID:             SessionIDLadderOpen,
			Name:           "Ladder Open",
			GameMode:       session.GameModeLadder,
			Status:         session.StatusActive,
			StartsAt:       now.AddDate(0, 0, -7),
			EndsAt:         now.AddDate(0, 1, 0),
			StartingRating: 0,
			PointValue:     session.DefaultPointValue(session.GameModeLadder),
			AdminUserID:    "admin",
			CreatedAt:      now.AddDate(0, 0, -7),
		},
		{
			ID:             SessionIDRatedSpring,
			Name:           "Rated Spring",
			GameMode:       session.GameModeRated,
			Status:         session.StatusActive,
			StartsAt:       now.AddDate(0, 0, -3),
			EndsAt:         now.AddDate(0, 1, 0),
			StartingRating: session.DefaultStartingRating(session.GameModeRated),
			PointValue:     session.DefaultPointValue(session.GameModeRated),
			AdminUserID:    "admin",
			CreatedAt:      now.AddDate(0, 0, -3),
		},
	}
}
