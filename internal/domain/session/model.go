package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnsupportedGameMode = errors.New("unsupported game mode")

// GameMode selects the scoring regime for a session. It is fixed at creation.
type GameMode string

const (
	GameModeLadder     GameMode = "ladder"
	GameModeRated      GameMode = "rated"
	GameModeDuelistCup GameMode = "duelist_cup"
)

func ParseGameMode(v string) (GameMode, error) {
	switch GameMode(strings.ToLower(strings.TrimSpace(v))) {
	case GameModeLadder:
		return GameModeLadder, nil
	case GameModeRated:
		return GameModeRated, nil
	case GameModeDuelistCup:
		return GameModeDuelistCup, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedGameMode, v)
	}
}

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Session is a time-boxed competitive event with one scoring regime.
type Session struct {
	ID             string
	Name           string
	GameMode       GameMode
	Status         Status
	StartsAt       time.Time
	EndsAt         time.Time
	StartingRating int
	PointValue     int
	AdminUserID    string
	CreatedAt      time.Time
}

func (s Session) IsArchived() bool {
	return s.Status == StatusArchived
}

// DefaultStartingRating returns the seed rating for a mode when the admin does
// not supply one: 1500 for rated, 0 otherwise.
func DefaultStartingRating(mode GameMode) int {
	if mode == GameModeRated {
		return 1500
	}
	return 0
}

// DefaultPointValue is the per-duel point magnitude used when a submission
// carries no explicit points input.
func DefaultPointValue(mode GameMode) int {
	switch mode {
	case GameModeRated:
		return 7
	case GameModeDuelistCup:
		return 1000
	default:
		return 1
	}
}
