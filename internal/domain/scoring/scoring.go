// Package scoring computes the points swing of a single duel. All three
// game modes share one entry point so the submit and rebuild paths can
// not drift apart.
package scoring

import (
	"github.com/duelhq/duel-tracker/internal/domain/session"
)

const (
	defaultDuelistCupWin = 1000
	fallbackRatedValue   = 7
)

// Input describes one duel result for scoring purposes.
type Input struct {
	Mode              session.GameMode
	Win               bool
	PointsInput       int
	CurrentPoints     int
	SessionPointValue int
}

// PointsChange returns the signed delta to apply to the player's points.
//
// Ladder moves one point per duel. Rated moves by the submitted stake, or
// the session point value when no stake was given. Duelist cup wins award
// the submitted amount (1000 when omitted); losses subtract the submitted
// amount and by default subtract nothing. Duelist cup totals never drop
// below zero, so a loss is clamped to the player's current points.
func PointsChange(in Input) (int, error) {
	switch in.Mode {
	case session.GameModeLadder:
		if in.Win {
			return 1, nil
		}
		return -1, nil
	case session.GameModeRated:
		value := abs(in.PointsInput)
		if value == 0 {
			value = in.SessionPointValue
		}
		if value == 0 {
			value = fallbackRatedValue
		}
		if in.Win {
			return value, nil
		}
		return -value, nil
	case session.GameModeDuelistCup:
		if in.Win {
			value := abs(in.PointsInput)
			if value == 0 {
				value = defaultDuelistCupWin
			}
			return value, nil
		}
		change := -abs(in.PointsInput)
		if in.CurrentPoints+change < 0 {
			change = -in.CurrentPoints
		}
		return change, nil
	default:
		return 0, session.ErrUnsupportedGameMode
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
