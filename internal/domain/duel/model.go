package duel

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidResult = errors.New("invalid duel result")

type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
)

func ParseResult(v string) (Result, error) {
	switch Result(strings.ToLower(strings.TrimSpace(v))) {
	case ResultWin:
		return ResultWin, nil
	case ResultLoss:
		return ResultLoss, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidResult, v)
	}
}

// Duel is one recorded match result. PointsChange is computed once at
// submission time and never recomputed from current rules.
type Duel struct {
	ID             string
	SessionID      string
	UserID         string
	PlayerDeckID   string
	OpponentDeckID string
	Result         Result
	CoinFlipWon    bool
	WentFirst      bool
	PointsChange   int
	CreatedAt      time.Time
}

func (d Duel) IsWin() bool {
	return d.Result == ResultWin
}

// Filter narrows ledger scans. Day, when set, restricts to a single UTC
// calendar day [00:00:00, 24h).
type Filter struct {
	SessionID string
	UserID    string
	Day       *time.Time
}

// DayBounds returns the UTC [start, end) window for the filter day.
func (f Filter) DayBounds() (time.Time, time.Time, bool) {
	if f.Day == nil {
		return time.Time{}, time.Time{}, false
	}
	start := time.Date(f.Day.Year(), f.Day.Month(), f.Day.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour), true
}

// Matches reports whether d falls inside the filter.
func (f Filter) Matches(d Duel) bool {
	if f.SessionID != "" && d.SessionID != f.SessionID {
		return false
	}
	if f.UserID != "" && d.UserID != f.UserID {
		return false
	}
	if start, end, ok := f.DayBounds(); ok {
		created := d.CreatedAt.UTC()
		if created.Before(start) || !created.Before(end) {
			return false
		}
	}
	return true
}
