package playerstats

import "time"

// Stats is the materialized running aggregate for one (session, user) pair.
// The Initial* fields capture the join-time seed so the row can always be
// rebuilt by replaying the ledger.
type Stats struct {
	SessionID      string
	UserID         string
	Username       string
	CurrentPoints  int
	TotalGames     int
	TotalWins      int
	CurrentTierID  string // ladder only, empty otherwise
	CurrentNetWins int    // ladder only, may go negative
	StartingPoints int
	InitialTierID  string
	InitialNetWins int
	JoinedAt       time.Time
	UpdatedAt      time.Time
}

// ApplyDuel returns the aggregate after one more duel.
func (s Stats) ApplyDuel(win bool, pointsChange int) Stats {
	s.TotalGames++
	if win {
		s.TotalWins++
	}
	s.CurrentPoints += pointsChange
	return s
}

// RevertDuel is the exact inverse of ApplyDuel, used on duel deletion.
func (s Stats) RevertDuel(win bool, pointsChange int) Stats {
	s.TotalGames--
	if win {
		s.TotalWins--
	}
	s.CurrentPoints -= pointsChange
	return s
}
