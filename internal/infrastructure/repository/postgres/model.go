package postgres

import (
	"time"

	"github.com/duelhq/duel-tracker/internal/domain/deck"
	"github.com/duelhq/duel-tracker/internal/domain/duel"
	"github.com/duelhq/duel-tracker/internal/domain/playerstats"
	"github.com/duelhq/duel-tracker/internal/domain/session"
	"github.com/duelhq/duel-tracker/internal/domain/tier"
	"github.com/duelhq/duel-tracker/internal/domain/user"
)

type sessionTableModel struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	GameMode       string    `db:"game_mode"`
	Status         string    `db:"status"`
	StartsAt       time.Time `db:"starts_at"`
	EndsAt         time.Time `db:"ends_at"`
	StartingRating int       `db:"starting_rating"`
	PointValue     int       `db:"point_value"`
	AdminUserID    string    `db:"admin_user_id"`
	CreatedAt      time.Time `db:"created_at"`
}

func (m sessionTableModel) toDomain() session.Session {
	return session.Session{
		ID:             m.ID,
		Name:           m.Name,
		GameMode:       session.GameMode(m.GameMode),
		Status:         session.Status(m.Status),
		StartsAt:       m.StartsAt,
		EndsAt:         m.EndsAt,
		StartingRating: m.StartingRating,
		PointValue:     m.PointValue,
		AdminUserID:    m.AdminUserID,
		CreatedAt:      m.CreatedAt,
	}
}

func sessionToModel(s session.Session) sessionTableModel {
	return sessionTableModel{
		ID:             s.ID,
		Name:           s.Name,
		GameMode:       string(s.GameMode),
		Status:         string(s.Status),
		StartsAt:       s.StartsAt,
		EndsAt:         s.EndsAt,
		StartingRating: s.StartingRating,
		PointValue:     s.PointValue,
		AdminUserID:    s.AdminUserID,
		CreatedAt:      s.CreatedAt,
	}
}

type duelTableModel struct {
	ID             string    `db:"id"`
	SessionID      string    `db:"session_id"`
	UserID         string    `db:"user_id"`
	PlayerDeckID   string    `db:"player_deck_id"`
	OpponentDeckID string    `db:"opponent_deck_id"`
	Result         string    `db:"result"`
	CoinFlipWon    bool      `db:"coin_flip_won"`
	WentFirst      bool      `db:"went_first"`
	PointsChange   int       `db:"points_change"`
	CreatedAt      time.Time `db:"created_at"`
}

func (m duelTableModel) toDomain() duel.Duel {
	return duel.Duel{
		ID:             m.ID,
		SessionID:      m.SessionID,
		UserID:         m.UserID,
		PlayerDeckID:   m.PlayerDeckID,
		OpponentDeckID: m.OpponentDeckID,
		Result:         duel.Result(m.Result),
		CoinFlipWon:    m.CoinFlipWon,
		WentFirst:      m.WentFirst,
		PointsChange:   m.PointsChange,
		CreatedAt:      m.CreatedAt,
	}
}

func duelToModel(d duel.Duel) duelTableModel {
	return duelTableModel{
		ID:             d.ID,
		SessionID:      d.SessionID,
		UserID:         d.UserID,
		PlayerDeckID:   d.PlayerDeckID,
		OpponentDeckID: d.OpponentDeckID,
		Result:         string(d.Result),
		CoinFlipWon:    d.CoinFlipWon,
		WentFirst:      d.WentFirst,
		PointsChange:   d.PointsChange,
		CreatedAt:      d.CreatedAt,
	}
}

type playerStatsTableModel struct {
	SessionID      string    `db:"session_id"`
	UserID         string    `db:"user_id"`
	Username       string    `db:"username"`
	CurrentPoints  int       `db:"current_points"`
	TotalGames     int       `db:"total_games"`
	TotalWins      int       `db:"total_wins"`
	CurrentTierID  string    `db:"current_tier_id"`
	CurrentNetWins int       `db:"current_net_wins"`
	StartingPoints int       `db:"starting_points"`
	InitialTierID  string    `db:"initial_tier_id"`
	InitialNetWins int       `db:"initial_net_wins"`
	JoinedAt       time.Time `db:"joined_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (m playerStatsTableModel) toDomain() playerstats.Stats {
	return playerstats.Stats{
		SessionID:      m.SessionID,
		UserID:         m.UserID,
		Username:       m.Username,
		CurrentPoints:  m.CurrentPoints,
		TotalGames:     m.TotalGames,
		TotalWins:      m.TotalWins,
		CurrentTierID:  m.CurrentTierID,
		CurrentNetWins: m.CurrentNetWins,
		StartingPoints: m.StartingPoints,
		InitialTierID:  m.InitialTierID,
		InitialNetWins: m.InitialNetWins,
		JoinedAt:       m.JoinedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func playerStatsToModel(s playerstats.Stats) playerStatsTableModel {
	return playerStatsTableModel{
		SessionID:      s.SessionID,
		UserID:         s.UserID,
		Username:       s.Username,
		CurrentPoints:  s.CurrentPoints,
		TotalGames:     s.TotalGames,
		TotalWins:      s.TotalWins,
		CurrentTierID:  s.CurrentTierID,
		CurrentNetWins: s.CurrentNetWins,
		StartingPoints: s.StartingPoints,
		InitialTierID:  s.InitialTierID,
		InitialNetWins: s.InitialNetWins,
		JoinedAt:       s.JoinedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type tierTableModel struct {
	ID            string `db:"id"`
	Name          string `db:"name"`
	WinsRequired  int    `db:"wins_required"`
	CanDemoteFrom bool   `db:"can_demote_from"`
	SortOrder     int    `db:"sort_order"`
}

func (m tierTableModel) toDomain() tier.Tier {
	return tier.Tier{
		ID:            m.ID,
		Name:          m.Name,
		WinsRequired:  m.WinsRequired,
		CanDemoteFrom: m.CanDemoteFrom,
		SortOrder:     m.SortOrder,
	}
}

type deckTableModel struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	ImageURL  string    `db:"image_url"`
	CreatedAt time.Time `db:"created_at"`
}

func (m deckTableModel) toDomain() deck.Deck {
	return deck.Deck{
		ID:        m.ID,
		Name:      m.Name,
		ImageURL:  m.ImageURL,
		CreatedAt: m.CreatedAt,
	}
}

type preferenceTableModel struct {
	UserID              string    `db:"user_id"`
	HideFromLeaderboard bool      `db:"hide_from_leaderboard"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func (m preferenceTableModel) toDomain() user.Preference {
	return user.Preference{
		UserID:              m.UserID,
		HideFromLeaderboard: m.HideFromLeaderboard,
		UpdatedAt:           m.UpdatedAt,
	}
}
