package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/duelhq/duel-tracker/internal/domain/deck"
	"github.com/duelhq/duel-tracker/internal/domain/duel"
	"github.com/duelhq/duel-tracker/internal/domain/playerstats"
	"github.com/duelhq/duel-tracker/internal/domain/session"
	"github.com/duelhq/duel-tracker/internal/domain/tier"
	"github.com/duelhq/duel-tracker/internal/domain/user"
	"github.com/duelhq/duel-tracker/internal/platform/logging"
	"github.com/duelhq/duel-tracker/internal/usecase"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	sessionService    *usecase.SessionService
	duelService       *usecase.DuelService
	catalogService    *usecase.CatalogService
	preferenceService *usecase.PreferenceService
	reportService     *usecase.ReportService
	rebuildService    *usecase.RebuildService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	sessionService *usecase.SessionService,
	duelService *usecase.DuelService,
	catalogService *usecase.CatalogService,
	preferenceService *usecase.PreferenceService,
	reportService *usecase.ReportService,
	rebuildService *usecase.RebuildService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		sessionService:    sessionService,
		duelService:       duelService,
		catalogService:    catalogService,
		preferenceService: preferenceService,
		reportService:     reportService,
		rebuildService:    rebuildService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type createSessionRequest struct {
	Name           string `json:"name" validate:"required,max=120"`
	GameMode       string `json:"game_mode" validate:"required,oneof=ladder rated duelist_cup"`
	StartsAt       string `json:"starts_at"`
	EndsAt         string `json:"ends_at"`
	StartingRating *int   `json:"starting_rating" validate:"omitempty,gte=0"`
	PointValue     *int   `json:"point_value" validate:"omitempty,gt=0"`
}

type submitDuelRequest struct {
	PlayerDeckID   string `json:"player_deck_id" validate:"required"`
	OpponentDeckID string `json:"opponent_deck_id" validate:"required"`
	Result         string `json:"result" validate:"required,oneof=win loss"`
	CoinFlipWon    bool   `json:"coin_flip_won"`
	WentFirst      bool   `json:"went_first"`
	PointsInput    int    `json:"points_input" validate:"gte=0"`
}

type createDeckRequest struct {
	Name     string `json:"name" validate:"required,max=80"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

type updatePreferenceRequest struct {
	HideFromLeaderboard bool `json:"hide_from_leaderboard"`
}

type joinSessionRequest struct {
	InitialTierID  string `json:"initial_tier_id"`
	InitialNetWins *int   `json:"initial_net_wins"`
}

type sessionDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	GameMode       string `json:"gameMode"`
	Status         string `json:"status"`
	StartsAt       string `json:"startsAt"`
	EndsAt         string `json:"endsAt,omitempty"`
	StartingRating int    `json:"startingRating"`
	PointValue     int    `json:"pointValue"`
	CreatedAt      string `json:"createdAt"`
}

type duelDTO struct {
	ID             string `json:"id"`
	SessionID      string `json:"sessionId"`
	UserID         string `json:"userId"`
	PlayerDeckID   string `json:"playerDeckId"`
	OpponentDeckID string `json:"opponentDeckId"`
	Result         string `json:"result"`
	CoinFlipWon    bool   `json:"coinFlipWon"`
	WentFirst      bool   `json:"wentFirst"`
	PointsChange   int    `json:"pointsChange"`
	CreatedAt      string `json:"createdAt"`
}

type playerStatsDTO struct {
	SessionID     string `json:"sessionId"`
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	CurrentPoints int    `json:"currentPoints"`
	TotalGames    int    `json:"totalGames"`
	TotalWins     int    `json:"totalWins"`
	TierID        string `json:"tierId,omitempty"`
	NetWins       int    `json:"netWins"`
	JoinedAt      string `json:"joinedAt"`
}

type progressionDTO struct {
	Type     string `json:"type"`
	TierID   string `json:"tierId,omitempty"`
	TierName string `json:"tierName,omitempty"`
	NetWins  int    `json:"netWins"`
}

type submitDuelDTO struct {
	Duel        duelDTO         `json:"duel"`
	Stats       playerStatsDTO  `json:"stats"`
	Progression *progressionDTO `json:"progression,omitempty"`
}

type tierDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	WinsRequired  int    `json:"winsRequired"`
	CanDemoteFrom bool   `json:"canDemoteFrom"`
	SortOrder     int    `json:"sortOrder"`
}

type deckDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type preferenceDTO struct {
	HideFromLeaderboard bool `json:"hideFromLeaderboard"`
}

type leaderboardEntryDTO struct {
	Rank              int     `json:"rank"`
	UserID            string  `json:"userId,omitempty"`
	Username          string  `json:"username"`
	Hidden            bool    `json:"hidden,omitempty"`
	TotalGames        int     `json:"totalGames"`
	TotalWins         int     `json:"totalWins"`
	WinRate           float64 `json:"winRate"`
	FirstTurnWinRate  float64 `json:"firstTurnWinRate"`
	SecondTurnWinRate float64 `json:"secondTurnWinRate"`
	MostPlayedDeckID  string  `json:"mostPlayedDeckId,omitempty"`
	MostPlayedDeck    string  `json:"mostPlayedDeck,omitempty"`
	CurrentPoints     int     `json:"currentPoints"`
	TierID            string  `json:"tierId,omitempty"`
	TierName          string  `json:"tierName,omitempty"`
	NetWins           int     `json:"netWins"`
}

type joinSessionDTO struct {
	Stats    playerStatsDTO `json:"stats"`
	Rejoined bool           `json:"rejoined"`
}

type matchupDeckDTO struct {
	DeckID      string `json:"deckId"`
	Name        string `json:"name"`
	Count       int    `json:"count"`
	Appearances int    `json:"appearances"`
}

type matchupMatrixDTO struct {
	Decks []matchupDeckDTO `json:"decks"`
	Cells []matchupCellDTO `json:"cells"`
}

type matchupCellDTO struct {
	PlayerDeckID     string `json:"playerDeckId"`
	PlayerDeckName   string `json:"playerDeckName"`
	OpponentDeckID   string `json:"opponentDeckId"`
	OpponentDeckName string `json:"opponentDeckName"`
	Wins             int    `json:"wins"`
	Losses           int    `json:"losses"`
	Games            int    `json:"games"`
	WinRate          int    `json:"winRate"`
}

type deckWinRateDTO struct {
	DeckID        string  `json:"deckId"`
	DeckName      string  `json:"deckName"`
	Games         int     `json:"games"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	WinRate       float64 `json:"winRate"`
	WinRateFirst  float64 `json:"winRateFirst"`
	WinRateSecond float64 `json:"winRateSecond"`
}

type deckPerformanceDTO struct {
	DeckID  string  `json:"deckId,omitempty"`
	Name    string  `json:"name"`
	Games   int     `json:"games"`
	WinRate float64 `json:"winRate"`
}

type opponentDeckCountDTO struct {
	DeckID string `json:"deckId"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

type overviewDTO struct {
	SessionID         string                 `json:"sessionId"`
	UserID            string                 `json:"userId"`
	TotalGames        int                    `json:"totalGames"`
	TotalWins         int                    `json:"totalWins"`
	TotalLosses       int                    `json:"totalLosses"`
	WinRate           float64                `json:"winRate"`
	FirstTurnWinRate  float64                `json:"firstTurnWinRate"`
	SecondTurnWinRate float64                `json:"secondTurnWinRate"`
	CurrentPoints     int                    `json:"currentPoints"`
	TierID            string                 `json:"tierId,omitempty"`
	TierName          string                 `json:"tierName,omitempty"`
	NetWins           int                    `json:"netWins"`
	BestDeck          deckPerformanceDTO     `json:"bestDeck"`
	WorstDeck         deckPerformanceDTO     `json:"worstDeck"`
	TopOpponentDecks  []opponentDeckCountDTO `json:"topOpponentDecks"`
}

type pointsSampleDTO struct {
	At     string `json:"at"`
	Change int    `json:"change"`
	Points int    `json:"points"`
}

type pointsTrackerDTO struct {
	SessionID      string            `json:"sessionId"`
	UserID         string            `json:"userId"`
	StartingPoints int               `json:"startingPoints"`
	CurrentPoints  int               `json:"currentPoints"`
	NetChange      int               `json:"netChange"`
	HighWaterMark  int               `json:"highWaterMark"`
	LowWaterMark   int               `json:"lowWaterMark"`
	Samples        []pointsSampleDTO `json:"samples"`
}

type coinFlipDTO struct {
	Total           int     `json:"total"`
	Won             int     `json:"won"`
	Expected        float64 `json:"expected"`
	Deviation       float64 `json:"deviation"`
	StdDev          float64 `json:"stdDev"`
	WinRateWonFlip  float64 `json:"winRateWonFlip"`
	WinRateLostFlip float64 `json:"winRateLostFlip"`
	WentFirst       int     `json:"wentFirst"`
	WinRateFirst    float64 `json:"winRateFirst"`
	WinRateSecond   float64 `json:"winRateSecond"`
}

type sessionSummaryDTO struct {
	Session      sessionDTO            `json:"session"`
	Leaderboard  []leaderboardEntryDTO `json:"leaderboard"`
	DeckWinRates []deckWinRateDTO      `json:"deckWinRates"`
	CoinFlip     coinFlipDTO           `json:"coinFlip"`
}

type rebuildResultDTO struct {
	SessionID string `json:"sessionId"`
	Players   int    `json:"players"`
	Rebuilt   int    `json:"rebuilt"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func sessionToDTO(ctx context.Context, s session.Session) sessionDTO {
	return sessionDTO{
		ID:             s.ID,
		Name:           s.Name,
		GameMode:       string(s.GameMode),
		Status:         string(s.Status),
		StartsAt:       formatTime(s.StartsAt),
		EndsAt:         formatTime(s.EndsAt),
		StartingRating: s.StartingRating,
		PointValue:     s.PointValue,
		CreatedAt:      formatTime(s.CreatedAt),
	}
}

func duelToDTO(ctx context.Context, d duel.Duel) duelDTO {
	return duelDTO{
		ID:             d.ID,
		SessionID:      d.SessionID,
		UserID:         d.UserID,
		PlayerDeckID:   d.PlayerDeckID,
		OpponentDeckID: d.OpponentDeckID,
		Result:         string(d.Result),
		CoinFlipWon:    d.CoinFlipWon,
		WentFirst:      d.WentFirst,
		PointsChange:   d.PointsChange,
		CreatedAt:      formatTime(d.CreatedAt),
	}
}

func statsToDTO(ctx context.Context, st playerstats.Stats) playerStatsDTO {
	return playerStatsDTO{
		SessionID:     st.SessionID,
		UserID:        st.UserID,
		Username:      st.Username,
		CurrentPoints: st.CurrentPoints,
		TotalGames:    st.TotalGames,
		TotalWins:     st.TotalWins,
		TierID:        st.CurrentTierID,
		NetWins:       st.CurrentNetWins,
		JoinedAt:      formatTime(st.JoinedAt),
	}
}

func progressionToDTO(ctx context.Context, p tier.Progression) *progressionDTO {
	if p.Type == tier.ProgressionNone || p.Type == "" {
		return nil
	}
	dto := &progressionDTO{
		Type:    string(p.Type),
		NetWins: p.NetWins,
	}
	if p.NewTier != nil {
		dto.TierID = p.NewTier.ID
		dto.TierName = p.NewTier.Name
	}
	return dto
}

func tierToDTO(ctx context.Context, t tier.Tier) tierDTO {
	return tierDTO{
		ID:            t.ID,
		Name:          t.Name,
		WinsRequired:  t.WinsRequired,
		CanDemoteFrom: t.CanDemoteFrom,
		SortOrder:     t.SortOrder,
	}
}

func deckToDTO(ctx context.Context, d deck.Deck) deckDTO {
	return deckDTO{
		ID:       d.ID,
		Name:     d.Name,
		ImageURL: d.ImageURL,
	}
}

func preferenceToDTO(ctx context.Context, p user.Preference) preferenceDTO {
	return preferenceDTO{HideFromLeaderboard: p.HideFromLeaderboard}
}

func leaderboardToDTO(ctx context.Context, entries []usecase.LeaderboardEntry) []leaderboardEntryDTO {
	items := make([]leaderboardEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, leaderboardEntryDTO{
			Rank:              entry.Rank,
			UserID:            entry.UserID,
			Username:          entry.Username,
			Hidden:            entry.Hidden,
			TotalGames:        entry.TotalGames,
			TotalWins:         entry.TotalWins,
			WinRate:           entry.WinRate,
			FirstTurnWinRate:  entry.FirstTurnWinRate,
			SecondTurnWinRate: entry.SecondTurnWinRate,
			MostPlayedDeckID:  entry.MostPlayedDeckID,
			MostPlayedDeck:    entry.MostPlayedDeck,
			CurrentPoints:     entry.CurrentPoints,
			TierID:            entry.TierID,
			TierName:          entry.TierName,
			NetWins:           entry.NetWins,
		})
	}
	return items
}

func deckWinRatesToDTO(ctx context.Context, rates []usecase.DeckWinRate) []deckWinRateDTO {
	items := make([]deckWinRateDTO, 0, len(rates))
	for _, rate := range rates {
		items = append(items, deckWinRateDTO{
			DeckID:        rate.DeckID,
			DeckName:      rate.DeckName,
			Games:         rate.Games,
			Wins:          rate.Wins,
			Losses:        rate.Losses,
			WinRate:       rate.WinRate,
			WinRateFirst:  rate.WinRateFirst,
			WinRateSecond: rate.WinRateSecond,
		})
	}
	return items
}

func coinFlipToDTO(ctx context.Context, report usecase.CoinFlipReport) coinFlipDTO {
	return coinFlipDTO{
		Total:           report.Total,
		Won:             report.Won,
		Expected:        report.Expected,
		Deviation:       report.Deviation,
		StdDev:          report.StdDev,
		WinRateWonFlip:  report.WinRateWonFlip,
		WinRateLostFlip: report.WinRateLostFlip,
		WentFirst:       report.WentFirst,
		WinRateFirst:    report.WinRateFirst,
		WinRateSecond:   report.WinRateSecond,
	}
}
