package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/duelhq/duel-tracker/internal/domain/user"
	"github.com/duelhq/duel-tracker/internal/usecase"
)

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	viewer, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	day, err := dateFilter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.reportService.Leaderboard(ctx, viewer, sessionID, day)
	if err != nil {
		h.logger.WarnContext(ctx, "leaderboard failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(ctx, entries))
}

func (h *Handler) GetMatchupMatrix(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchupMatrix")
	defer span.End()

	viewer, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	userID := reportSubjectID(r, viewer)
	day, err := dateFilter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.reportService.MatchupMatrix(ctx, sessionID, userID, day)
	if err != nil {
		h.logger.WarnContext(ctx, "matchup matrix failed", "session_id", sessionID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	decks := make([]matchupDeckDTO, 0, len(report.Decks))
	for _, d := range report.Decks {
		decks = append(decks, matchupDeckDTO{
			DeckID:      d.DeckID,
			Name:        d.Name,
			Count:       d.Count,
			Appearances: d.Appearances,
		})
	}
	cells := make([]matchupCellDTO, 0, len(report.Cells))
	for _, cell := range report.Cells {
		cells = append(cells, matchupCellDTO{
			PlayerDeckID:     cell.PlayerDeckID,
			PlayerDeckName:   cell.PlayerDeckName,
			OpponentDeckID:   cell.OpponentDeckID,
			OpponentDeckName: cell.OpponentDeckName,
			Wins:             cell.Wins,
			Losses:           cell.Losses,
			Games:            cell.Games,
			WinRate:          cell.WinRate,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, matchupMatrixDTO{Decks: decks, Cells: cells})
}

func (h *Handler) GetDeckWinRates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDeckWinRates")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	day, err := dateFilter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rates, err := h.reportService.DeckWinRates(ctx, sessionID, day)
	if err != nil {
		h.logger.WarnContext(ctx, "deck win rates failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, deckWinRatesToDTO(ctx, rates))
}

func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetOverview")
	defer span.End()

	viewer, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	userID := reportSubjectID(r, viewer)
	day, err := dateFilter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.reportService.Overview(ctx, sessionID, userID, day)
	if err != nil {
		h.logger.WarnContext(ctx, "overview failed", "session_id", sessionID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	topDecks := make([]opponentDeckCountDTO, 0, len(report.TopOpponentDecks))
	for _, d := range report.TopOpponentDecks {
		topDecks = append(topDecks, opponentDeckCountDTO{DeckID: d.DeckID, Name: d.Name, Count: d.Count})
	}

	writeSuccess(ctx, w, http.StatusOK, overviewDTO{
		SessionID:         report.SessionID,
		UserID:            report.UserID,
		TotalGames:        report.TotalGames,
		TotalWins:         report.TotalWins,
		TotalLosses:       report.TotalLosses,
		WinRate:           report.WinRate,
		FirstTurnWinRate:  report.FirstTurnWinRate,
		SecondTurnWinRate: report.SecondTurnWinRate,
		CurrentPoints:     report.CurrentPoints,
		TierID:            report.TierID,
		TierName:          report.TierName,
		NetWins:           report.NetWins,
		BestDeck: deckPerformanceDTO{
			DeckID:  report.BestDeck.DeckID,
			Name:    report.BestDeck.Name,
			Games:   report.BestDeck.Games,
			WinRate: report.BestDeck.WinRate,
		},
		WorstDeck: deckPerformanceDTO{
			DeckID:  report.WorstDeck.DeckID,
			Name:    report.WorstDeck.Name,
			Games:   report.WorstDeck.Games,
			WinRate: report.WorstDeck.WinRate,
		},
		TopOpponentDecks: topDecks,
	})
}

func (h *Handler) GetPointsTracker(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPointsTracker")
	defer span.End()

	viewer, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	userID := reportSubjectID(r, viewer)
	day, err := dateFilter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.reportService.PointsTracker(ctx, sessionID, userID, day)
	if err != nil {
		h.logger.WarnContext(ctx, "points tracker failed", "session_id", sessionID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	samples := make([]pointsSampleDTO, 0, len(report.Samples))
	for _, sample := range report.Samples {
		samples = append(samples, pointsSampleDTO{
			At:     formatTime(sample.At),
			Change: sample.Change,
			Points: sample.Points,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, pointsTrackerDTO{
		SessionID:      report.SessionID,
		UserID:         report.UserID,
		StartingPoints: report.StartingPoints,
		CurrentPoints:  report.CurrentPoints,
		NetChange:      report.NetChange,
		HighWaterMark:  report.HighWaterMark,
		LowWaterMark:   report.LowWaterMark,
		Samples:        samples,
	})
}

func (h *Handler) GetCoinFlipReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCoinFlipReport")
	defer span.End()

	viewer, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	userID := reportSubjectID(r, viewer)
	day, err := dateFilter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.reportService.CoinFlip(ctx, sessionID, userID, day)
	if err != nil {
		h.logger.WarnContext(ctx, "coin flip report failed", "session_id", sessionID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, coinFlipToDTO(ctx, report))
}

func (h *Handler) GetDuelDates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDuelDates")
	defer span.End()

	viewer, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	userID := reportSubjectID(r, viewer)

	dates, err := h.reportService.DuelDates(ctx, sessionID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "duel dates failed", "session_id", sessionID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, dates)
}

func (h *Handler) GetSessionSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSessionSummary")
	defer span.End()

	viewer, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	day, err := dateFilter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.reportService.Summary(ctx, viewer, sessionID, day)
	if err != nil {
		h.logger.WarnContext(ctx, "session summary failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionSummaryDTO{
		Session:      sessionToDTO(ctx, summary.Session),
		Leaderboard:  leaderboardToDTO(ctx, summary.Leaderboard),
		DeckWinRates: deckWinRatesToDTO(ctx, summary.DeckWinRates),
		CoinFlip:     coinFlipToDTO(ctx, summary.CoinFlip),
	})
}

// reportSubjectID picks whose report to show: the viewer's own by default,
// someone else's when user_id is passed explicitly.
func reportSubjectID(r *http.Request, viewer user.Principal) string {
	if userID := strings.TrimSpace(r.URL.Query().Get("user_id")); userID != "" {
		return userID
	}
	return viewer.UserID
}

// dateFilter parses the optional ?date=YYYY-MM-DD query into a UTC calendar
// day. An absent parameter means no filter.
func dateFilter(r *http.Request) (*time.Time, error) {
	rawDate := strings.TrimSpace(r.URL.Query().Get("date"))
	if rawDate == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation("2006-01-02", rawDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date, expected YYYY-MM-DD: %v", usecase.ErrInvalidInput, err)
	}
	return &day, nil
}
