package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/duelhq/duel-tracker/internal/domain/deck"
	"github.com/duelhq/duel-tracker/internal/domain/duel"
	"github.com/duelhq/duel-tracker/internal/domain/playerstats"
	"github.com/duelhq/duel-tracker/internal/domain/session"
	"github.com/duelhq/duel-tracker/internal/domain/tier"
	"github.com/duelhq/duel-tracker/internal/domain/user"
)

// minDeckSampleGames is the smallest sample considered meaningful when
// ranking a player's best and worst decks.
const minDeckSampleGames = 3

// ReportService computes read-only views over the duel ledger. Every report
// is derived on demand; nothing here writes state. All views take an optional
// day restricting the scanned duels to one UTC calendar day.
type ReportService struct {
	sessionRepo session.Repository
	duelRepo    duel.Repository
	statsRepo   playerstats.Repository
	tierRepo    tier.Repository
	deckRepo    deck.Repository
	prefRepo    user.PreferenceRepository
}

func NewReportService(
	sessionRepo session.Repository,
	duelRepo duel.Repository,
	statsRepo playerstats.Repository,
	tierRepo tier.Repository,
	deckRepo deck.Repository,
	prefRepo user.PreferenceRepository,
) *ReportService {
	return &ReportService{
		sessionRepo: sessionRepo,
		duelRepo:    duelRepo,
		statsRepo:   statsRepo,
		tierRepo:    tierRepo,
		deckRepo:    deckRepo,
		prefRepo:    prefRepo,
	}
}

type LeaderboardEntry struct {
	Rank              int
	UserID            string
	Username          string
	Hidden            bool
	TotalGames        int
	TotalWins         int
	WinRate           float64
	FirstTurnWinRate  float64
	SecondTurnWinRate float64
	MostPlayedDeckID  string
	MostPlayedDeck    string
	CurrentPoints     int
	TierID            string
	TierName          string
	NetWins           int
}

// turnSplit accumulates one player's duels bucketed by play order, plus the
// per-deck play counts needed for the most-played column. deckOrder remembers
// first appearance so count ties resolve to the deck seen first.
type turnSplit struct {
	games       int
	wins        int
	firstGames  int
	firstWins   int
	secondGames int
	secondWins  int
	deckCounts  map[string]int
	deckOrder   []string
}

func (t *turnSplit) add(d duel.Duel) {
	t.games++
	win := d.IsWin()
	if win {
		t.wins++
	}
	if d.WentFirst {
		t.firstGames++
		if win {
			t.firstWins++
		}
	} else {
		t.secondGames++
		if win {
			t.secondWins++
		}
	}
	if _, ok := t.deckCounts[d.PlayerDeckID]; !ok {
		t.deckOrder = append(t.deckOrder, d.PlayerDeckID)
	}
	t.deckCounts[d.PlayerDeckID]++
}

func (t *turnSplit) mostPlayedDeck() string {
	best := ""
	bestCount := 0
	for _, deckID := range t.deckOrder {
		if t.deckCounts[deckID] > bestCount {
			best = deckID
			bestCount = t.deckCounts[deckID]
		}
	}
	return best
}

// Leaderboard ranks every enrolled player. Ladder sessions order by tier then
// total games; other modes order by points. Players who opted out of the
// public leaderboard keep their identity but lose their performance columns
// for every viewer but themselves, except in archived sessions where nothing
// is redacted. With a day set, game counts and rates come from that day's
// duels while points, tier and net wins stay current.
func (s *ReportService) Leaderboard(ctx context.Context, viewer user.Principal, sessionID string, day *time.Time) ([]LeaderboardEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.Leaderboard")
	defer span.End()

	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	stats, err := s.statsRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list player stats: %w", err)
	}

	duels, err := s.duelRepo.ListByFilter(ctx, duel.Filter{SessionID: sessionID, Day: day})
	if err != nil {
		return nil, fmt.Errorf("list duels: %w", err)
	}

	splits := map[string]*turnSplit{}
	for _, d := range duels {
		split, ok := splits[d.UserID]
		if !ok {
			split = &turnSplit{deckCounts: map[string]int{}}
			splits[d.UserID] = split
		}
		split.add(d)
	}

	names, err := s.deckNames(ctx)
	if err != nil {
		return nil, err
	}

	tierByID := map[string]tier.Tier{}
	if sess.GameMode == session.GameModeLadder {
		tiers, err := s.tierRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list ladder tiers: %w", err)
		}
		for _, t := range tiers {
			tierByID[t.ID] = t
		}
	}

	entries := make([]LeaderboardEntry, 0, len(stats))
	for _, st := range stats {
		entry := LeaderboardEntry{
			UserID:        st.UserID,
			Username:      st.Username,
			TotalGames:    st.TotalGames,
			TotalWins:     st.TotalWins,
			WinRate:       winRate(st.TotalWins, st.TotalGames),
			CurrentPoints: st.CurrentPoints,
			TierID:        st.CurrentTierID,
			NetWins:       st.CurrentNetWins,
		}
		if split, ok := splits[st.UserID]; ok {
			if day != nil {
				entry.TotalGames = split.games
				entry.TotalWins = split.wins
				entry.WinRate = winRate(split.wins, split.games)
			}
			entry.FirstTurnWinRate = winRate(split.firstWins, split.firstGames)
			entry.SecondTurnWinRate = winRate(split.secondWins, split.secondGames)
			entry.MostPlayedDeckID = split.mostPlayedDeck()
			entry.MostPlayedDeck = names[entry.MostPlayedDeckID]
		} else if day != nil {
			entry.TotalGames = 0
			entry.TotalWins = 0
			entry.WinRate = 0
		}
		if t, ok := tierByID[st.CurrentTierID]; ok {
			entry.TierName = t.Name
		}
		entries = append(entries, entry)
	}

	if sess.GameMode == session.GameModeLadder {
		sort.SliceStable(entries, func(i, j int) bool {
			si := tierByID[entries[i].TierID].SortOrder
			sj := tierByID[entries[j].TierID].SortOrder
			if si != sj {
				return si > sj
			}
			return entries[i].TotalGames > entries[j].TotalGames
		})
	} else {
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].CurrentPoints != entries[j].CurrentPoints {
				return entries[i].CurrentPoints > entries[j].CurrentPoints
			}
			if entries[i].TotalWins != entries[j].TotalWins {
				return entries[i].TotalWins > entries[j].TotalWins
			}
			return entries[i].TotalGames > entries[j].TotalGames
		})
	}

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return s.redactHidden(ctx, viewer, sess, entries)
}

// redactHidden blanks the performance columns of opted-out players. Identity
// and standing (points, tier) stay visible; only the owner sees their own
// numbers. Archived sessions are final standings and skip redaction.
func (s *ReportService) redactHidden(ctx context.Context, viewer user.Principal, sess session.Session, entries []LeaderboardEntry) ([]LeaderboardEntry, error) {
	if sess.IsArchived() {
		return entries, nil
	}
	for i, entry := range entries {
		if entry.UserID == viewer.UserID {
			continue
		}
		pref, err := s.prefRepo.Get(ctx, entry.UserID)
		if err != nil {
			return nil, fmt.Errorf("get preference: %w", err)
		}
		if pref != nil && pref.HideFromLeaderboard {
			entries[i].Hidden = true
			entries[i].TotalGames = 0
			entries[i].TotalWins = 0
			entries[i].WinRate = 0
			entries[i].FirstTurnWinRate = 0
			entries[i].SecondTurnWinRate = 0
			entries[i].MostPlayedDeckID = ""
			entries[i].MostPlayedDeck = ""
		}
	}
	return entries, nil
}

type MatchupCell struct {
	PlayerDeckID     string
	PlayerDeckName   string
	OpponentDeckID   string
	OpponentDeckName string
	Wins             int
	Losses           int
	Games            int
	WinRate          int
}

type MatchupDeck struct {
	DeckID string
	Name   string
	// Count is how many duels were played with the deck; a deck only ever
	// seen on the opposing side keeps Count at zero.
	Count int
	// Appearances counts the deck on either side of the table.
	Appearances int
}

type MatchupMatrixReport struct {
	Decks []MatchupDeck
	Cells []MatchupCell
}

// MatchupMatrix aggregates results per (player deck, opponent deck) pair from
// the recorded rows only. A cell for the reversed pair is derived by flipping
// wins and losses, but only when no direct rows exist for that orientation.
// The deck list covers every deck seen on either side, ordered by total
// appearances.
func (s *ReportService) MatchupMatrix(ctx context.Context, sessionID, userID string, day *time.Time) (MatchupMatrixReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.MatchupMatrix")
	defer span.End()

	if _, err := s.getSession(ctx, sessionID); err != nil {
		return MatchupMatrixReport{}, err
	}

	duels, err := s.duelRepo.ListByFilter(ctx, duel.Filter{SessionID: sessionID, UserID: userID, Day: day})
	if err != nil {
		return MatchupMatrixReport{}, fmt.Errorf("list duels: %w", err)
	}

	type key struct{ player, opponent string }
	direct := map[key]*MatchupCell{}
	played := map[string]int{}
	appearances := map[string]int{}
	for _, d := range duels {
		k := key{player: d.PlayerDeckID, opponent: d.OpponentDeckID}
		cell, ok := direct[k]
		if !ok {
			cell = &MatchupCell{PlayerDeckID: d.PlayerDeckID, OpponentDeckID: d.OpponentDeckID}
			direct[k] = cell
		}
		if d.IsWin() {
			cell.Wins++
		} else {
			cell.Losses++
		}
		played[d.PlayerDeckID]++
		appearances[d.PlayerDeckID]++
		appearances[d.OpponentDeckID]++
	}

	names, err := s.deckNames(ctx)
	if err != nil {
		return MatchupMatrixReport{}, err
	}

	finish := func(cell MatchupCell) MatchupCell {
		cell.Games = cell.Wins + cell.Losses
		if cell.Games > 0 {
			cell.WinRate = int(math.Round(float64(cell.Wins) / float64(cell.Games) * 100))
		}
		cell.PlayerDeckName = names[cell.PlayerDeckID]
		cell.OpponentDeckName = names[cell.OpponentDeckID]
		return cell
	}

	cells := make([]MatchupCell, 0, len(direct)*2)
	for _, cell := range direct {
		cells = append(cells, finish(*cell))
	}
	for k, cell := range direct {
		inverse := key{player: k.opponent, opponent: k.player}
		if _, ok := direct[inverse]; ok {
			continue
		}
		cells = append(cells, finish(MatchupCell{
			PlayerDeckID:   k.opponent,
			OpponentDeckID: k.player,
			Wins:           cell.Losses,
			Losses:         cell.Wins,
		}))
	}

	decks := make([]MatchupDeck, 0, len(appearances))
	for deckID, seen := range appearances {
		decks = append(decks, MatchupDeck{
			DeckID:      deckID,
			Name:        names[deckID],
			Count:       played[deckID],
			Appearances: seen,
		})
	}
	sort.Slice(decks, func(i, j int) bool {
		if decks[i].Appearances != decks[j].Appearances {
			return decks[i].Appearances > decks[j].Appearances
		}
		return decks[i].Name < decks[j].Name
	})

	rank := make(map[string]int, len(decks))
	for i, d := range decks {
		rank[d.DeckID] = i
	}
	sort.Slice(cells, func(i, j int) bool {
		if rank[cells[i].PlayerDeckID] != rank[cells[j].PlayerDeckID] {
			return rank[cells[i].PlayerDeckID] < rank[cells[j].PlayerDeckID]
		}
		return rank[cells[i].OpponentDeckID] < rank[cells[j].OpponentDeckID]
	})

	return MatchupMatrixReport{Decks: decks, Cells: cells}, nil
}

type DeckWinRate struct {
	DeckID        string
	DeckName      string
	Games         int
	Wins          int
	Losses        int
	WinRate       float64
	WinRateFirst  float64
	WinRateSecond float64
}

// DeckWinRates aggregates per played deck across the whole session, with the
// win rate also split by play order. Most-played decks come first.
func (s *ReportService) DeckWinRates(ctx context.Context, sessionID string, day *time.Time) ([]DeckWinRate, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.DeckWinRates")
	defer span.End()

	if _, err := s.getSession(ctx, sessionID); err != nil {
		return nil, err
	}

	duels, err := s.duelRepo.ListByFilter(ctx, duel.Filter{SessionID: sessionID, Day: day})
	if err != nil {
		return nil, fmt.Errorf("list duels: %w", err)
	}

	type deckAgg struct {
		wins, losses            int
		firstGames, firstWins   int
		secondGames, secondWins int
	}
	byDeck := map[string]*deckAgg{}
	for _, d := range duels {
		agg, ok := byDeck[d.PlayerDeckID]
		if !ok {
			agg = &deckAgg{}
			byDeck[d.PlayerDeckID] = agg
		}
		win := d.IsWin()
		if win {
			agg.wins++
		} else {
			agg.losses++
		}
		if d.WentFirst {
			agg.firstGames++
			if win {
				agg.firstWins++
			}
		} else {
			agg.secondGames++
			if win {
				agg.secondWins++
			}
		}
	}

	names, err := s.deckNames(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]DeckWinRate, 0, len(byDeck))
	for deckID, agg := range byDeck {
		games := agg.wins + agg.losses
		out = append(out, DeckWinRate{
			DeckID:        deckID,
			DeckName:      names[deckID],
			Games:         games,
			Wins:          agg.wins,
			Losses:        agg.losses,
			WinRate:       winRate(agg.wins, games),
			WinRateFirst:  winRate(agg.firstWins, agg.firstGames),
			WinRateSecond: winRate(agg.secondWins, agg.secondGames),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Games != out[j].Games {
			return out[i].Games > out[j].Games
		}
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		return out[i].DeckName < out[j].DeckName
	})

	return out, nil
}

type DeckPerformance struct {
	DeckID  string
	Name    string
	Games   int
	WinRate float64
}

type OpponentDeckCount struct {
	DeckID string
	Name   string
	Count  int
}

type OverviewReport struct {
	SessionID         string
	UserID            string
	TotalGames        int
	TotalWins         int
	TotalLosses       int
	WinRate           float64
	FirstTurnWinRate  float64
	SecondTurnWinRate float64
	CurrentPoints     int
	TierID            string
	TierName          string
	NetWins           int
	BestDeck          DeckPerformance
	WorstDeck         DeckPerformance
	TopOpponentDecks  []OpponentDeckCount
}

// Overview is the personal dashboard for one player in one session. Best and
// worst decks need at least three games to count; with no qualifying deck the
// placeholder row is returned. With a day set, totals and rates come from
// that day's duels while points and tier stay current.
func (s *ReportService) Overview(ctx context.Context, sessionID, userID string, day *time.Time) (OverviewReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.Overview")
	defer span.End()

	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return OverviewReport{}, err
	}

	stats, ok, err := s.statsRepo.Get(ctx, sessionID, userID)
	if err != nil {
		return OverviewReport{}, fmt.Errorf("get player stats: %w", err)
	}
	if !ok {
		return OverviewReport{}, fmt.Errorf("%w: player %s in session %s", ErrNotFound, userID, sessionID)
	}

	duels, err := s.duelRepo.ListByFilter(ctx, duel.Filter{SessionID: sessionID, UserID: userID, Day: day})
	if err != nil {
		return OverviewReport{}, fmt.Errorf("list duels: %w", err)
	}

	report := OverviewReport{
		SessionID:     sessionID,
		UserID:        userID,
		TotalGames:    stats.TotalGames,
		TotalWins:     stats.TotalWins,
		TotalLosses:   stats.TotalGames - stats.TotalWins,
		WinRate:       winRate(stats.TotalWins, stats.TotalGames),
		CurrentPoints: stats.CurrentPoints,
		TierID:        stats.CurrentTierID,
		NetWins:       stats.CurrentNetWins,
	}

	if sess.GameMode == session.GameModeLadder && stats.CurrentTierID != "" {
		t, ok, err := s.tierRepo.GetByID(ctx, stats.CurrentTierID)
		if err != nil {
			return OverviewReport{}, fmt.Errorf("get ladder tier: %w", err)
		}
		if ok {
			report.TierName = t.Name
		}
	}

	names, err := s.deckNames(ctx)
	if err != nil {
		return OverviewReport{}, err
	}

	type deckAgg struct {
		games int
		wins  int
	}
	ownDecks := map[string]*deckAgg{}
	opponents := map[string]int{}
	var wins, firstGames, firstWins, secondGames, secondWins int
	for _, d := range duels {
		agg, ok := ownDecks[d.PlayerDeckID]
		if !ok {
			agg = &deckAgg{}
			ownDecks[d.PlayerDeckID] = agg
		}
		agg.games++
		win := d.IsWin()
		if win {
			agg.wins++
			wins++
		}
		if d.WentFirst {
			firstGames++
			if win {
				firstWins++
			}
		} else {
			secondGames++
			if win {
				secondWins++
			}
		}
		opponents[d.OpponentDeckID]++
	}

	report.FirstTurnWinRate = winRate(firstWins, firstGames)
	report.SecondTurnWinRate = winRate(secondWins, secondGames)
	if day != nil {
		report.TotalGames = len(duels)
		report.TotalWins = wins
		report.TotalLosses = len(duels) - wins
		report.WinRate = winRate(wins, len(duels))
	}

	report.BestDeck = DeckPerformance{Name: "-"}
	report.WorstDeck = DeckPerformance{Name: "-"}
	for deckID, agg := range ownDecks {
		if agg.games < minDeckSampleGames {
			continue
		}
		perf := DeckPerformance{
			DeckID:  deckID,
			Name:    names[deckID],
			Games:   agg.games,
			WinRate: winRate(agg.wins, agg.games),
		}
		if report.BestDeck.Name == "-" || perf.WinRate > report.BestDeck.WinRate {
			report.BestDeck = perf
		}
		if report.WorstDeck.Name == "-" || perf.WinRate < report.WorstDeck.WinRate {
			report.WorstDeck = perf
		}
	}

	counts := make([]OpponentDeckCount, 0, len(opponents))
	for deckID, count := range opponents {
		counts = append(counts, OpponentDeckCount{DeckID: deckID, Name: names[deckID], Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	if len(counts) > 3 {
		counts = counts[:3]
	}
	report.TopOpponentDecks = counts

	return report, nil
}

type PointsSample struct {
	At     time.Time
	Change int
	Points int
}

type PointsTrackerReport struct {
	SessionID      string
	UserID         string
	StartingPoints int
	CurrentPoints  int
	NetChange      int
	HighWaterMark  int
	LowWaterMark   int
	Samples        []PointsSample
}

// PointsTracker replays the player's duels chronologically into a running
// points series with high and low water marks and the net change from the
// starting rating to the end of the series.
func (s *ReportService) PointsTracker(ctx context.Context, sessionID, userID string, day *time.Time) (PointsTrackerReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.PointsTracker")
	defer span.End()

	if _, err := s.getSession(ctx, sessionID); err != nil {
		return PointsTrackerReport{}, err
	}

	stats, ok, err := s.statsRepo.Get(ctx, sessionID, userID)
	if err != nil {
		return PointsTrackerReport{}, fmt.Errorf("get player stats: %w", err)
	}
	if !ok {
		return PointsTrackerReport{}, fmt.Errorf("%w: player %s in session %s", ErrNotFound, userID, sessionID)
	}

	duels, err := s.duelRepo.ListByFilter(ctx, duel.Filter{SessionID: sessionID, UserID: userID, Day: day})
	if err != nil {
		return PointsTrackerReport{}, fmt.Errorf("list duels: %w", err)
	}

	report := PointsTrackerReport{
		SessionID:      sessionID,
		UserID:         userID,
		StartingPoints: stats.StartingPoints,
		HighWaterMark:  stats.StartingPoints,
		LowWaterMark:   stats.StartingPoints,
		Samples:        make([]PointsSample, 0, len(duels)),
	}

	running := stats.StartingPoints
	for _, d := range duels {
		running += d.PointsChange
		if running > report.HighWaterMark {
			report.HighWaterMark = running
		}
		if running < report.LowWaterMark {
			report.LowWaterMark = running
		}
		report.Samples = append(report.Samples, PointsSample{
			At:     d.CreatedAt,
			Change: d.PointsChange,
			Points: running,
		})
	}
	report.CurrentPoints = running
	report.NetChange = running - report.StartingPoints

	return report, nil
}

type CoinFlipReport struct {
	Total           int
	Won             int
	Expected        float64
	Deviation       float64
	StdDev          float64
	WinRateWonFlip  float64
	WinRateLostFlip float64
	WentFirst       int
	WinRateFirst    float64
	WinRateSecond   float64
}

// CoinFlip compares observed coin flip luck against the fair-coin
// expectation n/2 with standard deviation sqrt(n)/2, and splits duel win
// rates by flip outcome and play order.
func (s *ReportService) CoinFlip(ctx context.Context, sessionID, userID string, day *time.Time) (CoinFlipReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.CoinFlip")
	defer span.End()

	if _, err := s.getSession(ctx, sessionID); err != nil {
		return CoinFlipReport{}, err
	}

	duels, err := s.duelRepo.ListByFilter(ctx, duel.Filter{SessionID: sessionID, UserID: userID, Day: day})
	if err != nil {
		return CoinFlipReport{}, fmt.Errorf("list duels: %w", err)
	}

	var report CoinFlipReport
	var winsWonFlip, gamesWonFlip, winsLostFlip, gamesLostFlip int
	var winsFirst, winsSecond, gamesSecond int
	for _, d := range duels {
		report.Total++
		if d.CoinFlipWon {
			report.Won++
			gamesWonFlip++
			if d.IsWin() {
				winsWonFlip++
			}
		} else {
			gamesLostFlip++
			if d.IsWin() {
				winsLostFlip++
			}
		}
		if d.WentFirst {
			report.WentFirst++
			if d.IsWin() {
				winsFirst++
			}
		} else {
			gamesSecond++
			if d.IsWin() {
				winsSecond++
			}
		}
	}

	if report.Total > 0 {
		n := float64(report.Total)
		report.Expected = n * 0.5
		report.Deviation = float64(report.Won) - report.Expected
		report.StdDev = math.Sqrt(n * 0.25)
	}
	report.WinRateWonFlip = winRate(winsWonFlip, gamesWonFlip)
	report.WinRateLostFlip = winRate(winsLostFlip, gamesLostFlip)
	report.WinRateFirst = winRate(winsFirst, report.WentFirst)
	report.WinRateSecond = winRate(winsSecond, gamesSecond)

	return report, nil
}

// DuelDates lists the distinct UTC calendar days with recorded duels, most
// recent first. This is the index the day filter picks from, so it never
// takes one itself.
func (s *ReportService) DuelDates(ctx context.Context, sessionID, userID string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.DuelDates")
	defer span.End()

	if _, err := s.getSession(ctx, sessionID); err != nil {
		return nil, err
	}

	duels, err := s.duelRepo.ListByFilter(ctx, duel.Filter{SessionID: sessionID, UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("list duels: %w", err)
	}

	seen := map[string]struct{}{}
	dates := make([]string, 0)
	for _, d := range duels {
		day := d.CreatedAt.UTC().Format("2006-01-02")
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		dates = append(dates, day)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	return dates, nil
}

type SessionSummary struct {
	Session      session.Session
	Leaderboard  []LeaderboardEntry
	DeckWinRates []DeckWinRate
	CoinFlip     CoinFlipReport
}

// Summary bundles the session-wide views in one response, loading them
// concurrently.
func (s *ReportService) Summary(ctx context.Context, viewer user.Principal, sessionID string, day *time.Time) (SessionSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.Summary")
	defer span.End()

	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return SessionSummary{}, err
	}

	summary := SessionSummary{Session: sess}

	var leaderboardErr, deckErr, coinErr error
	var wg conc.WaitGroup
	wg.Go(func() {
		summary.Leaderboard, leaderboardErr = s.Leaderboard(ctx, viewer, sessionID, day)
	})
	wg.Go(func() {
		summary.DeckWinRates, deckErr = s.DeckWinRates(ctx, sessionID, day)
	})
	wg.Go(func() {
		summary.CoinFlip, coinErr = s.CoinFlip(ctx, sessionID, "", day)
	})
	wg.Wait()

	for _, err := range []error{leaderboardErr, deckErr, coinErr} {
		if err != nil {
			return SessionSummary{}, err
		}
	}

	return summary, nil
}

func (s *ReportService) getSession(ctx context.Context, sessionID string) (session.Session, error) {
	if sessionID == "" {
		return session.Session{}, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}

	sess, ok, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return session.Session{}, fmt.Errorf("get session: %w", err)
	}
	if !ok {
		return session.Session{}, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}

	return sess, nil
}

func (s *ReportService) deckNames(ctx context.Context) (map[string]string, error) {
	decks, err := s.deckRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}

	names := make(map[string]string, len(decks))
	for _, d := range decks {
		names[d.ID] = d.Name
	}
	return names, nil
}

func winRate(wins, games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(wins) / float64(games) * 100
}
