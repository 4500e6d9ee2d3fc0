package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/duelhq/duel-tracker/internal/domain/duel"
	"github.com/duelhq/duel-tracker/internal/domain/playerstats"
	"github.com/duelhq/duel-tracker/internal/domain/user"
	"github.com/duelhq/duel-tracker/internal/infrastructure/repository/memory"
	"github.com/duelhq/duel-tracker/internal/platform/id"
)

type serviceFixture struct {
	sessionRepo *memory.SessionRepository
	duelRepo    *memory.DuelRepository
	statsRepo   *memory.PlayerStatsRepository
	tierRepo    *memory.TierRepository
	deckRepo    *memory.DeckRepository
	prefRepo    *memory.PreferenceRepository
	ledger      *memory.Ledger

	sessions *SessionService
	duels    *DuelService
	reports  *ReportService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	duelRepo := memory.NewDuelRepository()
	statsRepo := memory.NewPlayerStatsRepository()
	sessionRepo := memory.NewSessionRepository(memory.SeedSessions(time.Now().UTC()), duelRepo, statsRepo)
	tierRepo := memory.NewTierRepository(memory.SeedTiers())
	deckRepo := memory.NewDeckRepository(memory.SeedDecks())
	prefRepo := memory.NewPreferenceRepository()
	ledger := memory.NewLedger(duelRepo, statsRepo)
	idGen := id.NewRandomGenerator()

	return &serviceFixture{
		sessionRepo: sessionRepo,
		duelRepo:    duelRepo,
		statsRepo:   statsRepo,
		tierRepo:    tierRepo,
		deckRepo:    deckRepo,
		prefRepo:    prefRepo,
		ledger:      ledger,
		sessions:    NewSessionService(sessionRepo, statsRepo, tierRepo, idGen),
		duels:       NewDuelService(sessionRepo, duelRepo, ledger, statsRepo, tierRepo, deckRepo, idGen),
		reports:     NewReportService(sessionRepo, duelRepo, statsRepo, tierRepo, deckRepo, prefRepo),
	}
}

func submitLadderDuel(t *testing.T, f *serviceFixture, principal user.Principal, result string) SubmitDuelOutput {
	t.Helper()

	out, err := f.duels.Submit(t.Context(), principal, SubmitDuelInput{
		SessionID:      memory.SessionIDLadderOpen,
		PlayerDeckID:   "deck-blue-eyes",
		OpponentDeckID: "deck-branded",
		Result:         result,
	})
	if err != nil {
		t.Fatalf("submit ladder duel failed: %v", err)
	}
	return out
}

func TestDuelService_Submit_LadderScoresOnePoint(t *testing.T) {
	f := newServiceFixture(t)
	principal := user.Principal{UserID: "user-1", Username: "yugi"}

	win := submitLadderDuel(t, f, principal, "win")
	if win.Duel.PointsChange != 1 {
		t.Fatalf("unexpected win change: got=%d want=1", win.Duel.PointsChange)
	}
	if win.Stats.TotalGames != 1 || win.Stats.TotalWins != 1 {
		t.Fatalf("unexpected stats after win: %+v", win.Stats)
	}

	loss := submitLadderDuel(t, f, principal, "loss")
	if loss.Duel.PointsChange != -1 {
		t.Fatalf("unexpected loss change: got=%d want=-1", loss.Duel.PointsChange)
	}
	if loss.Stats.TotalGames != 2 || loss.Stats.TotalWins != 1 {
		t.Fatalf("unexpected stats after loss: %+v", loss.Stats)
	}
}

func TestDuelService_Submit_AutoEnrollsFirstDuel(t *testing.T) {
	f := newServiceFixture(t)
	principal := user.Principal{UserID: "user-1", Username: "yugi"}

	out := submitLadderDuel(t, f, principal, "win")
	if out.Stats.CurrentTierID != "rookie" {
		t.Fatalf("expected auto-enrolled player at floor tier, got %q", out.Stats.CurrentTierID)
	}
	if out.Stats.Username != "yugi" {
		t.Fatalf("unexpected username: %q", out.Stats.Username)
	}
}

func TestDuelService_Submit_LadderPromotion(t *testing.T) {
	f := newServiceFixture(t)
	principal := user.Principal{UserID: "user-1", Username: "yugi"}

	var out SubmitDuelOutput
	for i := 0; i < 5; i++ {
		out = submitLadderDuel(t, f, principal, "win")
	}

	if out.Progression.Type != "promotion" {
		t.Fatalf("expected promotion on fifth win, got %v", out.Progression.Type)
	}
	if out.Progression.NewTier == nil || out.Progression.NewTier.ID != "bronze" {
		t.Fatalf("expected promotion into bronze, got %+v", out.Progression.NewTier)
	}
	if out.Stats.CurrentNetWins != 0 {
		t.Fatalf("expected net wins to reset after promotion, got %d", out.Stats.CurrentNetWins)
	}
}

func TestDuelService_Delete_RevertsPromotion(t *testing.T) {
	f := newServiceFixture(t)
	principal := user.Principal{UserID: "user-1", Username: "yugi"}

	// Ten wins climb rookie -> bronze -> silver.
	var out SubmitDuelOutput
	for i := 0; i < 10; i++ {
		out = submitLadderDuel(t, f, principal, "win")
	}
	if out.Stats.CurrentTierID != "silver" {
		t.Fatalf("expected silver after ten wins, got %q", out.Stats.CurrentTierID)
	}

	stats, err := f.duels.Delete(t.Context(), principal, out.Duel.ID)
	if err != nil {
		t.Fatalf("delete duel failed: %v", err)
	}
	if stats.CurrentTierID != "bronze" {
		t.Fatalf("expected tier to revert to bronze, got %q", stats.CurrentTierID)
	}
	if stats.CurrentNetWins != 4 {
		t.Fatalf("expected net wins to revert to 4, got %d", stats.CurrentNetWins)
	}
	if stats.TotalGames != 9 || stats.TotalWins != 9 {
		t.Fatalf("unexpected reverted totals: %+v", stats)
	}
}

func TestDuelService_Delete_RevertsPromotionIntoProtectedTier(t *testing.T) {
	f := newServiceFixture(t)
	principal := user.Principal{UserID: "user-1", Username: "yugi"}

	var out SubmitDuelOutput
	for i := 0; i < 5; i++ {
		out = submitLadderDuel(t, f, principal, "win")
	}
	if out.Stats.CurrentTierID != "bronze" {
		t.Fatalf("expected bronze after five wins, got %q", out.Stats.CurrentTierID)
	}

	// Bronze blocks loss demotions, but deleting the promoting win must
	// still put the player back exactly where they were before it.
	stats, err := f.duels.Delete(t.Context(), principal, out.Duel.ID)
	if err != nil {
		t.Fatalf("delete duel failed: %v", err)
	}
	if stats.CurrentTierID != "rookie" {
		t.Fatalf("expected tier to revert to rookie, got %q", stats.CurrentTierID)
	}
	if stats.CurrentNetWins != 4 {
		t.Fatalf("expected net wins to revert to 4, got %d", stats.CurrentNetWins)
	}
	if stats.TotalGames != 4 || stats.TotalWins != 4 {
		t.Fatalf("unexpected reverted totals: %+v", stats)
	}
}

func TestDuelService_Delete_LossDemotionStillReverts(t *testing.T) {
	f := newServiceFixture(t)
	principal := user.Principal{UserID: "user-1", Username: "yugi"}

	// Ten wins reach silver, then a loss demotes back to bronze.
	for i := 0; i < 10; i++ {
		submitLadderDuel(t, f, principal, "win")
	}
	out := submitLadderDuel(t, f, principal, "loss")
	if out.Stats.CurrentTierID != "bronze" || out.Stats.CurrentNetWins != 4 {
		t.Fatalf("expected demotion to bronze with 4 net wins, got %+v", out.Stats)
	}

	stats, err := f.duels.Delete(t.Context(), principal, out.Duel.ID)
	if err != nil {
		t.Fatalf("delete duel failed: %v", err)
	}
	if stats.CurrentTierID != "silver" || stats.CurrentNetWins != 0 {
		t.Fatalf("expected silver with 0 net wins restored, got %+v", stats)
	}
}

func TestDuelService_Delete_ForbiddenForOtherPlayer(t *testing.T) {
	f := newServiceFixture(t)
	owner := user.Principal{UserID: "user-1", Username: "yugi"}
	out := submitLadderDuel(t, f, owner, "win")

	_, err := f.duels.Delete(t.Context(), user.Principal{UserID: "user-2"}, out.Duel.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// Admins may delete anyone's duel.
	if _, err := f.duels.Delete(t.Context(), user.Principal{UserID: "admin-1", IsAdmin: true}, out.Duel.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
}

func TestDuelService_Submit_RejectsArchivedSession(t *testing.T) {
	f := newServiceFixture(t)
	admin := user.Principal{UserID: "admin-1", IsAdmin: true}
	if _, err := f.sessions.Archive(t.Context(), admin, memory.SessionIDLadderOpen); err != nil {
		t.Fatalf("archive session failed: %v", err)
	}

	_, err := f.duels.Submit(t.Context(), user.Principal{UserID: "user-1"}, SubmitDuelInput{
		SessionID:      memory.SessionIDLadderOpen,
		PlayerDeckID:   "deck-blue-eyes",
		OpponentDeckID: "deck-branded",
		Result:         "win",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for archived session, got %v", err)
	}
}

func TestDuelService_Submit_RejectsUnknownDeck(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.duels.Submit(t.Context(), user.Principal{UserID: "user-1"}, SubmitDuelInput{
		SessionID:      memory.SessionIDLadderOpen,
		PlayerDeckID:   "deck-unknown",
		OpponentDeckID: "deck-branded",
		Result:         "win",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown deck, got %v", err)
	}
}

func TestDuelService_Submit_RatedStake(t *testing.T) {
	f := newServiceFixture(t)
	principal := user.Principal{UserID: "user-1", Username: "yugi"}

	out, err := f.duels.Submit(t.Context(), principal, SubmitDuelInput{
		SessionID:      memory.SessionIDRatedSpring,
		PlayerDeckID:   "deck-blue-eyes",
		OpponentDeckID: "deck-branded",
		Result:         "loss",
		PointsInput:    12,
	})
	if err != nil {
		t.Fatalf("submit rated duel failed: %v", err)
	}
	if out.Duel.PointsChange != -12 {
		t.Fatalf("unexpected rated loss change: got=%d want=-12", out.Duel.PointsChange)
	}
	if out.Stats.CurrentPoints != 1488 {
		t.Fatalf("unexpected rated points: got=%d want=1488", out.Stats.CurrentPoints)
	}
}

func TestDuelService_Submit_DuelistCupFloor(t *testing.T) {
	f := newServiceFixture(t)
	admin := user.Principal{UserID: "admin-1", IsAdmin: true}
	sess, err := f.sessions.Create(t.Context(), admin, CreateSessionInput{
		Name:     "Weekend Cup",
		GameMode: "duelist_cup",
	})
	if err != nil {
		t.Fatalf("create cup session failed: %v", err)
	}

	principal := user.Principal{UserID: "user-1", Username: "yugi"}
	win, err := f.duels.Submit(t.Context(), principal, SubmitDuelInput{
		SessionID:      sess.ID,
		PlayerDeckID:   "deck-blue-eyes",
		OpponentDeckID: "deck-branded",
		Result:         "win",
	})
	if err != nil {
		t.Fatalf("submit cup win failed: %v", err)
	}
	if win.Stats.CurrentPoints != 1000 {
		t.Fatalf("expected default cup win of 1000, got %d", win.Stats.CurrentPoints)
	}

	loss, err := f.duels.Submit(t.Context(), principal, SubmitDuelInput{
		SessionID:      sess.ID,
		PlayerDeckID:   "deck-blue-eyes",
		OpponentDeckID: "deck-branded",
		Result:         "loss",
		PointsInput:    1500,
	})
	if err != nil {
		t.Fatalf("submit cup loss failed: %v", err)
	}
	if loss.Duel.PointsChange != -1000 {
		t.Fatalf("expected loss clamped to -1000, got %d", loss.Duel.PointsChange)
	}
	if loss.Stats.CurrentPoints != 0 {
		t.Fatalf("expected cup total floored at 0, got %d", loss.Stats.CurrentPoints)
	}
}

type staleLedger struct{}

func (staleLedger) Append(_ context.Context, _ duel.Duel, _ playerstats.Stats) error {
	return duel.ErrStaleStats
}

func (staleLedger) Remove(_ context.Context, _ string, _ playerstats.Stats) error {
	return duel.ErrStaleStats
}

func TestDuelService_Submit_ConflictAfterRetries(t *testing.T) {
	f := newServiceFixture(t)
	svc := NewDuelService(f.sessionRepo, f.duelRepo, staleLedger{}, f.statsRepo, f.tierRepo, f.deckRepo, id.NewRandomGenerator())

	_, err := svc.Submit(t.Context(), user.Principal{UserID: "user-1"}, SubmitDuelInput{
		SessionID:      memory.SessionIDLadderOpen,
		PlayerDeckID:   "deck-blue-eyes",
		OpponentDeckID: "deck-branded",
		Result:         "win",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict after exhausted retries, got %v", err)
	}
}

func TestDuelService_List_FiltersByDay(t *testing.T) {
	f := newServiceFixture(t)
	principal := user.Principal{UserID: "user-1", Username: "yugi"}
	submitLadderDuel(t, f, principal, "win")

	today := time.Now().UTC().Truncate(24 * time.Hour)
	duels, err := f.duels.List(t.Context(), duel.Filter{
		SessionID: memory.SessionIDLadderOpen,
		UserID:    principal.UserID,
		Day:       &today,
	})
	if err != nil {
		t.Fatalf("list duels failed: %v", err)
	}
	if len(duels) != 1 {
		t.Fatalf("expected one duel today, got %d", len(duels))
	}

	yesterday := today.Add(-24 * time.Hour)
	duels, err = f.duels.List(t.Context(), duel.Filter{
		SessionID: memory.SessionIDLadderOpen,
		Day:       &yesterday,
	})
	if err != nil {
		t.Fatalf("list duels failed: %v", err)
	}
	if len(duels) != 0 {
		t.Fatalf("expected no duels yesterday, got %d", len(duels))
	}
}

func TestDuelService_List_RequiresSession(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.duels.List(t.Context(), duel.Filter{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
