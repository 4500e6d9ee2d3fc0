package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/duelhq/duel-tracker/internal/domain/duel"
	"github.com/duelhq/duel-tracker/internal/domain/session"
	"github.com/duelhq/duel-tracker/internal/domain/user"
	"github.com/duelhq/duel-tracker/internal/infrastructure/repository/memory"
)

func TestSessionService_Create_Defaults(t *testing.T) {
	f := newServiceFixture(t)
	admin := user.Principal{UserID: "admin-1", IsAdmin: true}

	t.Run("rated seeds 1500 and stake 7", func(t *testing.T) {
		created, err := f.sessions.Create(t.Context(), admin, CreateSessionInput{
			Name:     "Rated Summer",
			GameMode: "rated",
		})
		if err != nil {
			t.Fatalf("create session failed: %v", err)
		}
		if created.StartingRating != 1500 {
			t.Fatalf("unexpected starting rating: got=%d want=1500", created.StartingRating)
		}
		if created.PointValue != 7 {
			t.Fatalf("unexpected point value: got=%d want=7", created.PointValue)
		}
	})

	t.Run("duelist cup seeds zero and 1000", func(t *testing.T) {
		created, err := f.sessions.Create(t.Context(), admin, CreateSessionInput{
			Name:     "Weekend Cup",
			GameMode: "duelist_cup",
		})
		if err != nil {
			t.Fatalf("create session failed: %v", err)
		}
		if created.StartingRating != 0 {
			t.Fatalf("unexpected starting rating: got=%d want=0", created.StartingRating)
		}
		if created.PointValue != 1000 {
			t.Fatalf("unexpected point value: got=%d want=1000", created.PointValue)
		}
	})

	t.Run("overrides are honored", func(t *testing.T) {
		rating := 2000
		value := 15
		created, err := f.sessions.Create(t.Context(), admin, CreateSessionInput{
			Name:           "High Stakes",
			GameMode:       "rated",
			StartingRating: &rating,
			PointValue:     &value,
		})
		if err != nil {
			t.Fatalf("create session failed: %v", err)
		}
		if created.StartingRating != 2000 || created.PointValue != 15 {
			t.Fatalf("unexpected overrides: %+v", created)
		}
	})
}

func TestSessionService_Create_Validation(t *testing.T) {
	f := newServiceFixture(t)
	admin := user.Principal{UserID: "admin-1", IsAdmin: true}

	if _, err := f.sessions.Create(t.Context(), user.Principal{UserID: "user-1"}, CreateSessionInput{
		Name:     "Nope",
		GameMode: "ladder",
	}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}

	if _, err := f.sessions.Create(t.Context(), admin, CreateSessionInput{
		Name:     "Bad Mode",
		GameMode: "blitz",
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown mode, got %v", err)
	}

	starts := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	if _, err := f.sessions.Create(t.Context(), admin, CreateSessionInput{
		Name:     "Backwards",
		GameMode: "ladder",
		StartsAt: starts,
		EndsAt:   starts.Add(-time.Hour),
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for ends before starts, got %v", err)
	}
}

func TestSessionService_List_FiltersByStatus(t *testing.T) {
	f := newServiceFixture(t)
	admin := user.Principal{UserID: "admin-1", IsAdmin: true}

	if _, err := f.sessions.Archive(t.Context(), admin, memory.SessionIDLadderOpen); err != nil {
		t.Fatalf("archive session failed: %v", err)
	}

	active, err := f.sessions.List(t.Context(), string(session.StatusActive))
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	for _, s := range active {
		if s.ID == memory.SessionIDLadderOpen {
			t.Fatalf("archived session leaked into active list")
		}
	}

	archived, err := f.sessions.List(t.Context(), string(session.StatusArchived))
	if err != nil {
		t.Fatalf("list archived failed: %v", err)
	}
	if len(archived) != 1 || archived[0].ID != memory.SessionIDLadderOpen {
		t.Fatalf("unexpected archived list: %+v", archived)
	}

	if _, err := f.sessions.List(t.Context(), "stale"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
}

func TestSessionService_Archive_Idempotent(t *testing.T) {
	f := newServiceFixture(t)
	admin := user.Principal{UserID: "admin-1", IsAdmin: true}

	first, err := f.sessions.Archive(t.Context(), admin, memory.SessionIDLadderOpen)
	if err != nil {
		t.Fatalf("archive session failed: %v", err)
	}
	second, err := f.sessions.Archive(t.Context(), admin, memory.SessionIDLadderOpen)
	if err != nil {
		t.Fatalf("second archive failed: %v", err)
	}
	if first.Status != session.StatusArchived || second.Status != session.StatusArchived {
		t.Fatalf("unexpected statuses: first=%s second=%s", first.Status, second.Status)
	}
}

func TestSessionService_Join_Idempotent(t *testing.T) {
	f := newServiceFixture(t)
	principal := user.Principal{UserID: "user-1", Username: "yugi"}

	first, err := f.sessions.Join(t.Context(), principal, memory.SessionIDLadderOpen, JoinSessionInput{})
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if first.Rejoined {
		t.Fatalf("first join must not report a rejoin")
	}
	if first.Stats.CurrentTierID != "rookie" || first.Stats.CurrentNetWins != 0 {
		t.Fatalf("unexpected ladder seed: %+v", first.Stats)
	}

	netWins := 3
	second, err := f.sessions.Join(t.Context(), principal, memory.SessionIDLadderOpen, JoinSessionInput{
		InitialTierID:  "silver",
		InitialNetWins: &netWins,
	})
	if err != nil {
		t.Fatalf("second join failed: %v", err)
	}
	if !second.Rejoined {
		t.Fatalf("expected second join to report a rejoin")
	}
	// The rejoin keeps the existing aggregate and ignores the seed.
	if second.Stats.JoinedAt != first.Stats.JoinedAt || second.Stats.CurrentTierID != "rookie" {
		t.Fatalf("expected second join to return existing aggregate, got %+v", second.Stats)
	}
}

func TestSessionService_Join_SeedsRequestedTier(t *testing.T) {
	f := newServiceFixture(t)
	principal := user.Principal{UserID: "user-1", Username: "yugi"}

	netWins := 2
	out, err := f.sessions.Join(t.Context(), principal, memory.SessionIDLadderOpen, JoinSessionInput{
		InitialTierID:  "silver",
		InitialNetWins: &netWins,
	})
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if out.Stats.CurrentTierID != "silver" || out.Stats.InitialTierID != "silver" {
		t.Fatalf("unexpected seeded tier: %+v", out.Stats)
	}
	if out.Stats.CurrentNetWins != 2 {
		t.Fatalf("unexpected seeded net wins: got=%d want=2", out.Stats.CurrentNetWins)
	}
}

func TestSessionService_Join_RejectsUnknownSeedTier(t *testing.T) {
	f := newServiceFixture(t)
	principal := user.Principal{UserID: "user-1", Username: "yugi"}

	_, err := f.sessions.Join(t.Context(), principal, memory.SessionIDLadderOpen, JoinSessionInput{
		InitialTierID: "mythic",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown tier, got %v", err)
	}
}

func TestSessionService_Join_RatedSeedsStartingRating(t *testing.T) {
	f := newServiceFixture(t)
	principal := user.Principal{UserID: "user-1", Username: "yugi"}

	out, err := f.sessions.Join(t.Context(), principal, memory.SessionIDRatedSpring, JoinSessionInput{})
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	stats := out.Stats
	if stats.CurrentPoints != 1500 || stats.StartingPoints != 1500 {
		t.Fatalf("unexpected rated seed: %+v", stats)
	}
	if stats.CurrentTierID != "" {
		t.Fatalf("rated sessions must not carry a tier, got %q", stats.CurrentTierID)
	}

	if _, err := f.sessions.Join(t.Context(), user.Principal{UserID: "user-2"}, memory.SessionIDRatedSpring, JoinSessionInput{
		InitialTierID: "silver",
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for tier seed outside ladder, got %v", err)
	}
}

func TestSessionService_Delete_CascadesDuelsAndStats(t *testing.T) {
	f := newServiceFixture(t)
	principal := user.Principal{UserID: "user-1", Username: "yugi"}
	admin := user.Principal{UserID: "admin-1", IsAdmin: true}

	submitLadderDuel(t, f, principal, "win")

	if err := f.sessions.Delete(t.Context(), admin, memory.SessionIDLadderOpen); err != nil {
		t.Fatalf("delete session failed: %v", err)
	}

	if _, err := f.sessions.Get(t.Context(), memory.SessionIDLadderOpen); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	duels, err := f.duelRepo.ListByFilter(t.Context(), duel.Filter{SessionID: memory.SessionIDLadderOpen})
	if err != nil {
		t.Fatalf("list duels failed: %v", err)
	}
	if len(duels) != 0 {
		t.Fatalf("expected duels to cascade, got %d", len(duels))
	}

	if _, ok, err := f.statsRepo.Get(t.Context(), memory.SessionIDLadderOpen, principal.UserID); err != nil || ok {
		t.Fatalf("expected stats to cascade, ok=%v err=%v", ok, err)
	}
}
