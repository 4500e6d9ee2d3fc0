package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/duelhq/duel-tracker/internal/domain/duel"
	"github.com/duelhq/duel-tracker/internal/domain/playerstats"
	"github.com/duelhq/duel-tracker/internal/domain/session"
	"github.com/duelhq/duel-tracker/internal/domain/tier"
	"github.com/duelhq/duel-tracker/internal/domain/user"
	"github.com/duelhq/duel-tracker/internal/platform/logging"
)

// RebuildService reconstructs per-player aggregates from the duel ledger.
// The ledger is the source of truth; stored point changes are replayed as
// recorded, never rescored against current rules.
type RebuildService struct {
	sessionRepo session.Repository
	duelRepo    duel.Repository
	statsRepo   playerstats.Repository
	tierRepo    tier.Repository
	workers     int
	logger      *logging.Logger
	now         func() time.Time
}

func NewRebuildService(
	sessionRepo session.Repository,
	duelRepo duel.Repository,
	statsRepo playerstats.Repository,
	tierRepo tier.Repository,
	workers int,
	logger *logging.Logger,
) *RebuildService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RebuildService{
		sessionRepo: sessionRepo,
		duelRepo:    duelRepo,
		statsRepo:   statsRepo,
		tierRepo:    tierRepo,
		workers:     workers,
		logger:      logger,
		now:         time.Now,
	}
}

type RebuildResult struct {
	SessionID string
	Players   int
	Rebuilt   int
}

// Rebuild replays every player of a session on a bounded worker pool.
func (s *RebuildService) Rebuild(ctx context.Context, principal user.Principal, sessionID string) (RebuildResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RebuildService.Rebuild")
	defer span.End()

	if !principal.IsAdmin {
		return RebuildResult{}, fmt.Errorf("%w: only admins can rebuild stats", ErrForbidden)
	}

	sess, ok, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return RebuildResult{}, fmt.Errorf("get session: %w", err)
	}
	if !ok {
		return RebuildResult{}, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}

	players, err := s.statsRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return RebuildResult{}, fmt.Errorf("list player stats: %w", err)
	}

	var tiers []tier.Tier
	if sess.GameMode == session.GameModeLadder {
		tiers, err = s.tierRepo.List(ctx)
		if err != nil {
			return RebuildResult{}, fmt.Errorf("list ladder tiers: %w", err)
		}
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return RebuildResult{}, fmt.Errorf("create rebuild pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		rebuilt  int
		firstErr error
	)
	for _, st := range players {
		st := st
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			if err := s.rebuildPlayer(ctx, sess, tiers, st); err != nil {
				s.logger.ErrorContext(ctx, "rebuild player failed",
					"session_id", st.SessionID,
					"user_id", st.UserID,
					"error", err,
				)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			mu.Lock()
			rebuilt++
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("submit rebuild task: %w", submitErr)
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	if firstErr != nil {
		return RebuildResult{}, firstErr
	}

	return RebuildResult{SessionID: sessionID, Players: len(players), Rebuilt: rebuilt}, nil
}

func (s *RebuildService) rebuildPlayer(ctx context.Context, sess session.Session, tiers []tier.Tier, st playerstats.Stats) error {
	duels, err := s.duelRepo.ListByFilter(ctx, duel.Filter{SessionID: st.SessionID, UserID: st.UserID})
	if err != nil {
		return fmt.Errorf("list duels: %w", err)
	}

	fresh := playerstats.Stats{
		SessionID:      st.SessionID,
		UserID:         st.UserID,
		Username:       st.Username,
		CurrentPoints:  st.StartingPoints,
		CurrentTierID:  st.InitialTierID,
		CurrentNetWins: st.InitialNetWins,
		StartingPoints: st.StartingPoints,
		InitialTierID:  st.InitialTierID,
		InitialNetWins: st.InitialNetWins,
		JoinedAt:       st.JoinedAt,
		UpdatedAt:      s.now().UTC(),
	}

	for _, d := range duels {
		win := d.IsWin()
		fresh = fresh.ApplyDuel(win, d.PointsChange)

		if sess.GameMode != session.GameModeLadder {
			continue
		}
		if win {
			fresh.CurrentNetWins++
		} else {
			fresh.CurrentNetWins--
		}
		progression, err := tier.Evaluate(tiers, fresh.CurrentTierID, fresh.CurrentNetWins)
		if err != nil {
			return fmt.Errorf("evaluate tier progression: %w", err)
		}
		if progression.NewTier != nil {
			fresh.CurrentTierID = progression.NewTier.ID
		}
		fresh.CurrentNetWins = progression.NetWins
	}

	if err := s.statsRepo.Replace(ctx, fresh); err != nil {
		return fmt.Errorf("replace player stats: %w", err)
	}

	return nil
}
