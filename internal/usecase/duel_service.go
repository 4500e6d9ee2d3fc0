package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/duelhq/duel-tracker/internal/domain/deck"
	"github.com/duelhq/duel-tracker/internal/domain/duel"
	"github.com/duelhq/duel-tracker/internal/domain/playerstats"
	"github.com/duelhq/duel-tracker/internal/domain/scoring"
	"github.com/duelhq/duel-tracker/internal/domain/session"
	"github.com/duelhq/duel-tracker/internal/domain/tier"
	"github.com/duelhq/duel-tracker/internal/domain/user"
	"github.com/duelhq/duel-tracker/internal/platform/id"
	"github.com/duelhq/duel-tracker/internal/platform/keyedmutex"
)

// submitAttempts bounds the optimistic retry loop when another replica wrote
// the same aggregate between our read and our append.
const submitAttempts = 3

// DuelService records and removes duel results, keeping the per-player
// aggregate and ladder tier in lockstep with the ledger.
type DuelService struct {
	sessionRepo session.Repository
	duelRepo    duel.Repository
	ledger      duel.Ledger
	statsRepo   playerstats.Repository
	tierRepo    tier.Repository
	deckRepo    deck.Repository
	idGen       id.Generator
	locks       *keyedmutex.Mutex
	now         func() time.Time
}

func NewDuelService(
	sessionRepo session.Repository,
	duelRepo duel.Repository,
	ledger duel.Ledger,
	statsRepo playerstats.Repository,
	tierRepo tier.Repository,
	deckRepo deck.Repository,
	idGen id.Generator,
) *DuelService {
	return &DuelService{
		sessionRepo: sessionRepo,
		duelRepo:    duelRepo,
		ledger:      ledger,
		statsRepo:   statsRepo,
		tierRepo:    tierRepo,
		deckRepo:    deckRepo,
		idGen:       idGen,
		locks:       keyedmutex.New(),
		now:         time.Now,
	}
}

type SubmitDuelInput struct {
	SessionID      string
	PlayerDeckID   string
	OpponentDeckID string
	Result         string
	CoinFlipWon    bool
	WentFirst      bool
	PointsInput    int
}

// SubmitDuelOutput carries the recorded duel, the aggregate after it, and
// any tier step it caused.
type SubmitDuelOutput struct {
	Duel        duel.Duel
	Stats       playerstats.Stats
	Progression tier.Progression
}

func (s *DuelService) Submit(ctx context.Context, principal user.Principal, in SubmitDuelInput) (SubmitDuelOutput, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DuelService.Submit")
	defer span.End()

	result, err := duel.ParseResult(in.Result)
	if err != nil {
		return SubmitDuelOutput{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.PointsInput < 0 {
		return SubmitDuelOutput{}, fmt.Errorf("%w: points must be >= 0", ErrInvalidInput)
	}

	sess, ok, err := s.sessionRepo.GetByID(ctx, in.SessionID)
	if err != nil {
		return SubmitDuelOutput{}, fmt.Errorf("get session: %w", err)
	}
	if !ok {
		return SubmitDuelOutput{}, fmt.Errorf("%w: session %s", ErrNotFound, in.SessionID)
	}
	if sess.IsArchived() {
		return SubmitDuelOutput{}, fmt.Errorf("%w: session %s is archived", ErrInvalidInput, in.SessionID)
	}

	if err := s.checkDecks(ctx, in.PlayerDeckID, in.OpponentDeckID); err != nil {
		return SubmitDuelOutput{}, err
	}

	release, err := s.locks.Lock(ctx, lockKey(in.SessionID, principal.UserID))
	if err != nil {
		return SubmitDuelOutput{}, fmt.Errorf("acquire submit lock: %w", err)
	}
	defer release()

	var lastErr error
	for attempt := 0; attempt < submitAttempts; attempt++ {
		out, err := s.submitOnce(ctx, principal, sess, in, result)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, duel.ErrStaleStats) {
			return SubmitDuelOutput{}, err
		}
		lastErr = err
	}

	return SubmitDuelOutput{}, fmt.Errorf("%w: %v", ErrConflict, lastErr)
}

func (s *DuelService) submitOnce(ctx context.Context, principal user.Principal, sess session.Session, in SubmitDuelInput, result duel.Result) (SubmitDuelOutput, error) {
	stats, ok, err := s.statsRepo.Get(ctx, sess.ID, principal.UserID)
	if err != nil {
		return SubmitDuelOutput{}, fmt.Errorf("get player stats: %w", err)
	}
	if !ok {
		// First duel enrolls the player.
		stats, err = NewPlayerStats(ctx, s.tierRepo, sess, principal, JoinSessionInput{}, s.now().UTC())
		if err != nil {
			return SubmitDuelOutput{}, err
		}
		if err := s.statsRepo.Insert(ctx, stats); err != nil {
			return SubmitDuelOutput{}, fmt.Errorf("insert player stats: %w", err)
		}
	}

	win := result == duel.ResultWin
	change, err := scoring.PointsChange(scoring.Input{
		Mode:              sess.GameMode,
		Win:               win,
		PointsInput:       in.PointsInput,
		CurrentPoints:     stats.CurrentPoints,
		SessionPointValue: sess.PointValue,
	})
	if err != nil {
		return SubmitDuelOutput{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	updated := stats.ApplyDuel(win, change)
	updated.UpdatedAt = s.now().UTC()

	progression := tier.Progression{Type: tier.ProgressionNone}
	if sess.GameMode == session.GameModeLadder {
		progression, err = s.stepTier(ctx, &updated, win, tier.Evaluate)
		if err != nil {
			return SubmitDuelOutput{}, err
		}
	}

	duelID, err := s.idGen.NewID()
	if err != nil {
		return SubmitDuelOutput{}, fmt.Errorf("generate duel id: %w", err)
	}

	recorded := duel.Duel{
		ID:             duelID,
		SessionID:      sess.ID,
		UserID:         principal.UserID,
		PlayerDeckID:   in.PlayerDeckID,
		OpponentDeckID: in.OpponentDeckID,
		Result:         result,
		CoinFlipWon:    in.CoinFlipWon,
		WentFirst:      in.WentFirst,
		PointsChange:   change,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.ledger.Append(ctx, recorded, updated); err != nil {
		return SubmitDuelOutput{}, fmt.Errorf("append duel: %w", err)
	}

	return SubmitDuelOutput{Duel: recorded, Stats: updated, Progression: progression}, nil
}

// Delete removes a duel and reverts its effect on the aggregate. Only the
// duel's owner or an admin may delete it.
func (s *DuelService) Delete(ctx context.Context, principal user.Principal, duelID string) (playerstats.Stats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DuelService.Delete")
	defer span.End()

	if duelID == "" {
		return playerstats.Stats{}, fmt.Errorf("%w: duel id is required", ErrInvalidInput)
	}

	found, ok, err := s.duelRepo.GetByID(ctx, duelID)
	if err != nil {
		return playerstats.Stats{}, fmt.Errorf("get duel: %w", err)
	}
	if !ok {
		return playerstats.Stats{}, fmt.Errorf("%w: duel %s", ErrNotFound, duelID)
	}
	if found.UserID != principal.UserID && !principal.IsAdmin {
		return playerstats.Stats{}, fmt.Errorf("%w: duel %s belongs to another player", ErrForbidden, duelID)
	}

	sess, ok, err := s.sessionRepo.GetByID(ctx, found.SessionID)
	if err != nil {
		return playerstats.Stats{}, fmt.Errorf("get session: %w", err)
	}
	if !ok {
		return playerstats.Stats{}, fmt.Errorf("%w: session %s", ErrNotFound, found.SessionID)
	}
	if sess.IsArchived() {
		return playerstats.Stats{}, fmt.Errorf("%w: session %s is archived", ErrInvalidInput, sess.ID)
	}

	release, err := s.locks.Lock(ctx, lockKey(found.SessionID, found.UserID))
	if err != nil {
		return playerstats.Stats{}, fmt.Errorf("acquire delete lock: %w", err)
	}
	defer release()

	var lastErr error
	for attempt := 0; attempt < submitAttempts; attempt++ {
		stats, err := s.deleteOnce(ctx, sess, found)
		if err == nil {
			return stats, nil
		}
		if !errors.Is(err, duel.ErrStaleStats) {
			return playerstats.Stats{}, err
		}
		lastErr = err
	}

	return playerstats.Stats{}, fmt.Errorf("%w: %v", ErrConflict, lastErr)
}

func (s *DuelService) deleteOnce(ctx context.Context, sess session.Session, found duel.Duel) (playerstats.Stats, error) {
	stats, ok, err := s.statsRepo.Get(ctx, found.SessionID, found.UserID)
	if err != nil {
		return playerstats.Stats{}, fmt.Errorf("get player stats: %w", err)
	}
	if !ok {
		return playerstats.Stats{}, fmt.Errorf("%w: stats for session %s", ErrNotFound, found.SessionID)
	}

	win := found.IsWin()
	reverted := stats.RevertDuel(win, found.PointsChange)
	reverted.UpdatedAt = s.now().UTC()

	if sess.GameMode == session.GameModeLadder {
		// Applying the inverse net-win delta and re-running the tier step
		// undoes the promotion or demotion the duel caused. The revert
		// evaluator demotes even out of protected tiers so deleting the
		// promoting win lands the player back where they were.
		if _, err := s.stepTier(ctx, &reverted, !win, tier.EvaluateRevert); err != nil {
			return playerstats.Stats{}, err
		}
	}

	if err := s.ledger.Remove(ctx, found.ID, reverted); err != nil {
		return playerstats.Stats{}, fmt.Errorf("remove duel: %w", err)
	}

	return reverted, nil
}

// List returns duels matching the filter in chronological order. Day narrows
// to one UTC calendar day.
func (s *DuelService) List(ctx context.Context, filter duel.Filter) ([]duel.Duel, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DuelService.List")
	defer span.End()

	if filter.SessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}

	duels, err := s.duelRepo.ListByFilter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list duels: %w", err)
	}

	return duels, nil
}

func (s *DuelService) stepTier(ctx context.Context, stats *playerstats.Stats, win bool, eval func([]tier.Tier, string, int) (tier.Progression, error)) (tier.Progression, error) {
	if win {
		stats.CurrentNetWins++
	} else {
		stats.CurrentNetWins--
	}

	tiers, err := s.tierRepo.List(ctx)
	if err != nil {
		return tier.Progression{}, fmt.Errorf("list ladder tiers: %w", err)
	}

	progression, err := eval(tiers, stats.CurrentTierID, stats.CurrentNetWins)
	if err != nil {
		return tier.Progression{}, fmt.Errorf("evaluate tier progression: %w", err)
	}
	if progression.NewTier != nil {
		stats.CurrentTierID = progression.NewTier.ID
	}
	stats.CurrentNetWins = progression.NetWins

	return progression, nil
}

func (s *DuelService) checkDecks(ctx context.Context, deckIDs ...string) error {
	for _, deckID := range deckIDs {
		if deckID == "" {
			return fmt.Errorf("%w: deck id is required", ErrInvalidInput)
		}
		_, ok, err := s.deckRepo.GetByID(ctx, deckID)
		if err != nil {
			return fmt.Errorf("get deck: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: unknown deck %s", ErrInvalidInput, deckID)
		}
	}
	return nil
}

func lockKey(sessionID, userID string) string {
	return sessionID + "/" + userID
}
