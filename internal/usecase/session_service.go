package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/duelhq/duel-tracker/internal/domain/playerstats"
	"github.com/duelhq/duel-tracker/internal/domain/session"
	"github.com/duelhq/duel-tracker/internal/domain/tier"
	"github.com/duelhq/duel-tracker/internal/domain/user"
	"github.com/duelhq/duel-tracker/internal/platform/id"
)

// SessionService manages session lifecycle and membership.
type SessionService struct {
	sessionRepo session.Repository
	statsRepo   playerstats.Repository
	tierRepo    tier.Repository
	idGen       id.Generator
	now         func() time.Time
}

func NewSessionService(
	sessionRepo session.Repository,
	statsRepo playerstats.Repository,
	tierRepo tier.Repository,
	idGen id.Generator,
) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		statsRepo:   statsRepo,
		tierRepo:    tierRepo,
		idGen:       idGen,
		now:         time.Now,
	}
}

type CreateSessionInput struct {
	Name           string
	GameMode       string
	StartsAt       time.Time
	EndsAt         time.Time
	StartingRating *int
	PointValue     *int
}

func (s *SessionService) Create(ctx context.Context, principal user.Principal, in CreateSessionInput) (session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Create")
	defer span.End()

	if !principal.IsAdmin {
		return session.Session{}, fmt.Errorf("%w: only admins can create sessions", ErrForbidden)
	}
	if in.Name == "" {
		return session.Session{}, fmt.Errorf("%w: session name is required", ErrInvalidInput)
	}

	mode, err := session.ParseGameMode(in.GameMode)
	if err != nil {
		return session.Session{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !in.EndsAt.IsZero() && !in.EndsAt.After(in.StartsAt) {
		return session.Session{}, fmt.Errorf("%w: ends_at must be after starts_at", ErrInvalidInput)
	}

	startingRating := session.DefaultStartingRating(mode)
	if in.StartingRating != nil {
		if *in.StartingRating < 0 {
			return session.Session{}, fmt.Errorf("%w: starting rating must be >= 0", ErrInvalidInput)
		}
		startingRating = *in.StartingRating
	}

	pointValue := session.DefaultPointValue(mode)
	if in.PointValue != nil {
		if *in.PointValue < 1 {
			return session.Session{}, fmt.Errorf("%w: point value must be >= 1", ErrInvalidInput)
		}
		pointValue = *in.PointValue
	}

	sessionID, err := s.idGen.NewID()
	if err != nil {
		return session.Session{}, fmt.Errorf("generate session id: %w", err)
	}

	created := session.Session{
		ID:             sessionID,
		Name:           in.Name,
		GameMode:       mode,
		Status:         session.StatusActive,
		StartsAt:       in.StartsAt,
		EndsAt:         in.EndsAt,
		StartingRating: startingRating,
		PointValue:     pointValue,
		AdminUserID:    principal.UserID,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.sessionRepo.Insert(ctx, created); err != nil {
		return session.Session{}, fmt.Errorf("insert session: %w", err)
	}

	return created, nil
}

func (s *SessionService) Get(ctx context.Context, sessionID string) (session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Get")
	defer span.End()

	if sessionID == "" {
		return session.Session{}, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}

	found, ok, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return session.Session{}, fmt.Errorf("get session: %w", err)
	}
	if !ok {
		return session.Session{}, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}

	return found, nil
}

// List returns sessions, optionally narrowed to one status. An empty status
// means all sessions.
func (s *SessionService) List(ctx context.Context, status string) ([]session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.List")
	defer span.End()

	var filter session.Status
	switch status {
	case "":
		filter = ""
	case string(session.StatusActive):
		filter = session.StatusActive
	case string(session.StatusArchived):
		filter = session.StatusArchived
	default:
		return nil, fmt.Errorf("%w: unknown session status %q", ErrInvalidInput, status)
	}

	sessions, err := s.sessionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return sessions, nil
}

// Archive freezes a session. Archived sessions stay readable but reject new
// duels and deletions.
func (s *SessionService) Archive(ctx context.Context, principal user.Principal, sessionID string) (session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Archive")
	defer span.End()

	if !principal.IsAdmin {
		return session.Session{}, fmt.Errorf("%w: only admins can archive sessions", ErrForbidden)
	}

	found, err := s.Get(ctx, sessionID)
	if err != nil {
		return session.Session{}, err
	}
	if found.IsArchived() {
		return found, nil
	}

	if err := s.sessionRepo.UpdateStatus(ctx, sessionID, session.StatusArchived); err != nil {
		return session.Session{}, fmt.Errorf("archive session: %w", err)
	}
	found.Status = session.StatusArchived

	return found, nil
}

func (s *SessionService) Delete(ctx context.Context, principal user.Principal, sessionID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Delete")
	defer span.End()

	if !principal.IsAdmin {
		return fmt.Errorf("%w: only admins can delete sessions", ErrForbidden)
	}

	if _, err := s.Get(ctx, sessionID); err != nil {
		return err
	}

	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// JoinSessionInput optionally seeds a ladder join at a tier other than the
// floor, mirroring where the player already sits outside the tracker.
type JoinSessionInput struct {
	InitialTierID  string
	InitialNetWins *int
}

type JoinSessionOutput struct {
	Stats    playerstats.Stats
	Rejoined bool
}

// Join enrolls the caller in a session. Joining twice is a no-op: the existing
// aggregate is returned with Rejoined set and the seed input is ignored.
func (s *SessionService) Join(ctx context.Context, principal user.Principal, sessionID string, in JoinSessionInput) (JoinSessionOutput, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Join")
	defer span.End()

	found, err := s.Get(ctx, sessionID)
	if err != nil {
		return JoinSessionOutput{}, err
	}
	if found.IsArchived() {
		return JoinSessionOutput{}, fmt.Errorf("%w: session %s is archived", ErrInvalidInput, sessionID)
	}

	existing, ok, err := s.statsRepo.Get(ctx, sessionID, principal.UserID)
	if err != nil {
		return JoinSessionOutput{}, fmt.Errorf("get player stats: %w", err)
	}
	if ok {
		return JoinSessionOutput{Stats: existing, Rejoined: true}, nil
	}

	stats, err := NewPlayerStats(ctx, s.tierRepo, found, principal, in, s.now().UTC())
	if err != nil {
		return JoinSessionOutput{}, err
	}
	if err := s.statsRepo.Insert(ctx, stats); err != nil {
		return JoinSessionOutput{}, fmt.Errorf("insert player stats: %w", err)
	}

	return JoinSessionOutput{Stats: stats}, nil
}

// NewPlayerStats builds the join-time aggregate seed for one player. Ladder
// sessions start in the requested tier, or the floor tier with zero net wins
// when no seed is given.
func NewPlayerStats(ctx context.Context, tierRepo tier.Repository, sess session.Session, principal user.Principal, in JoinSessionInput, joinedAt time.Time) (playerstats.Stats, error) {
	stats := playerstats.Stats{
		SessionID:      sess.ID,
		UserID:         principal.UserID,
		Username:       principal.Username,
		CurrentPoints:  sess.StartingRating,
		StartingPoints: sess.StartingRating,
		JoinedAt:       joinedAt,
		UpdatedAt:      joinedAt,
	}

	if sess.GameMode != session.GameModeLadder {
		if in.InitialTierID != "" || in.InitialNetWins != nil {
			return playerstats.Stats{}, fmt.Errorf("%w: tier seeds only apply to ladder sessions", ErrInvalidInput)
		}
		return stats, nil
	}

	tiers, err := tierRepo.List(ctx)
	if err != nil {
		return playerstats.Stats{}, fmt.Errorf("list ladder tiers: %w", err)
	}
	if len(tiers) == 0 {
		return playerstats.Stats{}, fmt.Errorf("%w: ladder tiers are not configured", ErrDependencyUnavailable)
	}

	startTier := tiers[0]
	if in.InitialTierID != "" {
		matched := false
		for _, t := range tiers {
			if t.ID == in.InitialTierID {
				startTier = t
				matched = true
				break
			}
		}
		if !matched {
			return playerstats.Stats{}, fmt.Errorf("%w: unknown ladder tier %s", ErrInvalidInput, in.InitialTierID)
		}
	}
	stats.CurrentTierID = startTier.ID
	stats.InitialTierID = startTier.ID
	if in.InitialNetWins != nil {
		stats.CurrentNetWins = *in.InitialNetWins
	}

	return stats, nil
}
