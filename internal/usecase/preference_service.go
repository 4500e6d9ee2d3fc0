package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/duelhq/duel-tracker/internal/domain/user"
)

// PreferenceService manages per-user display settings.
type PreferenceService struct {
	prefRepo user.PreferenceRepository
	now      func() time.Time
}

func NewPreferenceService(prefRepo user.PreferenceRepository) *PreferenceService {
	return &PreferenceService{
		prefRepo: prefRepo,
		now:      time.Now,
	}
}

func (s *PreferenceService) Get(ctx context.Context, principal user.Principal) (user.Preference, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PreferenceService.Get")
	defer span.End()

	pref, err := s.prefRepo.Get(ctx, principal.UserID)
	if err != nil {
		return user.Preference{}, fmt.Errorf("get preference: %w", err)
	}
	if pref == nil {
		return user.Preference{UserID: principal.UserID}, nil
	}

	return *pref, nil
}

func (s *PreferenceService) Update(ctx context.Context, principal user.Principal, hideFromLeaderboard bool) (user.Preference, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PreferenceService.Update")
	defer span.End()

	pref := user.Preference{
		UserID:              principal.UserID,
		HideFromLeaderboard: hideFromLeaderboard,
		UpdatedAt:           s.now().UTC(),
	}
	if err := s.prefRepo.Upsert(ctx, &pref); err != nil {
		return user.Preference{}, fmt.Errorf("upsert preference: %w", err)
	}

	return pref, nil
}
