package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/duelhq/duel-tracker/internal/domain/deck"
	"github.com/duelhq/duel-tracker/internal/domain/tier"
	"github.com/duelhq/duel-tracker/internal/domain/user"
	"github.com/duelhq/duel-tracker/internal/platform/id"
)

// CatalogService serves the deck and ladder tier catalogs.
type CatalogService struct {
	deckRepo deck.Repository
	tierRepo tier.Repository
	idGen    id.Generator
	now      func() time.Time
}

func NewCatalogService(deckRepo deck.Repository, tierRepo tier.Repository, idGen id.Generator) *CatalogService {
	return &CatalogService{
		deckRepo: deckRepo,
		tierRepo: tierRepo,
		idGen:    idGen,
		now:      time.Now,
	}
}

func (s *CatalogService) ListDecks(ctx context.Context) ([]deck.Deck, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.ListDecks")
	defer span.End()

	decks, err := s.deckRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}

	return decks, nil
}

type CreateDeckInput struct {
	Name     string
	ImageURL string
}

func (s *CatalogService) CreateDeck(ctx context.Context, principal user.Principal, in CreateDeckInput) (deck.Deck, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.CreateDeck")
	defer span.End()

	if !principal.IsAdmin {
		return deck.Deck{}, fmt.Errorf("%w: only admins can add decks", ErrForbidden)
	}
	if in.Name == "" {
		return deck.Deck{}, fmt.Errorf("%w: deck name is required", ErrInvalidInput)
	}

	deckID, err := s.idGen.NewID()
	if err != nil {
		return deck.Deck{}, fmt.Errorf("generate deck id: %w", err)
	}

	created := deck.Deck{
		ID:        deckID,
		Name:      in.Name,
		ImageURL:  in.ImageURL,
		CreatedAt: s.now().UTC(),
	}
	if err := s.deckRepo.Insert(ctx, created); err != nil {
		return deck.Deck{}, fmt.Errorf("insert deck: %w", err)
	}

	return created, nil
}

func (s *CatalogService) ListTiers(ctx context.Context) ([]tier.Tier, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.ListTiers")
	defer span.End()

	tiers, err := s.tierRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ladder tiers: %w", err)
	}

	return tiers, nil
}
