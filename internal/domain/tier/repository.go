package tier

import "context"

type Repository interface {
	// List returns all tiers ordered by SortOrder ascending.
	List(ctx context.Context) ([]Tier, error)
	GetByID(ctx context.Context, tierID string) (Tier, bool, error)
}
