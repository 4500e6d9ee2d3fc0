package playerstats

import "context"

type Repository interface {
	Get(ctx context.Context, sessionID, userID string) (Stats, bool, error)
	ListBySession(ctx context.Context, sessionID string) ([]Stats, error)
	Insert(ctx context.Context, s Stats) error
	// Replace overwrites the row unconditionally (rebuild path).
	Replace(ctx context.Context, s Stats) error
}
