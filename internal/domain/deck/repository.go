package deck

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Deck, bool, error)
	List(ctx context.Context) ([]Deck, error)
	Insert(ctx context.Context, d Deck) error
}
