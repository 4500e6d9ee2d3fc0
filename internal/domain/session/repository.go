package session

import "context"

type Repository interface {
	GetByID(ctx context.Context, sessionID string) (Session, bool, error)
	List(ctx context.Context, status Status) ([]Session, error)
	Insert(ctx context.Context, s Session) error
	UpdateStatus(ctx context.Context, sessionID string, status Status) error
	Delete(ctx context.Context, sessionID string) error
}
