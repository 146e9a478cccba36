package repositories

import (
	"context"

	"gamereview/internal/models"
)

// SessionRepository defines the interface for the single persisted session.
type SessionRepository interface {
	// Get returns the stored session, or nil when there is none.
	Get(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Clear(ctx context.Context) error
}
