package repositories

import (
	"context"
	"fmt"

	"gamereview/internal/models"
	"gamereview/pkg/kvstore"
)

// KVSessionRepository persists the session as a JSON object.
type KVSessionRepository struct {
	store kvstore.Store
}

// NewKVSessionRepository creates a new instance of KVSessionRepository.
func NewKVSessionRepository(store kvstore.Store) *KVSessionRepository {
	return &KVSessionRepository{store: store}
}

// Get returns the persisted session or nil.
func (r *KVSessionRepository) Get(ctx context.Context) (*models.Session, error) {
	var session models.Session
	if !readJSON(ctx, r.store, SessionKey, &session) {
		return nil, nil
	}
	return &session, nil
}

// Save overwrites any previous session.
func (r *KVSessionRepository) Save(ctx context.Context, session *models.Session) error {
	if err := writeJSON(ctx, r.store, SessionKey, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the session. It is idempotent.
func (r *KVSessionRepository) Clear(ctx context.Context) error {
	if err := r.store.Remove(ctx, SessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
