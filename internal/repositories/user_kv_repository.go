package repositories

import (
	"context"
	"fmt"

	"gamereview/internal/models"
	"gamereview/pkg/kvstore"
)

// KVUserRepository keeps all users in one JSON array.
type KVUserRepository struct {
	store kvstore.Store
}

// NewKVUserRepository creates a new instance of KVUserRepository.
func NewKVUserRepository(store kvstore.Store) *KVUserRepository {
	return &KVUserRepository{store: store}
}

// all returns every registered user. An unreadable collection is empty.
func (r *KVUserRepository) all(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if !readJSON(ctx, r.store, UsersKey, &users) || users == nil {
		return []models.User{}, nil
	}
	return users, nil
}

// GetByEmail returns the user with exactly this email (case-sensitive).
func (r *KVUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
}

// Create appends user to the collection and writes it back.
func (r *KVUserRepository) Create(ctx context.Context, user *models.User) error {
	users, err := r.all(ctx)
	if err != nil {
		return err
	}
	users = append(users, *user)
	if err := writeJSON(ctx, r.store, UsersKey, users); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
