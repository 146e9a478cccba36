package repositories

import (
	"context"

	"gamereview/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}
