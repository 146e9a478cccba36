package repositories

import (
	"context"

	"gamereview/internal/models"
)

// ReviewRepository defines the interface for per-user review partitions.
// A partition is always read and written as a whole.
type ReviewRepository interface {
	GetAll(ctx context.Context, userID string) ([]models.Review, error)
	SaveAll(ctx context.Context, userID string, reviews []models.Review) error
}
