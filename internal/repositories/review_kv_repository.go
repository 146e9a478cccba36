package repositories

import (
	"context"
	"fmt"

	"gamereview/internal/models"
	"gamereview/pkg/kvstore"
)

// KVReviewRepository stores each user's reviews under its own key.
type KVReviewRepository struct {
	store kvstore.Store
}

// NewKVReviewRepository creates a new instance of KVReviewRepository.
func NewKVReviewRepository(store kvstore.Store) *KVReviewRepository {
	return &KVReviewRepository{store: store}
}

// GetAll returns the partition of userID in stored order.
func (r *KVReviewRepository) GetAll(ctx context.Context, userID string) ([]models.Review, error) {
	var reviews []models.Review
	if !readJSON(ctx, r.store, ReviewsKey(userID), &reviews) || reviews == nil {
		return []models.Review{}, nil
	}
	return reviews, nil
}

// SaveAll replaces the partition of userID.
func (r *KVReviewRepository) SaveAll(ctx context.Context, userID string, reviews []models.Review) error {
	if reviews == nil {
		reviews = []models.Review{}
	}
	if err := writeJSON(ctx, r.store, ReviewsKey(userID), reviews); err != nil {
		return fmt.Errorf("failed to save reviews for user %s: %w", userID, err)
	}
	return nil
}
