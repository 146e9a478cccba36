package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gamereview/pkg/kvstore"
)

// Storage keys.
const (
	SessionKey       = "@user_auth"
	UsersKey         = "@users"
	ReviewsKeyPrefix = "@game_reviews"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// ReviewsKey returns the partition key holding userID's reviews.
func ReviewsKey(userID string) string {
	return ReviewsKeyPrefix + ":" + userID
}

// readJSON decodes the value under key into dst. It reports false when the
// key is missing or unreadable; read faults are logged, never returned.
func readJSON(ctx context.Context, store kvstore.Store, key string, dst interface{}) bool {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrKeyNotFound) {
			log.Printf("Error reading %s, treating as empty: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Printf("Corrupt value under %s, treating as empty: %v", key, err)
		return false
	}
	return true
}

func writeJSON(ctx context.Context, store kvstore.Store, key string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(body)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
