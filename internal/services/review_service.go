package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"gamereview/internal/models"
	"gamereview/internal/repositories"

	"github.com/go-playground/validator/v10"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Review event routing keys.
const (
	EventsExchange     = "reviews"
	EventReviewCreated = "review.created"
	EventReviewUpdated = "review.updated"
	EventReviewDeleted = "review.deleted"
)

// EventPublisher sends review activity to a message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// ReviewEvent is the payload published for every review mutation.
type ReviewEvent struct {
	Event    string    `json:"event"`
	ReviewID string    `json:"reviewId"`
	UserID   string    `json:"userId"`
	GameName string    `json:"gameName,omitempty"`
	Stars    int       `json:"stars,omitempty"`
	At       time.Time `json:"at"`
}

// ReviewService is the review store. Every call is scoped to the session it is given.
type ReviewService struct {
	repo      repositories.ReviewRepository
	publisher EventPublisher // optional
	validate  *validator.Validate
	now       func() time.Time
}

// NewReviewService creates a new ReviewService. publisher may be nil.
func NewReviewService(repo repositories.ReviewRepository, publisher EventPublisher) *ReviewService {
	return &ReviewService{
		repo:      repo,
		publisher: publisher,
		validate:  NewValidator(),
		now:       time.Now,
	}
}

// SetClock replaces the time source used for createdAt.
func (s *ReviewService) SetClock(now func() time.Time) {
	s.now = now
}

// List returns the session user's reviews, most recent first.
// Without an active session it returns an empty slice.
func (s *ReviewService) List(ctx context.Context, session *models.Session) ([]models.Review, error) {
	if !session.Active() {
		return []models.Review{}, nil
	}
	reviews, err := s.repo.GetAll(ctx, session.UserID)
	if err != nil {
		return nil, storageError("failed to load reviews", err)
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

// Get returns a single review of the session user.
func (s *ReviewService) Get(ctx context.Context, session *models.Session, id string) (*models.Review, error) {
	if !session.Active() {
		return nil, ErrUnauthenticated
	}
	reviews, err := s.repo.GetAll(ctx, session.UserID)
	if err != nil {
		return nil, storageError("failed to load reviews", err)
	}
	for i := range reviews {
		if reviews[i].ID == id {
			return &reviews[i], nil
		}
	}
	return nil, fmt.Errorf("review with ID %s: %w", id, ErrReviewNotFound)
}

// Create appends a new review to the session user's partition and returns its id.
func (s *ReviewService) Create(ctx context.Context, session *models.Session, input models.ReviewInput) (string, error) {
	if !session.Active() {
		return "", ErrUnauthenticated
	}
	input, err := s.checkInput(input)
	if err != nil {
		return "", err
	}

	reviews, err := s.repo.GetAll(ctx, session.UserID)
	if err != nil {
		return "", storageError("failed to load reviews", err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate review ID: %w", err)
	}
	review := models.Review{
		ID:        id,
		UserID:    session.UserID,
		CreatedAt: s.now().UTC(),
	}
	review.Apply(input)

	reviews = append(reviews, review)
	if err := s.repo.SaveAll(ctx, session.UserID, reviews); err != nil {
		return "", storageError("failed to create review", err)
	}

	s.publish(EventReviewCreated, review)
	return review.ID, nil
}

// Update replaces the editable fields of review id. id, userId and createdAt
// are preserved. An unknown id leaves the partition untouched and is not an error.
func (s *ReviewService) Update(ctx context.Context, session *models.Session, id string, input models.ReviewInput) error {
	if !session.Active() {
		return ErrUnauthenticated
	}
	input, err := s.checkInput(input)
	if err != nil {
		return err
	}

	reviews, err := s.repo.GetAll(ctx, session.UserID)
	if err != nil {
		return storageError("failed to load reviews", err)
	}

	idx := indexOf(reviews, id)
	if idx < 0 {
		log.Printf("Update of unknown review %s for user %s ignored", id, session.UserID)
		return nil
	}
	reviews[idx].Apply(input)

	if err := s.repo.SaveAll(ctx, session.UserID, reviews); err != nil {
		return storageError("failed to update review", err)
	}

	s.publish(EventReviewUpdated, reviews[idx])
	return nil
}

// Delete removes review id from the session user's partition. An unknown id is a no-op.
func (s *ReviewService) Delete(ctx context.Context, session *models.Session, id string) error {
	if !session.Active() {
		return ErrUnauthenticated
	}
	reviews, err := s.repo.GetAll(ctx, session.UserID)
	if err != nil {
		return storageError("failed to load reviews", err)
	}

	idx := indexOf(reviews, id)
	if idx < 0 {
		log.Printf("Delete of unknown review %s for user %s ignored", id, session.UserID)
		return nil
	}
	removed := reviews[idx]
	reviews = append(reviews[:idx], reviews[idx+1:]...)

	if err := s.repo.SaveAll(ctx, session.UserID, reviews); err != nil {
		return storageError("failed to delete review", err)
	}

	s.publish(EventReviewDeleted, removed)
	return nil
}

// checkInput trims the text fields and validates the result.
func (s *ReviewService) checkInput(input models.ReviewInput) (models.ReviewInput, error) {
	input.GameName = strings.TrimSpace(input.GameName)
	input.ReviewText = strings.TrimSpace(input.ReviewText)
	if input.ImageURI != nil && *input.ImageURI == "" {
		input.ImageURI = nil
	}
	if err := ValidateStruct(s.validate, input); err != nil {
		return input, err
	}
	return input, nil
}

func (s *ReviewService) publish(event string, review models.Review) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(ReviewEvent{
		Event:    event,
		ReviewID: review.ID,
		UserID:   review.UserID,
		GameName: review.GameName,
		Stars:    review.Stars,
		At:       s.now().UTC(),
	})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event, err)
		return
	}
	if err := s.publisher.Publish(EventsExchange, event, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for review %s: %v", event, review.ID, err)
	}
}

func indexOf(reviews []models.Review, id string) int {
	for i := range reviews {
		if reviews[i].ID == id {
			return i
		}
	}
	return -1
}
