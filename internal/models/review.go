package models

import "time"

// Review is one user-authored game evaluation.
type Review struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	GameName   string    `json:"gameName"`
	ReviewText string    `json:"reviewText"`
	Stars      int       `json:"stars"`
	ImageURI   *string   `json:"imageUri"` // local image reference, never owned by the store
	CreatedAt  time.Time `json:"createdAt"`
}

// ReviewInput holds the replaceable fields of a review.
// Stars of 0 means "unrated" and is rejected.
type ReviewInput struct {
	GameName   string  `json:"gameName" validate:"required"`
	ReviewText string  `json:"reviewText" validate:"required"`
	Stars      int     `json:"stars" validate:"required,min=1,max=5"`
	ImageURI   *string `json:"imageUri"`
}

// Apply copies the replaceable fields of in onto r.
func (r *Review) Apply(in ReviewInput) {
	r.GameName = in.GameName
	r.ReviewText = in.ReviewText
	r.Stars = in.Stars
	r.ImageURI = in.ImageURI
}
