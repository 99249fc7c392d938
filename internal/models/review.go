package models

import "time"

const (
	// MinRating is the lowest star rating
	MinRating = 1

	// MaxRating is the highest star rating
	MaxRating = 5
)

// Review is a star rating with an optional comment left by a user for a food
type Review struct {
	ID        string    `bson:"_id" json:"id"`
	FoodID    string    `bson:"food_id" json:"food_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Rating    int       `bson:"rating" json:"rating"`
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// NewReview creates a new review timestamped now
func NewReview(foodID, userID string, rating int, comment string) *Review {
	return &Review{
		FoodID:    foodID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
}

// AverageRating returns the mean rating of reviews, or 0 when there are none
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	return float64(total) / float64(len(reviews))
}
