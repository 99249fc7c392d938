package storage

import (
	"context"
	"fmt"

	"github.com/bradykim7/menza/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ReviewRepository handles persistence for food reviews
type ReviewRepository struct {
	db  *MongoDB
	log *zap.Logger
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *MongoDB, log *zap.Logger) *ReviewRepository {
	return &ReviewRepository{
		db:  db,
		log: log.Named("review-repository"),
	}
}

// Add stores a review and assigns its ID
func (r *ReviewRepository) Add(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.db.Collection(reviewsCollection).InsertOne(ctx, review); err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// GetByID returns a single review of a food
func (r *ReviewRepository) GetByID(ctx context.Context, foodID, reviewID string) (*models.Review, error) {
	var review models.Review
	err := r.db.Collection(reviewsCollection).
		FindOne(ctx, bson.M{"_id": reviewID, "food_id": foodID}).
		Decode(&review)
	if err != nil {
		return nil, notFound(err, "review", reviewID)
	}
	return &review, nil
}

// ListForFood returns the reviews of a food, newest first
func (r *ReviewRepository) ListForFood(ctx context.Context, foodID string) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(reviewsCollection).Find(ctx, bson.M{"food_id": foodID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

// Delete removes a single review of a food
func (r *ReviewRepository) Delete(ctx context.Context, foodID, reviewID string) error {
	result, err := r.db.Collection(reviewsCollection).DeleteOne(ctx, bson.M{"_id": reviewID, "food_id": foodID})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
	}
	return nil
}

// DeleteForFood removes every review of a food
func (r *ReviewRepository) DeleteForFood(ctx context.Context, foodID string) error {
	result, err := r.db.Collection(reviewsCollection).DeleteMany(ctx, bson.M{"food_id": foodID})
	if err != nil {
		return fmt.Errorf("failed to delete reviews: %w", err)
	}

	r.log.Debug("Deleted reviews", zap.String("food_id", foodID), zap.Int64("count", result.DeletedCount))
	return nil
}
