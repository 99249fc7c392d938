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

// MaxBatchSize is the largest id list GetByIDs accepts in one query
const MaxBatchSize = 10

// FoodRepository handles persistence for menu items
type FoodRepository struct {
	db  *MongoDB
	log *zap.Logger
}

// NewFoodRepository creates a new food repository
func NewFoodRepository(db *MongoDB, log *zap.Logger) *FoodRepository {
	return &FoodRepository{
		db:  db,
		log: log.Named("food-repository"),
	}
}

// Create stores a new food and assigns its ID
func (r *FoodRepository) Create(ctx context.Context, food *models.Food) error {
	if food.ID == "" {
		food.ID = primitive.NewObjectID().Hex()
	}
	if food.Allergens == nil {
		food.Allergens = []models.Allergen{}
	}
	if food.Tags == nil {
		food.Tags = []models.FoodTag{}
	}

	if _, err := r.db.Collection(foodsCollection).InsertOne(ctx, food); err != nil {
		return fmt.Errorf("failed to insert food: %w", err)
	}

	r.log.Info("Food created", zap.String("food_id", food.ID), zap.String("name", food.Name))
	return nil
}

// GetByID returns a single food
func (r *FoodRepository) GetByID(ctx context.Context, id string) (*models.Food, error) {
	var food models.Food
	err := r.db.Collection(foodsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&food)
	if err != nil {
		return nil, notFound(err, "food", id)
	}
	sanitizeFood(&food)
	return &food, nil
}

// GetByIDs returns the foods whose ids are in ids. Ids without a document are
// simply absent from the result. At most MaxBatchSize ids may be passed.
func (r *FoodRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Food, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxBatchSize {
		return nil, fmt.Errorf("batch of %d ids exceeds the limit of %d", len(ids), MaxBatchSize)
	}

	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// ListByRestaurant returns every food served by a restaurant, ordered by name
func (r *FoodRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]models.Food, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return r.find(ctx, bson.M{"restaurant_id": restaurantID}, opts)
}

// UpdateStatus sets the kitchen status of a food
func (r *FoodRepository) UpdateStatus(ctx context.Context, id string, status models.FoodStatus) error {
	result, err := r.db.Collection(foodsCollection).UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update food status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("food %s: %w", id, ErrNotFound)
	}

	r.log.Info("Food status updated", zap.String("food_id", id), zap.String("status", string(status)))
	return nil
}

// Delete removes a food
func (r *FoodRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Collection(foodsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete food: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("food %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteByIDs removes every food in ids
func (r *FoodRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.Collection(foodsCollection).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("failed to delete foods: %w", err)
	}
	return nil
}

func (r *FoodRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Food, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}

	cursor, err := r.db.Collection(foodsCollection).Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to find foods: %w", err)
	}
	defer cursor.Close(ctx)

	var foods []models.Food
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, fmt.Errorf("failed to decode foods: %w", err)
	}

	for i := range foods {
		sanitizeFood(&foods[i])
	}
	return foods, nil
}

// sanitizeFood drops allergen and tag names this build does not know about
func sanitizeFood(food *models.Food) {
	allergens := make([]string, len(food.Allergens))
	for i, a := range food.Allergens {
		allergens[i] = string(a)
	}
	food.Allergens = models.ParseAllergens(allergens)

	tags := make([]string, len(food.Tags))
	for i, t := range food.Tags {
		tags[i] = string(t)
	}
	food.Tags = models.ParseFoodTags(tags)
}
