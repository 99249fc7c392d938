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

// RestaurantRepository handles persistence for restaurants
type RestaurantRepository struct {
	db  *MongoDB
	log *zap.Logger
}

// NewRestaurantRepository creates a new restaurant repository
func NewRestaurantRepository(db *MongoDB, log *zap.Logger) *RestaurantRepository {
	return &RestaurantRepository{
		db:  db,
		log: log.Named("restaurant-repository"),
	}
}

// Create stores a new restaurant and assigns its ID
func (r *RestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	if restaurant.ID == "" {
		restaurant.ID = primitive.NewObjectID().Hex()
	}
	if restaurant.StaffIDs == nil {
		restaurant.StaffIDs = []string{}
	}
	if restaurant.FoodIDs == nil {
		restaurant.FoodIDs = []string{}
	}

	if _, err := r.db.Collection(restaurantsCollection).InsertOne(ctx, restaurant); err != nil {
		return fmt.Errorf("failed to insert restaurant: %w", err)
	}

	r.log.Info("Restaurant created", zap.String("restaurant_id", restaurant.ID), zap.String("name", restaurant.Name))
	return nil
}

// GetByID returns a restaurant
func (r *RestaurantRepository) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.db.Collection(restaurantsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&restaurant); err != nil {
		return nil, notFound(err, "restaurant", id)
	}
	return &restaurant, nil
}

// List returns every restaurant ordered by name
func (r *RestaurantRepository) List(ctx context.Context) ([]models.Restaurant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.db.Collection(restaurantsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find restaurants: %w", err)
	}
	defer cursor.Close(ctx)

	var restaurants []models.Restaurant
	if err := cursor.All(ctx, &restaurants); err != nil {
		return nil, fmt.Errorf("failed to decode restaurants: %w", err)
	}
	return restaurants, nil
}

// Delete removes a restaurant document
func (r *RestaurantRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Collection(restaurantsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete restaurant: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("restaurant %s: %w", id, ErrNotFound)
	}
	return nil
}

// AddStaffMember adds userID to the staff list unless already present
func (r *RestaurantRepository) AddStaffMember(ctx context.Context, id, userID string) error {
	return r.update(ctx, id, bson.M{"$addToSet": bson.M{"staff_ids": userID}})
}

// RemoveStaffMember removes userID from the staff list
func (r *RestaurantRepository) RemoveStaffMember(ctx context.Context, id, userID string) error {
	return r.update(ctx, id, bson.M{"$pull": bson.M{"staff_ids": userID}})
}

// AddFood appends foodID to the menu
func (r *RestaurantRepository) AddFood(ctx context.Context, id, foodID string) error {
	return r.update(ctx, id, bson.M{"$addToSet": bson.M{"food_ids": foodID}})
}

// RemoveFood removes foodID from the menu
func (r *RestaurantRepository) RemoveFood(ctx context.Context, id, foodID string) error {
	return r.update(ctx, id, bson.M{"$pull": bson.M{"food_ids": foodID}})
}

func (r *RestaurantRepository) update(ctx context.Context, id string, update bson.M) error {
	result, err := r.db.Collection(restaurantsCollection).UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to update restaurant: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("restaurant %s: %w", id, ErrNotFound)
	}
	return nil
}
