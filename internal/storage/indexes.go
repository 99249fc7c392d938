package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureIndexes makes sure the indices the repositories rely on exist.
// Failures are logged and do not stop startup.
func (m *MongoDB) EnsureIndexes(ctx context.Context) {
	users := m.Collection(usersCollection)

	// Email and username are unique per user
	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		m.log.Warn("Failed to create email index on users collection", zap.Error(err))
	}

	_, err = users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		m.log.Warn("Failed to create username index on users collection", zap.Error(err))
	}

	// Sparse so users without a linked Discord account do not collide
	_, err = users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "discord_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	if err != nil {
		m.log.Warn("Failed to create discord_id index on users collection", zap.Error(err))
	}

	// Multikey index used when a deleted food is pulled from every favorite list
	_, err = users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "favorites", Value: 1}},
	})
	if err != nil {
		m.log.Warn("Failed to create favorites index on users collection", zap.Error(err))
	}

	_, err = m.Collection(foodsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "restaurant_id", Value: 1}},
	})
	if err != nil {
		m.log.Warn("Failed to create restaurant_id index on foods collection", zap.Error(err))
	}

	_, err = m.Collection(reviewsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "food_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		m.log.Warn("Failed to create food_id index on reviews collection", zap.Error(err))
	}
}
