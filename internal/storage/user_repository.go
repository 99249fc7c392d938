package storage

import (
	"context"
	"fmt"

	"github.com/bradykim7/menza/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UserRepository handles persistence for users and their favorites
type UserRepository struct {
	db  *MongoDB
	log *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *MongoDB, log *zap.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log.Named("user-repository"),
	}
}

// Create stores a new user and assigns its UID when empty
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.UID == "" {
		user.UID = primitive.NewObjectID().Hex()
	}
	if user.Favorites == nil {
		user.Favorites = []string{}
	}

	if _, err := r.db.Collection(usersCollection).InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s: %w", user.Email, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	r.log.Info("User created", zap.String("uid", user.UID), zap.String("username", user.Username))
	return nil
}

// GetByID returns a user by UID
func (r *UserRepository) GetByID(ctx context.Context, uid string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": uid}, uid)
}

// GetByEmail returns a user by email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, email)
}

// GetByDiscordID returns the user linked to a Discord account
func (r *UserRepository) GetByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"discord_id": discordID}, discordID)
}

// GetByIDs returns the users in uids; unknown ids are skipped
func (r *UserRepository) GetByIDs(ctx context.Context, uids []string) ([]models.User, error) {
	if len(uids) == 0 {
		return nil, nil
	}

	cursor, err := r.db.Collection(usersCollection).Find(ctx, bson.M{"_id": bson.M{"$in": uids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// UsernameExists reports whether a username is already taken
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	count, err := r.db.Collection(usersCollection).CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return count > 0, nil
}

// UpdateRole changes the role of a user
func (r *UserRepository) UpdateRole(ctx context.Context, uid string, role models.Role) error {
	return r.update(ctx, uid, bson.M{"$set": bson.M{"role": role}})
}

// SetDiscordID links a Discord account to the user
func (r *UserRepository) SetDiscordID(ctx context.Context, uid, discordID string) error {
	return r.update(ctx, uid, bson.M{"$set": bson.M{"discord_id": discordID}})
}

// GetFavorites returns the ordered favorite food ids of a user
func (r *UserRepository) GetFavorites(ctx context.Context, uid string) ([]string, error) {
	user, err := r.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return user.Favorites, nil
}

// AddFavorite appends foodID to the user's favorites unless already present
func (r *UserRepository) AddFavorite(ctx context.Context, uid, foodID string) error {
	return r.update(ctx, uid, bson.M{"$addToSet": bson.M{"favorites": foodID}})
}

// RemoveFavorite removes foodID from the user's favorites
func (r *UserRepository) RemoveFavorite(ctx context.Context, uid, foodID string) error {
	return r.update(ctx, uid, bson.M{"$pull": bson.M{"favorites": foodID}})
}

// RemoveFavoriteFromAllUsers pulls foodID out of every favorite list
func (r *UserRepository) RemoveFavoriteFromAllUsers(ctx context.Context, foodID string) error {
	result, err := r.db.Collection(usersCollection).UpdateMany(ctx,
		bson.M{"favorites": foodID},
		bson.M{"$pull": bson.M{"favorites": foodID}})
	if err != nil {
		return fmt.Errorf("failed to remove favorite from users: %w", err)
	}

	r.log.Info("Removed favorite from users",
		zap.String("food_id", foodID),
		zap.Int64("users", result.ModifiedCount))
	return nil
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	result, err := r.db.Collection(usersCollection).DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("user %s: %w", uid, ErrNotFound)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, key string) (*models.User, error) {
	var user models.User
	if err := r.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound(err, "user", key)
	}
	return &user, nil
}

func (r *UserRepository) update(ctx context.Context, uid string, update bson.M) error {
	result, err := r.db.Collection(usersCollection).UpdateByID(ctx, uid, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s: %w", uid, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", uid, ErrNotFound)
	}
	return nil
}
