package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/bradykim7/menza/internal/models"
	"github.com/bradykim7/menza/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zaptest"
)

func TestSanitizeFoodDropsUnknownLabels(t *testing.T) {
	food := &models.Food{
		Allergens: []models.Allergen{"GLUTEN", "PLUTONIUM", "milk"},
		Tags:      []models.FoodTag{"VEGAN", "RETRO"},
	}

	sanitizeFood(food)

	assert.Equal(t, []models.Allergen{models.AllergenGluten, models.AllergenMilk}, food.Allergens)
	assert.Equal(t, []models.FoodTag{models.TagVegan}, food.Tags)
}

func TestNotFoundWrapsErrNotFound(t *testing.T) {
	err := notFound(mongo.ErrNoDocuments, "food", "f-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "food f-1: not found")

	err = notFound(errors.New("socket closed"), "food", "f-1")
	assert.NotErrorIs(t, err, ErrNotFound)
}

// openTestDB connects to MENZA_TEST_MONGODB_URI and drops the database afterwards
func openTestDB(t *testing.T) *MongoDB {
	uri := os.Getenv("MENZA_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("MENZA_TEST_MONGODB_URI not set")
	}

	cfg := &config.Config{
		MongoDBURI:      uri,
		MongoDBDatabase: fmt.Sprintf("menza_test_%d", time.Now().UnixNano()),
	}
	db, err := NewMongoDB(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db.EnsureIndexes(ctx)

	t.Cleanup(func() {
		_ = db.Database().Drop(context.Background())
		_ = db.Disconnect()
	})
	return db
}

func TestRepositoriesAgainstMongoDB(t *testing.T) {
	db := openTestDB(t)
	log := zaptest.NewLogger(t)
	ctx := context.Background()

	users := NewUserRepository(db, log)
	foods := NewFoodRepository(db, log)
	restaurants := NewRestaurantRepository(db, log)

	t.Run("users", func(t *testing.T) {
		user := &models.User{Email: "ana@example.com", Username: "ana", Role: models.RoleStudent}
		require.NoError(t, users.Create(ctx, user))
		assert.NotEmpty(t, user.UID)

		duplicate := &models.User{Email: "ana@example.com", Username: "ana2"}
		assert.ErrorIs(t, users.Create(ctx, duplicate), ErrAlreadyExists)

		require.NoError(t, users.SetDiscordID(ctx, user.UID, "discord-1"))
		linked, err := users.GetByDiscordID(ctx, "discord-1")
		require.NoError(t, err)
		assert.Equal(t, user.UID, linked.UID)

		exists, err := users.UsernameExists(ctx, "ana")
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = users.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("favorites keep insertion order", func(t *testing.T) {
		user := &models.User{Email: "ivo@example.com", Username: "ivo"}
		require.NoError(t, users.Create(ctx, user))

		for _, id := range []string{"f-3", "f-1", "f-2", "f-1"} {
			require.NoError(t, users.AddFavorite(ctx, user.UID, id))
		}
		favorites, err := users.GetFavorites(ctx, user.UID)
		require.NoError(t, err)
		assert.Equal(t, []string{"f-3", "f-1", "f-2"}, favorites)

		require.NoError(t, users.RemoveFavoriteFromAllUsers(ctx, "f-1"))
		favorites, err = users.GetFavorites(ctx, user.UID)
		require.NoError(t, err)
		assert.Equal(t, []string{"f-3", "f-2"}, favorites)
	})

	t.Run("foods", func(t *testing.T) {
		restaurant := &models.Restaurant{Name: "SC", City: "Zagreb"}
		require.NoError(t, restaurants.Create(ctx, restaurant))

		var ids []string
		for i := 0; i < 3; i++ {
			food := models.NewFood(fmt.Sprintf("Jelo %d", i), restaurant.ID)
			require.NoError(t, foods.Create(ctx, food))
			ids = append(ids, food.ID)
		}

		require.NoError(t, foods.UpdateStatus(ctx, ids[0], models.FoodStatusServing))

		found, err := foods.GetByIDs(ctx, append(ids, "missing"))
		require.NoError(t, err)
		assert.Len(t, found, 3)

		_, err = foods.GetByIDs(ctx, make([]string, MaxBatchSize+1))
		assert.Error(t, err)

		listed, err := foods.ListByRestaurant(ctx, restaurant.ID)
		require.NoError(t, err)
		require.Len(t, listed, 3)
		assert.Equal(t, "Jelo 0", listed[0].Name)
		assert.Equal(t, models.FoodStatusServing, listed[0].Status)

		assert.ErrorIs(t, foods.UpdateStatus(ctx, "missing", models.FoodStatusServing), ErrNotFound)
	})
}
