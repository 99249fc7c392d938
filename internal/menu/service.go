// Package menu implements the restaurant, food, review and favorite operations
// shared by every client.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bradykim7/menza/internal/models"
	"github.com/bradykim7/menza/internal/storage"
	"go.uber.org/zap"
)

// Service errors
var (
	ErrForbidden     = errors.New("not allowed")
	ErrInvalidRating = fmt.Errorf("rating must be between %d and %d", models.MinRating, models.MaxRating)
	ErrInvalidFood   = errors.New("invalid food")
)

// RestaurantRepository stores restaurants
type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *models.Restaurant) error
	GetByID(ctx context.Context, id string) (*models.Restaurant, error)
	List(ctx context.Context) ([]models.Restaurant, error)
	Delete(ctx context.Context, id string) error
	AddStaffMember(ctx context.Context, id, userID string) error
	RemoveStaffMember(ctx context.Context, id, userID string) error
	AddFood(ctx context.Context, id, foodID string) error
	RemoveFood(ctx context.Context, id, foodID string) error
}

// FoodRepository stores foods
type FoodRepository interface {
	Create(ctx context.Context, food *models.Food) error
	GetByID(ctx context.Context, id string) (*models.Food, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Food, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]models.Food, error)
	UpdateStatus(ctx context.Context, id string, status models.FoodStatus) error
	Delete(ctx context.Context, id string) error
	DeleteByIDs(ctx context.Context, ids []string) error
}

// ReviewRepository stores reviews
type ReviewRepository interface {
	Add(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, foodID, reviewID string) (*models.Review, error)
	ListForFood(ctx context.Context, foodID string) ([]models.Review, error)
	Delete(ctx context.Context, foodID, reviewID string) error
	DeleteForFood(ctx context.Context, foodID string) error
}

// UserRepository stores users and their favorites
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, uids []string) ([]models.User, error)
	UpdateRole(ctx context.Context, uid string, role models.Role) error
	GetFavorites(ctx context.Context, uid string) ([]string, error)
	AddFavorite(ctx context.Context, uid, foodID string) error
	RemoveFavorite(ctx context.Context, uid, foodID string) error
	RemoveFavoriteFromAllUsers(ctx context.Context, foodID string) error
}

// Service is the menu application service
type Service struct {
	restaurants RestaurantRepository
	foods       FoodRepository
	reviews     ReviewRepository
	users       UserRepository
	log         *zap.Logger
}

// NewService creates a new menu service
func NewService(restaurants RestaurantRepository, foods FoodRepository, reviews ReviewRepository, users UserRepository, log *zap.Logger) *Service {
	return &Service{
		restaurants: restaurants,
		foods:       foods,
		reviews:     reviews,
		users:       users,
		log:         log.Named("menu-service"),
	}
}

// Restaurants

// CreateRestaurant adds a restaurant. Only admins may do this.
func (s *Service) CreateRestaurant(ctx context.Context, actor *models.User, restaurant *models.Restaurant) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	restaurant.Name = strings.TrimSpace(restaurant.Name)
	if restaurant.Name == "" {
		return fmt.Errorf("restaurant name must not be empty")
	}
	if restaurant.StaffIDs == nil {
		restaurant.StaffIDs = []string{}
	}
	if restaurant.FoodIDs == nil {
		restaurant.FoodIDs = []string{}
	}

	if err := s.restaurants.Create(ctx, restaurant); err != nil {
		return err
	}
	s.log.Info("Restaurant created", zap.String("restaurant_id", restaurant.ID), zap.String("by", actor.UID))
	return nil
}

// ListRestaurants returns every restaurant
func (s *Service) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	return s.restaurants.List(ctx)
}

// GetRestaurant returns a single restaurant
func (s *Service) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	return s.restaurants.GetByID(ctx, id)
}

// DeleteRestaurant removes a restaurant together with its foods, their reviews
// and every favorite pointing at them. Only admins may do this.
func (s *Service) DeleteRestaurant(ctx context.Context, actor *models.User, id string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	foods, err := s.foods.ListByRestaurant(ctx, id)
	if err != nil {
		return err
	}

	foodIDs := make([]string, 0, len(foods))
	for _, food := range foods {
		if err := s.detachFood(ctx, food.ID); err != nil {
			return err
		}
		foodIDs = append(foodIDs, food.ID)
	}

	if err := s.foods.DeleteByIDs(ctx, foodIDs); err != nil {
		return err
	}
	if err := s.restaurants.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("Restaurant deleted",
		zap.String("restaurant_id", id),
		zap.Int("foods", len(foodIDs)),
		zap.String("by", actor.UID))
	return nil
}

// Staff

// AddStaffMember makes the user registered with email a staff member of the
// restaurant. Students are promoted to staff. Only admins may do this.
func (s *Service) AddStaffMember(ctx context.Context, actor *models.User, restaurantID, email string) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}

	if !restaurant.HasStaffMember(user.UID) {
		if err := s.restaurants.AddStaffMember(ctx, restaurantID, user.UID); err != nil {
			return nil, err
		}
	}

	if user.Role == models.RoleStudent {
		if err := s.users.UpdateRole(ctx, user.UID, models.RoleStaff); err != nil {
			return nil, err
		}
		user.Role = models.RoleStaff
	}

	s.log.Info("Staff member added", zap.String("restaurant_id", restaurantID), zap.String("uid", user.UID))
	return user, nil
}

// RemoveStaffMember removes a user from the restaurant's staff. Only admins may do this.
func (s *Service) RemoveStaffMember(ctx context.Context, actor *models.User, restaurantID, userID string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.restaurants.RemoveStaffMember(ctx, restaurantID, userID)
}

// ListStaff returns the staff members of a restaurant
func (s *Service) ListStaff(ctx context.Context, restaurantID string) ([]models.User, error) {
	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if len(restaurant.StaffIDs) == 0 {
		return []models.User{}, nil
	}
	return s.users.GetByIDs(ctx, restaurant.StaffIDs)
}

// Foods

// NewFoodInput describes a food to add to a restaurant's menu
type NewFoodInput struct {
	RestaurantID string
	Name         string
	EnglishName  string
	GermanName   string
	PhotoURL     string
	Allergens    []models.Allergen
	Tags         []models.FoodTag
	RegularPrice float64
	StudentPrice float64
}

// CreateFood adds a food to a restaurant. Only the restaurant's staff may do this.
// Missing translations default to the source name.
func (s *Service) CreateFood(ctx context.Context, actor *models.User, input NewFoodInput) (*models.Food, error) {
	restaurant, err := s.restaurants.GetByID(ctx, input.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, restaurant) {
		return nil, ErrForbidden
	}

	food := models.NewFood(input.Name, restaurant.ID)
	if food.Name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidFood)
	}
	if input.RegularPrice < 0 || input.StudentPrice < 0 {
		return nil, fmt.Errorf("%w: prices must not be negative", ErrInvalidFood)
	}

	food.EnglishName = defaultString(input.EnglishName, food.Name)
	food.GermanName = defaultString(input.GermanName, food.Name)
	food.PhotoURL = strings.TrimSpace(input.PhotoURL)
	food.Allergens = input.Allergens
	food.Tags = input.Tags
	food.RegularPrice = input.RegularPrice
	food.StudentPrice = input.StudentPrice

	if err := s.foods.Create(ctx, food); err != nil {
		return nil, err
	}
	if err := s.restaurants.AddFood(ctx, restaurant.ID, food.ID); err != nil {
		return nil, err
	}

	s.log.Info("Food created",
		zap.String("food_id", food.ID),
		zap.String("restaurant_id", restaurant.ID),
		zap.String("by", actor.UID))
	return food, nil
}

// FoodsForRestaurant returns the menu of a restaurant
func (s *Service) FoodsForRestaurant(ctx context.Context, restaurantID string) ([]models.Food, error) {
	return s.foods.ListByRestaurant(ctx, restaurantID)
}

// GetFood returns a single food
func (s *Service) GetFood(ctx context.Context, id string) (*models.Food, error) {
	return s.foods.GetByID(ctx, id)
}

// UpdateFoodStatus changes the kitchen status of a food. Only the restaurant's staff may do this.
func (s *Service) UpdateFoodStatus(ctx context.Context, actor *models.User, foodID string, status models.FoodStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidFood, status)
	}

	food, err := s.foods.GetByID(ctx, foodID)
	if err != nil {
		return err
	}
	if err := s.authorizeForRestaurant(ctx, actor, food.RestaurantID); err != nil {
		return err
	}

	if err := s.foods.UpdateStatus(ctx, foodID, status); err != nil {
		return err
	}

	s.log.Info("Food status updated",
		zap.String("food_id", foodID),
		zap.String("status", string(status)),
		zap.String("by", actor.UID))
	return nil
}

// DeleteFood removes a food from its restaurant, drops its reviews and removes
// it from every user's favorites. Only the restaurant's staff may do this.
func (s *Service) DeleteFood(ctx context.Context, actor *models.User, foodID string) error {
	food, err := s.foods.GetByID(ctx, foodID)
	if err != nil {
		return err
	}
	if err := s.authorizeForRestaurant(ctx, actor, food.RestaurantID); err != nil {
		return err
	}

	if err := s.restaurants.RemoveFood(ctx, food.RestaurantID, foodID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if err := s.detachFood(ctx, foodID); err != nil {
		return err
	}
	if err := s.foods.Delete(ctx, foodID); err != nil {
		return err
	}

	s.log.Info("Food deleted", zap.String("food_id", foodID), zap.String("by", actor.UID))
	return nil
}

// detachFood removes everything that refers to a food
func (s *Service) detachFood(ctx context.Context, foodID string) error {
	if err := s.reviews.DeleteForFood(ctx, foodID); err != nil {
		return err
	}
	return s.users.RemoveFavoriteFromAllUsers(ctx, foodID)
}

func (s *Service) authorizeForRestaurant(ctx context.Context, actor *models.User, restaurantID string) error {
	if actor.IsAdmin() {
		return nil
	}
	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return err
	}
	if !canManage(actor, restaurant) {
		return ErrForbidden
	}
	return nil
}

// Reviews

// SubmitReview rates a food
func (s *Service) SubmitReview(ctx context.Context, actor *models.User, foodID string, rating int, comment string) (*models.Review, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, ErrInvalidRating
	}
	if _, err := s.foods.GetByID(ctx, foodID); err != nil {
		return nil, err
	}

	review := models.NewReview(foodID, actor.UID, rating, strings.TrimSpace(comment))
	if err := s.reviews.Add(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// Reviews returns the reviews of a food, newest first
func (s *Service) Reviews(ctx context.Context, foodID string) ([]models.Review, error) {
	return s.reviews.ListForFood(ctx, foodID)
}

// DeleteReview removes a review. Only its author or an admin may do this.
func (s *Service) DeleteReview(ctx context.Context, actor *models.User, foodID, reviewID string) error {
	review, err := s.reviews.GetByID(ctx, foodID, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != actor.UID && !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.reviews.Delete(ctx, foodID, reviewID)
}

// AverageRating returns the mean rating of a food and the number of reviews
func (s *Service) AverageRating(ctx context.Context, foodID string) (float64, int, error) {
	reviews, err := s.reviews.ListForFood(ctx, foodID)
	if err != nil {
		return 0, 0, err
	}
	return models.AverageRating(reviews), len(reviews), nil
}

// Favorites

// AddFavorite adds an existing food to the actor's favorites
func (s *Service) AddFavorite(ctx context.Context, actor *models.User, foodID string) error {
	if _, err := s.foods.GetByID(ctx, foodID); err != nil {
		return err
	}
	return s.users.AddFavorite(ctx, actor.UID, foodID)
}

// RemoveFavorite removes a food from the actor's favorites
func (s *Service) RemoveFavorite(ctx context.Context, actor *models.User, foodID string) error {
	return s.users.RemoveFavorite(ctx, actor.UID, foodID)
}

// Favorites returns the actor's favorite foods in the order they were added.
// Deleted foods are skipped.
func (s *Service) Favorites(ctx context.Context, actor *models.User) ([]models.Food, error) {
	ids, err := s.users.GetFavorites(ctx, actor.UID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Food, len(ids))
	for start := 0; start < len(ids); start += storage.MaxBatchSize {
		end := start + storage.MaxBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		foods, err := s.foods.GetByIDs(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for _, food := range foods {
			byID[food.ID] = food
		}
	}

	result := make([]models.Food, 0, len(byID))
	for _, id := range ids {
		if food, ok := byID[id]; ok {
			result = append(result, food)
			delete(byID, id)
		}
	}
	return result, nil
}

// Search

// Search returns the foods of a restaurant that match filter
func (s *Service) Search(ctx context.Context, restaurantID string, filter Filter) ([]models.Food, error) {
	foods, err := s.foods.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	var ratings map[string]float64
	if filter.Sort == SortByRating {
		ratings = make(map[string]float64, len(foods))
		for _, food := range foods {
			avg, _, err := s.AverageRating(ctx, food.ID)
			if err != nil {
				return nil, err
			}
			ratings[food.ID] = avg
		}
	}

	return filter.Apply(foods, ratings), nil
}

func canManage(actor *models.User, restaurant *models.Restaurant) bool {
	return actor.IsAdmin() || restaurant.HasStaffMember(actor.UID)
}

func defaultString(value, fallback string) string {
	if value = strings.TrimSpace(value); value == "" {
		return fallback
	}
	return value
}
