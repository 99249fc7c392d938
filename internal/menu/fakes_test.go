package menu

import (
	"context"
	"fmt"
	"sort"

	"github.com/bradykim7/menza/internal/models"
	"github.com/bradykim7/menza/internal/storage"
)

// memDB backs the fake repositories with plain maps
type memDB struct {
	restaurants map[string]*models.Restaurant
	foods       map[string]*models.Food
	reviews     map[string]*models.Review
	users       map[string]*models.User
	seq         int
}

func newMemDB() *memDB {
	return &memDB{
		restaurants: make(map[string]*models.Restaurant),
		foods:       make(map[string]*models.Food),
		reviews:     make(map[string]*models.Review),
		users:       make(map[string]*models.User),
	}
}

func (db *memDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%d", prefix, db.seq)
}

func (db *memDB) service() *Service {
	return &Service{
		restaurants: fakeRestaurants{db},
		foods:       fakeFoods{db},
		reviews:     fakeReviews{db},
		users:       fakeUsers{db},
	}
}

func removeString(values []string, value string) []string {
	result := values[:0:0]
	for _, v := range values {
		if v != value {
			result = append(result, v)
		}
	}
	return result
}

type fakeRestaurants struct{ db *memDB }

func (f fakeRestaurants) Create(_ context.Context, r *models.Restaurant) error {
	r.ID = f.db.nextID("restaurant")
	copied := *r
	f.db.restaurants[r.ID] = &copied
	return nil
}

func (f fakeRestaurants) GetByID(_ context.Context, id string) (*models.Restaurant, error) {
	r, ok := f.db.restaurants[id]
	if !ok {
		return nil, fmt.Errorf("restaurant %s: %w", id, storage.ErrNotFound)
	}
	copied := *r
	return &copied, nil
}

func (f fakeRestaurants) List(context.Context) ([]models.Restaurant, error) {
	var result []models.Restaurant
	for _, r := range f.db.restaurants {
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f fakeRestaurants) Delete(_ context.Context, id string) error {
	if _, ok := f.db.restaurants[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.db.restaurants, id)
	return nil
}

func (f fakeRestaurants) AddStaffMember(_ context.Context, id, userID string) error {
	r, ok := f.db.restaurants[id]
	if !ok {
		return storage.ErrNotFound
	}
	if !r.HasStaffMember(userID) {
		r.StaffIDs = append(r.StaffIDs, userID)
	}
	return nil
}

func (f fakeRestaurants) RemoveStaffMember(_ context.Context, id, userID string) error {
	r, ok := f.db.restaurants[id]
	if !ok {
		return storage.ErrNotFound
	}
	r.StaffIDs = removeString(r.StaffIDs, userID)
	return nil
}

func (f fakeRestaurants) AddFood(_ context.Context, id, foodID string) error {
	r, ok := f.db.restaurants[id]
	if !ok {
		return storage.ErrNotFound
	}
	r.FoodIDs = append(r.FoodIDs, foodID)
	return nil
}

func (f fakeRestaurants) RemoveFood(_ context.Context, id, foodID string) error {
	r, ok := f.db.restaurants[id]
	if !ok {
		return storage.ErrNotFound
	}
	r.FoodIDs = removeString(r.FoodIDs, foodID)
	return nil
}

type fakeFoods struct{ db *memDB }

func (f fakeFoods) Create(_ context.Context, food *models.Food) error {
	food.ID = f.db.nextID("food")
	copied := *food
	f.db.foods[food.ID] = &copied
	return nil
}

func (f fakeFoods) GetByID(_ context.Context, id string) (*models.Food, error) {
	food, ok := f.db.foods[id]
	if !ok {
		return nil, fmt.Errorf("food %s: %w", id, storage.ErrNotFound)
	}
	copied := *food
	return &copied, nil
}

func (f fakeFoods) GetByIDs(_ context.Context, ids []string) ([]models.Food, error) {
	if len(ids) > storage.MaxBatchSize {
		return nil, fmt.Errorf("batch too large: %d", len(ids))
	}
	var result []models.Food
	for _, id := range ids {
		if food, ok := f.db.foods[id]; ok {
			result = append(result, *food)
		}
	}
	return result, nil
}

func (f fakeFoods) ListByRestaurant(_ context.Context, restaurantID string) ([]models.Food, error) {
	var result []models.Food
	for _, food := range f.db.foods {
		if food.RestaurantID == restaurantID {
			result = append(result, *food)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f fakeFoods) UpdateStatus(_ context.Context, id string, status models.FoodStatus) error {
	food, ok := f.db.foods[id]
	if !ok {
		return storage.ErrNotFound
	}
	food.Status = status
	return nil
}

func (f fakeFoods) Delete(_ context.Context, id string) error {
	if _, ok := f.db.foods[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.db.foods, id)
	return nil
}

func (f fakeFoods) DeleteByIDs(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(f.db.foods, id)
	}
	return nil
}

type fakeReviews struct{ db *memDB }

func (f fakeReviews) Add(_ context.Context, review *models.Review) error {
	review.ID = f.db.nextID("review")
	copied := *review
	f.db.reviews[review.ID] = &copied
	return nil
}

func (f fakeReviews) GetByID(_ context.Context, foodID, reviewID string) (*models.Review, error) {
	review, ok := f.db.reviews[reviewID]
	if !ok || review.FoodID != foodID {
		return nil, storage.ErrNotFound
	}
	copied := *review
	return &copied, nil
}

func (f fakeReviews) ListForFood(_ context.Context, foodID string) ([]models.Review, error) {
	var result []models.Review
	for _, review := range f.db.reviews {
		if review.FoodID == foodID {
			result = append(result, *review)
		}
	}
	return result, nil
}

func (f fakeReviews) Delete(_ context.Context, foodID, reviewID string) error {
	review, ok := f.db.reviews[reviewID]
	if !ok || review.FoodID != foodID {
		return storage.ErrNotFound
	}
	delete(f.db.reviews, reviewID)
	return nil
}

func (f fakeReviews) DeleteForFood(_ context.Context, foodID string) error {
	for id, review := range f.db.reviews {
		if review.FoodID == foodID {
			delete(f.db.reviews, id)
		}
	}
	return nil
}

type fakeUsers struct{ db *memDB }

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.db.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f fakeUsers) GetByIDs(_ context.Context, uids []string) ([]models.User, error) {
	var result []models.User
	for _, uid := range uids {
		if u, ok := f.db.users[uid]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (f fakeUsers) UpdateRole(_ context.Context, uid string, role models.Role) error {
	u, ok := f.db.users[uid]
	if !ok {
		return storage.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f fakeUsers) GetFavorites(_ context.Context, uid string) ([]string, error) {
	u, ok := f.db.users[uid]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]string(nil), u.Favorites...), nil
}

func (f fakeUsers) AddFavorite(_ context.Context, uid, foodID string) error {
	u, ok := f.db.users[uid]
	if !ok {
		return storage.ErrNotFound
	}
	if !u.HasFavorite(foodID) {
		u.Favorites = append(u.Favorites, foodID)
	}
	return nil
}

func (f fakeUsers) RemoveFavorite(_ context.Context, uid, foodID string) error {
	u, ok := f.db.users[uid]
	if !ok {
		return storage.ErrNotFound
	}
	u.Favorites = removeString(u.Favorites, foodID)
	return nil
}

func (f fakeUsers) RemoveFavoriteFromAllUsers(_ context.Context, foodID string) error {
	for _, u := range f.db.users {
		u.Favorites = removeString(u.Favorites, foodID)
	}
	return nil
}
