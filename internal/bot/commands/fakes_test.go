package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bradykim7/menza/internal/menu"
	"github.com/bradykim7/menza/internal/models"
	"github.com/bradykim7/menza/internal/storage"
	"github.com/bradykim7/menza/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap/zaptest"
)

type fakeSender struct {
	messages []string
	embeds   []*discordgo.MessageEmbed
	edits    map[string]string
	editErr  error
}

func (s *fakeSender) Send(content string) (string, error) {
	s.messages = append(s.messages, content)
	return "msg-1", nil
}

func (s *fakeSender) SendEmbed(embed *discordgo.MessageEmbed) error {
	s.embeds = append(s.embeds, embed)
	return nil
}

func (s *fakeSender) Edit(messageID, content string) error {
	if s.editErr != nil {
		return s.editErr
	}
	if s.edits == nil {
		s.edits = make(map[string]string)
	}
	s.edits[messageID] = content
	return nil
}

func (s *fakeSender) last() string {
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1]
}

type fakeUsers map[string]*models.User

func (f fakeUsers) GetByDiscordID(_ context.Context, discordID string) (*models.User, error) {
	if u, ok := f[discordID]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

type fakeFavorites struct {
	added   []string
	removed []string
	foods   []models.Food
	addErr  error
}

func (f *fakeFavorites) AddFavorite(_ context.Context, _ *models.User, foodID string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, foodID)
	return nil
}

func (f *fakeFavorites) RemoveFavorite(_ context.Context, _ *models.User, foodID string) error {
	f.removed = append(f.removed, foodID)
	return nil
}

func (f *fakeFavorites) Favorites(context.Context, *models.User) ([]models.Food, error) {
	return f.foods, nil
}

type fakeAccounts struct {
	registered []string
	linked     map[string]string
	deleted    []string
	loginErr   error
}

func (f *fakeAccounts) Register(_ context.Context, email, _, username string) (*models.User, error) {
	f.registered = append(f.registered, email)
	return &models.User{UID: "u-new", Email: email, Username: username, Role: models.RoleStudent}, nil
}

func (f *fakeAccounts) Login(_ context.Context, email, _ string) (*models.User, string, time.Time, error) {
	if f.loginErr != nil {
		return nil, "", time.Time{}, f.loginErr
	}
	return &models.User{UID: "u-1", Email: email, Username: "ana"}, "signed-token", time.Date(2026, 11, 18, 0, 0, 0, 0, time.UTC), nil
}

func (f *fakeAccounts) LinkDiscord(_ context.Context, uid, discordID string) error {
	if f.linked == nil {
		f.linked = make(map[string]string)
	}
	f.linked[uid] = discordID
	return nil
}

func (f *fakeAccounts) DeleteAccount(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

type fakeReviews struct {
	submitted []int
	reviews   []models.Review
}

func (f *fakeReviews) SubmitReview(_ context.Context, actor *models.User, foodID string, rating int, comment string) (*models.Review, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, menu.ErrInvalidRating
	}
	f.submitted = append(f.submitted, rating)
	return &models.Review{ID: "r-1", FoodID: foodID, UserID: actor.UID, Rating: rating, Comment: comment}, nil
}

func (f *fakeReviews) Reviews(context.Context, string) ([]models.Review, error) {
	return f.reviews, nil
}

func (f *fakeReviews) DeleteReview(context.Context, *models.User, string, string) error {
	return errors.New("boom")
}

type fakeRestaurants struct {
	created []models.Restaurant
}

func (f *fakeRestaurants) ListRestaurants(context.Context) ([]models.Restaurant, error) {
	return f.created, nil
}

func (f *fakeRestaurants) GetRestaurant(_ context.Context, id string) (*models.Restaurant, error) {
	for i := range f.created {
		if f.created[i].ID == id {
			return &f.created[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeRestaurants) CreateRestaurant(_ context.Context, actor *models.User, r *models.Restaurant) error {
	if !actor.IsAdmin() {
		return menu.ErrForbidden
	}
	r.ID = "r-1"
	f.created = append(f.created, *r)
	return nil
}

func (f *fakeRestaurants) DeleteRestaurant(context.Context, *models.User, string) error {
	return nil
}

func (f *fakeRestaurants) AddStaffMember(_ context.Context, _ *models.User, _ string, email string) (*models.User, error) {
	return &models.User{UID: "u-staff", Email: email, Username: "cook", Role: models.RoleStaff}, nil
}

func (f *fakeRestaurants) RemoveStaffMember(context.Context, *models.User, string, string) error {
	return nil
}

func (f *fakeRestaurants) ListStaff(context.Context, string) ([]models.User, error) {
	return nil, nil
}

type fakeFoods struct {
	input menu.NewFoodInput
}

func (f *fakeFoods) Search(context.Context, string, menu.Filter) ([]models.Food, error) {
	return nil, nil
}

func (f *fakeFoods) GetFood(context.Context, string) (*models.Food, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeFoods) GetRestaurant(_ context.Context, id string) (*models.Restaurant, error) {
	return &models.Restaurant{ID: id, Name: "SC"}, nil
}

func (f *fakeFoods) AverageRating(context.Context, string) (float64, int, error) {
	return 0, 0, nil
}

func (f *fakeFoods) CreateFood(_ context.Context, _ *models.User, input menu.NewFoodInput) (*models.Food, error) {
	f.input = input
	food := models.NewFood(input.Name, input.RestaurantID)
	food.ID = "f-new"
	return food, nil
}

func (f *fakeFoods) UpdateFoodStatus(context.Context, *models.User, string, models.FoodStatus) error {
	return nil
}

func (f *fakeFoods) DeleteFood(context.Context, *models.User, string) error {
	return nil
}

func newTestRegistry(t *testing.T) *Registry {
	return NewRegistry("!", logger.FromZap(zaptest.NewLogger(t)))
}
