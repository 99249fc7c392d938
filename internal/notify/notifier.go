// Package notify turns food status changes into user-facing notifications.
package notify

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/bradykim7/menza/internal/models"
	"go.uber.org/zap"
)

// FoodStatusChannelID identifies the notification channel used for food status updates
const FoodStatusChannelID = "food_status_channel"

// ErrNoRecipient is returned when a user has no linked destination for notifications
var ErrNoRecipient = errors.New("user has no notification recipient")

// Channel describes a notification channel
type Channel struct {
	ID          string
	Name        string
	Description string
}

// Notification is a single rendered message for one recipient
type Notification struct {
	Key       int32
	ChannelID string
	Recipient string
	Title     string
	Body      string
	Status    models.FoodStatus
	ImageURL  string
}

// Dispatcher delivers rendered notifications.
// Dispatching a notification with the key of an earlier one replaces it.
type Dispatcher interface {
	EnsureChannel(ctx context.Context, recipient string, channel Channel) error
	Dispatch(ctx context.Context, n Notification) error
}

// Notifier is what the status watcher calls when a favorite food changed status
type Notifier interface {
	Notify(ctx context.Context, user *models.User, food models.Food, restaurantName string) error
}

// StatusNotifier renders localized status notifications and hands them to a Dispatcher
type StatusNotifier struct {
	dispatcher Dispatcher
	localizer  *Localizer
	logger     *zap.Logger
}

// NewStatusNotifier creates a notifier rendering texts in lang
func NewStatusNotifier(dispatcher Dispatcher, lang string, log *zap.Logger) *StatusNotifier {
	return &StatusNotifier{
		dispatcher: dispatcher,
		localizer:  NewLocalizer(lang),
		logger:     log.Named("status-notifier"),
	}
}

// Notify posts one notification about food. Statuses other than SERVING and PREPARING are ignored.
func (n *StatusNotifier) Notify(ctx context.Context, user *models.User, food models.Food, restaurantName string) error {
	if !food.Status.Notifiable() {
		return nil
	}
	if user == nil || user.DiscordID == "" {
		return ErrNoRecipient
	}

	channel := n.localizer.Channel()
	if err := n.dispatcher.EnsureChannel(ctx, user.DiscordID, channel); err != nil {
		return fmt.Errorf("failed to ensure notification channel: %w", err)
	}

	notification := n.Render(user.DiscordID, food, restaurantName)
	if err := n.dispatcher.Dispatch(ctx, notification); err != nil {
		return fmt.Errorf("failed to dispatch notification for food %s: %w", food.ID, err)
	}

	n.logger.Info("Sent food status notification",
		zap.String("user_id", user.UID),
		zap.String("food_id", food.ID),
		zap.String("status", string(food.Status)))

	return nil
}

// Render builds the notification for food without sending it
func (n *StatusNotifier) Render(recipient string, food models.Food, restaurantName string) Notification {
	statusText := n.localizer.StatusText(food.Status)
	return Notification{
		Key:       KeyFor(food.ID),
		ChannelID: FoodStatusChannelID,
		Recipient: recipient,
		Title:     n.localizer.Title(),
		Body:      n.localizer.Body(food.DisplayName(n.localizer.Lang()), restaurantName, statusText),
		Status:    food.Status,
		ImageURL:  food.PhotoURL,
	}
}

// KeyFor returns the stable notification key of a food id
func KeyFor(foodID string) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(foodID))
	return int32(h.Sum32())
}
