package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bradykim7/menza/internal/menu"
	"github.com/bradykim7/menza/internal/models"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// FoodService is the part of the menu service the food commands use
type FoodService interface {
	Search(ctx context.Context, restaurantID string, filter menu.Filter) ([]models.Food, error)
	GetFood(ctx context.Context, id string) (*models.Food, error)
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	AverageRating(ctx context.Context, foodID string) (float64, int, error)
	CreateFood(ctx context.Context, actor *models.User, input menu.NewFoodInput) (*models.Food, error)
	UpdateFoodStatus(ctx context.Context, actor *models.User, foodID string, status models.FoodStatus) error
	DeleteFood(ctx context.Context, actor *models.User, foodID string) error
}

// FoodCommand handles menu browsing and food management commands
type FoodCommand struct {
	log   *zap.Logger
	foods FoodService
	users UserResolver
	lang  string
}

// NewFoodCommand creates a new food command handler
func NewFoodCommand(log *zap.Logger, foods FoodService, users UserResolver, lang string) *FoodCommand {
	return &FoodCommand{
		log:   log.Named("food-command"),
		foods: foods,
		users: users,
		lang:  lang,
	}
}

// Register registers the food commands
func (c *FoodCommand) Register(r *Registry) {
	r.Register("menu", commandFunc{"menu <restaurantId> [tag:x] [no:allergen] [status:s] [max:price] [sort:name|price|rating] [text] - list a menu", c.handleMenu})
	r.Register("food", commandFunc{"food <foodId> - show a food", c.handleFood})
	r.Register("status", commandFunc{"status <foodId> <SERVING|PREPARING|UNAVAILABLE> - staff only", c.handleStatus})
	r.Register("food-add", commandFunc{"food-add <restaurantId> <regularPrice> <studentPrice> <name> [| english | german] [tag:x] [allergen:y] [photo:url] - staff only", c.handleAddFood})
	r.Register("food-delete", commandFunc{"food-delete <foodId> - staff only", c.handleDeleteFood})
}

// handleMenu lists the filtered menu of a restaurant
func (c *FoodCommand) handleMenu(ctx *Context) error {
	if len(ctx.Args) == 0 {
		return usageError("menu <restaurantId> [filters]")
	}

	restaurant, err := c.foods.GetRestaurant(ctx.Ctx, ctx.Args[0])
	if err != nil {
		return err
	}

	filter, err := menu.ParseFilter(ctx.Args[1:])
	if err != nil {
		ctx.Reply("%s", err.Error())
		return nil
	}

	foods, err := c.foods.Search(ctx.Ctx, restaurant.ID, filter)
	if err != nil {
		return err
	}

	lines := make([]string, 0, len(foods))
	for _, food := range foods {
		lines = append(lines, formatFoodLine(food, c.lang))
	}
	description := strings.Join(lines, "\n")
	if description == "" {
		description = "No foods match."
	}

	return ctx.SendEmbed(&discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s (%d)", restaurant.Name, len(foods)),
		Description: description,
		Color:       0x00FF00, // Green
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Requested by %s", ctx.Author.Username),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// handleFood shows a single food with its rating
func (c *FoodCommand) handleFood(ctx *Context) error {
	if len(ctx.Args) != 1 {
		return usageError("food <foodId>")
	}

	food, err := c.foods.GetFood(ctx.Ctx, ctx.Args[0])
	if err != nil {
		return err
	}

	avg, count, err := c.foods.AverageRating(ctx.Ctx, food.ID)
	if err != nil {
		c.log.Warn("Failed to load rating", zap.Error(err), zap.String("food_id", food.ID))
	}

	restaurantName := food.RestaurantID
	if restaurant, err := c.foods.GetRestaurant(ctx.Ctx, food.RestaurantID); err == nil {
		restaurantName = restaurant.Name
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Restaurant", Value: restaurantName, Inline: true},
		{Name: "Status", Value: string(food.Status), Inline: true},
		{Name: "Price", Value: fmt.Sprintf("%.2f € / student %.2f €", food.RegularPrice, food.StudentPrice), Inline: true},
		{Name: "Rating", Value: fmt.Sprintf("%.1f ★ (%d)", avg, count), Inline: true},
	}
	if len(food.Tags) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Tags", Value: joinLabels(food.Tags), Inline: false})
	}
	if len(food.Allergens) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Allergens", Value: joinLabels(food.Allergens), Inline: false})
	}

	embed := &discordgo.MessageEmbed{
		Title:       food.DisplayName(c.lang),
		Description: fmt.Sprintf("`%s`", food.ID),
		Color:       statusColor(food.Status),
		Fields:      fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Requested by %s", ctx.Author.Username),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if food.PhotoURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: food.PhotoURL}
	}
	return ctx.SendEmbed(embed)
}

// handleStatus changes the kitchen status of a food
func (c *FoodCommand) handleStatus(ctx *Context) error {
	if len(ctx.Args) != 2 {
		return usageError("status <foodId> <SERVING|PREPARING|UNAVAILABLE>")
	}

	status, err := models.ParseFoodStatus(ctx.Args[1])
	if err != nil {
		return usageError("status <foodId> <SERVING|PREPARING|UNAVAILABLE>")
	}

	user, err := ctx.User(c.users)
	if err != nil {
		return err
	}

	if err := c.foods.UpdateFoodStatus(ctx.Ctx, user, ctx.Args[0], status); err != nil {
		return err
	}

	ctx.Reply("Status of `%s` is now **%s**.", ctx.Args[0], status)
	return nil
}

// handleAddFood adds a food to a restaurant's menu
func (c *FoodCommand) handleAddFood(ctx *Context) error {
	const usage = "food-add <restaurantId> <regularPrice> <studentPrice> <name> [| english | german] [tag:x] [allergen:y] [photo:url]"
	if len(ctx.Args) < 4 {
		return usageError(usage)
	}

	regular, err1 := parsePrice(ctx.Args[1])
	student, err2 := parsePrice(ctx.Args[2])
	if err1 != nil || err2 != nil {
		return usageError(usage)
	}

	input := menu.NewFoodInput{
		RestaurantID: ctx.Args[0],
		RegularPrice: regular,
		StudentPrice: student,
	}

	var words, tags, allergens []string
	for _, arg := range ctx.Args[3:] {
		switch key, value, _ := strings.Cut(arg, ":"); strings.ToLower(key) {
		case "tag":
			tags = append(tags, value)
		case "allergen":
			allergens = append(allergens, value)
		case "photo":
			input.PhotoURL = value
		default:
			words = append(words, arg)
		}
	}
	input.Tags = models.ParseFoodTags(tags)
	input.Allergens = models.ParseAllergens(allergens)

	names := strings.Split(strings.Join(words, " "), "|")
	input.Name = strings.TrimSpace(names[0])
	if len(names) > 1 {
		input.EnglishName = strings.TrimSpace(names[1])
	}
	if len(names) > 2 {
		input.GermanName = strings.TrimSpace(names[2])
	}

	user, err := ctx.User(c.users)
	if err != nil {
		return err
	}

	food, err := c.foods.CreateFood(ctx.Ctx, user, input)
	if err != nil {
		return err
	}

	c.log.Info("Food added",
		zap.String("food_id", food.ID),
		zap.String("restaurant_id", food.RestaurantID),
		zap.String("author", ctx.Author.Username))

	return ctx.SendEmbed(&discordgo.MessageEmbed{
		Title:       "Food added",
		Description: formatFoodLine(*food, c.lang),
		Color:       0x00FF00, // Green
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Added by %s", ctx.Author.Username),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// handleDeleteFood removes a food from its restaurant
func (c *FoodCommand) handleDeleteFood(ctx *Context) error {
	if len(ctx.Args) != 1 {
		return usageError("food-delete <foodId>")
	}

	user, err := ctx.User(c.users)
	if err != nil {
		return err
	}

	if err := c.foods.DeleteFood(ctx.Ctx, user, ctx.Args[0]); err != nil {
		return err
	}

	return ctx.SendEmbed(&discordgo.MessageEmbed{
		Title:       "Food deleted",
		Description: fmt.Sprintf("`%s` was removed from the menu.", ctx.Args[0]),
		Color:       0xFF0000, // Red
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Removed by %s", ctx.Author.Username),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// formatFoodLine renders one food as a single line of a list
func formatFoodLine(food models.Food, lang string) string {
	return fmt.Sprintf("`%s` **%s** · %.2f € · %s", food.ID, food.DisplayName(lang), food.StudentPrice, food.Status)
}

func joinLabels[T ~string](labels []T) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = strings.ToLower(strings.ReplaceAll(string(l), "_", " "))
	}
	return strings.Join(parts, ", ")
}

func parsePrice(s string) (float64, error) {
	price, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || price < 0 {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return price, nil
}

func statusColor(status models.FoodStatus) int {
	switch status {
	case models.FoodStatusServing:
		return 0x00FF00
	case models.FoodStatusPreparing:
		return 0xFFA500
	default:
		return 0x808080
	}
}

// commandFunc adapts a handler method to the Command interface
type commandFunc struct {
	help string
	fn   func(c *Context) error
}

func (f commandFunc) Execute(c *Context) error { return f.fn(c) }

func (f commandFunc) Help() string { return f.help }
