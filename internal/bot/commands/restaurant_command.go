package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bradykim7/menza/internal/models"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// RestaurantService is the part of the menu service the restaurant commands use
type RestaurantService interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	CreateRestaurant(ctx context.Context, actor *models.User, restaurant *models.Restaurant) error
	DeleteRestaurant(ctx context.Context, actor *models.User, id string) error
	AddStaffMember(ctx context.Context, actor *models.User, restaurantID, email string) (*models.User, error)
	RemoveStaffMember(ctx context.Context, actor *models.User, restaurantID, userID string) error
	ListStaff(ctx context.Context, restaurantID string) ([]models.User, error)
}

// RestaurantCommand handles restaurant browsing and administration
type RestaurantCommand struct {
	log         *zap.Logger
	restaurants RestaurantService
	users       UserResolver
}

// NewRestaurantCommand creates a new restaurant command handler
func NewRestaurantCommand(log *zap.Logger, restaurants RestaurantService, users UserResolver) *RestaurantCommand {
	return &RestaurantCommand{
		log:         log.Named("restaurant-command"),
		restaurants: restaurants,
		users:       users,
	}
}

// Register registers the restaurant commands
func (c *RestaurantCommand) Register(r *Registry) {
	r.Register("restaurants", commandFunc{"restaurants - list restaurants", c.handleList})
	r.Register("restaurant", commandFunc{"restaurant <restaurantId> - show a restaurant", c.handleShow})
	r.Register("restaurant-add", commandFunc{"restaurant-add <name> | <address> | <city> - admin only", c.handleAdd})
	r.Register("restaurant-delete", commandFunc{"restaurant-delete <restaurantId> - admin only", c.handleDelete})
	r.Register("staff", commandFunc{"staff add <restaurantId> <email> | staff remove <restaurantId> <userId> | staff list <restaurantId>", c.handleStaff})
}

func (c *RestaurantCommand) handleList(ctx *Context) error {
	restaurants, err := c.restaurants.ListRestaurants(ctx.Ctx)
	if err != nil {
		return err
	}

	lines := make([]string, 0, len(restaurants))
	for _, r := range restaurants {
		lines = append(lines, fmt.Sprintf("`%s` **%s** · %s", r.ID, r.Name, r.City))
	}
	description := strings.Join(lines, "\n")
	if description == "" {
		description = "No restaurants yet."
	}

	return ctx.SendEmbed(&discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Restaurants (%d)", len(restaurants)),
		Description: description,
		Color:       0x3366FF, // Blue
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Requested by %s", ctx.Author.Username),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (c *RestaurantCommand) handleShow(ctx *Context) error {
	if len(ctx.Args) != 1 {
		return usageError("restaurant <restaurantId>")
	}

	r, err := c.restaurants.GetRestaurant(ctx.Ctx, ctx.Args[0])
	if err != nil {
		return err
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Address", Value: orDash(r.Address), Inline: true},
		{Name: "City", Value: orDash(r.City), Inline: true},
		{Name: "Foods", Value: fmt.Sprintf("%d", len(r.FoodIDs)), Inline: true},
		{Name: "Staff", Value: fmt.Sprintf("%d", len(r.StaffIDs)), Inline: true},
	}
	if r.Lat != nil && r.Lng != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Location",
			Value: fmt.Sprintf("%.5f, %.5f", *r.Lat, *r.Lng),
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:       r.Name,
		Description: fmt.Sprintf("`%s`", r.ID),
		Color:       0x3366FF, // Blue
		Fields:      fields,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if r.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: r.ImageURL}
	}
	return ctx.SendEmbed(embed)
}

func (c *RestaurantCommand) handleAdd(ctx *Context) error {
	parts := strings.Split(strings.Join(ctx.Args, " "), "|")
	if len(parts) != 3 {
		return usageError("restaurant-add <name> | <address> | <city>")
	}

	user, err := ctx.User(c.users)
	if err != nil {
		return err
	}

	restaurant := &models.Restaurant{
		Name:    strings.TrimSpace(parts[0]),
		Address: strings.TrimSpace(parts[1]),
		City:    strings.TrimSpace(parts[2]),
	}
	if err := c.restaurants.CreateRestaurant(ctx.Ctx, user, restaurant); err != nil {
		return err
	}

	ctx.Reply("Restaurant **%s** created with id `%s`.", restaurant.Name, restaurant.ID)
	return nil
}

func (c *RestaurantCommand) handleDelete(ctx *Context) error {
	if len(ctx.Args) != 1 {
		return usageError("restaurant-delete <restaurantId>")
	}

	user, err := ctx.User(c.users)
	if err != nil {
		return err
	}

	if err := c.restaurants.DeleteRestaurant(ctx.Ctx, user, ctx.Args[0]); err != nil {
		return err
	}

	c.log.Info("Restaurant deleted", zap.String("restaurant_id", ctx.Args[0]), zap.String("by", user.UID))
	ctx.Reply("Restaurant `%s` and its menu were deleted.", ctx.Args[0])
	return nil
}

func (c *RestaurantCommand) handleStaff(ctx *Context) error {
	const usage = "staff add <restaurantId> <email> | staff remove <restaurantId> <userId> | staff list <restaurantId>"
	if len(ctx.Args) < 2 {
		return usageError(usage)
	}
	sub, restaurantID := strings.ToLower(ctx.Args[0]), ctx.Args[1]

	if sub == "list" {
		staff, err := c.restaurants.ListStaff(ctx.Ctx, restaurantID)
		if err != nil {
			return err
		}
		lines := make([]string, 0, len(staff))
		for _, u := range staff {
			lines = append(lines, fmt.Sprintf("`%s` %s <%s>", u.UID, u.Username, u.Email))
		}
		if len(lines) == 0 {
			lines = append(lines, "No staff members.")
		}
		ctx.Reply("%s", strings.Join(lines, "\n"))
		return nil
	}

	if len(ctx.Args) != 3 {
		return usageError(usage)
	}

	user, err := ctx.User(c.users)
	if err != nil {
		return err
	}

	switch sub {
	case "add":
		member, err := c.restaurants.AddStaffMember(ctx.Ctx, user, restaurantID, ctx.Args[2])
		if err != nil {
			return err
		}
		ctx.Reply("%s is now staff of `%s`.", member.Username, restaurantID)
	case "remove":
		if err := c.restaurants.RemoveStaffMember(ctx.Ctx, user, restaurantID, ctx.Args[2]); err != nil {
			return err
		}
		ctx.Reply("Removed `%s` from the staff of `%s`.", ctx.Args[2], restaurantID)
	default:
		return usageError(usage)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
