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

// FavoriteService is the part of the menu service the favorite commands use
type FavoriteService interface {
	AddFavorite(ctx context.Context, actor *models.User, foodID string) error
	RemoveFavorite(ctx context.Context, actor *models.User, foodID string) error
	Favorites(ctx context.Context, actor *models.User) ([]models.Food, error)
}

// FavoriteCommand handles the favorite list, which drives status notifications
type FavoriteCommand struct {
	log       *zap.Logger
	favorites FavoriteService
	users     UserResolver
	lang      string
}

// NewFavoriteCommand creates a new favorite command handler
func NewFavoriteCommand(log *zap.Logger, favorites FavoriteService, users UserResolver, lang string) *FavoriteCommand {
	return &FavoriteCommand{
		log:       log.Named("favorite-command"),
		favorites: favorites,
		users:     users,
		lang:      lang,
	}
}

// Help returns the usage of the command
func (c *FavoriteCommand) Help() string {
	return "fav add|remove <foodId> | fav list - manage favorites you get status alerts for"
}

// Execute dispatches the fav subcommands
func (c *FavoriteCommand) Execute(ctx *Context) error {
	if len(ctx.Args) == 0 {
		return usageError("fav add|remove <foodId> | fav list")
	}

	user, err := ctx.User(c.users)
	if err != nil {
		return err
	}

	switch strings.ToLower(ctx.Args[0]) {
	case "add":
		if len(ctx.Args) != 2 {
			return usageError("fav add <foodId>")
		}
		if err := c.favorites.AddFavorite(ctx.Ctx, user, ctx.Args[1]); err != nil {
			return err
		}
		c.log.Info("Favorite added", zap.String("uid", user.UID), zap.String("food_id", ctx.Args[1]))
		ctx.Reply("Added `%s` to your favorites. You will get a message when it is being prepared or served.", ctx.Args[1])
		return nil

	case "remove":
		if len(ctx.Args) != 2 {
			return usageError("fav remove <foodId>")
		}
		if err := c.favorites.RemoveFavorite(ctx.Ctx, user, ctx.Args[1]); err != nil {
			return err
		}
		ctx.Reply("Removed `%s` from your favorites.", ctx.Args[1])
		return nil

	case "list":
		return c.list(ctx, user)

	default:
		return usageError("fav add|remove <foodId> | fav list")
	}
}

func (c *FavoriteCommand) list(ctx *Context, user *models.User) error {
	foods, err := c.favorites.Favorites(ctx.Ctx, user)
	if err != nil {
		return err
	}

	lines := make([]string, 0, len(foods))
	for _, food := range foods {
		lines = append(lines, formatFoodLine(food, c.lang))
	}
	description := strings.Join(lines, "\n")
	if description == "" {
		description = "You have no favorites yet."
	}

	return ctx.SendEmbed(&discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Favorites (%d)", len(foods)),
		Description: description,
		Color:       0xFF9900, // Orange
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Requested by %s", ctx.Author.Username),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
