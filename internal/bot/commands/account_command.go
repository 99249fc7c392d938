package commands

import (
	"context"
	"strings"
	"time"

	"github.com/bradykim7/menza/internal/models"
	"go.uber.org/zap"
)

// AccountService registers and signs in users
type AccountService interface {
	Register(ctx context.Context, email, password, username string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, time.Time, error)
	LinkDiscord(ctx context.Context, uid, discordID string) error
	DeleteAccount(ctx context.Context, uid string) error
}

// AccountCommand handles registration, login and account removal
type AccountCommand struct {
	log      *zap.Logger
	accounts AccountService
	users    UserResolver
}

// NewAccountCommand creates a new account command handler
func NewAccountCommand(log *zap.Logger, accounts AccountService, users UserResolver) *AccountCommand {
	return &AccountCommand{
		log:      log.Named("account-command"),
		accounts: accounts,
		users:    users,
	}
}

// Register registers the account commands
func (c *AccountCommand) Register(r *Registry) {
	r.Register("register", commandFunc{"register <email> <password> <username> - create an account (DM only)", c.handleRegister})
	r.Register("login", commandFunc{"login <email> <password> - link this Discord account and get a session token (DM only)", c.handleLogin})
	r.Register("account", commandFunc{"account [delete] - show or delete your account", c.handleAccount})
}

func (c *AccountCommand) handleRegister(ctx *Context) error {
	if !ctx.IsDM() {
		return errDMOnly
	}
	if len(ctx.Args) < 3 {
		return usageError("register <email> <password> <username>")
	}

	user, err := c.accounts.Register(ctx.Ctx, ctx.Args[0], ctx.Args[1], strings.Join(ctx.Args[2:], " "))
	if err != nil {
		return err
	}
	if err := c.accounts.LinkDiscord(ctx.Ctx, user.UID, ctx.Author.ID); err != nil {
		return err
	}

	ctx.Reply("Welcome, %s! Your account is linked to this Discord account. Use `%slogin` to get a session token for the status watcher.",
		user.Username, ctx.Prefix)
	return nil
}

func (c *AccountCommand) handleLogin(ctx *Context) error {
	if !ctx.IsDM() {
		return errDMOnly
	}
	if len(ctx.Args) != 2 {
		return usageError("login <email> <password>")
	}

	user, token, expiresAt, err := c.accounts.Login(ctx.Ctx, ctx.Args[0], ctx.Args[1])
	if err != nil {
		return err
	}
	if err := c.accounts.LinkDiscord(ctx.Ctx, user.UID, ctx.Author.ID); err != nil {
		return err
	}

	c.log.Info("Discord account linked", zap.String("uid", user.UID), zap.String("discord_id", ctx.Author.ID))
	ctx.Reply("Signed in as %s. Status alerts for your favorites will arrive here.\nSession token (valid until %s), set it as SESSION_TOKEN for statuswatch:\n```%s```",
		user.Username, expiresAt.Format("2006-01-02"), token)
	return nil
}

func (c *AccountCommand) handleAccount(ctx *Context) error {
	user, err := ctx.User(c.users)
	if err != nil {
		return err
	}

	if len(ctx.Args) == 0 {
		ctx.Reply("%s · %d favorites", user.String(), len(user.Favorites))
		return nil
	}

	if strings.ToLower(ctx.Args[0]) != "delete" {
		return usageError("account [delete]")
	}

	if err := c.accounts.DeleteAccount(ctx.Ctx, user.UID); err != nil {
		return err
	}
	ctx.Reply("Your account was deleted.")
	return nil
}
