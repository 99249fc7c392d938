// Package bot runs the menza Discord bot: the chat frontend for browsing
// menus, rating food and managing favorites.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bradykim7/menza/internal/auth"
	"github.com/bradykim7/menza/internal/bot/commands"
	"github.com/bradykim7/menza/internal/menu"
	"github.com/bradykim7/menza/internal/storage"
	"github.com/bradykim7/menza/pkg/config"
	"github.com/bradykim7/menza/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Bot represents the Discord bot
type Bot struct {
	session  *discordgo.Session
	config   *config.Config
	log      *zap.Logger
	commands *commands.Registry
	db       *storage.MongoDB
}

// New creates a new Bot instance
func New(cfg *config.Config, log *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	db, err := storage.NewMongoDB(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db.EnsureIndexes(ctx)

	bot := &Bot{
		session:  session,
		config:   cfg,
		log:      log.Named("bot"),
		commands: commands.NewRegistry(cfg.CommandPrefix, logger.New("commands")),
		db:       db,
	}

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onMessageCreate)

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	bot.registerCommands()

	return bot, nil
}

// Start opens the Discord connection and blocks until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	b.log.Info("Bot is now running. Press CTRL-C to exit.")

	<-ctx.Done()

	return b.Close()
}

// Close releases the Discord session and the database connection
func (b *Bot) Close() error {
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("failed to close Discord session: %w", err)
	}

	if err := b.db.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("Logged in",
		zap.String("username", r.User.Username),
		zap.String("discriminator", r.User.Discriminator))

	if err := s.UpdateGameStatus(0, b.config.CommandPrefix+"help"); err != nil {
		b.log.Error("Failed to set status", zap.Error(err))
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore messages from the bot itself
	if m.Author.ID == s.State.User.ID {
		return
	}

	b.log.Debug("Message received",
		zap.String("guild_id", m.GuildID),
		zap.String("channel_id", m.ChannelID),
		zap.String("user_id", m.Author.ID))

	b.commands.Handle(s, m)
}

// registerCommands wires every command to the menu and auth services
func (b *Bot) registerCommands() {
	users := storage.NewUserRepository(b.db, b.log)
	menuService := menu.NewService(
		storage.NewRestaurantRepository(b.db, b.log),
		storage.NewFoodRepository(b.db, b.log),
		storage.NewReviewRepository(b.db, b.log),
		users,
		b.log,
	)
	tokens := auth.NewTokenService(b.config.JWTSecret, time.Duration(b.config.SessionTTLHours)*time.Hour)
	authService := auth.NewService(users, tokens, b.log)

	b.commands.Register("ping", commands.NewPingCommand())
	commands.NewRestaurantCommand(b.log, menuService, users).Register(b.commands)
	commands.NewFoodCommand(b.log, menuService, users, b.config.Language).Register(b.commands)
	commands.NewReviewCommand(b.log, menuService, users).Register(b.commands)
	b.commands.Register("fav", commands.NewFavoriteCommand(b.log, menuService, users, b.config.Language))
	commands.NewAccountCommand(b.log, authService, users).Register(b.commands)
}
