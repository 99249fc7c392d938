package commands

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/bradykim7/menza/internal/auth"
	"github.com/bradykim7/menza/internal/menu"
	"github.com/bradykim7/menza/internal/storage"
	"github.com/bradykim7/menza/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const commandTimeout = 15 * time.Second

// Command represents a bot command
type Command interface {
	Execute(c *Context) error
	Help() string
}

// Registry manages all bot commands
type Registry struct {
	prefix   string
	commands map[string]Command
	log      *logger.Logger
}

// NewRegistry creates a new command registry
func NewRegistry(prefix string, log *logger.Logger) *Registry {
	r := &Registry{
		prefix:   prefix,
		commands: make(map[string]Command),
		log:      log,
	}
	r.Register("help", helpCommand{registry: r})
	return r
}

// Register registers a command with the registry
func (r *Registry) Register(name string, cmd Command) {
	r.commands[strings.ToLower(name)] = cmd
	r.log.Infof("Registered command: %s", name)
}

// Handle processes a message and executes the appropriate command
func (r *Registry) Handle(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	r.Dispatch(ctx, m.Content, Author{ID: m.Author.ID, Username: m.Author.Username}, m.GuildID,
		&sessionSender{session: s, channelID: m.ChannelID})
}

// Dispatch parses content and runs the matching command, replying through sender
func (r *Registry) Dispatch(ctx context.Context, content string, author Author, guildID string, sender Sender) bool {
	// Check if the message starts with the command prefix
	if !strings.HasPrefix(content, r.prefix) {
		return false
	}

	// Split the message into command and arguments
	parts := strings.Fields(strings.TrimPrefix(content, r.prefix))
	if len(parts) == 0 {
		return false
	}

	cmdName := strings.ToLower(parts[0])
	cmd, ok := r.commands[cmdName]
	if !ok {
		return false
	}

	c := &Context{
		Ctx:     ctx,
		Author:  author,
		GuildID: guildID,
		Prefix:  r.prefix,
		Args:    parts[1:],
		sender:  sender,
	}

	r.log.Infow("Executing command", "command", cmdName, "user_id", author.ID)
	if err := cmd.Execute(c); err != nil {
		r.log.Warnw("Command failed", "command", cmdName, "user_id", author.ID, "error", err)
		c.Reply(describeError(err))
	}
	return true
}

// GetCommands returns all registered commands
func (r *Registry) GetCommands() map[string]Command {
	return r.commands
}

// describeError turns a command error into a message for the user
func describeError(err error) string {
	var usage usageError
	switch {
	case errors.As(err, &usage):
		return "Usage: " + string(usage)
	case errors.Is(err, errNotLinked):
		return "Your Discord account is not linked yet. Send me `login <email> <password>` in a direct message."
	case errors.Is(err, errDMOnly):
		return "For your safety this command only works in a direct message."
	case errors.Is(err, menu.ErrForbidden):
		return "You are not allowed to do that."
	case errors.Is(err, menu.ErrInvalidRating):
		return "Rating must be a number from 1 to 5."
	case errors.Is(err, menu.ErrInvalidFood):
		return err.Error()
	case errors.Is(err, storage.ErrNotFound):
		return "Not found."
	case errors.Is(err, auth.ErrUsernameTaken),
		errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidUsername):
		return err.Error()
	default:
		return "Something went wrong, please try again later."
	}
}

type helpCommand struct {
	registry *Registry
}

func (h helpCommand) Help() string {
	return "help - list commands"
}

func (h helpCommand) Execute(c *Context) error {
	names := make([]string, 0, len(h.registry.commands))
	for name := range h.registry.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(c.Prefix)
		sb.WriteString(h.registry.commands[name].Help())
		sb.WriteString("\n")
	}

	return c.SendEmbed(&discordgo.MessageEmbed{
		Title:       "Commands",
		Description: sb.String(),
		Color:       0x3498db,
	})
}
