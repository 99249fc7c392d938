package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/bradykim7/menza/internal/models"
	"github.com/bradykim7/menza/internal/storage"
	"github.com/bwmarrin/discordgo"
)

var (
	errNotLinked = errors.New("discord account not linked")
	errDMOnly    = errors.New("command is only available in direct messages")
)

// usageError carries the usage line of a command invoked with bad arguments
type usageError string

func (e usageError) Error() string {
	return "usage: " + string(e)
}

// Author is the Discord user who sent a command
type Author struct {
	ID       string
	Username string
}

// Sender writes replies to the channel a command came from
type Sender interface {
	Send(content string) (messageID string, err error)
	SendEmbed(embed *discordgo.MessageEmbed) error
	Edit(messageID, content string) error
}

// UserResolver finds the user linked to a Discord account
type UserResolver interface {
	GetByDiscordID(ctx context.Context, discordID string) (*models.User, error)
}

// Context is a single command invocation
type Context struct {
	Ctx     context.Context
	Author  Author
	GuildID string
	Prefix  string
	Args    []string

	sender Sender
}

// NewContext creates an invocation, mainly for tests and non-Discord frontends
func NewContext(ctx context.Context, author Author, guildID string, args []string, sender Sender) *Context {
	return &Context{Ctx: ctx, Author: author, GuildID: guildID, Prefix: "!", Args: args, sender: sender}
}

// IsDM reports whether the command was sent in a direct message
func (c *Context) IsDM() bool {
	return c.GuildID == ""
}

// Reply sends a plain text reply, logging nothing on failure
func (c *Context) Reply(format string, a ...interface{}) {
	_, _ = c.sender.Send(fmt.Sprintf(format, a...))
}

// SendEmbed sends an embed reply
func (c *Context) SendEmbed(embed *discordgo.MessageEmbed) error {
	return c.sender.SendEmbed(embed)
}

// User resolves the menza user behind the command author
func (c *Context) User(users UserResolver) (*models.User, error) {
	user, err := users.GetByDiscordID(c.Ctx, c.Author.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, errNotLinked
	}
	return user, err
}

type sessionSender struct {
	session   *discordgo.Session
	channelID string
}

func (s *sessionSender) Send(content string) (string, error) {
	msg, err := s.session.ChannelMessageSend(s.channelID, content)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (s *sessionSender) SendEmbed(embed *discordgo.MessageEmbed) error {
	_, err := s.session.ChannelMessageSendEmbed(s.channelID, embed)
	return err
}

func (s *sessionSender) Edit(messageID, content string) error {
	_, err := s.session.ChannelMessageEdit(s.channelID, messageID, content)
	return err
}
