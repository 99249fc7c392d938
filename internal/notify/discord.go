package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bradykim7/menza/internal/models"
	"github.com/bradykim7/menza/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// DefaultSendInterval keeps direct messages under the Discord API limits
const DefaultSendInterval = 2 * time.Second

type sentMessage struct {
	channelID string
	messageID string
}

// DiscordDispatcher delivers notifications as Discord direct messages
type DiscordDispatcher struct {
	session     *discordgo.Session
	log         *logger.Logger
	rateLimiter *time.Ticker

	mu       sync.Mutex
	channels map[string]string
	messages map[string]sentMessage
}

// NewDiscordDispatcher creates a dispatcher using an existing session.
// A zero interval means DefaultSendInterval.
func NewDiscordDispatcher(session *discordgo.Session, interval time.Duration, log *logger.Logger) *DiscordDispatcher {
	if interval <= 0 {
		interval = DefaultSendInterval
	}

	return &DiscordDispatcher{
		session:     session,
		log:         log,
		rateLimiter: time.NewTicker(interval),
		channels:    make(map[string]string),
		messages:    make(map[string]sentMessage),
	}
}

// EnsureChannel opens the DM channel with recipient once and remembers it
func (d *DiscordDispatcher) EnsureChannel(ctx context.Context, recipient string, channel Channel) error {
	if recipient == "" {
		return ErrNoRecipient
	}

	d.mu.Lock()
	_, ok := d.channels[recipient]
	d.mu.Unlock()
	if ok {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	dm, err := d.session.UserChannelCreate(recipient)
	if err != nil {
		return fmt.Errorf("failed to create DM channel: %w", err)
	}

	d.mu.Lock()
	d.channels[recipient] = dm.ID
	d.mu.Unlock()

	d.log.Infow("Opened notification channel", "recipient", recipient, "channel", channel.ID, "dm_channel", dm.ID)
	return nil
}

// Dispatch sends n, editing the earlier message with the same key when there is one
func (d *DiscordDispatcher) Dispatch(ctx context.Context, n Notification) error {
	d.mu.Lock()
	dmChannel, ok := d.channels[n.Recipient]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("no channel ensured for recipient %s", n.Recipient)
	}

	// Wait for rate limiter to avoid rate limits
	select {
	case <-d.rateLimiter.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	embed := createStatusEmbed(n)
	slot := messageSlot(n.Recipient, n.Key)

	d.mu.Lock()
	previous, replace := d.messages[slot]
	d.mu.Unlock()

	if replace {
		_, err := d.session.ChannelMessageEditEmbed(previous.channelID, previous.messageID, embed)
		if err == nil {
			d.log.Debugw("Replaced notification", "recipient", n.Recipient, "key", n.Key)
			return nil
		}
		d.log.Warnw("Failed to edit previous notification, sending a new one", "error", err, "key", n.Key)
	}

	msg, err := d.session.ChannelMessageSendEmbed(dmChannel, embed)
	if err != nil {
		return fmt.Errorf("failed to send Discord message: %w", err)
	}

	d.mu.Lock()
	d.messages[slot] = sentMessage{channelID: dmChannel, messageID: msg.ID}
	d.mu.Unlock()

	d.log.Infow("Sent notification", "recipient", n.Recipient, "key", n.Key)
	return nil
}

// Close stops the rate limiter
func (d *DiscordDispatcher) Close() {
	d.rateLimiter.Stop()
}

func messageSlot(recipient string, key int32) string {
	return fmt.Sprintf("%s/%d", recipient, key)
}

func createStatusEmbed(n Notification) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       n.Title,
		Description: n.Body,
		Color:       statusColor(n.Status),
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: n.ChannelID,
		},
	}
	if n.ImageURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: n.ImageURL}
	}
	return embed
}

func statusColor(status models.FoodStatus) int {
	switch status {
	case models.FoodStatusServing:
		return 0x00ff00 // Green
	case models.FoodStatusPreparing:
		return 0xffa500 // Orange
	default:
		return 0x808080
	}
}
