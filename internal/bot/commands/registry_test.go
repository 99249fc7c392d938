package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bradykim7/menza/internal/auth"
	"github.com/bradykim7/menza/internal/menu"
	"github.com/bradykim7/menza/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var author = Author{ID: "discord-1", Username: "ana"}

func TestDispatchIgnoresForeignMessages(t *testing.T) {
	r := newTestRegistry(t)
	sender := &fakeSender{}

	for _, content := range []string{"hello", "!", "!   ", "!unknown arg"} {
		assert.False(t, r.Dispatch(context.Background(), content, author, "guild", sender), content)
	}
	assert.Empty(t, sender.messages)
	assert.Empty(t, sender.embeds)
}

func TestDispatchIsCaseInsensitive(t *testing.T) {
	r := newTestRegistry(t)
	r.Register("ping", NewPingCommand())
	sender := &fakeSender{}

	require.True(t, r.Dispatch(context.Background(), "!PING", author, "guild", sender))
	assert.Equal(t, []string{"Pinging..."}, sender.messages)
	assert.Contains(t, sender.edits["msg-1"], "Pong! Latency:")
}

func TestPingFallsBackToNewMessage(t *testing.T) {
	r := newTestRegistry(t)
	r.Register("ping", NewPingCommand())
	sender := &fakeSender{editErr: errors.New("gone")}

	r.Dispatch(context.Background(), "!ping", author, "", sender)

	require.Len(t, sender.messages, 2)
	assert.Contains(t, sender.last(), "Pong!")
}

func TestHelpListsCommands(t *testing.T) {
	r := newTestRegistry(t)
	r.Register("ping", NewPingCommand())
	sender := &fakeSender{}

	r.Dispatch(context.Background(), "!help", author, "guild", sender)

	require.Len(t, sender.embeds, 1)
	assert.Contains(t, sender.embeds[0].Description, "!help - list commands")
	assert.Contains(t, sender.embeds[0].Description, "!ping - check that the bot is alive")
	assert.Len(t, r.GetCommands(), 2)
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"usage", usageError("fav list"), "Usage: fav list"},
		{"not linked", errNotLinked, "Your Discord account is not linked yet. Send me `login <email> <password>` in a direct message."},
		{"dm only", errDMOnly, "For your safety this command only works in a direct message."},
		{"forbidden", fmt.Errorf("delete: %w", menu.ErrForbidden), "You are not allowed to do that."},
		{"rating", menu.ErrInvalidRating, "Rating must be a number from 1 to 5."},
		{"not found", fmt.Errorf("food x: %w", storage.ErrNotFound), "Not found."},
		{"credentials", auth.ErrInvalidCredentials, auth.ErrInvalidCredentials.Error()},
		{"unknown", errors.New("connection reset"), "Something went wrong, please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeError(tt.err))
		})
	}
}
