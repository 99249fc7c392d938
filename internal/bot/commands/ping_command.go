package commands

import (
	"time"
)

// PingCommand is a simple command that answers with "pong"
type PingCommand struct{}

// NewPingCommand creates a new ping command
func NewPingCommand() *PingCommand {
	return &PingCommand{}
}

// Help returns the usage of the command
func (c *PingCommand) Help() string {
	return "ping - check that the bot is alive"
}

// Execute measures the round trip of one message
func (c *PingCommand) Execute(ctx *Context) error {
	start := time.Now()
	msgID, err := ctx.sender.Send("Pinging...")
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	// Edit the message with the latency
	reply := "Pong! Latency: " + elapsed.Round(time.Millisecond).String()
	if err := ctx.sender.Edit(msgID, reply); err != nil {
		ctx.Reply("%s", reply)
	}
	return nil
}
