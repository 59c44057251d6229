package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceConnection defines the interface for voice channel connection operations.
type VoiceConnection interface {
	// JoinChannel connects the bot to the voice channel and returns once the
	// transport is ready to play.
	JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error

	// LeaveChannel disconnects the bot and releases the guild's player.
	LeaveChannel(ctx context.Context, guildID snowflake.ID) error
}
