package discord

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/usecases"
)

// EventHandlers handles Discord gateway events for the playlist.
type EventHandlers struct {
	botID        snowflake.ID
	voiceChannel *usecases.VoiceChannelService
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(
	botID snowflake.ID,
	voiceChannel *usecases.VoiceChannelService,
) *EventHandlers {
	return &EventHandlers{
		botID:        botID,
		voiceChannel: voiceChannel,
	}
}

// HandleVoiceStateUpdate handles VoiceStateUpdate events for the bot.
func (h *EventHandlers) HandleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	input, ok := h.botVoiceStateChange(event)
	if !ok {
		return
	}
	h.voiceChannel.HandleBotVoiceStateChange(input)
}

func (h *EventHandlers) botVoiceStateChange(
	event *discordgo.VoiceStateUpdate,
) (usecases.BotVoiceStateChangeInput, bool) {
	// Only handle updates for the bot itself
	if event.VoiceState == nil || event.UserID != h.botID.String() {
		return usecases.BotVoiceStateChangeInput{}, false
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return usecases.BotVoiceStateChangeInput{}, false
	}

	// An empty channel ID means disconnected
	var newChannelID snowflake.ID
	if event.ChannelID != "" {
		newChannelID, err = snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return usecases.BotVoiceStateChangeInput{}, false
		}
	}

	return usecases.BotVoiceStateChangeInput{
		GuildID:      guildID,
		NewChannelID: newChannelID,
	}, true
}
