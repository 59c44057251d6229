package usecases

import (
	"context"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID snowflake.ID
}

// LeaveInput contains the input for the Leave use case.
type LeaveInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// BotVoiceStateChangeInput contains the input for handling bot voice state changes.
type BotVoiceStateChangeInput struct {
	GuildID      snowflake.ID
	NewChannelID snowflake.ID // 0 means disconnected
}

// VoiceChannelService handles voice channel operations.
type VoiceChannelService struct {
	registry        domain.PlaylistRegistry
	voiceConnection ports.VoiceConnection
	voiceState      ports.VoiceStateProvider
}

// NewVoiceChannelService creates a new VoiceChannelService.
func NewVoiceChannelService(
	registry domain.PlaylistRegistry,
	voiceConnection ports.VoiceConnection,
	voiceState ports.VoiceStateProvider,
) *VoiceChannelService {
	return &VoiceChannelService{
		registry:        registry,
		voiceConnection: voiceConnection,
		voiceState:      voiceState,
	}
}

// Join joins the bot to the user's voice channel.
func (v *VoiceChannelService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	channelID, err := v.userChannel(input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}

	joined, err := v.connect(ctx, input.GuildID, channelID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}
	if !joined {
		return nil, ErrAlreadyConnected
	}

	return &JoinOutput{VoiceChannelID: channelID}, nil
}

// EnsureJoined connects the bot to the user's voice channel unless it is already there.
// Fails with ErrWrongChannel when the bot is connected elsewhere in the guild.
func (v *VoiceChannelService) EnsureJoined(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	channelID, err := v.userChannel(input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}

	joined, err := v.connect(ctx, input.GuildID, channelID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}
	if !joined {
		current := v.registry.Snapshot(input.GuildID).VoiceChannelID
		if current != channelID {
			return nil, ErrWrongChannel
		}
	}

	return &JoinOutput{VoiceChannelID: channelID}, nil
}

// connect joins channelID under the guild's voice lock.
// Returns false without side effects if the bot is already connected.
func (v *VoiceChannelService) connect(
	ctx context.Context,
	guildID, channelID, notificationChannelID snowflake.ID,
) (bool, error) {
	unlock := v.registry.LockVoice(guildID)
	defer unlock()

	if v.registry.Snapshot(guildID).VoiceChannelID != 0 {
		return false, nil
	}

	if err := v.voiceConnection.JoinChannel(ctx, guildID, channelID); err != nil {
		return false, err
	}

	v.registry.WithQueue(guildID, func(p *domain.Playlist) {
		p.SetVoiceChannelID(channelID)
		p.SetNotificationChannelID(notificationChannelID)
	})

	slog.Info("joined voice channel", "guild", guildID, "channel", channelID)
	return true, nil
}

// Leave clears the guild's playlist and leaves the voice channel.
func (v *VoiceChannelService) Leave(ctx context.Context, input LeaveInput) error {
	if err := v.RequireSameChannel(input.GuildID, input.UserID); err != nil {
		return err
	}

	playlist, unlock := v.registry.Lock(input.GuildID)
	defer unlock()

	if !playlist.IsConnected() {
		return ErrNotConnected
	}

	playlist.Reset()
	playlist.SetVoiceChannelID(0)

	if err := v.voiceConnection.LeaveChannel(ctx, input.GuildID); err != nil {
		return err
	}

	slog.Info("left voice channel", "guild", input.GuildID)
	return nil
}

// HandleBotVoiceStateChange handles external voice state changes (bot moved or disconnected).
func (v *VoiceChannelService) HandleBotVoiceStateChange(input BotVoiceStateChangeInput) {
	if input.NewChannelID == 0 {
		playlist, unlock := v.registry.Lock(input.GuildID)
		defer unlock()

		if !playlist.IsConnected() {
			return
		}

		// Disconnected by someone else
		playlist.Reset()
		playlist.SetVoiceChannelID(0)
		slog.Info("disconnected from voice channel", "guild", input.GuildID)
		return
	}

	v.registry.WithQueue(input.GuildID, func(p *domain.Playlist) {
		if p.IsConnected() && p.VoiceChannelID() != input.NewChannelID {
			p.SetVoiceChannelID(input.NewChannelID)
		}
	})
}

// RequireSameChannel checks that the bot is connected and the user shares its voice channel.
func (v *VoiceChannelService) RequireSameChannel(guildID, userID snowflake.ID) error {
	botChannel := v.registry.Snapshot(guildID).VoiceChannelID
	if botChannel == 0 {
		return ErrNotConnected
	}

	userChannel, err := v.voiceState.GetUserVoiceChannel(guildID, userID)
	if err != nil {
		return err
	}
	if userChannel != botChannel {
		return ErrWrongChannel
	}
	return nil
}

func (v *VoiceChannelService) userChannel(guildID, userID snowflake.ID) (snowflake.ID, error) {
	channelID, err := v.voiceState.GetUserVoiceChannel(guildID, userID)
	if err != nil {
		return 0, err
	}
	if channelID == 0 {
		return 0, ErrUserNotInVoice
	}
	return channelID, nil
}
