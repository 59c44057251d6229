package usecases

import (
	"context"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	Query                 string
}

// PlayOutput contains the result of the Play use case.
type PlayOutput struct {
	Query     domain.Query
	Added     []domain.QueueItem
	Requester *ports.UserInfo        // nil if the requester could not be looked up
	Outcome   *domain.AdvanceOutcome // nil if the guild was already playing
}

// IsPlaylist returns true if the request expanded to more than one item.
func (o *PlayOutput) IsPlaylist() bool {
	return len(o.Added) > 1
}

// PlayService handles play requests.
type PlayService struct {
	registry domain.PlaylistRegistry
	voice    *VoiceChannelService
	resolver *ResolverService
	playback *PlaybackService
	userInfo ports.UserInfoProvider
}

// NewPlayService creates a new PlayService.
func NewPlayService(
	registry domain.PlaylistRegistry,
	voice *VoiceChannelService,
	resolver *ResolverService,
	playback *PlaybackService,
	userInfo ports.UserInfoProvider,
) *PlayService {
	return &PlayService{
		registry: registry,
		voice:    voice,
		resolver: resolver,
		playback: playback,
		userInfo: userInfo,
	}
}

// Play joins the user's channel if needed, resolves the query, enqueues the result
// and starts playback when the guild is idle.
func (s *PlayService) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	if _, err := s.voice.EnsureJoined(ctx, JoinInput{
		GuildID:               input.GuildID,
		UserID:                input.UserID,
		NotificationChannelID: input.NotificationChannelID,
	}); err != nil {
		return nil, err
	}

	query := domain.ParseQuery(input.Query)

	// Resolution runs before any guild lock is taken.
	items, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	_, added, err := s.registry.Enqueue(input.GuildID, items, domain.EnqueueModeFor(query))
	if err != nil {
		return nil, err
	}

	if input.NotificationChannelID != 0 {
		s.registry.WithQueue(input.GuildID, func(p *domain.Playlist) {
			p.SetNotificationChannelID(input.NotificationChannelID)
		})
	}

	output := &PlayOutput{
		Query:     query,
		Added:     added,
		Requester: s.requester(input.GuildID, input.UserID),
	}
	output.Outcome = s.playback.Start(ctx, input.GuildID)

	return output, nil
}

func (s *PlayService) requester(guildID, userID snowflake.ID) *ports.UserInfo {
	if s.userInfo == nil {
		return nil
	}
	info, err := s.userInfo.GetUserInfo(guildID, userID)
	if err != nil {
		slog.Debug("failed to get requester info", "guild", guildID, "user", userID, "error", err)
		return nil
	}
	return info
}
