package usecases

import (
	"context"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	Outcome domain.SkipOutcome
	Next    *domain.QueueItem // the item now playing, nil unless skipped
}

// PlaybackService drives the consume/play/advance loop of every guild.
type PlaybackService struct {
	registry        domain.PlaylistRegistry
	supplier        ports.MediaSupplier
	audioPlayer     ports.AudioPlayer
	voiceConnection ports.VoiceConnection
	publisher       ports.EventPublisher
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	registry domain.PlaylistRegistry,
	supplier ports.MediaSupplier,
	audioPlayer ports.AudioPlayer,
	voiceConnection ports.VoiceConnection,
	publisher ports.EventPublisher,
) *PlaybackService {
	return &PlaybackService{
		registry:        registry,
		supplier:        supplier,
		audioPlayer:     audioPlayer,
		voiceConnection: voiceConnection,
		publisher:       publisher,
	}
}

// Advance consumes queue items until one starts playing or the queue is exhausted.
func (p *PlaybackService) Advance(ctx context.Context, guildID snowflake.ID) domain.AdvanceOutcome {
	playlist, unlock := p.registry.Lock(guildID)
	defer unlock()

	return p.advance(ctx, playlist)
}

// Start advances the guild's queue unless something is already playing.
// Returns nil if the guild was already playing.
func (p *PlaybackService) Start(ctx context.Context, guildID snowflake.ID) *domain.AdvanceOutcome {
	playlist, unlock := p.registry.Lock(guildID)
	defer unlock()

	if playlist.IsPlaying() {
		return nil
	}

	outcome := p.advance(ctx, playlist)
	return &outcome
}

// Skip stops the current item and advances to the next one.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	playlist, unlock := p.registry.Lock(input.GuildID)
	defer unlock()

	if !playlist.IsConnected() {
		return nil, ErrNotConnected
	}

	if err := p.audioPlayer.Stop(ctx, input.GuildID); err != nil {
		slog.Warn("failed to stop playback", "guild", input.GuildID, "error", err)
	}

	if !playlist.IsPlaying() {
		return &SkipOutput{Outcome: domain.SkipNothingToPlay}, nil
	}

	outcome := p.advance(ctx, playlist)
	if !outcome.IsStarted() {
		return &SkipOutput{Outcome: domain.SkipQueueEnded}, nil
	}

	return &SkipOutput{Outcome: domain.SkipSkipped, Next: outcome.Item}, nil
}

// HandleTrackEnd advances the queue after the voice transport reports a track end.
// Returns nil when the event does not advance the queue.
func (p *PlaybackService) HandleTrackEnd(
	ctx context.Context,
	event domain.TrackEndedEvent,
) *domain.AdvanceOutcome {
	if !event.Reason.ShouldAdvanceQueue() {
		return nil
	}

	playlist, unlock := p.registry.Lock(event.GuildID)
	defer unlock()

	// A leave or an external disconnect happened after the track ended.
	if !playlist.IsPlaying() {
		return nil
	}

	// A skip already replaced the track this event belongs to.
	if !playlist.IsCurrentPlay(event.Sequence) {
		slog.Debug("ignoring stale track end", "guild", event.GuildID, "sequence", event.Sequence)
		return nil
	}

	if event.Reason == domain.TrackEndLoadFailed {
		if current := playlist.Current(); current != nil {
			p.publish(domain.PlaybackFailedEvent{
				GuildID:               playlist.GuildID(),
				NotificationChannelID: playlist.NotificationChannelID(),
				Item:                  *current,
				Err:                   domain.ErrMediaUnavailable,
			})
		}
	}

	outcome := p.advance(ctx, playlist)
	return &outcome
}

// advance runs with the guild's voice and queue locks held.
// Each round consumes one item, so the loop is bounded by the queue length at entry.
func (p *PlaybackService) advance(ctx context.Context, playlist *domain.Playlist) domain.AdvanceOutcome {
	guildID := playlist.GuildID()
	var failed []domain.QueueItem

	for n := playlist.Len(); n > 0; n-- {
		item, ok := playlist.Consume()
		if !ok {
			break
		}
		playlist.SetPlaying(true)

		if err := p.play(ctx, guildID, item, playlist.NextSequence()); err != nil {
			slog.Warn("failed to play item",
				"guild", guildID,
				"item", item.CacheKey().String(),
				"title", item.Title,
				"error", err,
			)
			failed = append(failed, item)
			p.publish(domain.PlaybackFailedEvent{
				GuildID:               guildID,
				NotificationChannelID: playlist.NotificationChannelID(),
				Item:                  item,
				Err:                   err,
			})
			continue
		}

		playlist.MarkStarted(item)
		p.publish(domain.PlaybackStartedEvent{
			GuildID:               guildID,
			NotificationChannelID: playlist.NotificationChannelID(),
			Item:                  item,
		})
		return domain.Started(item, failed)
	}

	playlist.SetPlaying(false)
	p.finish(ctx, playlist)
	return domain.QueueFinished(failed)
}

func (p *PlaybackService) play(
	ctx context.Context,
	guildID snowflake.ID,
	item domain.QueueItem,
	sequence uint64,
) error {
	media, err := p.supplier.Materialize(ctx, guildID, item)
	if err != nil {
		return err
	}
	return p.audioPlayer.Play(ctx, guildID, media, sequence)
}

// finish announces the end of the queue and releases the voice connection.
func (p *PlaybackService) finish(ctx context.Context, playlist *domain.Playlist) {
	guildID := playlist.GuildID()

	p.publish(domain.QueueFinishedEvent{
		GuildID:               guildID,
		NotificationChannelID: playlist.NotificationChannelID(),
	})

	if !playlist.IsConnected() {
		return
	}

	if err := p.voiceConnection.LeaveChannel(ctx, guildID); err != nil {
		slog.Error("failed to leave voice channel", "guild", guildID, "error", err)
	}
	playlist.SetVoiceChannelID(0)
}

func (p *PlaybackService) publish(event domain.Event) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(event); err != nil {
		slog.Warn("failed to publish event", "guild", event.Guild(), "error", err)
	}
}
