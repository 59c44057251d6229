package application

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/usecases"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// PlaybackEventHandler advances guild queues when the voice transport reports a track end.
type PlaybackEventHandler struct {
	playback   *usecases.PlaybackService
	subscriber ports.EventSubscriber
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	playback *usecases.PlaybackService,
	subscriber ports.EventSubscriber,
) *PlaybackEventHandler {
	return &PlaybackEventHandler{
		playback:   playback,
		subscriber: subscriber,
	}
}

// Start registers event handlers with the subscriber.
func (h *PlaybackEventHandler) Start() error {
	err := h.subscriber.Subscribe(
		reflect.TypeFor[domain.TrackEndedEvent](),
		func(ctx context.Context, e domain.Event) {
			h.handleTrackEnded(ctx, e.(domain.TrackEndedEvent))
		},
	)
	if err != nil {
		return err
	}

	slog.Debug("playback event handlers properly registered")

	return nil
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	outcome := h.playback.HandleTrackEnd(ctx, event)
	if outcome == nil {
		slog.Debug("track ended without advancing", "event", event)
		return
	}

	if outcome.IsStarted() {
		slog.Debug(
			"track ended, next item started",
			"guild", event.GuildID,
			"item", outcome.Item.CacheKey().String(),
			"failed", len(outcome.Failed),
		)
		return
	}

	slog.Info("queue finished", "guild", event.GuildID, "failed", len(outcome.Failed))
}

// NotificationEventHandler posts playback notices to the guild's notification channel.
type NotificationEventHandler struct {
	subscriber ports.EventSubscriber
	notifier   ports.NotificationSender
}

// NewNotificationEventHandler creates a new NotificationEventHandler.
func NewNotificationEventHandler(
	subscriber ports.EventSubscriber,
	notifier ports.NotificationSender,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		subscriber: subscriber,
		notifier:   notifier,
	}
}

// Start registers event handlers with the subscriber.
func (h *NotificationEventHandler) Start() error {
	err := h.subscriber.Subscribe(
		reflect.TypeFor[domain.PlaybackStartedEvent](),
		func(_ context.Context, e domain.Event) {
			h.handlePlaybackStarted(e.(domain.PlaybackStartedEvent))
		},
	)
	if err != nil {
		return err
	}

	err = h.subscriber.Subscribe(
		reflect.TypeFor[domain.PlaybackFailedEvent](),
		func(_ context.Context, e domain.Event) {
			h.handlePlaybackFailed(e.(domain.PlaybackFailedEvent))
		},
	)
	if err != nil {
		return err
	}

	err = h.subscriber.Subscribe(
		reflect.TypeFor[domain.QueueFinishedEvent](),
		func(_ context.Context, e domain.Event) {
			h.handleQueueFinished(e.(domain.QueueFinishedEvent))
		},
	)
	if err != nil {
		return err
	}

	slog.Debug("notification event handlers properly registered")

	return nil
}

func (h *NotificationEventHandler) handlePlaybackStarted(event domain.PlaybackStartedEvent) {
	if event.NotificationChannelID == 0 {
		return
	}

	if err := h.notifier.SendNowPlaying(
		event.NotificationChannelID,
		ports.NewNowPlayingInfo(event.Item),
	); err != nil {
		slog.Error("failed to send now playing notification", "guild", event.GuildID, "error", err)
	}
}

func (h *NotificationEventHandler) handlePlaybackFailed(event domain.PlaybackFailedEvent) {
	if event.NotificationChannelID == 0 {
		return
	}

	if err := h.notifier.SendPlaybackFailed(
		event.NotificationChannelID,
		ports.NewNowPlayingInfo(event.Item),
	); err != nil {
		slog.Error("failed to send playback failed notification", "guild", event.GuildID, "error", err)
	}
}

func (h *NotificationEventHandler) handleQueueFinished(event domain.QueueFinishedEvent) {
	if event.NotificationChannelID == 0 {
		return
	}

	if err := h.notifier.SendQueueFinished(event.NotificationChannelID); err != nil {
		slog.Error("failed to send queue finished notification", "guild", event.GuildID, "error", err)
	}
}
