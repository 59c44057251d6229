package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// Event is a guild-scoped event delivered through the event bus.
type Event interface {
	// Guild returns the guild the event belongs to. Events of one guild are delivered in order.
	Guild() snowflake.ID
}

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track finished normally.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the track failed to load.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the track was stopped by the user.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means the track was replaced by another.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the track was cleaned up.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue returns true if this end reason should advance the queue.
// Stopped and replaced tracks were ended by an advance that is already in progress.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed
}

// TrackEndedEvent is published by the voice transport when a track ends.
type TrackEndedEvent struct {
	GuildID  snowflake.ID
	Reason   TrackEndReason
	Sequence uint64 // play attempt the track was started with, 0 if unknown
}

// PlaybackStartedEvent is published when an item starts playing.
type PlaybackStartedEvent struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID
	Item                  QueueItem
}

// PlaybackFailedEvent is published once per item that could not be played.
type PlaybackFailedEvent struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID
	Item                  QueueItem
	Err                   error
}

// QueueFinishedEvent is published when a guild's queue is exhausted.
type QueueFinishedEvent struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID
}

func (e TrackEndedEvent) Guild() snowflake.ID      { return e.GuildID }
func (e PlaybackStartedEvent) Guild() snowflake.ID { return e.GuildID }
func (e PlaybackFailedEvent) Guild() snowflake.ID  { return e.GuildID }
func (e QueueFinishedEvent) Guild() snowflake.ID   { return e.GuildID }
