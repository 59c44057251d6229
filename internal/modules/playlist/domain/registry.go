package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// PlaylistRegistry owns the playlist of every guild for the lifetime of the process.
// Playlists are created lazily on first reference.
//
// Enqueue, Consume, SetPlaying, IsPlaying, Snapshot and WithQueue hold only the
// guild's queue lock. Lock holds the guild's voice lock and then its queue lock;
// callers must work on the returned playlist directly until they release it.
type PlaylistRegistry interface {
	// Enqueue appends items to the guild's queue. Fails with ErrNoItemsResolved on empty input.
	Enqueue(guildID snowflake.ID, items []QueueItem, mode EnqueueMode) (int, []QueueItem, error)

	// Consume pops the head item of the guild's queue.
	Consume(guildID snowflake.ID) (QueueItem, bool)

	// Clear empties the guild's queue and reports whether a queue existed.
	Clear(guildID snowflake.ID) bool

	// SetPlaying sets the guild's playing flag.
	SetPlaying(guildID snowflake.ID, playing bool)

	// IsPlaying returns the guild's playing flag, false for unknown guilds.
	IsPlaying(guildID snowflake.ID) bool

	// Snapshot returns a copy of the guild's playlist.
	Snapshot(guildID snowflake.ID) PlaylistSnapshot

	// WithQueue runs fn while holding the guild's queue lock.
	WithQueue(guildID snowflake.ID, fn func(*Playlist))

	// LockVoice acquires the guild's voice lock.
	LockVoice(guildID snowflake.ID) (unlock func())

	// Lock acquires the guild's voice lock and queue lock, in that order.
	Lock(guildID snowflake.ID) (*Playlist, func())
}
