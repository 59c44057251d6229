package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// EnqueueMode selects how many resolved items are appended.
type EnqueueMode int

const (
	// EnqueueAll appends every resolved item (links and playlist expansions).
	EnqueueAll EnqueueMode = iota
	// EnqueueFirst appends only the first resolved item (search results).
	EnqueueFirst
)

// EnqueueModeFor returns the enqueue mode matching the query variant.
func EnqueueModeFor(q Query) EnqueueMode {
	if _, ok := q.(SearchQuery); ok {
		return EnqueueFirst
	}
	return EnqueueAll
}

// Playlist is the playback state of one guild.
// It is not safe for concurrent use; PlaylistRegistry serializes access.
type Playlist struct {
	guildID               snowflake.ID
	voiceChannelID        snowflake.ID // 0 when not connected
	notificationChannelID snowflake.ID // text channel for notices
	queue                 Queue
	current               *QueueItem
	playing               bool
	sequence              uint64 // play attempts so far, tags transport events
}

// NewPlaylist creates an empty, idle Playlist for the given guild.
func NewPlaylist(guildID snowflake.ID) *Playlist {
	return &Playlist{
		guildID: guildID,
		queue:   NewQueue(),
	}
}

// GuildID returns the guild ID.
func (p *Playlist) GuildID() snowflake.ID {
	return p.guildID
}

// Enqueue appends resolved items according to mode.
// Returns the number of items added and the appended slice.
func (p *Playlist) Enqueue(items []QueueItem, mode EnqueueMode) (int, []QueueItem, error) {
	if len(items) == 0 {
		return 0, nil, ErrNoItemsResolved
	}

	if mode == EnqueueFirst {
		items = items[:1]
	}

	appended := p.queue.Append(items...)
	return len(appended), appended, nil
}

// Consume removes and returns the head item without blocking.
func (p *Playlist) Consume() (QueueItem, bool) {
	return p.queue.Pop()
}

// Clear empties the queue and returns how many items were dropped.
// The current item and the playing flag are left untouched.
func (p *Playlist) Clear() int {
	return p.queue.Clear()
}

// Len returns the number of items waiting in the queue.
func (p *Playlist) Len() int {
	return p.queue.Len()
}

// Upcoming returns a copy of the waiting items in play order.
func (p *Playlist) Upcoming() []QueueItem {
	return p.queue.List()
}

// IsPlaying returns true while a media handle is active or about to be.
func (p *Playlist) IsPlaying() bool {
	return p.playing
}

// SetPlaying sets the playing flag. Clearing it also forgets the current item.
func (p *Playlist) SetPlaying(playing bool) {
	p.playing = playing
	if !playing {
		p.current = nil
	}
}

// Current returns a copy of the item being played, or nil.
func (p *Playlist) Current() *QueueItem {
	if p.current == nil {
		return nil
	}
	item := *p.current
	return &item
}

// MarkStarted records item as the one being played.
func (p *Playlist) MarkStarted(item QueueItem) {
	p.playing = true
	p.current = &item
}

// NextSequence starts a new play attempt and returns its sequence number.
// Sequence numbers start at 1 and are never reused for a guild.
func (p *Playlist) NextSequence() uint64 {
	p.sequence++
	return p.sequence
}

// IsCurrentPlay reports whether an event tagged with sequence belongs to the latest play attempt.
// Zero means the transport did not tag the event.
func (p *Playlist) IsCurrentPlay(sequence uint64) bool {
	return sequence == 0 || sequence == p.sequence
}

// Reset drops the queue and marks the playlist idle.
func (p *Playlist) Reset() {
	p.queue.Clear()
	p.SetPlaying(false)
}

// IsConnected returns true if the bot is in a voice channel for this guild.
func (p *Playlist) IsConnected() bool {
	return p.voiceChannelID != 0
}

// VoiceChannelID returns the voice channel the bot is connected to.
func (p *Playlist) VoiceChannelID() snowflake.ID {
	return p.voiceChannelID
}

// SetVoiceChannelID updates the voice channel ID.
func (p *Playlist) SetVoiceChannelID(channelID snowflake.ID) {
	p.voiceChannelID = channelID
}

// NotificationChannelID returns the text channel notices are posted to.
func (p *Playlist) NotificationChannelID() snowflake.ID {
	return p.notificationChannelID
}

// SetNotificationChannelID updates the notification channel ID.
func (p *Playlist) SetNotificationChannelID(channelID snowflake.ID) {
	p.notificationChannelID = channelID
}

// PlaylistSnapshot is a read-only copy of a guild's playlist.
type PlaylistSnapshot struct {
	GuildID               snowflake.ID
	VoiceChannelID        snowflake.ID
	NotificationChannelID snowflake.ID
	Current               *QueueItem
	Upcoming              []QueueItem
	Playing               bool
}

// Snapshot copies the playlist state.
func (p *Playlist) Snapshot() PlaylistSnapshot {
	return PlaylistSnapshot{
		GuildID:               p.guildID,
		VoiceChannelID:        p.voiceChannelID,
		NotificationChannelID: p.notificationChannelID,
		Current:               p.Current(),
		Upcoming:              p.Upcoming(),
		Playing:               p.playing,
	}
}
