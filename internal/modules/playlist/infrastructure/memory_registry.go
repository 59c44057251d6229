package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// guildSlot holds one guild's playlist and the two locks guarding it.
// Lock order is always voice, then queue.
type guildSlot struct {
	voice    sync.Mutex
	queue    sync.Mutex
	playlist *domain.Playlist
}

// MemoryRegistry is an in-memory implementation of PlaylistRegistry.
// Locks are sharded per guild; the registry mutex only guards slot creation.
type MemoryRegistry struct {
	mu    sync.Mutex
	slots map[snowflake.ID]*guildSlot
}

// NewMemoryRegistry creates a new MemoryRegistry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		slots: make(map[snowflake.ID]*guildSlot),
	}
}

// slot returns the guild's slot, creating it on first reference.
func (r *MemoryRegistry) slot(guildID snowflake.ID) *guildSlot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[guildID]
	if !ok {
		s = &guildSlot{playlist: domain.NewPlaylist(guildID)}
		r.slots[guildID] = s
	}
	return s
}

// lookup returns the guild's slot without creating it.
func (r *MemoryRegistry) lookup(guildID snowflake.ID) (*guildSlot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[guildID]
	return s, ok
}

// Enqueue appends items to the guild's queue.
func (r *MemoryRegistry) Enqueue(
	guildID snowflake.ID,
	items []domain.QueueItem,
	mode domain.EnqueueMode,
) (int, []domain.QueueItem, error) {
	s := r.slot(guildID)
	s.queue.Lock()
	defer s.queue.Unlock()

	return s.playlist.Enqueue(items, mode)
}

// Consume pops the head of the guild's queue. Unknown guilds have nothing to consume.
func (r *MemoryRegistry) Consume(guildID snowflake.ID) (domain.QueueItem, bool) {
	s, ok := r.lookup(guildID)
	if !ok {
		return domain.QueueItem{}, false
	}
	s.queue.Lock()
	defer s.queue.Unlock()

	return s.playlist.Consume()
}

// Clear empties the guild's queue and reports whether a queue existed.
func (r *MemoryRegistry) Clear(guildID snowflake.ID) bool {
	s, ok := r.lookup(guildID)
	if !ok {
		return false
	}
	s.queue.Lock()
	defer s.queue.Unlock()

	s.playlist.Clear()
	return true
}

// SetPlaying sets the guild's playing flag.
func (r *MemoryRegistry) SetPlaying(guildID snowflake.ID, playing bool) {
	s := r.slot(guildID)
	s.queue.Lock()
	defer s.queue.Unlock()

	s.playlist.SetPlaying(playing)
}

// IsPlaying returns the guild's playing flag.
func (r *MemoryRegistry) IsPlaying(guildID snowflake.ID) bool {
	s, ok := r.lookup(guildID)
	if !ok {
		return false
	}
	s.queue.Lock()
	defer s.queue.Unlock()

	return s.playlist.IsPlaying()
}

// Snapshot returns a copy of the guild's playlist.
func (r *MemoryRegistry) Snapshot(guildID snowflake.ID) domain.PlaylistSnapshot {
	s, ok := r.lookup(guildID)
	if !ok {
		return domain.PlaylistSnapshot{GuildID: guildID}
	}
	s.queue.Lock()
	defer s.queue.Unlock()

	return s.playlist.Snapshot()
}

// WithQueue runs fn while holding the guild's queue lock.
func (r *MemoryRegistry) WithQueue(guildID snowflake.ID, fn func(*domain.Playlist)) {
	s := r.slot(guildID)
	s.queue.Lock()
	defer s.queue.Unlock()

	fn(s.playlist)
}

// LockVoice acquires the guild's voice lock.
func (r *MemoryRegistry) LockVoice(guildID snowflake.ID) func() {
	s := r.slot(guildID)
	s.voice.Lock()

	var once sync.Once
	return func() {
		once.Do(s.voice.Unlock)
	}
}

// Lock acquires the guild's voice lock and then its queue lock.
func (r *MemoryRegistry) Lock(guildID snowflake.ID) (*domain.Playlist, func()) {
	s := r.slot(guildID)
	s.voice.Lock()
	s.queue.Lock()

	var once sync.Once
	return s.playlist, func() {
		once.Do(func() {
			s.queue.Unlock()
			s.voice.Unlock()
		})
	}
}

// Count returns the number of guilds seen (for testing/monitoring).
func (r *MemoryRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.slots)
}

// Ensure MemoryRegistry implements PlaylistRegistry.
var _ domain.PlaylistRegistry = (*MemoryRegistry)(nil)
