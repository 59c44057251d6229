package usecases

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

var errMock = errors.New("mock error")

func mockItem(id string) domain.QueueItem {
	return domain.QueueItem{
		ID:        id,
		Title:     "Item " + id,
		SourceURL: "https://www.youtube.com/watch?v=" + id,
		Extractor: "youtube",
		Backend:   domain.BackendYTDLP,
	}
}

func mockItems(ids ...string) []domain.QueueItem {
	items := make([]domain.QueueItem, len(ids))
	for i, id := range ids {
		items[i] = mockItem(id)
	}
	return items
}

// mockRegistry is a single-goroutine PlaylistRegistry.
type mockRegistry struct {
	playlists map[snowflake.ID]*domain.Playlist
	lockCalls int
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{
		playlists: make(map[snowflake.ID]*domain.Playlist),
	}
}

func (m *mockRegistry) get(guildID snowflake.ID) *domain.Playlist {
	p, ok := m.playlists[guildID]
	if !ok {
		p = domain.NewPlaylist(guildID)
		m.playlists[guildID] = p
	}
	return p
}

// connect creates a connected playlist holding items.
func (m *mockRegistry) connect(
	guildID, voiceChannelID, notificationChannelID snowflake.ID,
	items ...domain.QueueItem,
) *domain.Playlist {
	p := m.get(guildID)
	p.SetVoiceChannelID(voiceChannelID)
	p.SetNotificationChannelID(notificationChannelID)
	if len(items) > 0 {
		_, _, _ = p.Enqueue(items, domain.EnqueueAll)
	}
	return p
}

func (m *mockRegistry) Enqueue(
	guildID snowflake.ID,
	items []domain.QueueItem,
	mode domain.EnqueueMode,
) (int, []domain.QueueItem, error) {
	return m.get(guildID).Enqueue(items, mode)
}

func (m *mockRegistry) Consume(guildID snowflake.ID) (domain.QueueItem, bool) {
	return m.get(guildID).Consume()
}

func (m *mockRegistry) Clear(guildID snowflake.ID) bool {
	p, ok := m.playlists[guildID]
	if !ok {
		return false
	}
	p.Clear()
	return true
}

func (m *mockRegistry) SetPlaying(guildID snowflake.ID, playing bool) {
	m.get(guildID).SetPlaying(playing)
}

func (m *mockRegistry) IsPlaying(guildID snowflake.ID) bool {
	p, ok := m.playlists[guildID]
	return ok && p.IsPlaying()
}

func (m *mockRegistry) Snapshot(guildID snowflake.ID) domain.PlaylistSnapshot {
	return m.get(guildID).Snapshot()
}

func (m *mockRegistry) WithQueue(guildID snowflake.ID, fn func(*domain.Playlist)) {
	fn(m.get(guildID))
}

func (m *mockRegistry) LockVoice(_ snowflake.ID) func() {
	return func() {}
}

func (m *mockRegistry) Lock(guildID snowflake.ID) (*domain.Playlist, func()) {
	m.lockCalls++
	return m.get(guildID), func() {}
}

type mockMediaSupplier struct {
	failing  map[string]error // item ID -> error
	attempts []string
}

func (m *mockMediaSupplier) Materialize(_ context.Context, _ snowflake.ID, item domain.QueueItem) (domain.Media, error) {
	m.attempts = append(m.attempts, item.ID)
	if err, ok := m.failing[item.ID]; ok {
		return domain.Media{}, err
	}
	return domain.Media{Key: item.CacheKey(), Path: "/cache/" + item.CacheKey().String()}, nil
}

type mockAudioPlayer struct {
	playErr   error
	stopErr   error
	played    []domain.Media
	sequences []uint64
	stops     int
}

func (m *mockAudioPlayer) Play(_ context.Context, _ snowflake.ID, media domain.Media, sequence uint64) error {
	if m.playErr != nil {
		return m.playErr
	}
	m.played = append(m.played, media)
	m.sequences = append(m.sequences, sequence)
	return nil
}

func (m *mockAudioPlayer) Stop(_ context.Context, _ snowflake.ID) error {
	m.stops++
	return m.stopErr
}

type mockVoiceConnection struct {
	joinErr  error
	leaveErr error
	joined   []snowflake.ID
	left     int
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, _, channelID snowflake.ID) error {
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, channelID)
	return nil
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, _ snowflake.ID) error {
	m.left++
	return m.leaveErr
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

type mockEventPublisher struct {
	events []domain.Event
}

func (m *mockEventPublisher) Publish(event domain.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventPublisher) started() []domain.PlaybackStartedEvent {
	return eventsOf[domain.PlaybackStartedEvent](m.events)
}

func (m *mockEventPublisher) failed() []domain.PlaybackFailedEvent {
	return eventsOf[domain.PlaybackFailedEvent](m.events)
}

func (m *mockEventPublisher) finished() []domain.QueueFinishedEvent {
	return eventsOf[domain.QueueFinishedEvent](m.events)
}

func eventsOf[T domain.Event](events []domain.Event) []T {
	var result []T
	for _, event := range events {
		if e, ok := event.(T); ok {
			result = append(result, e)
		}
	}
	return result
}

type mockMetadataProvider struct {
	videos map[string]domain.QueueItem
	pages  map[string]ports.PlaylistPage // page token -> page
	err    error
	tokens []string
}

func (m *mockMetadataProvider) LookupVideo(_ context.Context, id string) (domain.QueueItem, error) {
	if m.err != nil {
		return domain.QueueItem{}, m.err
	}
	item, ok := m.videos[id]
	if !ok {
		return domain.QueueItem{}, &domain.ResolutionError{Detail: "video not found", Err: domain.ErrNoItemsResolved}
	}
	return item, nil
}

func (m *mockMetadataProvider) LookupPlaylistPage(
	_ context.Context,
	_, pageToken string,
) (ports.PlaylistPage, error) {
	m.tokens = append(m.tokens, pageToken)
	if m.err != nil {
		return ports.PlaylistPage{}, m.err
	}
	return m.pages[pageToken], nil
}

type resolveCall struct {
	target  string
	backend domain.Backend
}

type mockDownloader struct {
	results map[string][]domain.QueueItem // target -> items
	err     error
	calls   []resolveCall
}

func (m *mockDownloader) Resolve(
	_ context.Context,
	target string,
	backend domain.Backend,
) ([]domain.QueueItem, error) {
	m.calls = append(m.calls, resolveCall{target: target, backend: backend})
	if m.err != nil {
		return nil, m.err
	}
	return m.results[target], nil
}

func (m *mockDownloader) Fetch(_ context.Context, _ domain.QueueItem, _ string) error {
	return nil
}

type mockUserInfoProvider struct {
	info *ports.UserInfo
	err  error
}

func (m *mockUserInfoProvider) GetUserInfo(_, _ snowflake.ID) (*ports.UserInfo, error) {
	return m.info, m.err
}

type mockSuggester struct {
	suggestions []ports.Suggestion
	err         error
	queries     []string
}

func (m *mockSuggester) Suggest(_ context.Context, query string, _ int) ([]ports.Suggestion, error) {
	m.queries = append(m.queries, query)
	return m.suggestions, m.err
}

type mockDescriber struct {
	names map[string]string // input -> name
}

func (m *mockDescriber) Describe(_ context.Context, q domain.Query) (string, bool) {
	name, ok := m.names[q.Input()]
	return name, ok
}
