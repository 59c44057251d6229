package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/usecases"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
	"github.com/sglre6355/potbot/internal/modules/playlist/infrastructure"
)

// slowNotifier counts notices and takes a while per "cannot play" post.
type slowNotifier struct {
	delay    time.Duration
	mu       sync.Mutex
	failed   int
	finished int
	done     chan struct{}
}

func (n *slowNotifier) SendNowPlaying(snowflake.ID, *ports.NowPlayingInfo) error {
	return nil
}

func (n *slowNotifier) SendPlaybackFailed(snowflake.ID, *ports.NowPlayingInfo) error {
	time.Sleep(n.delay)
	n.mu.Lock()
	n.failed++
	n.mu.Unlock()
	return nil
}

func (n *slowNotifier) SendQueueFinished(snowflake.ID) error {
	n.mu.Lock()
	n.finished++
	n.mu.Unlock()
	n.done <- struct{}{}
	return nil
}

func TestNotices_LongFailingQueueThroughEventBus(t *testing.T) {
	const (
		itemCount  = 150
		bufferSize = 10
	)

	registry := infrastructure.NewMemoryRegistry()
	playlist, unlock := registry.Lock(testGuildID)
	playlist.SetVoiceChannelID(testVoiceChannelID)
	playlist.SetNotificationChannelID(testTextChannelID)
	unlock()

	items := make([]domain.QueueItem, itemCount)
	failing := make(map[string]bool, itemCount)
	for i := range items {
		id := fmt.Sprintf("item-%d", i)
		items[i] = item(id)
		failing[id] = true
	}
	if _, _, err := registry.Enqueue(testGuildID, items, domain.EnqueueAll); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bus := infrastructure.NewChannelEventBus(bufferSize)
	defer bus.Close()

	notifier := &slowNotifier{delay: time.Millisecond, done: make(chan struct{}, 2)}
	if err := NewNotificationEventHandler(bus, notifier).Start(); err != nil {
		t.Fatalf("failed to start notification handler: %v", err)
	}

	voice := &stubVoice{}
	playback := usecases.NewPlaybackService(
		registry,
		&stubSupplier{failing: failing},
		stubPlayer{},
		voice,
		bus,
	)

	outcome := playback.Start(context.Background(), testGuildID)
	if outcome == nil || outcome.IsStarted() {
		t.Fatalf("expected QueueFinished, got %+v", outcome)
	}
	if len(outcome.Failed) != itemCount {
		t.Errorf("expected %d failed items, got %d", itemCount, len(outcome.Failed))
	}

	select {
	case <-notifier.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the queue finished notice")
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	// Notices of one guild are delivered in order, so every failure was posted first.
	if notifier.failed != itemCount {
		t.Errorf("expected %d cannot play notices, got %d", itemCount, notifier.failed)
	}
	if notifier.finished != 1 {
		t.Errorf("expected 1 queue finished notice, got %d", notifier.finished)
	}
	if voice.left != 1 {
		t.Errorf("expected voice connection to be released once, got %d", voice.left)
	}
}
