package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// DefaultEventBufferSize is the default buffer size of each guild mailbox.
const DefaultEventBufferSize = 100

// ErrEventBusClosed is returned when publishing to a closed bus.
var ErrEventBusClosed = errors.New("event bus closed")

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// ChannelEventBus provides a channel-based event bus for async event handling.
// Every guild gets its own mailbox and dispatcher goroutine: events of one guild are
// handled in publish order, and a slow handler only delays its own guild.
type ChannelEventBus struct {
	bufferSize int
	mailboxes  map[snowflake.ID]chan domain.Event
	handlers   map[reflect.Type][]func(context.Context, domain.Event)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given mailbox size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &ChannelEventBus{
		bufferSize: bufferSize,
		mailboxes:  make(map[snowflake.ID]chan domain.Event),
		handlers:   make(map[reflect.Type][]func(context.Context, domain.Event)),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Subscribe registers a handler for events of the given type.
func (b *ChannelEventBus) Subscribe(
	eventType reflect.Type,
	handler func(context.Context, domain.Event),
) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// Publish queues the event in its guild's mailbox.
// Blocks while the mailbox is full; events are never dropped unless the bus closes.
func (b *ChannelEventBus) Publish(event domain.Event) error {
	eventType := reflect.TypeOf(event).String()

	mailbox, err := b.mailbox(event.Guild())
	if err != nil {
		slog.Warn("attempted to publish to closed event bus", "type", eventType)
		return err
	}

	select {
	case mailbox <- event:
	default:
		slog.Debug("event buffer full, waiting", "type", eventType, "guild", event.Guild())
		select {
		case mailbox <- event:
		case <-b.ctx.Done():
			slog.Warn("event bus closed while publishing", "type", eventType, "guild", event.Guild())
			return ErrEventBusClosed
		}
	}

	slog.Debug("published event", "type", eventType, "guild", event.Guild())
	return nil
}

// mailbox returns the guild's mailbox, starting its dispatcher on first use.
func (b *ChannelEventBus) mailbox(guildID snowflake.ID) (chan domain.Event, error) {
	b.mu.RLock()
	mailbox, ok := b.mailboxes[guildID]
	closed := b.closed
	b.mu.RUnlock()

	if closed {
		return nil, ErrEventBusClosed
	}
	if ok {
		return mailbox, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrEventBusClosed
	}
	if mailbox, ok := b.mailboxes[guildID]; ok {
		return mailbox, nil
	}

	mailbox = make(chan domain.Event, b.bufferSize)
	b.mailboxes[guildID] = mailbox

	b.wg.Add(1)
	go b.dispatch(guildID, mailbox)

	return mailbox, nil
}

func (b *ChannelEventBus) dispatch(guildID snowflake.ID, mailbox <-chan domain.Event) {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event := <-mailbox:
			b.mu.RLock()
			handlers := b.handlers[reflect.TypeOf(event)]
			b.mu.RUnlock()
			for _, handler := range handlers {
				b.invoke(guildID, handler, event)
			}
		}
	}
}

// invoke runs one handler, keeping the guild's dispatcher alive if it panics.
func (b *ChannelEventBus) invoke(
	guildID snowflake.ID,
	handler func(context.Context, domain.Event),
	event domain.Event,
) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error(
				"event handler panicked",
				"guild", guildID,
				"type", reflect.TypeOf(event).String(),
				"panic", r,
			)
		}
	}()
	handler(b.ctx, event)
}

// Close stops all dispatchers and unblocks pending publishers.
// Events still queued are discarded. After calling Close, publishing fails.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mailboxes = make(map[snowflake.ID]chan domain.Event)
	b.mu.Unlock()

	// Mailboxes stay open: a publisher may still hold one, and dispatchers exit on cancel.
	b.cancel()
	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
