package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

var (
	// ErrEventBusClosed is returned when publishing to or subscribing on a closed bus.
	ErrEventBusClosed = errors.New("event bus closed")
	// ErrEventBufferFull is returned when an event is dropped because its channel is full.
	ErrEventBufferFull = errors.New("event buffer full")
)

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// eventTopic is the channel and handler list of one event type.
type eventTopic struct {
	events   chan domain.Event
	handlers []func(context.Context, domain.Event)
}

// ChannelEventBus provides a channel-based event bus for async event handling.
// Every event type gets its own buffered channel and dispatcher goroutine,
// so a slow handler of one type never delays events of another.
type ChannelEventBus struct {
	bufferSize int
	topics     map[reflect.Type]*eventTopic

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &ChannelEventBus{
		bufferSize: bufferSize,
		topics:     make(map[reflect.Type]*eventTopic),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Subscribe registers a handler for events of the given type.
// The first subscription of a type starts its dispatcher.
func (b *ChannelEventBus) Subscribe(
	eventType reflect.Type,
	handler func(context.Context, domain.Event),
) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	topic, ok := b.topics[eventType]
	if !ok {
		topic = &eventTopic{events: make(chan domain.Event, b.bufferSize)}
		b.topics[eventType] = topic
		b.wg.Add(1)
		go b.dispatch(eventType, topic)
	}
	topic.handlers = append(topic.handlers, handler)

	return nil
}

func (b *ChannelEventBus) dispatch(eventType reflect.Type, topic *eventTopic) {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-topic.events:
			if !ok {
				return
			}
			b.mu.RLock()
			handlers := topic.handlers
			b.mu.RUnlock()
			for _, handler := range handlers {
				b.invoke(eventType, handler, event)
			}
		}
	}
}

func (b *ChannelEventBus) invoke(
	eventType reflect.Type,
	handler func(context.Context, domain.Event),
	event domain.Event,
) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "type", eventType.Name(), "panic", r)
		}
	}()
	handler(b.ctx, event)
}

// Publish queues an event for its subscribers.
// Non-blocking: if the channel buffer is full, the event is dropped and
// ErrEventBufferFull is returned. Events without subscribers are discarded.
func (b *ChannelEventBus) Publish(event domain.Event) error {
	eventType := reflect.TypeOf(event)

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrEventBusClosed
	}

	topic, ok := b.topics[eventType]
	if !ok {
		return nil
	}

	select {
	case topic.events <- event:
		slog.Debug("published event", "type", eventType.Name(), "guild", event.EventGuildID())
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrEventBufferFull, eventType.Name())
	}
}

// Close closes all event channels and stops dispatchers.
// After calling Close, Publish returns ErrEventBusClosed.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, topic := range b.topics {
		close(topic.events)
	}
	b.mu.Unlock()

	b.wg.Wait()
	b.cancel()

	slog.Debug("channel event bus closed")
}
