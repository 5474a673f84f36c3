package infrastructure

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

func TestChannelEventBus_DispatchesByType(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	started := make(chan domain.PlaybackStartedEvent, 1)
	ended := make(chan domain.SessionEndedEvent, 1)

	if err := bus.Subscribe(
		reflect.TypeFor[domain.PlaybackStartedEvent](),
		func(_ context.Context, event domain.Event) {
			started <- event.(domain.PlaybackStartedEvent)
		},
	); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := bus.Subscribe(
		reflect.TypeFor[domain.SessionEndedEvent](),
		func(_ context.Context, event domain.Event) {
			ended <- event.(domain.SessionEndedEvent)
		},
	); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := bus.Publish(domain.SessionEndedEvent{GuildID: 2, Cause: domain.SessionEndAlone}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := bus.Publish(domain.PlaybackStartedEvent{GuildID: 1}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case event := <-started:
		if event.GuildID != snowflake.ID(1) {
			t.Errorf("expected guild 1, got %d", event.GuildID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for PlaybackStartedEvent")
	}

	select {
	case event := <-ended:
		if event.Cause != domain.SessionEndAlone {
			t.Errorf("expected cause %q, got %q", domain.SessionEndAlone, event.Cause)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for SessionEndedEvent")
	}
}

func TestChannelEventBus_MultipleHandlers(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	for range 2 {
		_ = bus.Subscribe(
			reflect.TypeFor[domain.PlaybackFinishedEvent](),
			func(context.Context, domain.Event) { wg.Done() },
		)
	}

	if err := bus.Publish(domain.PlaybackFinishedEvent{GuildID: 1}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for both handlers")
	}
}

func TestChannelEventBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewChannelEventBus(1)
	defer bus.Close()

	for range 5 {
		if err := bus.Publish(domain.SessionEndedEvent{GuildID: 1}); err != nil {
			t.Fatalf("expected events without subscribers to be discarded, got %v", err)
		}
	}
}

func TestChannelEventBus_BufferFull(t *testing.T) {
	bus := NewChannelEventBus(1)

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	_ = bus.Subscribe(
		reflect.TypeFor[domain.SessionEndedEvent](),
		func(context.Context, domain.Event) {
			entered <- struct{}{}
			<-release
		},
	)
	defer func() {
		close(release)
		bus.Close()
	}()

	// First event occupies the handler, second fills the buffer.
	_ = bus.Publish(domain.SessionEndedEvent{GuildID: 1})
	<-entered
	if err := bus.Publish(domain.SessionEndedEvent{GuildID: 1}); err != nil {
		t.Fatalf("expected buffered publish to succeed, got %v", err)
	}

	err := bus.Publish(domain.SessionEndedEvent{GuildID: 1})
	if !errors.Is(err, ErrEventBufferFull) {
		t.Errorf("expected ErrEventBufferFull, got %v", err)
	}
}

func TestChannelEventBus_HandlerPanicDoesNotStopDispatch(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	received := make(chan struct{}, 2)
	calls := 0
	_ = bus.Subscribe(
		reflect.TypeFor[domain.SessionEndedEvent](),
		func(context.Context, domain.Event) {
			calls++
			if calls == 1 {
				panic("boom")
			}
			received <- struct{}{}
		},
	)

	_ = bus.Publish(domain.SessionEndedEvent{GuildID: 1})
	_ = bus.Publish(domain.SessionEndedEvent{GuildID: 1})

	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("expected dispatch to continue after a panic")
	}
}

func TestChannelEventBus_Close(t *testing.T) {
	bus := NewChannelEventBus(10)

	delivered := make(chan struct{}, 1)
	_ = bus.Subscribe(
		reflect.TypeFor[domain.SessionEndedEvent](),
		func(context.Context, domain.Event) { delivered <- struct{}{} },
	)
	_ = bus.Publish(domain.SessionEndedEvent{GuildID: 1})

	bus.Close()
	bus.Close()

	select {
	case <-delivered:
	default:
		t.Error("expected buffered events to be drained on close")
	}

	if err := bus.Publish(domain.SessionEndedEvent{GuildID: 1}); !errors.Is(err, ErrEventBusClosed) {
		t.Errorf("expected ErrEventBusClosed, got %v", err)
	}
	err := bus.Subscribe(
		reflect.TypeFor[domain.SessionEndedEvent](),
		func(context.Context, domain.Event) {},
	)
	if !errors.Is(err, ErrEventBusClosed) {
		t.Errorf("expected ErrEventBusClosed on subscribe, got %v", err)
	}
}
