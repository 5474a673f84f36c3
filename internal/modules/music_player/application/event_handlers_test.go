package application

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

type mockSubscriber struct {
	handlers map[reflect.Type][]func(context.Context, domain.Event)
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{handlers: make(map[reflect.Type][]func(context.Context, domain.Event))}
}

func (m *mockSubscriber) Subscribe(
	eventType reflect.Type,
	handler func(context.Context, domain.Event),
) error {
	m.handlers[eventType] = append(m.handlers[eventType], handler)
	return nil
}

func (m *mockSubscriber) emit(event domain.Event) {
	for _, handler := range m.handlers[reflect.TypeOf(event)] {
		handler(context.Background(), event)
	}
}

type deletedMessage struct {
	channelID snowflake.ID
	messageID snowflake.ID
}

type mockNotifier struct {
	mu            sync.Mutex
	sent          []*ports.NowPlayingInfo
	deleted       []deletedMessage
	lastMessageID snowflake.ID
	sendErr       error
}

func (m *mockNotifier) SendNowPlaying(_ snowflake.ID, info *ports.NowPlayingInfo) (snowflake.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.sent = append(m.sent, info)
	m.lastMessageID++
	return m.lastMessageID, nil
}

func (m *mockNotifier) DeleteMessage(channelID, messageID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, deletedMessage{channelID, messageID})
	return nil
}

func (m *mockNotifier) SendError(_ snowflake.ID, _ string) error {
	return nil
}

type mockUserInfoProvider struct {
	users map[snowflake.ID]*ports.UserInfo
}

func (m *mockUserInfoProvider) GetUserInfo(_, userID snowflake.ID) (*ports.UserInfo, error) {
	user, ok := m.users[userID]
	if !ok {
		return nil, errors.New("unknown user")
	}
	return user, nil
}

type mockRecorder struct {
	attached []usecases.AttachNowPlayingInput
	accept   bool
	err      error
}

func (m *mockRecorder) AttachNowPlaying(_ context.Context, input usecases.AttachNowPlayingInput) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.attached = append(m.attached, input)
	return m.accept, nil
}

func startedEvent() domain.PlaybackStartedEvent {
	return domain.PlaybackStartedEvent{
		GuildID:               snowflake.ID(1),
		PlayID:                domain.PlayID(7),
		Track:                 domain.Track{Title: "Song", Requester: domain.Requester{ID: 42}},
		NotificationChannelID: snowflake.ID(3),
		Remaining:             2,
		RemainingDuration:     domain.DurationSeconds(200),
	}
}

func TestNotificationEventHandler_PlaybackStarted(t *testing.T) {
	tests := []struct {
		name        string
		event       func() domain.PlaybackStartedEvent
		recorder    *mockRecorder
		sendErr     error
		wantSent    int
		wantDeleted int
	}{
		{
			name:     "sends and records the message",
			event:    startedEvent,
			recorder: &mockRecorder{accept: true},
			wantSent: 1,
		},
		{
			name:        "deletes the message when the track already finished",
			event:       startedEvent,
			recorder:    &mockRecorder{accept: false},
			wantSent:    1,
			wantDeleted: 1,
		},
		{
			name:        "deletes the message when the session is gone",
			event:       startedEvent,
			recorder:    &mockRecorder{err: usecases.ErrNoActiveSession},
			wantSent:    1,
			wantDeleted: 1,
		},
		{
			name: "skips events without a notification channel",
			event: func() domain.PlaybackStartedEvent {
				e := startedEvent()
				e.NotificationChannelID = 0
				return e
			},
			recorder: &mockRecorder{accept: true},
		},
		{
			name:     "send failure",
			event:    startedEvent,
			recorder: &mockRecorder{accept: true},
			sendErr:  errors.New("missing permissions"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subscriber := newMockSubscriber()
			notifier := &mockNotifier{sendErr: tt.sendErr}
			users := &mockUserInfoProvider{users: map[snowflake.ID]*ports.UserInfo{
				42: {DisplayName: "listener", AvatarURL: "https://cdn/avatar.png"},
			}}
			handler := NewNotificationEventHandler(subscriber, notifier, users, tt.recorder)
			if err := handler.Start(); err != nil {
				t.Fatalf("Start failed: %v", err)
			}

			subscriber.emit(tt.event())

			if len(notifier.sent) != tt.wantSent {
				t.Fatalf("expected %d sent, got %d", tt.wantSent, len(notifier.sent))
			}
			if len(notifier.deleted) != tt.wantDeleted {
				t.Errorf("expected %d deleted, got %d", tt.wantDeleted, len(notifier.deleted))
			}
			if tt.wantSent == 0 {
				return
			}

			info := notifier.sent[0]
			if info.RequesterName != "listener" {
				t.Errorf("expected requester name from user info, got %q", info.RequesterName)
			}
			if info.RemainingDuration != "3:20" || info.Remaining != 2 {
				t.Errorf("unexpected remaining info %d %q", info.Remaining, info.RemainingDuration)
			}
			if tt.recorder.err == nil {
				if len(tt.recorder.attached) != 1 || tt.recorder.attached[0].PlayID != 7 {
					t.Errorf("expected the message to be attached to play 7, got %+v", tt.recorder.attached)
				}
			}
		})
	}
}

func TestNotificationEventHandler_PlaybackFinished(t *testing.T) {
	subscriber := newMockSubscriber()
	notifier := &mockNotifier{}
	handler := NewNotificationEventHandler(subscriber, notifier, nil, &mockRecorder{})
	if err := handler.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	subscriber.emit(domain.PlaybackFinishedEvent{GuildID: 1, Reason: domain.TrackEndFinished})
	if len(notifier.deleted) != 0 {
		t.Errorf("expected nothing deleted without a message, got %d", len(notifier.deleted))
	}

	subscriber.emit(domain.PlaybackFinishedEvent{
		GuildID:  1,
		Reason:   domain.TrackEndFinished,
		Finished: &domain.NowPlayingMessage{ChannelID: 3, MessageID: 9},
	})
	if len(notifier.deleted) != 1 || notifier.deleted[0] != (deletedMessage{3, 9}) {
		t.Errorf("expected message 9 deleted, got %+v", notifier.deleted)
	}
}

func TestSessionEventHandler_Start(t *testing.T) {
	subscriber := newMockSubscriber()
	handler := NewSessionEventHandler(subscriber)

	if err := handler.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if len(subscriber.handlers[reflect.TypeFor[domain.AutoAdvanceFailedEvent]()]) != 1 {
		t.Error("expected an AutoAdvanceFailedEvent handler")
	}
	if len(subscriber.handlers[reflect.TypeFor[domain.SessionEndedEvent]()]) != 1 {
		t.Error("expected a SessionEndedEvent handler")
	}

	subscriber.emit(domain.AutoAdvanceFailedEvent{GuildID: 1, Query: "q", Err: errors.New("boom")})
}
