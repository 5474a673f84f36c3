package application

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// NowPlayingRecorder remembers which "Now Playing" message belongs to which play.
type NowPlayingRecorder interface {
	AttachNowPlaying(ctx context.Context, input usecases.AttachNowPlayingInput) (bool, error)
}

// NotificationEventHandler handles events related to Discord notifications.
// It posts the "Now Playing" message when a track starts and deletes it when the track finishes.
type NotificationEventHandler struct {
	subscriber       ports.EventSubscriber
	notifier         ports.NotificationSender
	userInfoProvider ports.UserInfoProvider
	recorder         NowPlayingRecorder
}

// NewNotificationEventHandler creates a new NotificationEventHandler.
func NewNotificationEventHandler(
	subscriber ports.EventSubscriber,
	notifier ports.NotificationSender,
	userInfoProvider ports.UserInfoProvider,
	recorder NowPlayingRecorder,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		subscriber:       subscriber,
		notifier:         notifier,
		userInfoProvider: userInfoProvider,
		recorder:         recorder,
	}
}

// Start registers event handlers with the subscriber.
func (h *NotificationEventHandler) Start() error {
	err := h.subscriber.Subscribe(
		reflect.TypeFor[domain.PlaybackStartedEvent](),
		func(ctx context.Context, e domain.Event) {
			h.handlePlaybackStarted(ctx, e.(domain.PlaybackStartedEvent))
		},
	)
	if err != nil {
		return err
	}

	err = h.subscriber.Subscribe(
		reflect.TypeFor[domain.PlaybackFinishedEvent](),
		func(ctx context.Context, e domain.Event) {
			h.handlePlaybackFinished(ctx, e.(domain.PlaybackFinishedEvent))
		},
	)
	if err != nil {
		return err
	}

	slog.Debug("notification event handlers properly registered")

	return nil
}

func (h *NotificationEventHandler) handlePlaybackStarted(
	ctx context.Context,
	event domain.PlaybackStartedEvent,
) {
	if event.NotificationChannelID == 0 {
		return
	}

	info := &ports.NowPlayingInfo{
		Track:              event.Track,
		RequesterName:      event.Track.Requester.Name,
		RequesterAvatarURL: event.Track.Requester.AvatarURL,
		Remaining:          event.Remaining,
		RemainingDuration:  event.RemainingDuration.String(),
		UpNext:             event.UpNext,
	}
	if info.RequesterName == "" && event.Track.Requester.ID != 0 && h.userInfoProvider != nil {
		if user, err := h.userInfoProvider.GetUserInfo(event.GuildID, event.Track.Requester.ID); err == nil {
			info.RequesterName = user.DisplayName
			info.RequesterAvatarURL = user.AvatarURL
		}
	}

	messageID, err := h.notifier.SendNowPlaying(event.NotificationChannelID, info)
	if err != nil {
		slog.Error(
			"failed to send now playing notification",
			"guild", event.GuildID,
			"error", err,
		)
		return
	}

	msg := domain.NowPlayingMessage{ChannelID: event.NotificationChannelID, MessageID: messageID}
	attached, err := h.recorder.AttachNowPlaying(ctx, usecases.AttachNowPlayingInput{
		GuildID: event.GuildID,
		PlayID:  event.PlayID,
		Message: msg,
	})
	if err == nil && attached {
		return
	}

	// The track finished before the message was sent
	slog.Debug("now playing message outlived its track", "guild", event.GuildID)
	h.deleteMessage(event.GuildID, &msg)
}

func (h *NotificationEventHandler) handlePlaybackFinished(
	_ context.Context,
	event domain.PlaybackFinishedEvent,
) {
	if event.Finished == nil {
		return
	}
	h.deleteMessage(event.GuildID, event.Finished)
}

func (h *NotificationEventHandler) deleteMessage(guildID snowflake.ID, msg *domain.NowPlayingMessage) {
	if err := h.notifier.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
		slog.Warn(
			"failed to delete now playing message",
			"guild", guildID,
			"now_playing", msg,
			"error", err,
		)
	}
}

// SessionEventHandler records session-level events that have no user to reply to.
type SessionEventHandler struct {
	subscriber ports.EventSubscriber
}

// NewSessionEventHandler creates a new SessionEventHandler.
func NewSessionEventHandler(subscriber ports.EventSubscriber) *SessionEventHandler {
	return &SessionEventHandler{subscriber: subscriber}
}

// Start registers event handlers with the subscriber.
func (h *SessionEventHandler) Start() error {
	err := h.subscriber.Subscribe(
		reflect.TypeFor[domain.AutoAdvanceFailedEvent](),
		func(_ context.Context, e domain.Event) {
			event := e.(domain.AutoAdvanceFailedEvent)
			slog.Error(
				"playback halted, next track could not be started",
				"guild", event.GuildID,
				"query", event.Query,
				"error", event.Err,
			)
		},
	)
	if err != nil {
		return err
	}

	err = h.subscriber.Subscribe(
		reflect.TypeFor[domain.SessionEndedEvent](),
		func(_ context.Context, e domain.Event) {
			event := e.(domain.SessionEndedEvent)
			slog.Info("guild session ended", "guild", event.GuildID, "cause", event.Cause)
		},
	)
	if err != nil {
		return err
	}

	slog.Debug("session event handlers properly registered")

	return nil
}
