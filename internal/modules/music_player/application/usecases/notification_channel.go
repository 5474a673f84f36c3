package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// NotificationChannelService tracks where a guild's notifications go.
type NotificationChannelService struct {
	voice *VoiceChannelService
}

// NewNotificationChannelService creates a new NotificationChannelService.
func NewNotificationChannelService(voice *VoiceChannelService) *NotificationChannelService {
	return &NotificationChannelService{voice: voice}
}

// SetNotificationChannelInput contains the input for the Set use case.
type SetNotificationChannelInput struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
}

// Set updates the notification channel for the guild's session.
func (n *NotificationChannelService) Set(
	ctx context.Context,
	input SetNotificationChannelInput,
) error {
	controller, err := n.voice.Session(input.GuildID)
	if err != nil {
		return err
	}

	return controller.SetNotificationChannel(ctx, input.ChannelID)
}

// AttachNowPlayingInput contains the input for the AttachNowPlaying use case.
type AttachNowPlayingInput struct {
	GuildID snowflake.ID
	PlayID  domain.PlayID
	Message domain.NowPlayingMessage
}

// AttachNowPlaying records the "Now Playing" message of a play so it can be deleted
// when the play finishes. Returns false if the play is already over.
func (n *NotificationChannelService) AttachNowPlaying(
	ctx context.Context,
	input AttachNowPlayingInput,
) (bool, error) {
	controller, err := n.voice.Session(input.GuildID)
	if err != nil {
		return false, err
	}

	return controller.AttachNowPlaying(ctx, input.PlayID, input.Message)
}
