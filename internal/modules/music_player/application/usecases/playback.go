package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// PlayRequestInput contains the input for the PlayRequest use case.
type PlayRequestInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	Query                 string
	Requester             domain.Requester
	NotificationChannelID snowflake.ID
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// StopInput contains the input for the Stop use case.
type StopInput struct {
	GuildID snowflake.ID
}

// PlaybackService handles playback operations.
type PlaybackService struct {
	voice *VoiceChannelService
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(voice *VoiceChannelService) *PlaybackService {
	return &PlaybackService{voice: voice}
}

// Play joins the caller's voice channel if needed, then plays or queues the query.
func (p *PlaybackService) Play(ctx context.Context, input PlayRequestInput) (*PlayOutput, error) {
	joined, err := p.voice.Join(ctx, JoinInput{
		GuildID:               input.GuildID,
		UserID:                input.UserID,
		NotificationChannelID: input.NotificationChannelID,
	})
	if err != nil {
		return nil, err
	}

	return joined.Controller.Play(ctx, PlayInput{
		Query:                 input.Query,
		Requester:             input.Requester,
		NotificationChannelID: input.NotificationChannelID,
	})
}

// Skip skips the current track.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	controller, err := p.voice.Session(input.GuildID)
	if err != nil {
		return nil, err
	}

	if input.NotificationChannelID != 0 {
		if err := controller.SetNotificationChannel(ctx, input.NotificationChannelID); err != nil {
			return nil, err
		}
	}

	return controller.Skip(ctx)
}

// Stop ends the guild session and leaves the voice channel.
func (p *PlaybackService) Stop(ctx context.Context, input StopInput) error {
	return p.voice.Leave(ctx, LeaveInput(input))
}
