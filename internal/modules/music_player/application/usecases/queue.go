package usecases

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// QueueListInput contains the input for the QueueList use case.
type QueueListInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// QueueListOutput contains the result of the QueueList use case.
type QueueListOutput struct {
	Current       *domain.QueueEntry // Entry being resolved or played, nil when idle
	Playing       *domain.Track
	Entries       []domain.QueueEntry
	TotalDuration domain.Duration
}

// QueueDeleteInput contains the input for the QueueDelete use case.
type QueueDeleteInput struct {
	GuildID               snowflake.ID
	Position              int          // 1-based position in the queue
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// QueueDeleteOutput contains the result of the QueueDelete use case.
type QueueDeleteOutput struct {
	Removed domain.QueueEntry
	Queue   *QueueListOutput
}

// QueueShuffleInput contains the input for the QueueShuffle use case.
type QueueShuffleInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// QueueClearInput contains the input for the QueueClear use case.
type QueueClearInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// QueueClearOutput contains the result of the QueueClear use case.
type QueueClearOutput struct {
	ClearedCount int
	Queue        *QueueListOutput
}

// QueueService handles queue operations.
type QueueService struct {
	voice *VoiceChannelService
}

// NewQueueService creates a new QueueService.
func NewQueueService(voice *VoiceChannelService) *QueueService {
	return &QueueService{voice: voice}
}

// List returns the queue of the guild. A guild without a session has an empty queue.
func (q *QueueService) List(ctx context.Context, input QueueListInput) (*QueueListOutput, error) {
	controller, err := q.session(ctx, input.GuildID, input.NotificationChannelID)
	if errors.Is(err, ErrNoActiveSession) {
		return emptyListing(), nil
	}
	if err != nil {
		return nil, err
	}
	return list(ctx, controller)
}

// Delete removes the entry at the given 1-based position.
func (q *QueueService) Delete(ctx context.Context, input QueueDeleteInput) (*QueueDeleteOutput, error) {
	controller, err := q.session(ctx, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	removed, err := controller.Delete(ctx, input.Position)
	if err != nil {
		return nil, err
	}

	listing, err := list(ctx, controller)
	if err != nil {
		return nil, err
	}

	return &QueueDeleteOutput{Removed: removed, Queue: listing}, nil
}

// Shuffle randomly reorders the queue and returns the new listing.
func (q *QueueService) Shuffle(ctx context.Context, input QueueShuffleInput) (*QueueListOutput, error) {
	controller, err := q.session(ctx, input.GuildID, input.NotificationChannelID)
	if errors.Is(err, ErrNoActiveSession) {
		return emptyListing(), nil
	}
	if err != nil {
		return nil, err
	}

	if err := controller.Shuffle(ctx); err != nil {
		return nil, err
	}

	return list(ctx, controller)
}

// Clear removes every queued entry. The current track keeps playing.
func (q *QueueService) Clear(ctx context.Context, input QueueClearInput) (*QueueClearOutput, error) {
	controller, err := q.session(ctx, input.GuildID, input.NotificationChannelID)
	if errors.Is(err, ErrNoActiveSession) {
		return &QueueClearOutput{Queue: emptyListing()}, nil
	}
	if err != nil {
		return nil, err
	}

	count, err := controller.Clear(ctx)
	if err != nil {
		return nil, err
	}

	listing, err := list(ctx, controller)
	if err != nil {
		return nil, err
	}

	return &QueueClearOutput{ClearedCount: count, Queue: listing}, nil
}

func (q *QueueService) session(
	ctx context.Context,
	guildID, notificationChannelID snowflake.ID,
) (*GuildController, error) {
	controller, err := q.voice.Session(guildID)
	if err != nil {
		return nil, err
	}

	if notificationChannelID != 0 {
		if err := controller.SetNotificationChannel(ctx, notificationChannelID); err != nil {
			return nil, err
		}
	}

	return controller, nil
}

func emptyListing() *QueueListOutput {
	return &QueueListOutput{TotalDuration: domain.KnownDuration(0)}
}

func list(ctx context.Context, controller *GuildController) (*QueueListOutput, error) {
	snapshot, err := controller.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &QueueListOutput{
		Current:       snapshot.Current,
		Playing:       snapshot.Playing,
		Entries:       snapshot.Entries,
		TotalDuration: snapshot.TotalDuration,
	}, nil
}
