package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// GetQueueEntriesInput contains the input for the GetQueueEntries use case.
type GetQueueEntriesInput struct {
	GuildID snowflake.ID
}

// GetQueueEntriesOutput contains the output for the GetQueueEntries use case.
type GetQueueEntriesOutput struct {
	Entries []domain.QueueEntry
}

// AutocompleteService handles autocomplete-related operations.
type AutocompleteService struct {
	voice  *VoiceChannelService
	loader *TrackLoaderService
}

// NewAutocompleteService creates a new AutocompleteService.
func NewAutocompleteService(
	voice *VoiceChannelService,
	loader *TrackLoaderService,
) *AutocompleteService {
	return &AutocompleteService{
		voice:  voice,
		loader: loader,
	}
}

// GetQueueEntries returns the queued entries for position suggestions.
func (s *AutocompleteService) GetQueueEntries(
	ctx context.Context,
	input GetQueueEntriesInput,
) *GetQueueEntriesOutput {
	controller, err := s.voice.Session(input.GuildID)
	if err != nil {
		return &GetQueueEntriesOutput{Entries: nil}
	}

	snapshot, err := controller.Snapshot(ctx)
	if err != nil {
		return &GetQueueEntriesOutput{Entries: nil}
	}

	return &GetQueueEntriesOutput{Entries: snapshot.Entries}
}

// SearchTracks searches for tracks matching the query.
func (s *AutocompleteService) SearchTracks(
	ctx context.Context,
	input SearchTracksInput,
) (*SearchTracksOutput, error) {
	if s.loader == nil {
		return &SearchTracksOutput{Tracks: nil}, nil
	}
	return s.loader.SearchTracks(ctx, input)
}
