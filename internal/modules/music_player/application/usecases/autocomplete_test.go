package usecases

import (
	"context"
	"slices"
	"testing"

	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

func TestAutocompleteService_GetQueueEntries(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		f := newVoiceFixture(t, newMockTrackResolver(), true)
		service := NewAutocompleteService(f.service, nil)

		output := service.GetQueueEntries(context.Background(), GetQueueEntriesInput{GuildID: testGuildID})

		if len(output.Entries) != 0 {
			t.Errorf("expected no entries, got %d", len(output.Entries))
		}
	})

	t.Run("queued entries", func(t *testing.T) {
		_, f := newQueueFixture(t, "a", "b")
		service := NewAutocompleteService(f.service, nil)

		output := service.GetQueueEntries(context.Background(), GetQueueEntriesInput{GuildID: testGuildID})

		if got := entryQueries(output.Entries); !slices.Equal(got, []string{"a", "b"}) {
			t.Errorf("expected [a b], got %v", got)
		}
	})
}

func TestAutocompleteService_SearchTracks(t *testing.T) {
	searcher := &mockTrackSearcher{tracks: []ports.TrackInfo{{Title: "Result"}}}
	loader := NewTrackLoaderService(newMockTrackResolver(), searcher, domain.SourceYouTube, DefaultRetryPolicy(), nil)
	f := newVoiceFixture(t, newMockTrackResolver(), true)

	output, err := NewAutocompleteService(f.service, loader).SearchTracks(
		context.Background(),
		SearchTracksInput{Query: "result", Limit: 5},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Tracks) != 1 || output.Tracks[0].Title != "Result" {
		t.Errorf("unexpected tracks %+v", output.Tracks)
	}

	empty, err := NewAutocompleteService(f.service, nil).SearchTracks(
		context.Background(),
		SearchTracksInput{Query: "result"},
	)
	if err != nil || len(empty.Tracks) != 0 {
		t.Errorf("expected no results without a loader, got %+v %v", empty, err)
	}
}
