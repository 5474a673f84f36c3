package infrastructure

import (
	"testing"
	"time"

	"github.com/disgoorg/disgolink/v3/lavalink"

	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

type finishRecorder struct {
	reasons chan domain.TrackEndReason
}

func newFinishRecorder() *finishRecorder {
	return &finishRecorder{reasons: make(chan domain.TrackEndReason, 4)}
}

func (f *finishRecorder) callback() ports.FinishedFunc {
	return func(reason domain.TrackEndReason) {
		f.reasons <- reason
	}
}

func (f *finishRecorder) expect(t *testing.T, want domain.TrackEndReason) {
	t.Helper()
	select {
	case got := <-f.reasons:
		if got != want {
			t.Errorf("expected reason %q, got %q", want, got)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func (f *finishRecorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case got := <-f.reasons:
		t.Errorf("expected no callback, got %q", got)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestCompletionRegistry_CompleteFiresOnce(t *testing.T) {
	registry := newCompletionRegistry()
	recorder := newFinishRecorder()
	registry.register(1, "track-a", recorder.callback())

	if !registry.complete(1, 0, "track-a", domain.TrackEndFinished) {
		t.Fatal("expected the matching track to complete")
	}
	recorder.expect(t, domain.TrackEndFinished)

	if registry.complete(1, 0, "track-a", domain.TrackEndFinished) {
		t.Error("expected a second completion to be ignored")
	}
	recorder.expectNone(t)
}

func TestCompletionRegistry_IgnoresOtherTracks(t *testing.T) {
	registry := newCompletionRegistry()
	recorder := newFinishRecorder()
	registry.register(1, "track-a", recorder.callback())

	if registry.complete(1, 0, "track-b", domain.TrackEndFinished) {
		t.Error("expected a different track to be ignored")
	}
	if registry.complete(2, 0, "track-a", domain.TrackEndFinished) {
		t.Error("expected a different guild to be ignored")
	}
	recorder.expectNone(t)
}

func TestCompletionRegistry_RegisterReplaces(t *testing.T) {
	registry := newCompletionRegistry()
	first := newFinishRecorder()
	second := newFinishRecorder()

	registry.register(1, "track-a", first.callback())
	registry.register(1, "track-b", second.callback())

	first.expect(t, domain.TrackEndReplaced)
	if !registry.complete(1, 0, "track-b", domain.TrackEndStopped) {
		t.Fatal("expected the replacement to be active")
	}
	second.expect(t, domain.TrackEndStopped)
}

func TestCompletionRegistry_Cancel(t *testing.T) {
	registry := newCompletionRegistry()
	recorder := newFinishRecorder()
	token := registry.register(1, "track-a", recorder.callback())

	registry.cancel(1, token+1)
	registry.cancel(1, token)

	if registry.complete(1, 0, "track-a", domain.TrackEndFinished) {
		t.Error("expected a cancelled registration to be gone")
	}
	recorder.expectNone(t)
}

func TestCompletionRegistry_Drop(t *testing.T) {
	registry := newCompletionRegistry()
	recorder := newFinishRecorder()
	registry.register(1, "track-a", recorder.callback())

	registry.drop(1)
	recorder.expect(t, domain.TrackEndCleanup)

	registry.drop(1)
	recorder.expectNone(t)
}

func TestCompletionRegistry_StaleEndOfSameTrack(t *testing.T) {
	registry := newCompletionRegistry()
	first := newFinishRecorder()
	second := newFinishRecorder()

	firstToken := registry.register(1, "track-a", first.callback())
	secondToken := registry.register(1, "track-a", second.callback())
	first.expect(t, domain.TrackEndReplaced)

	if secondToken == firstToken {
		t.Fatal("expected every play to get its own token")
	}

	// The stop of the first play arrives after the same track started again.
	if registry.complete(1, firstToken, "track-a", domain.TrackEndStopped) {
		t.Error("expected the earlier play's end to be ignored")
	}
	second.expectNone(t)

	if !registry.complete(1, secondToken, "track-a", domain.TrackEndFinished) {
		t.Fatal("expected the active play to complete")
	}
	second.expect(t, domain.TrackEndFinished)
	first.expectNone(t)
}

func TestPlayToken(t *testing.T) {
	track, err := lavalink.Track{Encoded: "track-a"}.WithUserData(playUserData{Token: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		track lavalink.Track
		want  uint64
	}{
		{name: "tagged", track: track, want: 42},
		{name: "no user data", track: lavalink.Track{Encoded: "track-a"}, want: 0},
		{name: "foreign user data", track: lavalink.Track{UserData: lavalink.RawData(`"x"`)}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := playToken(tt.track); got != tt.want {
				t.Errorf("expected token %d, got %d", tt.want, got)
			}
		})
	}
}
