package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// AudioStream is an opened, playable audio source.
type AudioStream struct {
	Encoded string // Transport-specific encoded track
	Track   domain.Track
}

// FinishedFunc is invoked exactly once when a started stream stops playing,
// whatever the cause. It is never called on the goroutine that called Play.
type FinishedFunc func(reason domain.TrackEndReason)

// AudioPlayer defines the interface for streaming audio into a guild's voice connection.
type AudioPlayer interface {
	// Open prepares a resolved stream handle for playback.
	Open(ctx context.Context, handle StreamHandle) (*AudioStream, error)

	// Play starts streaming and registers the completion callback for this play.
	// If Play returns an error the callback is never invoked.
	Play(ctx context.Context, guildID snowflake.ID, stream *AudioStream, onFinished FinishedFunc) error

	// Stop forces the current stream to end. The pending completion callback fires.
	Stop(ctx context.Context, guildID snowflake.ID) error
}
