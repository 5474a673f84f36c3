package domain

// PlaybackState is the state of a guild's playback slot.
type PlaybackState int

const (
	PlaybackIdle      PlaybackState = iota // Nothing resolving or playing
	PlaybackResolving                      // An entry is being resolved and opened
	PlaybackPlaying                        // A track is streaming
	PlaybackEnded                          // The session is over; terminal
)

// String returns a human-readable representation of the playback state.
func (s PlaybackState) String() string {
	switch s {
	case PlaybackResolving:
		return "resolving"
	case PlaybackPlaying:
		return "playing"
	case PlaybackEnded:
		return "ended"
	default:
		return "idle"
	}
}
