package usecases

import (
	"errors"

	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Errors returned by the music player use cases.
var (
	// ErrNotInVoiceChannel is returned when the caller is not in a voice channel.
	ErrNotInVoiceChannel = errors.New("you must be in a voice channel")

	// ErrNoActiveSession is returned when an operation requires a guild session that does not exist.
	ErrNoActiveSession = errors.New("not connected to a voice channel")

	// ErrEmptyQueue is returned when the queue has no entries.
	ErrEmptyQueue = domain.ErrEmptyQueue

	// ErrIndexOutOfRange is returned when a queue position does not exist.
	ErrIndexOutOfRange = domain.ErrIndexOutOfRange

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrResolutionFailed is returned when a query could not be resolved to a track.
	// It wraps the resolver's error.
	ErrResolutionFailed = errors.New("failed to resolve track")

	// ErrStreamOpenFailed is returned when a resolved track could not be streamed.
	ErrStreamOpenFailed = errors.New("failed to open audio stream")

	// ErrAutoAdvanceFailure wraps failures to start the next queued track after the previous one ended.
	ErrAutoAdvanceFailure = errors.New("failed to advance to the next track")
)
