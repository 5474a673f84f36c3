package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track finished normally.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the track failed to load or errored while streaming.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the track was stopped (skip or stop).
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means the track was replaced by another.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the player was destroyed.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// IsFailure returns true if the track ended because of an error.
func (r TrackEndReason) IsFailure() bool {
	return r == TrackEndLoadFailed
}

// Event is implemented by every event published on the event bus.
type Event interface {
	EventGuildID() snowflake.ID
}

// PlaybackStartedEvent is published when a track starts playing.
type PlaybackStartedEvent struct {
	GuildID               snowflake.ID
	PlayID                PlayID
	Track                 Track
	NotificationChannelID snowflake.ID
	Remaining             int      // Entries left in the queue
	RemainingDuration     Duration // Total known duration of those entries
	UpNext                *Track   // Head of the queue, nil if empty
}

// PlaybackFinishedEvent is published when a track stops playing for any reason.
// This signals that the "Now Playing" message should be deleted.
type PlaybackFinishedEvent struct {
	GuildID  snowflake.ID
	Reason   TrackEndReason
	Finished *NowPlayingMessage // "Now Playing" message to delete, nil if none
}

// AutoAdvanceFailedEvent is published when the next queued entry could not be started
// after the previous track ended.
type AutoAdvanceFailedEvent struct {
	GuildID snowflake.ID
	Query   string
	Err     error
}

// Causes carried by SessionEndedEvent.
const (
	SessionEndStopped      = "stop"
	SessionEndAlone        = "alone"
	SessionEndDisconnected = "disconnected"
)

// SessionEndedEvent is published when a guild session is torn down.
type SessionEndedEvent struct {
	GuildID snowflake.ID
	Cause   string
}

func (e PlaybackStartedEvent) EventGuildID() snowflake.ID   { return e.GuildID }
func (e PlaybackFinishedEvent) EventGuildID() snowflake.ID  { return e.GuildID }
func (e AutoAdvanceFailedEvent) EventGuildID() snowflake.ID { return e.GuildID }
func (e SessionEndedEvent) EventGuildID() snowflake.ID      { return e.GuildID }
