package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// NowPlayingMessage stores the channel and message ID for a "Now Playing" message.
// Both values are needed for deletion since the message may be in a different channel
// than the current notification channel.
type NowPlayingMessage struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
}

// PlayID identifies one occupancy of the playback slot (one resolve-then-play attempt).
// Completions and resolutions carrying an older PlayID are stale.
type PlayID uint64

// PlayerState is the state of one guild session: its queue and its playback slot.
// It is not safe for concurrent use; it is owned by a single GuildController.
type PlayerState struct {
	guildID               snowflake.ID
	voiceChannelID        snowflake.ID // Voice channel the bot is connected to
	notificationChannelID snowflake.ID // Text channel for session-wide notifications
	nowPlayingMessage     *NowPlayingMessage
	Queue                 *PlayQueue

	state   PlaybackState
	playID  PlayID
	lastID  PlayID
	entry   QueueEntry // Entry being resolved or played
	current Track      // Resolved track, set while playing
}

// NewPlayerState creates a new idle PlayerState for the given guild and channels.
func NewPlayerState(guildID, voiceChannelID, notificationChannelID snowflake.ID) *PlayerState {
	return &PlayerState{
		guildID:               guildID,
		voiceChannelID:        voiceChannelID,
		notificationChannelID: notificationChannelID,
		Queue:                 NewPlayQueue(),
		state:                 PlaybackIdle,
	}
}

// GuildID returns the guild ID.
func (p *PlayerState) GuildID() snowflake.ID {
	return p.guildID
}

// VoiceChannelID returns the current voice channel ID.
func (p *PlayerState) VoiceChannelID() snowflake.ID {
	return p.voiceChannelID
}

// SetVoiceChannelID updates the voice channel ID.
func (p *PlayerState) SetVoiceChannelID(channelID snowflake.ID) {
	p.voiceChannelID = channelID
}

// NotificationChannelID returns the notification channel ID.
func (p *PlayerState) NotificationChannelID() snowflake.ID {
	return p.notificationChannelID
}

// SetNotificationChannelID updates the notification channel ID.
func (p *PlayerState) SetNotificationChannelID(channelID snowflake.ID) {
	p.notificationChannelID = channelID
}

// State returns the playback state.
func (p *PlayerState) State() PlaybackState {
	return p.state
}

// IsIdle returns true if nothing is resolving or playing.
func (p *PlayerState) IsIdle() bool {
	return p.state == PlaybackIdle
}

// IsEnded returns true once the session has been stopped.
func (p *PlayerState) IsEnded() bool {
	return p.state == PlaybackEnded
}

// PlayID returns the ID of the current slot occupancy, or zero when idle.
func (p *PlayerState) PlayID() PlayID {
	return p.playID
}

// IsCurrent reports whether id identifies the occupancy that is resolving or playing.
func (p *PlayerState) IsCurrent(id PlayID) bool {
	if p.state != PlaybackResolving && p.state != PlaybackPlaying {
		return false
	}
	return p.playID == id
}

// BeginResolving moves an entry into the slot and returns the new occupancy ID.
func (p *PlayerState) BeginResolving(entry QueueEntry) PlayID {
	p.lastID++
	p.playID = p.lastID
	p.state = PlaybackResolving
	p.entry = entry
	p.current = Track{}
	return p.playID
}

// StartPlaying marks the resolved track as playing.
// Returns false if id no longer identifies the resolving occupancy.
func (p *PlayerState) StartPlaying(id PlayID, track Track) bool {
	if p.state != PlaybackResolving || p.playID != id {
		return false
	}
	p.state = PlaybackPlaying
	p.current = track
	return true
}

// SetIdle empties the slot.
func (p *PlayerState) SetIdle() {
	if p.state == PlaybackEnded {
		return
	}
	p.state = PlaybackIdle
	p.playID = 0
	p.entry = QueueEntry{}
	p.current = Track{}
}

// End empties the slot and the queue and makes the state terminal.
func (p *PlayerState) End() {
	p.Queue.Clear()
	p.state = PlaybackEnded
	p.playID = 0
	p.entry = QueueEntry{}
	p.current = Track{}
}

// CurrentEntry returns the entry that is resolving or playing.
func (p *PlayerState) CurrentEntry() (QueueEntry, bool) {
	if p.state != PlaybackResolving && p.state != PlaybackPlaying {
		return QueueEntry{}, false
	}
	return p.entry, true
}

// CurrentTrack returns the playing track, or nil if nothing is playing.
func (p *PlayerState) CurrentTrack() *Track {
	if p.state != PlaybackPlaying {
		return nil
	}
	track := p.current
	return &track
}

// NowPlayingMessage returns the "Now Playing" message, or nil if none.
func (p *PlayerState) NowPlayingMessage() *NowPlayingMessage {
	return p.nowPlayingMessage
}

// SetNowPlayingMessage records the "Now Playing" message.
func (p *PlayerState) SetNowPlayingMessage(msg *NowPlayingMessage) {
	p.nowPlayingMessage = msg
}

// TakeNowPlayingMessage returns the "Now Playing" message and forgets it.
func (p *PlayerState) TakeNowPlayingMessage() *NowPlayingMessage {
	msg := p.nowPlayingMessage
	p.nowPlayingMessage = nil
	return msg
}
