package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// DefaultResolveTimeout bounds one resolve-and-open attempt made by a controller.
const DefaultResolveTimeout = 30 * time.Second

// ControllerConfig holds the dependencies shared by every GuildController.
type ControllerConfig struct {
	Loader    *TrackLoaderService
	Player    ports.AudioPlayer
	Publisher ports.EventPublisher

	// NewRand returns the random source used by Shuffle. Each controller gets its own.
	NewRand func() *rand.Rand

	// PrefetchMetadata resolves queued requests right away so listings show real titles.
	PrefetchMetadata bool

	ResolveTimeout time.Duration
}

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	Query                 string
	Requester             domain.Requester
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// PlayOutput contains the result of the Play use case.
type PlayOutput struct {
	Started  *domain.Track      // Track that started playing, nil if the request only got queued
	Queued   *domain.QueueEntry // The caller's entry if it was queued
	Position int                // 1-based queue position of Queued
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	Skipped domain.Track
	UpNext  *domain.QueueEntry // nil if the queue was empty and playback stopped
}

// Snapshot is a read-only view of a guild session.
type Snapshot struct {
	State                 domain.PlaybackState
	Current               *domain.QueueEntry // Entry being resolved or played
	Playing               *domain.Track      // Resolved track, nil unless playing
	Entries               []domain.QueueEntry
	TotalDuration         domain.Duration
	VoiceChannelID        snowflake.ID
	NotificationChannelID snowflake.ID
}

type playResult struct {
	track *domain.Track
	err   error
}

// GuildController runs the playback state machine of one guild.
// All queue and slot mutation happens on a single goroutine that drains inbox;
// resolver calls run on helper goroutines that post their results back.
type GuildController struct {
	guildID        snowflake.ID
	state          *domain.PlayerState
	loader         *TrackLoaderService
	player         ports.AudioPlayer
	publisher      ports.EventPublisher
	rng            *rand.Rand
	prefetch       bool
	resolveTimeout time.Duration

	inbox   chan func()
	stopped chan struct{}
}

// NewGuildController starts a controller for the given session state.
// The controller runs until Stop is called.
func NewGuildController(state *domain.PlayerState, cfg ControllerConfig) *GuildController {
	newRand := cfg.NewRand
	if newRand == nil {
		newRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	timeout := cfg.ResolveTimeout
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}

	c := &GuildController{
		guildID:        state.GuildID(),
		state:          state,
		loader:         cfg.Loader,
		player:         cfg.Player,
		publisher:      cfg.Publisher,
		rng:            newRand(),
		prefetch:       cfg.PrefetchMetadata,
		resolveTimeout: timeout,
		inbox:          make(chan func()),
		stopped:        make(chan struct{}),
	}

	go c.run()

	return c
}

// GuildID returns the guild the controller belongs to.
func (c *GuildController) GuildID() snowflake.ID {
	return c.guildID
}

// Done is closed once the session has ended.
func (c *GuildController) Done() <-chan struct{} {
	return c.stopped
}

func (c *GuildController) run() {
	defer close(c.stopped)

	for {
		fn := <-c.inbox
		fn()
		if c.state.IsEnded() {
			slog.Debug("guild controller stopped", "guild", c.guildID)
			return
		}
	}
}

// do runs fn on the controller goroutine and waits for its result.
func (c *GuildController) do(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	msg := func() { errCh <- fn() }

	select {
	case c.inbox <- msg:
	case <-c.stopped:
		return ErrNoActiveSession
	case <-ctx.Done():
		return ctx.Err()
	}

	return <-errCh
}

// post hands fn to the controller goroutine without waiting for it to run.
// Returns false if the session has ended.
func (c *GuildController) post(fn func()) bool {
	select {
	case c.inbox <- fn:
		return true
	case <-c.stopped:
		return false
	}
}

// Play starts the request if nothing is playing, otherwise queues it.
// When it starts right away, Play returns once the track is playing or has failed.
func (c *GuildController) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	entry := domain.NewQueueEntry(input.Query, input.Requester, input.NotificationChannelID)
	output := &PlayOutput{}
	var started <-chan playResult

	err := c.do(ctx, func() error {
		if input.NotificationChannelID != 0 {
			c.state.SetNotificationChannelID(input.NotificationChannelID)
		}

		if !c.state.IsIdle() {
			c.state.Queue.Append(entry)
			output.Queued = &entry
			output.Position = c.state.Queue.Len()
			return nil
		}

		if c.state.Queue.IsEmpty() {
			started = c.start(entry, false)
			return nil
		}

		// An auto-advance failure left entries behind; resume from the head.
		c.state.Queue.Append(entry)
		head, err := c.state.Queue.PopFront()
		if err != nil {
			return err
		}
		output.Queued = &entry
		output.Position = c.state.Queue.Len()
		started = c.start(head, false)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if started != nil {
		select {
		case res := <-started:
			if res.err != nil {
				return nil, res.err
			}
			output.Started = res.track
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if output.Started == nil && output.Queued != nil && c.prefetch {
		c.refine(ctx, output.Queued)
	}

	return output, nil
}

// refine resolves a queued entry's metadata and patches it in the queue.
// Failures are ignored; the entry is resolved again when it is played.
func (c *GuildController) refine(ctx context.Context, entry *domain.QueueEntry) {
	loaded, err := c.loader.LoadTrack(ctx, LoadTrackInput{
		Query:     entry.Query,
		Requester: entry.Requester(),
	})
	if err != nil {
		slog.Debug("failed to prefetch track metadata",
			"guild", c.guildID, "query", entry.Query, "error", err)
		return
	}

	_ = c.do(ctx, func() error {
		if c.state.Queue.UpdateTrack(entry.ID, loaded.Track) {
			entry.Track = loaded.Track
		}
		return nil
	})
}

// Skip stops the current track. The completion callback then advances to the next entry.
// With an empty queue playback stops and UpNext is nil.
func (c *GuildController) Skip(ctx context.Context) (*SkipOutput, error) {
	var output *SkipOutput

	err := c.do(ctx, func() error {
		current := c.state.CurrentTrack()
		if current == nil {
			return ErrNotPlaying
		}

		if err := c.player.Stop(ctx, c.guildID); err != nil {
			return err
		}

		output = &SkipOutput{Skipped: *current}
		if next, ok := c.state.Queue.Peek(); ok {
			output.UpNext = &next
			return nil
		}

		c.publish(domain.PlaybackFinishedEvent{
			GuildID:  c.guildID,
			Reason:   domain.TrackEndStopped,
			Finished: c.state.TakeNowPlayingMessage(),
		})
		c.state.SetIdle()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// Stop ends the session: playback stops, the queue is cleared and the controller exits.
func (c *GuildController) Stop(ctx context.Context, cause string) error {
	return c.do(ctx, func() error {
		if err := c.player.Stop(ctx, c.guildID); err != nil {
			slog.Warn("failed to stop player", "guild", c.guildID, "error", err)
		}

		wasActive := !c.state.IsIdle()
		msg := c.state.TakeNowPlayingMessage()
		c.state.End()

		if wasActive || msg != nil {
			c.publish(domain.PlaybackFinishedEvent{
				GuildID:  c.guildID,
				Reason:   domain.TrackEndStopped,
				Finished: msg,
			})
		}
		c.publish(domain.SessionEndedEvent{GuildID: c.guildID, Cause: cause})

		return nil
	})
}

// Delete removes the entry at the 1-based queue position.
func (c *GuildController) Delete(ctx context.Context, position int) (domain.QueueEntry, error) {
	var removed domain.QueueEntry

	err := c.do(ctx, func() error {
		var err error
		removed, err = c.state.Queue.DeleteAt(position)
		return err
	})

	return removed, err
}

// Shuffle randomly reorders the queue.
func (c *GuildController) Shuffle(ctx context.Context) error {
	return c.do(ctx, func() error {
		c.state.Queue.Shuffle(c.rng)
		return nil
	})
}

// Clear removes every queued entry and returns how many were removed.
// The current track keeps playing.
func (c *GuildController) Clear(ctx context.Context) (int, error) {
	var count int

	err := c.do(ctx, func() error {
		count = c.state.Queue.Clear()
		return nil
	})

	return count, err
}

// Snapshot returns the current state of the session.
func (c *GuildController) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snapshot *Snapshot

	err := c.do(ctx, func() error {
		snapshot = &Snapshot{
			State:                 c.state.State(),
			Playing:               c.state.CurrentTrack(),
			Entries:               c.state.Queue.Entries(),
			TotalDuration:         c.state.Queue.TotalDuration(),
			VoiceChannelID:        c.state.VoiceChannelID(),
			NotificationChannelID: c.state.NotificationChannelID(),
		}
		if entry, ok := c.state.CurrentEntry(); ok {
			snapshot.Current = &entry
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// SetNotificationChannel updates the channel used for session-wide notifications.
func (c *GuildController) SetNotificationChannel(ctx context.Context, channelID snowflake.ID) error {
	return c.do(ctx, func() error {
		c.state.SetNotificationChannelID(channelID)
		return nil
	})
}

// SetVoiceChannel records that the bot now lives in another voice channel.
func (c *GuildController) SetVoiceChannel(ctx context.Context, channelID snowflake.ID) error {
	return c.do(ctx, func() error {
		c.state.SetVoiceChannelID(channelID)
		return nil
	})
}

// AttachNowPlaying records the "Now Playing" message of a play.
// Returns false if that play has already finished, in which case the message is not kept.
func (c *GuildController) AttachNowPlaying(
	ctx context.Context,
	id domain.PlayID,
	msg domain.NowPlayingMessage,
) (bool, error) {
	var attached bool

	err := c.do(ctx, func() error {
		if !c.state.IsCurrent(id) {
			return nil
		}
		c.state.SetNowPlayingMessage(&msg)
		attached = true
		return nil
	})

	return attached, err
}

// start moves entry into the slot and resolves it on a helper goroutine.
// Must run on the controller goroutine. The returned channel receives exactly one result.
func (c *GuildController) start(entry domain.QueueEntry, auto bool) <-chan playResult {
	id := c.state.BeginResolving(entry)
	result := make(chan playResult, 1)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.resolveTimeout)
		defer cancel()

		stream, err := c.open(ctx, entry)
		posted := c.post(func() {
			result <- c.onOpened(id, entry, stream, err, auto)
		})
		if !posted {
			result <- playResult{err: ErrNoActiveSession}
		}
	}()

	return result
}

func (c *GuildController) open(ctx context.Context, entry domain.QueueEntry) (*ports.AudioStream, error) {
	loaded, err := c.loader.LoadTrack(ctx, LoadTrackInput{
		Query:     entry.Query,
		Requester: entry.Requester(),
	})
	if err != nil {
		return nil, err
	}

	stream, err := c.player.Open(ctx, loaded.Handle)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStreamOpenFailed, err)
	}
	stream.Track = loaded.Track

	return stream, nil
}

func (c *GuildController) onOpened(
	id domain.PlayID,
	entry domain.QueueEntry,
	stream *ports.AudioStream,
	err error,
	auto bool,
) playResult {
	if !c.state.IsCurrent(id) {
		slog.Debug("discarding stale resolution", "guild", c.guildID, "query", entry.Query)
		return playResult{err: ErrNoActiveSession}
	}

	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.resolveTimeout)
		defer cancel()

		if playErr := c.player.Play(ctx, c.guildID, stream, c.finishedCallback(id)); playErr != nil {
			err = fmt.Errorf("%w: %w", ErrStreamOpenFailed, playErr)
		}
	}

	if err != nil {
		c.state.SetIdle()
		if auto {
			err = fmt.Errorf("%w: %w", ErrAutoAdvanceFailure, err)
			c.publish(domain.AutoAdvanceFailedEvent{
				GuildID: c.guildID,
				Query:   entry.Query,
				Err:     err,
			})
		}
		return playResult{err: err}
	}

	track := stream.Track
	c.state.StartPlaying(id, track)
	c.publishStarted(id, entry, track)

	return playResult{track: &track}
}

// finishedCallback returns the completion callback for one play.
// It runs on a transport goroutine and blocks until the next entry has started or failed.
func (c *GuildController) finishedCallback(id domain.PlayID) ports.FinishedFunc {
	return func(reason domain.TrackEndReason) {
		var next <-chan playResult

		err := c.do(context.Background(), func() error {
			next = c.onFinished(id, reason)
			return nil
		})
		if err == nil && next != nil {
			err = (<-next).err
		}

		if err != nil && !errors.Is(err, ErrNoActiveSession) {
			slog.Error("failed to advance queue", "guild", c.guildID, "error", err)
		}
	}
}

func (c *GuildController) onFinished(id domain.PlayID, reason domain.TrackEndReason) <-chan playResult {
	if !c.state.IsCurrent(id) {
		slog.Debug("ignoring stale track completion", "guild", c.guildID, "reason", reason)
		return nil
	}

	if reason.IsFailure() {
		slog.Warn("track ended with an error", "guild", c.guildID, "reason", reason)
	}

	c.publish(domain.PlaybackFinishedEvent{
		GuildID:  c.guildID,
		Reason:   reason,
		Finished: c.state.TakeNowPlayingMessage(),
	})

	next, err := c.state.Queue.PopFront()
	if err != nil {
		c.state.SetIdle()
		return nil
	}

	return c.start(next, true)
}

func (c *GuildController) publishStarted(id domain.PlayID, entry domain.QueueEntry, track domain.Track) {
	channelID := c.state.NotificationChannelID()
	if channelID == 0 {
		channelID = entry.NotificationChannelID
	}

	var upNext *domain.Track
	if next, ok := c.state.Queue.Peek(); ok {
		upNext = &next.Track
	}

	c.publish(domain.PlaybackStartedEvent{
		GuildID:               c.guildID,
		PlayID:                id,
		Track:                 track,
		NotificationChannelID: channelID,
		Remaining:             c.state.Queue.Len(),
		RemainingDuration:     c.state.Queue.TotalDuration(),
		UpNext:                upNext,
	})
}

func (c *GuildController) publish(event domain.Event) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(event); err != nil {
		slog.Warn("failed to publish event",
			"guild", c.guildID, "type", fmt.Sprintf("%T", event), "error", err)
	}
}
