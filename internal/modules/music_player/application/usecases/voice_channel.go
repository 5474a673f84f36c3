package usecases

import (
	"context"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	VoiceChannelID        snowflake.ID // Optional: specific channel to join (0 means use user's channel)
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID snowflake.ID
	Controller     *GuildController
}

// LeaveInput contains the input for the Leave use case.
type LeaveInput struct {
	GuildID snowflake.ID
}

// BotVoiceStateChangeInput contains the input for handling bot voice state changes.
type BotVoiceStateChangeInput struct {
	GuildID      snowflake.ID
	NewChannelID *snowflake.ID // nil means disconnected
}

// VoiceActivityInput contains the input for handling a member joining or leaving voice.
type VoiceActivityInput struct {
	GuildID snowflake.ID
}

// VoiceChannelService manages guild sessions and the bot's voice connections.
type VoiceChannelService struct {
	mu         sync.Mutex
	guildLocks map[snowflake.ID]*sync.Mutex

	sessions        SessionRepository
	voiceConnection ports.VoiceConnection
	voiceState      ports.VoiceStateProvider
	controllerCfg   ControllerConfig
	autoLeave       bool
}

// NewVoiceChannelService creates a new VoiceChannelService.
// When autoLeave is set the bot leaves channels where it is the only member left.
func NewVoiceChannelService(
	sessions SessionRepository,
	voiceConnection ports.VoiceConnection,
	voiceState ports.VoiceStateProvider,
	controllerCfg ControllerConfig,
	autoLeave bool,
) *VoiceChannelService {
	return &VoiceChannelService{
		guildLocks:      make(map[snowflake.ID]*sync.Mutex),
		sessions:        sessions,
		voiceConnection: voiceConnection,
		voiceState:      voiceState,
		controllerCfg:   controllerCfg,
		autoLeave:       autoLeave,
	}
}

// Session returns the controller of the guild's active session.
func (v *VoiceChannelService) Session(guildID snowflake.ID) (*GuildController, error) {
	controller, ok := v.sessions.Get(guildID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	return controller, nil
}

// Join connects the bot, deafened, to a voice channel and creates the guild session
// if there is none yet.
func (v *VoiceChannelService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	voiceChannelID := input.VoiceChannelID
	if voiceChannelID == 0 {
		userChannel, err := v.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
		if err != nil {
			return nil, err
		}
		if userChannel == 0 {
			return nil, ErrNotInVoiceChannel
		}
		voiceChannelID = userChannel
	}

	unlock := v.lockGuild(input.GuildID)
	defer unlock()

	existing, ok := v.sessions.Get(input.GuildID)
	if ok {
		snapshot, err := existing.Snapshot(ctx)
		if err == nil && snapshot.VoiceChannelID == voiceChannelID {
			if input.NotificationChannelID != 0 {
				if err := existing.SetNotificationChannel(ctx, input.NotificationChannelID); err != nil {
					return nil, err
				}
			}
			return &JoinOutput{VoiceChannelID: voiceChannelID, Controller: existing}, nil
		}
		if err != nil {
			// The session ended on its own; start over.
			v.sessions.CompareAndDelete(input.GuildID, existing)
			ok = false
		}
	}

	if err := v.voiceConnection.JoinChannel(ctx, input.GuildID, voiceChannelID); err != nil {
		return nil, err
	}

	if ok {
		// Moving channels keeps the queue
		if err := existing.SetVoiceChannel(ctx, voiceChannelID); err != nil {
			return nil, err
		}
		if input.NotificationChannelID != 0 {
			if err := existing.SetNotificationChannel(ctx, input.NotificationChannelID); err != nil {
				return nil, err
			}
		}
		return &JoinOutput{VoiceChannelID: voiceChannelID, Controller: existing}, nil
	}

	state := domain.NewPlayerState(input.GuildID, voiceChannelID, input.NotificationChannelID)
	controller := NewGuildController(state, v.controllerCfg)
	v.sessions.Save(input.GuildID, controller)

	slog.Info("joined voice channel", "guild", input.GuildID, "channel", voiceChannelID)

	return &JoinOutput{VoiceChannelID: voiceChannelID, Controller: controller}, nil
}

// Leave stops playback, clears the queue and disconnects from voice.
func (v *VoiceChannelService) Leave(ctx context.Context, input LeaveInput) error {
	return v.end(ctx, input.GuildID, domain.SessionEndStopped, true)
}

// HandleBotVoiceStateChange handles external voice state changes (bot moved or disconnected).
// This should be called when the bot's voice state changes due to external factors
// (e.g., being moved by a user or disconnected by Discord).
func (v *VoiceChannelService) HandleBotVoiceStateChange(
	ctx context.Context,
	input BotVoiceStateChangeInput,
) {
	controller, ok := v.sessions.Get(input.GuildID)
	if !ok {
		return
	}

	if input.NewChannelID == nil {
		if err := v.end(ctx, input.GuildID, domain.SessionEndDisconnected, false); err != nil {
			slog.Debug("session already ended", "guild", input.GuildID, "error", err)
		}
		return
	}

	if err := controller.SetVoiceChannel(ctx, *input.NewChannelID); err != nil {
		slog.Debug("failed to record voice channel move", "guild", input.GuildID, "error", err)
	}
}

// HandleVoiceActivity leaves the voice channel if the bot is the only member left in it.
func (v *VoiceChannelService) HandleVoiceActivity(ctx context.Context, input VoiceActivityInput) {
	if !v.autoLeave {
		return
	}

	controller, ok := v.sessions.Get(input.GuildID)
	if !ok {
		return
	}

	snapshot, err := controller.Snapshot(ctx)
	if err != nil {
		return
	}

	others, err := v.voiceState.CountOtherMembers(input.GuildID, snapshot.VoiceChannelID)
	if err != nil {
		slog.Warn("failed to count voice channel members", "guild", input.GuildID, "error", err)
		return
	}
	if others > 0 {
		return
	}

	slog.Info("leaving empty voice channel", "guild", input.GuildID, "channel", snapshot.VoiceChannelID)
	if err := v.end(ctx, input.GuildID, domain.SessionEndAlone, true); err != nil {
		slog.Warn("failed to leave voice channel", "guild", input.GuildID, "error", err)
	}
}

// lockGuild serializes session changes within one guild and returns the unlock func.
func (v *VoiceChannelService) lockGuild(guildID snowflake.ID) func() {
	v.mu.Lock()
	lock, ok := v.guildLocks[guildID]
	if !ok {
		lock = &sync.Mutex{}
		v.guildLocks[guildID] = lock
	}
	v.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (v *VoiceChannelService) end(
	ctx context.Context,
	guildID snowflake.ID,
	cause string,
	disconnect bool,
) error {
	unlock := v.lockGuild(guildID)
	defer unlock()

	controller, ok := v.sessions.Get(guildID)
	if !ok {
		return ErrNoActiveSession
	}

	stopErr := controller.Stop(ctx, cause)
	v.sessions.CompareAndDelete(guildID, controller)
	if stopErr != nil {
		return stopErr
	}

	if disconnect {
		if err := v.voiceConnection.LeaveChannel(ctx, guildID); err != nil {
			return err
		}
	}

	return nil
}
