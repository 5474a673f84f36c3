package music_player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/time/rate"

	"github.com/sglre6355/jukebot/internal/bot"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
	"github.com/sglre6355/jukebot/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/jukebot/internal/modules/music_player/presentation/discord"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var (
	_ bot.ConfigurableModule = (*MusicPlayerModule)(nil)
	_ bot.TextCommandModule  = (*MusicPlayerModule)(nil)
)

const lavalinkConnectTimeout = 30 * time.Second

var errSessionRequired = errors.New("music_player requires a Discord session")

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	autocomplete    *discord.AutocompleteHandler
	eventHandlers   *discord.EventHandlers
	lavalinkAdapter *infrastructure.LavalinkAdapter
	voiceChannel    *usecases.VoiceChannelService
	sessions        *infrastructure.MemoryRepository[*usecases.GuildController]

	// Event-driven components
	eventBus            *infrastructure.ChannelEventBus
	notificationHandler *application.NotificationEventHandler
	sessionHandler      *application.SessionEventHandler
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"join":    m.commandHandlers.HandleJoin,
		"play":    m.commandHandlers.HandlePlay,
		"stop":    m.commandHandlers.HandleStop,
		"skip":    m.commandHandlers.HandleSkip,
		"queue":   m.commandHandlers.HandleQueue,
		"delete":  m.commandHandlers.HandleDelete,
		"shuffle": m.commandHandlers.HandleShuffle,
		"clear":   m.commandHandlers.HandleClear,
	}
}

// TextCommands returns the prefixed commands for this module.
func (m *MusicPlayerModule) TextCommands() []bot.TextCommand {
	return m.commandHandlers.TextCommands()
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
		func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			m.handleInteractionCreate(s, i)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil || deps.Session.State == nil || deps.Session.State.User == nil {
		return errSessionRequired
	}
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}

	botID, err := snowflake.Parse(deps.Session.State.User.ID)
	if err != nil {
		return fmt.Errorf("invalid bot user ID: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), lavalinkConnectTimeout)
	defer cancel()

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(ctx, deps.Session, botID, infrastructure.LavalinkConfig{
		NodeName: m.config.LavalinkNodeName,
		Address:  m.config.LavalinkAddress,
		Password: m.config.LavalinkPassword,
		Secure:   m.config.LavalinkSecure,
	})
	if err != nil {
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	m.eventBus = infrastructure.NewChannelEventBus(m.config.EventBufferSize)
	m.sessions = infrastructure.NewSessionRepository()

	var resolver ports.TrackResolver = lavalinkAdapter
	if m.config.YouTubeDirect {
		resolver = infrastructure.NewYouTubeResolver(lavalinkAdapter)
	}

	trackLoader := usecases.NewTrackLoaderService(
		resolver,
		lavalinkAdapter,
		domain.ParseSearchSource(m.config.SearchSource),
		usecases.RetryPolicy{
			Attempts: m.config.ResolveAttempts,
			Delay:    m.config.ResolveRetryDelay,
		},
		rate.NewLimiter(rate.Limit(m.config.ResolveRate), m.config.ResolveBurst),
	)

	m.voiceChannel = usecases.NewVoiceChannelService(
		m.sessions,
		lavalinkAdapter,
		infrastructure.NewVoiceStateProvider(deps.Session.State),
		usecases.ControllerConfig{
			Loader:    trackLoader,
			Player:    lavalinkAdapter,
			Publisher: m.eventBus,
			NewRand: func() *rand.Rand {
				return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
			},
			PrefetchMetadata: m.config.PrefetchMetadata,
			ResolveTimeout:   usecases.DefaultResolveTimeout,
		},
		m.config.AutoLeave,
	)
	playback := usecases.NewPlaybackService(m.voiceChannel)
	queue := usecases.NewQueueService(m.voiceChannel)
	notificationChannel := usecases.NewNotificationChannelService(m.voiceChannel)

	// Create application event handlers
	m.notificationHandler = application.NewNotificationEventHandler(
		m.eventBus,
		infrastructure.NewNotifier(deps.Session),
		infrastructure.NewDiscordUserInfoProvider(deps.Session.State, deps.Session),
		notificationChannel,
	)
	m.sessionHandler = application.NewSessionEventHandler(m.eventBus)

	if err := m.notificationHandler.Start(); err != nil {
		return err
	}
	if err := m.sessionHandler.Start(); err != nil {
		return err
	}

	// Create presentation handlers
	var ownerID string
	if deps.Config != nil {
		ownerID = deps.Config.OwnerID
	}
	m.commandHandlers = discord.NewCommandHandlers(m.voiceChannel, playback, queue, ownerID)
	m.autocomplete = discord.NewAutocompleteHandler(
		usecases.NewAutocompleteService(m.voiceChannel, trackLoader),
	)
	m.eventHandlers = discord.NewEventHandlers(botID, m.voiceChannel)

	slog.Info("music_player module initialized",
		"search_source", m.config.SearchSource,
		"youtube_direct", m.config.YouTubeDirect,
	)

	return nil
}

// Shutdown ends every guild session and cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	if m.voiceChannel != nil && m.sessions != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		for _, guildID := range m.sessions.Keys() {
			if err := m.voiceChannel.Leave(ctx, usecases.LeaveInput{GuildID: guildID}); err != nil {
				slog.Warn("failed to leave voice channel", "guild", guildID, "error", err)
			}
		}
	}

	// Close event bus after the sessions so their final events are delivered
	if m.eventBus != nil {
		m.eventBus.Close()
	}

	// Close Lavalink connection
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	return nil
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}
}

func (m *MusicPlayerModule) handleInteractionCreate(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	if i.Type != discordgo.InteractionApplicationCommandAutocomplete || m.autocomplete == nil {
		return
	}

	if err := m.autocomplete.Handle(i, bot.NewDiscordResponder(s, i.Interaction)); err != nil {
		slog.Debug("failed to respond to autocomplete", "error", err)
	}
}
