package discord

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/bot"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

const (
	testGuildID        = "1"
	testTextChannelID  = "3"
	testVoiceChannelID = snowflake.ID(2)
	testUserID         = snowflake.ID(4)
	testBotID          = snowflake.ID(9)
	testOwnerID        = "42"
)

type mockResolver struct {
	mu     sync.Mutex
	tracks map[string]domain.Track
}

func (m *mockResolver) Resolve(_ context.Context, query domain.SearchQuery) (*ports.ResolvedTrack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	track, ok := m.tracks[query.Query]
	if !ok {
		return nil, ports.ErrNoMatches
	}
	return &ports.ResolvedTrack{Track: track, Handle: ports.StreamHandle{Encoded: "enc-" + track.Title}}, nil
}

type mockSearcher struct {
	tracks []ports.TrackInfo
	err    error
}

func (m *mockSearcher) Search(_ context.Context, _ domain.SearchQuery, limit int) ([]ports.TrackInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && len(m.tracks) > limit {
		return m.tracks[:limit], nil
	}
	return m.tracks, nil
}

type mockPlayer struct{}

// brokenStream is a handle the player refuses to open.
const brokenStream = "enc-Broken"

func (mockPlayer) Open(_ context.Context, handle ports.StreamHandle) (*ports.AudioStream, error) {
	if handle.Encoded == brokenStream {
		return nil, errors.New("lavalink rejected the track")
	}
	return &ports.AudioStream{Encoded: handle.Encoded}, nil
}

func (mockPlayer) Play(context.Context, snowflake.ID, *ports.AudioStream, ports.FinishedFunc) error {
	return nil
}

func (mockPlayer) Stop(context.Context, snowflake.ID) error {
	return nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(domain.Event) error { return nil }

type mockSessions struct {
	mu       sync.Mutex
	sessions map[snowflake.ID]*usecases.GuildController
}

func (m *mockSessions) Get(guildID snowflake.ID) (*usecases.GuildController, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	controller, ok := m.sessions[guildID]
	return controller, ok
}

func (m *mockSessions) Save(guildID snowflake.ID, controller *usecases.GuildController) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[guildID] = controller
}

func (m *mockSessions) CompareAndDelete(guildID snowflake.ID, controller *usecases.GuildController) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[guildID] != controller {
		return false
	}
	delete(m.sessions, guildID)
	return true
}

type mockVoice struct {
	mu     sync.Mutex
	joined []snowflake.ID
	leaves int
	others int
}

func (m *mockVoice) JoinChannel(_ context.Context, _, channelID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joined = append(m.joined, channelID)
	return nil
}

func (m *mockVoice) LeaveChannel(context.Context, snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves++
	return nil
}

func (m *mockVoice) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	if userID == testUserID {
		return testVoiceChannelID, nil
	}
	return 0, nil
}

func (m *mockVoice) CountOtherMembers(_, _ snowflake.ID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.others, nil
}

type fixture struct {
	handlers     *CommandHandlers
	autocomplete *AutocompleteHandler
	events       *EventHandlers
	sessions     *mockSessions
	voice        *mockVoice
}

func track(title string, seconds int) domain.Track {
	return domain.Track{
		Title:       title,
		Duration:    domain.DurationSeconds(seconds),
		OriginalURL: "https://www.youtube.com/watch?v=" + title,
		SourceName:  "youtube",
	}
}

func newFixture(t *testing.T, searcher ports.TrackSearcher, tracks ...domain.Track) *fixture {
	t.Helper()

	resolver := &mockResolver{tracks: make(map[string]domain.Track)}
	for _, tr := range tracks {
		resolver.tracks[tr.Title] = tr
	}

	f := &fixture{
		sessions: &mockSessions{sessions: make(map[snowflake.ID]*usecases.GuildController)},
		voice:    &mockVoice{others: 1},
	}

	loader := usecases.NewTrackLoaderService(
		resolver,
		searcher,
		domain.SourceYouTube,
		usecases.RetryPolicy{Attempts: 1, Sleep: func(context.Context, time.Duration) error { return nil }},
		nil,
	)
	voiceChannel := usecases.NewVoiceChannelService(
		f.sessions,
		f.voice,
		f.voice,
		usecases.ControllerConfig{
			Loader:    loader,
			Player:    mockPlayer{},
			Publisher: nopPublisher{},
			NewRand: func() *rand.Rand {
				return rand.New(rand.NewPCG(1, 2))
			},
			ResolveTimeout: time.Second,
		},
		true,
	)

	f.handlers = NewCommandHandlers(
		voiceChannel,
		usecases.NewPlaybackService(voiceChannel),
		usecases.NewQueueService(voiceChannel),
		testOwnerID,
	)
	f.autocomplete = NewAutocompleteHandler(usecases.NewAutocompleteService(voiceChannel, loader))
	f.events = NewEventHandlers(testBotID, voiceChannel)

	t.Cleanup(func() {
		_ = voiceChannel.Leave(context.Background(), usecases.LeaveInput{GuildID: 1})
	})

	return f
}

func interaction(
	name string,
	options ...*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionApplicationCommand,
			GuildID:   testGuildID,
			ChannelID: testTextChannelID,
			Member: &discordgo.Member{
				Nick: "listener",
				User: &discordgo.User{ID: testUserID.String(), Username: "user"},
			},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: options,
			},
		},
	}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func message(content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{
		Message: &discordgo.Message{
			GuildID:   testGuildID,
			ChannelID: testTextChannelID,
			Content:   content,
			Author:    &discordgo.User{ID: testUserID.String(), Username: "user", GlobalName: "Listener"},
		},
	}
}

func intOption(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}

// respondedEmbed returns the single embed of the last interaction response.
func respondedEmbed(t *testing.T, r *bot.MockResponder) *discordgo.MessageEmbed {
	t.Helper()
	if r.LastResponse == nil || r.LastResponse.Data == nil {
		t.Fatal("expected a response")
	}
	if len(r.LastResponse.Data.Embeds) != 1 {
		t.Fatalf("expected one embed, got %d", len(r.LastResponse.Data.Embeds))
	}
	return r.LastResponse.Data.Embeds[0]
}

// repliedEmbed returns the single embed of the last text reply.
func repliedEmbed(t *testing.T, r *bot.MockReplier) *discordgo.MessageEmbed {
	t.Helper()
	last := r.LastReply()
	if last == nil {
		t.Fatal("expected a reply")
	}
	if len(last.Embeds) != 1 {
		t.Fatalf("expected one embed, got %d", len(last.Embeds))
	}
	return last.Embeds[0]
}
