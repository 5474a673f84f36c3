package usecases

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

const (
	testGuildID        = snowflake.ID(1)
	testVoiceChannelID = snowflake.ID(2)
	testTextChannelID  = snowflake.ID(3)
	testUserID         = snowflake.ID(4)
)

var testRequester = domain.Requester{ID: testUserID, Name: "listener"}

func resolvedTrack(title string, duration domain.Duration) *ports.ResolvedTrack {
	return &ports.ResolvedTrack{
		Track: domain.Track{
			Identifier: "id-" + title,
			Title:      title,
			Duration:   duration,
			SourceName: "youtube",
		},
		Handle: ports.StreamHandle{Encoded: "encoded-" + title},
	}
}

// mockTrackResolver resolves queries from a fixed table.
// resolveFunc, when set, takes precedence over the table.
type mockTrackResolver struct {
	mu          sync.Mutex
	tracks      map[string]*ports.ResolvedTrack
	resolveFunc func(ctx context.Context, query domain.SearchQuery) (*ports.ResolvedTrack, error)
	calls       []string
}

func newMockTrackResolver(tracks ...*ports.ResolvedTrack) *mockTrackResolver {
	m := &mockTrackResolver{tracks: make(map[string]*ports.ResolvedTrack)}
	for _, track := range tracks {
		m.tracks[track.Track.Title] = track
	}
	return m
}

func (m *mockTrackResolver) Resolve(
	ctx context.Context,
	query domain.SearchQuery,
) (*ports.ResolvedTrack, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query.Query)
	resolveFunc := m.resolveFunc
	track, ok := m.tracks[query.Query]
	m.mu.Unlock()

	if resolveFunc != nil {
		return resolveFunc(ctx, query)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrNoMatches, query.Query)
	}
	copied := *track
	return &copied, nil
}

func (m *mockTrackResolver) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// gatedResolver blocks resolution of the gated queries until release is called.
type gatedResolver struct {
	*mockTrackResolver
	gates map[string]chan struct{}
}

func newGatedResolver(inner *mockTrackResolver, gated ...string) *gatedResolver {
	g := &gatedResolver{mockTrackResolver: inner, gates: make(map[string]chan struct{})}
	for _, query := range gated {
		g.gates[query] = make(chan struct{})
	}
	inner.resolveFunc = func(ctx context.Context, query domain.SearchQuery) (*ports.ResolvedTrack, error) {
		if gate, ok := g.gates[query.Query]; ok {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		inner.mu.Lock()
		track, ok := inner.tracks[query.Query]
		inner.mu.Unlock()
		if !ok {
			return nil, ports.ErrNoMatches
		}
		copied := *track
		return &copied, nil
	}
	return g
}

func (g *gatedResolver) release(query string) {
	close(g.gates[query])
}

type mockTrackSearcher struct {
	tracks []ports.TrackInfo
	err    error
}

func (m *mockTrackSearcher) Search(
	_ context.Context,
	_ domain.SearchQuery,
	_ int,
) ([]ports.TrackInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tracks, nil
}

// mockAudioPlayer records plays and keeps the completion callback of the current one.
type mockAudioPlayer struct {
	mu         sync.Mutex
	openErr    error
	playErr    error
	stopErr    error
	fireOnStop bool // Stop fires the pending callback like a real transport
	played     []ports.AudioStream
	stops      int
	pending    ports.FinishedFunc
}

func (m *mockAudioPlayer) Open(_ context.Context, handle ports.StreamHandle) (*ports.AudioStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return nil, m.openErr
	}
	return &ports.AudioStream{Encoded: handle.Encoded}, nil
}

func (m *mockAudioPlayer) Play(
	_ context.Context,
	_ snowflake.ID,
	stream *ports.AudioStream,
	onFinished ports.FinishedFunc,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return m.playErr
	}
	m.played = append(m.played, *stream)
	m.pending = onFinished
	return nil
}

func (m *mockAudioPlayer) Stop(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	m.stops++
	if m.stopErr != nil {
		m.mu.Unlock()
		return m.stopErr
	}
	callback := m.pending
	if m.fireOnStop {
		m.pending = nil
	}
	m.mu.Unlock()

	if m.fireOnStop && callback != nil {
		go callback(domain.TrackEndStopped)
	}
	return nil
}

// takeCallback returns the completion callback of the current play.
func (m *mockAudioPlayer) takeCallback(t *testing.T) ports.FinishedFunc {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		t.Fatal("expected a pending completion callback")
	}
	callback := m.pending
	m.pending = nil
	return callback
}

// finish ends the current play and waits for the controller to advance.
func (m *mockAudioPlayer) finish(t *testing.T, reason domain.TrackEndReason) {
	t.Helper()
	m.takeCallback(t)(reason)
}

func (m *mockAudioPlayer) playedTitles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	titles := make([]string, len(m.played))
	for i, stream := range m.played {
		titles[i] = stream.Track.Title
	}
	return titles
}

func (m *mockAudioPlayer) stopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

type mockEventPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (m *mockEventPublisher) Publish(event domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func eventsOf[T domain.Event](m *mockEventPublisher) []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []T
	for _, event := range m.events {
		if typed, ok := event.(T); ok {
			result = append(result, typed)
		}
	}
	return result
}

type mockSessionRepository struct {
	mu       sync.Mutex
	sessions map[snowflake.ID]*GuildController
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[snowflake.ID]*GuildController)}
}

func (m *mockSessionRepository) Get(guildID snowflake.ID) (*GuildController, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	controller, ok := m.sessions[guildID]
	return controller, ok
}

func (m *mockSessionRepository) Save(guildID snowflake.ID, controller *GuildController) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[guildID] = controller
}

func (m *mockSessionRepository) CompareAndDelete(guildID snowflake.ID, controller *GuildController) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[guildID] != controller {
		return false
	}
	delete(m.sessions, guildID)
	return true
}

type mockVoiceConnection struct {
	mu       sync.Mutex
	joinErr  error
	leaveErr error
	joined   []snowflake.ID
	leaves   int

	// blocked holds JoinChannel for a guild until its channel is closed.
	blocked map[snowflake.ID]chan struct{}
	waiting chan snowflake.ID
}

func (m *mockVoiceConnection) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	m.mu.Lock()
	release := m.blocked[guildID]
	m.mu.Unlock()
	if release != nil {
		if m.waiting != nil {
			m.waiting <- guildID
		}
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, channelID)
	return nil
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves++
	return m.leaveErr
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	others   map[snowflake.ID]int          // channelID -> members other than the bot
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

func (m *mockVoiceStateProvider) CountOtherMembers(_, channelID snowflake.ID) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.others[channelID], nil
}

func noSleep(_ context.Context, _ time.Duration) error {
	return nil
}

func newTestLoader(resolver ports.TrackResolver) *TrackLoaderService {
	return NewTrackLoaderService(
		resolver,
		nil,
		domain.SourceYouTube,
		RetryPolicy{Attempts: 2, Delay: time.Second, Sleep: noSleep},
		nil,
	)
}

type controllerFixture struct {
	controller *GuildController
	resolver   *mockTrackResolver
	player     *mockAudioPlayer
	publisher  *mockEventPublisher
}

func newControllerConfig(
	resolver ports.TrackResolver,
	player *mockAudioPlayer,
	publisher *mockEventPublisher,
	prefetch bool,
) ControllerConfig {
	return ControllerConfig{
		Loader:    newTestLoader(resolver),
		Player:    player,
		Publisher: publisher,
		NewRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(1, 2))
		},
		PrefetchMetadata: prefetch,
		ResolveTimeout:   5 * time.Second,
	}
}

func newControllerFixture(t *testing.T, resolver *mockTrackResolver, prefetch bool) *controllerFixture {
	t.Helper()

	f := &controllerFixture{
		resolver:  resolver,
		player:    &mockAudioPlayer{},
		publisher: &mockEventPublisher{},
	}
	state := domain.NewPlayerState(testGuildID, testVoiceChannelID, testTextChannelID)
	f.controller = NewGuildController(state, newControllerConfig(resolver, f.player, f.publisher, prefetch))

	t.Cleanup(func() {
		_ = f.controller.Stop(context.Background(), domain.SessionEndStopped)
	})

	return f
}

func (f *controllerFixture) play(t *testing.T, query string) *PlayOutput {
	t.Helper()
	output, err := f.controller.Play(context.Background(), PlayInput{
		Query:                 query,
		Requester:             testRequester,
		NotificationChannelID: testTextChannelID,
	})
	if err != nil {
		t.Fatalf("Play(%q) failed: %v", query, err)
	}
	return output
}

func (f *controllerFixture) snapshot(t *testing.T) *Snapshot {
	t.Helper()
	snapshot, err := f.controller.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	return snapshot
}

func entryQueries(entries []domain.QueueEntry) []string {
	queries := make([]string, len(entries))
	for i, entry := range entries {
		queries[i] = entry.Query
	}
	return queries
}

// waitFor polls cond until it holds or a second passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
