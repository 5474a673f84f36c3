package infrastructure

import (
	"sync"

	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// playUserData is attached to every track sent to Lavalink and echoed back in its events.
type playUserData struct {
	Token uint64 `json:"playToken"`
}

// playToken extracts the token Play attached to track, or 0 if there is none.
func playToken(track lavalink.Track) uint64 {
	if len(track.UserData) == 0 {
		return 0
	}
	var data playUserData
	if err := track.UserData.Unmarshal(&data); err != nil {
		return 0
	}
	return data.Token
}

type pendingCompletion struct {
	token      uint64
	encoded    string
	onFinished ports.FinishedFunc
}

// completionRegistry holds the completion callback of the active track of each guild.
// A callback fires at most once, always on a new goroutine.
type completionRegistry struct {
	mu        sync.Mutex
	pending   map[snowflake.ID]pendingCompletion
	lastToken uint64
}

func newCompletionRegistry() *completionRegistry {
	return &completionRegistry{pending: make(map[snowflake.ID]pendingCompletion)}
}

// register installs the callback for the track now playing in the guild and
// returns the token identifying this play.
// A callback still pending for the guild fires with TrackEndReplaced.
func (r *completionRegistry) register(
	guildID snowflake.ID,
	encoded string,
	onFinished ports.FinishedFunc,
) uint64 {
	r.mu.Lock()
	r.lastToken++
	token := r.lastToken
	previous, ok := r.pending[guildID]
	r.pending[guildID] = pendingCompletion{token: token, encoded: encoded, onFinished: onFinished}
	r.mu.Unlock()

	if ok {
		go previous.onFinished(domain.TrackEndReplaced)
	}
	return token
}

// complete fires the pending callback if the event belongs to the guild's active play.
// Events carrying a token match on it; events without one fall back to the encoded track.
func (r *completionRegistry) complete(
	guildID snowflake.ID,
	token uint64,
	encoded string,
	reason domain.TrackEndReason,
) bool {
	r.mu.Lock()
	current, ok := r.pending[guildID]
	if !ok || !current.matches(token, encoded) {
		r.mu.Unlock()
		return false
	}
	delete(r.pending, guildID)
	r.mu.Unlock()

	go current.onFinished(reason)
	return true
}

func (p pendingCompletion) matches(token uint64, encoded string) bool {
	if token != 0 {
		return p.token == token
	}
	return p.encoded == encoded
}

// cancel forgets the registration for token without firing it.
func (r *completionRegistry) cancel(guildID snowflake.ID, token uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.pending[guildID]; ok && current.token == token {
		delete(r.pending, guildID)
	}
}

// drop fires the guild's pending callback with TrackEndCleanup.
func (r *completionRegistry) drop(guildID snowflake.ID) {
	r.mu.Lock()
	current, ok := r.pending[guildID]
	delete(r.pending, guildID)
	r.mu.Unlock()

	if ok {
		go current.onFinished(domain.TrackEndCleanup)
	}
}
