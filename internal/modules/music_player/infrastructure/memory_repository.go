package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/usecases"
)

// MemoryRepository is an in-memory per-guild store.
type MemoryRepository[T comparable] struct {
	mu     sync.RWMutex
	values map[snowflake.ID]T
}

// NewMemoryRepository creates a new MemoryRepository.
func NewMemoryRepository[T comparable]() *MemoryRepository[T] {
	return &MemoryRepository[T]{
		values: make(map[snowflake.ID]T),
	}
}

// NewSessionRepository creates the store for guild sessions.
func NewSessionRepository() *MemoryRepository[*usecases.GuildController] {
	return NewMemoryRepository[*usecases.GuildController]()
}

// Get returns the value stored for the given guild.
func (r *MemoryRepository[T]) Get(guildID snowflake.ID) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.values[guildID]
	return value, ok
}

// Save stores the value for the given guild, replacing any previous one.
func (r *MemoryRepository[T]) Save(guildID snowflake.ID, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[guildID] = value
}

// CompareAndDelete removes the entry of the given guild only if it still holds value.
func (r *MemoryRepository[T]) CompareAndDelete(guildID snowflake.ID, value T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.values[guildID]
	if !ok || current != value {
		return false
	}
	delete(r.values, guildID)
	return true
}

// Keys returns the guilds that currently have a value.
func (r *MemoryRepository[T]) Keys() []snowflake.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]snowflake.ID, 0, len(r.values))
	for guildID := range r.values {
		keys = append(keys, guildID)
	}
	return keys
}

// Count returns the number of stored values.
func (r *MemoryRepository[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.values)
}

// Ensure the session store implements SessionRepository.
var _ usecases.SessionRepository = (*MemoryRepository[*usecases.GuildController])(nil)
