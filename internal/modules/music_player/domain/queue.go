package domain

import (
	"math/rand/v2"
	"time"
)

// PlayQueue is the ordered list of entries waiting to be played in one guild.
// Entries leave the queue from the front; positions exposed to users are 1-based.
// It is not safe for concurrent use; the owning controller serializes access.
type PlayQueue struct {
	entries []QueueEntry
}

// NewPlayQueue creates an empty PlayQueue.
func NewPlayQueue() *PlayQueue {
	return &PlayQueue{
		entries: make([]QueueEntry, 0),
	}
}

// IsEmpty returns true if the queue has no entries.
func (q *PlayQueue) IsEmpty() bool {
	return len(q.entries) == 0
}

// Len returns the number of entries in the queue.
func (q *PlayQueue) Len() int {
	return len(q.entries)
}

// Append adds an entry to the tail of the queue.
func (q *PlayQueue) Append(entry QueueEntry) {
	q.entries = append(q.entries, entry)
}

// PopFront removes and returns the head of the queue.
func (q *PlayQueue) PopFront() (QueueEntry, error) {
	if q.IsEmpty() {
		return QueueEntry{}, ErrEmptyQueue
	}

	head := q.entries[0]
	q.entries[0] = QueueEntry{}
	q.entries = q.entries[1:]
	return head, nil
}

// Peek returns the head of the queue without removing it.
func (q *PlayQueue) Peek() (QueueEntry, bool) {
	if q.IsEmpty() {
		return QueueEntry{}, false
	}
	return q.entries[0], true
}

// Shuffle permutes the entries uniformly at random using rng.
func (q *PlayQueue) Shuffle(rng *rand.Rand) {
	if len(q.entries) < 2 {
		return
	}
	rng.Shuffle(len(q.entries), func(i, j int) {
		q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
	})
}

// DeleteAt removes the entry at the given 1-based position and returns it.
// The relative order of the remaining entries is preserved.
func (q *PlayQueue) DeleteAt(position int) (QueueEntry, error) {
	if position < 1 || position > len(q.entries) {
		return QueueEntry{}, ErrIndexOutOfRange
	}

	index := position - 1
	removed := q.entries[index]
	q.entries = append(q.entries[:index], q.entries[index+1:]...)
	return removed, nil
}

// Clear removes every entry and returns how many were removed.
func (q *PlayQueue) Clear() int {
	count := len(q.entries)
	q.entries = make([]QueueEntry, 0)
	return count
}

// TotalDuration returns the sum of the known durations of all entries.
// Entries with an unknown duration contribute nothing.
func (q *PlayQueue) TotalDuration() Duration {
	var total time.Duration
	for _, entry := range q.entries {
		total += entry.Track.Duration.Value()
	}
	return KnownDuration(total)
}

// UpdateTrack replaces the metadata of the entry with the given ID.
// Returns false if the entry is no longer queued.
func (q *PlayQueue) UpdateTrack(id EntryID, track Track) bool {
	for i := range q.entries {
		if q.entries[i].ID == id {
			q.entries[i].Track = track
			return true
		}
	}
	return false
}

// Entries returns a copy of the queued entries in play order.
func (q *PlayQueue) Entries() []QueueEntry {
	result := make([]QueueEntry, len(q.entries))
	copy(result, q.entries)
	return result
}
