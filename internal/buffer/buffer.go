// Package buffer implements the per-channel short-term turn buffer.
//
// Each channel owns an independently locked log so that ingestion on one
// channel never serializes against consolidation on another. Turns carry a
// monotonic per-channel sequence number internally; a consolidation drain
// snapshots the log and later clears only what it snapshotted, so appends
// that land mid-run survive into the next buffer generation.
package buffer

import (
	"sync"

	"github.com/lamina-ai/recall-go/internal/models"
)

// DefaultCapacity is the per-channel turn cap. Oldest turns are evicted
// first when the cap is exceeded; this is an accepted lossy policy, not a
// fault.
const DefaultCapacity = 20

type entry struct {
	turn models.Turn
	seq  uint64
}

type channelLog struct {
	mu      sync.Mutex
	entries []entry
	nextSeq uint64
}

// Buffer is a concurrency-safe mapping from channel ID to a bounded turn log.
// The zero value is not usable; call New.
type Buffer struct {
	mu       sync.RWMutex
	channels map[string]*channelLog
	capacity int
}

// New creates a buffer with the given per-channel capacity. A capacity of
// zero or less falls back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		channels: make(map[string]*channelLog),
		capacity: capacity,
	}
}

func (b *Buffer) channel(channelID string) *channelLog {
	b.mu.RLock()
	cl, ok := b.channels[channelID]
	b.mu.RUnlock()
	if ok {
		return cl
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if cl, ok := b.channels[channelID]; ok {
		return cl
	}
	cl = &channelLog{}
	b.channels[channelID] = cl
	return cl
}

// Append inserts a turn at the tail of the channel's log and evicts the
// oldest turns if the log exceeds capacity. O(1) amortized.
func (b *Buffer) Append(channelID string, turn models.Turn) {
	cl := b.channel(channelID)
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.nextSeq++
	cl.entries = append(cl.entries, entry{turn: turn, seq: cl.nextSeq})
	if over := len(cl.entries) - b.capacity; over > 0 {
		cl.entries = append(cl.entries[:0:0], cl.entries[over:]...)
	}
}

// Read returns an ordered copy of the channel's current turns, oldest first.
// An unknown channel reads as empty.
func (b *Buffer) Read(channelID string) []models.Turn {
	turns, _ := b.Snapshot(channelID)
	return turns
}

// Snapshot returns the channel's turns in arrival order together with the
// sequence number of the newest turn included. The pair feeds a later
// ClearThrough so that turns appended after the snapshot are preserved.
func (b *Buffer) Snapshot(channelID string) ([]models.Turn, uint64) {
	cl := b.channel(channelID)
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if len(cl.entries) == 0 {
		return nil, 0
	}
	turns := make([]models.Turn, len(cl.entries))
	for i, e := range cl.entries {
		turns[i] = e.turn
	}
	return turns, cl.entries[len(cl.entries)-1].seq
}

// ClearThrough removes every turn with a sequence number at or below seq.
// Turns appended after the corresponding Snapshot remain.
func (b *Buffer) ClearThrough(channelID string, seq uint64) {
	cl := b.channel(channelID)
	cl.mu.Lock()
	defer cl.mu.Unlock()

	kept := cl.entries[:0]
	for _, e := range cl.entries {
		if e.seq > seq {
			kept = append(kept, e)
		}
	}
	cl.entries = kept
}

// Clear empties the channel's log entirely. Used by explicit reset commands.
func (b *Buffer) Clear(channelID string) int {
	cl := b.channel(channelID)
	cl.mu.Lock()
	defer cl.mu.Unlock()

	n := len(cl.entries)
	cl.entries = nil
	return n
}

// Len reports the number of buffered turns for a channel.
func (b *Buffer) Len(channelID string) int {
	cl := b.channel(channelID)
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.entries)
}

// Channels returns the IDs of channels that currently hold at least one turn.
func (b *Buffer) Channels() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, 0, len(b.channels))
	for id, cl := range b.channels {
		cl.mu.Lock()
		n := len(cl.entries)
		cl.mu.Unlock()
		if n > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Stats returns the channel count and total buffered turns.
func (b *Buffer) Stats() (channels, turns int) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, cl := range b.channels {
		cl.mu.Lock()
		n := len(cl.entries)
		cl.mu.Unlock()
		if n > 0 {
			channels++
			turns += n
		}
	}
	return channels, turns
}
