// Package trackingbag accumulates the tracking commands issued during a
// request and hands them to the renderer exactly once.
//
// The bag keeps commands in memory for the current request. Commands that are
// still pending when the request ends (typically because the response is a
// redirect) are flashed to a flashstore.Store and picked up by the next
// request of the same session.
package trackingbag

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/ignite/analytics-tagger/internal/analytics/flashstore"
	"github.com/ignite/analytics-tagger/internal/pkg/logger"
)

// SessionKey is the store key prefix for pending commands of a session.
const SessionKey = "analytics.tracking"

type entry struct {
	Fingerprint string `json:"fingerprint"`
	Command     string `json:"command"`
}

// Bag is an ordered set of tracking commands. Not safe for concurrent use.
type Bag struct {
	store flashstore.Store
	key   string

	entries []entry
	index   map[string]int
	dirty   bool
}

// New returns a memory-only bag.
func New() *Bag {
	return &Bag{index: make(map[string]int)}
}

// Restore returns the bag of a session, seeded with the commands the previous
// request of that session left behind. Those commands are consumed from the
// store.
func Restore(ctx context.Context, store flashstore.Store, sessionID string) (*Bag, error) {
	b := New()
	b.store = store
	b.key = SessionKey + ":" + sessionID

	raw, ok, err := store.Pull(ctx, b.key)
	if err != nil {
		return b, fmt.Errorf("restore tracking bag: %w", err)
	}
	if !ok {
		return b, nil
	}

	var carried []entry
	if err := json.Unmarshal(raw, &carried); err != nil {
		logger.Warn("dropping unreadable tracking bag", "session", sessionID, "error", err)
		return b, nil
	}
	for _, e := range carried {
		b.Add(e.Command)
	}
	// Nothing to write back unless this request changes the bag.
	b.dirty = false

	logger.Debug("tracking bag restored", "session", sessionID, "commands", len(b.entries))
	return b, nil
}

func fingerprint(command string) string {
	return strconv.FormatUint(xxhash.Sum64String(command), 16)
}

// Add queues a command. A command whose text is already pending is replaced in
// place, so it is rendered once at the position of its first occurrence.
func (b *Bag) Add(command string) {
	fp := fingerprint(command)
	b.dirty = true
	if i, ok := b.index[fp]; ok {
		b.entries[i].Command = command
		return
	}
	b.index[fp] = len(b.entries)
	b.entries = append(b.entries, entry{Fingerprint: fp, Command: command})
}

// Get returns all pending commands in insertion order and empties the bag.
func (b *Bag) Get() []string {
	if len(b.entries) == 0 {
		return []string{}
	}
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.Command
	}
	b.entries = nil
	b.index = make(map[string]int)
	b.dirty = true
	return out
}

// Len returns the number of pending commands.
func (b *Bag) Len() int {
	return len(b.entries)
}

// Persist hands pending commands over to the next request of the session.
// It is a no-op for memory-only bags and when nothing changed since the last
// Restore or Persist.
func (b *Bag) Persist(ctx context.Context) error {
	if b.store == nil || !b.dirty {
		return nil
	}

	if len(b.entries) == 0 {
		if err := b.store.Forget(ctx, b.key); err != nil {
			return fmt.Errorf("persist tracking bag: %w", err)
		}
		b.dirty = false
		return nil
	}

	raw, err := json.Marshal(b.entries)
	if err != nil {
		return fmt.Errorf("persist tracking bag: %w", err)
	}
	if err := b.store.Flash(ctx, b.key, raw); err != nil {
		return fmt.Errorf("persist tracking bag: %w", err)
	}
	b.dirty = false
	return nil
}
