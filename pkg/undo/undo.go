// Package undo keeps the pending undo offers of an editing session. An entry
// pairs a message with the action that reverses a change; taking an entry
// hands the action back exactly once.
package undo

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/dashtab/pkg/dashboard"
)

// ErrNotFound is returned for unknown or already used undo ids.
var ErrNotFound = errors.New("undo: entry not found")

// Entry is a registered undo offer.
type Entry struct {
	ID        string
	Message   string
	Action    dashboard.Action
	CreatedAt time.Time
}

type entryJSON struct {
	ID        string             `json:"id"`
	Message   string             `json:"message"`
	Action    dashboard.Envelope `json:"action"`
	CreatedAt time.Time          `json:"createdAt"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		ID:        e.ID,
		Message:   e.Message,
		Action:    dashboard.Envelope{Action: e.Action},
		CreatedAt: e.CreatedAt,
	})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entry{ID: raw.ID, Message: raw.Message, Action: raw.Action.Action, CreatedAt: raw.CreatedAt}
	return nil
}

// Coordinator holds undo entries in registration order.
type Coordinator struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// New returns an empty coordinator.
func New() *Coordinator {
	return &Coordinator{now: time.Now}
}

// Register records a new undo offer and returns it.
func (c *Coordinator) Register(message string, action dashboard.Action) (Entry, error) {
	if action == nil {
		return Entry{}, errors.New("undo: nil action")
	}
	e := Entry{
		ID:        uuid.NewString(),
		Message:   message,
		Action:    action,
		CreatedAt: c.now().UTC(),
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
	return e, nil
}

// Take removes and returns the entry with the given id.
func (c *Coordinator) Take(id string) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e.ID == id {
			c.entries = append(c.entries[:i:i], c.entries[i+1:]...)
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// TakeLatest removes and returns the most recently registered entry.
func (c *Coordinator) TakeLatest() (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 {
		return Entry{}, ErrNotFound
	}
	e := c.entries[len(c.entries)-1]
	c.entries = c.entries[:len(c.entries)-1]
	return e, nil
}

// Forget drops an entry without applying it. It reports whether the entry
// was pending.
func (c *Coordinator) Forget(id string) bool {
	_, err := c.Take(id)
	return err == nil
}

// List returns the pending entries, oldest first.
func (c *Coordinator) List() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.entries...)
}

// Clear drops every entry, e.g. after the session saved.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}

// Restore replaces the pending entries, e.g. when a draft is reopened.
func (c *Coordinator) Restore(entries []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append([]Entry(nil), entries...)
}
