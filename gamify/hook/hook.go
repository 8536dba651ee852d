// Package hook provides an in-process extension point for gamification
// events. Handlers run synchronously inside the pipeline, so a handler
// can veto downstream processing by returning ErrInterrupt.
package hook

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrInterrupt signals that a handler wants to stop further processing
// of the event.
var ErrInterrupt = errors.New("hook interrupted")

// Func handles one event. Returns (modified data, nil) to continue the
// chain, or (data, ErrInterrupt) to stop it.
type Func func(ctx context.Context, event string, data interface{}) (interface{}, error)

type entry struct {
	priority int
	fn       Func
	name     string
}

// Center manages handler registrations per event.
type Center struct {
	mu    sync.RWMutex
	hooks map[string][]*entry
}

// NewCenter creates an empty Center.
func NewCenter() *Center {
	return &Center{hooks: make(map[string][]*entry)}
}

// Register adds a handler for the given event. Lower priority runs
// first; name is the key used by Unregister.
func (c *Center) Register(event string, priority int, name string, fn Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := append(c.hooks[event], &entry{priority: priority, fn: fn, name: name})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].priority < entries[j].priority
	})
	c.hooks[event] = entries
}

// Unregister removes all handlers with the given name for the given event.
func (c *Center) Unregister(event, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.hooks[event]
	n := 0
	for _, e := range entries {
		if e.name != name {
			entries[n] = e
			n++
		}
	}
	c.hooks[event] = entries[:n]
}

// UnregisterAll removes every handler registered under name, across all
// events.
func (c *Center) UnregisterAll(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for event, entries := range c.hooks {
		n := 0
		for _, e := range entries {
			if e.name != name {
				entries[n] = e
				n++
			}
		}
		c.hooks[event] = entries[:n]
	}
}

// Trigger runs all handlers for event in priority order. Data flows
// through each handler; a handler returning ErrInterrupt stops the
// chain. Other handler errors do not stop it, but the last one is
// returned so the caller can report it.
func (c *Center) Trigger(ctx context.Context, event string, data interface{}) (interface{}, error) {
	c.mu.RLock()
	entries := make([]*entry, len(c.hooks[event]))
	copy(entries, c.hooks[event])
	c.mu.RUnlock()

	var lastErr error
	for _, e := range entries {
		var err error
		data, err = e.fn(ctx, event, data)
		if err != nil {
			if errors.Is(err, ErrInterrupt) {
				return data, err
			}
			lastErr = err
		}
	}
	return data, lastErr
}

// Pipeline event names. TaskCompleted and TeamJoined carry the
// notify.Event built for the action; TaskCreated and ProjectCreated
// carry the model row.
const (
	TaskCreated    = "task.created"
	TaskCompleted  = "task.completed"
	ProjectCreated = "project.created"
	TeamJoined     = "team.joined"
)
