// Package hook is the in-process event bus between the history writers and
// the achievement service.
package hook

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ErrInterrupt stops the remaining handlers of a Trigger.
var ErrInterrupt = errors.New("hook interrupted")

// Fn handles one event. Returning ErrInterrupt stops the chain; any other
// error is logged and the next handler still runs.
type Fn func(ctx context.Context, event string, data interface{}) (interface{}, error)

// Event names.
const (
	OnQuestComplete      = "on_quest_complete"
	OnSessionStart       = "on_session_start"
	OnLiveStateUpdate    = "on_live_state_update"
	OnAchievementAwarded = "on_achievement_awarded"
)

// QuestCompleted is the payload of OnQuestComplete.
type QuestCompleted struct {
	RunID   int64
	QuestID int
}

// AchievementAwarded is the payload of OnAchievementAwarded.
type AchievementAwarded struct {
	ID    int
	Title string
}

type entry struct {
	priority int
	name     string
	fn       Fn
}

// Center holds handler registrations per event.
type Center struct {
	mu     sync.RWMutex
	hooks  map[string][]*entry
	logger *zap.Logger
}

func NewCenter(logger *zap.Logger) *Center {
	return &Center{hooks: make(map[string][]*entry), logger: logger}
}

// Register adds fn for event. Lower priority runs first; handlers with equal
// priority run in registration order.
func (c *Center) Register(event string, priority int, name string, fn Fn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := append(c.hooks[event], &entry{priority: priority, name: name, fn: fn})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority < entries[j].priority
	})
	c.hooks[event] = entries
}

// Unregister removes the handlers named name from event.
func (c *Center) Unregister(event, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks[event] = without(c.hooks[event], name)
}

// UnregisterAll removes the handlers named name from every event.
func (c *Center) UnregisterAll(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for event, entries := range c.hooks {
		c.hooks[event] = without(entries, name)
	}
}

func without(entries []*entry, name string) []*entry {
	out := entries[:0]
	for _, e := range entries {
		if e.name != name {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many handlers are registered for event.
func (c *Center) Count(event string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hooks[event])
}

// Trigger runs the handlers for event in priority order, threading data
// through each. A panicking handler is logged and skipped.
func (c *Center) Trigger(ctx context.Context, event string, data interface{}) (interface{}, error) {
	c.mu.RLock()
	entries := make([]*entry, len(c.hooks[event]))
	copy(entries, c.hooks[event])
	c.mu.RUnlock()

	for _, e := range entries {
		out, err := c.call(ctx, e, event, data)
		if errors.Is(err, ErrInterrupt) {
			return out, err
		}
		if err != nil {
			c.logger.Warn("hook handler failed",
				zap.String("event", event), zap.String("handler", e.name), zap.Error(err))
			continue
		}
		data = out
	}
	return data, nil
}

func (c *Center) call(ctx context.Context, e *entry, event string, data interface{}) (out interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = data, fmt.Errorf("panic: %v", r)
		}
	}()
	return e.fn(ctx, event, data)
}
