/*
 * Copyright 2025 The Polido Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package presence

import (
	"context"
	"sync"
	"testing"
	gotime "time"

	"github.com/stretchr/testify/assert"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/api/types/events"
	"github.com/polido-team/polido/server/profiling/prometheus"
)

// recorder collects the published events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []events.CollabEvent
}

func (r *recorder) Publish(_ context.Context, event events.CollabEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) byType(eventType events.CollabEventType) []events.CollabEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []events.CollabEvent
	for _, event := range r.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now gotime.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: gotime.Date(2025, 3, 1, 9, 0, 0, 0, gotime.UTC)}
}

func (c *fakeClock) Now() gotime.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d gotime.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupManager(conf *Config) (*Manager, *recorder, *fakeClock) {
	metrics, err := prometheus.NewMetrics()
	if err != nil {
		panic(err)
	}

	rec := &recorder{}
	clock := newFakeClock()
	manager := NewManager(conf, rec, metrics)
	manager.now = clock.Now
	return manager, rec, clock
}

func TestManager(t *testing.T) {
	ctx := context.Background()

	t.Run("join and observe in join order test", func(t *testing.T) {
		manager, rec, clock := setupManager(nil)
		policyID := types.NewID()

		first, err := manager.Join(ctx, policyID, types.NewID(), "dana")
		assert.NoError(t, err)
		clock.Advance(gotime.Second)
		second, err := manager.Join(ctx, policyID, types.NewID(), "lee")
		assert.NoError(t, err)

		assert.NotEqual(t, first.Color, second.Color)

		presences := manager.Observe(policyID)
		assert.Len(t, presences, 2)
		assert.Equal(t, first.SessionID, presences[0].SessionID)
		assert.Equal(t, second.SessionID, presences[1].SessionID)

		joined := rec.byType(events.SessionJoinedEvent)
		assert.Len(t, joined, 2)
		assert.Equal(t, "dana", joined[0].Body.Presence.UserName)
	})

	t.Run("status derivation test", func(t *testing.T) {
		manager, _, clock := setupManager(nil)
		policyID := types.NewID()

		presence, err := manager.Join(ctx, policyID, types.NewID(), "dana")
		assert.NoError(t, err)

		// 90s of silence is still active
		clock.Advance(90 * gotime.Second)
		assert.Equal(t, types.PresenceActive, manager.Observe(policyID)[0].Status)

		// 200s of silence is idle
		clock.Advance(110 * gotime.Second)
		assert.Equal(t, types.PresenceIdle, manager.Observe(policyID)[0].Status)

		// 400s of silence is away
		clock.Advance(200 * gotime.Second)
		assert.Equal(t, types.PresenceAway, manager.Observe(policyID)[0].Status)

		// a heartbeat self-corrects the status back to active
		_, err = manager.Heartbeat(ctx, policyID, presence.SessionID, nil, false)
		assert.NoError(t, err)
		assert.Equal(t, types.PresenceActive, manager.Observe(policyID)[0].Status)
	})

	t.Run("editing overrides silence test", func(t *testing.T) {
		manager, _, clock := setupManager(nil)
		policyID := types.NewID()

		presence, err := manager.Join(ctx, policyID, types.NewID(), "dana")
		assert.NoError(t, err)

		_, err = manager.Heartbeat(ctx, policyID, presence.SessionID, nil, true)
		assert.NoError(t, err)

		clock.Advance(400 * gotime.Second)
		assert.Equal(t, types.PresenceEditing, manager.Observe(policyID)[0].Status)
	})

	t.Run("heartbeat merges cursor last-write-wins test", func(t *testing.T) {
		manager, _, _ := setupManager(nil)
		policyID := types.NewID()

		presence, err := manager.Join(ctx, policyID, types.NewID(), "dana")
		assert.NoError(t, err)

		updated, err := manager.Heartbeat(ctx, policyID, presence.SessionID, &types.CursorPosition{Line: 3, Column: 14}, false)
		assert.NoError(t, err)
		assert.Equal(t, 3, updated.Cursor.Line)

		// a heartbeat without a cursor keeps the previous one
		updated, err = manager.Heartbeat(ctx, policyID, presence.SessionID, nil, true)
		assert.NoError(t, err)
		assert.Equal(t, 3, updated.Cursor.Line)
		assert.True(t, updated.IsEditing)

		updated, err = manager.Heartbeat(ctx, policyID, presence.SessionID, &types.CursorPosition{Line: 7, Column: 1}, true)
		assert.NoError(t, err)
		assert.Equal(t, 7, updated.Cursor.Line)
	})

	t.Run("heartbeat broadcast rate limit test", func(t *testing.T) {
		manager, rec, clock := setupManager(&Config{BroadcastInterval: gotime.Minute})
		policyID := types.NewID()

		presence, err := manager.Join(ctx, policyID, types.NewID(), "dana")
		assert.NoError(t, err)

		// the first heartbeat broadcasts, rapid ones inside the interval do not
		for i := 0; i < 5; i++ {
			_, err = manager.Heartbeat(ctx, policyID, presence.SessionID, nil, false)
			assert.NoError(t, err)
			clock.Advance(gotime.Second)
		}
		assert.Len(t, rec.byType(events.PresenceUpdatedEvent), 1)

		clock.Advance(gotime.Minute)
		_, err = manager.Heartbeat(ctx, policyID, presence.SessionID, nil, false)
		assert.NoError(t, err)
		assert.Len(t, rec.byType(events.PresenceUpdatedEvent), 2)
	})

	t.Run("leave test", func(t *testing.T) {
		manager, rec, _ := setupManager(nil)
		policyID := types.NewID()

		presence, err := manager.Join(ctx, policyID, types.NewID(), "dana")
		assert.NoError(t, err)

		assert.NoError(t, manager.Leave(ctx, policyID, presence.SessionID))
		assert.Len(t, manager.Observe(policyID), 0)
		assert.Len(t, rec.byType(events.SessionLeftEvent), 1)

		err = manager.Leave(ctx, policyID, presence.SessionID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("typing debounce single stop test", func(t *testing.T) {
		manager, rec, _ := setupManager(&Config{TypingTimeout: 50 * gotime.Millisecond})
		policyID := types.NewID()

		presence, err := manager.Join(ctx, policyID, types.NewID(), "dana")
		assert.NoError(t, err)

		// continuous typing keeps pushing the stop out
		for i := 0; i < 3; i++ {
			assert.NoError(t, manager.StartTyping(ctx, policyID, presence.SessionID))
			gotime.Sleep(20 * gotime.Millisecond)
		}
		assert.Len(t, rec.byType(events.TypingStartedEvent), 1)
		assert.Len(t, rec.byType(events.TypingStoppedEvent), 0)

		assert.Eventually(t, func() bool {
			return len(rec.byType(events.TypingStoppedEvent)) == 1
		}, gotime.Second, 10*gotime.Millisecond)

		// a fresh burst starts over
		assert.NoError(t, manager.StartTyping(ctx, policyID, presence.SessionID))
		assert.Len(t, rec.byType(events.TypingStartedEvent), 2)
	})

	t.Run("explicit stop typing test", func(t *testing.T) {
		manager, rec, _ := setupManager(&Config{TypingTimeout: gotime.Minute})
		policyID := types.NewID()

		presence, err := manager.Join(ctx, policyID, types.NewID(), "dana")
		assert.NoError(t, err)

		assert.NoError(t, manager.StartTyping(ctx, policyID, presence.SessionID))
		assert.NoError(t, manager.StopTyping(ctx, policyID, presence.SessionID))
		assert.Len(t, rec.byType(events.TypingStoppedEvent), 1)

		// stopping while not typing publishes nothing
		assert.NoError(t, manager.StopTyping(ctx, policyID, presence.SessionID))
		assert.Len(t, rec.byType(events.TypingStoppedEvent), 1)
	})

	t.Run("evict stale sessions test", func(t *testing.T) {
		manager, rec, clock := setupManager(nil)
		policyID := types.NewID()

		stale, err := manager.Join(ctx, policyID, types.NewID(), "dana")
		assert.NoError(t, err)
		clock.Advance(11 * gotime.Minute)
		fresh, err := manager.Join(ctx, policyID, types.NewID(), "lee")
		assert.NoError(t, err)

		assert.Equal(t, 1, manager.EvictStale(ctx))

		presences := manager.Observe(policyID)
		assert.Len(t, presences, 1)
		assert.Equal(t, fresh.SessionID, presences[0].SessionID)
		assert.NotEqual(t, stale.SessionID, presences[0].SessionID)
		assert.Len(t, rec.byType(events.SessionLeftEvent), 1)
	})
}
