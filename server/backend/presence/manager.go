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

// Package presence provides presence management for real-time user tracking.
package presence

import (
	"context"
	"fmt"
	"sort"
	"sync"
	gotime "time"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/api/types/events"
	"github.com/polido-team/polido/pkg/cmap"
	"github.com/polido-team/polido/pkg/errors"
	"github.com/polido-team/polido/server/profiling/prometheus"
)

// ErrSessionNotFound is returned when the presence session does not exist.
var ErrSessionNotFound = errors.NotFound("presence session not found").WithCode("ErrSessionNotFound")

// colors is the palette for participant avatars and cursors, assigned by
// join order within a policy document.
var colors = []string{
	"#1abc9c", "#3498db", "#9b59b6", "#e67e22",
	"#e74c3c", "#f1c40f", "#2ecc71", "#34495e",
}

// PubSub is an interface for publishing collaboration events.
type PubSub interface {
	Publish(ctx context.Context, event events.CollabEvent)
}

// session is the server-side state of a single connected participant.
type session struct {
	mu sync.Mutex

	presence      types.UserPresence
	isTyping      bool
	typingTimer   *gotime.Timer
	lastBroadcast gotime.Time
}

// snapshot returns a copy of the session's presence.
func (s *session) snapshot() *types.UserPresence {
	s.mu.Lock()
	defer s.mu.Unlock()

	presence := s.presence
	if s.presence.Cursor != nil {
		cursor := *s.presence.Cursor
		presence.Cursor = &cursor
	}
	return &presence
}

// Manager tracks the participants of policy document sessions and derives
// their activity status at observation time.
type Manager struct {
	conf *Config

	// sessions maps a policy ID to the sessions attached to it.
	sessions *cmap.Map[types.ID, *cmap.Map[types.ID, *session]]

	// joinCounter assigns palette colors by join order.
	joinCounter *cmap.Map[types.ID, *int]

	pubsub  PubSub
	metrics *prometheus.Metrics

	// now is replaceable to make status derivation testable.
	now func() gotime.Time
}

// NewManager creates a new presence manager.
func NewManager(conf *Config, pubsub PubSub, metrics *prometheus.Metrics) *Manager {
	return &Manager{
		conf:        conf.ensureDefaultValue(),
		sessions:    cmap.New[types.ID, *cmap.Map[types.ID, *session]](),
		joinCounter: cmap.New[types.ID, *int](),
		pubsub:      pubsub,
		metrics:     metrics,
		now:         gotime.Now,
	}
}

// Join attaches a new session of the given user to the policy document and
// announces it to the other participants.
func (m *Manager) Join(
	ctx context.Context,
	policyID types.ID,
	userID types.ID,
	userName string,
) (*types.UserPresence, error) {
	policySessions := m.sessions.Upsert(
		policyID,
		func(val *cmap.Map[types.ID, *session], exists bool) *cmap.Map[types.ID, *session] {
			if !exists {
				val = cmap.New[types.ID, *session]()
			}
			return val
		},
	)

	order := m.joinCounter.Upsert(policyID, func(val *int, exists bool) *int {
		if !exists {
			val = new(int)
		}
		*val++
		return val
	})

	now := m.now()
	sess := &session{
		presence: types.UserPresence{
			SessionID:    types.NewID(),
			UserID:       userID,
			UserName:     userName,
			Color:        colors[(*order-1)%len(colors)],
			LastActivity: now,
			JoinedAt:     now,
		},
	}
	policySessions.Set(sess.presence.SessionID, sess)
	m.metrics.AddPresenceSessions()

	presence := sess.snapshot()
	m.pubsub.Publish(ctx, events.CollabEvent{
		Type:      events.SessionJoinedEvent,
		PolicyID:  policyID,
		Publisher: presence.SessionID,
		Body:      events.EventBody{Presence: presence},
	})

	return presence, nil
}

// Leave detaches the given session from the policy document.
func (m *Manager) Leave(
	ctx context.Context,
	policyID types.ID,
	sessionID types.ID,
) error {
	sess, err := m.session(policyID, sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.typingTimer != nil {
		sess.typingTimer.Stop()
		sess.typingTimer = nil
	}
	sess.mu.Unlock()

	m.removeSession(policyID, sessionID)
	m.metrics.RemovePresenceSessions()

	m.pubsub.Publish(ctx, events.CollabEvent{
		Type:      events.SessionLeftEvent,
		PolicyID:  policyID,
		Publisher: sessionID,
		Body:      events.EventBody{Presence: sess.snapshot()},
	})

	return nil
}

// Heartbeat merges the given update into the session's presence
// last-write-wins and refreshes its activity time. Broadcasts are rate
// limited per session; a suppressed broadcast still refreshes LastActivity.
func (m *Manager) Heartbeat(
	ctx context.Context,
	policyID types.ID,
	sessionID types.ID,
	cursor *types.CursorPosition,
	isEditing bool,
) (*types.UserPresence, error) {
	sess, err := m.session(policyID, sessionID)
	if err != nil {
		return nil, err
	}

	now := m.now()

	sess.mu.Lock()
	if cursor != nil {
		c := *cursor
		sess.presence.Cursor = &c
	}
	sess.presence.IsEditing = isEditing
	sess.presence.LastActivity = now

	broadcast := now.Sub(sess.lastBroadcast) >= m.conf.BroadcastInterval
	if broadcast {
		sess.lastBroadcast = now
	}
	sess.mu.Unlock()

	presence := sess.snapshot()
	if broadcast {
		m.pubsub.Publish(ctx, events.CollabEvent{
			Type:      events.PresenceUpdatedEvent,
			PolicyID:  policyID,
			Publisher: sessionID,
			Body:      events.EventBody{Presence: presence},
		})
	}

	return presence, nil
}

// Observe returns the participants of the policy document in join order,
// with their status derived at the current instant.
func (m *Manager) Observe(policyID types.ID) []*types.UserPresence {
	policySessions, ok := m.sessions.Get(policyID)
	if !ok {
		return nil
	}

	now := m.now()
	var presences []*types.UserPresence
	for _, sess := range policySessions.Values() {
		presence := sess.snapshot()
		presence.Status = presence.StatusAt(now, m.conf.ActiveThreshold, m.conf.IdleThreshold)
		presences = append(presences, presence)
	}

	sort.Slice(presences, func(i, j int) bool {
		if presences[i].JoinedAt.Equal(presences[j].JoinedAt) {
			return presences[i].SessionID < presences[j].SessionID
		}
		return presences[i].JoinedAt.Before(presences[j].JoinedAt)
	})

	return presences
}

// StartTyping signals that the session's user is composing and schedules the
// automatic typing-stopped event. A signal while already typing pushes the
// stop out instead of stacking a second timer.
func (m *Manager) StartTyping(
	ctx context.Context,
	policyID types.ID,
	sessionID types.ID,
) error {
	sess, err := m.session(policyID, sessionID)
	if err != nil {
		return err
	}

	now := m.now()

	sess.mu.Lock()
	started := !sess.isTyping
	sess.isTyping = true
	sess.presence.LastActivity = now
	if sess.typingTimer != nil {
		sess.typingTimer.Stop()
	}
	sess.typingTimer = gotime.AfterFunc(m.conf.TypingTimeout, func() {
		m.stopTyping(context.Background(), policyID, sessionID, sess)
	})
	sess.mu.Unlock()

	if started {
		m.pubsub.Publish(ctx, events.CollabEvent{
			Type:      events.TypingStartedEvent,
			PolicyID:  policyID,
			Publisher: sessionID,
		})
	}

	return nil
}

// StopTyping clears the session's typing state ahead of the debounce, e.g.
// when the comment is submitted or discarded.
func (m *Manager) StopTyping(
	ctx context.Context,
	policyID types.ID,
	sessionID types.ID,
) error {
	sess, err := m.session(policyID, sessionID)
	if err != nil {
		return err
	}

	m.stopTyping(ctx, policyID, sessionID, sess)
	return nil
}

// stopTyping publishes typing-stopped exactly once per typing burst.
func (m *Manager) stopTyping(
	ctx context.Context,
	policyID types.ID,
	sessionID types.ID,
	sess *session,
) {
	sess.mu.Lock()
	stopped := sess.isTyping
	sess.isTyping = false
	if sess.typingTimer != nil {
		sess.typingTimer.Stop()
		sess.typingTimer = nil
	}
	sess.mu.Unlock()

	if stopped {
		m.pubsub.Publish(ctx, events.CollabEvent{
			Type:      events.TypingStoppedEvent,
			PolicyID:  policyID,
			Publisher: sessionID,
		})
	}
}

// EvictStale removes the sessions that have been silent beyond the eviction
// threshold and announces their departure. It returns the number of evicted
// sessions.
func (m *Manager) EvictStale(ctx context.Context) int {
	now := m.now()
	evicted := 0

	for _, policyID := range m.sessions.Keys() {
		policySessions, ok := m.sessions.Get(policyID)
		if !ok {
			continue
		}

		for _, sess := range policySessions.Values() {
			presence := sess.snapshot()
			if now.Sub(presence.LastActivity) < m.conf.EvictionThreshold {
				continue
			}

			if err := m.Leave(ctx, policyID, presence.SessionID); err != nil {
				continue
			}
			evicted++
		}
	}

	return evicted
}

// Stats returns statistics about the presence manager.
func (m *Manager) Stats() map[string]int {
	totalPolicies := m.sessions.Len()
	totalSessions := 0
	for _, policySessions := range m.sessions.Values() {
		totalSessions += policySessions.Len()
	}

	return map[string]int{
		"total_policies": totalPolicies,
		"total_sessions": totalSessions,
	}
}

func (m *Manager) session(policyID, sessionID types.ID) (*session, error) {
	policySessions, ok := m.sessions.Get(policyID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", sessionID, ErrSessionNotFound)
	}

	sess, ok := policySessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", sessionID, ErrSessionNotFound)
	}

	return sess, nil
}

func (m *Manager) removeSession(policyID, sessionID types.ID) {
	policySessions, ok := m.sessions.Get(policyID)
	if !ok {
		return
	}

	policySessions.Delete(sessionID, func(sess *session, exists bool) bool {
		return exists
	})

	m.sessions.Delete(policyID, func(sessions *cmap.Map[types.ID, *session], exists bool) bool {
		if !exists || sessions.Len() > 0 {
			return false
		}

		m.joinCounter.Delete(policyID, func(val *int, exists bool) bool {
			return exists
		})
		return true
	})
}
