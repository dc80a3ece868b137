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

// Package notifications derives user-facing alerts from collaboration events
// and manages their visible lifetime per observer.
package notifications

import (
	"fmt"
	"sync"
	gotime "time"

	"github.com/google/uuid"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/api/types/events"
	"github.com/polido-team/polido/pkg/cmap"
)

const (
	// DefaultAutoCloseDelay is the default visible lifetime of an
	// auto-closing notification.
	DefaultAutoCloseDelay = 5 * gotime.Second

	// DefaultMaxVisible is the default bound of an observer's notification
	// queue. When the bound is reached the oldest notification is evicted.
	DefaultMaxVisible = 5
)

// Config is the configuration of the Dispatcher.
type Config struct {
	// AutoCloseDelay is the visible lifetime of an auto-closing
	// notification.
	AutoCloseDelay gotime.Duration

	// MaxVisible bounds an observer's notification queue.
	MaxVisible int
}

func (c *Config) ensureDefaultValue() *Config {
	if c == nil {
		c = &Config{}
	}
	if c.AutoCloseDelay == 0 {
		c.AutoCloseDelay = DefaultAutoCloseDelay
	}
	if c.MaxVisible == 0 {
		c.MaxVisible = DefaultMaxVisible
	}
	return c
}

// queue is the bounded, ordered notification list of a single observer.
type queue struct {
	mu            sync.Mutex
	notifications []*types.Notification
	timers        map[string]*gotime.Timer
}

// Dispatcher turns collaboration events into notifications and tracks them
// until they are dismissed or expire.
type Dispatcher struct {
	conf   *Config
	queues *cmap.Map[types.ID, *queue]
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(conf *Config) *Dispatcher {
	return &Dispatcher{
		conf:   conf.ensureDefaultValue(),
		queues: cmap.New[types.ID, *queue](),
	}
}

// Dispatch derives a notification from the given event and enqueues it for
// the given observer. Events that carry no user-facing alert return nil.
func (d *Dispatcher) Dispatch(observer types.ID, event events.CollabEvent) *types.Notification {
	notificationType, message, ok := render(event)
	if !ok {
		return nil
	}

	notification := &types.Notification{
		ID:        uuid.New().String(),
		Type:      notificationType,
		Message:   message,
		Timestamp: gotime.Now(),
		AutoClose: notificationType.AutoClose(),
	}

	q := d.queues.Upsert(observer, func(val *queue, exists bool) *queue {
		if !exists {
			val = &queue{timers: make(map[string]*gotime.Timer)}
		}
		return val
	})

	q.mu.Lock()
	q.notifications = append(q.notifications, notification)
	if len(q.notifications) > d.conf.MaxVisible {
		evicted := q.notifications[0]
		q.notifications = q.notifications[1:]
		if timer, ok := q.timers[evicted.ID]; ok {
			timer.Stop()
			delete(q.timers, evicted.ID)
		}
	}
	if notification.AutoClose {
		q.timers[notification.ID] = gotime.AfterFunc(d.conf.AutoCloseDelay, func() {
			d.Dismiss(observer, notification.ID)
		})
	}
	q.mu.Unlock()

	return notification
}

// Dismiss removes the notification from the observer's queue. Dismissing a
// notification that is already gone is a no-op.
func (d *Dispatcher) Dismiss(observer types.ID, notificationID string) bool {
	q, ok := d.queues.Get(observer)
	if !ok {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[notificationID]; ok {
		timer.Stop()
		delete(q.timers, notificationID)
	}

	for i, notification := range q.notifications {
		if notification.ID == notificationID {
			q.notifications = append(q.notifications[:i], q.notifications[i+1:]...)
			return true
		}
	}
	return false
}

// Observe returns the observer's visible notifications, oldest first.
func (d *Dispatcher) Observe(observer types.ID) []*types.Notification {
	q, ok := d.queues.Get(observer)
	if !ok {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := make([]*types.Notification, len(q.notifications))
	for i, notification := range q.notifications {
		n := *notification
		snapshot[i] = &n
	}
	return snapshot
}

// Release drops the observer's queue and stops its timers, e.g. when the
// observer's session ends.
func (d *Dispatcher) Release(observer types.ID) {
	d.queues.Delete(observer, func(q *queue, exists bool) bool {
		if !exists {
			return false
		}

		q.mu.Lock()
		for id, timer := range q.timers {
			timer.Stop()
			delete(q.timers, id)
		}
		q.notifications = nil
		q.mu.Unlock()
		return true
	})
}

// render maps an event to its alert type and display text. The boolean is
// false for events that have no user-facing alert.
func render(event events.CollabEvent) (types.NotificationType, string, bool) {
	switch event.Type {
	case events.SessionJoinedEvent:
		return types.NotificationUserJoined,
			fmt.Sprintf("%s joined the document", presenterName(event)), true
	case events.SessionLeftEvent:
		return types.NotificationUserLeft,
			fmt.Sprintf("%s left the document", presenterName(event)), true
	case events.CommentAddedEvent:
		return types.NotificationCommentAdded, "New comment added", true
	case events.CommentResolvedEvent:
		return types.NotificationCommentResolved, "A comment was resolved", true
	case events.MentionEvent:
		return types.NotificationMention, "You were mentioned in a comment", true
	case events.VersionConflictEvent:
		return types.NotificationConflict,
			"A conflicting version was saved concurrently", true
	case events.ConnectionStatusEvent:
		return types.NotificationConnectionStatus, event.Body.Message, true
	default:
		return "", "", false
	}
}

func presenterName(event events.CollabEvent) string {
	if event.Body.Presence != nil && event.Body.Presence.UserName != "" {
		return event.Body.Presence.UserName
	}
	return "A participant"
}
