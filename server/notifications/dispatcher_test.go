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

package notifications_test

import (
	"fmt"
	"testing"
	gotime "time"

	"github.com/stretchr/testify/assert"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/api/types/events"
	"github.com/polido-team/polido/server/notifications"
)

func commentEvent(policyID types.ID) events.CollabEvent {
	return events.CollabEvent{
		Type:      events.CommentAddedEvent,
		PolicyID:  policyID,
		Publisher: types.NewID(),
	}
}

func TestDispatcher(t *testing.T) {
	t.Run("dispatch test", func(t *testing.T) {
		dispatcher := notifications.NewDispatcher(nil)
		observer := types.NewID()
		policyID := types.NewID()

		notification := dispatcher.Dispatch(observer, events.CollabEvent{
			Type:     events.SessionJoinedEvent,
			PolicyID: policyID,
			Body: events.EventBody{
				Presence: &types.UserPresence{UserName: "dana"},
			},
		})
		assert.NotNil(t, notification)
		assert.Equal(t, types.NotificationUserJoined, notification.Type)
		assert.Equal(t, "dana joined the document", notification.Message)
		assert.True(t, notification.AutoClose)
		assert.NotEmpty(t, notification.ID)

		visible := dispatcher.Observe(observer)
		assert.Len(t, visible, 1)
		assert.Equal(t, notification.ID, visible[0].ID)
	})

	t.Run("events without alerts are skipped test", func(t *testing.T) {
		dispatcher := notifications.NewDispatcher(nil)
		observer := types.NewID()

		notification := dispatcher.Dispatch(observer, events.CollabEvent{
			Type:     events.TypingStartedEvent,
			PolicyID: types.NewID(),
		})
		assert.Nil(t, notification)
		assert.Len(t, dispatcher.Observe(observer), 0)
	})

	t.Run("mention requires explicit dismissal test", func(t *testing.T) {
		dispatcher := notifications.NewDispatcher(&notifications.Config{
			AutoCloseDelay: 30 * gotime.Millisecond,
		})
		observer := types.NewID()

		mention := dispatcher.Dispatch(observer, events.CollabEvent{
			Type:     events.MentionEvent,
			PolicyID: types.NewID(),
			Body:     events.EventBody{MentionedUser: observer},
		})
		assert.False(t, mention.AutoClose)

		transient := dispatcher.Dispatch(observer, commentEvent(types.NewID()))
		assert.True(t, transient.AutoClose)

		// the transient alert expires, the mention stays
		assert.Eventually(t, func() bool {
			return len(dispatcher.Observe(observer)) == 1
		}, gotime.Second, 10*gotime.Millisecond)
		assert.Equal(t, mention.ID, dispatcher.Observe(observer)[0].ID)

		assert.True(t, dispatcher.Dismiss(observer, mention.ID))
		assert.Len(t, dispatcher.Observe(observer), 0)
	})

	t.Run("dismiss is idempotent test", func(t *testing.T) {
		dispatcher := notifications.NewDispatcher(nil)
		observer := types.NewID()

		notification := dispatcher.Dispatch(observer, commentEvent(types.NewID()))
		assert.True(t, dispatcher.Dismiss(observer, notification.ID))
		assert.False(t, dispatcher.Dismiss(observer, notification.ID))
		assert.False(t, dispatcher.Dismiss(types.NewID(), notification.ID))
	})

	t.Run("oldest is evicted beyond the bound test", func(t *testing.T) {
		dispatcher := notifications.NewDispatcher(&notifications.Config{
			AutoCloseDelay: gotime.Minute,
			MaxVisible:     3,
		})
		observer := types.NewID()

		var ids []string
		for i := 0; i < 5; i++ {
			notification := dispatcher.Dispatch(observer, events.CollabEvent{
				Type:     events.ConnectionStatusEvent,
				PolicyID: types.NewID(),
				Body:     events.EventBody{Message: fmt.Sprintf("status %d", i)},
			})
			ids = append(ids, notification.ID)
		}

		visible := dispatcher.Observe(observer)
		assert.Len(t, visible, 3)
		assert.Equal(t, ids[2], visible[0].ID)
		assert.Equal(t, ids[4], visible[2].ID)
	})

	t.Run("release test", func(t *testing.T) {
		dispatcher := notifications.NewDispatcher(nil)
		observer := types.NewID()

		dispatcher.Dispatch(observer, commentEvent(types.NewID()))
		dispatcher.Release(observer)
		assert.Len(t, dispatcher.Observe(observer), 0)
	})
}
