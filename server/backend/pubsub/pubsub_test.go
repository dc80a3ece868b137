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

package pubsub_test

import (
	"context"
	"fmt"
	gosync "sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/api/types/events"
	"github.com/polido-team/polido/server/backend/pubsub"
)

func TestPubSub(t *testing.T) {
	sessionA := types.NewID()
	sessionB := types.NewID()

	t.Run("publish subscribe test", func(t *testing.T) {
		pubSub := pubsub.New()
		policyID := types.NewID()
		event := events.CollabEvent{
			Type:      events.CommentAddedEvent,
			PolicyID:  policyID,
			Publisher: sessionB,
		}

		ctx := context.Background()
		subA, err := pubSub.Subscribe(ctx, sessionA, policyID, 0)
		assert.NoError(t, err)
		defer func() {
			pubSub.Unsubscribe(ctx, policyID, subA)
		}()

		var wg gosync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := <-subA.Events()
			assert.Equal(t, e, event)
		}()

		pubSub.Publish(ctx, event)
		wg.Wait()
	})

	t.Run("publisher does not receive own events test", func(t *testing.T) {
		pubSub := pubsub.New()
		policyID := types.NewID()

		ctx := context.Background()
		subA, err := pubSub.Subscribe(ctx, sessionA, policyID, 0)
		assert.NoError(t, err)
		defer func() {
			pubSub.Unsubscribe(ctx, policyID, subA)
		}()
		subB, err := pubSub.Subscribe(ctx, sessionB, policyID, 0)
		assert.NoError(t, err)
		defer func() {
			pubSub.Unsubscribe(ctx, policyID, subB)
		}()

		pubSub.Publish(ctx, events.CollabEvent{
			Type:      events.TypingStartedEvent,
			PolicyID:  policyID,
			Publisher: sessionA,
		})

		e := <-subB.Events()
		assert.Equal(t, events.TypingStartedEvent, e.Type)
		assert.Len(t, subA.Events(), 0)
	})

	t.Run("max subscribers per policy limit exceeded test", func(t *testing.T) {
		pubSub := pubsub.New()
		policyID := types.NewID()

		ctx := context.Background()
		limit := 2

		subA, err := pubSub.Subscribe(ctx, sessionA, policyID, limit)
		assert.NoError(t, err)
		defer func() {
			pubSub.Unsubscribe(ctx, policyID, subA)
		}()

		subB, err := pubSub.Subscribe(ctx, sessionB, policyID, limit)
		assert.NoError(t, err)
		defer func() {
			pubSub.Unsubscribe(ctx, policyID, subB)
		}()

		// third subscription should fail due to limit
		_, err = pubSub.Subscribe(ctx, types.NewID(), policyID, limit)
		assert.Error(t, err)
		assert.ErrorIs(t, err, pubsub.ErrTooManySubscribers)
		assert.Equal(t, err.Error(), fmt.Sprintf("%d subscribers allowed per policy: subscription limit exceeded", limit))
	})

	t.Run("max subscribers per policy limit exceeded concurrent test", func(t *testing.T) {
		pubSub := pubsub.New()
		policyID := types.NewID()

		ctx := context.Background()
		var successCount, failCount atomic.Int32
		limitCount := 100
		concurrency := limitCount * 2

		var wg gosync.WaitGroup
		subscriptions := make([]*pubsub.Subscription, concurrency)
		for i := 0; i < concurrency; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				sub, err := pubSub.Subscribe(ctx, types.NewID(), policyID, limitCount)
				if err == nil {
					successCount.Add(1)
					subscriptions[idx] = sub
				} else {
					failCount.Add(1)
					assert.ErrorIs(t, err, pubsub.ErrTooManySubscribers)
				}
			}(i)
		}
		wg.Wait()
		defer func() {
			for _, sub := range subscriptions {
				if sub != nil {
					pubSub.Unsubscribe(ctx, policyID, sub)
				}
			}
		}()

		assert.Equal(t, limitCount, int(successCount.Load()))
		assert.Equal(t, concurrency-limitCount, int(failCount.Load()))
	})

	t.Run("subscribers test", func(t *testing.T) {
		pubSub := pubsub.New()
		policyID := types.NewID()

		ctx := context.Background()
		subA, err := pubSub.Subscribe(ctx, sessionA, policyID, 0)
		assert.NoError(t, err)
		subB, err := pubSub.Subscribe(ctx, sessionB, policyID, 0)
		assert.NoError(t, err)

		ids := pubSub.Subscribers(policyID)
		assert.Len(t, ids, 2)
		assert.Contains(t, ids, sessionA)
		assert.Contains(t, ids, sessionB)

		pubSub.Unsubscribe(ctx, policyID, subA)
		pubSub.Unsubscribe(ctx, policyID, subB)
		assert.Len(t, pubSub.Subscribers(policyID), 0)
	})
}
