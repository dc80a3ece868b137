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

// Package pubsub provides an in-memory event fanout for the realtime channel
// of policy documents, used for single server.
package pubsub

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/api/types/events"
	"github.com/polido-team/polido/pkg/cmap"
	"github.com/polido-team/polido/pkg/errors"
	"github.com/polido-team/polido/server/logging"
)

// ErrTooManySubscribers is returned when the subscription limit is exceeded.
var ErrTooManySubscribers = errors.ResourceExhausted("subscription limit exceeded").WithCode("ErrTooManySubscribers")

// PubSub is the memory implementation of PubSub, used for single server.
type PubSub struct {
	subsMap *cmap.Map[types.ID, *Subscriptions]
}

// New creates an instance of PubSub.
func New() *PubSub {
	return &PubSub{
		subsMap: cmap.New[types.ID, *Subscriptions](),
	}
}

// Subscribe subscribes to the events of the given policy document.
func (m *PubSub) Subscribe(
	ctx context.Context,
	subscriber types.ID,
	policyID types.ID,
	limit int,
) (*Subscription, error) {
	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Subscribe(%s,%s) Start`, policyID, subscriber)
	}

	// NOTE: a nil newSub after the upsert means the limit was exceeded and
	// the subscription was not created.
	var newSub *Subscription
	_ = m.subsMap.Upsert(policyID, func(subs *Subscriptions, exists bool) *Subscriptions {
		if !exists {
			subs = newSubscriptions(policyID)
		}

		if limit > 0 && subs.Len() >= limit {
			return subs
		}

		newSub = NewSubscription(subscriber)
		subs.Set(newSub)
		return subs
	})

	if newSub == nil {
		return nil, fmt.Errorf(
			"%d subscribers allowed per policy: %w",
			limit,
			ErrTooManySubscribers,
		)
	}

	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Subscribe(%s,%s) End`, policyID, subscriber)
	}

	return newSub, nil
}

// Unsubscribe unsubscribes from the events of the given policy document.
func (m *PubSub) Unsubscribe(
	ctx context.Context,
	policyID types.ID,
	sub *Subscription,
) {
	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Unsubscribe(%s,%s) Start`, policyID, sub.Subscriber())
	}

	sub.Close()

	if subs, ok := m.subsMap.Get(policyID); ok {
		subs.Delete(sub.ID())

		m.subsMap.Delete(policyID, func(subs *Subscriptions, exists bool) bool {
			return exists && subs.Len() == 0
		})
	}

	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Unsubscribe(%s,%s) End`, policyID, sub.Subscriber())
	}
}

// Publish publishes the given event to all subscribers of the event's policy
// document, except the publisher itself. A delivery failure to one
// subscriber never affects the others; it is logged and swallowed.
func (m *PubSub) Publish(
	ctx context.Context,
	event events.CollabEvent,
) {
	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Publish(%s,%s) Start`, event.PolicyID, event.Publisher)
	}

	if subs, ok := m.subsMap.Get(event.PolicyID); ok {
		for _, sub := range subs.Values() {
			if sub.Subscriber() == event.Publisher {
				continue
			}

			if ok := sub.Publish(event); !ok {
				logging.From(ctx).Warnf(
					`Publish(%s,%s) to %s timeout or closed`,
					event.PolicyID,
					event.Publisher,
					sub.Subscriber(),
				)
			}
		}
	}

	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Publish(%s,%s) End`, event.PolicyID, event.Publisher)
	}
}

// Subscribers returns the subscribers of the given policy document.
func (m *PubSub) Subscribers(policyID types.ID) []types.ID {
	subs, ok := m.subsMap.Get(policyID)
	if !ok {
		return nil
	}

	var ids []types.ID
	for _, sub := range subs.Values() {
		ids = append(ids, sub.Subscriber())
	}
	return ids
}

// Close closes every subscription of every policy document. Consumers
// ranging over a subscription's event channel observe the close and exit.
func (m *PubSub) Close() {
	for _, subs := range m.subsMap.Values() {
		subs.Close()
	}
}
