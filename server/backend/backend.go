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

// Package backend provides the backend implementation of the Polido engine.
// This package is responsible for managing the database and the other
// resources shared by the engine's services.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/server/backend/background"
	"github.com/polido-team/polido/server/backend/database"
	memdb "github.com/polido-team/polido/server/backend/database/memory"
	"github.com/polido-team/polido/server/backend/database/mongo"
	"github.com/polido-team/polido/server/backend/presence"
	"github.com/polido-team/polido/server/backend/pubsub"
	"github.com/polido-team/polido/server/housekeeping"
	"github.com/polido-team/polido/server/logging"
	"github.com/polido-team/polido/server/notifications"
	"github.com/polido-team/polido/server/profiling/prometheus"
)

// Backend manages Polido's backend such as Database and PubSub. It bundles
// the resources the version, comment and presence services operate on.
type Backend struct {
	Config *Config

	// PubSub is used to publish/subscribe collaboration events.
	PubSub *pubsub.PubSub
	// Presence is used to track connected participants.
	Presence *presence.Manager
	// Notifications derives user-facing alerts from events.
	Notifications *notifications.Dispatcher

	// Background is used to manage background tasks.
	Background *background.Background
	// Housekeeping is used to manage background batch tasks.
	Housekeeping *housekeeping.Housekeeping

	// Metrics is used to expose metrics.
	Metrics *prometheus.Metrics
	// DB is the database instance.
	DB database.Database
}

// New creates a new instance of Backend.
func New(
	conf *Config,
	mongoConf *mongo.Config,
	housekeepingConf *housekeeping.Config,
	metrics *prometheus.Metrics,
) (*Backend, error) {
	// 01. Build the server info with the given hostname or the hostname of
	// the current machine.
	if conf.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("os.Hostname: %w", err)
		}
		conf.Hostname = hostname
	}

	// 02. Create the pubsub, presence manager and notification dispatcher.
	pubSub := pubsub.New()
	presenceManager := presence.NewManager(&presence.Config{
		ActiveThreshold:   conf.ParsePresenceActiveThreshold(),
		IdleThreshold:     conf.ParsePresenceIdleThreshold(),
		TypingTimeout:     conf.ParsePresenceTypingTimeout(),
		BroadcastInterval: conf.ParsePresenceBroadcastInterval(),
		EvictionThreshold: conf.ParsePresenceEvictionThreshold(),
	}, pubSub, metrics)
	dispatcher := notifications.NewDispatcher(&notifications.Config{
		AutoCloseDelay: conf.ParseNotificationAutoCloseDelay(),
		MaxVisible:     conf.NotificationMaxVisible,
	})

	// 03. Create the background task manager.
	bg := background.New(metrics)

	// 04. Create the database instance. If the MongoDB configuration is
	// given, create a MongoDB instance. Otherwise, create a memory database.
	var db database.Database
	var err error
	if mongoConf != nil {
		db, err = mongo.Dial(mongoConf)
		if err != nil {
			return nil, err
		}
	} else {
		db, err = memdb.New()
		if err != nil {
			return nil, err
		}
	}

	// 05. Create the housekeeping instance.
	housekeeper, err := housekeeping.New(housekeepingConf, presenceManager, bg)
	if err != nil {
		return nil, err
	}

	dbInfo := "memory"
	if mongoConf != nil {
		dbInfo = mongoConf.ConnectionURI
	}
	logging.DefaultLogger().Infof("backend created: db: %s", dbInfo)

	return &Backend{
		Config: conf,

		PubSub:        pubSub,
		Presence:      presenceManager,
		Notifications: dispatcher,

		Background:   bg,
		Housekeeping: housekeeper,

		Metrics: metrics,
		DB:      db,
	}, nil
}

// Attach subscribes the given observer to the realtime channel of the policy
// document and pumps its events to the notification dispatcher until the
// subscription is closed.
func (b *Backend) Attach(
	ctx context.Context,
	observer types.ID,
	policyID types.ID,
) (*pubsub.Subscription, error) {
	sub, err := b.PubSub.Subscribe(ctx, observer, policyID, b.Config.SubscriptionLimitPerPolicy)
	if err != nil {
		return nil, err
	}

	b.Background.AttachGoroutine(func(ctx context.Context) {
		for event := range sub.Events() {
			b.Metrics.AddCollabEvents(event.Type)
			if notification := b.Notifications.Dispatch(observer, event); notification != nil {
				b.Metrics.AddNotifications(string(notification.Type))
			}
		}
	}, "event-pump")

	return sub, nil
}

// Detach unsubscribes the given subscription from the policy document and
// releases the notifications held for its observer.
func (b *Backend) Detach(
	ctx context.Context,
	policyID types.ID,
	sub *pubsub.Subscription,
) {
	b.PubSub.Unsubscribe(ctx, policyID, sub)
	b.Notifications.Release(sub.Subscriber())
}

// Start starts the backend.
func (b *Backend) Start() error {
	if err := b.Housekeeping.Start(); err != nil {
		return err
	}

	logging.DefaultLogger().Infof("backend started")
	return nil
}

// Shutdown closes all resources of this instance.
func (b *Backend) Shutdown() error {
	var errs []error

	if err := b.Housekeeping.Stop(); err != nil {
		errs = append(errs, err)
	}

	// Close the realtime channels first so the event pumps drain and exit
	// before the background manager waits for them.
	b.PubSub.Close()
	b.Background.Close()

	if err := b.DB.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logging.DefaultLogger().Infof("backend stopped")
	return nil
}
