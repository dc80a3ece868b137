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

package server_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/polido-team/polido/server"
)

func TestNewConfigFromFile(t *testing.T) {
	t.Run("fail read config file test", func(t *testing.T) {
		conf := server.NewConfig()
		_, err := server.NewConfigFromFile("nowhere.yml")
		assert.Error(t, err)
		assert.Equal(t, conf.Profiling.Port, server.DefaultProfilingPort)
		assert.Equal(t, conf.Housekeeping.Interval, server.DefaultHousekeepingInterval.String())
		assert.Nil(t, conf.Mongo)
	})

	t.Run("read config file test", func(t *testing.T) {
		filePath := "config.sample.yml"
		conf, err := server.NewConfigFromFile(filePath)
		assert.NoError(t, err)
		assert.NoError(t, conf.Validate())

		assert.Equal(t, conf.Profiling.Port, server.DefaultProfilingPort)

		connTimeout, err := time.ParseDuration(conf.Mongo.ConnectionTimeout)
		assert.NoError(t, err)
		assert.Equal(t, connTimeout, server.DefaultMongoConnectionTimeout)
		assert.Equal(t, conf.Mongo.ConnectionURI, server.DefaultMongoConnectionURI)
		assert.Equal(t, conf.Mongo.PolidoDatabase, server.DefaultMongoPolidoDatabase)

		pingTimeout, err := time.ParseDuration(conf.Mongo.PingTimeout)
		assert.NoError(t, err)
		assert.Equal(t, pingTimeout, server.DefaultMongoPingTimeout)

		activeThreshold, err := time.ParseDuration(conf.Backend.PresenceActiveThreshold)
		assert.NoError(t, err)
		assert.Equal(t, activeThreshold, server.DefaultPresenceActiveThreshold)

		idleThreshold, err := time.ParseDuration(conf.Backend.PresenceIdleThreshold)
		assert.NoError(t, err)
		assert.Equal(t, idleThreshold, server.DefaultPresenceIdleThreshold)

		typingTimeout, err := time.ParseDuration(conf.Backend.PresenceTypingTimeout)
		assert.NoError(t, err)
		assert.Equal(t, typingTimeout, server.DefaultPresenceTypingTimeout)

		autoCloseDelay, err := time.ParseDuration(conf.Backend.NotificationAutoCloseDelay)
		assert.NoError(t, err)
		assert.Equal(t, autoCloseDelay, server.DefaultNotificationAutoCloseDelay)
		assert.Equal(t, conf.Backend.NotificationMaxVisible, server.DefaultNotificationMaxVisible)
	})
}
