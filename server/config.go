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

package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/polido-team/polido/server/backend"
	"github.com/polido-team/polido/server/backend/database/mongo"
	"github.com/polido-team/polido/server/housekeeping"
	"github.com/polido-team/polido/server/profiling"
)

// Below are the values of the default values of Polido config.
const (
	DefaultProfilingPort = 8081

	DefaultHousekeepingInterval = 1 * time.Minute

	DefaultMongoConnectionURI     = "mongodb://localhost:27017"
	DefaultMongoConnectionTimeout = 5 * time.Second
	DefaultMongoPingTimeout       = 5 * time.Second
	DefaultMongoPolidoDatabase    = "polido-meta"

	DefaultSubscriptionLimitPerPolicy = 0

	DefaultPresenceActiveThreshold   = 2 * time.Minute
	DefaultPresenceIdleThreshold     = 5 * time.Minute
	DefaultPresenceTypingTimeout     = 3 * time.Second
	DefaultPresenceBroadcastInterval = 30 * time.Second
	DefaultPresenceEvictionThreshold = 10 * time.Minute

	DefaultNotificationAutoCloseDelay = 5 * time.Second
	DefaultNotificationMaxVisible     = 5

	DefaultHostname = ""
)

// Config is the configuration for creating a Polido instance.
type Config struct {
	Profiling    *profiling.Config    `yaml:"Profiling"`
	Housekeeping *housekeeping.Config `yaml:"Housekeeping"`
	Backend      *backend.Config      `yaml:"Backend"`
	Mongo        *mongo.Config        `yaml:"Mongo"`
}

// NewConfig returns a Config struct that contains reasonable defaults
// for most of the configurations.
func NewConfig() *Config {
	conf := &Config{
		Profiling:    &profiling.Config{},
		Housekeeping: &housekeeping.Config{},
		Backend:      &backend.Config{},
	}
	conf.ensureDefaultValue()
	return conf
}

// NewConfigFromFile returns a Config struct for the given conf file.
func NewConfigFromFile(path string) (*Config, error) {
	conf := &Config{}
	bytes, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err = yaml.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}

	if conf.Profiling == nil {
		conf.Profiling = &profiling.Config{}
	}
	if conf.Housekeeping == nil {
		conf.Housekeeping = &housekeeping.Config{}
	}
	if conf.Backend == nil {
		conf.Backend = &backend.Config{}
	}

	conf.ensureDefaultValue()
	return conf, nil
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if err := c.Profiling.Validate(); err != nil {
		return err
	}

	if err := c.Housekeeping.Validate(); err != nil {
		return err
	}

	if err := c.Backend.Validate(); err != nil {
		return err
	}

	if c.Mongo != nil {
		if err := c.Mongo.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ensureDefaultValue sets the value of the option to which the default value
// should be applied when the user does not input it.
func (c *Config) ensureDefaultValue() {
	if c.Profiling.Port == 0 {
		c.Profiling.Port = DefaultProfilingPort
	}

	if c.Housekeeping.Interval == "" {
		c.Housekeeping.Interval = DefaultHousekeepingInterval.String()
	}

	if c.Backend.SubscriptionLimitPerPolicy == 0 {
		c.Backend.SubscriptionLimitPerPolicy = DefaultSubscriptionLimitPerPolicy
	}
	if c.Backend.PresenceActiveThreshold == "" {
		c.Backend.PresenceActiveThreshold = DefaultPresenceActiveThreshold.String()
	}
	if c.Backend.PresenceIdleThreshold == "" {
		c.Backend.PresenceIdleThreshold = DefaultPresenceIdleThreshold.String()
	}
	if c.Backend.PresenceTypingTimeout == "" {
		c.Backend.PresenceTypingTimeout = DefaultPresenceTypingTimeout.String()
	}
	if c.Backend.PresenceBroadcastInterval == "" {
		c.Backend.PresenceBroadcastInterval = DefaultPresenceBroadcastInterval.String()
	}
	if c.Backend.PresenceEvictionThreshold == "" {
		c.Backend.PresenceEvictionThreshold = DefaultPresenceEvictionThreshold.String()
	}
	if c.Backend.NotificationAutoCloseDelay == "" {
		c.Backend.NotificationAutoCloseDelay = DefaultNotificationAutoCloseDelay.String()
	}
	if c.Backend.NotificationMaxVisible == 0 {
		c.Backend.NotificationMaxVisible = DefaultNotificationMaxVisible
	}

	if c.Mongo != nil {
		if c.Mongo.ConnectionURI == "" {
			c.Mongo.ConnectionURI = DefaultMongoConnectionURI
		}
		if c.Mongo.ConnectionTimeout == "" {
			c.Mongo.ConnectionTimeout = DefaultMongoConnectionTimeout.String()
		}
		if c.Mongo.PolidoDatabase == "" {
			c.Mongo.PolidoDatabase = DefaultMongoPolidoDatabase
		}
		if c.Mongo.PingTimeout == "" {
			c.Mongo.PingTimeout = DefaultMongoPingTimeout.String()
		}
	}
}
