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

package backend

import (
	"fmt"
	"os"
	"time"
)

// Config is the configuration for creating a Backend instance.
type Config struct {
	// SubscriptionLimitPerPolicy is the maximum number of realtime channel
	// subscribers per policy document. Zero means unlimited.
	SubscriptionLimitPerPolicy int `yaml:"SubscriptionLimitPerPolicy"`

	// PresenceActiveThreshold is the silence below which a participant is
	// reported active.
	PresenceActiveThreshold string `yaml:"PresenceActiveThreshold"`

	// PresenceIdleThreshold is the silence below which a participant is
	// reported idle rather than away.
	PresenceIdleThreshold string `yaml:"PresenceIdleThreshold"`

	// PresenceTypingTimeout is the debounce after the last typing signal
	// before a typing-stopped event fires.
	PresenceTypingTimeout string `yaml:"PresenceTypingTimeout"`

	// PresenceBroadcastInterval is the minimum interval between
	// presence-updated broadcasts of a single session.
	PresenceBroadcastInterval string `yaml:"PresenceBroadcastInterval"`

	// PresenceEvictionThreshold is the silence after which housekeeping
	// evicts a session.
	PresenceEvictionThreshold string `yaml:"PresenceEvictionThreshold"`

	// NotificationAutoCloseDelay is the visible lifetime of auto-closing
	// notifications.
	NotificationAutoCloseDelay string `yaml:"NotificationAutoCloseDelay"`

	// NotificationMaxVisible bounds an observer's notification queue.
	NotificationMaxVisible int `yaml:"NotificationMaxVisible"`

	// Hostname is the polido server hostname. hostname is used by metrics.
	Hostname string `yaml:"Hostname"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	for flag, value := range map[string]string{
		"--presence-active-threshold":     c.PresenceActiveThreshold,
		"--presence-idle-threshold":       c.PresenceIdleThreshold,
		"--presence-typing-timeout":       c.PresenceTypingTimeout,
		"--presence-broadcast-interval":   c.PresenceBroadcastInterval,
		"--presence-eviction-threshold":   c.PresenceEvictionThreshold,
		"--notification-auto-close-delay": c.NotificationAutoCloseDelay,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf(
				`invalid argument "%s" for "%s" flag: %w`,
				value,
				flag,
				err,
			)
		}
	}

	return nil
}

// ParsePresenceActiveThreshold returns the active threshold duration.
func (c *Config) ParsePresenceActiveThreshold() time.Duration {
	return c.parseDuration(c.PresenceActiveThreshold, "presence active threshold")
}

// ParsePresenceIdleThreshold returns the idle threshold duration.
func (c *Config) ParsePresenceIdleThreshold() time.Duration {
	return c.parseDuration(c.PresenceIdleThreshold, "presence idle threshold")
}

// ParsePresenceTypingTimeout returns the typing debounce duration.
func (c *Config) ParsePresenceTypingTimeout() time.Duration {
	return c.parseDuration(c.PresenceTypingTimeout, "presence typing timeout")
}

// ParsePresenceBroadcastInterval returns the broadcast interval duration.
func (c *Config) ParsePresenceBroadcastInterval() time.Duration {
	return c.parseDuration(c.PresenceBroadcastInterval, "presence broadcast interval")
}

// ParsePresenceEvictionThreshold returns the eviction threshold duration.
func (c *Config) ParsePresenceEvictionThreshold() time.Duration {
	return c.parseDuration(c.PresenceEvictionThreshold, "presence eviction threshold")
}

// ParseNotificationAutoCloseDelay returns the notification auto-close delay.
func (c *Config) ParseNotificationAutoCloseDelay() time.Duration {
	return c.parseDuration(c.NotificationAutoCloseDelay, "notification auto close delay")
}

func (c *Config) parseDuration(value, name string) time.Duration {
	result, err := time.ParseDuration(value)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse "+name+": %w", err)
		os.Exit(1)
	}

	return result
}
