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

import "time"

const (
	// DefaultActiveThreshold is the default silence below which a
	// participant is considered active.
	DefaultActiveThreshold = 2 * time.Minute

	// DefaultIdleThreshold is the default silence below which a participant
	// is considered idle rather than away.
	DefaultIdleThreshold = 5 * time.Minute

	// DefaultTypingTimeout is the default debounce after the last typing
	// signal before a typing-stopped event fires.
	DefaultTypingTimeout = 3 * time.Second

	// DefaultBroadcastInterval is the default minimum interval between
	// presence-updated broadcasts of a single session.
	DefaultBroadcastInterval = 30 * time.Second

	// DefaultEvictionThreshold is the default silence after which a session
	// is evicted by housekeeping.
	DefaultEvictionThreshold = 10 * time.Minute
)

// Config is the configuration of the presence Manager.
type Config struct {
	// ActiveThreshold is the silence below which a participant is active.
	ActiveThreshold time.Duration

	// IdleThreshold is the silence below which a participant is idle.
	IdleThreshold time.Duration

	// TypingTimeout is the debounce after the last typing signal before a
	// typing-stopped event fires.
	TypingTimeout time.Duration

	// BroadcastInterval is the minimum interval between presence-updated
	// broadcasts of a single session. Heartbeats inside the interval still
	// refresh LastActivity but are not fanned out.
	BroadcastInterval time.Duration

	// EvictionThreshold is the silence after which EvictStale removes a
	// session.
	EvictionThreshold time.Duration
}

func (c *Config) ensureDefaultValue() *Config {
	if c == nil {
		c = &Config{}
	}
	if c.ActiveThreshold == 0 {
		c.ActiveThreshold = DefaultActiveThreshold
	}
	if c.IdleThreshold == 0 {
		c.IdleThreshold = DefaultIdleThreshold
	}
	if c.TypingTimeout == 0 {
		c.TypingTimeout = DefaultTypingTimeout
	}
	if c.BroadcastInterval == 0 {
		c.BroadcastInterval = DefaultBroadcastInterval
	}
	if c.EvictionThreshold == 0 {
		c.EvictionThreshold = DefaultEvictionThreshold
	}
	return c
}
