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

// Package housekeeping provides the housekeeping service. The housekeeping
// service is responsible for evicting presence sessions that have been silent
// for a long time.
package housekeeping

import (
	"context"
	"fmt"
	"time"

	"github.com/polido-team/polido/server/backend/background"
	"github.com/polido-team/polido/server/backend/presence"
	"github.com/polido-team/polido/server/logging"
)

// Housekeeping is the housekeeping service. It periodically runs housekeeping
// tasks.
type Housekeeping struct {
	presence   *presence.Manager
	background *background.Background

	interval time.Duration

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// New creates a new housekeeping instance.
func New(
	conf *Config,
	presenceManager *presence.Manager,
	bg *background.Background,
) (*Housekeeping, error) {
	interval, err := time.ParseDuration(conf.Interval)
	if err != nil {
		return nil, fmt.Errorf("parse interval %s: %w", conf.Interval, err)
	}

	ctx, cancelFunc := context.WithCancel(context.Background())

	return &Housekeeping{
		presence:   presenceManager,
		background: bg,

		interval: interval,

		ctx:        ctx,
		cancelFunc: cancelFunc,
	}, nil
}

// Start starts the housekeeping service.
func (h *Housekeeping) Start() error {
	h.background.AttachGoroutine(h.run, "housekeeping")
	return nil
}

// Stop stops the housekeeping service.
func (h *Housekeeping) Stop() error {
	h.cancelFunc()

	return nil
}

// run is the housekeeping loop.
func (h *Housekeeping) run(ctx context.Context) {
	for {
		select {
		case <-time.After(h.interval):
		case <-h.ctx.Done():
			return
		}

		start := time.Now()
		if evicted := h.presence.EvictStale(ctx); evicted > 0 {
			logging.From(ctx).Infof(
				"HSKP: evicted %d stale sessions, %s",
				evicted,
				time.Since(start),
			)
		}
	}
}
