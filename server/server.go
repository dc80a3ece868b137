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

// Package server provides the Polido server which is the main entry point of
// the Polido system. The server wires the backend with the profiling server
// and manages their lifecycle.
package server

import (
	gosync "sync"

	"github.com/polido-team/polido/server/backend"
	"github.com/polido-team/polido/server/profiling"
	"github.com/polido-team/polido/server/profiling/prometheus"
)

// Polido is a server of Polido. The server stores policy document versions,
// tracks presence of collaborating editors, and propagates collaboration
// events to subscribers.
type Polido struct {
	lock gosync.Mutex

	conf            *Config
	backend         *backend.Backend
	profilingServer *profiling.Server

	shutdown   bool
	shutdownCh chan struct{}
}

// New creates a new instance of Polido.
func New(conf *Config) (*Polido, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	metrics, err := prometheus.NewMetrics()
	if err != nil {
		return nil, err
	}

	be, err := backend.New(
		conf.Backend,
		conf.Mongo,
		conf.Housekeeping,
		metrics,
	)
	if err != nil {
		return nil, err
	}

	var profilingServer *profiling.Server
	if conf.Profiling != nil {
		profilingServer = profiling.NewServer(conf.Profiling, metrics)
	}

	return &Polido{
		conf:            conf,
		backend:         be,
		profilingServer: profilingServer,
		shutdownCh:      make(chan struct{}),
	}, nil
}

// Start starts the server.
func (r *Polido) Start() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.backend.Start(); err != nil {
		return err
	}

	if r.profilingServer != nil {
		return r.profilingServer.Start()
	}

	return nil
}

// Shutdown shuts down this Polido server.
func (r *Polido) Shutdown(graceful bool) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.shutdown {
		return nil
	}

	if r.profilingServer != nil {
		r.profilingServer.Shutdown(graceful)
	}

	if err := r.backend.Shutdown(); err != nil {
		return err
	}

	close(r.shutdownCh)
	r.shutdown = true
	return nil
}

// ShutdownCh returns the shutdown channel.
func (r *Polido) ShutdownCh() <-chan struct{} {
	return r.shutdownCh
}

// Backend returns the backend of this server.
func (r *Polido) Backend() *backend.Backend {
	return r.backend
}
