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

// Package prometheus provides a Prometheus metrics exporter.
package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/polido-team/polido/api/types/events"
	"github.com/polido-team/polido/internal/version"
)

const (
	namespace             = "polido"
	taskTypeLabel         = "task_type"
	collabEventTypeLabel  = "collab_event_type"
	notificationTypeLabel = "notification_type"
)

// Metrics manages the metric information that Polido is trying to measure.
type Metrics struct {
	registry *prometheus.Registry

	serverVersion *prometheus.GaugeVec

	versionsCreatedTotal  prometheus.Counter
	rollbacksTotal        prometheus.Counter
	versionConflictsTotal prometheus.Counter
	compareSeconds        prometheus.Histogram

	commentsPostedTotal   prometheus.Counter
	commentsResolvedTotal prometheus.Counter
	mentionsTotal         prometheus.Counter

	presenceSessionsTotal prometheus.Gauge
	collabEventsTotal     *prometheus.CounterVec
	notificationsTotal    *prometheus.CounterVec

	backgroundGoroutinesTotal *prometheus.GaugeVec
}

// NewMetrics creates a new instance of Metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	metrics := &Metrics{
		registry: reg,
		serverVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "version",
			Help:      "Which version is running. 1 for 'server_version' label with current version.",
		}, []string{"server_version"}),
		versionsCreatedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "versions",
			Name:      "created_total",
			Help:      "The total number of policy versions created, including rollbacks.",
		}),
		rollbacksTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "versions",
			Name:      "rollbacks_total",
			Help:      "The total number of rollbacks performed.",
		}),
		versionConflictsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "versions",
			Name:      "conflicts_total",
			Help:      "The total number of version creations rejected by a sequence conflict.",
		}),
		compareSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "versions",
			Name:      "compare_seconds",
			Help:      "The time taken to compare two versions.",
		}),
		commentsPostedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "comments",
			Name:      "posted_total",
			Help:      "The total number of comments posted.",
		}),
		commentsResolvedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "comments",
			Name:      "resolved_total",
			Help:      "The total number of comments resolved.",
		}),
		mentionsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "comments",
			Name:      "mentions_total",
			Help:      "The total number of mention events produced by posted comments.",
		}),
		presenceSessionsTotal: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "presence",
			Name:      "sessions_total",
			Help:      "The current number of connected presence sessions.",
		}),
		collabEventsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "events_total",
			Help:      "The total number of collaboration events published per type.",
		}, []string{collabEventTypeLabel}),
		notificationsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "dispatched_total",
			Help:      "The total number of notifications dispatched per type.",
		}, []string{notificationTypeLabel}),
		backgroundGoroutinesTotal: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "background",
			Name:      "goroutines_total",
			Help:      "The total number of goroutines attached by a particular background task.",
		}, []string{taskTypeLabel}),
	}

	metrics.serverVersion.With(prometheus.Labels{
		"server_version": version.Version,
	}).Set(1)

	return metrics, nil
}

// AddVersionsCreated adds the number of policy versions created.
func (m *Metrics) AddVersionsCreated() {
	m.versionsCreatedTotal.Inc()
}

// AddRollbacks adds the number of rollbacks performed.
func (m *Metrics) AddRollbacks() {
	m.rollbacksTotal.Inc()
}

// AddVersionConflicts adds the number of rejected concurrent version creations.
func (m *Metrics) AddVersionConflicts() {
	m.versionConflictsTotal.Inc()
}

// ObserveCompareSeconds adds an observation for the time taken to compare two
// versions.
func (m *Metrics) ObserveCompareSeconds(seconds float64) {
	m.compareSeconds.Observe(seconds)
}

// AddCommentsPosted adds the number of comments posted.
func (m *Metrics) AddCommentsPosted() {
	m.commentsPostedTotal.Inc()
}

// AddCommentsResolved adds the number of comments resolved.
func (m *Metrics) AddCommentsResolved() {
	m.commentsResolvedTotal.Inc()
}

// AddMentions adds the number of mention events produced.
func (m *Metrics) AddMentions(count int) {
	m.mentionsTotal.Add(float64(count))
}

// AddPresenceSessions adds the number of connected presence sessions.
func (m *Metrics) AddPresenceSessions() {
	m.presenceSessionsTotal.Inc()
}

// RemovePresenceSessions removes the number of connected presence sessions.
func (m *Metrics) RemovePresenceSessions() {
	m.presenceSessionsTotal.Dec()
}

// AddCollabEvents adds the number of collaboration events published.
func (m *Metrics) AddCollabEvents(eventType events.CollabEventType) {
	m.collabEventsTotal.With(prometheus.Labels{
		collabEventTypeLabel: string(eventType),
	}).Inc()
}

// AddNotifications adds the number of notifications dispatched.
func (m *Metrics) AddNotifications(notificationType string) {
	m.notificationsTotal.With(prometheus.Labels{
		notificationTypeLabel: notificationType,
	}).Inc()
}

// AddBackgroundGoroutines adds the number of goroutines attached by a particular background task.
func (m *Metrics) AddBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Inc()
}

// RemoveBackgroundGoroutines removes the number of goroutines attached by a particular background task.
func (m *Metrics) RemoveBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Dec()
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
