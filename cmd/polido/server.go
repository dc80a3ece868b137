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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/polido-team/polido/server"
	"github.com/polido-team/polido/server/backend/database/mongo"
	"github.com/polido-team/polido/server/logging"
)

var (
	gracefulTimeout = 10 * time.Second
)

var (
	flagConfPath string
	flagLogLevel string

	housekeepingInterval time.Duration

	presenceActiveThreshold   time.Duration
	presenceIdleThreshold     time.Duration
	presenceTypingTimeout     time.Duration
	presenceBroadcastInterval time.Duration
	presenceEvictionThreshold time.Duration

	notificationAutoCloseDelay time.Duration

	mongoConnectionURI     string
	mongoConnectionTimeout time.Duration
	mongoPolidoDatabase    string
	mongoPingTimeout       time.Duration

	conf = server.NewConfig()
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server [options]",
		Short: "Start Polido server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf.Housekeeping.Interval = housekeepingInterval.String()

			conf.Backend.PresenceActiveThreshold = presenceActiveThreshold.String()
			conf.Backend.PresenceIdleThreshold = presenceIdleThreshold.String()
			conf.Backend.PresenceTypingTimeout = presenceTypingTimeout.String()
			conf.Backend.PresenceBroadcastInterval = presenceBroadcastInterval.String()
			conf.Backend.PresenceEvictionThreshold = presenceEvictionThreshold.String()
			conf.Backend.NotificationAutoCloseDelay = notificationAutoCloseDelay.String()

			if mongoConnectionURI != "" {
				conf.Mongo = &mongo.Config{
					ConnectionURI:     mongoConnectionURI,
					ConnectionTimeout: mongoConnectionTimeout.String(),
					PolidoDatabase:    mongoPolidoDatabase,
					PingTimeout:       mongoPingTimeout.String(),
				}
			}

			// If config file is given, command-line arguments will be overwritten.
			if flagConfPath != "" {
				parsed, err := server.NewConfigFromFile(flagConfPath)
				if err != nil {
					return err
				}
				conf = parsed
			}

			if err := logging.SetLogLevel(flagLogLevel); err != nil {
				return err
			}

			p, err := server.New(conf)
			if err != nil {
				return err
			}

			if err := p.Start(); err != nil {
				return err
			}

			if code := handleSignal(p); code != 0 {
				return fmt.Errorf("exit code: %d", code)
			}

			return nil
		},
	}
}

func handleSignal(r *server.Polido) int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	var sig os.Signal
	select {
	case s := <-sigCh:
		sig = s
	case <-r.ShutdownCh():
		// polido is already shutdown
		return 0
	}

	graceful := false
	if sig == syscall.SIGINT || sig == syscall.SIGTERM {
		graceful = true
	}

	gracefulCh := make(chan struct{})
	go func() {
		if err := r.Shutdown(graceful); err != nil {
			return
		}
		close(gracefulCh)
	}()

	select {
	case <-sigCh:
		return 1
	case <-time.After(gracefulTimeout):
		return 1
	case <-gracefulCh:
		return 0
	}
}

func init() {
	cmd := newServerCmd()
	cmd.Flags().StringVarP(
		&flagConfPath,
		"config",
		"c",
		"",
		"Config path",
	)
	cmd.Flags().StringVarP(
		&flagLogLevel,
		"log-level",
		"l",
		"info",
		"Log level: debug, info, warn, error, panic, fatal",
	)
	cmd.Flags().IntVar(
		&conf.Profiling.Port,
		"profiling-port",
		server.DefaultProfilingPort,
		"Profiling port",
	)
	cmd.Flags().BoolVar(
		&conf.Profiling.EnablePprof,
		"enable-pprof",
		false,
		"Enable runtime profiling data via HTTP server.",
	)
	cmd.Flags().DurationVar(
		&housekeepingInterval,
		"housekeeping-interval",
		server.DefaultHousekeepingInterval,
		"housekeeping interval between housekeeping runs",
	)
	cmd.Flags().StringVar(
		&mongoConnectionURI,
		"mongo-connection-uri",
		"",
		"MongoDB's connection URI",
	)
	cmd.Flags().DurationVar(
		&mongoConnectionTimeout,
		"mongo-connection-timeout",
		server.DefaultMongoConnectionTimeout,
		"Mongo DB's connection timeout",
	)
	cmd.Flags().StringVar(
		&mongoPolidoDatabase,
		"mongo-polido-database",
		server.DefaultMongoPolidoDatabase,
		"Polido's database name in MongoDB",
	)
	cmd.Flags().DurationVar(
		&mongoPingTimeout,
		"mongo-ping-timeout",
		server.DefaultMongoPingTimeout,
		"Mongo DB's ping timeout",
	)
	cmd.Flags().IntVar(
		&conf.Backend.SubscriptionLimitPerPolicy,
		"backend-subscription-limit-per-policy",
		server.DefaultSubscriptionLimitPerPolicy,
		"Maximum number of subscribers per policy document. 0 means unlimited.",
	)
	cmd.Flags().DurationVar(
		&presenceActiveThreshold,
		"presence-active-threshold",
		server.DefaultPresenceActiveThreshold,
		"Window of recent activity during which an editor is shown as active.",
	)
	cmd.Flags().DurationVar(
		&presenceIdleThreshold,
		"presence-idle-threshold",
		server.DefaultPresenceIdleThreshold,
		"Window of inactivity after which an editor is shown as idle rather than away.",
	)
	cmd.Flags().DurationVar(
		&presenceTypingTimeout,
		"presence-typing-timeout",
		server.DefaultPresenceTypingTimeout,
		"Silence duration after which a typing indicator is cleared.",
	)
	cmd.Flags().DurationVar(
		&presenceBroadcastInterval,
		"presence-broadcast-interval",
		server.DefaultPresenceBroadcastInterval,
		"Minimum interval between presence broadcasts of a single session.",
	)
	cmd.Flags().DurationVar(
		&presenceEvictionThreshold,
		"presence-eviction-threshold",
		server.DefaultPresenceEvictionThreshold,
		"Silence duration after which a session is evicted by housekeeping.",
	)
	cmd.Flags().DurationVar(
		&notificationAutoCloseDelay,
		"notification-auto-close-delay",
		server.DefaultNotificationAutoCloseDelay,
		"Delay after which transient notifications are dismissed automatically.",
	)
	cmd.Flags().IntVar(
		&conf.Backend.NotificationMaxVisible,
		"notification-max-visible",
		server.DefaultNotificationMaxVisible,
		"Maximum number of notifications kept visible per observer.",
	)
	cmd.Flags().StringVar(
		&conf.Backend.Hostname,
		"hostname",
		server.DefaultHostname,
		"Polido Server Hostname",
	)

	rootCmd.AddCommand(cmd)
}
