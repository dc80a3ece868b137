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

// Package events defines the collaboration events that travel over the
// realtime channel of a policy document.
package events

import (
	"github.com/polido-team/polido/api/types"
)

// CollabEventType represents the type of a CollabEvent.
type CollabEventType string

const (
	// SessionJoinedEvent occurs when a participant joins a document.
	SessionJoinedEvent CollabEventType = "session-joined"

	// SessionLeftEvent occurs when a participant leaves a document, either
	// explicitly or by liveness eviction.
	SessionLeftEvent CollabEventType = "session-left"

	// PresenceUpdatedEvent occurs on a broadcast heartbeat.
	PresenceUpdatedEvent CollabEventType = "presence-updated"

	// TypingStartedEvent occurs when a participant starts typing a comment.
	TypingStartedEvent CollabEventType = "typing-started"

	// TypingStoppedEvent occurs when the typing debounce timer expires.
	TypingStoppedEvent CollabEventType = "typing-stopped"

	// CommentAddedEvent occurs when a comment is posted.
	CommentAddedEvent CollabEventType = "comment-added"

	// CommentResolvedEvent occurs when a comment is resolved.
	CommentResolvedEvent CollabEventType = "comment-resolved"

	// MentionEvent occurs for each user mentioned in a posted comment.
	MentionEvent CollabEventType = "mention"

	// VersionCreatedEvent occurs when a new version is saved or produced by
	// rollback.
	VersionCreatedEvent CollabEventType = "version-created"

	// VersionConflictEvent occurs when concurrent version creation collides.
	VersionConflictEvent CollabEventType = "version-conflict"

	// ConnectionStatusEvent occurs on channel connectivity changes.
	ConnectionStatusEvent CollabEventType = "connection-status"
)

// EventBody includes additional data specific to a CollabEvent.
type EventBody struct {
	// Presence carries the publisher's presence for presence events.
	Presence *types.UserPresence

	// Comment carries the comment for comment events.
	Comment *types.CommentSummary

	// Version carries the version for version events.
	Version *types.VersionSummary

	// MentionedUser is the target of a mention event.
	MentionedUser types.ID

	// Message is free-form display text, e.g. for connection status.
	Message string
}

// CollabEvent represents an event that occurs in a policy document session.
type CollabEvent struct {
	// Type is the type of the event.
	Type CollabEventType

	// PolicyID is the document in which the event occurred.
	PolicyID types.ID

	// Publisher is the session that published the event.
	Publisher types.ID

	// Body includes additional data specific to the event.
	Body EventBody
}
