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

package types

import (
	"time"
)

// NotificationType classifies a user-facing collaboration alert.
type NotificationType string

const (
	// NotificationUserJoined announces a participant joining the document.
	NotificationUserJoined NotificationType = "user_joined"

	// NotificationUserLeft announces a participant leaving the document.
	NotificationUserLeft NotificationType = "user_left"

	// NotificationCommentAdded announces a new comment.
	NotificationCommentAdded NotificationType = "comment_added"

	// NotificationMention announces that the observer was mentioned.
	// Mentions require explicit dismissal.
	NotificationMention NotificationType = "mention"

	// NotificationCommentResolved announces a resolved comment.
	NotificationCommentResolved NotificationType = "comment_resolved"

	// NotificationConflict announces a conflicting concurrent edit.
	// Conflicts require explicit dismissal.
	NotificationConflict NotificationType = "conflict"

	// NotificationConnectionStatus announces channel connectivity changes.
	NotificationConnectionStatus NotificationType = "connection_status"
)

// AutoClose returns the fixed auto-close policy of this notification type.
// Mention and conflict alerts must not disappear unacknowledged.
func (t NotificationType) AutoClose() bool {
	switch t {
	case NotificationMention, NotificationConflict:
		return false
	}
	return true
}

// Notification is a single user-facing collaboration alert. It is created by
// event handlers and destroyed on dismissal or, for auto-closing types, after
// a fixed timeout.
type Notification struct {
	// ID is the unique identifier of this notification instance.
	ID string `json:"id"`

	// Type classifies the alert.
	Type NotificationType `json:"type"`

	// Message is the display text.
	Message string `json:"message"`

	// Timestamp is when the alert was enqueued.
	Timestamp time.Time `json:"timestamp"`

	// AutoClose mirrors Type.AutoClose for the presentation layer.
	AutoClose bool `json:"auto_close"`
}
