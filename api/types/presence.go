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

// PresenceStatus is the derived activity state of a connected participant.
// It is computed at observation time from IsEditing and LastActivity and is
// never stored, so it self-corrects purely from the passage of time.
type PresenceStatus string

const (
	// PresenceEditing means the participant is actively editing.
	PresenceEditing PresenceStatus = "editing"

	// PresenceActive means the participant acted within the active threshold.
	PresenceActive PresenceStatus = "active"

	// PresenceIdle means the participant acted within the idle threshold.
	PresenceIdle PresenceStatus = "idle"

	// PresenceAway means the participant has been silent beyond the idle
	// threshold.
	PresenceAway PresenceStatus = "away"
)

// CursorPosition is the participant's cursor location in the document.
type CursorPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// UserPresence is the ephemeral, per-session record of a participant in a
// shared document session. It is created on channel join, updated on every
// heartbeat, and destroyed on leave or timeout. Fields merge last-write-wins
// across peers; there is no authoritative server copy beyond that.
type UserPresence struct {
	// SessionID identifies this connection. One user may hold several.
	SessionID ID `json:"session_id"`

	// UserID is the participant's identity.
	UserID ID `json:"user_id"`

	// UserName is the participant's display name.
	UserName string `json:"user_name"`

	// Color is the participant's avatar/cursor color.
	Color string `json:"color"`

	// IsEditing is true while the participant holds an active edit.
	IsEditing bool `json:"is_editing"`

	// Cursor is the participant's cursor position, if shared.
	Cursor *CursorPosition `json:"cursor,omitempty"`

	// LastActivity is the time of the participant's last heartbeat.
	LastActivity time.Time `json:"last_activity"`

	// JoinedAt orders participants stably for presence-avatar stacks.
	JoinedAt time.Time `json:"joined_at"`

	// Status is the derived activity state. It is filled on observation
	// snapshots only and is never part of the stored session state.
	Status PresenceStatus `json:"status,omitempty"`
}

// StatusAt derives the presence status at the given instant using the given
// thresholds.
func (p *UserPresence) StatusAt(now time.Time, active, idle time.Duration) PresenceStatus {
	if p.IsEditing {
		return PresenceEditing
	}

	silence := now.Sub(p.LastActivity)
	if silence < active {
		return PresenceActive
	}
	if silence < idle {
		return PresenceIdle
	}
	return PresenceAway
}
