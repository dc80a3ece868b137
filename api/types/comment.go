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

const (
	// CommentMinLength is the minimum length of a comment body.
	CommentMinLength = 10

	// CommentMaxLength is the maximum length of a comment body.
	CommentMaxLength = 10000
)

// CommentType represents the kind of a comment. Types are used purely for
// filtering and visual grouping; they carry no distinct business logic.
type CommentType string

const (
	// CommentGeneral is a plain discussion comment.
	CommentGeneral CommentType = "general"

	// CommentSuggestion proposes a concrete change.
	CommentSuggestion CommentType = "suggestion"

	// CommentQuestion asks for clarification.
	CommentQuestion CommentType = "question"

	// CommentApproval records an approval remark.
	CommentApproval CommentType = "approval"

	// CommentRejection records a rejection remark.
	CommentRejection CommentType = "rejection"

	// CommentAnnotation anchors a note to a position in the content.
	CommentAnnotation CommentType = "annotation"
)

// IsValid returns true if this comment type is a member of the closed
// enumeration.
func (t CommentType) IsValid() bool {
	switch t {
	case CommentGeneral, CommentSuggestion, CommentQuestion,
		CommentApproval, CommentRejection, CommentAnnotation:
		return true
	}
	return false
}

// CommentPosition is an anchor identifying where in a document's content a
// comment applies.
type CommentPosition struct {
	// Path is the addressable location, e.g. "content.line.3".
	Path string `json:"path"`

	// Offset is the character offset within the addressed location.
	Offset int `json:"offset"`
}

// CommentSummary represents a comment on a policy document. Comments are
// append-only: except for the Resolved flag, a comment is immutable after
// creation.
type CommentSummary struct {
	// ID is the unique identifier of the comment.
	ID ID `json:"id"`

	// PolicyID is the ID of the policy document this comment belongs to.
	PolicyID ID `json:"policy_id"`

	// AuthorID is the user who posted this comment.
	AuthorID ID `json:"author_id"`

	// Content is the comment body.
	Content string `json:"content"`

	// Type is the kind of this comment.
	Type CommentType `json:"comment_type"`

	// Position anchors the comment to a location in the content, if any.
	Position *CommentPosition `json:"position,omitempty"`

	// ParentID threads this comment under another comment. Nil for roots.
	ParentID *ID `json:"parent_comment_id,omitempty"`

	// Mentions lists the users mentioned in the body, by identifier.
	Mentions []ID `json:"mentions,omitempty"`

	// CreatedAt is the server-assigned creation time. Ordering by this
	// field is authoritative; client clocks are never trusted.
	CreatedAt time.Time `json:"created_at"`

	// Resolved marks the comment as handled. Any participant with edit
	// rights may flip it.
	Resolved bool `json:"resolved"`

	// ResolvedBy is the user who resolved this comment, if resolved.
	ResolvedBy *ID `json:"resolved_by,omitempty"`

	// ResolvedAt is the time when this comment was resolved, if resolved.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// CommentFields is a set of fields that are used to post a comment.
type CommentFields struct {
	PolicyID ID               `bson:"policy_id" validate:"required"`
	AuthorID ID               `bson:"author_id" validate:"required"`
	Content  string           `bson:"content" validate:"required,min=10,max=10000"`
	Type     CommentType      `bson:"comment_type" validate:"required,comment_type"`
	Position *CommentPosition `bson:"position,omitempty"`
	ParentID *ID              `bson:"parent_comment_id,omitempty"`
}

// CommentThread is a comment with its replies, assembled for display.
type CommentThread struct {
	Comment *CommentSummary  `json:"comment"`
	Replies []*CommentThread `json:"replies,omitempty"`
}
