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

package database

import (
	"slices"
	"time"

	"github.com/polido-team/polido/api/types"
)

// CommentInfo represents a comment record on a policy document. Except for
// the Resolved flag, a comment is immutable after creation.
type CommentInfo struct {
	// ID is the unique identifier of the comment.
	ID types.ID `bson:"_id"`

	// PolicyID is the ID of the policy that this comment belongs to.
	PolicyID types.ID `bson:"policy_id"`

	// AuthorID is the user who posted this comment.
	AuthorID types.ID `bson:"author_id"`

	// Content is the comment body.
	Content string `bson:"content"`

	// Type is the kind of this comment.
	Type types.CommentType `bson:"comment_type"`

	// Position anchors the comment to a location in the content, if any.
	Position *types.CommentPosition `bson:"position,omitempty"`

	// ParentID threads this comment under another comment. Nil for roots.
	ParentID *types.ID `bson:"parent_comment_id,omitempty"`

	// Mentions lists the users mentioned in the body.
	Mentions []types.ID `bson:"mentions,omitempty"`

	// CreatedAt is the server-assigned creation time. Ordering by this
	// field is authoritative across participants.
	CreatedAt time.Time `bson:"created_at"`

	// Resolved marks the comment as handled.
	Resolved bool `bson:"resolved"`

	// ResolvedBy is the user who resolved this comment, if resolved.
	ResolvedBy *types.ID `bson:"resolved_by,omitempty"`

	// ResolvedAt is the time when this comment was resolved, if resolved.
	ResolvedAt *time.Time `bson:"resolved_at,omitempty"`
}

// NewCommentInfo creates a new CommentInfo from the given validated fields.
// The ID and CreatedAt are assigned by the database.
func NewCommentInfo(fields *types.CommentFields, mentions []types.ID) *CommentInfo {
	info := &CommentInfo{
		PolicyID: fields.PolicyID,
		AuthorID: fields.AuthorID,
		Content:  fields.Content,
		Type:     fields.Type,
		Mentions: slices.Clone(mentions),
	}

	if fields.Position != nil {
		position := *fields.Position
		info.Position = &position
	}
	if fields.ParentID != nil {
		parentID := *fields.ParentID
		info.ParentID = &parentID
	}

	return info
}

// ToCommentSummary converts database.CommentInfo to types.CommentSummary.
func (i *CommentInfo) ToCommentSummary() *types.CommentSummary {
	summary := &types.CommentSummary{
		ID:        i.ID,
		PolicyID:  i.PolicyID,
		AuthorID:  i.AuthorID,
		Content:   i.Content,
		Type:      i.Type,
		Mentions:  slices.Clone(i.Mentions),
		CreatedAt: i.CreatedAt,
		Resolved:  i.Resolved,
	}

	if i.Position != nil {
		position := *i.Position
		summary.Position = &position
	}
	if i.ParentID != nil {
		parentID := *i.ParentID
		summary.ParentID = &parentID
	}
	if i.ResolvedBy != nil {
		resolvedBy := *i.ResolvedBy
		summary.ResolvedBy = &resolvedBy
	}
	if i.ResolvedAt != nil {
		resolvedAt := *i.ResolvedAt
		summary.ResolvedAt = &resolvedAt
	}

	return summary
}

// DeepCopy creates a deep copy of the CommentInfo.
func (i *CommentInfo) DeepCopy() *CommentInfo {
	if i == nil {
		return nil
	}

	clone := *i
	clone.Mentions = slices.Clone(i.Mentions)
	if i.Position != nil {
		position := *i.Position
		clone.Position = &position
	}
	if i.ParentID != nil {
		parentID := *i.ParentID
		clone.ParentID = &parentID
	}
	if i.ResolvedBy != nil {
		resolvedBy := *i.ResolvedBy
		clone.ResolvedBy = &resolvedBy
	}
	if i.ResolvedAt != nil {
		resolvedAt := *i.ResolvedAt
		clone.ResolvedAt = &resolvedAt
	}
	return &clone
}
