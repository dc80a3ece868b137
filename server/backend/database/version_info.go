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
	"github.com/polido-team/polido/pkg/contents"
)

// VersionInfo represents an immutable policy version record. It stores a
// snapshot of the document content at a specific point in time, enabling
// rollback, audit, and version history tracking. Records are never mutated
// after creation; rollback inserts a new record instead.
type VersionInfo struct {
	// ID is the unique identifier of the version.
	ID types.ID `bson:"_id"`

	// PolicyID is the ID of the policy that this version belongs to.
	PolicyID types.ID `bson:"policy_id"`

	// Seq is the per-policy sequence number for ordering. It is assigned by
	// the database and strictly monotonic per policy.
	Seq int64 `bson:"seq"`

	// Title is the policy title at this version.
	Title string `bson:"title"`

	// Status is the review lifecycle state of this version.
	Status types.PolicyStatus `bson:"status"`

	// Category is the business category of the policy.
	Category string `bson:"category,omitempty"`

	// Jurisdictions lists the jurisdictions this version applies to.
	Jurisdictions []string `bson:"jurisdictions,omitempty"`

	// Tags are free-form labels attached to this version.
	Tags []string `bson:"tags,omitempty"`

	// Content is the serialized document tree at this version.
	Content contents.Node `bson:"content"`

	// CreatedBy is the user who created this version.
	CreatedBy types.ID `bson:"created_by"`

	// CreatedAt is the time when this version was created.
	CreatedAt time.Time `bson:"created_at"`

	// ChangeDescription explains why this version was created.
	ChangeDescription string `bson:"change_description,omitempty"`

	// WordCount is the number of words in the extracted content text.
	WordCount int `bson:"word_count"`

	// ApprovedBy is the user who approved this version, if any.
	ApprovedBy types.ID `bson:"approved_by,omitempty"`

	// PublishedBy is the user who published this version, if any.
	PublishedBy types.ID `bson:"published_by,omitempty"`
}

// NewVersionInfo creates a new VersionInfo from the given validated fields.
// The ID, Seq and CreatedAt are assigned by the database.
func NewVersionInfo(fields *types.VersionFields) *VersionInfo {
	return &VersionInfo{
		PolicyID:          fields.PolicyID,
		Title:             fields.Title,
		Status:            fields.Status,
		Category:          fields.Category,
		Jurisdictions:     slices.Clone(fields.Jurisdictions),
		Tags:              slices.Clone(fields.Tags),
		Content:           fields.Content,
		CreatedBy:         fields.CreatedBy,
		ChangeDescription: fields.ChangeDescription,
		WordCount:         contents.WordCount(fields.Content),
		ApprovedBy:        fields.ApprovedBy,
		PublishedBy:       fields.PublishedBy,
	}
}

// ToVersionSummary converts database.VersionInfo to types.VersionSummary.
func (i *VersionInfo) ToVersionSummary() *types.VersionSummary {
	return &types.VersionSummary{
		ID:                i.ID,
		PolicyID:          i.PolicyID,
		Seq:               i.Seq,
		Title:             i.Title,
		Status:            i.Status,
		Category:          i.Category,
		Jurisdictions:     slices.Clone(i.Jurisdictions),
		Tags:              slices.Clone(i.Tags),
		Content:           i.Content,
		CreatedBy:         i.CreatedBy,
		CreatedAt:         i.CreatedAt,
		ChangeDescription: i.ChangeDescription,
		WordCount:         i.WordCount,
		ApprovedBy:        i.ApprovedBy,
		PublishedBy:       i.PublishedBy,
	}
}

// DeepCopy creates a deep copy of the VersionInfo.
func (i *VersionInfo) DeepCopy() *VersionInfo {
	if i == nil {
		return nil
	}

	clone := *i
	clone.Jurisdictions = slices.Clone(i.Jurisdictions)
	clone.Tags = slices.Clone(i.Tags)
	return &clone
}
