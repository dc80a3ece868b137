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

	"github.com/polido-team/polido/pkg/contents"
)

// PolicyStatus represents the review lifecycle state of a policy version.
type PolicyStatus string

const (
	// StatusDraft is the initial state of a freshly saved or rolled-back version.
	StatusDraft PolicyStatus = "draft"

	// StatusUnderReview is the state while approvers are reviewing the version.
	StatusUnderReview PolicyStatus = "under_review"

	// StatusApproved is the state after the version has been approved.
	StatusApproved PolicyStatus = "approved"

	// StatusPublished is the state after the version has been published.
	StatusPublished PolicyStatus = "published"

	// StatusArchived is the terminal state of a superseded version.
	StatusArchived PolicyStatus = "archived"
)

// IsValid returns true if this status is a member of the closed enumeration.
// The timeline stores whatever status it is given; transition validation is
// the concern of the surrounding workflow system.
func (s PolicyStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusUnderReview, StatusApproved, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// VersionSummary represents an immutable snapshot of a policy document.
// A summary is created on every save, publish, and rollback; it is never
// mutated after creation. Rollback produces a new version whose content
// equals a prior version's content, it never rewrites history.
type VersionSummary struct {
	// ID is the unique identifier of the version.
	ID ID `json:"id"`

	// PolicyID is the ID of the policy document this version belongs to.
	PolicyID ID `json:"policy_id"`

	// Seq is the per-policy sequence number. It is storage-assigned and
	// strictly monotonic: no two versions of one policy share a Seq.
	Seq int64 `json:"seq"`

	// Title is the policy title at the time of this version.
	Title string `json:"title"`

	// Status is the review lifecycle state of this version.
	Status PolicyStatus `json:"status"`

	// Category is the business category of the policy.
	Category string `json:"category"`

	// Jurisdictions lists the jurisdictions this version applies to.
	Jurisdictions []string `json:"jurisdictions"`

	// Tags are free-form labels attached to this version.
	Tags []string `json:"tags"`

	// Content is the serialized document tree of this version.
	Content contents.Node `json:"content"`

	// CreatedBy is the user who created this version.
	CreatedBy ID `json:"created_by"`

	// CreatedAt is the server-assigned creation time.
	CreatedAt time.Time `json:"created_at"`

	// ChangeDescription explains why this version was created. For versions
	// produced by rollback it carries the caller-supplied reason and is part
	// of the permanent audit trail.
	ChangeDescription string `json:"change_description,omitempty"`

	// WordCount is the number of words in the extracted content text.
	WordCount int `json:"word_count"`

	// ApprovedBy is the user who approved this version, if any.
	ApprovedBy ID `json:"approved_by,omitempty"`

	// PublishedBy is the user who published this version, if any.
	PublishedBy ID `json:"published_by,omitempty"`

	// IsLatest is set on the most recent version when listing a timeline.
	// Rollback is only offered for versions where IsLatest is false.
	IsLatest bool `json:"is_latest"`
}

// VersionFields is a set of fields that are used to create a new version
// of a policy.
type VersionFields struct {
	PolicyID          ID            `bson:"policy_id" validate:"required"`
	Title             string        `bson:"title" validate:"required"`
	Status            PolicyStatus  `bson:"status" validate:"required,policy_status"`
	Category          string        `bson:"category,omitempty"`
	Jurisdictions     []string      `bson:"jurisdictions,omitempty"`
	Tags              []string      `bson:"tags,omitempty"`
	Content           contents.Node `bson:"content"`
	CreatedBy         ID            `bson:"created_by" validate:"required"`
	ChangeDescription string        `bson:"change_description,omitempty"`
	ApprovedBy        ID            `bson:"approved_by,omitempty"`
	PublishedBy       ID            `bson:"published_by,omitempty"`
}
