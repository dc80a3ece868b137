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

// Package database provides the database interface for the Polido backend.
// The database is the single source of truth for version history: it must
// serialize concurrent version creation per policy so that sequence numbers
// stay strictly monotonic.
package database

import (
	"context"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/pkg/errors"
)

var (
	// ErrVersionNotFound is returned when the version could not be found.
	ErrVersionNotFound = errors.NotFound("version not found").WithCode("ErrVersionNotFound")

	// ErrCommentNotFound is returned when the comment could not be found.
	ErrCommentNotFound = errors.NotFound("comment not found").WithCode("ErrCommentNotFound")

	// ErrVersionConflict is returned when concurrent version creation for
	// the same policy collides on a sequence number. The caller surfaces it
	// to the user instead of retrying: merging intent is not mechanically
	// safe.
	ErrVersionConflict = errors.FailedPrecond("version conflict").WithCode("ErrVersionConflict")
)

// Database represents the storage which reads or saves Polido data.
type Database interface {
	// Close all resources of this database.
	Close() error

	// CreateVersionInfo stores a new immutable version of the given policy,
	// assigning the next sequence number atomically.
	CreateVersionInfo(ctx context.Context, fields *types.VersionFields) (*VersionInfo, error)

	// FindVersionInfosByPolicy returns all versions of the given policy in
	// descending sequence order.
	FindVersionInfosByPolicy(ctx context.Context, policyID types.ID) ([]*VersionInfo, error)

	// FindVersionInfoByID returns the version of the given ID.
	FindVersionInfoByID(ctx context.Context, id types.ID) (*VersionInfo, error)

	// FindLatestVersionInfo returns the most recent version of the given
	// policy.
	FindLatestVersionInfo(ctx context.Context, policyID types.ID) (*VersionInfo, error)

	// CreateCommentInfo stores a new comment with a server-assigned
	// creation time.
	CreateCommentInfo(ctx context.Context, fields *types.CommentFields, mentions []types.ID) (*CommentInfo, error)

	// FindCommentInfosByPolicy returns all comments of the given policy in
	// ascending creation order.
	FindCommentInfosByPolicy(ctx context.Context, policyID types.ID) ([]*CommentInfo, error)

	// FindCommentInfoByID returns the comment of the given ID.
	FindCommentInfoByID(ctx context.Context, id types.ID) (*CommentInfo, error)

	// ResolveCommentInfo marks the comment of the given ID as resolved and
	// reports whether this call performed the transition. Resolving an
	// already-resolved comment is a no-op.
	ResolveCommentInfo(ctx context.Context, id types.ID, resolvedBy types.ID) (*CommentInfo, bool, error)
}
