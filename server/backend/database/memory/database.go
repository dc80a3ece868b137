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

// Package memory implements the database interface using an in-memory database.
package memory

import (
	"context"
	"fmt"
	"math"
	gotime "time"

	"github.com/hashicorp/go-memdb"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/server/backend/database"
)

// DB is an in-memory database for testing or temporarily.
type DB struct {
	db *memdb.MemDB
}

// New returns a new in-memory database.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db: memDB,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return nil
}

// CreateVersionInfo stores the given version snapshot and assigns the next
// sequence number of the policy to it.
func (d *DB) CreateVersionInfo(
	_ context.Context,
	fields *types.VersionFields,
) (*database.VersionInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	iter, err := txn.ReverseLowerBound(
		tblVersions,
		"policy_id_seq",
		fields.PolicyID.String(),
		int64(math.MaxInt64),
	)
	if err != nil {
		return nil, fmt.Errorf("find last version of %s: %w", fields.PolicyID, err)
	}

	seq := int64(1)
	if raw := iter.Next(); raw != nil {
		last := raw.(*database.VersionInfo)
		if last.PolicyID == fields.PolicyID {
			seq = last.Seq + 1
		}
	}

	info := database.NewVersionInfo(fields)
	info.ID = newID()
	info.Seq = seq
	info.CreatedAt = gotime.Now()
	if err := txn.Insert(tblVersions, info); err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}
	txn.Commit()

	return info.DeepCopy(), nil
}

// FindVersionInfosByPolicy returns all versions of the given policy in
// reverse chronological order.
func (d *DB) FindVersionInfosByPolicy(
	_ context.Context,
	policyID types.ID,
) ([]*database.VersionInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.ReverseLowerBound(
		tblVersions,
		"policy_id_seq",
		policyID.String(),
		int64(math.MaxInt64),
	)
	if err != nil {
		return nil, fmt.Errorf("find versions of %s: %w", policyID, err)
	}

	var infos []*database.VersionInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		info := raw.(*database.VersionInfo)
		if info.PolicyID != policyID {
			break
		}
		infos = append(infos, info.DeepCopy())
	}

	return infos, nil
}

// FindVersionInfoByID returns the version of the given ID.
func (d *DB) FindVersionInfoByID(
	_ context.Context,
	id types.ID,
) (*database.VersionInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblVersions, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find version by id: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, database.ErrVersionNotFound)
	}

	return raw.(*database.VersionInfo).DeepCopy(), nil
}

// FindLatestVersionInfo returns the version with the highest sequence number
// of the given policy.
func (d *DB) FindLatestVersionInfo(
	_ context.Context,
	policyID types.ID,
) (*database.VersionInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.ReverseLowerBound(
		tblVersions,
		"policy_id_seq",
		policyID.String(),
		int64(math.MaxInt64),
	)
	if err != nil {
		return nil, fmt.Errorf("find latest version of %s: %w", policyID, err)
	}

	raw := iter.Next()
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", policyID, database.ErrVersionNotFound)
	}
	info := raw.(*database.VersionInfo)
	if info.PolicyID != policyID {
		return nil, fmt.Errorf("%s: %w", policyID, database.ErrVersionNotFound)
	}

	return info.DeepCopy(), nil
}

// CreateCommentInfo stores the given comment.
func (d *DB) CreateCommentInfo(
	_ context.Context,
	fields *types.CommentFields,
	mentions []types.ID,
) (*database.CommentInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	if fields.ParentID != nil {
		raw, err := txn.First(tblComments, "id", fields.ParentID.String())
		if err != nil {
			return nil, fmt.Errorf("find parent comment: %w", err)
		}
		if raw == nil {
			return nil, fmt.Errorf("%s: %w", *fields.ParentID, database.ErrCommentNotFound)
		}
	}

	info := database.NewCommentInfo(fields, mentions)
	info.ID = newID()
	info.CreatedAt = gotime.Now()
	if err := txn.Insert(tblComments, info); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	txn.Commit()

	return info.DeepCopy(), nil
}

// FindCommentInfosByPolicy returns all comments of the given policy in
// chronological order.
func (d *DB) FindCommentInfosByPolicy(
	_ context.Context,
	policyID types.ID,
) ([]*database.CommentInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.LowerBound(
		tblComments,
		"policy_id_created_at",
		policyID.String(),
		gotime.Time{},
	)
	if err != nil {
		return nil, fmt.Errorf("find comments of %s: %w", policyID, err)
	}

	var infos []*database.CommentInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		info := raw.(*database.CommentInfo)
		if info.PolicyID != policyID {
			break
		}
		infos = append(infos, info.DeepCopy())
	}

	return infos, nil
}

// FindCommentInfoByID returns the comment of the given ID.
func (d *DB) FindCommentInfoByID(
	_ context.Context,
	id types.ID,
) (*database.CommentInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblComments, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, database.ErrCommentNotFound)
	}

	return raw.(*database.CommentInfo).DeepCopy(), nil
}

// ResolveCommentInfo marks the comment of the given ID as resolved. Resolving
// an already resolved comment is a no-op.
func (d *DB) ResolveCommentInfo(
	_ context.Context,
	id types.ID,
	resolvedBy types.ID,
) (*database.CommentInfo, bool, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblComments, "id", id.String())
	if err != nil {
		return nil, false, fmt.Errorf("find comment by id: %w", err)
	}
	if raw == nil {
		return nil, false, fmt.Errorf("%s: %w", id, database.ErrCommentNotFound)
	}

	info := raw.(*database.CommentInfo)
	if info.Resolved {
		return info.DeepCopy(), false, nil
	}

	info = info.DeepCopy()
	info.Resolved = true
	info.ResolvedBy = &resolvedBy
	now := gotime.Now()
	info.ResolvedAt = &now
	if err := txn.Insert(tblComments, info); err != nil {
		return nil, false, fmt.Errorf("update comment: %w", err)
	}
	txn.Commit()

	return info.DeepCopy(), true, nil
}

func newID() types.ID {
	return types.NewID()
}
