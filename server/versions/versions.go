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

// Package versions provides version timeline management for policy documents.
package versions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/api/types/events"
	"github.com/polido-team/polido/pkg/diff"
	pkgerrors "github.com/polido-team/polido/pkg/errors"
	"github.com/polido-team/polido/server/backend"
	"github.com/polido-team/polido/server/backend/database"
)

var (
	// ErrRollbackLatestVersion is returned when the rollback target is the
	// latest version. Rolling back to the current state would create a
	// duplicate version without audit value.
	ErrRollbackLatestVersion = pkgerrors.FailedPrecond(
		"cannot roll back to the latest version",
	).WithCode("ErrRollbackLatestVersion")

	// ErrVersionNotInPolicy is returned when the given version belongs to a
	// different policy document.
	ErrVersionNotInPolicy = pkgerrors.InvalidArgument(
		"version does not belong to the policy",
	).WithCode("ErrVersionNotInPolicy")
)

// Save creates a new version of the policy from the given fields. The
// sequence number is assigned by the database; concurrent saves surface
// ErrVersionConflict and are never merged.
func Save(
	ctx context.Context,
	be *backend.Backend,
	fields *types.VersionFields,
) (*types.VersionSummary, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	info, err := be.DB.CreateVersionInfo(ctx, fields)
	if err != nil {
		if errors.Is(err, database.ErrVersionConflict) {
			be.Metrics.AddVersionConflicts()
			be.PubSub.Publish(ctx, events.CollabEvent{
				Type:      events.VersionConflictEvent,
				PolicyID:  fields.PolicyID,
				Publisher: fields.CreatedBy,
			})
		}
		return nil, fmt.Errorf("create version: %w", err)
	}
	be.Metrics.AddVersionsCreated()

	summary := info.ToVersionSummary()
	summary.IsLatest = true
	be.PubSub.Publish(ctx, events.CollabEvent{
		Type:      events.VersionCreatedEvent,
		PolicyID:  summary.PolicyID,
		Publisher: summary.CreatedBy,
		Body:      events.EventBody{Version: summary},
	})

	return summary, nil
}

// List returns the versions of the given policy in reverse chronological
// order. The first entry is flagged as the latest.
func List(
	ctx context.Context,
	be *backend.Backend,
	policyID types.ID,
) ([]*types.VersionSummary, error) {
	infos, err := be.DB.FindVersionInfosByPolicy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("find versions: %w", err)
	}

	var summaries []*types.VersionSummary
	for i, info := range infos {
		summary := info.ToVersionSummary()
		summary.IsLatest = i == 0
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// Get returns the version of the given ID.
func Get(
	ctx context.Context,
	be *backend.Backend,
	versionID types.ID,
) (*types.VersionSummary, error) {
	info, err := be.DB.FindVersionInfoByID(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("find version by id: %w", err)
	}

	return info.ToVersionSummary(), nil
}

// Compare compares the two given versions of a policy and returns the
// line-level content differences, the metadata differences and a summary.
func Compare(
	ctx context.Context,
	be *backend.Backend,
	oldVersionID types.ID,
	newVersionID types.ID,
) (*types.VersionComparison, error) {
	start := time.Now()

	oldInfo, err := be.DB.FindVersionInfoByID(ctx, oldVersionID)
	if err != nil {
		return nil, fmt.Errorf("find old version: %w", err)
	}
	newInfo, err := be.DB.FindVersionInfoByID(ctx, newVersionID)
	if err != nil {
		return nil, fmt.Errorf("find new version: %w", err)
	}
	if oldInfo.PolicyID != newInfo.PolicyID {
		return nil, fmt.Errorf("%s, %s: %w", oldVersionID, newVersionID, ErrVersionNotInPolicy)
	}

	comparison, err := diff.Compare(oldInfo.ToVersionSummary(), newInfo.ToVersionSummary())
	if err != nil {
		return nil, err
	}

	be.Metrics.ObserveCompareSeconds(time.Since(start).Seconds())
	return comparison, nil
}

// Rollback restores the policy to the state of the target version by
// creating a new version with the target's content. The timeline is never
// truncated; the rollback itself is part of the audit trail.
func Rollback(
	ctx context.Context,
	be *backend.Backend,
	fields *types.RollbackFields,
) (*types.VersionSummary, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	target, err := be.DB.FindVersionInfoByID(ctx, fields.TargetVersionID)
	if err != nil {
		return nil, fmt.Errorf("find rollback target: %w", err)
	}
	if target.PolicyID != fields.PolicyID {
		return nil, fmt.Errorf("%s: %w", fields.TargetVersionID, ErrVersionNotInPolicy)
	}

	latest, err := be.DB.FindLatestVersionInfo(ctx, fields.PolicyID)
	if err != nil {
		return nil, fmt.Errorf("find latest version: %w", err)
	}
	if latest.ID == target.ID {
		return nil, fmt.Errorf("%s: %w", fields.TargetVersionID, ErrRollbackLatestVersion)
	}

	// The restored state re-enters the review lifecycle as a draft.
	summary, err := Save(ctx, be, &types.VersionFields{
		PolicyID:      target.PolicyID,
		Title:         target.Title,
		Status:        types.StatusDraft,
		Category:      target.Category,
		Jurisdictions: target.Jurisdictions,
		Tags:          target.Tags,
		Content:       target.Content,
		CreatedBy:     fields.RequestedBy,
		// The reason is the audit trail of the rollback, stored verbatim.
		ChangeDescription: fields.Reason,
	})
	if err != nil {
		return nil, err
	}
	be.Metrics.AddRollbacks()

	return summary, nil
}
