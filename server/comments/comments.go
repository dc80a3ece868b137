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

// Package comments provides the comment and mention subsystem of policy
// documents.
package comments

import (
	"context"
	"fmt"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/api/types/events"
	"github.com/polido-team/polido/server/backend"
)

// Post validates and stores the given comment, then announces it. One
// mention event is published per user mentioned in the body. Validation
// happens before any storage call, so an oversized or undersized body never
// reaches the database.
func Post(
	ctx context.Context,
	be *backend.Backend,
	fields *types.CommentFields,
) (*types.CommentSummary, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	mentions := ExtractMentions(fields.Content)
	info, err := be.DB.CreateCommentInfo(ctx, fields, mentions)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	be.Metrics.AddCommentsPosted()

	summary := info.ToCommentSummary()
	be.PubSub.Publish(ctx, events.CollabEvent{
		Type:      events.CommentAddedEvent,
		PolicyID:  summary.PolicyID,
		Publisher: summary.AuthorID,
		Body:      events.EventBody{Comment: summary},
	})

	for _, mentioned := range mentions {
		be.PubSub.Publish(ctx, events.CollabEvent{
			Type:      events.MentionEvent,
			PolicyID:  summary.PolicyID,
			Publisher: summary.AuthorID,
			Body: events.EventBody{
				Comment:       summary,
				MentionedUser: mentioned,
			},
		})
	}
	be.Metrics.AddMentions(len(mentions))

	return summary, nil
}

// Resolve marks the given comment as resolved and announces it. Resolving an
// already resolved comment is a no-op and is not re-announced. The store
// reports which caller performed the transition, so concurrent resolvers
// announce at most once.
func Resolve(
	ctx context.Context,
	be *backend.Backend,
	commentID types.ID,
	resolvedBy types.ID,
) (*types.CommentSummary, error) {
	info, transitioned, err := be.DB.ResolveCommentInfo(ctx, commentID, resolvedBy)
	if err != nil {
		return nil, fmt.Errorf("resolve comment: %w", err)
	}

	summary := info.ToCommentSummary()
	if transitioned {
		be.Metrics.AddCommentsResolved()
		be.PubSub.Publish(ctx, events.CollabEvent{
			Type:      events.CommentResolvedEvent,
			PolicyID:  summary.PolicyID,
			Publisher: resolvedBy,
			Body:      events.EventBody{Comment: summary},
		})
	}

	return summary, nil
}

// List returns the comments of the given policy ordered by the
// server-assigned timestamp.
func List(
	ctx context.Context,
	be *backend.Backend,
	policyID types.ID,
) ([]*types.CommentSummary, error) {
	infos, err := be.DB.FindCommentInfosByPolicy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}

	var summaries []*types.CommentSummary
	for _, info := range infos {
		summaries = append(summaries, info.ToCommentSummary())
	}

	return summaries, nil
}

// Threads assembles the comments of the given policy into parent/child
// trees. Roots keep the chronological order; replies nest without a depth
// cap.
func Threads(
	ctx context.Context,
	be *backend.Backend,
	policyID types.ID,
) ([]*types.CommentThread, error) {
	summaries, err := List(ctx, be, policyID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[types.ID]*types.CommentThread, len(summaries))
	var roots []*types.CommentThread
	for _, summary := range summaries {
		nodes[summary.ID] = &types.CommentThread{Comment: summary}
	}
	for _, summary := range summaries {
		node := nodes[summary.ID]
		if summary.ParentID == nil {
			roots = append(roots, node)
			continue
		}

		if parent, ok := nodes[*summary.ParentID]; ok {
			parent.Replies = append(parent.Replies, node)
		} else {
			// orphaned reply, e.g. parent from another policy
			roots = append(roots, node)
		}
	}

	return roots, nil
}
