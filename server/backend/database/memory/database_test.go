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

package memory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/pkg/contents"
	"github.com/polido-team/polido/server/backend/database"
	"github.com/polido-team/polido/server/backend/database/memory"
)

func setupTestWithDummyData(t *testing.T) *memory.DB {
	t.Helper()

	db, err := memory.New()
	assert.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	return db
}

func versionFields(policyID types.ID, title string, lines ...string) *types.VersionFields {
	var paragraphs []contents.Node
	for _, line := range lines {
		paragraphs = append(paragraphs, contents.Paragraph(line))
	}

	return &types.VersionFields{
		PolicyID:  policyID,
		Title:     title,
		Status:    types.StatusDraft,
		Content:   contents.Doc(paragraphs...),
		CreatedBy: types.NewID(),
	}
}

func TestDB(t *testing.T) {
	ctx := context.Background()

	t.Run("create version info test", func(t *testing.T) {
		db := setupTestWithDummyData(t)
		policyID := types.NewID()

		info, err := db.CreateVersionInfo(ctx, versionFields(policyID, "Remote Work Policy", "All employees may work remotely."))
		assert.NoError(t, err)
		assert.NoError(t, info.ID.Validate())
		assert.Equal(t, int64(1), info.Seq)
		assert.Equal(t, policyID, info.PolicyID)
		assert.False(t, info.CreatedAt.IsZero())
		assert.Equal(t, 5, info.WordCount)
	})

	t.Run("monotonic sequence per policy test", func(t *testing.T) {
		db := setupTestWithDummyData(t)
		policyID := types.NewID()
		otherID := types.NewID()

		for seq := int64(1); seq <= 5; seq++ {
			info, err := db.CreateVersionInfo(ctx, versionFields(policyID, "Remote Work Policy"))
			assert.NoError(t, err)
			assert.Equal(t, seq, info.Seq)
		}

		// a different policy starts its own sequence
		info, err := db.CreateVersionInfo(ctx, versionFields(otherID, "Travel Policy"))
		assert.NoError(t, err)
		assert.Equal(t, int64(1), info.Seq)
	})

	t.Run("find version infos by policy test", func(t *testing.T) {
		db := setupTestWithDummyData(t)
		policyID := types.NewID()

		for i := 0; i < 3; i++ {
			_, err := db.CreateVersionInfo(ctx, versionFields(policyID, "Remote Work Policy"))
			assert.NoError(t, err)
		}

		infos, err := db.FindVersionInfosByPolicy(ctx, policyID)
		assert.NoError(t, err)
		assert.Len(t, infos, 3)
		assert.Equal(t, int64(3), infos[0].Seq)
		assert.Equal(t, int64(2), infos[1].Seq)
		assert.Equal(t, int64(1), infos[2].Seq)

		infos, err = db.FindVersionInfosByPolicy(ctx, types.NewID())
		assert.NoError(t, err)
		assert.Len(t, infos, 0)
	})

	t.Run("find version info by id test", func(t *testing.T) {
		db := setupTestWithDummyData(t)
		policyID := types.NewID()

		created, err := db.CreateVersionInfo(ctx, versionFields(policyID, "Remote Work Policy"))
		assert.NoError(t, err)

		found, err := db.FindVersionInfoByID(ctx, created.ID)
		assert.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, created.Seq, found.Seq)

		_, err = db.FindVersionInfoByID(ctx, types.NewID())
		assert.ErrorIs(t, err, database.ErrVersionNotFound)
	})

	t.Run("find latest version info test", func(t *testing.T) {
		db := setupTestWithDummyData(t)
		policyID := types.NewID()

		_, err := db.FindLatestVersionInfo(ctx, policyID)
		assert.ErrorIs(t, err, database.ErrVersionNotFound)

		for i := 0; i < 4; i++ {
			_, err := db.CreateVersionInfo(ctx, versionFields(policyID, "Remote Work Policy"))
			assert.NoError(t, err)
		}

		latest, err := db.FindLatestVersionInfo(ctx, policyID)
		assert.NoError(t, err)
		assert.Equal(t, int64(4), latest.Seq)
	})

	t.Run("stored version is immutable test", func(t *testing.T) {
		db := setupTestWithDummyData(t)
		policyID := types.NewID()

		created, err := db.CreateVersionInfo(ctx, versionFields(policyID, "Remote Work Policy"))
		assert.NoError(t, err)
		created.Title = "Changed Title"
		created.Tags = append(created.Tags, "changed")

		found, err := db.FindVersionInfoByID(ctx, created.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Remote Work Policy", found.Title)
		assert.Len(t, found.Tags, 0)
	})

	t.Run("create comment info test", func(t *testing.T) {
		db := setupTestWithDummyData(t)
		policyID := types.NewID()
		authorID := types.NewID()
		mention := types.NewID()

		info, err := db.CreateCommentInfo(ctx, &types.CommentFields{
			PolicyID: policyID,
			AuthorID: authorID,
			Content:  "Please reconsider the second clause.",
			Type:     types.CommentSuggestion,
		}, []types.ID{mention})
		assert.NoError(t, err)
		assert.NoError(t, info.ID.Validate())
		assert.Equal(t, authorID, info.AuthorID)
		assert.Equal(t, []types.ID{mention}, info.Mentions)
		assert.False(t, info.CreatedAt.IsZero())
		assert.False(t, info.Resolved)
	})

	t.Run("reply to missing parent test", func(t *testing.T) {
		db := setupTestWithDummyData(t)
		parentID := types.NewID()

		_, err := db.CreateCommentInfo(ctx, &types.CommentFields{
			PolicyID: types.NewID(),
			AuthorID: types.NewID(),
			Content:  "Replying to a comment that is gone.",
			Type:     types.CommentGeneral,
			ParentID: &parentID,
		}, nil)
		assert.ErrorIs(t, err, database.ErrCommentNotFound)
	})

	t.Run("find comment infos by policy test", func(t *testing.T) {
		db := setupTestWithDummyData(t)
		policyID := types.NewID()
		authorID := types.NewID()

		bodies := []string{
			"First remark on this policy.",
			"Second remark on this policy.",
			"Third remark on this policy.",
		}
		for _, body := range bodies {
			_, err := db.CreateCommentInfo(ctx, &types.CommentFields{
				PolicyID: policyID,
				AuthorID: authorID,
				Content:  body,
				Type:     types.CommentGeneral,
			}, nil)
			assert.NoError(t, err)
		}

		infos, err := db.FindCommentInfosByPolicy(ctx, policyID)
		assert.NoError(t, err)
		assert.Len(t, infos, 3)
		for i, info := range infos {
			assert.Equal(t, bodies[i], info.Content)
		}
	})

	t.Run("resolve comment info test", func(t *testing.T) {
		db := setupTestWithDummyData(t)
		policyID := types.NewID()
		resolver := types.NewID()

		created, err := db.CreateCommentInfo(ctx, &types.CommentFields{
			PolicyID: policyID,
			AuthorID: types.NewID(),
			Content:  "Needs a review before publishing.",
			Type:     types.CommentQuestion,
		}, nil)
		assert.NoError(t, err)

		resolved, transitioned, err := db.ResolveCommentInfo(ctx, created.ID, resolver)
		assert.NoError(t, err)
		assert.True(t, transitioned)
		assert.True(t, resolved.Resolved)
		assert.Equal(t, resolver, *resolved.ResolvedBy)
		assert.NotNil(t, resolved.ResolvedAt)

		// resolving again is a no-op and keeps the original resolver
		again, transitioned, err := db.ResolveCommentInfo(ctx, created.ID, types.NewID())
		assert.NoError(t, err)
		assert.False(t, transitioned)
		assert.True(t, again.Resolved)
		assert.Equal(t, resolver, *again.ResolvedBy)
		assert.Equal(t, resolved.ResolvedAt, again.ResolvedAt)

		_, _, err = db.ResolveCommentInfo(ctx, types.NewID(), resolver)
		assert.ErrorIs(t, err, database.ErrCommentNotFound)
	})

	t.Run("concurrent resolve transitions once test", func(t *testing.T) {
		db := setupTestWithDummyData(t)
		policyID := types.NewID()

		created, err := db.CreateCommentInfo(ctx, &types.CommentFields{
			PolicyID: policyID,
			AuthorID: types.NewID(),
			Content:  "Does this clause cover remote contractors?",
			Type:     types.CommentQuestion,
		}, nil)
		assert.NoError(t, err)

		var transitions int64
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, transitioned, err := db.ResolveCommentInfo(ctx, created.ID, types.NewID())
				assert.NoError(t, err)
				if transitioned {
					atomic.AddInt64(&transitions, 1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), transitions)
	})
}
