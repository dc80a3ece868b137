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

package diff_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/pkg/contents"
	"github.com/polido-team/polido/pkg/diff"
	"github.com/polido-team/polido/pkg/errors"
)

func newVersion(seq int64, createdBy types.ID, lines ...string) *types.VersionSummary {
	var children []contents.Node
	for _, line := range lines {
		children = append(children, contents.Paragraph(line))
	}

	return &types.VersionSummary{
		ID:        types.NewID(),
		PolicyID:  types.ID("000000000000000000000001"),
		Seq:       seq,
		Title:     "Hand Hygiene",
		Status:    types.StatusDraft,
		Category:  "infection-control",
		CreatedBy: createdBy,
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(seq) * time.Hour),
		Content:   contents.Doc(children...),
	}
}

func TestCompare(t *testing.T) {
	editorA := types.ID("00000000000000000000000a")
	editorB := types.ID("00000000000000000000000b")

	t.Run("appended line is a single addition test", func(t *testing.T) {
		v1 := newVersion(1, editorA, "Wash hands before meals.")
		v2 := newVersion(2, editorB, "Wash hands before meals.", "Use PPE during contact.")

		comparison, err := diff.Compare(v1, v2)
		assert.NoError(t, err)
		assert.Equal(t, 1, comparison.Summary.Additions)
		assert.Equal(t, 0, comparison.Summary.Deletions)
		assert.Equal(t, 0, comparison.Summary.Modifications)
		assert.Equal(t, 1, comparison.Summary.Total)
		assert.Equal(t, []types.ID{editorA, editorB}, comparison.Meta.Editors)
		assert.Equal(t, []string{"infection-control"}, comparison.Meta.Categories)
		assert.Equal(t, time.Hour.Milliseconds(), comparison.Meta.TimeDifference)
	})

	t.Run("identical versions yield only unchanged test", func(t *testing.T) {
		v1 := newVersion(1, editorA, "Wash hands before meals.", "Use PPE during contact.")

		comparison, err := diff.Compare(v1, v1)
		assert.NoError(t, err)
		assert.Equal(t, 0, comparison.Summary.Total)
		assert.Equal(t, 2, comparison.Summary.Unchanged)
		for _, d := range comparison.Diffs {
			assert.Equal(t, types.DiffUnchanged, d.Operation)
		}
	})

	t.Run("modified line pairs by position test", func(t *testing.T) {
		v1 := newVersion(1, editorA, "Wash hands before meals.")
		v2 := newVersion(2, editorA, "Wash hands thoroughly before meals.")

		comparison, err := diff.Compare(v1, v2)
		assert.NoError(t, err)
		assert.Equal(t, 1, comparison.Summary.Modifications)
		assert.Equal(t, "content.line.1", comparison.Diffs[0].Path)
		assert.Equal(t, "Wash hands before meals.", comparison.Diffs[0].OldValue)
		assert.Equal(t, "Wash hands thoroughly before meals.", comparison.Diffs[0].NewValue)
	})

	t.Run("empty to non-empty is all additions test", func(t *testing.T) {
		v1 := newVersion(1, editorA)
		v2 := newVersion(2, editorA, "Wash hands before meals.", "Use PPE during contact.")

		comparison, err := diff.Compare(v1, v2)
		assert.NoError(t, err)
		assert.Equal(t, 2, comparison.Summary.Additions)
		assert.Equal(t, 2, comparison.Summary.Total)

		reversed, err := diff.Compare(v2, v1)
		assert.NoError(t, err)
		assert.Equal(t, 2, reversed.Summary.Deletions)
	})

	t.Run("symmetry test", func(t *testing.T) {
		v1 := newVersion(1, editorA, "Wash hands before meals.", "Report incidents.")
		v2 := newVersion(2, editorB, "Wash hands before meals.", "Report incidents.", "Use PPE during contact.")

		forward, err := diff.Compare(v1, v2)
		assert.NoError(t, err)
		backward, err := diff.Compare(v2, v1)
		assert.NoError(t, err)

		assert.Equal(t, forward.Summary.Additions, backward.Summary.Deletions)
		assert.Equal(t, forward.Summary.Deletions, backward.Summary.Additions)
		assert.Equal(t, forward.Summary.Modifications, backward.Summary.Modifications)
		assert.Equal(t, forward.Meta.TimeDifference, backward.Meta.TimeDifference)
	})

	t.Run("idempotence test", func(t *testing.T) {
		v1 := newVersion(1, editorA, "Wash hands before meals.")
		v2 := newVersion(2, editorB, "Use PPE during contact.", "Report incidents.")

		first, err := diff.Compare(v1, v2)
		assert.NoError(t, err)
		second, err := diff.Compare(v1, v2)
		assert.NoError(t, err)

		firstJSON, err := json.Marshal(first)
		assert.NoError(t, err)
		secondJSON, err := json.Marshal(second)
		assert.NoError(t, err)
		assert.Equal(t, firstJSON, secondJSON)
	})

	t.Run("metadata fields diff test", func(t *testing.T) {
		v1 := newVersion(1, editorA, "Wash hands before meals.")
		v2 := newVersion(2, editorA, "Wash hands before meals.")
		v2.Title = "Hand Hygiene and PPE"
		v2.Jurisdictions = []string{"CA", "NY"}
		v2.Category = ""

		comparison, err := diff.Compare(v1, v2)
		assert.NoError(t, err)

		byPath := make(map[string]types.ContentDiff)
		for _, d := range comparison.Diffs {
			byPath[d.Path] = d
		}

		assert.Equal(t, types.DiffModified, byPath["title"].Operation)
		assert.Equal(t, "Hand Hygiene", byPath["title"].OldValue)
		assert.Equal(t, "Hand Hygiene and PPE", byPath["title"].NewValue)

		assert.Equal(t, types.DiffAdded, byPath["jurisdiction"].Operation)
		assert.Equal(t, "CA, NY", byPath["jurisdiction"].NewValue)

		assert.Equal(t, types.DiffRemoved, byPath["category"].Operation)
		assert.Equal(t, "infection-control", byPath["category"].OldValue)

		_, ok := byPath["tags"]
		assert.False(t, ok)
	})

	t.Run("missing input test", func(t *testing.T) {
		v1 := newVersion(1, editorA, "Wash hands before meals.")

		_, err := diff.Compare(nil, v1)
		assert.ErrorIs(t, err, diff.ErrMissingComparisonInput)
		assert.Equal(t, errors.ErrCodeInvalidArgument, errors.StatusOf(err))

		_, err = diff.Compare(v1, nil)
		assert.ErrorIs(t, err, diff.ErrMissingComparisonInput)
	})
}
