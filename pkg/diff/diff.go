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

// Package diff computes the structural differences between two policy
// versions. Compare is a pure function: it has no side effects and calling
// it twice with the same inputs yields byte-identical output, which callers
// rely on for caching and reproducibility.
package diff

import (
	"fmt"
	"strings"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/pkg/contents"
	"github.com/polido-team/polido/pkg/errors"
)

var (
	// ErrMissingComparisonInput is returned when either side of a
	// comparison is absent.
	ErrMissingComparisonInput = errors.InvalidArgument(
		"both versions are required for comparison",
	).WithCode("ErrMissingComparisonInput")
)

// metadataFields is the fixed set of metadata fields that are diffed in
// addition to the content lines.
var metadataFields = []string{"title", "category", "jurisdiction", "tags"}

// Compare computes the full comparison of two versions. The first argument
// is treated as the older side, the second as the newer side; callers pass
// them in the order they want reported.
func Compare(oldVersion, newVersion *types.VersionSummary) (*types.VersionComparison, error) {
	if oldVersion == nil || newVersion == nil {
		return nil, ErrMissingComparisonInput
	}

	diffs := compareLines(oldVersion.Content, newVersion.Content)
	diffs = append(diffs, compareMetadata(oldVersion, newVersion)...)

	summary := types.DiffSummary{}
	for _, d := range diffs {
		switch d.Operation {
		case types.DiffAdded:
			summary.Additions++
		case types.DiffRemoved:
			summary.Deletions++
		case types.DiffModified:
			summary.Modifications++
		case types.DiffUnchanged:
			summary.Unchanged++
		}
	}
	// Total excludes unchanged entries.
	summary.Total = summary.Additions + summary.Deletions + summary.Modifications

	return &types.VersionComparison{
		OldVersion: oldVersion,
		NewVersion: newVersion,
		Diffs:      diffs,
		Summary:    summary,
		Meta: types.ComparisonMeta{
			TimeDifference: millisBetween(oldVersion, newVersion),
			Editors:        dedupeIDs(oldVersion.CreatedBy, newVersion.CreatedBy),
			Categories:     dedupeStrings(oldVersion.Category, newVersion.Category),
		},
	}, nil
}

// compareLines diffs the line-oriented views of two content trees. Lines are
// paired by position: present on both sides and equal is unchanged, present
// on both sides and different is modified when both are non-empty, otherwise
// the non-empty side wins as added or removed.
func compareLines(oldContent, newContent contents.Node) []types.ContentDiff {
	oldLines := contents.Lines(oldContent)
	newLines := contents.Lines(newContent)

	max := len(oldLines)
	if len(newLines) > max {
		max = len(newLines)
	}

	var diffs []types.ContentDiff
	for i := 0; i < max; i++ {
		var oldLine, newLine string
		inOld, inNew := i < len(oldLines), i < len(newLines)
		if inOld {
			oldLine = oldLines[i]
		}
		if inNew {
			newLine = newLines[i]
		}

		path := fmt.Sprintf("content.line.%d", i+1)

		switch {
		case inOld && inNew && oldLine == newLine:
			diffs = append(diffs, types.ContentDiff{
				Operation: types.DiffUnchanged,
				Path:      path,
				OldValue:  oldLine,
				NewValue:  newLine,
			})
		case inOld && inNew && oldLine != "" && newLine != "":
			diffs = append(diffs, types.ContentDiff{
				Operation: types.DiffModified,
				Path:      path,
				OldValue:  oldLine,
				NewValue:  newLine,
			})
		case newLine != "":
			diffs = append(diffs, types.ContentDiff{
				Operation: types.DiffAdded,
				Path:      path,
				NewValue:  newLine,
			})
		case oldLine != "":
			diffs = append(diffs, types.ContentDiff{
				Operation: types.DiffRemoved,
				Path:      path,
				OldValue:  oldLine,
			})
		default:
			// Both sides empty at this position.
			diffs = append(diffs, types.ContentDiff{
				Operation: types.DiffUnchanged,
				Path:      path,
			})
		}
	}

	return diffs
}

// compareMetadata diffs the fixed metadata field set. Each field yields at
// most one entry; unchanged fields yield none.
func compareMetadata(oldVersion, newVersion *types.VersionSummary) []types.ContentDiff {
	var diffs []types.ContentDiff
	for _, field := range metadataFields {
		oldValue := metadataValue(oldVersion, field)
		newValue := metadataValue(newVersion, field)
		if oldValue == newValue {
			continue
		}

		op := types.DiffModified
		if oldValue == "" {
			op = types.DiffAdded
		} else if newValue == "" {
			op = types.DiffRemoved
		}

		diffs = append(diffs, types.ContentDiff{
			Operation: op,
			Path:      field,
			OldValue:  oldValue,
			NewValue:  newValue,
		})
	}

	return diffs
}

func metadataValue(version *types.VersionSummary, field string) string {
	switch field {
	case "title":
		return version.Title
	case "category":
		return version.Category
	case "jurisdiction":
		return strings.Join(version.Jurisdictions, ", ")
	case "tags":
		return strings.Join(version.Tags, ", ")
	}
	return ""
}

// millisBetween returns the absolute millisecond delta between the two
// versions' creation times.
func millisBetween(oldVersion, newVersion *types.VersionSummary) int64 {
	delta := newVersion.CreatedAt.Sub(oldVersion.CreatedAt).Milliseconds()
	if delta < 0 {
		return -delta
	}
	return delta
}

func dedupeIDs(ids ...types.ID) []types.ID {
	seen := make(map[types.ID]bool)
	deduped := make([]types.ID, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		deduped = append(deduped, id)
	}
	return deduped
}

func dedupeStrings(values ...string) []string {
	seen := make(map[string]bool)
	deduped := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		deduped = append(deduped, v)
	}
	return deduped
}
