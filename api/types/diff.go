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

// DiffOperation classifies a single difference between two versions.
type DiffOperation string

const (
	// DiffAdded marks content present only in the newer version.
	DiffAdded DiffOperation = "added"

	// DiffRemoved marks content present only in the older version.
	DiffRemoved DiffOperation = "removed"

	// DiffModified marks content present in both versions but changed.
	DiffModified DiffOperation = "modified"

	// DiffUnchanged marks content identical in both versions.
	DiffUnchanged DiffOperation = "unchanged"
)

// ContentDiff is a single line- or field-level difference between two
// versions. Diffs are derived values: they are recomputed on demand from the
// two versions alone and are never persisted.
type ContentDiff struct {
	// Operation classifies this difference.
	Operation DiffOperation `json:"operation"`

	// Path is the addressable location of the difference: a metadata field
	// name such as "title", or "content.line.N" for line N of the extracted
	// content text.
	Path string `json:"path"`

	// OldValue is the value in the older version, verbatim.
	OldValue string `json:"old_value,omitempty"`

	// NewValue is the value in the newer version, verbatim.
	NewValue string `json:"new_value,omitempty"`

	// Context carries surrounding text for display, if any.
	Context string `json:"context,omitempty"`
}

// DiffSummary aggregates the diff counts of a comparison. Total counts
// additions, deletions, and modifications; unchanged lines are excluded.
type DiffSummary struct {
	Additions     int `json:"additions_count"`
	Deletions     int `json:"deletions_count"`
	Modifications int `json:"modifications_count"`
	Unchanged     int `json:"unchanged_count"`
	Total         int `json:"total_changes"`
}

// ComparisonMeta carries derived metadata about a comparison.
type ComparisonMeta struct {
	// TimeDifference is the millisecond delta between the two versions'
	// creation times.
	TimeDifference int64 `json:"time_difference"`

	// Editors is the deduplicated set of users who created either version.
	Editors []ID `json:"editors"`

	// Categories is the deduplicated set of categories across both versions.
	Categories []string `json:"categories"`
}

// VersionComparison is the full result of diffing two versions.
type VersionComparison struct {
	OldVersion *VersionSummary `json:"old_version"`
	NewVersion *VersionSummary `json:"new_version"`
	Diffs      []ContentDiff   `json:"diffs"`
	Summary    DiffSummary     `json:"summary"`
	Meta       ComparisonMeta  `json:"metadata"`
}
