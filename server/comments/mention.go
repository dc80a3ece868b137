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

package comments

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/polido-team/polido/api/types"
)

// maxMentionQueryLength caps the fragment behind the caret that is treated
// as a live mention query. Longer fragments are ordinary text.
const maxMentionQueryLength = 30

// mentionToken matches the canonical mention form embedded in comment
// bodies. The token carries the user ID, so display-name renames keep
// resolving.
var mentionToken = regexp.MustCompile(`@\[([0-9a-f]{24})\]`)

// ExtractMentions returns the users mentioned in the given comment body, in
// first occurrence order without duplicates.
func ExtractMentions(content string) []types.ID {
	var mentions []types.ID
	seen := map[types.ID]bool{}

	for _, match := range mentionToken.FindAllStringSubmatch(content, -1) {
		id := types.ID(match[1])
		if seen[id] {
			continue
		}
		seen[id] = true
		mentions = append(mentions, id)
	}

	return mentions
}

// MentionQuery scans backward from the caret for the nearest "@" and returns
// the fragment between it and the caret. The fragment is a live query only
// if it contains no whitespace and is under the length cap.
func MentionQuery(text string, caret int) (string, bool) {
	if caret < 0 || caret > len(text) {
		return "", false
	}

	for i := caret; i > 0; {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		i -= size
		if caret-i > maxMentionQueryLength+1 {
			return "", false
		}
		if unicode.IsSpace(r) {
			return "", false
		}
		if r == '@' {
			return text[i+size : caret], true
		}
	}

	return "", false
}

// FilterCandidates returns the users whose username or display name starts
// with the query, case-insensitively. An empty query matches everyone.
func FilterCandidates(users []types.User, query string) []types.User {
	query = strings.ToLower(query)

	var matched []types.User
	for _, user := range users {
		if strings.HasPrefix(strings.ToLower(user.Username), query) ||
			strings.HasPrefix(strings.ToLower(user.DisplayName), query) {
			matched = append(matched, user)
		}
	}

	return matched
}

// InsertMention replaces the live mention fragment at the caret with the
// canonical token of the given user followed by a space. It returns the new
// text and the new caret position.
func InsertMention(text string, caret int, user types.User) (string, int) {
	query, ok := MentionQuery(text, caret)
	if !ok {
		return text, caret
	}

	start := caret - len(query) - 1 // include the "@"
	token := "@[" + user.ID.String() + "] "
	inserted := text[:start] + token + text[caret:]
	return inserted, start + len(token)
}
