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

package comments_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/server/comments"
)

func TestMention(t *testing.T) {
	t.Run("extract mentions test", func(t *testing.T) {
		alice, bob := types.NewID(), types.NewID()

		mentions := comments.ExtractMentions(
			"@[" + alice.String() + "] and @[" + bob.String() + "] should review.",
		)
		assert.Equal(t, []types.ID{alice, bob}, mentions)

		// duplicates collapse to the first occurrence
		mentions = comments.ExtractMentions(
			"@[" + bob.String() + "] again @[" + bob.String() + "] and @[" + alice.String() + "]",
		)
		assert.Equal(t, []types.ID{bob, alice}, mentions)

		// malformed tokens are plain text
		assert.Nil(t, comments.ExtractMentions("@alice @[not-an-id] @[ABCDEF]"))
	})

	t.Run("mention query test", func(t *testing.T) {
		text := "ping @al about the draft"
		query, ok := comments.MentionQuery(text, 8)
		assert.True(t, ok)
		assert.Equal(t, "al", query)

		// caret right after the "@" yields an empty query
		query, ok = comments.MentionQuery(text, 6)
		assert.True(t, ok)
		assert.Equal(t, "", query)

		// whitespace between the "@" and the caret ends the query
		_, ok = comments.MentionQuery("ping @al about", 12)
		assert.False(t, ok)

		// no "@" before the caret
		_, ok = comments.MentionQuery("plain text", 5)
		assert.False(t, ok)

		// fragments over the cap are ordinary text
		long := "@" + strings.Repeat("a", 31)
		_, ok = comments.MentionQuery(long, len(long))
		assert.False(t, ok)
		capped := "@" + strings.Repeat("a", 30)
		query, ok = comments.MentionQuery(capped, len(capped))
		assert.True(t, ok)
		assert.Equal(t, strings.Repeat("a", 30), query)

		// out-of-range carets
		_, ok = comments.MentionQuery("@a", -1)
		assert.False(t, ok)
		_, ok = comments.MentionQuery("@a", 3)
		assert.False(t, ok)

		// multi-byte runes in the fragment stay part of the query
		accented := "ping @dà"
		query, ok = comments.MentionQuery(accented, len(accented))
		assert.True(t, ok)
		assert.Equal(t, "dà", query)

		multibyteSpace := "ping @séb"
		query, ok = comments.MentionQuery(multibyteSpace, len(multibyteSpace))
		assert.True(t, ok)
		assert.Equal(t, "séb", query)
		_, ok = comments.MentionQuery(multibyteSpace, 6) // caret right after the NBSP, before "@"
		assert.False(t, ok)
	})

	t.Run("filter candidates test", func(t *testing.T) {
		users := []types.User{
			{ID: types.NewID(), Username: "alice", DisplayName: "Alice Park"},
			{ID: types.NewID(), Username: "bob", DisplayName: "Bob Ahn"},
			{ID: types.NewID(), Username: "carol", DisplayName: "Carol Lim"},
		}

		matched := comments.FilterCandidates(users, "al")
		assert.Len(t, matched, 1)
		assert.Equal(t, "alice", matched[0].Username)

		// display names match too, case-insensitively
		matched = comments.FilterCandidates(users, "BO")
		assert.Len(t, matched, 1)
		assert.Equal(t, "bob", matched[0].Username)

		// empty query matches everyone
		assert.Len(t, comments.FilterCandidates(users, ""), 3)

		assert.Len(t, comments.FilterCandidates(users, "zed"), 0)
	})

	t.Run("insert mention test", func(t *testing.T) {
		user := types.User{ID: types.NewID(), Username: "alice"}

		text, caret := comments.InsertMention("ping @al about the draft", 8, user)
		token := "@[" + user.ID.String() + "] "
		assert.Equal(t, "ping "+token+" about the draft", text)
		assert.Equal(t, 5+len(token), caret)

		// the inserted token round-trips through extraction
		assert.Equal(t, []types.ID{user.ID}, comments.ExtractMentions(text))

		// without a live query the text is left untouched
		text, caret = comments.InsertMention("plain text", 5, user)
		assert.Equal(t, "plain text", text)
		assert.Equal(t, 5, caret)
	})
}
