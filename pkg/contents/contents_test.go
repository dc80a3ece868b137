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

package contents_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polido-team/polido/pkg/contents"
)

func TestExtractText(t *testing.T) {
	t.Run("paragraphs become lines test", func(t *testing.T) {
		doc := contents.Doc(
			contents.Paragraph("Wash hands before meals."),
			contents.Paragraph("Use PPE during contact."),
		)

		assert.Equal(t, "Wash hands before meals.\nUse PPE during contact.", contents.ExtractText(doc))
		assert.Equal(t, []string{
			"Wash hands before meals.",
			"Use PPE during contact.",
		}, contents.Lines(doc))
	})

	t.Run("heading breaks like paragraph test", func(t *testing.T) {
		doc := contents.Doc(
			contents.Heading("1", "Hand Hygiene"),
			contents.Paragraph("Wash hands before meals."),
		)

		assert.Equal(t, []string{
			"Hand Hygiene",
			"Wash hands before meals.",
		}, contents.Lines(doc))
	})

	t.Run("nested inline nodes concatenate test", func(t *testing.T) {
		doc := contents.Doc(contents.Node{
			Type: contents.TypeParagraph,
			Children: []Node{
				{Type: contents.TypeText, Text: "Wash hands "},
				{Type: "strong", Children: []Node{{Type: contents.TypeText, Text: "before"}}},
				{Type: contents.TypeText, Text: " meals."},
			},
		})

		assert.Equal(t, []string{"Wash hands before meals."}, contents.Lines(doc))
	})

	t.Run("empty tree test", func(t *testing.T) {
		assert.Equal(t, "", contents.ExtractText(contents.Node{}))
		assert.Nil(t, contents.Lines(contents.Node{}))
		assert.Equal(t, "", contents.ExtractText(contents.Doc()))
		assert.Nil(t, contents.Lines(contents.Doc()))
	})
}

func TestWordCount(t *testing.T) {
	doc := contents.Doc(
		contents.Paragraph("Wash hands before meals."),
		contents.Paragraph("Use PPE during contact."),
	)
	assert.Equal(t, 8, contents.WordCount(doc))
	assert.Equal(t, 0, contents.WordCount(contents.Node{}))
}

func TestNodeSerialization(t *testing.T) {
	doc := contents.Doc(contents.Heading("2", "Scope"), contents.Paragraph("All staff."))

	encoded, err := json.Marshal(doc)
	assert.NoError(t, err)

	decoded := contents.Node{}
	assert.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, doc, decoded)
	assert.Equal(t, contents.ExtractText(doc), contents.ExtractText(decoded))
}

// Node is a shorthand for building literals in tests.
type Node = contents.Node
