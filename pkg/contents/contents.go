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

// Package contents provides the serialized content tree of a policy
// document and its line-oriented text view. The engine never edits the
// tree; it only walks it, so the model is a plain recursive struct
// independent of the editor that produced it.
package contents

import (
	"strings"
)

// Node types with block semantics. A paragraph break is inserted after each
// of these when extracting text.
const (
	TypeDoc       = "doc"
	TypeParagraph = "paragraph"
	TypeHeading   = "heading"
	TypeText      = "text"
)

// Node is a node of the serialized content tree.
type Node struct {
	// Type is the node type, e.g. "doc", "paragraph", "heading", "text".
	Type string `json:"type" bson:"type"`

	// Text is the text of a leaf node.
	Text string `json:"text,omitempty" bson:"text,omitempty"`

	// Attributes carries editor attributes such as heading level.
	Attributes map[string]string `json:"attributes,omitempty" bson:"attributes,omitempty"`

	// Children are the child nodes of a container node.
	Children []Node `json:"children,omitempty" bson:"children,omitempty"`
}

// IsZero returns true if this node is the zero value.
func (n Node) IsZero() bool {
	return n.Type == "" && n.Text == "" && len(n.Attributes) == 0 && len(n.Children) == 0
}

// isBlock returns true if a paragraph break follows this node.
func (n Node) isBlock() bool {
	return n.Type == TypeParagraph || n.Type == TypeHeading
}

// ExtractText walks the tree depth-first, concatenating text leaves and
// inserting a paragraph break after each paragraph or heading node. The
// result is a line-oriented view suitable for line diffing, independent of
// the tree's structural shape.
func ExtractText(root Node) string {
	sb := strings.Builder{}
	extract(&sb, root)
	return strings.TrimRight(sb.String(), "\n")
}

func extract(sb *strings.Builder, node Node) {
	if node.Text != "" {
		sb.WriteString(node.Text)
	}

	for _, child := range node.Children {
		extract(sb, child)
	}

	if node.isBlock() {
		sb.WriteString("\n")
	}
}

// Lines returns the extracted text split into lines. An empty tree yields
// no lines at all rather than a single empty line.
func Lines(root Node) []string {
	text := ExtractText(root)
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// WordCount returns the number of words in the extracted text.
func WordCount(root Node) int {
	return len(strings.Fields(ExtractText(root)))
}

// Doc creates a document root node with the given children.
func Doc(children ...Node) Node {
	return Node{Type: TypeDoc, Children: children}
}

// Paragraph creates a paragraph node wrapping a single text leaf.
func Paragraph(text string) Node {
	return Node{Type: TypeParagraph, Children: []Node{{Type: TypeText, Text: text}}}
}

// Heading creates a heading node of the given level wrapping a text leaf.
func Heading(level string, text string) Node {
	return Node{
		Type:       TypeHeading,
		Attributes: map[string]string{"level": level},
		Children:   []Node{{Type: TypeText, Text: text}},
	}
}
