// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package document models chapter bodies as TipTap/ProseMirror JSON trees.

A document is a root node of type "doc" holding a "content" array of block
nodes; text ultimately lives in leaf nodes of type "text". Because documents
arrive as untyped JSON (jsonb columns, request bodies), this package operates
on map[string]any trees rather than a rigid struct schema — unknown node
types are walked transparently, and malformed trees degrade to empty rather
than erroring.

# Offset Arithmetic

The plain length of a document (total Unicode characters across text leaves,
in depth-first document order) is the coordinate system used by highlight
selectors. Every helper here is written so that concatenating documents and
re-basing offsets stays consistent with [PlainLength].
*/
package document

import "unicode/utf8"

// # Node Types

const (
	// TypeDoc is the root node type of every well-formed document.
	TypeDoc = "doc"

	// TypeText is the leaf node type carrying character data.
	TypeText = "text"

	// TypePageBreak is the synthetic marker node inserted at merge boundaries.
	TypePageBreak = "pageBreak"

	// DividerKind is the attrs.kind value identifying a former chapter break.
	DividerKind = "chapterDivider"
)

// # Construction

// Empty returns a well-formed document with no content.
//
// Used as the default body for freshly created chapters.
func Empty() map[string]any {
	return map[string]any{
		"type":    TypeDoc,
		"content": []any{},
	}
}

// Divider builds the marker node inserted between two merged chapters.
//
// The node carries the absorbed chapter's title so readers can still see
// where the old chapter began. It contributes zero plain length.
func Divider(title string) map[string]any {
	return map[string]any{
		"type": TypePageBreak,
		"attrs": map[string]any{
			"kind":  DividerKind,
			"title": title,
			"page":  nil,
		},
	}
}

// # Tree Access

// Nodes returns the content array of a document or container node.
//
// It is deliberately forgiving: a nil document, a non-object document, or a
// "content" field that is missing or not an array all yield nil. Malformed
// chapter bodies are treated as empty documents, never as errors.
func Nodes(doc any) []any {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil
	}

	items, ok := root["content"].([]any)
	if !ok {
		return nil
	}

	return items
}

// BlockCount returns the number of top-level block nodes in a document.
//
// Exposed for list payloads (paragraph counts); 0 for malformed input.
func BlockCount(doc any) int {
	return len(Nodes(doc))
}

// # Plain Length

/*
PlainLength computes the total plain-text length of a document.

Description: Walks every descendant node depth-first in document order,
summing the Unicode character count (scalar values, not bytes) of each
node whose type is exactly "text". Container nodes contribute nothing
themselves but their children are always visited, regardless of the
container's own type.

Parameters:
  - doc: any (The decoded JSON tree; tolerates nil/malformed input)

Returns:
  - int: Total character count; 0 for malformed documents
*/
func PlainLength(doc any) int {
	root, ok := doc.(map[string]any)
	if !ok {
		return 0
	}
	return nodeLength(root)
}

// nodeLength returns the plain length of a single node and its subtree.
func nodeLength(node map[string]any) int {
	total := 0

	if nodeType, _ := node["type"].(string); nodeType == TypeText {
		// Coerce the text payload to string; absent or non-string is empty.
		text, _ := node["text"].(string)
		total += utf8.RuneCountInString(text)
	}

	// Recurse into children whenever a content array is present, even for
	// unknown node types. Document order is the iteration order.
	if children, ok := node["content"].([]any); ok {
		for _, child := range children {
			if childNode, ok := child.(map[string]any); ok {
				total += nodeLength(childNode)
			}
		}
	}

	return total
}
