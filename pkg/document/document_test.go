// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package document_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librum/pkg/document"
)

// decode parses a JSON literal into the untyped tree the package operates on.
func decode(t *testing.T, raw string) any {
	t.Helper()
	var doc any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

/*
TestPlainLength_Malformed verifies that broken documents degrade to zero
length instead of raising.
*/
func TestPlainLength_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  any
	}{
		{"nil_document", nil},
		{"empty_object", map[string]any{}},
		{"content_not_array", decode(t, `{"type":"doc","content":"not-an-array"}`)},
		{"scalar_document", "just a string"},
		{"numeric_document", 42.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0, document.PlainLength(tt.doc))
		})
	}
}

/*
TestPlainLength_Nested verifies the depth-first sum over text leaves.
*/
func TestPlainLength_Nested(t *testing.T) {
	doc := decode(t, `{
		"type": "doc",
		"content": [
			{"type": "heading", "attrs": {"level": 1}, "content": [
				{"type": "text", "text": "Title"}
			]},
			{"type": "paragraph", "content": [
				{"type": "text", "text": "Hello "},
				{"type": "text", "text": "World"}
			]},
			{"type": "horizontalRule"},
			{"type": "blockquote", "content": [
				{"type": "paragraph", "content": [
					{"type": "text", "text": "quoted"}
				]}
			]}
		]
	}`)

	// "Title" (5) + "Hello " (6) + "World" (5) + "quoted" (6)
	assert.Equal(t, 22, document.PlainLength(doc))
}

/*
TestPlainLength_Unicode verifies counting in Unicode scalar units, not bytes.
*/
func TestPlainLength_Unicode(t *testing.T) {
	doc := decode(t, `{"type":"doc","content":[
		{"type":"paragraph","content":[{"type":"text","text":"héllo 世界"}]}
	]}`)

	assert.Equal(t, 8, document.PlainLength(doc))
}

/*
TestPlainLength_TextCoercion verifies that text nodes with a missing or
non-string payload contribute nothing but do not break the walk.
*/
func TestPlainLength_TextCoercion(t *testing.T) {
	doc := decode(t, `{"type":"doc","content":[
		{"type":"text"},
		{"type":"text","text":123},
		{"type":"text","text":"ok"}
	]}`)

	assert.Equal(t, 2, document.PlainLength(doc))
}

/*
TestDivider verifies the marker node shape and its zero plain length.
*/
func TestDivider(t *testing.T) {
	divider := document.Divider("Chapter Two")

	assert.Equal(t, document.TypePageBreak, divider["type"])

	attrs, ok := divider["attrs"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, document.DividerKind, attrs["kind"])
	assert.Equal(t, "Chapter Two", attrs["title"])
	assert.Nil(t, attrs["page"])

	// The marker must never shift offsets by itself.
	wrapper := map[string]any{"type": "doc", "content": []any{divider}}
	assert.Equal(t, 0, document.PlainLength(wrapper))
}

/*
TestNodes_Defensive verifies content extraction on malformed trees.
*/
func TestNodes_Defensive(t *testing.T) {
	assert.Nil(t, document.Nodes(nil))
	assert.Nil(t, document.Nodes(map[string]any{}))
	assert.Nil(t, document.Nodes(decode(t, `{"content":{"nested":"object"}}`)))

	nodes := document.Nodes(decode(t, `{"type":"doc","content":[{"type":"paragraph"}]}`))
	assert.Len(t, nodes, 1)
}

/*
TestEmpty verifies the canonical empty document is well-formed.
*/
func TestEmpty(t *testing.T) {
	doc := document.Empty()
	assert.Equal(t, document.TypeDoc, doc["type"])
	assert.Equal(t, 0, document.PlainLength(doc))
	assert.Equal(t, 0, document.BlockCount(doc))
	assert.NotNil(t, doc["content"])
}
