// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librum/pkg/document"
)

// paragraphDoc builds a minimal one-paragraph document around the given text.
func paragraphDoc(text string) map[string]any {
	return map[string]any{
		"type": "doc",
		"content": []any{
			map[string]any{
				"type": "paragraph",
				"content": []any{
					map[string]any{"type": "text", "text": text},
				},
			},
		},
	}
}

/*
TestBuilder_RunningOffsets verifies that Len tracks the concatenation point
exactly: snapshotting Len before each content append yields the starting
offset of that chapter in the merged document.
*/
func TestBuilder_RunningOffsets(t *testing.T) {
	builder := &document.Builder{}

	// Chapter A: "Hello " (6 chars), first participant, no divider.
	startA := builder.Len()
	builder.AppendContent(paragraphDoc("Hello "))

	// Chapter B: "World" (5 chars), divider inserted before its content.
	builder.AppendDivider("Chapter B")
	startB := builder.Len()
	builder.AppendContent(paragraphDoc("World"))

	assert.Equal(t, 0, startA)
	assert.Equal(t, 6, startB)
	assert.Equal(t, 11, builder.Len())

	// The assembled document agrees with PlainLength.
	merged := builder.Doc()
	assert.Equal(t, 11, document.PlainLength(merged))

	// Node stream: A's paragraph, divider, B's paragraph.
	nodes := document.Nodes(merged)
	require.Len(t, nodes, 3)

	divider, ok := nodes[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, document.TypePageBreak, divider["type"])
}

/*
TestBuilder_MalformedContent verifies that a broken chapter body is absorbed
as an empty document without failing the concatenation.
*/
func TestBuilder_MalformedContent(t *testing.T) {
	builder := &document.Builder{}

	builder.AppendContent(paragraphDoc("abc"))
	builder.AppendDivider("Broken")
	builder.AppendContent(map[string]any{"type": "doc", "content": "oops"})
	builder.AppendDivider("Tail")
	builder.AppendContent(paragraphDoc("de"))

	assert.Equal(t, 5, builder.Len())

	// Two dividers plus two real paragraphs; the malformed body adds no nodes.
	assert.Len(t, document.Nodes(builder.Doc()), 4)
}

/*
TestBuilder_EmptyResult verifies an untouched builder still yields a
well-formed document.
*/
func TestBuilder_EmptyResult(t *testing.T) {
	builder := &document.Builder{}

	doc := builder.Doc()
	assert.Equal(t, document.TypeDoc, doc["type"])
	assert.Equal(t, []any{}, doc["content"])
	assert.Equal(t, 0, document.PlainLength(doc))
}
