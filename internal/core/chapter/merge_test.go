// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librum/pkg/document"
)

// textDoc builds a single-paragraph document holding the given text.
func textDoc(text string) map[string]any {
	return map[string]any{
		"type": document.TypeDoc,
		"content": []any{
			map[string]any{
				"type": "paragraph",
				"content": []any{
					map[string]any{"type": document.TypeText, "text": text},
				},
			},
		},
	}
}

func intPtr(v int) *int { return &v }

func TestPickMergeTarget(t *testing.T) {
	tests := []struct {
		name    string
		sources []*Chapter
		wantID  string
	}{
		{
			name: "lowest index wins",
			sources: []*Chapter{
				{ID: "b", Index: 2},
				{ID: "a", Index: 1},
				{ID: "c", Index: 3},
			},
			wantID: "a",
		},
		{
			name: "equal indices break ties by lowest id",
			sources: []*Chapter{
				{ID: "z", Index: 1},
				{ID: "a", Index: 1},
			},
			wantID: "a",
		},
		{
			name: "single source",
			sources: []*Chapter{
				{ID: "only", Index: 7},
			},
			wantID: "only",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantID, pickMergeTarget(tt.sources).ID)
		})
	}
}

func TestBuildMergePlanOffsets(t *testing.T) {
	target := &Chapter{
		ID: "a", Slug: "hello", Title: "Hello", Index: 1,
		Content: textDoc("Hello "),
	}
	source := &Chapter{
		ID: "b", Slug: "world", Title: "World", Index: 2,
		Content: textDoc("World"),
	}

	plan := buildMergePlan("book-1", target, []*Chapter{source}, "", "")

	// "Hello " is 6 characters, the divider adds none, "World" adds 5.
	assert.Equal(t, 11, plan.PlainLength)
	assert.Equal(t, 11, document.PlainLength(plan.Content))

	require.Len(t, plan.Sources, 1)
	assert.Equal(t, "b", plan.Sources[0].ChapterID)
	assert.Equal(t, 6, plan.Sources[0].StartOffset)

	// Target metadata survives when no overrides are given.
	assert.Equal(t, "a", plan.TargetID)
	assert.Equal(t, "Hello", plan.Title)
	assert.Equal(t, "hello", plan.Slug)

	// Node stream: target paragraph, divider, source paragraph.
	nodes := document.Nodes(plan.Content)
	require.Len(t, nodes, 3)
	divider, ok := nodes[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, document.TypePageBreak, divider["type"])
	attrs, ok := divider["attrs"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, document.DividerKind, attrs["kind"])
	assert.Equal(t, "World", attrs["title"])
	assert.Nil(t, attrs["page"])
}

func TestBuildMergePlanVisitsIndexOrder(t *testing.T) {
	// The target sits in the middle of the merged sequence; its own content
	// lands after the first source and before the second.
	first := &Chapter{ID: "s1", Slug: "one", Title: "One", Index: 1, Content: textDoc("aaaa")}
	target := &Chapter{ID: "t", Slug: "two", Title: "Two", Index: 2, Content: textDoc("bb")}
	last := &Chapter{ID: "s2", Slug: "three", Title: "Three", Index: 3, Content: textDoc("c")}

	plan := buildMergePlan("book-1", target, []*Chapter{first, last}, "", "")

	assert.Equal(t, 7, plan.PlainLength)

	offsets := map[string]int{}
	for _, source := range plan.Sources {
		offsets[source.ChapterID] = source.StartOffset
	}
	// "aaaa" starts the document; "bb" follows at 4; "c" lands at 6.
	assert.Equal(t, 0, offsets["s1"])
	assert.Equal(t, 6, offsets["s2"])
}

func TestBuildMergePlanOverrides(t *testing.T) {
	target := &Chapter{ID: "a", Slug: "old", Title: "Old", Index: 1, Content: textDoc("x")}
	source := &Chapter{ID: "b", Slug: "gone", Title: "Gone", Index: 2, Content: textDoc("y")}

	plan := buildMergePlan("book-1", target, []*Chapter{source}, "Fresh Title", "fresh-slug")

	assert.Equal(t, "Fresh Title", plan.Title)
	assert.Equal(t, "fresh-slug", plan.Slug)
}

func TestBuildMergePlanPageRange(t *testing.T) {
	tests := []struct {
		name      string
		target    *Chapter
		source    *Chapter
		wantFirst *int
		wantLast  *int
	}{
		{
			name:      "min first and max last across participants",
			target:    &Chapter{ID: "a", Index: 1, FirstPage: intPtr(10), LastPage: intPtr(20)},
			source:    &Chapter{ID: "b", Index: 2, FirstPage: intPtr(5), LastPage: intPtr(30)},
			wantFirst: intPtr(5),
			wantLast:  intPtr(30),
		},
		{
			name:      "null pages are skipped",
			target:    &Chapter{ID: "a", Index: 1},
			source:    &Chapter{ID: "b", Index: 2, FirstPage: intPtr(3), LastPage: intPtr(9)},
			wantFirst: intPtr(3),
			wantLast:  intPtr(9),
		},
		{
			name:      "all null stays null",
			target:    &Chapter{ID: "a", Index: 1},
			source:    &Chapter{ID: "b", Index: 2},
			wantFirst: nil,
			wantLast:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := buildMergePlan("book-1", tt.target, []*Chapter{tt.source}, "", "")
			assert.Equal(t, tt.wantFirst, plan.FirstPage)
			assert.Equal(t, tt.wantLast, plan.LastPage)
		})
	}
}

func TestBuildMergePlanMalformedContent(t *testing.T) {
	target := &Chapter{ID: "a", Slug: "ok", Title: "OK", Index: 1, Content: textDoc("abc")}
	broken := &Chapter{
		ID: "b", Slug: "broken", Title: "Broken", Index: 2,
		Content: map[string]any{"type": "doc", "content": "not-an-array"},
	}

	plan := buildMergePlan("book-1", target, []*Chapter{broken}, "", "")

	// The broken chapter contributes zero nodes and zero length; the merge
	// still succeeds and the divider still marks the old boundary.
	assert.Equal(t, 3, plan.PlainLength)
	require.Len(t, plan.Sources, 1)
	assert.Equal(t, 3, plan.Sources[0].StartOffset)
	assert.Len(t, document.Nodes(plan.Content), 2)
}
