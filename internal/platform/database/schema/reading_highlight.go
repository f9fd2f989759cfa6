// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ReadingHighlightTable represents the 'reading.highlight' table
type ReadingHighlightTable struct {
	Table     string
	ID        string
	UserID    string
	ChapterID string
	Selector  string
	Style     string
	Note      string
	CreatedAt string
}

// ReadingHighlight is the schema definition for reading.highlight.
//
// The chapter reference is RESTRICT on purpose: a chapter row may only
// vanish after its highlights are handled explicitly. Merges migrate them
// to the target with corrected offsets; explicit deletes purge them in the
// same transaction.
var ReadingHighlight = ReadingHighlightTable{
	Table:     "reading.highlight",
	ID:        "id",
	UserID:    "userid",
	ChapterID: "chapterid",
	Selector:  "selector",
	Style:     "style",
	Note:      "note",
	CreatedAt: "createdat",
}

func (t ReadingHighlightTable) Columns() []string {
	return []string{t.ID, t.UserID, t.ChapterID, t.Selector, t.Style, t.Note, t.CreatedAt}
}
