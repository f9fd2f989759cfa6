// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table     string
	ID        string
	BookID    string
	Slug      string
	Title     string
	Index     string
	FirstPage string
	LastPage  string
	Content   string
	CreatedAt string
	UpdatedAt string
}

// CoreChapter is the schema definition for core.chapter.
//
// The (bookid, chapterindex) pair carries a unique constraint; the
// sequencer's two-phase bump exists to avoid transient collisions on it.
var CoreChapter = CoreChapterTable{
	Table:     "core.chapter",
	ID:        "id",
	BookID:    "bookid",
	Slug:      "slug",
	Title:     "title",
	Index:     "chapterindex",
	FirstPage: "firstpage",
	LastPage:  "lastpage",
	Content:   "content",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CoreChapterTable) Columns() []string {
	return []string{
		t.ID, t.BookID, t.Slug, t.Title, t.Index,
		t.FirstPage, t.LastPage, t.Content, t.CreatedAt, t.UpdatedAt,
	}
}
