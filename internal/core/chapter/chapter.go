// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter implements the ordering and merge engine for book chapters.

Every book owns a strictly ordered chapter list: indices are unique positive
integers forming a dense 1..N range whenever the book is at rest. Three
structural mutations exist — reorder, merge, and renumber — and all three
serialize on a per-book row lock so concurrent requests against one book
cannot interleave index writes.

# Two-Phase Index Writes

The (book, index) pair carries a unique constraint, so rewriting an ordering
in place would collide with itself. Every structural mutation therefore runs
in two phases inside one transaction: first every index is bumped by a large
constant to clear the occupied range, then the final values are written. A
failure at any point rolls back both phases.

# Merging

A merge concatenates several chapters' rich-text documents into one surviving
target chapter, inserting a divider marker at each former boundary. Reader
highlights anchored by plain-text offsets are rebased by each source
chapter's starting offset in the combined document and moved to the target
before the source rows are deleted.
*/
package chapter

import "time"

// # Domain Entity

// Chapter is a titled section of a book with a rich-text body and an
// explicit 1-based position in the book's ordering.
type Chapter struct {
	ID     string `json:"id"`
	BookID string `json:"-"`
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Index  int    `json:"index"`

	// FirstPage and LastPage bound the chapter's inclusive print-page range;
	// either may be absent.
	FirstPage *int `json:"first_page"`
	LastPage  *int `json:"last_page"`

	// Content is the TipTap document tree. Hydrated on single-chapter reads
	// and merges; omitted from list payloads.
	Content map[string]any `json:"content,omitempty"`

	// ParagraphCount and BookTitle are hydrated on list reads only.
	ParagraphCount int    `json:"paragraph_count"`
	BookTitle      string `json:"book_title,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
