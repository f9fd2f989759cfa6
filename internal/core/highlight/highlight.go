// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package highlight manages reader annotations anchored to chapter text.

A highlight stores a free-form selector document describing where in the
chapter's plain text it lives. Selectors travel with their chapter: when
chapters are merged the engine rebases each selector's text positions by
the source chapter's starting offset inside the combined document, then
moves the row to the surviving chapter.
*/
package highlight

import "time"

// # Domain Entity

// Highlight is a reader annotation over a span of chapter text.
type Highlight struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	ChapterID string         `json:"chapter_id"`
	Selector  map[string]any `json:"selector"`
	Style     string         `json:"style"`
	Note      string         `json:"note,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
