// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "time"

// # Domain Entity

// Book is a top-level literary work owning an ordered list of chapters.
//
// The slug is the public identifier used in every chapter route; the UUID
// stays internal to storage and locking.
type Book struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ChapterCount is hydrated on list reads only.
	ChapterCount int `json:"chapter_count"`
}
