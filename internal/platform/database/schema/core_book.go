// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema centralizes table and column identifiers so repositories
// never embed raw string literals in SQL.
package schema

// CoreBookTable represents the 'core.book' table
type CoreBookTable struct {
	Table     string
	ID        string
	Slug      string
	Title     string
	Author    string
	CreatedAt string
	UpdatedAt string
}

// CoreBook is the schema definition for core.book
var CoreBook = CoreBookTable{
	Table:     "core.book",
	ID:        "id",
	Slug:      "slug",
	Title:     "title",
	Author:    "author",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CoreBookTable) Columns() []string {
	return []string{t.ID, t.Slug, t.Title, t.Author, t.CreatedAt, t.UpdatedAt}
}
