// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/librum/internal/core/book"
)

// # Sequencing Primitives

// IndexAssignment pairs a chapter with an index value.
//
// Used both for the raw writes of a reorder request and for the dense
// assignments produced by the renumber planner. These writes go straight to
// the index column, bypassing entity-level validation: they are internal
// bulk operations, not user edits.
type IndexAssignment struct {
	ChapterID string
	Index     int
}

// # Collaborator Contracts

// BookDirectory resolves books by their public slug.
//
// Satisfied by the book package's repository; kept narrow so tests can fake
// book resolution without a catalogue.
type BookDirectory interface {
	FindBySlug(context context.Context, slug string) (*book.Book, error)
}

// HighlightMigrator manages reader annotations inside chapter transactions:
// relocation during a merge, and purging ahead of an explicit delete (the
// annotation foreign key is RESTRICT, so the chapter row cannot go first).
//
// Satisfied by the highlight package's repository. The additive offset is
// the source chapter's starting plain-text position in the merged document.
type HighlightMigrator interface {
	MoveToChapter(context context.Context, tx pgx.Tx, fromChapterID, toChapterID string, addOffset int) error
	DeleteByChapter(context context.Context, tx pgx.Tx, chapterID string) error
}

// # Chapter Data Access

// Repository defines the data access contract for chapters.
//
// Every method that rewrites indices (Create, Delete, Reorder, Renumber,
// ApplyMerge) acquires the owning book's row lock with a bounded wait and
// runs inside a single transaction; a lock-wait timeout surfaces as a
// retryable conflict.
type Repository interface {

	/*
		ListByBook returns a book's chapters ordered by index, without bodies.

		Parameters:
		  - context: context.Context
		  - bookID: string (UUID)

		Returns:
		  - []*Chapter: Hydrated with paragraph counts and the book title
		  - error: Storage failures
	*/
	ListByBook(context context.Context, bookID string) ([]*Chapter, error)

	/*
		FindBySlug returns one chapter of a book, body included.

		Parameters:
		  - context: context.Context
		  - bookID: string (UUID)
		  - slug: string

		Returns:
		  - *Chapter: The hydrated entity
		  - error: apperr.NotFound if missing
	*/
	FindBySlug(context context.Context, bookID, slug string) (*Chapter, error)

	/*
		Create persists a new chapter at the end of the book's ordering.

		Description: The index is assigned as max(existing)+1 under the book
		lock so two concurrent creations cannot claim the same position.

		Parameters:
		  - context: context.Context
		  - chapter: *Chapter (Index is assigned, not read)

		Returns:
		  - error: apperr.Conflict on duplicate slug, storage failures
	*/
	Create(context context.Context, chapter *Chapter) error

	/*
		Update rewrites a chapter's editable fields (never its index).

		Parameters:
		  - context: context.Context
		  - chapter: *Chapter

		Returns:
		  - error: apperr.NotFound if missing, apperr.Conflict on duplicate slug
	*/
	Update(context context.Context, chapter *Chapter) error

	/*
		Delete removes a chapter and restores a dense ordering.

		Description: The chapter's highlights are removed in the same
		transaction before the row itself; they anchor into text that no
		longer exists.

		Parameters:
		  - context: context.Context
		  - bookID: string (UUID)
		  - id: string (UUID)

		Returns:
		  - error: apperr.NotFound if missing, storage failures
	*/
	Delete(context context.Context, bookID, id string) error

	/*
		Reorder applies explicit index assignments under the book lock.

		Description: Null indices are first cleared to zero, every index is
		bumped by the transient offset, then each assignment is written
		verbatim. Chapters not mentioned keep their bumped position, which
		pushes them past every explicitly assigned index. Density is NOT
		restored here; callers needing 1..N afterwards invoke Renumber.

		Parameters:
		  - context: context.Context
		  - bookID: string (UUID)
		  - writes: []IndexAssignment (validated by the caller)

		Returns:
		  - error: apperr.Conflict on lock timeout, storage failures
	*/
	Reorder(context context.Context, bookID string, writes []IndexAssignment) error

	/*
		Renumber rewrites a book's indices to a dense 1..N sequence.

		Description: Chapters are ordered by (current index, id) and assigned
		1..N using the same two-phase bump. Idempotent on an already dense
		book.

		Parameters:
		  - context: context.Context
		  - bookID: string (UUID)

		Returns:
		  - error: apperr.Conflict on lock timeout, storage failures
	*/
	Renumber(context context.Context, bookID string) error

	/*
		ApplyMerge executes a computed merge plan atomically.

		Description: Under the book lock, migrates each source's highlights
		to the target with its recorded offset, deletes the source rows,
		rewrites the target with the merged document and metadata, then
		renumbers the book. The plan was computed from an earlier consistent
		read; if any participating row changed in between, the row-count
		checks fail and the transaction rolls back with a conflict.

		Parameters:
		  - context: context.Context
		  - plan: *MergePlan

		Returns:
		  - error: apperr.Conflict on races or lock timeout, storage failures
	*/
	ApplyMerge(context context.Context, plan *MergePlan) error
}
