// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package highlight

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// # Highlight Data Access

// Repository defines the data access contract for highlights.
type Repository interface {

	/*
		ListByChapter returns a user's highlights on a chapter, oldest first.

		Parameters:
		  - context: context.Context
		  - userID: string (UUID)
		  - chapterID: string (UUID)

		Returns:
		  - []*Highlight: Hydrated annotations
		  - error: Storage failures
	*/
	ListByChapter(context context.Context, userID, chapterID string) ([]*Highlight, error)

	/*
		FindByID returns a single highlight.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Highlight: The annotation
		  - error: apperr.NotFound if missing
	*/
	FindByID(context context.Context, id string) (*Highlight, error)

	/*
		Create persists a new highlight.

		Parameters:
		  - context: context.Context
		  - highlight: *Highlight

		Returns:
		  - error: apperr.Unprocessable if the chapter is gone, storage failures
	*/
	Create(context context.Context, highlight *Highlight) error

	/*
		Delete removes a highlight row.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - error: apperr.NotFound if the row does not exist
	*/
	Delete(context context.Context, id string) error

	/*
		MoveToChapter relocates every highlight on one chapter to another,
		rebasing position selectors by addOffset.

		Description: Runs inside the caller's merge transaction. Each
		annotation is copied under a fresh identity to the destination
		chapter, then the original is removed; a failed copy aborts the
		transaction so no annotation is ever lost.

		Parameters:
		  - context: context.Context
		  - tx: pgx.Tx (the enclosing merge transaction)
		  - fromChapterID: string (UUID of the chapter being absorbed)
		  - toChapterID: string (UUID of the surviving chapter)
		  - addOffset: int (source chapter's start offset in the merged text)

		Returns:
		  - error: Storage failures, which must roll back the transaction
	*/
	MoveToChapter(context context.Context, tx pgx.Tx, fromChapterID, toChapterID string, addOffset int) error

	/*
		DeleteByChapter removes every highlight on a chapter.

		Description: Runs inside the caller's delete transaction. The chapter
		foreign key is RESTRICT, so an explicit chapter removal must purge its
		annotations first or the row delete fails.

		Parameters:
		  - context: context.Context
		  - tx: pgx.Tx (the enclosing delete transaction)
		  - chapterID: string (UUID)

		Returns:
		  - error: Storage failures, which must roll back the transaction
	*/
	DeleteByChapter(context context.Context, tx pgx.Tx, chapterID string) error
}
