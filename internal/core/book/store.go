// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "context"

// # Book Data Access

// Repository defines the data access contract for books.
type Repository interface {

	/*
		List returns a page of books ordered by title.

		Parameters:
		  - context: context.Context
		  - limit: int
		  - offset: int

		Returns:
		  - []*Book: Hydrated books including chapter counts
		  - int: Total book count
		  - error: Storage failures
	*/
	List(context context.Context, limit, offset int) ([]*Book, int, error)

	/*
		FindBySlug returns the book with the given public slug.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Book: Hydrated metadata
		  - error: apperr.NotFound if missing
	*/
	FindBySlug(context context.Context, slug string) (*Book, error)

	/*
		Create persists a new book.

		Parameters:
		  - context: context.Context
		  - book: *Book

		Returns:
		  - error: apperr.Conflict on duplicate slug, storage failures
	*/
	Create(context context.Context, book *Book) error

	/*
		Delete removes a book and (via cascade) its chapters.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - error: apperr.NotFound if the row does not exist
	*/
	Delete(context context.Context, id string) error
}
