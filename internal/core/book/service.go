// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"log/slog"

	"github.com/taibuivan/librum/internal/platform/validate"
	"github.com/taibuivan/librum/pkg/slug"
	"github.com/taibuivan/librum/pkg/uuid"
)

const (
	FieldTitle = "title"
	FieldSlug  = "slug"
)

// # Service Layer

// Service orchestrates the business logic for the book catalogue.
type Service struct {
	bookRepo Repository
	logger   *slog.Logger
}

// NewService constructs a new [Service] with its required repository.
func NewService(bookRepo Repository, logger *slog.Logger) *Service {
	return &Service{
		bookRepo: bookRepo,
		logger:   logger,
	}
}

// # Catalogue Operations

/*
ListBooks retrieves a page of the catalogue.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []*Book: Matched books
  - int: Total catalogue size
  - error: Storage failures
*/
func (service *Service) ListBooks(context context.Context, limit, offset int) ([]*Book, int, error) {
	return service.bookRepo.List(context, limit, offset)
}

/*
GetBook retrieves a single book by its public slug.

Parameters:
  - context: context.Context
  - bookSlug: string

Returns:
  - *Book: The hydrated domain entity
  - error: apperr.NotFound if absent
*/
func (service *Service) GetBook(context context.Context, bookSlug string) (*Book, error) {
	return service.bookRepo.FindBySlug(context, bookSlug)
}

/*
CreateBook initialises a new book in the catalogue.

Description: Derives the public slug from the title when the caller does
not provide one, validates the result, and persists the record.

Parameters:
  - context: context.Context
  - book: *Book (Title required; Slug optional)

Returns:
  - error: Validation or persistence errors
*/
func (service *Service) CreateBook(context context.Context, book *Book) error {

	// Identity & mandatory field generation
	if book.ID == "" {
		book.ID = uuid.New()
	}
	if book.Slug == "" {
		book.Slug = slug.From(book.Title)
	}

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldTitle, book.Title)
	validator.MaxLen(FieldTitle, book.Title, 300)
	validator.Slug(FieldSlug, book.Slug)

	if err := validator.Err(); err != nil {
		return err
	}

	// Storage persistence
	if err := service.bookRepo.Create(context, book); err != nil {
		return err
	}

	service.logger.Info("book_created",
		slog.String("book_id", book.ID),
		slog.String("slug", book.Slug),
	)

	return nil
}

/*
DeleteBook removes a book and all of its chapters.

Parameters:
  - context: context.Context
  - bookSlug: string

Returns:
  - error: apperr.NotFound if absent, persistence failures
*/
func (service *Service) DeleteBook(context context.Context, bookSlug string) error {
	book, err := service.bookRepo.FindBySlug(context, bookSlug)
	if err != nil {
		return err
	}

	if err := service.bookRepo.Delete(context, book.ID); err != nil {
		return err
	}

	service.logger.Info("book_deleted",
		slog.String("book_id", book.ID),
		slog.String("slug", book.Slug),
	)

	return nil
}
