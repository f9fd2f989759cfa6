// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librum/internal/platform/apperr"
)

// # Test Doubles

type fakeBookRepo struct {
	books map[string]*Book
}

func (repo *fakeBookRepo) List(_ context.Context, limit, offset int) ([]*Book, int, error) {
	var all []*Book
	for _, entity := range repo.books {
		all = append(all, entity)
	}
	return all, len(all), nil
}

func (repo *fakeBookRepo) FindBySlug(_ context.Context, slug string) (*Book, error) {
	for _, entity := range repo.books {
		if entity.Slug == slug {
			return entity, nil
		}
	}
	return nil, apperr.NotFound("book")
}

func (repo *fakeBookRepo) Create(_ context.Context, book *Book) error {
	for _, entity := range repo.books {
		if entity.Slug == book.Slug {
			return apperr.Conflict("book already exists")
		}
	}
	repo.books[book.ID] = book
	return nil
}

func (repo *fakeBookRepo) Delete(_ context.Context, id string) error {
	if _, ok := repo.books[id]; !ok {
		return apperr.NotFound("book")
	}
	delete(repo.books, id)
	return nil
}

func newBookService(repo *fakeBookRepo) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger)
}

// # Tests

func TestServiceCreateBookDerivesSlug(t *testing.T) {
	repo := &fakeBookRepo{books: map[string]*Book{}}
	service := newBookService(repo)

	entity := &Book{Title: "The Name of the Wind"}
	err := service.CreateBook(context.Background(), entity)

	require.NoError(t, err)
	assert.NotEmpty(t, entity.ID)
	assert.Equal(t, "the-name-of-the-wind", entity.Slug)
	assert.Len(t, repo.books, 1)
}

func TestServiceCreateBookValidation(t *testing.T) {
	tests := []struct {
		name  string
		input *Book
	}{
		{"empty_title", &Book{}},
		{"bad_explicit_slug", &Book{Title: "Fine Title", Slug: "Not A Slug"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeBookRepo{books: map[string]*Book{}}
			service := newBookService(repo)

			err := service.CreateBook(context.Background(), tt.input)

			require.Error(t, err)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
			assert.Empty(t, repo.books)
		})
	}
}

func TestServiceCreateBookDuplicateSlug(t *testing.T) {
	repo := &fakeBookRepo{books: map[string]*Book{
		"book-1": {ID: "book-1", Slug: "moby-dick", Title: "Moby Dick"},
	}}
	service := newBookService(repo)

	err := service.CreateBook(context.Background(), &Book{Title: "Moby Dick"})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

func TestServiceDeleteBook(t *testing.T) {
	repo := &fakeBookRepo{books: map[string]*Book{
		"book-1": {ID: "book-1", Slug: "moby-dick", Title: "Moby Dick"},
	}}
	service := newBookService(repo)

	require.NoError(t, service.DeleteBook(context.Background(), "moby-dick"))
	assert.Empty(t, repo.books)

	err := service.DeleteBook(context.Background(), "moby-dick")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}
