// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/librum/internal/platform/apperr"
	"github.com/taibuivan/librum/internal/platform/database/schema"
	"github.com/taibuivan/librum/internal/platform/dberr"
)

// # PostgreSQL Repository

// database is the slice of *pgxpool.Pool the repository consumes.
type database interface {
	Exec(context context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(context context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(context context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements [Repository] backed by PostgreSQL.
type PostgresRepository struct {
	db database
}

// NewPostgresRepository constructs the PostgreSQL-backed book repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns a page of books ordered by title, each carrying its current
// chapter count.
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Book, int, error) {
	b := schema.CoreBook
	c := schema.CoreChapter

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s,
		       (SELECT COUNT(*) FROM %s WHERE %s.%s = %s.%s) AS chaptercount,
		       COUNT(*) OVER() AS total
		FROM %s
		ORDER BY %s ASC
		LIMIT $1 OFFSET $2`,
		b.ID, b.Slug, b.Title, b.Author, b.CreatedAt, b.UpdatedAt,
		c.Table, c.Table, c.BookID, b.Table, b.ID,
		b.Table,
		b.Title,
	)

	rows, err := repository.db.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "book")
	}
	defer rows.Close()

	var (
		books []*Book
		total int
	)
	for rows.Next() {
		var entity Book
		if err := rows.Scan(
			&entity.ID, &entity.Slug, &entity.Title, &entity.Author,
			&entity.CreatedAt, &entity.UpdatedAt, &entity.ChapterCount, &total,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "book")
		}
		books = append(books, &entity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "book")
	}

	return books, total, nil
}

// FindBySlug returns the book with the given public slug.
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Book, error) {
	b := schema.CoreBook

	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(b.Columns(), ", "), b.Table, b.Slug,
	)

	var entity Book
	err := repository.db.QueryRow(context, query, slug).Scan(
		&entity.ID, &entity.Slug, &entity.Title, &entity.Author,
		&entity.CreatedAt, &entity.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "book")
	}

	return &entity, nil
}

// Create persists a new book row.
func (repository *PostgresRepository) Create(context context.Context, book *Book) error {
	b := schema.CoreBook

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s`,
		b.Table, b.ID, b.Slug, b.Title, b.Author,
		b.CreatedAt, b.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		book.ID, book.Slug, book.Title, book.Author,
	).Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "book")
	}

	return nil
}

// Delete removes a book row. Chapters cascade via their foreign key; the
// highlight foreign key is RESTRICT, so the CTE purges every annotation on
// the book's chapters in the same statement before the row goes.
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	b := schema.CoreBook
	c := schema.CoreChapter
	h := schema.ReadingHighlight

	query := fmt.Sprintf(`
		WITH purged AS (
			DELETE FROM %s
			WHERE %s IN (SELECT %s FROM %s WHERE %s = $1)
		)
		DELETE FROM %s WHERE %s = $1`,
		h.Table,
		h.ChapterID, c.ID, c.Table, c.BookID,
		b.Table, b.ID,
	)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "book")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("book")
	}

	return nil
}
