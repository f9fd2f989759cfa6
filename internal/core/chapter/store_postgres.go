// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/librum/internal/platform/apperr"
	"github.com/taibuivan/librum/internal/platform/constants"
	"github.com/taibuivan/librum/internal/platform/database/schema"
	"github.com/taibuivan/librum/internal/platform/dberr"
	"github.com/taibuivan/librum/pkg/document"
)

// # PostgreSQL Repository

// database is the slice of *pgxpool.Pool the repository consumes, split out
// so transaction-heavy paths can be exercised against a scripted connection.
type database interface {
	Begin(context context.Context) (pgx.Tx, error)
	Query(context context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(context context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements [Repository] backed by PostgreSQL.
//
// Structural mutations lock the owning book row with a bounded wait and run
// in a single transaction; the lock serializes reorder, renumber, merge,
// create, and delete against one book.
type PostgresRepository struct {
	db         database
	highlights HighlightMigrator
}

// NewPostgresRepository constructs the PostgreSQL-backed chapter repository.
func NewPostgresRepository(db *pgxpool.Pool, highlights HighlightMigrator) *PostgresRepository {
	return &PostgresRepository{db: db, highlights: highlights}
}

// # Reads

// ListByBook returns a book's chapters ordered by index, bodies omitted.
func (repository *PostgresRepository) ListByBook(context context.Context, bookID string) ([]*Chapter, error) {
	c := schema.CoreChapter
	b := schema.CoreBook

	// The paragraph count is derived in SQL so list reads never pull full
	// document bodies; malformed content yields zero.
	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, c.%s, COALESCE(c.%s, 0), c.%s, c.%s,
		       CASE WHEN jsonb_typeof(c.%s->'content') = 'array'
		            THEN jsonb_array_length(c.%s->'content')
		            ELSE 0 END,
		       b.%s, c.%s, c.%s
		FROM %s c
		JOIN %s b ON b.%s = c.%s
		WHERE c.%s = $1
		ORDER BY c.%s ASC NULLS LAST, c.%s ASC`,
		c.ID, c.BookID, c.Slug, c.Title, c.Index, c.FirstPage, c.LastPage,
		c.Content,
		c.Content,
		b.Title, c.CreatedAt, c.UpdatedAt,
		c.Table,
		b.Table, b.ID, c.BookID,
		c.BookID,
		c.Index, c.ID,
	)

	rows, err := repository.db.Query(context, query, bookID)
	if err != nil {
		return nil, dberr.Wrap(err, "chapter")
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		var entity Chapter
		if err := rows.Scan(
			&entity.ID, &entity.BookID, &entity.Slug, &entity.Title, &entity.Index,
			&entity.FirstPage, &entity.LastPage,
			&entity.ParagraphCount,
			&entity.BookTitle, &entity.CreatedAt, &entity.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "chapter")
		}
		chapters = append(chapters, &entity)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "chapter")
	}

	return chapters, nil
}

// FindBySlug returns one chapter of a book with its document body.
func (repository *PostgresRepository) FindBySlug(context context.Context, bookID, slug string) (*Chapter, error) {
	c := schema.CoreChapter

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, COALESCE(%s, 0), %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2`,
		c.ID, c.BookID, c.Slug, c.Title, c.Index,
		c.FirstPage, c.LastPage, c.Content, c.CreatedAt, c.UpdatedAt,
		c.Table,
		c.BookID, c.Slug,
	)

	var (
		entity     Chapter
		rawContent []byte
	)
	err := repository.db.QueryRow(context, query, bookID, slug).Scan(
		&entity.ID, &entity.BookID, &entity.Slug, &entity.Title, &entity.Index,
		&entity.FirstPage, &entity.LastPage, &rawContent,
		&entity.CreatedAt, &entity.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "chapter")
	}

	entity.Content = decodeDoc(rawContent)
	return &entity, nil
}

// # Lifecycle Writes

// Create inserts a chapter at the end of the book's ordering.
func (repository *PostgresRepository) Create(context context.Context, chapter *Chapter) error {
	c := schema.CoreChapter

	contentJSON, err := json.Marshal(chapter.Content)
	if err != nil {
		return apperr.Internal(err)
	}

	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "chapter")
	}
	defer tx.Rollback(context)

	if err := lockBook(context, tx, chapter.BookID); err != nil {
		return err
	}

	nextQuery := fmt.Sprintf(
		`SELECT COALESCE(MAX(%s), 0) + 1 FROM %s WHERE %s = $1`,
		c.Index, c.Table, c.BookID,
	)
	if err := tx.QueryRow(context, nextQuery, chapter.BookID).Scan(&chapter.Index); err != nil {
		return dberr.Wrap(err, "chapter")
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s, %s`,
		c.Table, c.ID, c.BookID, c.Slug, c.Title, c.Index, c.FirstPage, c.LastPage, c.Content,
		c.CreatedAt, c.UpdatedAt,
	)
	err = tx.QueryRow(context, insertQuery,
		chapter.ID, chapter.BookID, chapter.Slug, chapter.Title, chapter.Index,
		chapter.FirstPage, chapter.LastPage, contentJSON,
	).Scan(&chapter.CreatedAt, &chapter.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "chapter")
	}

	if err := tx.Commit(context); err != nil {
		return dberr.Wrap(err, "chapter")
	}
	return nil
}

// Update rewrites a chapter's editable fields. The index column is owned by
// the sequencing paths and is never written here.
func (repository *PostgresRepository) Update(context context.Context, chapter *Chapter) error {
	c := schema.CoreChapter

	contentJSON, err := json.Marshal(chapter.Content)
	if err != nil {
		return apperr.Internal(err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = now()
		WHERE %s = $6
		RETURNING %s`,
		c.Table,
		c.Slug, c.Title, c.FirstPage, c.LastPage, c.Content, c.UpdatedAt,
		c.ID,
		c.UpdatedAt,
	)

	err = repository.db.QueryRow(context, query,
		chapter.Slug, chapter.Title, chapter.FirstPage, chapter.LastPage, contentJSON,
		chapter.ID,
	).Scan(&chapter.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "chapter")
	}

	return nil
}

// Delete removes a chapter and renumbers the remaining ordering.
//
// The chapter's highlights are purged first: the annotation foreign key is
// RESTRICT, so the row delete would otherwise fail for any annotated
// chapter.
func (repository *PostgresRepository) Delete(context context.Context, bookID, id string) error {
	c := schema.CoreChapter

	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "chapter")
	}
	defer tx.Rollback(context)

	if err := lockBook(context, tx, bookID); err != nil {
		return err
	}

	if err := repository.highlights.DeleteByChapter(context, tx, id); err != nil {
		return err
	}

	deleteQuery := fmt.Sprintf(
		`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		c.Table, c.ID, c.BookID,
	)
	tag, err := tx.Exec(context, deleteQuery, id, bookID)
	if err != nil {
		return dberr.Wrap(err, "chapter")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("chapter")
	}

	if err := renumberTx(context, tx, bookID); err != nil {
		return err
	}

	if err := tx.Commit(context); err != nil {
		return dberr.Wrap(err, "chapter")
	}
	return nil
}

// # Sequencing Writes

// Reorder applies explicit index assignments using the two-phase bump.
func (repository *PostgresRepository) Reorder(context context.Context, bookID string, writes []IndexAssignment) error {
	c := schema.CoreChapter

	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "chapter")
	}
	defer tx.Rollback(context)

	if err := lockBook(context, tx, bookID); err != nil {
		return err
	}

	// Phase zero: null indices would poison the arithmetic below.
	clearQuery := fmt.Sprintf(
		`UPDATE %s SET %s = 0 WHERE %s = $1 AND %s IS NULL`,
		c.Table, c.Index, c.BookID, c.Index,
	)
	if _, err := tx.Exec(context, clearQuery, bookID); err != nil {
		return dberr.Wrap(err, "chapter")
	}

	// Phase one: move every index out of the target range.
	bumpQuery := fmt.Sprintf(
		`UPDATE %s SET %s = %s + $1 WHERE %s = $2`,
		c.Table, c.Index, c.Index, c.BookID,
	)
	if _, err := tx.Exec(context, bumpQuery, constants.IndexBumpOffset, bookID); err != nil {
		return dberr.Wrap(err, "chapter")
	}

	// Phase two: write each requested index verbatim. Unmentioned chapters
	// keep their bumped value, past every explicit assignment.
	assignQuery := fmt.Sprintf(
		`UPDATE %s SET %s = $1 WHERE %s = $2 AND %s = $3`,
		c.Table, c.Index, c.ID, c.BookID,
	)
	batch := &pgx.Batch{}
	for _, write := range writes {
		batch.Queue(assignQuery, write.Index, write.ChapterID, bookID)
	}
	if err := flushBatch(context, tx, batch); err != nil {
		return err
	}

	if err := tx.Commit(context); err != nil {
		return dberr.Wrap(err, "chapter")
	}
	return nil
}

// Renumber restores the dense 1..N ordering for one book.
func (repository *PostgresRepository) Renumber(context context.Context, bookID string) error {
	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "chapter")
	}
	defer tx.Rollback(context)

	if err := lockBook(context, tx, bookID); err != nil {
		return err
	}

	if err := renumberTx(context, tx, bookID); err != nil {
		return err
	}

	if err := tx.Commit(context); err != nil {
		return dberr.Wrap(err, "chapter")
	}
	return nil
}

// # Merge Application

// ApplyMerge executes a merge plan in one locked transaction.
//
// Row counts are verified at every step: the plan was computed from an
// earlier read, so a vanished or already-consumed participant means another
// writer won the race and the whole merge must roll back.
func (repository *PostgresRepository) ApplyMerge(context context.Context, plan *MergePlan) error {
	c := schema.CoreChapter

	contentJSON, err := json.Marshal(plan.Content)
	if err != nil {
		return apperr.Internal(err)
	}

	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "chapter")
	}
	defer tx.Rollback(context)

	if err := lockBook(context, tx, plan.BookID); err != nil {
		return err
	}

	// Move highlights before the source rows go away; the highlight FK is
	// RESTRICT, so the order also keeps the deletes below from failing.
	for _, source := range plan.Sources {
		if err := repository.highlights.MoveToChapter(context, tx, source.ChapterID, plan.TargetID, source.StartOffset); err != nil {
			return err
		}
	}

	// Consume the sources first so a reused slug cannot collide with the
	// target rewrite below.
	deleteQuery := fmt.Sprintf(
		`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		c.Table, c.ID, c.BookID,
	)
	for _, source := range plan.Sources {
		tag, err := tx.Exec(context, deleteQuery, source.ChapterID, plan.BookID)
		if err != nil {
			return dberr.Wrap(err, "chapter")
		}
		if tag.RowsAffected() == 0 {
			return apperr.Conflict("chapter set changed during merge, retry")
		}
	}

	updateQuery := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = now()
		WHERE %s = $6 AND %s = $7`,
		c.Table,
		c.Title, c.Slug, c.Content, c.FirstPage, c.LastPage, c.UpdatedAt,
		c.ID, c.BookID,
	)
	tag, err := tx.Exec(context, updateQuery,
		plan.Title, plan.Slug, contentJSON, plan.FirstPage, plan.LastPage,
		plan.TargetID, plan.BookID,
	)
	if err != nil {
		return dberr.Wrap(err, "chapter")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("chapter set changed during merge, retry")
	}

	if err := renumberTx(context, tx, plan.BookID); err != nil {
		return err
	}

	if err := tx.Commit(context); err != nil {
		return dberr.Wrap(err, "chapter")
	}
	return nil
}

// # Transaction Helpers

// lockBook acquires the per-book row lock that serializes structural
// mutations, waiting at most [constants.BookLockWaitTimeout]. A timeout
// surfaces as a retryable conflict via dberr.
func lockBook(context context.Context, tx pgx.Tx, bookID string) error {
	b := schema.CoreBook

	timeoutQuery := fmt.Sprintf(
		`SET LOCAL lock_timeout = '%dms'`,
		constants.BookLockWaitTimeout.Milliseconds(),
	)
	if _, err := tx.Exec(context, timeoutQuery); err != nil {
		return dberr.Wrap(err, "book")
	}

	lockQuery := fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		b.ID, b.Table, b.ID,
	)
	var locked string
	if err := tx.QueryRow(context, lockQuery, bookID).Scan(&locked); err != nil {
		return dberr.Wrap(err, "book")
	}

	return nil
}

// renumberTx rewrites the book's indices to dense 1..N inside the caller's
// transaction. The book lock must already be held.
func renumberTx(context context.Context, tx pgx.Tx, bookID string) error {
	c := schema.CoreChapter

	fetchQuery := fmt.Sprintf(
		`SELECT %s, COALESCE(%s, 0) FROM %s WHERE %s = $1`,
		c.ID, c.Index, c.Table, c.BookID,
	)
	rows, err := tx.Query(context, fetchQuery, bookID)
	if err != nil {
		return dberr.Wrap(err, "chapter")
	}

	var entries []IndexAssignment
	for rows.Next() {
		var entry IndexAssignment
		if err := rows.Scan(&entry.ChapterID, &entry.Index); err != nil {
			rows.Close()
			return dberr.Wrap(err, "chapter")
		}
		entries = append(entries, entry)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return dberr.Wrap(err, "chapter")
	}
	if len(entries) == 0 {
		return nil
	}

	// Phase one: clear the occupied 1..N range.
	bumpQuery := fmt.Sprintf(
		`UPDATE %s SET %s = COALESCE(%s, 0) + $1 WHERE %s = $2`,
		c.Table, c.Index, c.Index, c.BookID,
	)
	if _, err := tx.Exec(context, bumpQuery, constants.IndexBumpOffset, bookID); err != nil {
		return dberr.Wrap(err, "chapter")
	}

	// Phase two: write the dense assignment in (index, id) order.
	assignQuery := fmt.Sprintf(
		`UPDATE %s SET %s = $1 WHERE %s = $2`,
		c.Table, c.Index, c.ID,
	)
	batch := &pgx.Batch{}
	for _, assignment := range renumberPlan(entries) {
		batch.Queue(assignQuery, assignment.Index, assignment.ChapterID)
	}

	return flushBatch(context, tx, batch)
}

// flushBatch sends a batch and surfaces the first failed statement.
func flushBatch(context context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	results := tx.SendBatch(context, batch)
	defer results.Close()

	for statement := 0; statement < batch.Len(); statement++ {
		if _, err := results.Exec(); err != nil {
			return dberr.Wrap(err, "chapter")
		}
	}

	return nil
}

// decodeDoc hydrates a jsonb content column into a document tree. Anything
// that is not a JSON object degrades to an empty document.
func decodeDoc(raw []byte) map[string]any {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return document.Empty()
	}
	if doc, ok := decoded.(map[string]any); ok {
		return doc
	}
	return document.Empty()
}
