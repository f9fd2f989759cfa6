// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package highlight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/librum/internal/platform/apperr"
	"github.com/taibuivan/librum/internal/platform/database/schema"
	"github.com/taibuivan/librum/internal/platform/dberr"
	"github.com/taibuivan/librum/pkg/uuid"
)

// # PostgreSQL Repository

// PostgresRepository implements [Repository] backed by PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs the PostgreSQL-backed highlight repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByChapter returns a user's highlights on a chapter, oldest first.
func (repository *PostgresRepository) ListByChapter(context context.Context, userID, chapterID string) ([]*Highlight, error) {
	h := schema.ReadingHighlight

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s = $2
		ORDER BY %s ASC`,
		strings.Join(h.Columns(), ", "), h.Table,
		h.UserID, h.ChapterID,
		h.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, userID, chapterID)
	if err != nil {
		return nil, dberr.Wrap(err, "highlight")
	}
	defer rows.Close()

	var highlights []*Highlight
	for rows.Next() {
		entity, err := scanHighlight(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "highlight")
		}
		highlights = append(highlights, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "highlight")
	}

	return highlights, nil
}

// FindByID returns a single highlight.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Highlight, error) {
	h := schema.ReadingHighlight

	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(h.Columns(), ", "), h.Table, h.ID,
	)

	entity, err := scanHighlight(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "highlight")
	}

	return entity, nil
}

// Create persists a new highlight row.
func (repository *PostgresRepository) Create(context context.Context, highlight *Highlight) error {
	h := schema.ReadingHighlight

	selectorJSON, err := json.Marshal(highlight.Selector)
	if err != nil {
		return apperr.Internal(err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`,
		h.Table, h.ID, h.UserID, h.ChapterID, h.Selector, h.Style, h.Note,
		h.CreatedAt,
	)

	err = repository.db.QueryRow(context, query,
		highlight.ID, highlight.UserID, highlight.ChapterID,
		selectorJSON, highlight.Style, highlight.Note,
	).Scan(&highlight.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "highlight")
	}

	return nil
}

// Delete removes a highlight row.
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	h := schema.ReadingHighlight

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, h.Table, h.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "highlight")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("highlight")
	}

	return nil
}

// # Merge Migration

// MoveToChapter relocates every highlight on fromChapterID to toChapterID,
// rebasing position selectors by addOffset. Copies are inserted under fresh
// identities before the originals are deleted; any failure surfaces to the
// caller so the enclosing transaction rolls back with no annotation lost.
func (repository *PostgresRepository) MoveToChapter(context context.Context, tx pgx.Tx, fromChapterID, toChapterID string, addOffset int) error {
	h := schema.ReadingHighlight

	selectQuery := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		h.ID, h.UserID, h.Selector, h.Style, h.Note,
		h.Table, h.ChapterID,
	)

	rows, err := tx.Query(context, selectQuery, fromChapterID)
	if err != nil {
		return dberr.Wrap(err, "highlight")
	}

	type migratedRow struct {
		oldID    string
		userID   string
		selector []byte
		style    string
		note     string
	}

	var pending []migratedRow
	for rows.Next() {
		var row migratedRow
		if err := rows.Scan(&row.oldID, &row.userID, &row.selector, &row.style, &row.note); err != nil {
			rows.Close()
			return dberr.Wrap(err, "highlight")
		}
		pending = append(pending, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return dberr.Wrap(err, "highlight")
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		h.Table, h.ID, h.UserID, h.ChapterID, h.Selector, h.Style, h.Note,
	)
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, h.Table, h.ID)

	for _, row := range pending {
		selector := RebaseSelector(ParseSelector(row.selector), addOffset)
		selectorJSON, err := json.Marshal(selector)
		if err != nil {
			return apperr.Internal(err)
		}

		if _, err := tx.Exec(context, insertQuery,
			uuid.New(), row.userID, toChapterID, selectorJSON, row.style, row.note,
		); err != nil {
			return dberr.Wrap(err, "highlight")
		}

		if _, err := tx.Exec(context, deleteQuery, row.oldID); err != nil {
			return dberr.Wrap(err, "highlight")
		}
	}

	return nil
}

// DeleteByChapter removes every highlight on a chapter inside the caller's
// transaction. Zero rows is not an error; most chapters carry no
// annotations.
func (repository *PostgresRepository) DeleteByChapter(context context.Context, tx pgx.Tx, chapterID string) error {
	h := schema.ReadingHighlight

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, h.Table, h.ChapterID)

	if _, err := tx.Exec(context, query, chapterID); err != nil {
		return dberr.Wrap(err, "highlight")
	}

	return nil
}

// scanHighlight hydrates a Highlight from the full column set.
func scanHighlight(row pgx.Row) (*Highlight, error) {
	var (
		entity      Highlight
		rawSelector []byte
	)
	if err := row.Scan(
		&entity.ID, &entity.UserID, &entity.ChapterID,
		&rawSelector, &entity.Style, &entity.Note, &entity.CreatedAt,
	); err != nil {
		return nil, err
	}

	entity.Selector = ParseSelector(rawSelector)
	return &entity, nil
}
