// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librum/internal/platform/apperr"
)

// scriptedDB records executed statements and reports a fixed row count.
type scriptedDB struct {
	statements []string
	deleted    int
}

func (db *scriptedDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	db.statements = append(db.statements, sql)
	return pgconn.NewCommandTag(fmt.Sprintf("DELETE %d", db.deleted)), nil
}

func (db *scriptedDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("unexpected query")
}

func (db *scriptedDB) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("unexpected query")
}

// # Tests

func TestPostgresRepositoryDeletePurgesHighlights(t *testing.T) {
	db := &scriptedDB{deleted: 1}
	repository := &PostgresRepository{db: db}

	err := repository.Delete(context.Background(), "book-1")

	require.NoError(t, err)
	require.Len(t, db.statements, 1)

	// One atomic statement: the highlight purge rides in a CTE ahead of the
	// book delete, since the highlight foreign key is RESTRICT while the
	// chapter one cascades.
	statement := db.statements[0]
	purge := strings.Index(statement, "DELETE FROM reading.highlight")
	remove := strings.Index(statement, "DELETE FROM core.book")
	require.NotEqual(t, -1, purge, "book delete must purge the chapters' highlights")
	require.NotEqual(t, -1, remove)
	assert.Less(t, purge, remove)
}

func TestPostgresRepositoryDeleteMissingBook(t *testing.T) {
	db := &scriptedDB{deleted: 0}
	repository := &PostgresRepository{db: db}

	err := repository.Delete(context.Background(), "ghost")

	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}
