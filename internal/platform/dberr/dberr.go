// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// # Classification
//
// PostgreSQL reports failure classes through SQLSTATE codes. The two that
// matter to the chapter engine are unique-index collisions (a concurrent
// writer slipped past the book lock, or a slug is already taken) and
// lock-wait timeouts (another structural mutation holds the book lock
// longer than the configured bound). Both are surfaced as CONFLICT so
// clients know a retry may succeed.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/librum/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the
// error type. The resource name feeds the NOT_FOUND message.
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// Application errors raised inside a repository pass through untouched.
	if apperr.IsAppError(err) {
		return err
	}

	// Absent rows map to a client-safe 404.
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict(resource + " already exists")
		case pgerrcode.LockNotAvailable:
			return apperr.Conflict(resource + " is being modified by another request, retry shortly")
		case pgerrcode.ForeignKeyViolation:
			return apperr.Unprocessable(resource + " is referenced by other records")
		}
	}

	// Unknown query errors become Internal Server Errors.
	return apperr.Internal(err)
}
