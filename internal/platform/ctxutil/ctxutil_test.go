// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librum/internal/platform/ctxutil"
	"github.com/taibuivan/librum/internal/platform/sec"
)

/*
TestRequestID_RoundTrip tests storage and retrieval of the correlation ID.
*/
func TestRequestID_RoundTrip(t *testing.T) {
	ctx := ctxutil.WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", ctxutil.GetRequestID(ctx))
}

/*
TestRequestID_Missing tests the empty-string fallback.
*/
func TestRequestID_Missing(t *testing.T) {
	assert.Equal(t, "", ctxutil.GetRequestID(context.Background()))
}

/*
TestLogger_RoundTrip tests storage and retrieval of the per-request logger.
*/
func TestLogger_RoundTrip(t *testing.T) {
	logger := slog.Default().With(slog.String("test", "value"))
	ctx := ctxutil.WithLogger(context.Background(), logger)
	assert.Same(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestLogger_DefaultFallback tests that a bare context yields the global logger.
*/
func TestLogger_DefaultFallback(t *testing.T) {
	got := ctxutil.GetLogger(context.Background())
	require.NotNil(t, got)
	assert.Same(t, slog.Default(), got)
}

/*
TestAuthUser_RoundTrip tests storage and retrieval of auth claims.
*/
func TestAuthUser_RoundTrip(t *testing.T) {
	claims := &sec.AuthClaims{UserID: "user-1", Role: string(sec.RoleEditor)}
	ctx := ctxutil.WithAuthUser(context.Background(), claims)
	assert.Same(t, claims, ctxutil.GetAuthUser(ctx))
}

/*
TestAuthUser_Anonymous tests the nil fallback for unauthenticated requests.
*/
func TestAuthUser_Anonymous(t *testing.T) {
	assert.Nil(t, ctxutil.GetAuthUser(context.Background()))
}
