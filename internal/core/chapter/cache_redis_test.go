// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librum/internal/platform/constants"
)

func newTestCache(t *testing.T) (*RedisListCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRedisListCache(client, logger), server
}

func TestRedisListCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	chapters := []*Chapter{
		{ID: "ch-a", Slug: "loomings", Title: "Loomings", Index: 1, ParagraphCount: 4},
		{ID: "ch-b", Slug: "the-carpet-bag", Title: "The Carpet-Bag", Index: 2, ParagraphCount: 2},
	}

	_, hit := cache.Get(ctx, "book-1")
	assert.False(t, hit)

	cache.Set(ctx, "book-1", chapters)

	cached, hit := cache.Get(ctx, "book-1")
	require.True(t, hit)
	require.Len(t, cached, 2)
	assert.Equal(t, "loomings", cached[0].Slug)
	assert.Equal(t, 2, cached[1].Index)
}

func TestRedisListCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "book-1", []*Chapter{{ID: "ch-a", Index: 1}})
	cache.Invalidate(ctx, "book-1")

	_, hit := cache.Get(ctx, "book-1")
	assert.False(t, hit)
}

func TestRedisListCacheExpires(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "book-1", []*Chapter{{ID: "ch-a", Index: 1}})
	server.FastForward(listCacheTTL + 1)

	_, hit := cache.Get(ctx, "book-1")
	assert.False(t, hit)
}

func TestRedisListCacheCorruptPayloadIsAMiss(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, server.Set(constants.RedisPrefixChapterList+"book-1", "{not json"))

	_, hit := cache.Get(ctx, "book-1")
	assert.False(t, hit)
}
