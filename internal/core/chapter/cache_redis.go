// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/librum/internal/platform/constants"
)

// listCacheTTL bounds staleness of the roster cache; every structural
// mutation also invalidates eagerly.
const listCacheTTL = 5 * time.Minute

// # Roster Cache

// ListCache caches a book's ordered chapter roster.
//
// All methods are best-effort: a cache failure is logged and the caller
// falls through to storage, never to an error.
type ListCache interface {
	Get(context context.Context, bookID string) ([]*Chapter, bool)
	Set(context context.Context, bookID string, chapters []*Chapter)
	Invalidate(context context.Context, bookID string)
}

// RedisListCache implements [ListCache] on Redis.
type RedisListCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisListCache constructs the Redis-backed roster cache.
func NewRedisListCache(client *redis.Client, logger *slog.Logger) *RedisListCache {
	return &RedisListCache{client: client, logger: logger}
}

// Get returns the cached roster for a book, or a miss.
func (cache *RedisListCache) Get(context context.Context, bookID string) ([]*Chapter, bool) {
	payload, err := cache.client.Get(context, listCacheKey(bookID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			cache.logger.Warn("chapter_list_cache_read_failed",
				slog.String("book_id", bookID),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}

	var chapters []*Chapter
	if err := json.Unmarshal(payload, &chapters); err != nil {
		cache.logger.Warn("chapter_list_cache_decode_failed",
			slog.String("book_id", bookID),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	return chapters, true
}

// Set stores the roster for a book with the standard TTL.
func (cache *RedisListCache) Set(context context.Context, bookID string, chapters []*Chapter) {
	payload, err := json.Marshal(chapters)
	if err != nil {
		return
	}

	if err := cache.client.Set(context, listCacheKey(bookID), payload, listCacheTTL).Err(); err != nil {
		cache.logger.Warn("chapter_list_cache_write_failed",
			slog.String("book_id", bookID),
			slog.String("error", err.Error()),
		)
	}
}

// Invalidate drops the cached roster for a book.
func (cache *RedisListCache) Invalidate(context context.Context, bookID string) {
	if err := cache.client.Del(context, listCacheKey(bookID)).Err(); err != nil {
		cache.logger.Warn("chapter_list_cache_invalidate_failed",
			slog.String("book_id", bookID),
			slog.String("error", err.Error()),
		)
	}
}

// listCacheKey builds the Redis key for a book's roster.
func listCacheKey(bookID string) string {
	return constants.RedisPrefixChapterList + bookID
}
