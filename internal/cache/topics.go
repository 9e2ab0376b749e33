// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// topics.go provides a Valkey-backed cache of AI topic suggestions keyed by
// seed keyword. Topic generation is the slowest and most expensive AI call,
// and suggestions for the same keyword stay useful for hours. The live
// WordPress taxonomy is deliberately never cached.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// topicKeyPrefix is the Valkey key prefix for cached topic lists.
	topicKeyPrefix = "topics:"

	// DefaultTopicTTL is how long topic suggestions stay cached.
	DefaultTopicTTL = 6 * time.Hour
)

// TopicCache stores AI-generated topic suggestions in Valkey.
type TopicCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTopicCache creates a topic cache backed by the given Valkey client.
func NewTopicCache(client *redis.Client, ttl time.Duration) *TopicCache {
	if ttl == 0 {
		ttl = DefaultTopicTTL
	}
	return &TopicCache{client: client, ttl: ttl}
}

// Get retrieves cached topics for a keyword. Returns nil, false on miss.
func (tc *TopicCache) Get(ctx context.Context, keyword string) ([]string, bool) {
	val, err := tc.client.Get(ctx, topicKey(keyword)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("topic cache get error", "keyword", keyword, "error", err)
		return nil, false
	}

	var topics []string
	if err := json.Unmarshal(val, &topics); err != nil {
		slog.Warn("topic cache decode error", "keyword", keyword, "error", err)
		return nil, false
	}
	slog.Debug("topic cache hit", "keyword", keyword)
	return topics, true
}

// Set stores topic suggestions for a keyword with the configured TTL.
func (tc *TopicCache) Set(ctx context.Context, keyword string, topics []string) {
	val, err := json.Marshal(topics)
	if err != nil {
		slog.Warn("topic cache encode error", "keyword", keyword, "error", err)
		return
	}
	if err := tc.client.Set(ctx, topicKey(keyword), val, tc.ttl).Err(); err != nil {
		slog.Warn("topic cache set error", "keyword", keyword, "error", err)
	}
}

// topicKey normalizes a keyword into a cache key.
func topicKey(keyword string) string {
	return topicKeyPrefix + strings.ToLower(strings.TrimSpace(keyword))
}
