// Package cache keeps the raw category tree in Redis so public reads skip
// the database. Entries hold stored bilingual rows and are resolved per
// request, so one entry serves every language.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"souq/internal/domain/catalog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	categoriesKey = "souq:categories"

	DefaultTTL = 10 * time.Minute
)

// Connect creates a Redis client and verifies the connection with a ping.
func Connect(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Categories caches the category listing. A nil *Categories is a valid,
// always-missing cache.
type Categories struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewCategories(client *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *Categories {
	if client == nil {
		return nil
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Categories{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached listing. Errors are logged and reported as a miss.
func (c *Categories) Get(ctx context.Context) ([]catalog.Category, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, categoriesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warnw("category cache get", "error", err)
		return nil, false
	}

	var list []catalog.Category
	if err := json.Unmarshal(raw, &list); err != nil {
		c.logger.Warnw("category cache decode", "error", err)
		return nil, false
	}
	return list, true
}

func (c *Categories) Set(ctx context.Context, list []catalog.Category) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		c.logger.Warnw("category cache encode", "error", err)
		return
	}
	if err := c.client.Set(ctx, categoriesKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warnw("category cache set", "error", err)
	}
}

// Invalidate drops the listing after any category write.
func (c *Categories) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, categoriesKey).Err(); err != nil {
		c.logger.Warnw("category cache invalidate", "error", err)
	}
}
