// cache — опциональный read-through кэш постов поверх Redis.
// Сервис работает и без него: nil-кэш просто отключает уровень.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"blog-service/internal/models"
)

// PostCache — минимальный контракт кэша постов.
type PostCache interface {
	// Get возвращает пост и признак его наличия в кэше.
	Get(ctx context.Context, id string) (*models.Post, bool, error)
	// Set сохраняет пост с TTL.
	Set(ctx context.Context, post *models.Post, ttl time.Duration) error
	// Invalidate выбрасывает пост из кэша (после update/delete).
	Invalidate(ctx context.Context, id string) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "blog:post:".
func NewRedisCache(redisURL, prefix string) (PostCache, error) {
	if prefix == "" {
		prefix = "blog:post:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(id string) string { return c.prefix + id }

// Храним пост одним JSON-значением: документ маленький, а читается целиком.
func (c *redisCache) Get(ctx context.Context, id string) (*models.Post, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, err
	}

	var post models.Post
	if err := json.Unmarshal(raw, &post); err != nil {
		// Битую запись трактуем как промах и даём ей перезаписаться.
		return nil, false, nil
	}

	return &post, true, nil
}

func (c *redisCache) Set(ctx context.Context, post *models.Post, ttl time.Duration) error {
	raw, err := json.Marshal(post)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, c.key(post.ID), raw, ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, c.key(id)).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
