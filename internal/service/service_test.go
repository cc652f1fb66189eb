package service

import (
	"context"
	"time"

	"blog-service/internal/models"
)

// fakePostCache — примитивный in-memory кэш для юнит-тестов.
type fakePostCache struct {
	data map[string]*models.Post
	gets int
	sets int
}

func (c *fakePostCache) Get(_ context.Context, id string) (*models.Post, bool, error) {
	c.gets++
	p, ok := c.data[id]
	return p, ok, nil
}

func (c *fakePostCache) Set(_ context.Context, post *models.Post, _ time.Duration) error {
	c.sets++
	c.data[post.ID] = post
	return nil
}

func (c *fakePostCache) Invalidate(_ context.Context, id string) error {
	delete(c.data, id)
	return nil
}

func (c *fakePostCache) Close() error { return nil }
