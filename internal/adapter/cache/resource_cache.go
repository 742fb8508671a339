// Package cache fronts the resource catalog with Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/agiledatalabs/booking-management-system/internal/core/domain"
	"github.com/agiledatalabs/booking-management-system/internal/core/ports"
)

const DefaultTTL = time.Minute

type ResourceCache struct {
	next   ports.ResourceRepository
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewResourceCache(next ports.ResourceRepository, client *redis.Client, ttl time.Duration, log *zap.Logger) *ResourceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ResourceCache{next: next, client: client, ttl: ttl, log: log}
}

func ResourceKey(resourceID string) string {
	return fmt.Sprintf("resource:%s", resourceID)
}

// GetByID serves from Redis when possible. Redis failures degrade to the
// underlying repository; they are never returned to the caller.
func (c *ResourceCache) GetByID(ctx context.Context, resourceID string) (*domain.Resource, error) {
	key := ResourceKey(resourceID)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var resource domain.Resource
		if err := json.Unmarshal(data, &resource); err == nil {
			return &resource, nil
		}
		c.log.Warn("discarding undecodable cached resource", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("resource cache read failed", zap.String("key", key), zap.Error(err))
	}

	resource, err := c.next.GetByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(resource)
	if err != nil {
		return resource, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warn("resource cache write failed", zap.String("key", key), zap.Error(err))
	}

	return resource, nil
}
