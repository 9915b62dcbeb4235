// Package cache holds the Redis-backed read cache for phone lookups. The
// cache is injected into handlers and is nil-safe: without a configured
// Redis the service just reads through to the database.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/minh-nguyen1624/phone-commerce-api/models"
)

const defaultPhoneTTL = 5 * time.Minute

type PhoneCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPhoneCache(client *redis.Client, ttl time.Duration) *PhoneCache {
	if ttl <= 0 {
		ttl = defaultPhoneTTL
	}
	return &PhoneCache{client: client, ttl: ttl}
}

func phoneKey(id uint) string {
	return fmt.Sprintf("phone:%d", id)
}

// Get returns the cached phone and whether it was a hit.
func (pc *PhoneCache) Get(ctx context.Context, id uint) (*models.Phone, bool, error) {
	if pc == nil || pc.client == nil {
		return nil, false, nil
	}
	value, err := pc.client.Get(ctx, phoneKey(id)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var phone models.Phone
	if err := json.Unmarshal([]byte(value), &phone); err != nil {
		return nil, false, err
	}
	return &phone, true, nil
}

func (pc *PhoneCache) Set(ctx context.Context, phone *models.Phone) error {
	if pc == nil || pc.client == nil {
		return nil
	}
	payload, err := json.Marshal(phone)
	if err != nil {
		return err
	}
	return pc.client.Set(ctx, phoneKey(phone.ID), payload, pc.ttl).Err()
}

// Invalidate drops a phone from the cache after a write.
func (pc *PhoneCache) Invalidate(ctx context.Context, id uint) error {
	if pc == nil || pc.client == nil {
		return nil
	}
	return pc.client.Del(ctx, phoneKey(id)).Err()
}
