// Package cache кэширует снимок данных доступности в Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/milanbouzek/farmshop-system/internal/model"
)

// ErrMiss возвращается, когда снимка нет в кэше.
var ErrMiss = errors.New("snapshot not cached")

// New создаёт клиент Redis по адресу.
func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})
}

// SnapshotCache хранит снимок данных доступности в Redis.
type SnapshotCache struct {
	rdb *redis.Client
}

// NewSnapshotCache создаёт кэш поверх указанного клиента Redis.
func NewSnapshotCache(rdb *redis.Client) *SnapshotCache {
	return &SnapshotCache{rdb: rdb}
}

// GetSnapshot возвращает кэшированный снимок или ErrMiss.
func (c *SnapshotCache) GetSnapshot(ctx context.Context) (*model.CapacitySnapshot, error) {
	raw, err := c.rdb.Get(ctx, keySnapshot).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap model.CapacitySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snap, nil
}

// SetSnapshot записывает снимок с коротким TTL.
func (c *SnapshotCache) SetSnapshot(ctx context.Context, snap *model.CapacitySnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := c.rdb.Set(ctx, keySnapshot, raw, TTLSnapshot).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}

	return nil
}

// InvalidateSnapshot удаляет кэшированный снимок после записи,
// меняющей остаток, брони или скорость производства.
func (c *SnapshotCache) InvalidateSnapshot(ctx context.Context) error {
	if err := c.rdb.Del(ctx, keySnapshot).Err(); err != nil {
		return fmt.Errorf("invalidate snapshot: %w", err)
	}
	return nil
}
