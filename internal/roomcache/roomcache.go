// Package roomcache keeps a Redis-backed copy of the upstream meeting-room
// list fresh so the management passthrough can serve room listings without
// a synchronous upstream call on every request.
package roomcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cnluzhang/tencent-meeting-service/internal/tencent"
	"github.com/cnluzhang/tencent-meeting-service/platform/logger"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "roomcache:rooms"
	defaultTTL = 10 * time.Minute
)

// upstreamRooms is the subset of *tencent.Client the cache depends on,
// narrow enough to substitute a fake in tests.
type upstreamRooms interface {
	ListRooms(ctx context.Context, page, pageSize int, operatorID string) (tencent.MeetingRoomsResponse, error)
}

// Cache reads and refreshes the room list. A cache miss falls through to
// the upstream client so a cold cache never blocks a read.
type Cache struct {
	redis      *redis.Client
	client     upstreamRooms
	operatorID string
	ttl        time.Duration
	log        *logger.Logger
}

// New constructs a Cache. operatorID is passed to the upstream ListRooms
// call, which requires one even though it does not scope the result.
func New(redisClient *redis.Client, client *tencent.Client, operatorID string, log *logger.Logger) *Cache {
	return &Cache{redis: redisClient, client: client, operatorID: operatorID, ttl: defaultTTL, log: log}
}

func cacheKey(page, pageSize int) string {
	return fmt.Sprintf("%s:%d:%d", keyPrefix, page, pageSize)
}

// Get returns the room list for (page, pageSize), serving from Redis when
// present and falling through to the upstream API on a miss or decode
// failure. A successful upstream fetch repopulates the cache entry.
func (c *Cache) Get(ctx context.Context, page, pageSize int) (tencent.MeetingRoomsResponse, error) {
	key := cacheKey(page, pageSize)
	if raw, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var resp tencent.MeetingRoomsResponse
		if jsonErr := json.Unmarshal(raw, &resp); jsonErr == nil {
			return resp, nil
		}
	} else if err != redis.Nil {
		c.log.Warn("roomcache: redis read failed, falling through to upstream", "error", err)
	}

	resp, err := c.client.ListRooms(ctx, page, pageSize, c.operatorID)
	if err != nil {
		return tencent.MeetingRoomsResponse{}, err
	}
	c.store(ctx, key, resp)
	return resp, nil
}

// Refresh re-fetches the default first page from upstream and repopulates
// the cache. It is invoked periodically by the asynq scheduler; callers
// reading uncached pages still fall through to upstream on demand.
func (c *Cache) Refresh(ctx context.Context) error {
	const page, pageSize = 1, 100
	resp, err := c.client.ListRooms(ctx, page, pageSize, c.operatorID)
	if err != nil {
		c.log.Error("roomcache: refresh failed", "error", err)
		return err
	}
	c.store(ctx, cacheKey(page, pageSize), resp)
	c.log.Info("roomcache: refreshed", "room_count", len(resp.MeetingRoomList))
	return nil
}

func (c *Cache) store(ctx context.Context, key string, resp tencent.MeetingRoomsResponse) {
	raw, err := json.Marshal(resp)
	if err != nil {
		c.log.Warn("roomcache: encode failed, skipping cache write", "error", err)
		return
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("roomcache: redis write failed", "error", err)
	}
}
