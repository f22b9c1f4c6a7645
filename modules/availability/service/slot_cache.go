package service

import (
	"context"
	"fmt"
	"time"

	"nuon-api/core/cache"
	"nuon-api/core/constants"
	"nuon-api/core/logger"
	"nuon-api/core/params"
	"nuon-api/modules/availability/dto"

	"github.com/google/uuid"
)

// SlotCache caches public slot listings per mentor. Every write to a mentor's
// schedule bumps a version counter that is part of the key, so stale pages
// are never read again and simply expire.
//
// The counter itself expires after versionTTL. It must outlive any page, so
// a counter that restarts from zero never meets a page cached under the same
// version.
type SlotCache struct {
	cache      cache.Cache
	ttl        time.Duration
	versionTTL time.Duration
}

const minVersionTTL = 24 * time.Hour

func NewSlotCache(c cache.Cache, ttl time.Duration) *SlotCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &SlotCache{cache: c, ttl: ttl, versionTTL: max(minVersionTTL, 10*ttl)}
}

func (c *SlotCache) version(ctx context.Context, mentorID uuid.UUID) string {
	v, err := c.cache.Get(ctx, constants.RedisKeyPublicSlotsVersion+mentorID.String())
	if err != nil {
		return "0"
	}
	return v
}

func (c *SlotCache) key(ctx context.Context, mentorID uuid.UUID, queryParams params.QueryParams) string {
	return fmt.Sprintf("%s%s:v%s:%s", constants.RedisKeyPublicSlots, mentorID, c.version(ctx, mentorID), queryParams.Encode())
}

func (c *SlotCache) Get(ctx context.Context, mentorID uuid.UUID, queryParams params.QueryParams) (*dto.PaginatedSlotResponse, bool) {
	var page dto.PaginatedSlotResponse
	if err := c.cache.GetJSON(ctx, c.key(ctx, mentorID, queryParams), &page); err != nil {
		if err != cache.ErrCacheMiss {
			logger.Warn("SlotCache:Get", "mentor_id", mentorID, "error", err)
		}
		return nil, false
	}
	return &page, true
}

func (c *SlotCache) Set(ctx context.Context, mentorID uuid.UUID, queryParams params.QueryParams, page *dto.PaginatedSlotResponse) {
	if err := c.cache.SetJSON(ctx, c.key(ctx, mentorID, queryParams), page, c.ttl); err != nil {
		logger.Warn("SlotCache:Set", "mentor_id", mentorID, "error", err)
	}
}

// Invalidate bumps the mentor's version. Failures are logged; readers then see
// stale data for at most one TTL.
func (c *SlotCache) Invalidate(ctx context.Context, mentorID uuid.UUID) {
	key := constants.RedisKeyPublicSlotsVersion + mentorID.String()
	if _, err := c.cache.Incr(ctx, key); err != nil {
		logger.Warn("SlotCache:Invalidate", "mentor_id", mentorID, "error", err)
		return
	}
	if err := c.cache.Expire(ctx, key, c.versionTTL); err != nil {
		logger.Warn("SlotCache:Invalidate:Expire", "mentor_id", mentorID, "error", err)
	}
}
